package ephemeris

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

// speedWindow is half the interval, in days, of the central difference used for speed
const speedWindow = 0.5

// PreciseProvider computes positions locally from an analytic model.
// Houses use the Porphyry system.
type PreciseProvider struct {
	logger *zap.Logger
}

// NewPreciseProvider creates a precise provider
func NewPreciseProvider(logger *zap.Logger) *PreciseProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreciseProvider{logger: logger}
}

// Tag implements domain.EphemerisProvider
func (p *PreciseProvider) Tag() domain.ProviderTag {
	return domain.ProviderPrecise
}

// JulianDay converts an instant to a Julian day number (UT)
func JulianDay(instant time.Time) float64 {
	secs := float64(instant.Unix()) + float64(instant.Nanosecond())/1e9
	return secs/86400 + unixEpochJD
}

// Fetch computes every tracked body and the house frame for the instant
func (p *PreciseProvider) Fetch(ctx context.Context, instant time.Time, location domain.Location) (*domain.EphemerisSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instant = instant.UTC()
	jd := JulianDay(instant)
	houses := houseFrame(jd, location.Latitude, location.Longitude)

	bodies := make([]domain.BodyReading, 0, len(domain.TrackedBodies))
	var north domain.BodyReading
	for _, slug := range domain.TrackedBodies {
		if slug == domain.BodySouthNode {
			bodies = append(bodies, north.Antipode(slug, houses.Cusps))
			continue
		}

		now, ok := geocentric(slug, jd)
		if !ok {
			return nil, fmt.Errorf("%w: no model for %s", domain.ErrBodyDataMissing, slug)
		}
		before, _ := geocentric(slug, jd-speedWindow)
		after, _ := geocentric(slug, jd+speedWindow)
		speed := signedDelta(before.lon, after.lon) / (2 * speedWindow)

		reading := domain.NewBodyReading(slug, now.lon, now.lat, now.r, speed, houses.Cusps)
		if slug == domain.BodyNorthNode {
			north = reading
		}
		bodies = append(bodies, reading)
	}

	p.logger.Info("integrations.ephemeris.precise.success",
		zap.Time("instant", instant),
		zap.Float64("julian_day", jd),
	)

	return &domain.EphemerisSnapshot{
		Source:      domain.ProviderPrecise,
		HouseSystem: domain.HouseSystemPorphyry,
		Instant:     instant,
		Latitude:    location.Latitude,
		Longitude:   location.Longitude,
		Houses:      houses,
		Bodies:      bodies,
	}, nil
}

// geocentric returns the apparent ecliptic position of a body; distance in AU
func geocentric(slug domain.BodySlug, jd float64) (spherical, bool) {
	d := jd - elementsEpochJD

	switch slug {
	case domain.BodySun:
		return sunPosition(d), true
	case domain.BodyMoon:
		return moonPosition(d), true
	case domain.BodyPluto:
		return plutoPosition(d), true
	case domain.BodyNorthNode:
		return spherical{lon: meanNode(jd), r: moonMeanDistance}, true
	case domain.BodyLilith:
		return spherical{lon: meanApogee(jd), r: moonMeanDistance}, true
	default:
		return planetPosition(string(slug), d)
	}
}

func houseFrame(jd, latitude, longitude float64) domain.HouseFrame {
	eps := obliquity(jd)
	ramc := rev(greenwichSidereal(jd) + longitude)

	asc := ascendantFor(ramc, latitude, eps)
	mc := midheaven(ramc, eps)

	return domain.HouseFrame{
		Cusps: porphyryCusps(asc, mc),
		Angles: map[string]float64{
			domain.AngleAscendant: asc,
			domain.AngleMidheaven: mc,
			domain.AngleVertex:    vertex(ramc, latitude, eps),
		},
	}
}
