package ephemeris

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

const stubStep = 27.5

// StubProvider returns deterministic placeholder positions.
// It never fails and is the last resort of the caching client.
type StubProvider struct {
	logger *zap.Logger
}

// NewStubProvider creates a stub provider
func NewStubProvider(logger *zap.Logger) *StubProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubProvider{logger: logger}
}

// Tag implements domain.EphemerisProvider
func (p *StubProvider) Tag() domain.ProviderTag {
	return domain.ProviderStub
}

// Fetch places body i at (day-of-year mod 360) + 27.5*i on an equal house frame
func (p *StubProvider) Fetch(_ context.Context, instant time.Time, location domain.Location) (*domain.EphemerisSnapshot, error) {
	instant = instant.UTC()
	p.logger.Warn("integrations.ephemeris.stub",
		zap.String("provider", string(domain.ProviderStub)),
		zap.Time("instant", instant),
		zap.String("location_id", location.ID.String()),
	)

	cusps := make([]float64, domain.HouseCount)
	for n := 1; n <= domain.HouseCount; n++ {
		cusps[n-1] = float64(n) * 30.0
	}

	base := float64(instant.YearDay() % 360)
	bodies := make([]domain.BodyReading, 0, len(domain.TrackedBodies))
	for i, slug := range domain.TrackedBodies {
		bodies = append(bodies, domain.NewBodyReading(slug, base+float64(i)*stubStep, 0, 1, 1, cusps))
	}

	return &domain.EphemerisSnapshot{
		Source:      domain.ProviderStub,
		HouseSystem: domain.HouseSystemEqual,
		Instant:     instant,
		Latitude:    location.Latitude,
		Longitude:   location.Longitude,
		Houses: domain.HouseFrame{
			Cusps:  cusps,
			Angles: map[string]float64{domain.AngleAscendant: 0, domain.AngleMidheaven: 90},
		},
		Bodies: bodies,
	}, nil
}
