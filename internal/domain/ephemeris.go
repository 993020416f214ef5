package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ProviderTag identifies an ephemeris provider implementation
type ProviderTag string

const (
	ProviderPrecise ProviderTag = "precise"
	ProviderRemote  ProviderTag = "nasa-horizons"
	ProviderStub    ProviderTag = "stub"
)

// Angle names carried by a HouseFrame
const (
	AngleAscendant = "asc"
	AngleMidheaven = "mc"
	AngleVertex    = "vertex"
)

// House systems reported by providers
const (
	HouseSystemPorphyry = "porphyry"
	HouseSystemEqual    = "equal"
)

// BodyReading is the raw ephemeris output for one body, already resolved
// to a sign and a house against the snapshot's HouseFrame.
type BodyReading struct {
	Body       BodySlug `json:"slug"`
	Longitude  float64  `json:"longitude"`
	Latitude   float64  `json:"latitude"`
	DistanceAU float64  `json:"distance_au"`
	Speed      float64  `json:"speed"`
	Retrograde bool     `json:"retrograde"`
	Sign       Sign     `json:"sign"`
	House      int      `json:"house"`
}

// NewBodyReading normalises the longitude and resolves sign, house and retrograde flag
func NewBodyReading(body BodySlug, longitude, latitude, distanceAU, speed float64, cusps []float64) BodyReading {
	norm := NormalizeDegree(longitude)
	return BodyReading{
		Body:       body,
		Longitude:  norm,
		Latitude:   latitude,
		DistanceAU: distanceAU,
		Speed:      speed,
		Retrograde: speed < 0,
		Sign:       ResolveSign(norm),
		House:      ResolveHouse(norm, cusps),
	}
}

// Antipode returns the reading mirrored through 180° and re-resolved for
// sign and house. Used to derive the south node from the north node.
func (r BodyReading) Antipode(body BodySlug, cusps []float64) BodyReading {
	mirrored := r
	mirrored.Body = body
	mirrored.Longitude = NormalizeDegree(r.Longitude + 180.0)
	mirrored.Sign = ResolveSign(mirrored.Longitude)
	mirrored.House = ResolveHouse(mirrored.Longitude, cusps)
	return mirrored
}

// HouseFrame holds the 12 house cusps and the named chart angles
type HouseFrame struct {
	Cusps  []float64          `json:"cusps"`
	Angles map[string]float64 `json:"angles"`
}

// Validate ensures the frame carries exactly 12 cusps
func (h HouseFrame) Validate() error {
	if len(h.Cusps) != HouseCount {
		return fmt.Errorf("%w: house frame must have %d cusps, got %d", ErrValidation, HouseCount, len(h.Cusps))
	}
	return nil
}

// EphemerisSnapshot is a provider's answer for one instant and location
type EphemerisSnapshot struct {
	Source      ProviderTag   `json:"source"`
	HouseSystem string        `json:"house_system"`
	Instant     time.Time     `json:"datetime"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	Houses      HouseFrame    `json:"houses"`
	Bodies      []BodyReading `json:"bodies"`
}

// Body returns the reading for the given slug
func (s *EphemerisSnapshot) Body(slug BodySlug) (BodyReading, bool) {
	for _, b := range s.Bodies {
		if b.Body == slug {
			return b, true
		}
	}
	return BodyReading{}, false
}

// EphemerisProvider computes raw body positions and house cusps
type EphemerisProvider interface {
	// Tag identifies the implementation in cache keys and metadata
	Tag() ProviderTag
	// Fetch returns the snapshot for a UTC instant at the given location
	Fetch(ctx context.Context, instant time.Time, location Location) (*EphemerisSnapshot, error)
}

// EphemerisCache is the cache port used by the ephemeris client
type EphemerisCache interface {
	// Get returns the cached payload; ok is false on a miss or an expired entry
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	// Set stores the payload for the given TTL
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// IsFallbackEligible reports whether a provider error may be replaced by stub data
func IsFallbackEligible(err error) bool {
	return err != nil && !errors.Is(err, ErrProviderNotImplemented)
}
