package domain

import (
	"fmt"
	"strings"
)

// BodySlug identifies a celestial body or calculated point
type BodySlug string

const (
	BodySun       BodySlug = "sun"
	BodyMoon      BodySlug = "moon"
	BodyMercury   BodySlug = "mercury"
	BodyVenus     BodySlug = "venus"
	BodyMars      BodySlug = "mars"
	BodyJupiter   BodySlug = "jupiter"
	BodySaturn    BodySlug = "saturn"
	BodyUranus    BodySlug = "uranus"
	BodyNeptune   BodySlug = "neptune"
	BodyPluto     BodySlug = "pluto"
	BodyNorthNode BodySlug = "north_node"
	BodySouthNode BodySlug = "south_node"
	BodyLilith    BodySlug = "lilith"
)

// TrackedBodies is the ordered list of bodies every ephemeris provider resolves.
// The order drives aspect source/target assignment.
var TrackedBodies = []BodySlug{
	BodySun,
	BodyMoon,
	BodyMercury,
	BodyVenus,
	BodyMars,
	BodyJupiter,
	BodySaturn,
	BodyUranus,
	BodyNeptune,
	BodyPluto,
	BodyNorthNode,
	BodySouthNode,
	BodyLilith,
}

// BodyType classifies a celestial body
type BodyType string

const (
	BodyTypePlanet   BodyType = "planet"
	BodyTypeLuminar  BodyType = "luminar"
	BodyTypeNode     BodyType = "node"
	BodyTypeDwarf    BodyType = "dwarf"
	BodyTypeAsteroid BodyType = "asteroid"
	BodyTypePoint    BodyType = "point"
)

// CelestialBody is a catalogue entry for a body the pipeline can place
type CelestialBody struct {
	Slug                BodySlug
	Name                string
	Type                BodyType
	IsRetrogradeCapable bool
}

// Validate ensures the body adheres to catalogue rules
func (b *CelestialBody) Validate() error {
	if strings.TrimSpace(string(b.Slug)) == "" {
		return fmt.Errorf("%w: body slug cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: body name cannot be empty", ErrValidation)
	}
	switch b.Type {
	case BodyTypePlanet, BodyTypeLuminar, BodyTypeNode, BodyTypeDwarf, BodyTypeAsteroid, BodyTypePoint:
		return nil
	default:
		return fmt.Errorf("%w: invalid body type %q", ErrValidation, b.Type)
	}
}

// DefaultCatalogue is the seeded body catalogue
var DefaultCatalogue = []CelestialBody{
	{Slug: BodySun, Name: "Sun", Type: BodyTypeLuminar},
	{Slug: BodyMoon, Name: "Moon", Type: BodyTypeLuminar},
	{Slug: BodyMercury, Name: "Mercury", Type: BodyTypePlanet, IsRetrogradeCapable: true},
	{Slug: BodyVenus, Name: "Venus", Type: BodyTypePlanet, IsRetrogradeCapable: true},
	{Slug: BodyMars, Name: "Mars", Type: BodyTypePlanet, IsRetrogradeCapable: true},
	{Slug: BodyJupiter, Name: "Jupiter", Type: BodyTypePlanet, IsRetrogradeCapable: true},
	{Slug: BodySaturn, Name: "Saturn", Type: BodyTypePlanet, IsRetrogradeCapable: true},
	{Slug: BodyUranus, Name: "Uranus", Type: BodyTypePlanet, IsRetrogradeCapable: true},
	{Slug: BodyNeptune, Name: "Neptune", Type: BodyTypePlanet, IsRetrogradeCapable: true},
	{Slug: BodyPluto, Name: "Pluto", Type: BodyTypeDwarf, IsRetrogradeCapable: true},
	{Slug: BodyNorthNode, Name: "North Node", Type: BodyTypeNode, IsRetrogradeCapable: true},
	{Slug: BodySouthNode, Name: "South Node", Type: BodyTypeNode, IsRetrogradeCapable: true},
	{Slug: BodyLilith, Name: "Lilith", Type: BodyTypePoint, IsRetrogradeCapable: true},
}

// Catalogue is a lookup of known bodies keyed by slug
type Catalogue map[BodySlug]CelestialBody

// NewCatalogue indexes a body list by slug
func NewCatalogue(bodies []CelestialBody) Catalogue {
	c := make(Catalogue, len(bodies))
	for _, b := range bodies {
		c[b.Slug] = b
	}
	return c
}
