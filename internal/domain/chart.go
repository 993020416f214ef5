package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pipeline identity written into every chart's metadata blob
const (
	PipelineTag     = "bioastro-2.0"
	PipelineVersion = "0.2.0"
)

// Location is a pre-resolved geographic point with its IANA timezone
type Location struct {
	ID        uuid.UUID
	Name      string
	Latitude  float64
	Longitude float64
	Timezone  string
}

// Validate ensures the location adheres to domain rules
func (l *Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrValidation, l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrValidation, l.Longitude)
	}
	if strings.TrimSpace(l.Timezone) == "" {
		return fmt.Errorf("%w: timezone cannot be empty", ErrValidation)
	}
	if _, err := time.LoadLocation(l.Timezone); err != nil {
		return fmt.Errorf("%w: invalid timezone %q", ErrValidation, l.Timezone)
	}
	return nil
}

// Chart is a natal chart request: an event instant and a location.
// Metadata holds the last committed pipeline output (nil until computed).
type Chart struct {
	ID                 uuid.UUID
	OwnerID            uuid.UUID
	Title              string
	EventTime          time.Time // UTC
	Location           Location
	HouseSystem        string
	CalculationVersion string
	Metadata           *ChartMetadata
	UpdatedAt          time.Time
}

// Validate ensures the chart can be fed to the pipeline
func (c *Chart) Validate() error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("%w: chart ID cannot be empty", ErrValidation)
	}
	if c.EventTime.IsZero() {
		return fmt.Errorf("%w: chart event time cannot be empty", ErrValidation)
	}
	return c.Location.Validate()
}

// Position is a body placed in a sign and a house for one chart
type Position struct {
	ChartID        uuid.UUID
	Body           BodySlug
	Sign           Sign
	House          int
	AbsoluteDegree decimal.Decimal // 3 decimal places
	Retrograde     bool
	Speed          *decimal.Decimal // 5 decimal places, nil when unknown
}

// Longitude returns the absolute degree as a float for angular maths
func (p Position) Longitude() float64 {
	return p.AbsoluteDegree.InexactFloat64()
}

// SpeedValue returns the speed or zero when unknown
func (p Position) SpeedValue() float64 {
	if p.Speed == nil {
		return 0
	}
	return p.Speed.InexactFloat64()
}

// AspectType is one of the 10 recognised angular relationships
type AspectType string

const (
	AspectConjunction AspectType = "conjunction"
	AspectOpposition  AspectType = "opposition"
	AspectTrine       AspectType = "trine"
	AspectSquare      AspectType = "square"
	AspectSextile     AspectType = "sextile"
	AspectQuincunx    AspectType = "quincunx"
	AspectQuintile    AspectType = "quintile"
	AspectBiquintile  AspectType = "biquintile"
	AspectSemisextile AspectType = "semisextile"
	AspectSemisquare  AspectType = "semisquare"
)

// AspectRule is an exact angle and the orb allowed around it
type AspectRule struct {
	Type  AspectType
	Angle float64
	Orb   float64
}

// AspectRules is evaluated in order; the first rule within orb wins
var AspectRules = []AspectRule{
	{Type: AspectConjunction, Angle: 0, Orb: 8},
	{Type: AspectOpposition, Angle: 180, Orb: 8},
	{Type: AspectTrine, Angle: 120, Orb: 7},
	{Type: AspectSquare, Angle: 90, Orb: 7},
	{Type: AspectSextile, Angle: 60, Orb: 5},
	{Type: AspectQuincunx, Angle: 150, Orb: 3},
	{Type: AspectQuintile, Angle: 72, Orb: 2},
	{Type: AspectBiquintile, Angle: 144, Orb: 2},
	{Type: AspectSemisextile, Angle: 30, Orb: 2},
	{Type: AspectSemisquare, Angle: 45, Orb: 2},
}

// Aspect is an angular relationship between two bodies of one chart
type Aspect struct {
	ChartID    uuid.UUID
	SourceBody BodySlug
	TargetBody BodySlug
	Type       AspectType
	Orb        decimal.Decimal // 2 decimal places
	Intensity  decimal.Decimal // 2 decimal places, 0-1
}

// MetricBioStrength is the only strength metric computed today
const MetricBioStrength = "bio_strength"

// StrengthMetric is a scored condition of one body
type StrengthMetric struct {
	ChartID    uuid.UUID
	Body       BodySlug
	MetricName string
	Score      decimal.Decimal // 3 decimal places, clamped to [0, 100]
	Weight     decimal.Decimal // 3 decimal places
	Metadata   StrengthInputs
}

// StrengthInputs records the raw inputs a score was derived from
type StrengthInputs struct {
	Sign       Sign    `json:"sign"`
	Retrograde bool    `json:"retrograde"`
	Speed      float64 `json:"speed"`
}

// IndicatorCategory is one of the independent distribution tables
type IndicatorCategory string

const (
	CategoryElement  IndicatorCategory = "element"
	CategoryModality IndicatorCategory = "modality"
	CategoryZone     IndicatorCategory = "zone"
)

// IntegralIndicator is one bucket's percentage within a category
type IntegralIndicator struct {
	ChartID  uuid.UUID
	Category IndicatorCategory
	Name     string
	Value    decimal.Decimal // 2 decimal places, 0-100
}

// ChartMetadata is the blob attached to the chart record after a run
type ChartMetadata struct {
	Pipeline       string         `json:"pipeline"`
	Version        string         `json:"version"`
	Houses         HouseSummary   `json:"houses"`
	Source         ProviderTag    `json:"source"`
	Interpretation Interpretation `json:"interpretation"`
}

// HouseSummary is the rounded house frame stored in metadata
type HouseSummary struct {
	Cusps  []float64          `json:"cusps"`
	Angles map[string]float64 `json:"angles"`
}

// ChartComputation is the full output of one pipeline run.
// It is persisted wholesale, replacing any previous computation.
type ChartComputation struct {
	HouseSystem string
	Positions   []Position
	Aspects     []Aspect
	Strengths   []StrengthMetric
	Indicators  []IntegralIndicator
	Metadata    ChartMetadata
}
