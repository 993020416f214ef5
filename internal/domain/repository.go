package domain

import (
	"context"

	"github.com/google/uuid"
)

// ChartRepository defines the interface for chart persistence operations
type ChartRepository interface {
	// CreateLocation stores a pre-resolved location
	CreateLocation(ctx context.Context, location *Location) error

	// CreateChart stores a new chart; its location must already exist
	CreateChart(ctx context.Context, chart *Chart) error

	// GetChart retrieves a chart with its location and current metadata
	GetChart(ctx context.Context, id uuid.UUID) (*Chart, error)

	// HasPositions reports whether derived positions exist for the chart
	HasPositions(ctx context.Context, chartID uuid.UUID) (bool, error)

	// ReplaceComputation deletes every derived row of the chart, inserts the
	// new computation and updates the chart metadata in one transaction
	ReplaceComputation(ctx context.Context, chartID uuid.UUID, computation *ChartComputation) error

	// GetComputation loads the committed derived rows and metadata
	GetComputation(ctx context.Context, chartID uuid.UUID) (*ChartComputation, error)
}

// BodyRepository defines the interface for the celestial body catalogue
type BodyRepository interface {
	// GetBySlug retrieves a body by its slug
	GetBySlug(ctx context.Context, slug BodySlug) (*CelestialBody, error)

	// Create creates a new catalogue entry
	Create(ctx context.Context, body *CelestialBody) error

	// List returns every known body
	List(ctx context.Context) ([]CelestialBody, error)
}
