package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

// Store keeps charts, locations and the body catalogue in process memory.
// It implements domain.ChartRepository and domain.BodyRepository.
type Store struct {
	mu           sync.RWMutex
	locations    map[uuid.UUID]domain.Location
	charts       map[uuid.UUID]domain.Chart
	computations map[uuid.UUID]domain.ChartComputation
	bodies       map[domain.BodySlug]domain.CelestialBody
	now          func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		locations:    make(map[uuid.UUID]domain.Location),
		charts:       make(map[uuid.UUID]domain.Chart),
		computations: make(map[uuid.UUID]domain.ChartComputation),
		bodies:       make(map[domain.BodySlug]domain.CelestialBody),
		now:          time.Now,
	}
}

// CreateLocation stores a pre-resolved location
func (s *Store) CreateLocation(_ context.Context, location *domain.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[location.ID]; ok {
		return fmt.Errorf("location %s already exists", location.ID)
	}
	s.locations[location.ID] = *location
	return nil
}

// CreateChart stores a new chart; its location must already exist
func (s *Store) CreateChart(_ context.Context, chart *domain.Chart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[chart.Location.ID]; !ok {
		return fmt.Errorf("location %s: %w", chart.Location.ID, domain.ErrLocationNotFound)
	}
	if _, ok := s.charts[chart.ID]; ok {
		return fmt.Errorf("chart %s already exists", chart.ID)
	}

	stored := *chart
	stored.EventTime = stored.EventTime.UTC()
	stored.Metadata = nil
	stored.UpdatedAt = s.now()
	s.charts[chart.ID] = stored
	return nil
}

// GetChart retrieves a chart with its location
func (s *Store) GetChart(_ context.Context, id uuid.UUID) (*domain.Chart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chart, ok := s.charts[id]
	if !ok {
		return nil, fmt.Errorf("chart %s: %w", id, domain.ErrChartNotFound)
	}
	chart.Location = s.locations[chart.Location.ID]
	if chart.Metadata != nil {
		meta := *chart.Metadata
		chart.Metadata = &meta
	}
	return &chart, nil
}

// HasPositions reports whether derived positions exist for the chart
func (s *Store) HasPositions(_ context.Context, chartID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.computations[chartID].Positions) > 0, nil
}

// ReplaceComputation swaps the chart's derived rows and metadata atomically
func (s *Store) ReplaceComputation(_ context.Context, chartID uuid.UUID, computation *domain.ChartComputation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chart, ok := s.charts[chartID]
	if !ok {
		return fmt.Errorf("chart %s: %w", chartID, domain.ErrChartNotFound)
	}

	stored := cloneComputation(computation)
	s.computations[chartID] = stored

	meta := stored.Metadata
	chart.Metadata = &meta
	chart.HouseSystem = stored.HouseSystem
	chart.CalculationVersion = stored.Metadata.Version
	chart.UpdatedAt = s.now()
	s.charts[chartID] = chart
	return nil
}

// GetComputation loads the committed derived rows and metadata
func (s *Store) GetComputation(_ context.Context, chartID uuid.UUID) (*domain.ChartComputation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chart, ok := s.charts[chartID]
	if !ok {
		return nil, fmt.Errorf("chart %s: %w", chartID, domain.ErrChartNotFound)
	}

	computation, ok := s.computations[chartID]
	if !ok {
		return &domain.ChartComputation{HouseSystem: chart.HouseSystem}, nil
	}
	out := cloneComputation(&computation)
	return &out, nil
}

// GetBySlug retrieves a body by its slug
func (s *Store) GetBySlug(_ context.Context, slug domain.BodySlug) (*domain.CelestialBody, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.bodies[slug]
	if !ok {
		return nil, fmt.Errorf("body %s: %w", slug, domain.ErrBodyNotFound)
	}
	return &body, nil
}

// Create adds a catalogue entry
func (s *Store) Create(_ context.Context, body *domain.CelestialBody) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bodies[body.Slug]; ok {
		return fmt.Errorf("body %s already exists", body.Slug)
	}
	s.bodies[body.Slug] = *body
	return nil
}

// List returns every known body ordered by slug
func (s *Store) List(_ context.Context) ([]domain.CelestialBody, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bodies := make([]domain.CelestialBody, 0, len(s.bodies))
	for _, b := range s.bodies {
		bodies = append(bodies, b)
	}
	sort.Slice(bodies, func(i, j int) bool { return bodies[i].Slug < bodies[j].Slug })
	return bodies, nil
}

func cloneComputation(c *domain.ChartComputation) domain.ChartComputation {
	return domain.ChartComputation{
		HouseSystem: c.HouseSystem,
		Positions:   append([]domain.Position(nil), c.Positions...),
		Aspects:     append([]domain.Aspect(nil), c.Aspects...),
		Strengths:   append([]domain.StrengthMetric(nil), c.Strengths...),
		Indicators:  append([]domain.IntegralIndicator(nil), c.Indicators...),
		Metadata:    c.Metadata,
	}
}
