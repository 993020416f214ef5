package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

var (
	_ domain.ChartRepository = (*Store)(nil)
	_ domain.BodyRepository  = (*Store)(nil)
)

func seed(t *testing.T, s *Store) *domain.Chart {
	t.Helper()
	ctx := context.Background()

	location := domain.Location{ID: uuid.New(), Name: "Lisbon", Latitude: 38.72, Longitude: -9.14, Timezone: "Europe/Lisbon"}
	require.NoError(t, s.CreateLocation(ctx, &location))

	chart := &domain.Chart{
		ID:        uuid.New(),
		EventTime: time.Date(1985, 7, 4, 10, 0, 0, 0, time.FixedZone("WEST", 3600)),
		Location:  domain.Location{ID: location.ID},
	}
	require.NoError(t, s.CreateChart(ctx, chart))
	return chart
}

func TestStore_CreateAndGetChart(t *testing.T) {
	s := NewStore()
	chart := seed(t, s)

	got, err := s.GetChart(context.Background(), chart.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", got.Location.Name, "location is joined on read")
	assert.Equal(t, time.UTC, got.EventTime.Location())
	assert.Equal(t, 9, got.EventTime.Hour())
	assert.Nil(t, got.Metadata)
}

func TestStore_CreateChartRequiresLocation(t *testing.T) {
	s := NewStore()
	err := s.CreateChart(context.Background(), &domain.Chart{ID: uuid.New(), Location: domain.Location{ID: uuid.New()}})
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestStore_ReplaceComputation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	chart := seed(t, s)

	has, err := s.HasPositions(ctx, chart.ID)
	require.NoError(t, err)
	assert.False(t, has)

	first := &domain.ChartComputation{
		HouseSystem: domain.HouseSystemEqual,
		Positions: []domain.Position{
			{ChartID: chart.ID, Body: domain.BodySun, Sign: domain.SignCancer, House: 10, AbsoluteDegree: decimal.RequireFromString("102.500")},
			{ChartID: chart.ID, Body: domain.BodyMoon, Sign: domain.SignLeo, House: 11, AbsoluteDegree: decimal.RequireFromString("130.000")},
		},
		Metadata: domain.ChartMetadata{Version: domain.PipelineVersion, Source: domain.ProviderStub},
	}
	require.NoError(t, s.ReplaceComputation(ctx, chart.ID, first))

	second := &domain.ChartComputation{
		HouseSystem: domain.HouseSystemPorphyry,
		Positions: []domain.Position{
			{ChartID: chart.ID, Body: domain.BodySun, Sign: domain.SignCancer, House: 10, AbsoluteDegree: decimal.RequireFromString("102.400")},
		},
		Metadata: domain.ChartMetadata{Version: domain.PipelineVersion, Source: domain.ProviderPrecise},
	}
	require.NoError(t, s.ReplaceComputation(ctx, chart.ID, second))

	loaded, err := s.GetComputation(ctx, chart.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Positions, 1)
	assert.Equal(t, domain.ProviderPrecise, loaded.Metadata.Source)

	stored, err := s.GetChart(ctx, chart.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Metadata)
	assert.Equal(t, domain.ProviderPrecise, stored.Metadata.Source)
	assert.Equal(t, domain.HouseSystemPorphyry, stored.HouseSystem)
	assert.Equal(t, domain.PipelineVersion, stored.CalculationVersion)

	// callers cannot mutate committed rows
	second.Positions[0].House = 1
	loaded.Positions[0].House = 2
	again, err := s.GetComputation(ctx, chart.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, again.Positions[0].House)
}

func TestStore_MissingChart(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.GetChart(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrChartNotFound)
	_, err = s.GetComputation(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrChartNotFound)
	err = s.ReplaceComputation(ctx, uuid.New(), &domain.ChartComputation{})
	assert.ErrorIs(t, err, domain.ErrChartNotFound)
}

func TestStore_Bodies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for _, body := range domain.DefaultCatalogue {
		b := body
		require.NoError(t, s.Create(ctx, &b))
	}
	assert.Error(t, s.Create(ctx, &domain.CelestialBody{Slug: domain.BodySun}))

	sun, err := s.GetBySlug(ctx, domain.BodySun)
	require.NoError(t, err)
	assert.Equal(t, domain.BodyTypeLuminar, sun.Type)

	_, err = s.GetBySlug(ctx, domain.BodySlug("chiron"))
	assert.ErrorIs(t, err, domain.ErrBodyNotFound)

	bodies, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, bodies, len(domain.DefaultCatalogue))
	assert.Equal(t, domain.BodyJupiter, bodies[0].Slug)
}
