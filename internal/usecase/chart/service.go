package chart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

// Outcome reports what a compute request did
type Outcome string

const (
	OutcomeComputed Outcome = "computed"
	OutcomeSkipped  Outcome = "skipped"
)

// Service orchestrates chart computation: ephemeris, derivation, persistence
type Service struct {
	charts    domain.ChartRepository
	bodies    domain.BodyRepository
	ephemeris domain.EphemerisProvider
	kb        *domain.KnowledgeBase
	locks     *KeyedMutex
	logger    *zap.Logger
}

// NewService creates a new chart service
func NewService(
	charts domain.ChartRepository,
	bodies domain.BodyRepository,
	ephemeris domain.EphemerisProvider,
	kb *domain.KnowledgeBase,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		charts:    charts,
		bodies:    bodies,
		ephemeris: ephemeris,
		kb:        kb,
		locks:     NewKeyedMutex(),
		logger:    logger,
	}
}

// CreateChart validates and stores a chart together with its location
func (s *Service) CreateChart(ctx context.Context, chart *domain.Chart) error {
	if chart.ID == uuid.Nil {
		chart.ID = uuid.New()
	}
	if chart.Location.ID == uuid.Nil {
		chart.Location.ID = uuid.New()
	}
	chart.EventTime = chart.EventTime.UTC()

	if err := chart.Validate(); err != nil {
		return err
	}

	if err := s.charts.CreateLocation(ctx, &chart.Location); err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	if err := s.charts.CreateChart(ctx, chart); err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}

	s.logger.Info("charts.create.completed", zap.String("chart_id", chart.ID.String()))
	return nil
}

// GetChart returns the chart and its committed computation
func (s *Service) GetChart(ctx context.Context, chartID uuid.UUID) (*domain.Chart, *domain.ChartComputation, error) {
	chart, err := s.charts.GetChart(ctx, chartID)
	if err != nil {
		return nil, nil, err
	}

	computation, err := s.charts.GetComputation(ctx, chartID)
	if err != nil {
		return nil, nil, err
	}
	return chart, computation, nil
}

// ComputeChart runs the pipeline for one chart.
// Logic:
//  1. Load and validate the chart before any work
//  2. Serialise runs for the same chart
//  3. Skip when positions already exist and force is false
//  4. Fetch ephemeris (the provider handles caching and fallback)
//  5. Derive the computation and replace the stored one atomically
func (s *Service) ComputeChart(ctx context.Context, chartID uuid.UUID, force bool) (Outcome, error) {
	log := s.logger.With(zap.String("chart_id", chartID.String()), zap.Bool("force", force))

	chart, err := s.charts.GetChart(ctx, chartID)
	if err != nil {
		return "", err
	}
	if err := chart.Validate(); err != nil {
		log.Warn("charts.compute.invalid", zap.Error(err))
		return "", err
	}

	unlock := s.locks.Lock(chartID)
	defer unlock()

	if !force {
		has, err := s.charts.HasPositions(ctx, chartID)
		if err != nil {
			return "", fmt.Errorf("failed to check existing positions: %w", err)
		}
		if has {
			log.Info("charts.compute.skipped")
			return OutcomeSkipped, nil
		}
	}

	log.Info("charts.compute.started", zap.String("provider", string(s.ephemeris.Tag())))

	snapshot, err := s.ephemeris.Fetch(ctx, chart.EventTime, chart.Location)
	if err != nil {
		log.Error("charts.compute.ephemeris_failed", zap.Error(err))
		return "", fmt.Errorf("failed to fetch ephemeris: %w", err)
	}

	catalogue, err := s.catalogue(ctx)
	if err != nil {
		return "", err
	}

	computation, err := RunPipeline(ctx, chartID, snapshot, catalogue, s.kb, log)
	if err != nil {
		log.Error("charts.compute.pipeline_failed", zap.Error(err))
		return "", err
	}

	if err := s.charts.ReplaceComputation(ctx, chartID, computation); err != nil {
		log.Error("charts.compute.persist_failed", zap.Error(err))
		return "", fmt.Errorf("failed to persist computation: %w", err)
	}

	log.Info("charts.compute.completed",
		zap.String("source", string(computation.Metadata.Source)),
		zap.Int("positions", len(computation.Positions)),
		zap.Int("aspects", len(computation.Aspects)),
	)
	return OutcomeComputed, nil
}

func (s *Service) catalogue(ctx context.Context) (domain.Catalogue, error) {
	bodies, err := s.bodies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load body catalogue: %w", err)
	}
	return domain.NewCatalogue(bodies), nil
}
