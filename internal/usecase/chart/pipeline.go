package chart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/bioastro-backend/internal/domain"
	"github.com/simaogato/bioastro-backend/internal/usecase/aspect"
	"github.com/simaogato/bioastro-backend/internal/usecase/integral"
	"github.com/simaogato/bioastro-backend/internal/usecase/interpretation"
	"github.com/simaogato/bioastro-backend/internal/usecase/position"
	"github.com/simaogato/bioastro-backend/internal/usecase/strength"
)

// RunPipeline derives the full computation for one chart from an ephemeris snapshot.
// Logic:
//  1. Resolve positions; bodies outside the catalogue are logged and skipped
//  2. Compute aspects, strengths and indicators concurrently from the same positions
//  3. Compose the interpretation and the metadata blob
//
// It performs no I/O and is deterministic for a given input.
func RunPipeline(ctx context.Context, chartID uuid.UUID, snapshot *domain.EphemerisSnapshot, catalogue domain.Catalogue, kb *domain.KnowledgeBase, logger *zap.Logger) (*domain.ChartComputation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := snapshot.Houses.Validate(); err != nil {
		return nil, fmt.Errorf("ephemeris snapshot: %w", err)
	}

	positions, skipped := position.Resolve(chartID, snapshot, catalogue)
	for _, s := range skipped {
		logger.Warn("charts.compute.body_skipped",
			zap.String("chart_id", chartID.String()),
			zap.String("body", string(s.Body)),
			zap.Error(s.Err),
		)
	}

	var (
		aspects    []domain.Aspect
		strengths  []domain.StrengthMetric
		indicators []domain.IntegralIndicator
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		aspects = aspect.Compute(positions)
		return gctx.Err()
	})
	g.Go(func() error {
		strengths = strength.ComputeAll(positions)
		return gctx.Err()
	})
	g.Go(func() error {
		indicators = integral.Aggregate(chartID, positions)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.ChartComputation{
		HouseSystem: snapshot.HouseSystem,
		Positions:   positions,
		Aspects:     aspects,
		Strengths:   strengths,
		Indicators:  indicators,
		Metadata: domain.ChartMetadata{
			Pipeline:       domain.PipelineTag,
			Version:        domain.PipelineVersion,
			Houses:         summarizeHouses(snapshot.Houses),
			Source:         snapshot.Source,
			Interpretation: interpretation.Compose(kb, positions, indicators),
		},
	}, nil
}

func summarizeHouses(frame domain.HouseFrame) domain.HouseSummary {
	summary := domain.HouseSummary{
		Cusps:  make([]float64, len(frame.Cusps)),
		Angles: make(map[string]float64, len(frame.Angles)),
	}
	for i, c := range frame.Cusps {
		summary.Cusps[i] = round3(c)
	}
	for name, v := range frame.Angles {
		summary.Angles[name] = round3(v)
	}
	return summary
}

func round3(v float64) float64 {
	return decimal.NewFromFloat(v).Round(3).InexactFloat64()
}
