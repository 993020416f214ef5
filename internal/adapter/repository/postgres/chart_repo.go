package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

// chartRepository implements domain.ChartRepository
type chartRepository struct {
	db *DB
}

// NewChartRepository creates a new chart repository
func NewChartRepository(db *DB) domain.ChartRepository {
	return &chartRepository{db: db}
}

// CreateLocation stores a pre-resolved location
func (r *chartRepository) CreateLocation(ctx context.Context, location *domain.Location) error {
	query := `
		INSERT INTO locations (id, name, latitude, longitude, timezone)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		location.ID,
		location.Name,
		location.Latitude,
		location.Longitude,
		location.Timezone,
	)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}

	return nil
}

// CreateChart stores a new chart without any computation
func (r *chartRepository) CreateChart(ctx context.Context, chart *domain.Chart) error {
	query := `
		INSERT INTO charts (id, owner_id, title, event_time, location_id, house_system, calculation_version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		chart.ID,
		chart.OwnerID,
		chart.Title,
		chart.EventTime.UTC(),
		chart.Location.ID,
		chart.HouseSystem,
		chart.CalculationVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}

	return nil
}

// GetChart retrieves a chart joined with its location
func (r *chartRepository) GetChart(ctx context.Context, id uuid.UUID) (*domain.Chart, error) {
	query := `
		SELECT c.id, c.owner_id, c.title, c.event_time, c.house_system, c.calculation_version, c.metadata, c.updated_at,
		       l.id, l.name, l.latitude, l.longitude, l.timezone
		FROM charts c
		JOIN locations l ON l.id = c.location_id
		WHERE c.id = $1
	`

	var chart domain.Chart
	var metadata []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&chart.ID,
		&chart.OwnerID,
		&chart.Title,
		&chart.EventTime,
		&chart.HouseSystem,
		&chart.CalculationVersion,
		&metadata,
		&chart.UpdatedAt,
		&chart.Location.ID,
		&chart.Location.Name,
		&chart.Location.Latitude,
		&chart.Location.Longitude,
		&chart.Location.Timezone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("chart %s: %w", id, domain.ErrChartNotFound)
		}
		return nil, fmt.Errorf("failed to get chart: %w", err)
	}
	chart.EventTime = chart.EventTime.UTC()

	if metadata != nil {
		var meta domain.ChartMetadata
		if err := json.Unmarshal(metadata, &meta); err != nil {
			return nil, fmt.Errorf("failed to decode chart metadata: %w", err)
		}
		chart.Metadata = &meta
	}

	return &chart, nil
}

// HasPositions reports whether any position row exists for the chart
func (r *chartRepository) HasPositions(ctx context.Context, chartID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM chart_positions WHERE chart_id = $1)`, chartID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check chart positions: %w", err)
	}
	return exists, nil
}

// ReplaceComputation swaps the derived rows of a chart in one database transaction.
// The chart row is locked first so concurrent writers for the same chart serialise.
func (r *chartRepository) ReplaceComputation(ctx context.Context, chartID uuid.UUID, computation *domain.ChartComputation) error {
	metadata, err := json.Marshal(computation.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode chart metadata: %w", err)
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	var locked uuid.UUID
	err = dbTx.QueryRowContext(ctx, `SELECT id FROM charts WHERE id = $1 FOR UPDATE`, chartID).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("chart %s: %w", chartID, domain.ErrChartNotFound)
		}
		return fmt.Errorf("failed to lock chart: %w", err)
	}

	for _, table := range []string{"chart_positions", "chart_aspects", "chart_strengths", "chart_indicators"} {
		if _, err := dbTx.ExecContext(ctx, `DELETE FROM `+table+` WHERE chart_id = $1`, chartID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	insertPositionQuery := `
		INSERT INTO chart_positions (chart_id, ordinal, body_slug, sign, house, absolute_degree, retrograde, speed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i, p := range computation.Positions {
		var speed interface{}
		if p.Speed != nil {
			speed = p.Speed.String()
		}
		_, err = dbTx.ExecContext(ctx, insertPositionQuery,
			chartID,
			i,
			string(p.Body),
			string(p.Sign),
			p.House,
			p.AbsoluteDegree.String(),
			p.Retrograde,
			speed,
		)
		if err != nil {
			return fmt.Errorf("failed to insert position %s: %w", p.Body, err)
		}
	}

	insertAspectQuery := `
		INSERT INTO chart_aspects (chart_id, ordinal, source_body, target_body, aspect_type, orb, intensity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, a := range computation.Aspects {
		_, err = dbTx.ExecContext(ctx, insertAspectQuery,
			chartID,
			i,
			string(a.SourceBody),
			string(a.TargetBody),
			string(a.Type),
			a.Orb.String(),
			a.Intensity.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert aspect %s-%s: %w", a.SourceBody, a.TargetBody, err)
		}
	}

	insertStrengthQuery := `
		INSERT INTO chart_strengths (chart_id, ordinal, body_slug, metric_name, score, weight, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, s := range computation.Strengths {
		inputs, err := json.Marshal(s.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode strength inputs: %w", err)
		}
		_, err = dbTx.ExecContext(ctx, insertStrengthQuery,
			chartID,
			i,
			string(s.Body),
			s.MetricName,
			s.Score.String(),
			s.Weight.String(),
			string(inputs),
		)
		if err != nil {
			return fmt.Errorf("failed to insert strength %s: %w", s.Body, err)
		}
	}

	insertIndicatorQuery := `
		INSERT INTO chart_indicators (chart_id, ordinal, category, name, value)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, ind := range computation.Indicators {
		_, err = dbTx.ExecContext(ctx, insertIndicatorQuery,
			chartID,
			i,
			string(ind.Category),
			ind.Name,
			ind.Value.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert indicator %s/%s: %w", ind.Category, ind.Name, err)
		}
	}

	updateChartQuery := `
		UPDATE charts
		SET metadata = $2, house_system = $3, calculation_version = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err = dbTx.ExecContext(ctx, updateChartQuery,
		chartID,
		string(metadata),
		computation.HouseSystem,
		computation.Metadata.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update chart metadata: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetComputation loads the committed computation in its original order
func (r *chartRepository) GetComputation(ctx context.Context, chartID uuid.UUID) (*domain.ChartComputation, error) {
	chart, err := r.GetChart(ctx, chartID)
	if err != nil {
		return nil, err
	}

	computation := &domain.ChartComputation{HouseSystem: chart.HouseSystem}
	if chart.Metadata != nil {
		computation.Metadata = *chart.Metadata
	}

	if computation.Positions, err = r.listPositions(ctx, chartID); err != nil {
		return nil, err
	}
	if computation.Aspects, err = r.listAspects(ctx, chartID); err != nil {
		return nil, err
	}
	if computation.Strengths, err = r.listStrengths(ctx, chartID); err != nil {
		return nil, err
	}
	if computation.Indicators, err = r.listIndicators(ctx, chartID); err != nil {
		return nil, err
	}

	return computation, nil
}

func (r *chartRepository) listPositions(ctx context.Context, chartID uuid.UUID) ([]domain.Position, error) {
	query := `
		SELECT body_slug, sign, house, absolute_degree, retrograde, speed
		FROM chart_positions
		WHERE chart_id = $1
		ORDER BY ordinal
	`

	rows, err := r.db.QueryContext(ctx, query, chartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		p := domain.Position{ChartID: chartID}
		var degreeStr string
		var speedStr sql.NullString

		if err := rows.Scan(&p.Body, &p.Sign, &p.House, &degreeStr, &p.Retrograde, &speedStr); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}

		if p.AbsoluteDegree, err = decimal.NewFromString(degreeStr); err != nil {
			return nil, fmt.Errorf("failed to parse absolute_degree: %w", err)
		}
		if speedStr.Valid {
			speed, err := decimal.NewFromString(speedStr.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse speed: %w", err)
			}
			p.Speed = &speed
		}

		positions = append(positions, p)
	}

	return positions, rows.Err()
}

func (r *chartRepository) listAspects(ctx context.Context, chartID uuid.UUID) ([]domain.Aspect, error) {
	query := `
		SELECT source_body, target_body, aspect_type, orb, intensity
		FROM chart_aspects
		WHERE chart_id = $1
		ORDER BY ordinal
	`

	rows, err := r.db.QueryContext(ctx, query, chartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list aspects: %w", err)
	}
	defer rows.Close()

	var aspects []domain.Aspect
	for rows.Next() {
		a := domain.Aspect{ChartID: chartID}
		var orbStr, intensityStr string

		if err := rows.Scan(&a.SourceBody, &a.TargetBody, &a.Type, &orbStr, &intensityStr); err != nil {
			return nil, fmt.Errorf("failed to scan aspect: %w", err)
		}
		if a.Orb, err = decimal.NewFromString(orbStr); err != nil {
			return nil, fmt.Errorf("failed to parse orb: %w", err)
		}
		if a.Intensity, err = decimal.NewFromString(intensityStr); err != nil {
			return nil, fmt.Errorf("failed to parse intensity: %w", err)
		}

		aspects = append(aspects, a)
	}

	return aspects, rows.Err()
}

func (r *chartRepository) listStrengths(ctx context.Context, chartID uuid.UUID) ([]domain.StrengthMetric, error) {
	query := `
		SELECT body_slug, metric_name, score, weight, metadata
		FROM chart_strengths
		WHERE chart_id = $1
		ORDER BY ordinal
	`

	rows, err := r.db.QueryContext(ctx, query, chartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list strengths: %w", err)
	}
	defer rows.Close()

	var metrics []domain.StrengthMetric
	for rows.Next() {
		m := domain.StrengthMetric{ChartID: chartID}
		var scoreStr, weightStr string
		var inputs []byte

		if err := rows.Scan(&m.Body, &m.MetricName, &scoreStr, &weightStr, &inputs); err != nil {
			return nil, fmt.Errorf("failed to scan strength: %w", err)
		}
		if m.Score, err = decimal.NewFromString(scoreStr); err != nil {
			return nil, fmt.Errorf("failed to parse score: %w", err)
		}
		if m.Weight, err = decimal.NewFromString(weightStr); err != nil {
			return nil, fmt.Errorf("failed to parse weight: %w", err)
		}
		if err := json.Unmarshal(inputs, &m.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode strength inputs: %w", err)
		}

		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}

func (r *chartRepository) listIndicators(ctx context.Context, chartID uuid.UUID) ([]domain.IntegralIndicator, error) {
	query := `
		SELECT category, name, value
		FROM chart_indicators
		WHERE chart_id = $1
		ORDER BY ordinal
	`

	rows, err := r.db.QueryContext(ctx, query, chartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list indicators: %w", err)
	}
	defer rows.Close()

	var indicators []domain.IntegralIndicator
	for rows.Next() {
		ind := domain.IntegralIndicator{ChartID: chartID}
		var valueStr string

		if err := rows.Scan(&ind.Category, &ind.Name, &valueStr); err != nil {
			return nil, fmt.Errorf("failed to scan indicator: %w", err)
		}
		if ind.Value, err = decimal.NewFromString(valueStr); err != nil {
			return nil, fmt.Errorf("failed to parse indicator value: %w", err)
		}

		indicators = append(indicators, ind)
	}

	return indicators, rows.Err()
}
