package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

// bodyRepository implements domain.BodyRepository
type bodyRepository struct {
	db *DB
}

// NewBodyRepository creates a new celestial body repository
func NewBodyRepository(db *DB) domain.BodyRepository {
	return &bodyRepository{db: db}
}

// GetBySlug retrieves a body by its slug
func (r *bodyRepository) GetBySlug(ctx context.Context, slug domain.BodySlug) (*domain.CelestialBody, error) {
	query := `
		SELECT slug, name, body_type, is_retrograde_capable
		FROM celestial_bodies
		WHERE slug = $1
	`

	var body domain.CelestialBody
	err := r.db.QueryRowContext(ctx, query, string(slug)).Scan(
		&body.Slug,
		&body.Name,
		&body.Type,
		&body.IsRetrogradeCapable,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("body %s: %w", slug, domain.ErrBodyNotFound)
		}
		return nil, fmt.Errorf("failed to get body by slug: %w", err)
	}

	return &body, nil
}

// Create creates a new catalogue entry
func (r *bodyRepository) Create(ctx context.Context, body *domain.CelestialBody) error {
	query := `
		INSERT INTO celestial_bodies (slug, name, body_type, is_retrograde_capable)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		string(body.Slug),
		body.Name,
		string(body.Type),
		body.IsRetrogradeCapable,
	)
	if err != nil {
		return fmt.Errorf("failed to create body: %w", err)
	}

	return nil
}

// List returns every catalogued body ordered by slug
func (r *bodyRepository) List(ctx context.Context) ([]domain.CelestialBody, error) {
	query := `
		SELECT slug, name, body_type, is_retrograde_capable
		FROM celestial_bodies
		ORDER BY slug
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bodies: %w", err)
	}
	defer rows.Close()

	var bodies []domain.CelestialBody
	for rows.Next() {
		var body domain.CelestialBody
		if err := rows.Scan(&body.Slug, &body.Name, &body.Type, &body.IsRetrogradeCapable); err != nil {
			return nil, fmt.Errorf("failed to scan body: %w", err)
		}
		bodies = append(bodies, body)
	}

	return bodies, rows.Err()
}
