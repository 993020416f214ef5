package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

// CatalogueSeeder ensures every tracked body exists in the catalogue
type CatalogueSeeder struct {
	repo   domain.BodyRepository
	bodies []domain.CelestialBody
}

// NewCatalogueSeeder creates a seeder for the default body catalogue
func NewCatalogueSeeder(repo domain.BodyRepository) *CatalogueSeeder {
	return &CatalogueSeeder{
		repo:   repo,
		bodies: domain.DefaultCatalogue,
	}
}

// Seed creates missing bodies and leaves existing ones untouched
func (s *CatalogueSeeder) Seed(ctx context.Context) error {
	for _, entry := range s.bodies {
		_, err := s.repo.GetBySlug(ctx, entry.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrBodyNotFound) {
			return fmt.Errorf("failed to look up body %s: %w", entry.Slug, err)
		}

		body := entry
		if err := body.Validate(); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, &body); err != nil {
			return err
		}
	}

	return nil
}
