package position

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/bioastro-backend/internal/domain"
)

// Skipped describes a reading that could not be turned into a position
type Skipped struct {
	Body domain.BodySlug
	Err  error
}

// Resolve converts snapshot readings into chart positions.
// Logic:
//  1. Keep the snapshot's body order (it drives aspect source/target order)
//  2. Skip readings whose body is not in the catalogue (ErrBodyDataMissing)
//  3. Round the absolute degree to 3 places and the speed to 5 places
//  4. Fold a degree that rounds up to 360.000 back to 0.000
//
// Sign and house are re-resolved from the normalised longitude and the
// snapshot's cusps so a cached payload can never disagree with the frame.
func Resolve(chartID uuid.UUID, snapshot *domain.EphemerisSnapshot, catalogue domain.Catalogue) ([]domain.Position, []Skipped) {
	positions := make([]domain.Position, 0, len(snapshot.Bodies))
	skipped := make([]Skipped, 0)

	for _, reading := range snapshot.Bodies {
		if _, ok := catalogue[reading.Body]; !ok {
			skipped = append(skipped, Skipped{
				Body: reading.Body,
				Err:  fmt.Errorf("%w: %s is not in the body catalogue", domain.ErrBodyDataMissing, reading.Body),
			})
			continue
		}

		longitude := domain.NormalizeDegree(reading.Longitude)
		speed := decimal.NewFromFloat(reading.Speed).Round(5)

		positions = append(positions, domain.Position{
			ChartID:        chartID,
			Body:           reading.Body,
			Sign:           domain.ResolveSign(longitude),
			House:          domain.ResolveHouse(longitude, snapshot.Houses.Cusps),
			AbsoluteDegree: roundDegree(longitude),
			Retrograde:     reading.Speed < 0,
			Speed:          &speed,
		})
	}

	return positions, skipped
}

var fullCircle = decimal.NewFromInt(360)

// roundDegree keeps the rounded degree inside [0, 360)
func roundDegree(longitude float64) decimal.Decimal {
	degree := decimal.NewFromFloat(longitude).Round(3)
	if degree.GreaterThanOrEqual(fullCircle) {
		return degree.Sub(fullCircle)
	}
	return degree
}
