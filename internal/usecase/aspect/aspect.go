package aspect

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/simaogato/bioastro-backend/internal/domain"
)

// AngularDistance returns the shortest separation of two longitudes on the circle (0-180°)
func AngularDistance(a, b float64) float64 {
	diff := math.Mod(math.Abs(a-b), 360.0)
	if diff > 180.0 {
		diff = 360.0 - diff
	}
	return diff
}

// Classify matches a separation against the rule table.
// Rules are evaluated in table order and the first rule within orb wins,
// so a separation inside two overlapping orbs reports only the earlier rule.
// Returns the matched rule and its deviation from the exact angle.
func Classify(separation float64) (domain.AspectRule, float64, bool) {
	for _, rule := range domain.AspectRules {
		deviation := math.Min(math.Abs(separation-rule.Angle), math.Abs(360.0-separation-rule.Angle))
		if deviation <= rule.Orb {
			return rule, deviation, true
		}
	}
	return domain.AspectRule{}, 0, false
}

// Compute finds at most one aspect per unordered pair of positions.
// Pairs are visited in input order; the earlier position becomes the source.
func Compute(positions []domain.Position) []domain.Aspect {
	aspects := make([]domain.Aspect, 0)

	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			a := positions[i]
			b := positions[j]
			if a.Body == b.Body {
				continue
			}

			separation := AngularDistance(a.Longitude(), b.Longitude())
			rule, deviation, ok := Classify(separation)
			if !ok {
				continue
			}

			intensity := math.Max(0, 1-(deviation/rule.Orb))
			aspects = append(aspects, domain.Aspect{
				ChartID:    a.ChartID,
				SourceBody: a.Body,
				TargetBody: b.Body,
				Type:       rule.Type,
				Orb:        decimal.NewFromFloat(deviation).Round(2),
				Intensity:  decimal.NewFromFloat(intensity).Round(2),
			})
		}
	}

	return aspects
}
