package strength

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/simaogato/bioastro-backend/internal/domain"
)

// Score modifiers for the bio_strength metric
const (
	BaseScore         = 50.0
	RulershipBonus    = 20.0
	DetrimentPenalty  = 15.0
	RetrogradePenalty = 10.0
	SpeedBonus        = 5.0
	FastSpeed         = 1.0 // degrees per day
	MinScore          = 0.0
	MaxScore          = 100.0
)

// DefaultWeight is the weight of the only metric computed today
var DefaultWeight = decimal.RequireFromString("1.000")

// Compute scores a single position.
// Logic:
//  1. Start at 50
//  2. +20 when the body rules its sign, -15 when it is in detriment
//  3. -10 when retrograde, +5 when |speed| > 1°/day
//  4. Clamp to [0, 100] and round to 3 places
func Compute(position domain.Position) domain.StrengthMetric {
	score := BaseScore
	if domain.Rulership[position.Sign] == position.Body {
		score += RulershipBonus
	}
	if domain.Detriment[position.Sign] == position.Body {
		score -= DetrimentPenalty
	}
	if position.Retrograde {
		score -= RetrogradePenalty
	}
	speed := position.SpeedValue()
	if math.Abs(speed) > FastSpeed {
		score += SpeedBonus
	}

	score = math.Max(MinScore, math.Min(MaxScore, score))

	return domain.StrengthMetric{
		ChartID:    position.ChartID,
		Body:       position.Body,
		MetricName: domain.MetricBioStrength,
		Score:      decimal.NewFromFloat(score).Round(3),
		Weight:     DefaultWeight,
		Metadata: domain.StrengthInputs{
			Sign:       position.Sign,
			Retrograde: position.Retrograde,
			Speed:      speed,
		},
	}
}

// ComputeAll scores every position independently, keeping input order
func ComputeAll(positions []domain.Position) []domain.StrengthMetric {
	metrics := make([]domain.StrengthMetric, 0, len(positions))
	for _, p := range positions {
		metrics = append(metrics, Compute(p))
	}
	return metrics
}
