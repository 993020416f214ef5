package integral

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/bioastro-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// bucketTotals accumulates weights for one category, keeping bucket order
type bucketTotals struct {
	category domain.IndicatorCategory
	names    []string
	totals   map[string]decimal.Decimal
}

func newBucketTotals(category domain.IndicatorCategory, names []string) *bucketTotals {
	totals := make(map[string]decimal.Decimal, len(names))
	for _, n := range names {
		totals[n] = decimal.Zero
	}
	return &bucketTotals{category: category, names: names, totals: totals}
}

func (b *bucketTotals) add(name string, weight decimal.Decimal) {
	if _, ok := b.totals[name]; ok {
		b.totals[name] = b.totals[name].Add(weight)
	}
}

// indicators normalises the totals into percentages.
// An empty category divides by 1 and therefore reports all zeros.
func (b *bucketTotals) indicators(chartID uuid.UUID) []domain.IntegralIndicator {
	sum := decimal.Zero
	for _, n := range b.names {
		sum = sum.Add(b.totals[n])
	}
	if sum.IsZero() {
		sum = decimal.NewFromInt(1)
	}

	result := make([]domain.IntegralIndicator, 0, len(b.names))
	for _, n := range b.names {
		result = append(result, domain.IntegralIndicator{
			ChartID:  chartID,
			Category: b.category,
			Name:     n,
			Value:    b.totals[n].Div(sum).Mul(hundred).Round(2),
		})
	}
	return result
}

// Aggregate computes element, modality and zone distributions.
// Every body contributes weight 1 to one bucket per category; every bucket is
// always emitted, in table order (elements, then modalities, then zones).
func Aggregate(chartID uuid.UUID, positions []domain.Position) []domain.IntegralIndicator {
	elements := newBucketTotals(domain.CategoryElement, names(domain.Elements))
	modalities := newBucketTotals(domain.CategoryModality, names(domain.Modalities))
	zones := newBucketTotals(domain.CategoryZone, names(domain.Zones))

	weight := decimal.NewFromInt(1)
	for _, p := range positions {
		if element, ok := domain.ElementOf(p.Sign); ok {
			elements.add(string(element), weight)
		}
		if modality, ok := domain.ModalityOf(p.Sign); ok {
			modalities.add(string(modality), weight)
		}
		if zone, ok := domain.ZoneOf(p.Sign); ok {
			zones.add(string(zone), weight)
		}
	}

	result := make([]domain.IntegralIndicator, 0, len(domain.Elements)+len(domain.Modalities)+len(domain.Zones))
	result = append(result, elements.indicators(chartID)...)
	result = append(result, modalities.indicators(chartID)...)
	result = append(result, zones.indicators(chartID)...)
	return result
}

func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
