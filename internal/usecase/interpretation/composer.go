package interpretation

import (
	"github.com/simaogato/bioastro-backend/internal/domain"
)

// Compose joins positions and indicators against the knowledge base.
// Missing knowledge never fails: the matching field is left nil and bodies
// without any entry are omitted from the planets list.
func Compose(kb *domain.KnowledgeBase, positions []domain.Position, indicators []domain.IntegralIndicator) domain.Interpretation {
	if kb == nil {
		kb = &domain.KnowledgeBase{}
	}
	return domain.Interpretation{
		Planets:  PlanetInsights(kb, positions),
		Integral: IntegralInsights(kb, indicators),
	}
}

// PlanetInsights produces one insight per position whose body has knowledge
func PlanetInsights(kb *domain.KnowledgeBase, positions []domain.Position) []domain.PlanetInsight {
	insights := make([]domain.PlanetInsight, 0, len(positions))

	for _, p := range positions {
		knowledge, ok := kb.Bodies[p.Body]
		if !ok {
			continue
		}

		insight := domain.PlanetInsight{
			Slug:                  p.Body,
			Sign:                  p.Sign,
			House:                 p.House,
			Retrograde:            p.Retrograde,
			CoreEssence:           optionalString(knowledge.CoreEssence),
			FunctionalSpectrum:    knowledge.FunctionalSpectrum,
			AspectsInterpretation: knowledge.AspectsInterpretation,
			StrengthAssessment:    knowledge.StrengthAssessment,
		}

		if label, ok := kb.Labels.Signs[p.Sign]; ok {
			if expr, ok := knowledge.InSigns[label]; ok {
				insight.SignExpression = &expr
			}
		}
		if key := domain.HouseKey(p.House); key != "" {
			if expr, ok := knowledge.InHouses[key]; ok {
				insight.HouseExpression = &expr
			}
		}
		if p.Retrograde {
			insight.RetrogradeInterpretation = optionalString(knowledge.RetrogradeInterpretation)
		}

		insights = append(insights, insight)
	}

	return insights
}

// namedValue keeps indicator order, which decides dominant-bucket ties
type namedValue struct {
	name  string
	value float64
}

// IntegralInsights builds the element, cross and zone blocks
func IntegralInsights(kb *domain.KnowledgeBase, indicators []domain.IntegralIndicator) domain.IntegralInsight {
	var elements, crosses, zones []namedValue

	for _, ind := range indicators {
		v := namedValue{name: ind.Name, value: ind.Value.InexactFloat64()}
		switch ind.Category {
		case domain.CategoryElement:
			elements = append(elements, v)
		case domain.CategoryModality:
			crosses = append(crosses, v)
		case domain.CategoryZone:
			zones = append(zones, v)
		}
	}

	insight := domain.IntegralInsight{
		Elements:             categoryBlock(elements, kb.Integral.Elements, kb.Labels.Elements),
		Crosses:              categoryBlock(crosses, kb.Integral.Crosses, kb.Labels.Crosses),
		Zones:                categoryBlock(zones, kb.Integral.Zones, kb.Labels.Zones),
		PracticalApplication: kb.Integral.PracticalApplication,
	}
	if kb.Integral.PracticalApplication != nil {
		insight.TherapeuticApproaches = kb.Integral.PracticalApplication.TherapeuticApproaches
	}
	return insight
}

func categoryBlock(values []namedValue, knowledge map[string]domain.BucketKnowledge, labels map[string]string) domain.CategoryBlock {
	block := domain.CategoryBlock{
		Values:    make(map[string]float64, len(values)),
		Knowledge: knowledge,
	}
	for _, v := range values {
		block.Values[label(labels, v.name)] = v.value
	}

	key, ok := dominantKey(values)
	if !ok {
		return block
	}

	l := label(labels, key)
	block.Dominant.Key = &key
	block.Dominant.Label = &l
	if entry, ok := knowledge[key]; ok {
		block.Dominant.Knowledge = &entry
	}
	return block
}

// dominantKey returns the bucket with the maximum value; the first one wins ties
func dominantKey(values []namedValue) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	best := values[0]
	for _, v := range values[1:] {
		if v.value > best.value {
			best = v
		}
	}
	return best.name, true
}

func label(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
