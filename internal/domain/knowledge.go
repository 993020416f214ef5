package domain

// KnowledgeBase is the static, read-only interpretation text.
// It is loaded once at startup and never mutated afterwards.
type KnowledgeBase struct {
	Labels   Labels                     `yaml:"labels" json:"labels"`
	Bodies   map[BodySlug]BodyKnowledge `yaml:"bodies" json:"bodies"`
	Integral IntegralKnowledge          `yaml:"integral" json:"integral"`
}

// Labels localise identifiers; sign and house knowledge is keyed by these labels
type Labels struct {
	Signs    map[Sign]string   `yaml:"signs" json:"signs"`
	Elements map[string]string `yaml:"elements" json:"elements"`
	Crosses  map[string]string `yaml:"crosses" json:"crosses"`
	Zones    map[string]string `yaml:"zones" json:"zones"`
}

// BodyKnowledge describes one body
type BodyKnowledge struct {
	CoreEssence              string                `yaml:"core_essence" json:"core_essence"`
	FunctionalSpectrum       *FunctionalSpectrum   `yaml:"functional_spectrum" json:"functional_spectrum,omitempty"`
	InSigns                  map[string]Expression `yaml:"in_signs" json:"in_signs,omitempty"`
	InHouses                 map[string]Expression `yaml:"in_houses" json:"in_houses,omitempty"`
	AspectsInterpretation    map[string]string     `yaml:"aspects_interpretation" json:"aspects_interpretation,omitempty"`
	StrengthAssessment       *StrengthAssessment   `yaml:"strength_assessment" json:"strength_assessment,omitempty"`
	RetrogradeInterpretation string                `yaml:"retrograde_interpretation" json:"retrograde_interpretation,omitempty"`
}

// FunctionalSpectrum contrasts the constructive and destructive expression of a body
type FunctionalSpectrum struct {
	Harmonious    string `yaml:"harmonious" json:"harmonious"`
	Disharmonious string `yaml:"disharmonious" json:"disharmonious"`
}

// Expression is how a body manifests in a sign or a house
type Expression struct {
	Summary  string   `yaml:"summary" json:"summary"`
	Keywords []string `yaml:"keywords" json:"keywords,omitempty"`
	Advice   string   `yaml:"advice" json:"advice,omitempty"`
}

// StrengthAssessment describes a strong versus weak placement
type StrengthAssessment struct {
	Strong string `yaml:"strong" json:"strong"`
	Weak   string `yaml:"weak" json:"weak"`
}

// IntegralKnowledge describes the element, cross and zone buckets
type IntegralKnowledge struct {
	Elements             map[string]BucketKnowledge `yaml:"elements" json:"elements"`
	Crosses              map[string]BucketKnowledge `yaml:"crosses" json:"crosses"`
	Zones                map[string]BucketKnowledge `yaml:"zones" json:"zones"`
	PracticalApplication *PracticalApplication      `yaml:"practical_application" json:"practical_application,omitempty"`
}

// BucketKnowledge describes one indicator bucket
type BucketKnowledge struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Strengths   []string `yaml:"strengths" json:"strengths,omitempty"`
	Challenges  []string `yaml:"challenges" json:"challenges,omitempty"`
}

// PracticalApplication is general guidance attached to every integral block
type PracticalApplication struct {
	Summary               string   `yaml:"summary" json:"summary"`
	TherapeuticApproaches []string `yaml:"therapeutic_approaches" json:"therapeutic_approaches,omitempty"`
}

// Interpretation is the descriptive payload composed from knowledge
type Interpretation struct {
	Planets  []PlanetInsight `json:"planets"`
	Integral IntegralInsight `json:"integral"`
}

// PlanetInsight joins one position with its body knowledge.
// Fields without a knowledge entry stay nil.
type PlanetInsight struct {
	Slug                     BodySlug            `json:"slug"`
	Sign                     Sign                `json:"sign"`
	House                    int                 `json:"house"`
	Retrograde               bool                `json:"retrograde"`
	CoreEssence              *string             `json:"core_essence"`
	FunctionalSpectrum       *FunctionalSpectrum `json:"functional_spectrum"`
	SignExpression           *Expression         `json:"sign_expression"`
	HouseExpression          *Expression         `json:"house_expression"`
	AspectsInterpretation    map[string]string   `json:"aspects_interpretation"`
	StrengthAssessment       *StrengthAssessment `json:"strength_assessment"`
	RetrogradeInterpretation *string             `json:"retrograde_interpretation"`
}

// IntegralInsight holds the per-category blocks
type IntegralInsight struct {
	Elements              CategoryBlock         `json:"elements"`
	Crosses               CategoryBlock         `json:"crosses"`
	Zones                 CategoryBlock         `json:"zones"`
	PracticalApplication  *PracticalApplication `json:"practical_application"`
	TherapeuticApproaches []string              `json:"therapeutic_approaches"`
}

// CategoryBlock reports the values of one category and its dominant bucket
type CategoryBlock struct {
	Values    map[string]float64         `json:"values"`
	Dominant  DominantBucket             `json:"dominant"`
	Knowledge map[string]BucketKnowledge `json:"knowledge"`
}

// DominantBucket is the bucket with the highest value; all fields nil when the category is empty
type DominantBucket struct {
	Key       *string          `json:"key"`
	Label     *string          `json:"label"`
	Knowledge *BucketKnowledge `json:"knowledge"`
}
