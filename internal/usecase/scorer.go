package usecase

import (
	"math"
	"regexp"
	"strings"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

// Impact weights: grades contribute up to 40 points each, CO2 up to 20
const (
	gradeWeight = 8
	co2Weight   = 4
)

// ScorerConfig holds configuration for score derivation
type ScorerConfig struct {
	// IncludeEstimatedCO2 lets category-based CO2 estimates count toward the impact score
	IncludeEstimatedCO2 bool
}

// Scorer derives grades, CO2 and the impact score from raw product records.
// It never fails: missing fields end in GradeUnknown or an estimate.
type Scorer struct {
	includeEstimatedCO2 bool
}

// NewScorer creates a new scorer
func NewScorer(config ScorerConfig) *Scorer {
	return &Scorer{includeEstimatedCO2: config.IncludeEstimatedCO2}
}

// Score builds the full report for a product
func (s *Scorer) Score(raw domain.RawProduct) domain.ScoreReport {
	nutrition, nutritionEstimated := NutritionGrade(raw)
	environment, environmentEstimated := EnvironmentGrade(raw)
	co2 := EstimateCO2(raw)

	return domain.ScoreReport{
		NutritionGrade:       nutrition,
		NutritionEstimated:   nutritionEstimated,
		EnvironmentGrade:     environment,
		EnvironmentEstimated: environmentEstimated,
		CO2:                  co2,
		Impact:               ComputeImpact(nutrition, environment, co2, s.includeEstimatedCO2),
	}
}

var (
	nutritionGradeFields   = []string{"nutriscore_grade", "nutrition_grades", "nutrition_grade_fr"}
	environmentGradeFields = []string{"ecoscore_grade", "environmental_score_grade"}

	nutritionScoreKeys = []string{
		"nutrition-score-fr",
		"nutrition-score-fr_100g",
		"nutrition-score-fr_value",
		"nutrition-score",
		"nutrition_score_fr",
	}

	singleLetterGrade = regexp.MustCompile(`(?i)^[a-e]$`)
)

// gradeSource is one place a grade may come from. taken is true once the
// source holds a non-empty value, whether or not that value is a valid grade.
type gradeSource func(raw domain.RawProduct) (g domain.Grade, taken bool)

// firstSourceGrade returns the normalized grade of the first source holding a
// value. Later sources are never consulted once one is taken, so an invalid
// value ends as GradeUnknown.
func firstSourceGrade(raw domain.RawProduct, sources []gradeSource) domain.Grade {
	for _, source := range sources {
		if g, taken := source(raw); taken {
			return g
		}
	}
	return domain.GradeUnknown
}

func letterField(path ...string) gradeSource {
	return func(raw domain.RawProduct) (domain.Grade, bool) {
		v, ok := raw.Value(path...)
		if !ok {
			return domain.GradeUnknown, false
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return domain.GradeUnknown, false
		}
		return domain.ParseGrade(v), true
	}
}

func scoreField(toGrade func(float64) domain.Grade, path ...string) gradeSource {
	return func(raw domain.RawProduct) (domain.Grade, bool) {
		score, ok := raw.Float(path...)
		if !ok {
			return domain.GradeUnknown, false
		}
		return toGrade(score), true
	}
}

func nutritionSources() []gradeSource {
	sources := make([]gradeSource, 0, 12)
	for _, field := range nutritionGradeFields {
		sources = append(sources, letterField(field))
	}
	sources = append(sources,
		letterField("nutriscore_data", "grade"),
		scoreField(NutritionGradeFromScore, "nutriscore_data", "score"),
		scoreField(NutritionGradeFromScore, "nutriscore_score"),
	)
	for _, key := range nutritionScoreKeys {
		sources = append(sources, scoreField(NutritionGradeFromScore, "nutriments", key))
	}
	return sources
}

func environmentSources() []gradeSource {
	sources := make([]gradeSource, 0, 8)
	for _, field := range environmentGradeFields {
		sources = append(sources, letterField(field))
	}
	return append(sources,
		letterField("ecoscore_data", "grade"),
		letterField("ecoscore_data", "adjusted_grade"),
		scoreField(EnvironmentGradeFromScore, "ecoscore_data", "score"),
		scoreField(EnvironmentGradeFromScore, "ecoscore_score"),
		impactLevelLetter,
	)
}

// impactLevelLetter reads environment_impact_level only when it is a bare letter
func impactLevelLetter(raw domain.RawProduct) (domain.Grade, bool) {
	s, ok := raw.String("environment_impact_level")
	if !ok || !singleLetterGrade.MatchString(s) {
		return domain.GradeUnknown, false
	}
	return domain.ParseGrade(s), true
}

// NutritionGrade extracts the nutrition grade. The second result is true when
// the grade came from the nutrient heuristic rather than an upstream field.
func NutritionGrade(raw domain.RawProduct) (domain.Grade, bool) {
	if g := firstSourceGrade(raw, nutritionSources()); g.Known() {
		return g, false
	}
	if g := estimateNutritionGrade(raw); g.Known() {
		return g, true
	}
	return domain.GradeUnknown, false
}

// EnvironmentGrade extracts the environment grade. The second result is true
// when the grade came from the packaging/label heuristic.
func EnvironmentGrade(raw domain.RawProduct) (domain.Grade, bool) {
	if g := firstSourceGrade(raw, environmentSources()); g.Known() {
		return g, false
	}
	if g := estimateEnvironmentGrade(raw); g.Known() {
		return g, true
	}
	return domain.GradeUnknown, false
}

// NutritionGradeFromScore converts a nutrition score (-15..40, lower is better)
func NutritionGradeFromScore(score float64) domain.Grade {
	switch {
	case score <= -1:
		return domain.GradeA
	case score <= 2:
		return domain.GradeB
	case score <= 10:
		return domain.GradeC
	case score <= 18:
		return domain.GradeD
	default:
		return domain.GradeE
	}
}

// EnvironmentGradeFromScore converts an environment score (0..100, lower is better)
func EnvironmentGradeFromScore(score float64) domain.Grade {
	switch {
	case score <= 20:
		return domain.GradeA
	case score <= 40:
		return domain.GradeB
	case score <= 60:
		return domain.GradeC
	case score <= 80:
		return domain.GradeD
	default:
		return domain.GradeE
	}
}

// estimateNutritionGrade scores raw nutrients per 100g. Fat, saturated fat,
// sugar and salt push toward E; fiber and protein pull toward A. Products
// without any nutrient value stay unknown.
func estimateNutritionGrade(raw domain.RawProduct) domain.Grade {
	fat, hasFat := raw.Float("nutriments", "fat_100g")
	satFat, hasSatFat := raw.Float("nutriments", "saturated-fat_100g")
	sugar, hasSugar := raw.Float("nutriments", "sugars_100g")
	salt, hasSalt := raw.Float("nutriments", "salt_100g")
	fiber, hasFiber := raw.Float("nutriments", "fiber_100g")
	protein, hasProtein := raw.Float("nutriments", "proteins_100g")

	if !hasFat && !hasSatFat && !hasSugar && !hasSalt && !hasFiber && !hasProtein {
		return domain.GradeUnknown
	}

	score := 0.0
	if fat > 20 || satFat > 10 {
		score += 10
	}
	if sugar > 22.5 {
		score += 10
	}
	if salt > 1.5 {
		score += 10
	}
	if fiber > 3 {
		score -= 5
	}
	if protein > 10 {
		score -= 2
	}
	return NutritionGradeFromScore(score)
}

var (
	packagingKeywords = []string{"recycl", "biodegrad"}
	labelKeywords     = []string{"organic", "bio", "fair-trade", "fairtrade"}
)

// estimateEnvironmentGrade counts sustainability indicators: recyclable
// packaging (+2), organic or fair-trade labels (+3), a declared origin (+1).
func estimateEnvironmentGrade(raw domain.RawProduct) domain.Grade {
	points := 0

	packaging := strings.ToLower(strings.Join(append(raw.Strings("packaging_tags"), stringOrEmpty(raw, "packaging")), " "))
	if containsAny(packaging, packagingKeywords) {
		points += 2
	}

	labels := strings.ToLower(strings.Join(append(raw.Strings("labels_tags"), stringOrEmpty(raw, "labels")), " "))
	if containsAny(labels, labelKeywords) {
		points += 3
	}

	if origins, ok := raw.String("origins"); ok && origins != "" {
		points++
	} else if len(raw.Strings("origins_tags")) > 0 {
		points++
	}

	switch {
	case points >= 4:
		return domain.GradeA
	case points == 3:
		return domain.GradeB
	case points == 2:
		return domain.GradeC
	case points == 1:
		return domain.GradeD
	}
	return domain.GradeUnknown
}

// co2Paths are tried in order for a measured CO2 value in grams per 100g
var co2Paths = [][]string{
	{"ecoscore_data", "agribalyse", "co2_total"},
	{"ecoscore_data", "co2_total"},
	{"ecoscore_data", "agribalyse", "ef_agriculture"},
	{"ecoscore_data", "agribalyse", "ef_consumption"},
	{"environment_impact_level"},
	{"carbon_footprint"},
	{"carbon_footprint_per_kg_of_product"},
}

// categoryCO2 maps category keywords to grams of CO2 per 100g; first match wins
var categoryCO2 = []struct {
	keywords []string
	grams    float64
}{
	{[]string{"meat", "beef", "lamb"}, 2500},
	{[]string{"pork", "chicken"}, 1200},
	{[]string{"cheese", "dairy"}, 1000},
	{[]string{"fish", "seafood"}, 800},
	{[]string{"grain", "cereal", "bread"}, 300},
	{[]string{"fruit", "vegetable"}, 200},
	{[]string{"beverage", "drink"}, 150},
}

const defaultCategoryCO2 = 500

// EstimateCO2 returns the measured CO2 when upstream has a positive value,
// otherwise a category-based estimate.
func EstimateCO2(raw domain.RawProduct) domain.CO2Value {
	for _, path := range co2Paths {
		if grams, ok := raw.Float(path...); ok && grams > 0 {
			return domain.MeasuredCO2(grams)
		}
	}
	return domain.EstimatedCO2(CategoryCO2(raw))
}

// CategoryCO2 estimates grams of CO2 per 100g from the product categories
func CategoryCO2(raw domain.RawProduct) float64 {
	categories := raw.Strings("categories_tags")
	if len(categories) == 0 {
		if s, ok := raw.String("categories"); ok {
			categories = []string{s}
		}
	}
	joined := strings.ToLower(strings.Join(categories, " "))

	for _, group := range categoryCO2 {
		if containsAny(joined, group.keywords) {
			return group.grams
		}
	}
	return defaultCategoryCO2
}

// CO2Ordinal maps grams per 100g onto 1..5, 5 being the lowest footprint.
// Non-positive values have no ordinal.
func CO2Ordinal(grams float64) int {
	switch {
	case grams <= 0 || math.IsNaN(grams):
		return 0
	case grams <= 500:
		return 5
	case grams <= 1000:
		return 4
	case grams <= 2000:
		return 3
	case grams <= 5000:
		return 2
	default:
		return 1
	}
}

// ComputeImpact combines the known axes into a 0..100 score. Unknown grades
// and unusable CO2 values are left out of both numerator and denominator.
func ComputeImpact(nutrition, environment domain.Grade, co2 domain.CO2Value, includeEstimated bool) domain.Impact {
	co2Grams := 0.0
	if co2.Known() && (includeEstimated || !co2.IsEstimated()) {
		co2Grams = co2.Grams
	}
	return impactFromOrdinals(float64(nutrition.Ordinal()), float64(environment.Ordinal()), co2Grams)
}

// impactFromOrdinals is the weighted composite over possibly fractional
// ordinals. An ordinal of zero means the axis is unknown.
func impactFromOrdinals(nutrition, environment, co2Grams float64) domain.Impact {
	var achieved, maxPoints float64

	if nutrition > 0 {
		achieved += nutrition * gradeWeight
		maxPoints += 5 * gradeWeight
	}
	if environment > 0 {
		achieved += environment * gradeWeight
		maxPoints += 5 * gradeWeight
	}
	if ordinal := CO2Ordinal(co2Grams); ordinal > 0 {
		achieved += float64(ordinal) * co2Weight
		maxPoints += 5 * co2Weight
	}

	if maxPoints == 0 {
		return domain.Impact{Score: 0, Label: domain.ImpactNoData}
	}

	score := int(math.Round(100 * achieved / maxPoints))
	label := domain.ImpactLabelFor(score)
	return domain.Impact{
		Score:     score,
		Label:     label,
		Range:     label.Range(),
		Achieved:  achieved,
		MaxPoints: maxPoints,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func stringOrEmpty(raw domain.RawProduct, path ...string) string {
	s, _ := raw.String(path...)
	return s
}
