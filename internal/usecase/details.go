package usecase

import (
	"regexp"
	"strings"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

const (
	unknownProductName = "Unknown Product"
	maxAdditives       = 15
)

// NutrientFact is one per-100g nutrient value
type NutrientFact struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// ProductDetails is the display-oriented view of a raw product
type ProductDetails struct {
	Barcode        string         `json:"barcode"`
	Name           string         `json:"name"`
	Brand          string         `json:"brand,omitempty"`
	ImageURL       string         `json:"imageUrl,omitempty"`
	Ingredients    string         `json:"ingredients,omitempty"`
	Categories     []string       `json:"categories,omitempty"`
	Additives      []string       `json:"additives"`
	AdditivesTotal int            `json:"additivesTotal"`
	Nutrients      []NutrientFact `json:"nutrients"`
}

// nutrientFields lists the per-100g values surfaced to users, in display order
var nutrientFields = []struct {
	key, label, unit string
}{
	{"energy-kcal_100g", "Energy", "kcal"},
	{"proteins_100g", "Proteins", "g"},
	{"carbohydrates_100g", "Carbohydrates", "g"},
	{"fat_100g", "Fat", "g"},
	{"saturated-fat_100g", "Saturated fat", "g"},
	{"sugars_100g", "Sugars", "g"},
	{"fiber_100g", "Fiber", "g"},
	{"salt_100g", "Salt", "g"},
}

var eNumberPattern = regexp.MustCompile(`(?i)\bE\s?-?(\d{3,4}[a-z]?)\b`)

// ExtractDetails reads names, ingredients, additives and nutrient facts from a
// raw product. Missing fields are left empty.
func ExtractDetails(barcode string, raw domain.RawProduct) ProductDetails {
	details := ProductDetails{
		Barcode:     barcode,
		Name:        firstString(raw, "product_name", "product_name_en", "generic_name"),
		Brand:       stringOrEmpty(raw, "brands"),
		ImageURL:    firstString(raw, "image_front_url", "image_url"),
		Ingredients: ingredientsText(raw),
		Categories:  categories(raw),
		Nutrients:   nutrientFacts(raw),
	}
	if details.Name == "" {
		details.Name = unknownProductName
	}
	if details.Barcode == "" {
		details.Barcode = raw.Code()
	}

	additives := extractAdditives(raw, details.Ingredients)
	details.AdditivesTotal = len(additives)
	if len(additives) > maxAdditives {
		additives = additives[:maxAdditives]
	}
	details.Additives = additives
	return details
}

func firstString(raw domain.RawProduct, fields ...string) string {
	for _, f := range fields {
		if s, ok := raw.String(f); ok {
			return s
		}
	}
	return ""
}

func ingredientsText(raw domain.RawProduct) string {
	if s, ok := raw.String("ingredients_text"); ok {
		return s
	}
	var parts []string
	for _, item := range raw.List("ingredients") {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ingredient := domain.RawProduct(obj)
		if s := firstString(ingredient, "text", "id"); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func categories(raw domain.RawProduct) []string {
	if s, ok := raw.String("categories"); ok {
		var out []string
		for _, c := range strings.Split(s, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out = append(out, c)
			}
		}
		return out
	}
	tags := raw.Strings("categories_tags")
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, stripLanguagePrefix(t))
	}
	return out
}

// extractAdditives tries the tagged list first, then the free-form lists, and
// finally E-numbers mentioned in the ingredients.
func extractAdditives(raw domain.RawProduct, ingredients string) []string {
	var found []string

	if tags := raw.Strings("additives_tags"); len(tags) > 0 {
		for _, t := range tags {
			found = append(found, formatAdditive(t))
		}
		return dedupe(found)
	}

	for _, item := range raw.List("additives") {
		switch v := item.(type) {
		case string:
			found = append(found, formatAdditive(v))
		case map[string]any:
			if s := firstString(domain.RawProduct(v), "name", "id"); s != "" {
				found = append(found, formatAdditive(s))
			}
		}
	}
	if len(found) > 0 {
		return dedupe(found)
	}

	if tags := raw.Strings("additives_original_tags"); len(tags) > 0 {
		for _, t := range tags {
			found = append(found, formatAdditive(t))
		}
		return dedupe(found)
	}

	for _, m := range eNumberPattern.FindAllStringSubmatch(ingredients, -1) {
		found = append(found, "E"+strings.ToLower(m[1]))
	}
	return dedupe(found)
}

// formatAdditive turns "en:e322i" into "E322i"
func formatAdditive(tag string) string {
	s := strings.TrimSpace(stripLanguagePrefix(tag))
	if len(s) > 1 && (s[0] == 'e' || s[0] == 'E') && s[1] >= '0' && s[1] <= '9' {
		return "E" + s[1:]
	}
	return s
}

func stripLanguagePrefix(tag string) string {
	if i := strings.Index(tag, ":"); i >= 0 && i <= 3 {
		return tag[i+1:]
	}
	return tag
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func nutrientFacts(raw domain.RawProduct) []NutrientFact {
	facts := make([]NutrientFact, 0, len(nutrientFields))
	for _, f := range nutrientFields {
		if v, ok := raw.Float("nutriments", f.key); ok {
			facts = append(facts, NutrientFact{Key: f.key, Label: f.label, Value: v, Unit: f.unit})
		}
	}
	return facts
}

// TipKind classifies a health tip
type TipKind string

const (
	TipSuccess TipKind = "success"
	TipInfo    TipKind = "info"
	TipWarning TipKind = "warning"
)

// HealthTip is one piece of advice shown next to a product
type HealthTip struct {
	Kind TipKind `json:"kind"`
	Text string  `json:"text"`
}

// HealthTips derives advice from the grades and nutrient values. Unknown grades
// produce no grade-based tips.
func HealthTips(report domain.ScoreReport, raw domain.RawProduct) []HealthTip {
	var tips []HealthTip

	switch report.NutritionGrade {
	case domain.GradeA, domain.GradeB:
		tips = append(tips,
			HealthTip{TipSuccess, "Excellent nutritional quality! This product supports a healthy diet."},
			HealthTip{TipSuccess, "Great choice for maintaining balanced nutrition. Keep it up!"},
		)
	case domain.GradeC:
		tips = append(tips,
			HealthTip{TipInfo, "Moderate nutritional value. Consider pairing with fresh vegetables."},
			HealthTip{TipInfo, "Balance this with other nutrient-rich foods in your diet."},
		)
	case domain.GradeD, domain.GradeE:
		tips = append(tips,
			HealthTip{TipWarning, "High in unhealthy components. Consume in moderation."},
			HealthTip{TipWarning, "Consider healthier alternatives with a better nutrition grade (A or B)."},
		)
	}

	switch report.EnvironmentGrade {
	case domain.GradeA, domain.GradeB:
		tips = append(tips,
			HealthTip{TipSuccess, "Eco-friendly choice! This product has low environmental impact."},
			HealthTip{TipSuccess, "Your choice helps protect the planet. Thank you!"},
		)
	case domain.GradeC:
		tips = append(tips, HealthTip{TipInfo, "Moderate environmental impact. Look for products with an environment grade of A or B."})
	case domain.GradeD, domain.GradeE:
		tips = append(tips, HealthTip{TipWarning, "High environmental impact. Consider more sustainable alternatives."})
	}

	if _, ok := raw.Object("nutriments"); !ok {
		return tips
	}

	if fiber, ok := raw.Float("nutriments", "fiber_100g"); ok {
		if fiber >= 3 {
			tips = append(tips, HealthTip{TipSuccess, "Good source of fiber! Helps with digestion and heart health."})
		} else if fiber < 1 {
			tips = append(tips, HealthTip{TipInfo, "Consider adding more fiber-rich foods to your diet."})
		}
	}
	if salt, ok := raw.Float("nutriments", "salt_100g"); ok && salt > 1.5 {
		tips = append(tips, HealthTip{TipWarning, "High salt content. Consume in moderation."})
	}
	if sugar, ok := raw.Float("nutriments", "sugars_100g"); ok && sugar > 22.5 {
		tips = append(tips, HealthTip{TipWarning, "High sugar content. Consider healthier alternatives."})
	}
	return tips
}
