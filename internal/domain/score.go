package domain

import (
	"encoding/json"
	"fmt"
)

// CO2Source tells whether a CO2 value was measured upstream or inferred locally
type CO2Source int

const (
	CO2Unknown CO2Source = iota
	CO2Measured
	CO2Estimated
)

func (s CO2Source) String() string {
	switch s {
	case CO2Measured:
		return "measured"
	case CO2Estimated:
		return "estimated"
	}
	return "unknown"
}

// CO2Value is grams of CO2 per 100g, tagged with its provenance.
type CO2Value struct {
	Grams  float64
	Source CO2Source
}

// MeasuredCO2 wraps a value reported by the upstream API
func MeasuredCO2(grams float64) CO2Value {
	return CO2Value{Grams: grams, Source: CO2Measured}
}

// EstimatedCO2 wraps a value inferred from the product category
func EstimatedCO2(grams float64) CO2Value {
	return CO2Value{Grams: grams, Source: CO2Estimated}
}

// Known reports whether the value can be scored
func (v CO2Value) Known() bool {
	return v.Source != CO2Unknown && v.Grams > 0
}

// IsEstimated reports whether the value was inferred locally
func (v CO2Value) IsEstimated() bool {
	return v.Source == CO2Estimated
}

// String formats the value for display, marking estimates with "(est.)".
func (v CO2Value) String() string {
	if !v.Known() {
		return "N/A"
	}
	var s string
	if v.Grams >= 1000 {
		s = fmt.Sprintf("%.2f kg CO₂", v.Grams/1000)
	} else {
		s = fmt.Sprintf("%.1f g CO₂", v.Grams)
	}
	if v.IsEstimated() {
		s += " (est.)"
	}
	return s
}

type co2JSON struct {
	Grams     float64 `json:"grams"`
	Source    string  `json:"source"`
	Estimated bool    `json:"estimated"`
	Display   string  `json:"display"`
}

func (v CO2Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(co2JSON{
		Grams:     v.Grams,
		Source:    v.Source.String(),
		Estimated: v.IsEstimated(),
		Display:   v.String(),
	})
}

func (v *CO2Value) UnmarshalJSON(data []byte) error {
	var raw co2JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Source == "measured":
		*v = MeasuredCO2(raw.Grams)
	case raw.Source == "estimated" || raw.Estimated:
		*v = EstimatedCO2(raw.Grams)
	default:
		*v = CO2Value{}
	}
	return nil
}

// ImpactLabel is the qualitative band of an impact score
type ImpactLabel string

const (
	ImpactNoData    ImpactLabel = "No Data"
	ImpactExcellent ImpactLabel = "Excellent"
	ImpactVeryGood  ImpactLabel = "Very Good"
	ImpactGood      ImpactLabel = "Good"
	ImpactFair      ImpactLabel = "Fair"
	ImpactPoor      ImpactLabel = "Poor"
	ImpactVeryPoor  ImpactLabel = "Very Poor"
)

// ImpactLabelFor maps a 0..100 score to its band. Use ImpactNoData when no
// axis was known; a zero score alone does not mean "no data".
func ImpactLabelFor(score int) ImpactLabel {
	switch {
	case score >= 90:
		return ImpactExcellent
	case score >= 75:
		return ImpactVeryGood
	case score >= 60:
		return ImpactGood
	case score >= 45:
		return ImpactFair
	case score >= 30:
		return ImpactPoor
	default:
		return ImpactVeryPoor
	}
}

// Range returns the score band as text
func (l ImpactLabel) Range() string {
	switch l {
	case ImpactExcellent:
		return "90-100"
	case ImpactVeryGood:
		return "75-89"
	case ImpactGood:
		return "60-74"
	case ImpactFair:
		return "45-59"
	case ImpactPoor:
		return "30-44"
	case ImpactVeryPoor:
		return "0-29"
	}
	return ""
}

// ProfileTag is the badge shown on a profile for an aggregate impact band
func (l ImpactLabel) ProfileTag() string {
	switch l {
	case ImpactExcellent:
		return "Eco Champion"
	case ImpactVeryGood:
		return "Green Warrior"
	case ImpactGood:
		return "Eco Conscious"
	case ImpactFair:
		return "Getting Better"
	case ImpactPoor, ImpactVeryPoor:
		return "Needs Improvement"
	}
	return "Beginner"
}

// Impact is the composite 0..100 score with the points that produced it
type Impact struct {
	Score     int         `json:"score"`
	Label     ImpactLabel `json:"label"`
	Range     string      `json:"range,omitempty"`
	Achieved  float64     `json:"achievedPoints"`
	MaxPoints float64     `json:"maxPoints"`
}

// HasData reports whether at least one axis contributed to the score
func (i Impact) HasData() bool {
	return i.MaxPoints > 0
}

// ScoreReport is the derived view of a raw product
type ScoreReport struct {
	NutritionGrade       Grade    `json:"nutritionGrade"`
	NutritionEstimated   bool     `json:"nutritionEstimated"`
	EnvironmentGrade     Grade    `json:"environmentGrade"`
	EnvironmentEstimated bool     `json:"environmentEstimated"`
	CO2                  CO2Value `json:"co2"`
	Impact               Impact   `json:"impact"`
}
