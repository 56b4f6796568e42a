package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// HistoryEntry is one scanned product in a profile's history
type HistoryEntry struct {
	Barcode          string    `json:"barcode"`
	DisplayName      string    `json:"displayName"`
	Brand            string    `json:"brand,omitempty"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	NutritionGrade   Grade     `json:"nutritionGrade"`
	EnvironmentGrade Grade     `json:"environmentGrade"`
	CO2              CO2Value  `json:"co2"`
	Timestamp        time.Time `json:"timestamp"`
}

// UnmarshalJSON accepts both the current shape and entries written under the
// older key names (name, code, nutriScore, ecoScore, nutriscoreGrade,
// ecoscoreGrade, image, imageUrl).
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	str := func(keys ...string) string {
		for _, k := range keys {
			msg, ok := raw[k]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(msg, &s); err == nil && s != "" {
				return s
			}
			var n json.Number
			if err := json.Unmarshal(msg, &n); err == nil && n != "" {
				return n.String()
			}
		}
		return ""
	}

	*e = HistoryEntry{
		Barcode:          str("barcode", "code"),
		DisplayName:      str("displayName", "name"),
		Brand:            str("brand"),
		ImageURL:         str("imageUrl", "image"),
		NutritionGrade:   ParseGrade(str("nutritionGrade", "nutriscoreGrade", "nutriScore")),
		EnvironmentGrade: ParseGrade(str("environmentGrade", "ecoscoreGrade", "ecoScore")),
	}

	if msg, ok := raw["co2"]; ok {
		_ = json.Unmarshal(msg, &e.CO2)
	}
	if ts := str("timestamp"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = parsed
		}
	}
	return nil
}

// Points is the running eco points total. It decodes from a JSON number or a
// numeric string.
type Points int

func (p *Points) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*p = Points(n)
	return nil
}

// Level is floor(points/100)+1
func (p Points) Level() int {
	if p < 0 {
		return 1
	}
	return int(p)/100 + 1
}

// ToNextLevel returns the points still needed for the next level
func (p Points) ToNextLevel() int {
	return p.Level()*100 - int(p)
}

// Progress returns the percentage of the current level completed
func (p Points) Progress() int {
	if p < 0 {
		return 0
	}
	return int(p) % 100
}

// Stats are running counters kept next to the points total
type Stats struct {
	TotalScans     int `json:"totalScans"`
	HealthyChoices int `json:"healthyChoices"`
	EcoChoices     int `json:"ecoChoices"`
}

// Ledger is everything persisted for one profile
type Ledger struct {
	History []HistoryEntry `json:"history"`
	Points  Points         `json:"points"`
	Stats   Stats          `json:"stats"`
}

// HistoryFilter selects a subset of the history
type HistoryFilter string

const (
	FilterAll     HistoryFilter = "all"
	FilterHealthy HistoryFilter = "healthy"
	FilterEco     HistoryFilter = "eco"
)

// ParseHistoryFilter defaults unknown values to FilterAll
func ParseHistoryFilter(s string) HistoryFilter {
	switch HistoryFilter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterHealthy:
		return FilterHealthy
	case FilterEco:
		return FilterEco
	}
	return FilterAll
}

// Achievement is a milestone unlocked from the ledger counters
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

// ProfileSummary is the read model of a profile
type ProfileSummary struct {
	ProfileID        string         `json:"profileId"`
	Points           Points         `json:"points"`
	Level            int            `json:"level"`
	ToNextLevel      int            `json:"toNextLevel"`
	Progress         int            `json:"progress"`
	Stats            Stats          `json:"stats"`
	HistorySize      int            `json:"historySize"`
	Recent           []HistoryEntry `json:"recent"`
	Achievements     []Achievement  `json:"achievements"`
	AvgNutrition     Grade          `json:"averageNutritionGrade"`
	AvgEnvironment   Grade          `json:"averageEnvironmentGrade"`
	AvgCO2Grams      float64        `json:"averageCo2Grams"`
	Impact           Impact         `json:"impact"`
	ImpactProfileTag string         `json:"impactTag"`
}
