package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
	recentActivitySize  = 5

	pointsExcellent = 5
	pointsModerate  = 2

	achievementThreshold = 5
	greenWarriorPoints   = 100
)

// LedgerServiceConfig holds configuration for the history/points ledger
type LedgerServiceConfig struct {
	HistoryLimit        int
	IncludeEstimatedCO2 bool
}

// LedgerService records scans and answers profile queries
type LedgerService struct {
	store               domain.LedgerStore
	historyLimit        int
	includeEstimatedCO2 bool
	now                 func() time.Time
}

// NewLedgerService creates a ledger service on top of a store
func NewLedgerService(store domain.LedgerStore, config LedgerServiceConfig) *LedgerService {
	limit := config.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return &LedgerService{
		store:               store,
		historyLimit:        limit,
		includeEstimatedCO2: config.IncludeEstimatedCO2,
		now:                 time.Now,
	}
}

// ScanRecord is the outcome of recording one scan
type ScanRecord struct {
	PointsEarned int                 `json:"pointsEarned"`
	TotalPoints  domain.Points       `json:"totalPoints"`
	Level        int                 `json:"level"`
	LeveledUp    bool                `json:"leveledUp"`
	Stats        domain.Stats        `json:"stats"`
	NewlyEarned  []string            `json:"newAchievements,omitempty"`
	Entry        domain.HistoryEntry `json:"entry"`
}

// PointsForScan awards 5 points when both grades are A or B, 2 when either is
// C, and nothing otherwise.
func PointsForScan(nutrition, environment domain.Grade) int {
	switch {
	case nutrition.IsGood() && environment.IsGood():
		return pointsExcellent
	case nutrition == domain.GradeC || environment == domain.GradeC:
		return pointsModerate
	}
	return 0
}

// Record stores a scored product at the front of the history and updates
// points and counters in one atomic update.
func (s *LedgerService) Record(ctx context.Context, profileID string, details ProductDetails, report domain.ScoreReport) (*ScanRecord, error) {
	entry := domain.HistoryEntry{
		Barcode:          details.Barcode,
		DisplayName:      details.Name,
		Brand:            details.Brand,
		ImageURL:         details.ImageURL,
		NutritionGrade:   report.NutritionGrade,
		EnvironmentGrade: report.EnvironmentGrade,
		CO2:              report.CO2,
		Timestamp:        s.now().UTC(),
	}
	earned := PointsForScan(report.NutritionGrade, report.EnvironmentGrade)

	var (
		levelBefore        int
		achievementsBefore map[string]bool
	)
	ledger, err := s.store.Update(ctx, profileID, func(l *domain.Ledger) error {
		levelBefore = l.Points.Level()
		achievementsBefore = unlockedSet(l)

		l.History = InsertHistory(l.History, entry, s.historyLimit)
		l.Points += domain.Points(earned)
		l.Stats.TotalScans++
		if report.NutritionGrade.IsGood() {
			l.Stats.HealthyChoices++
		}
		if report.EnvironmentGrade.IsGood() {
			l.Stats.EcoChoices++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record scan: %w", err)
	}

	record := &ScanRecord{
		PointsEarned: earned,
		TotalPoints:  ledger.Points,
		Level:        ledger.Points.Level(),
		LeveledUp:    ledger.Points.Level() > levelBefore,
		Stats:        ledger.Stats,
		Entry:        entry,
	}
	for _, a := range Achievements(ledger) {
		if a.Unlocked && !achievementsBefore[a.ID] {
			record.NewlyEarned = append(record.NewlyEarned, a.ID)
		}
	}

	log.Printf("[LEDGER] Profile %s scanned %s: +%d points (total %d, level %d)",
		profileID, entry.Barcode, earned, ledger.Points, record.Level)
	return record, nil
}

// InsertHistory puts entry at the front, dropping any earlier entry with the
// same barcode, and trims the list to limit.
func InsertHistory(history []domain.HistoryEntry, entry domain.HistoryEntry, limit int) []domain.HistoryEntry {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	out := make([]domain.HistoryEntry, 0, min(len(history)+1, limit))
	out = append(out, entry)
	for _, existing := range history {
		if len(out) >= limit {
			break
		}
		if existing.Barcode == entry.Barcode {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// History returns the profile's history narrowed by filter
func (s *LedgerService) History(ctx context.Context, profileID string, filter domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	ledger, err := s.store.Load(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return FilterHistory(ledger.History, filter), nil
}

// FilterHistory keeps entries matching filter; healthy and eco select A/B grades
func FilterHistory(history []domain.HistoryEntry, filter domain.HistoryFilter) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, 0, len(history))
	for _, e := range history {
		switch filter {
		case domain.FilterHealthy:
			if !e.NutritionGrade.IsGood() {
				continue
			}
		case domain.FilterEco:
			if !e.EnvironmentGrade.IsGood() {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// ClearHistory empties the history. Points and counters are kept.
func (s *LedgerService) ClearHistory(ctx context.Context, profileID string) error {
	_, err := s.store.Update(ctx, profileID, func(l *domain.Ledger) error {
		l.History = []domain.HistoryEntry{}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	log.Printf("[LEDGER] Cleared history for profile %s", profileID)
	return nil
}

// Summary builds the profile read model
func (s *LedgerService) Summary(ctx context.Context, profileID string) (*domain.ProfileSummary, error) {
	ledger, err := s.store.Load(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	recent := ledger.History
	if len(recent) > recentActivitySize {
		recent = recent[:recentActivitySize]
	}

	summary := &domain.ProfileSummary{
		ProfileID:    profileID,
		Points:       ledger.Points,
		Level:        ledger.Points.Level(),
		ToNextLevel:  ledger.Points.ToNextLevel(),
		Progress:     ledger.Points.Progress(),
		Stats:        ledger.Stats,
		HistorySize:  len(ledger.History),
		Recent:       recent,
		Achievements: Achievements(ledger),
	}

	aggregate := AggregateImpact(ledger.History, s.includeEstimatedCO2)
	summary.AvgNutrition = aggregate.Nutrition
	summary.AvgEnvironment = aggregate.Environment
	summary.AvgCO2Grams = aggregate.CO2Grams
	summary.Impact = aggregate.Impact
	summary.ImpactProfileTag = aggregate.Impact.Label.ProfileTag()
	return summary, nil
}

// ProfileImpact is the impact score over a whole history
type ProfileImpact struct {
	Nutrition   domain.Grade
	Environment domain.Grade
	CO2Grams    float64
	Impact      domain.Impact
}

// AggregateImpact averages the known grade ordinals and CO2 values of the
// history and scores the averages. Unknown grades and unusable CO2 values
// are skipped rather than averaged in.
func AggregateImpact(history []domain.HistoryEntry, includeEstimated bool) ProfileImpact {
	var (
		nutritionSum, environmentSum, co2Sum float64
		nutritionN, environmentN, co2N       int
	)
	for _, e := range history {
		if e.NutritionGrade.Known() {
			nutritionSum += float64(e.NutritionGrade.Ordinal())
			nutritionN++
		}
		if e.EnvironmentGrade.Known() {
			environmentSum += float64(e.EnvironmentGrade.Ordinal())
			environmentN++
		}
		if e.CO2.Known() && (includeEstimated || !e.CO2.IsEstimated()) {
			co2Sum += e.CO2.Grams
			co2N++
		}
	}

	var nutrition, environment, co2 float64
	if nutritionN > 0 {
		nutrition = nutritionSum / float64(nutritionN)
	}
	if environmentN > 0 {
		environment = environmentSum / float64(environmentN)
	}
	if co2N > 0 {
		co2 = co2Sum / float64(co2N)
	}

	return ProfileImpact{
		Nutrition:   domain.GradeFromOrdinal(nutrition),
		Environment: domain.GradeFromOrdinal(environment),
		CO2Grams:    co2,
		Impact:      impactFromOrdinals(nutrition, environment, co2),
	}
}

// Achievements evaluates every milestone against the ledger
func Achievements(l *domain.Ledger) []domain.Achievement {
	return []domain.Achievement{
		{
			ID:          "first_scan",
			Title:       "First Scan",
			Description: "Scan your first product",
			Unlocked:    l.Stats.TotalScans >= 1,
		},
		{
			ID:          "green_warrior",
			Title:       "Green Warrior",
			Description: fmt.Sprintf("Earn %d eco points", greenWarriorPoints),
			Unlocked:    int(l.Points) >= greenWarriorPoints,
		},
		{
			ID:          "health_conscious",
			Title:       "Health Conscious",
			Description: fmt.Sprintf("Choose %d products with a nutrition grade of A or B", achievementThreshold),
			Unlocked:    l.Stats.HealthyChoices >= achievementThreshold,
		},
		{
			ID:          "eco_explorer",
			Title:       "Eco Explorer",
			Description: fmt.Sprintf("Choose %d products with an environment grade of A or B", achievementThreshold),
			Unlocked:    l.Stats.EcoChoices >= achievementThreshold,
		},
	}
}

func unlockedSet(l *domain.Ledger) map[string]bool {
	set := make(map[string]bool)
	for _, a := range Achievements(l) {
		if a.Unlocked {
			set[a.ID] = true
		}
	}
	return set
}
