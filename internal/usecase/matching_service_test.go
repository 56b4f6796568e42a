package usecase

import (
	"math"
	"reflect"
	"testing"
)

func TestNewMatcher(t *testing.T) {
	t.Run("uses provided edit distance", func(t *testing.T) {
		m := NewMatcher(MatchConfig{FuzzyEditDistance: 2})
		if m.fuzzyEditDistance != 2 {
			t.Errorf("fuzzyEditDistance = %v, want 2", m.fuzzyEditDistance)
		}
	})

	t.Run("uses default edit distance when zero", func(t *testing.T) {
		m := NewMatcher(MatchConfig{})
		if m.fuzzyEditDistance != 1 {
			t.Errorf("fuzzyEditDistance = %v, want 1 (default)", m.fuzzyEditDistance)
		}
	})
}

func TestRank(t *testing.T) {
	m := NewMatcher(MatchConfig{EnableFuzzyMatching: true})

	t.Run("orders candidates best first", func(t *testing.T) {
		candidates := []Candidate{
			{Barcode: "1", Name: "Whole milk"},
			{Barcode: "2", Name: "Oat milk"},
			{Barcode: "3", Name: "Orange juice"},
			{Barcode: "4", Name: "Apple juice"},
		}

		m.Rank("oat milk", candidates)

		var got []string
		for _, c := range candidates {
			got = append(got, c.Barcode)
		}
		want := []string{"2", "1", "3", "4"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
		if candidates[0].Relevance != 100 {
			t.Errorf("top relevance = %v, want 100", candidates[0].Relevance)
		}
		if !reflect.DeepEqual(candidates[0].MatchedTokens, []string{"oat", "milk"}) {
			t.Errorf("MatchedTokens = %v, want [oat milk]", candidates[0].MatchedTokens)
		}
		if candidates[3].Relevance != 0 {
			t.Errorf("unrelated relevance = %v, want 0", candidates[3].Relevance)
		}
	})

	t.Run("handles empty list", func(t *testing.T) {
		m.Rank("oat milk", nil)
	})
}

func TestCalculateMatchScore(t *testing.T) {
	testCases := []struct {
		name      string
		fuzzy     bool
		query     string
		candidate string
		brand     string
		want      float64
	}{
		{"exact match", false, "oat milk", "Oat milk", "", 100},
		{"size and comma noise ignored", false, "oat drink", "Oat Drink 1 L, unsweetened", "", 100},
		{"partial match", false, "oat milk", "Whole milk", "", 46.67},
		{"brand bonus", false, "ferrero nutella", "Nutella", "Ferrero", 75},
		{"brand from list", false, "ferrero nutella", "Nutella", "Nutella, Ferrero", 75},
		{"fuzzy match", true, "yoghurt", "Greek yogurt", "", 48},
		{"no fuzzy match when disabled", false, "yoghurt", "Greek yogurt", "", 0},
		{"query inside name", false, "chocolat", "Dark chocolate", "", 10},
		{"stop words only", false, "the of", "Oat milk", "", 0},
		{"unknown product name", false, "oat milk", "", "", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMatcher(MatchConfig{EnableFuzzyMatching: tc.fuzzy})
			got, _ := m.calculateMatchScore(tc.query, tc.candidate, tc.brand)
			if math.Abs(got-tc.want) > 0.01 {
				t.Errorf("calculateMatchScore(%q, %q, %q) = %.2f, want %.2f",
					tc.query, tc.candidate, tc.brand, got, tc.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	testCases := []struct {
		input string
		want  []string
	}{
		{"Organic Oat Flakes 500 g!", []string{"organic", "oat", "flakes"}},
		{"The milk of the day", []string{"milk", "day"}},
		{"Pâte à tartiner", []string{"pâte", "tartiner"}},
		{"Coca-Cola", []string{"coca", "cola"}},
		{"", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got := tokenize(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("tokenize(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestCleanForMatching(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"Oat Drink 1 L, unsweetened", "Oat Drink"},
		{"Nutella 400g", "Nutella"},
		{"Olive oil 0.75 l", "Olive oil"},
		{"Peanut butter", "Peanut butter"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := cleanForMatching(tc.input); got != tc.want {
				t.Errorf("cleanForMatching(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestFindIntersection(t *testing.T) {
	count, matched := findIntersection([]string{"oat", "milk"}, []string{"milk", "milk", "drink"})
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if !reflect.DeepEqual(matched, []string{"milk"}) {
		t.Errorf("matched = %v, want [milk]", matched)
	}
}

func TestFindUnion(t *testing.T) {
	if got := findUnion([]string{"oat", "milk"}, []string{"milk", "drink"}); got != 3 {
		t.Errorf("findUnion = %d, want 3", got)
	}
}

func TestTokenWeight(t *testing.T) {
	testCases := []struct {
		token string
		want  float64
	}{
		{"milk", weightFood},
		{"chocolate", weightFood},
		{"organic", weightDescriptive},
		{"dark", weightDescriptive},
		{"nutella", weightDefault},
	}

	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			if got := tokenWeight(tc.token); got != tc.want {
				t.Errorf("tokenWeight(%q) = %v, want %v", tc.token, got, tc.want)
			}
		})
	}
}

func TestIsNumeric(t *testing.T) {
	testCases := []struct {
		input string
		want  bool
	}{
		{"123", true},
		{"0", true},
		{"", false},
		{"12a", false},
		{"12.5", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := isNumeric(tc.input); got != tc.want {
				t.Errorf("isNumeric(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	testCases := []struct {
		s1   string
		s2   string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "a", 1},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"café", "cafe", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.s1+"_"+tc.s2, func(t *testing.T) {
			if got := levenshteinDistance(tc.s1, tc.s2); got != tc.want {
				t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tc.s1, tc.s2, got, tc.want)
			}
		})
	}
}

func TestFuzzyTokenMatch(t *testing.T) {
	testCases := []struct {
		t1   string
		t2   string
		want bool
	}{
		{"chocolate", "chocolat", true},
		{"yoghurt", "yogurt", true},
		{"oat", "oak", false}, // too short
		{"cheese", "cheddar", false},
		{"milk", "milk", true},
	}

	for _, tc := range testCases {
		t.Run(tc.t1+"_"+tc.t2, func(t *testing.T) {
			if got := fuzzyTokenMatch(tc.t1, tc.t2, 1); got != tc.want {
				t.Errorf("fuzzyTokenMatch(%q, %q) = %v, want %v", tc.t1, tc.t2, got, tc.want)
			}
		})
	}
}
