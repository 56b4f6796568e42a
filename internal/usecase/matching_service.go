package usecase

import (
	"log"
	"regexp"
	"sort"
	"strings"
)

// Package-level compiled regex patterns
var (
	punctuationRegex    = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	sizePatternRegex    = regexp.MustCompile(`(?i)\b\d+([.,]\d+)?\s*(g|kg|mg|ml|cl|dl|l|oz|lb|lbs|fl\s*oz)\b`)
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
)

// Token weight categories for scoring
const (
	weightFood        = 3.0 // Core food terms (milk, chocolate, bread)
	weightDescriptive = 2.0 // Descriptive terms (whole, organic, dark)
	weightDefault     = 1.0 // Everything else
	fuzzyWeightFactor = 0.8 // Fuzzy matches get 80% of normal weight
)

// Scoring bonuses
const (
	brandMatchBonus     = 15.0
	substringMatchBonus = 10.0
)

// foodTerms contains high-importance food keywords
var foodTerms = map[string]bool{
	// Proteins
	"chicken": true, "beef": true, "pork": true, "fish": true, "salmon": true,
	"turkey": true, "lamb": true, "shrimp": true, "tuna": true, "ham": true,
	"tofu": true, "lentils": true, "chickpeas": true,
	// Dairy
	"milk": true, "cheese": true, "yogurt": true, "yoghurt": true, "butter": true,
	"cream": true, "eggs": true, "egg": true,
	// Grains
	"bread": true, "rice": true, "pasta": true, "cereal": true, "oats": true,
	"oat": true, "wheat": true, "flour": true, "noodles": true, "muesli": true,
	"granola": true, "biscuits": true, "crackers": true, "cookies": true,
	// Produce
	"apple": true, "banana": true, "orange": true, "tomato": true, "potato": true,
	"carrot": true, "spinach": true, "beans": true, "peas": true, "nuts": true,
	"hazelnut": true, "almond": true, "peanut": true,
	// Beverages
	"juice": true, "soda": true, "cola": true, "coffee": true, "tea": true,
	"water": true, "lemonade": true, "smoothie": true, "beer": true, "wine": true,
	// Sweets and spreads
	"chocolate": true, "cocoa": true, "candy": true, "cake": true, "spread": true,
	"jam": true, "honey": true, "syrup": true, "sugar": true,
	// Prepared foods
	"pizza": true, "soup": true, "salad": true, "sauce": true, "chips": true,
	"crisps": true,
}

// descriptiveTerms contains medium-importance descriptive keywords
var descriptiveTerms = map[string]bool{
	// Preparation/processing
	"whole": true, "skim": true, "skimmed": true, "reduced": true, "fat": true,
	"low": true, "organic": true, "bio": true, "natural": true, "fresh": true,
	"frozen": true, "dried": true, "raw": true, "roasted": true, "smoked": true,
	"wholegrain": true, "wholemeal": true,
	// Flavor/variety
	"vanilla": true, "plain": true, "original": true, "classic": true,
	"sweet": true, "salted": true, "unsalted": true, "unsweetened": true,
	"dark": true, "milky": true, "light": true, "diet": true, "zero": true,
	// Nutritional qualifiers
	"protein": true, "fiber": true, "fibre": true, "gluten": true, "free": true,
	"vegan": true, "vegetarian": true,
}

// extendedStopWords includes basic English stop words plus product-specific noise
var extendedStopWords = map[string]bool{
	// Basic English stop words
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	// Size/quantity units
	"oz": true, "fl": true, "lb": true, "lbs": true, "ml": true, "cl": true,
	"kg": true, "gram": true, "grams": true, "liter": true, "litre": true,
	// Packaging terms
	"pack": true, "count": true, "ct": true, "box": true, "bag": true,
	"bottle": true, "can": true, "jar": true, "pot": true, "tub": true,
	// Marketing/generic terms
	"size": true, "value": true, "family": true, "new": true, "product": true,
}

// MatchConfig holds configuration for the candidate matcher
type MatchConfig struct {
	EnableFuzzyMatching bool
	FuzzyEditDistance   int
	EnableDebugLogging  bool
}

// Matcher scores free-text search candidates against the query that found
// them and orders them by relevance.
type Matcher struct {
	enableFuzzyMatching bool
	fuzzyEditDistance   int
	enableDebugLogging  bool
}

// NewMatcher creates a new matcher with the given configuration
func NewMatcher(config MatchConfig) *Matcher {
	fuzzyDist := config.FuzzyEditDistance
	if fuzzyDist <= 0 {
		fuzzyDist = 1
	}

	return &Matcher{
		enableFuzzyMatching: config.EnableFuzzyMatching,
		fuzzyEditDistance:   fuzzyDist,
		enableDebugLogging:  config.EnableDebugLogging,
	}
}

// Rank sets Relevance and MatchedTokens on every candidate and sorts them
// best first. Candidates with equal relevance keep the upstream order.
func (m *Matcher) Rank(query string, candidates []Candidate) {
	for i := range candidates {
		c := &candidates[i]
		c.Relevance, c.MatchedTokens = m.calculateMatchScore(query, c.Name, c.Brand)

		if m.enableDebugLogging {
			log.Printf("[MATCH] %q | %q (%s) | Score: %.1f | Matched: %v",
				query, c.Name, c.Brand, c.Relevance, c.MatchedTokens)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Relevance > candidates[j].Relevance
	})
}

// calculateMatchScore computes similarity between the query and a candidate.
// Uses a weighted combination of:
//   - Query token coverage, weighted by term importance (most important)
//   - Name token coverage: what % of the name tokens appear in the query
//   - Jaccard similarity of the two token sets
//
// plus bonuses when the brand is named in the query or the query is a
// substring of the name. Returns the score (0-100) and the matched tokens.
func (m *Matcher) calculateMatchScore(query, name, brand string) (float64, []string) {
	queryTokens := tokenize(cleanForMatching(query))
	nameTokens := tokenize(cleanForMatching(name))

	if len(queryTokens) == 0 || len(nameTokens) == 0 {
		return 0, nil
	}

	queryCoverage, matchedTokens := m.weightedCoverage(queryTokens, nameTokens)

	nameMatched, _ := findIntersection(nameTokens, queryTokens)
	nameCoverage := float64(nameMatched) / float64(len(nameTokens))

	exactMatched, _ := findIntersection(queryTokens, nameTokens)
	jaccard := float64(exactMatched) / float64(findUnion(queryTokens, nameTokens))

	score := (queryCoverage*0.60 + nameCoverage*0.20 + jaccard*0.20) * 100

	queryLower := strings.ToLower(strings.Join(queryTokens, " "))
	nameLower := strings.ToLower(strings.Join(nameTokens, " "))

	if brand != "" {
		for _, b := range strings.Split(brand, ",") {
			b = strings.ToLower(strings.TrimSpace(b))
			if len(b) > 1 && strings.Contains(strings.ToLower(query), b) {
				score += brandMatchBonus
				break
			}
		}
	}

	if len(queryLower) > 3 && strings.Contains(nameLower, queryLower) {
		score += substringMatchBonus
	}

	if score > 100 {
		score = 100
	}

	return score, matchedTokens
}

// weightedCoverage returns the weighted fraction of query tokens found in the
// candidate tokens, with fuzzy hits counted at a reduced weight.
func (m *Matcher) weightedCoverage(queryTokens, candidateTokens []string) (float64, []string) {
	candidates := make(map[string]bool, len(candidateTokens))
	for _, t := range candidateTokens {
		candidates[t] = true
	}

	var total, matchedWeight float64
	var matched []string
	seen := make(map[string]bool)

	for _, qt := range queryTokens {
		if seen[qt] {
			continue
		}
		seen[qt] = true

		weight := tokenWeight(qt)
		total += weight

		if candidates[qt] {
			matchedWeight += weight
			matched = append(matched, qt)
			continue
		}

		if !m.enableFuzzyMatching {
			continue
		}
		for _, ct := range candidateTokens {
			if fuzzyTokenMatch(qt, ct, m.fuzzyEditDistance) {
				matchedWeight += weight * fuzzyWeightFactor
				matched = append(matched, ct)
				break
			}
		}
	}

	if total == 0 {
		return 0, matched
	}
	return matchedWeight / total, matched
}

func tokenWeight(token string) float64 {
	switch {
	case foodTerms[token]:
		return weightFood
	case descriptiveTerms[token]:
		return weightDescriptive
	default:
		return weightDefault
	}
}

// cleanForMatching strips sizes and anything after the first comma
func cleanForMatching(name string) string {
	if idx := strings.Index(name, ","); idx > 0 {
		name = name[:idx]
	}

	name = sizePatternRegex.ReplaceAllString(name, " ")
	name = multipleSpacesRegex.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// tokenize splits a string into normalized lowercase tokens.
// Removes punctuation, stop words, product noise, and pure numeric tokens.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len([]rune(word)) <= 1 {
			continue
		}
		if extendedStopWords[word] {
			continue
		}
		if isNumeric(word) {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to tokens of 4+ chars to avoid false positives
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Two rows instead of the full matrix
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// findIntersection returns the count of common tokens and the list of matched tokens
func findIntersection(tokens1, tokens2 []string) (int, []string) {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}

	var matched []string
	seen := make(map[string]bool)
	for _, t := range tokens2 {
		if set[t] && !seen[t] {
			matched = append(matched, t)
			seen[t] = true
		}
	}

	return len(matched), matched
}

// findUnion returns the count of unique tokens across both sets
func findUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}
