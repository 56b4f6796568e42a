package domain

import (
	"regexp"
	"strings"
)

// QueryKind distinguishes barcode lookups from free-text searches
type QueryKind int

const (
	QueryFreeText QueryKind = iota
	QueryBarcode
)

func (k QueryKind) String() string {
	if k == QueryBarcode {
		return "barcode"
	}
	return "text"
}

// MaxQueryLength bounds free-text and barcode queries alike
const MaxQueryLength = 200

// Query is a validated user query
type Query struct {
	Kind  QueryKind `json:"kind"`
	Value string    `json:"value"`
}

// IsBarcode reports whether the query should go through the barcode fallback chain
func (q Query) IsBarcode() bool {
	return q.Kind == QueryBarcode
}

var (
	markupPattern     = regexp.MustCompile(`(?i)<\s*/?\s*[a-z][^>]*>|<script|javascript:|onerror\s*=|onclick\s*=`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// IsBarcode reports whether s consists entirely of ASCII digits
func IsBarcode(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ClassifyQuery classifies a raw string without validating it.
func ClassifyQuery(raw string) QueryKind {
	if IsBarcode(raw) {
		return QueryBarcode
	}
	return QueryFreeText
}

// ParseQuery validates raw input and classifies it. Validation failures are
// returned as *InvalidQueryError.
func ParseQuery(raw string) (Query, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Query{}, &InvalidQueryError{Reason: "search query cannot be empty"}
	}
	if len([]rune(trimmed)) > MaxQueryLength {
		return Query{}, &InvalidQueryError{Reason: "search query is too long (max 200 characters)"}
	}
	if markupPattern.MatchString(trimmed) {
		return Query{}, &InvalidQueryError{Reason: "search query contains markup"}
	}

	normalized := whitespacePattern.ReplaceAllString(trimmed, " ")
	return Query{Kind: ClassifyQuery(normalized), Value: normalized}, nil
}
