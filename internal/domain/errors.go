package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProductNotFound is returned when no lookup strategy produced a product
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidQuery is returned when a query fails validation before any network call
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUpstreamFailure is returned when the product API request fails (transport, non-2xx, malformed JSON)
	ErrUpstreamFailure = errors.New("product API request failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrLedgerUnavailable is returned when the history/points store cannot be read or written
	ErrLedgerUnavailable = errors.New("ledger store unavailable")
)

// InvalidQueryError describes why a query was rejected.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidQuery.Error(), e.Reason)
}

func (e *InvalidQueryError) Unwrap() error {
	return ErrInvalidQuery
}

// NotFoundReason classifies a failed barcode resolution for diagnostics.
type NotFoundReason string

const (
	NotFoundTooShort            NotFoundReason = "too_short"
	NotFoundEAN8                NotFoundReason = "ean8_not_found"
	NotFoundGeneric             NotFoundReason = "not_found"
	NotFoundUpstreamUnavailable NotFoundReason = "upstream_unavailable"
)

// SuggestedBarcodes are well-known products shown to users when a lookup fails.
var SuggestedBarcodes = []string{
	"3017620422003", // Nutella
	"7622210945078", // Oreo
	"3017620429484",
	"5000159461125", // Kit Kat
}

// NotFoundError is the terminal outcome of a barcode resolution where every strategy failed.
type NotFoundError struct {
	Barcode     string         `json:"barcode"`
	PaddedTried []string       `json:"paddedTried,omitempty"`
	Reason      NotFoundReason `json:"reason"`
	Failures    int            `json:"transportFailures"`
	Suggestions []string       `json:"suggestions"`
}

// NewNotFoundError builds the diagnostic outcome for a barcode.
// failures and attempts count transport failures and total strategy attempts.
func NewNotFoundError(barcode string, padded []string, failures, attempts int) *NotFoundError {
	reason := NotFoundGeneric
	switch {
	case attempts > 0 && failures == attempts:
		reason = NotFoundUpstreamUnavailable
	case len(barcode) < 8:
		reason = NotFoundTooShort
	case len(barcode) == 8:
		reason = NotFoundEAN8
	}

	return &NotFoundError{
		Barcode:     barcode,
		PaddedTried: padded,
		Reason:      reason,
		Failures:    failures,
		Suggestions: append([]string(nil), SuggestedBarcodes...),
	}
}

// Message returns the user-facing explanation for the failed lookup.
func (e *NotFoundError) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product not found for barcode: %s.", e.Barcode)

	switch e.Reason {
	case NotFoundTooShort:
		fmt.Fprintf(&b, " This barcode is too short (%d digits); valid barcodes are usually 8-13 digits.", len(e.Barcode))
	case NotFoundEAN8:
		b.WriteString(" This is an EAN-8 barcode and was not found even with zero padding.")
	case NotFoundUpstreamUnavailable:
		b.WriteString(" The product database could not be reached; try again in a few moments.")
	}

	b.WriteString(" Try one of the example barcodes or search by product name instead.")
	return b.String()
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: barcode %s (%s)", ErrProductNotFound.Error(), e.Barcode, e.Reason)
}

func (e *NotFoundError) Unwrap() error {
	return ErrProductNotFound
}
