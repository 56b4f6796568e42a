package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawProduct is a product record as returned by the upstream API. Field names
// drift across API versions, so values are read through the accessors below
// rather than a fixed struct.
type RawProduct map[string]any

// Value returns the value at the given path of nested objects.
func (p RawProduct) Value(path ...string) (any, bool) {
	if len(path) == 0 || p == nil {
		return nil, false
	}
	current := map[string]any(p)
	for i, key := range path {
		v, ok := current[key]
		if !ok || v == nil {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		next, ok := asObject(v)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// String returns a trimmed, non-empty string at path.
func (p RawProduct) String(path ...string) (string, bool) {
	v, ok := p.Value(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Float coerces the value at path to a finite float64. Numbers and numeric
// strings are accepted.
func (p RawProduct) Float(path ...string) (float64, bool) {
	v, ok := p.Value(path...)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Object returns the nested object at path.
func (p RawProduct) Object(path ...string) (RawProduct, bool) {
	v, ok := p.Value(path...)
	if !ok {
		return nil, false
	}
	m, ok := asObject(v)
	if !ok || len(m) == 0 {
		return nil, false
	}
	return RawProduct(m), true
}

// Strings returns the string elements of the list at path.
func (p RawProduct) Strings(path ...string) []string {
	v, ok := p.Value(path...)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// List returns the raw elements of the list at path.
func (p RawProduct) List(path ...string) []any {
	v, ok := p.Value(path...)
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	return list
}

// Code returns the product barcode as reported upstream.
func (p RawProduct) Code() string {
	if s, ok := p.String("code"); ok {
		return s
	}
	if v, ok := p.Value("code"); ok {
		if n, ok := v.(json.Number); ok {
			return n.String()
		}
	}
	if f, ok := p.Float("code"); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case RawProduct:
		return m, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ResolvedProduct is a product found by the resolver
type ResolvedProduct struct {
	Barcode  string     `json:"barcode"`
	Strategy string     `json:"strategy"`
	Raw      RawProduct `json:"raw"`
}

// SearchResult is the outcome of a free-text search
type SearchResult struct {
	Count    int          `json:"count"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Products []RawProduct `json:"products"`
}
