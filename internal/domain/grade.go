package domain

import (
	"encoding/json"
	"strings"
)

// Grade is a letter grade from A (best) to E (worst). The zero value is
// GradeUnknown, which sits outside the A..E order.
type Grade int

const (
	GradeUnknown Grade = iota
	GradeA
	GradeB
	GradeC
	GradeD
	GradeE
)

// DisplayDefaultGrade is shown to users in place of GradeUnknown
const DisplayDefaultGrade = GradeC

// ParseGrade normalizes a raw grade value. Case and surrounding whitespace are
// ignored; a longer string that is not itself a grade contributes only its
// first character. Anything else is GradeUnknown.
func ParseGrade(v any) Grade {
	s, ok := v.(string)
	if !ok {
		return GradeUnknown
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return GradeUnknown
	}
	if g := gradeFromLetter(s); g != GradeUnknown {
		return g
	}
	return gradeFromLetter(s[:1])
}

func gradeFromLetter(s string) Grade {
	switch s {
	case "a":
		return GradeA
	case "b":
		return GradeB
	case "c":
		return GradeC
	case "d":
		return GradeD
	case "e":
		return GradeE
	}
	return GradeUnknown
}

// Known reports whether g is one of A..E
func (g Grade) Known() bool {
	return g >= GradeA && g <= GradeE
}

// Ordinal maps A=5 .. E=1 and Unknown=0
func (g Grade) Ordinal() int {
	if !g.Known() {
		return 0
	}
	return 6 - int(g)
}

// GradeFromOrdinal rounds an averaged ordinal back to a letter.
func GradeFromOrdinal(ordinal float64) Grade {
	switch {
	case ordinal <= 0:
		return GradeUnknown
	case ordinal >= 4.5:
		return GradeA
	case ordinal >= 3.5:
		return GradeB
	case ordinal >= 2.5:
		return GradeC
	case ordinal >= 1.5:
		return GradeD
	default:
		return GradeE
	}
}

// IsGood reports whether g is A or B
func (g Grade) IsGood() bool {
	return g == GradeA || g == GradeB
}

// Display returns the grade shown to users: Unknown becomes C.
func (g Grade) Display() Grade {
	if !g.Known() {
		return DisplayDefaultGrade
	}
	return g
}

func (g Grade) String() string {
	if !g.Known() {
		return "unknown"
	}
	return string(rune('A' + int(g) - 1))
}

func (g Grade) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

func (g *Grade) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*g = ParseGrade(v)
	return nil
}
