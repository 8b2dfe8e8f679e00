// Package grading holds the pure grade arithmetic: score primitives, the weighted
// grade aggregator, the what-if scenario projector and class statistics.
package grading

import (
	"math"
	"strconv"
	"strings"
)

const (
	MinScore = 0.0
	MaxScore = 100.0

	// PassingGrade is the lowest passing percentage.
	PassingGrade = 60.0
)

// Clamp bounds `v` to [min, max]. NaN maps to min.
func Clamp(v, min, max float64) float64 {
	if math.IsNaN(v) || v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampPercent bounds `v` to [0, 100].
func ClampPercent(v float64) float64 {
	return Clamp(v, MinScore, MaxScore)
}

// ParseScore converts raw input into a score.
// It reports false for nil, blank, non-numeric, NaN and infinite values.
// Usable values are clamped to [0, 100].
func ParseScore(raw interface{}) (float64, bool) {
	var v float64
	switch val := raw.(type) {
	case nil:
		return 0, false
	case float64:
		v = val
	case float32:
		v = float64(val)
	case int:
		v = float64(val)
	case int64:
		v = float64(val)
	case int32:
		v = float64(val)
	case *float64:
		if val == nil {
			return 0, false
		}
		v = *val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return ClampPercent(v), true
}

// ParseScoreOrZero is ParseScore defaulting to 0.
func ParseScoreOrZero(raw interface{}) float64 {
	v, _ := ParseScore(raw)
	return v
}

// Letter grades.
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
	GradeE = "E"
)

// Letters lists the letter grades from best to worst.
var Letters = []string{GradeA, GradeB, GradeC, GradeD, GradeE}

// LetterGrade maps a percentage to A..E on the 90/80/70/60 thresholds.
func LetterGrade(pct float64) string {
	switch {
	case pct >= 90:
		return GradeA
	case pct >= 80:
		return GradeB
	case pct >= 70:
		return GradeC
	case pct >= 60:
		return GradeD
	default:
		return GradeE
	}
}

// Band maps a percentage to the six-band scale.
func Band(pct float64) string {
	switch {
	case pct >= 90:
		return "Band 6"
	case pct >= 80:
		return "Band 5"
	case pct >= 70:
		return "Band 4"
	case pct >= 60:
		return "Band 3"
	case pct >= 50:
		return "Band 2"
	default:
		return "Band 1"
	}
}

// Scale is the grading scale a class reports in.
type Scale string

const (
	ScaleLetter Scale = "letter"
	ScaleBand   Scale = "band"
)

func (s Scale) Valid() bool {
	return s == ScaleLetter || s == ScaleBand
}

// Label renders `pct` on the scale. Unknown scales fall back to letters.
func (s Scale) Label(pct float64) string {
	if s == ScaleBand {
		return Band(pct)
	}
	return LetterGrade(pct)
}
