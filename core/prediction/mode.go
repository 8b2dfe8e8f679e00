// Package prediction estimates the score of a not-yet-graded assessment by blending
// several heuristic predictors into a single value with a confidence and a range.
package prediction

import (
	"strings"

	"github.com/pkg/errors"
)

type Mode string

const (
	ModeEnsemble             Mode = "ensemble"
	ModeSingle               Mode = "single"
	ModeRankOnly             Mode = "rank_only"
	ModeTrendOnly            Mode = "trend_only"
	ModeDifficultyOnly       Mode = "difficulty_only"
	ModeTypeOnly             Mode = "type_only"
	ModeComparativeOnly      Mode = "comparative_only"
	ModeLinearRegression     Mode = "linear_regression"
	ModePolynomialRegression Mode = "polynomial_regression"
)

// Modes lists every supported mode, the default first.
var Modes = []Mode{
	ModeEnsemble,
	ModeSingle,
	ModeRankOnly,
	ModeTrendOnly,
	ModeDifficultyOnly,
	ModeTypeOnly,
	ModeComparativeOnly,
	ModeLinearRegression,
	ModePolynomialRegression,
}

var ErrUnknownMode = errors.New("unknown prediction mode")

func (m Mode) Valid() bool {
	for _, mode := range Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// ParseMode validates a mode name; blank means ModeEnsemble.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeEnsemble, nil
	}
	if m := Mode(s); m.Valid() {
		return m, nil
	}
	return "", errors.Wrapf(ErrUnknownMode, "%q", s)
}

// Component is one predictor of the ensemble.
type Component string

const (
	LinearRegression     Component = "linear_regression"
	PolynomialRegression Component = "polynomial_regression"
	Trend                Component = "trend"
	TypeCorrelation      Component = "type_correlation"
	DifficultyAdjustment Component = "difficulty_adjustment"
	ClassComparative     Component = "class_comparative"
	RankBased            Component = "rank_based"
)

// EnsembleWeights are the fixed blend weights; they sum to 1.
var EnsembleWeights = map[Component]float64{
	LinearRegression:     0.15,
	PolynomialRegression: 0.15,
	Trend:                0.15,
	TypeCorrelation:      0.15,
	DifficultyAdjustment: 0.15,
	ClassComparative:     0.10,
	RankBased:            0.15,
}

var (
	ensembleComponents = []Component{
		LinearRegression, PolynomialRegression, Trend, TypeCorrelation,
		DifficultyAdjustment, ClassComparative, RankBased,
	}
	singleComponents = []Component{Trend, TypeCorrelation, DifficultyAdjustment, ClassComparative, RankBased}
)

// singleAlgorithm configures the modes running exactly one component.
type singleAlgorithm struct {
	component  Component
	confidence float64
	spread     float64
}

var singleAlgorithms = map[Mode]singleAlgorithm{
	ModeRankOnly:             {RankBased, 0.60, 8},
	ModeTrendOnly:            {Trend, 0.65, 7},
	ModeDifficultyOnly:       {DifficultyAdjustment, 0.55, 10},
	ModeTypeOnly:             {TypeCorrelation, 0.60, 8},
	ModeComparativeOnly:      {ClassComparative, 0.50, 10},
	ModeLinearRegression:     {LinearRegression, 0.55, 10},
	ModePolynomialRegression: {PolynomialRegression, 0.50, 12},
}
