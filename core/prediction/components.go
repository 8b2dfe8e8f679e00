package prediction

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/trezcool/smartgrades/core/analysis"
	"github.com/trezcool/smartgrades/core/grading"
)

const (
	regressionWindow = 5

	// peer mean the difficulty adjustment is centered on
	referenceClassMean = 78.0
)

var (
	ErrComponentUnavailable = errors.New("component not applicable")
	errNotFinite            = errors.New("component produced a non-finite value")
)

var difficultyMultipliers = map[analysis.Difficulty]float64{
	analysis.Easy:     1.10,
	analysis.Moderate: 1.00,
	analysis.Hard:     0.95,
	analysis.VeryHard: 0.90,
}

type componentFunc func(a *analyzed) (float64, error)

var components = map[Component]componentFunc{
	LinearRegression:     linearRegression,
	PolynomialRegression: polynomialRegression,
	Trend:                trend,
	TypeCorrelation:      typeCorrelation,
	DifficultyAdjustment: difficultyAdjustment,
	ClassComparative:     classComparative,
	RankBased:            rankBased,
}

// run evaluates a component, turning panics and non-finite values into errors.
func run(c Component, a *analyzed) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%s panicked: %v", c, r)
		}
	}()
	fn, ok := components[c]
	if !ok {
		return 0, errors.Wrap(ErrComponentUnavailable, string(c))
	}
	if v, err = fn(a); err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Wrap(errNotFinite, string(c))
	}
	return grading.ClampPercent(v), nil
}

func recentScores(a *analyzed) []float64 {
	scores := a.student.Scores
	if len(scores) > regressionWindow {
		scores = scores[len(scores)-regressionWindow:]
	}
	return scores
}

func linearRegression(a *analyzed) (float64, error) {
	ys := recentScores(a)
	if len(ys) < 2 {
		return 0, errors.Wrap(ErrComponentUnavailable, "linear regression needs 2 scores")
	}
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	next := alpha + beta*float64(len(ys))
	return next * difficultyMultipliers[a.target.Difficulty], nil
}

func weightMultiplier(weight float64) float64 {
	return 0.95 + grading.Clamp((weight-10)/40, 0, 1)*0.10
}

// polynomialRegression fits a polynomial of degree min(2, m-1) by least squares.
func polynomialRegression(a *analyzed) (float64, error) {
	ys := recentScores(a)
	m := len(ys)
	if m < 2 {
		return 0, errors.Wrap(ErrComponentUnavailable, "polynomial regression needs 2 scores")
	}
	degree := 2
	if m-1 < degree {
		degree = m - 1
	}

	vander := mat.NewDense(m, degree+1, nil)
	for i := 0; i < m; i++ {
		for j := 0; j <= degree; j++ {
			vander.Set(i, j, math.Pow(float64(i), float64(j)))
		}
	}
	var coef mat.VecDense
	if err := coef.SolveVec(vander, mat.NewVecDense(m, append([]float64(nil), ys...))); err != nil {
		return 0, errors.Wrap(err, "solving least squares")
	}

	var next float64
	x := float64(m)
	for j := 0; j <= degree; j++ {
		next += coef.AtVec(j) * math.Pow(x, float64(j))
	}
	return next * weightMultiplier(a.target.Weight), nil
}

func trend(a *analyzed) (float64, error) {
	return a.student.WeightedAverage + grading.Clamp(a.student.TrendSlope, -10, 10), nil
}

func typeCorrelation(a *analyzed) (float64, error) {
	if ts, ok := a.student.TypeStats[a.target.Type]; ok && ts.Count > 0 {
		return ts.Average, nil
	}
	return a.student.WeightedAverage * 0.95, nil
}

func difficultyAdjustment(a *analyzed) (float64, error) {
	if !a.target.HasClassData {
		return 0, errors.Wrap(ErrComponentUnavailable, "difficulty adjustment needs peer scores")
	}
	wa := a.student.WeightedAverage
	shift := (a.target.ClassAverage - referenceClassMean) / referenceClassMean
	return wa + shift*(wa-75)/25*5, nil
}

func classComparative(a *analyzed) (float64, error) {
	if !a.target.HasClassData || !a.class.HasData || a.class.ClassAverage <= 0 {
		return 0, errors.Wrap(ErrComponentUnavailable, "class comparison needs class data")
	}
	return a.target.ClassAverage * (a.student.WeightedAverage / a.class.ClassAverage), nil
}

func rankBased(a *analyzed) (float64, error) {
	r := syntheticRank(a.student.Scores, a.target)
	a.rank = &r
	return r.Score, nil
}
