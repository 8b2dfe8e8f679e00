package prediction

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/analysis"
	"github.com/trezcool/smartgrades/core/grading"
)

// Breakdown keys used outside of the components.
const (
	KeyClassAverage    = "class_average"
	KeyDefaultEstimate = "default_estimate"
	KeyCurrentGrade    = "current_grade"
	KeyDefault         = "default"
)

const (
	insufficientPeerConfidence    = 0.4
	insufficientDefaultConfidence = 0.2

	fallbackCurrentConfidence = 0.3
	fallbackDefaultConfidence = 0.1
	fallbackDefaultScore      = 75.0
	fallbackSpread            = 15.0
)

var ErrNoComponents = errors.New("no prediction component could run")

// Input is everything known when predicting one assessment of one enrollment.
type Input struct {
	// History is the graded work of the student, oldest first, without the target.
	History []analysis.GradedItem
	Target  analysis.AssessmentInfo
	// PeerScores are the scores classmates got on the target.
	PeerScores []float64
	// ClassScores holds every classmate's chronological scores.
	ClassScores [][]float64
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Result struct {
	PredictedScore      float64            `json:"predicted_score"`
	Confidence          float64            `json:"confidence"`
	Range               Range              `json:"prediction_range"`
	ContributingFactors []string           `json:"contributing_factors"`
	AlgorithmBreakdown  map[string]float64 `json:"algorithm_breakdown"`
	Mode                Mode               `json:"mode"`
	Fallback            bool               `json:"fallback,omitempty"`
}

type analyzed struct {
	student analysis.StudentPattern
	target  analysis.AssessmentProfile
	class   analysis.ClassPattern
	rank    *rankProjection
}

func analyze(in Input) *analyzed {
	return &analyzed{
		student: analysis.AnalyzeStudent(in.History),
		target:  analysis.AnalyzeAssessment(in.Target, in.PeerScores),
		class:   analysis.AnalyzeClass(in.ClassScores),
	}
}

// Predict estimates the score of `in.Target`. A blank mode means ModeEnsemble.
// Errors are only returned for invalid modes, single-component modes whose component
// cannot run, and unexpected failures; callers are expected to fall back on them.
func Predict(in Input, mode Mode) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("prediction panicked: %v", r)
		}
	}()

	if mode == "" {
		mode = ModeEnsemble
	}
	if !mode.Valid() {
		return Result{}, errors.Wrapf(ErrUnknownMode, "%q", mode)
	}

	a := analyze(in)
	if a.student.InsufficientData {
		res = predictWithoutHistory(a)
	} else {
		switch mode {
		case ModeEnsemble:
			res, err = predictEnsemble(a)
		case ModeSingle:
			res, err = predictSingle(a)
		default:
			res, err = predictWith(a, singleAlgorithms[mode])
		}
		if err != nil {
			return Result{}, err
		}
	}
	res.Mode = mode
	return res.rounded(), nil
}

// predictWithoutHistory short-circuits the components: the peer mean when available,
// otherwise a default by assessment weight.
func predictWithoutHistory(a *analyzed) Result {
	var res Result
	if a.target.HasClassData {
		res.PredictedScore = a.target.ClassAverage
		res.Confidence = insufficientPeerConfidence
		res.AlgorithmBreakdown = map[string]float64{KeyClassAverage: res.PredictedScore}
		res.ContributingFactors = []string{"Limited historical data - using class average"}
	} else {
		switch {
		case a.target.Weight >= 30:
			res.PredictedScore = 72
		case a.target.Weight >= 20:
			res.PredictedScore = 78
		default:
			res.PredictedScore = 82
		}
		res.Confidence = insufficientDefaultConfidence
		res.AlgorithmBreakdown = map[string]float64{KeyDefaultEstimate: res.PredictedScore}
		res.ContributingFactors = []string{"Limited historical data - using default estimate"}
	}
	spread := (1 - res.Confidence) * 20
	res.Range = spreadRange(res.PredictedScore, spread)
	return res
}

func runAll(a *analyzed, comps []Component) (map[Component]float64, []float64) {
	values := make(map[Component]float64, len(comps))
	ordered := make([]float64, 0, len(comps))
	for _, c := range comps {
		v, err := run(c, a)
		if err != nil {
			continue
		}
		values[c] = v
		ordered = append(ordered, v)
	}
	return values, ordered
}

func breakdown(values map[Component]float64) map[string]float64 {
	bd := make(map[string]float64, len(values))
	for c, v := range values {
		bd[string(c)] = v
	}
	return bd
}

func predictEnsemble(a *analyzed) (Result, error) {
	values, ordered := runAll(a, ensembleComponents)
	if len(values) == 0 {
		return Result{}, ErrNoComponents
	}

	var sum, weights float64
	for _, c := range ensembleComponents {
		if v, ok := values[c]; ok {
			sum += v * EnsembleWeights[c]
			weights += EnsembleWeights[c]
		}
	}
	predicted := grading.ClampPercent(sum / weights)
	conf := confidence(a, ordered)

	return Result{
		PredictedScore:      predicted,
		Confidence:          conf,
		Range:               confidenceRange(predicted, conf, a.student.Range),
		ContributingFactors: contributingFactors(a),
		AlgorithmBreakdown:  breakdown(values),
	}, nil
}

// predictSingle takes the median of the non-regression components.
func predictSingle(a *analyzed) (Result, error) {
	values, ordered := runAll(a, singleComponents)
	if len(values) == 0 {
		return Result{}, ErrNoComponents
	}
	sorted := append([]float64(nil), ordered...)
	sort.Float64s(sorted)

	return Result{
		PredictedScore:      analysis.Median(ordered),
		Confidence:          confidence(a, ordered),
		Range:               Range{Min: sorted[0], Max: sorted[len(sorted)-1]},
		ContributingFactors: contributingFactors(a),
		AlgorithmBreakdown:  breakdown(values),
	}, nil
}

func predictWith(a *analyzed, algo singleAlgorithm) (Result, error) {
	v, err := run(algo.component, a)
	if err != nil {
		return Result{}, err
	}
	return Result{
		PredictedScore:      v,
		Confidence:          algo.confidence,
		Range:               spreadRange(v, algo.spread),
		ContributingFactors: contributingFactors(a),
		AlgorithmBreakdown:  map[string]float64{string(algo.component): v},
	}, nil
}

// confidence blends data quantity, consistency, agreement between components and
// the availability of peer data.
func confidence(a *analyzed, values []float64) float64 {
	quantity := math.Min(1, float64(a.student.Count)/5)
	agreement := math.Max(0, 1-analysis.PopStdDev(values)/20)
	var classData float64
	if a.target.HasClassData {
		classData = 1
	}
	return grading.Clamp(0.4*quantity+0.3*a.student.ConsistencyScore+0.3*agreement+0.1*classData, 0, 1)
}

// confidenceRange widens with lower confidence and with a wider historical range.
func confidenceRange(predicted, conf, historicalRange float64) Range {
	spread := (1 - conf) * 20 * (1 + math.Min(historicalRange/50, 1)) / 2
	return spreadRange(predicted, spread)
}

func spreadRange(v, spread float64) Range {
	return Range{
		Min: grading.ClampPercent(v - spread),
		Max: grading.ClampPercent(v + spread),
	}
}

func (res Result) rounded() Result {
	res.PredictedScore = core.Round(res.PredictedScore, 2)
	res.Confidence = core.Round(res.Confidence, 3)
	res.Range.Min = core.Round(res.Range.Min, 2)
	res.Range.Max = core.Round(res.Range.Max, 2)
	for k, v := range res.AlgorithmBreakdown {
		res.AlgorithmBreakdown[k] = core.Round(v, 2)
	}
	if res.ContributingFactors == nil {
		res.ContributingFactors = []string{}
	}
	return res
}

// Fallback is used when a prediction cannot be made: the current predicted grade if
// there is one, else a flat default.
func Fallback(mode Mode, current float64, hasCurrent bool) Result {
	res := Result{
		Mode:     mode,
		Fallback: true,
	}
	if hasCurrent {
		res.PredictedScore = grading.ClampPercent(current)
		res.Confidence = fallbackCurrentConfidence
		res.AlgorithmBreakdown = map[string]float64{KeyCurrentGrade: res.PredictedScore}
		res.ContributingFactors = []string{"Prediction unavailable - using current grade"}
	} else {
		res.PredictedScore = fallbackDefaultScore
		res.Confidence = fallbackDefaultConfidence
		res.AlgorithmBreakdown = map[string]float64{KeyDefault: res.PredictedScore}
		res.ContributingFactors = []string{"Prediction unavailable - using default estimate"}
	}
	res.Range = spreadRange(res.PredictedScore, fallbackSpread)
	return res.rounded()
}
