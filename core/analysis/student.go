package analysis

import "math"

// MinHistory is the number of graded assessments needed to analyze a student.
const MinHistory = 2

type Improvement string

const (
	Improving            Improvement = "improving"
	Declining            Improvement = "declining"
	Stable               Improvement = "stable"
	InsufficientForTrend Improvement = "insufficient_data"
)

// GradedItem is one graded assessment of a student, in chronological order.
type GradedItem struct {
	AssessmentID int
	Name         string
	Description  string
	Weight       float64
	Score        float64
}

type TypeStat struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type StudentPattern struct {
	InsufficientData bool
	Count            int
	Scores           []float64
	Mean             float64
	WeightedAverage  float64
	TrendSlope       float64
	ConsistencyScore float64
	TypeStats        map[AssessmentType]TypeStat
	Improvement      Improvement
	Min              float64
	Max              float64
	Range            float64
	Recent           []float64
}

// AnalyzeStudent summarizes a student's chronological history.
func AnalyzeStudent(items []GradedItem) StudentPattern {
	p := StudentPattern{
		Count:     len(items),
		TypeStats: make(map[AssessmentType]TypeStat),
	}
	if len(items) < MinHistory {
		p.InsufficientData = true
		p.Improvement = InsufficientForTrend
		if len(items) == 1 {
			s := items[0].Score
			p.Scores = []float64{s}
			p.Mean, p.WeightedAverage, p.Min, p.Max = s, s, s, s
			p.Recent = []float64{s}
		}
		return p
	}

	p.Scores = make([]float64, 0, len(items))
	var weighted, weights float64
	typeSums := make(map[AssessmentType]float64)
	for _, it := range items {
		p.Scores = append(p.Scores, it.Score)
		weighted += it.Score * it.Weight
		weights += it.Weight

		typ := ClassifyAssessment(it.Name, it.Description)
		ts := p.TypeStats[typ]
		ts.Count++
		p.TypeStats[typ] = ts
		typeSums[typ] += it.Score
	}
	for typ, ts := range p.TypeStats {
		ts.Average = typeSums[typ] / float64(ts.Count)
		p.TypeStats[typ] = ts
	}

	p.Mean = mean(p.Scores)
	p.WeightedAverage = p.Mean
	if weights > 0 {
		p.WeightedAverage = weighted / weights
	}
	p.TrendSlope = Slope(p.Scores)
	p.ConsistencyScore = consistency(p.Mean, popStdDev(p.Scores))
	p.Improvement = improvement(p.Scores)

	p.Min, p.Max = math.Inf(1), math.Inf(-1)
	for _, s := range p.Scores {
		p.Min = math.Min(p.Min, s)
		p.Max = math.Max(p.Max, s)
	}
	p.Range = p.Max - p.Min

	recent := len(p.Scores) - 3
	if recent < 0 {
		recent = 0
	}
	p.Recent = append([]float64(nil), p.Scores[recent:]...)
	return p
}

// consistency maps the coefficient of variation onto [0, 1]; a cv of 0.5 or more scores 0.
func consistency(mean, std float64) float64 {
	if mean == 0 {
		if std == 0 {
			return 1
		}
		return 0
	}
	cv := std / math.Abs(mean)
	return math.Max(0, math.Min(1, 1-cv/0.5))
}

func improvement(scores []float64) Improvement {
	n := len(scores)
	if n < 3 {
		return InsufficientForTrend
	}
	k := n / 3
	delta := mean(scores[n-k:]) - mean(scores[:k])
	switch {
	case delta > 5:
		return Improving
	case delta < -5:
		return Declining
	default:
		return Stable
	}
}
