package grading

import (
	"math"

	"github.com/volatiletech/null/v8"
)

// WeightedScore is one assessment of an enrollment: its weight and the score, if graded.
type WeightedScore struct {
	Weight null.Float64
	Score  null.Float64
}

// Snapshot is the derived grade state of one enrollment.
type Snapshot struct {
	TotalWeight     float64 `json:"total_weight"`
	WeightedScore   float64 `json:"weighted_score"`
	CompletedWeight float64 `json:"completed_weight"`
	Predicted       float64 `json:"predicted"`
	RemainingWeight float64 `json:"remaining_weight"`
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Aggregate folds the weighted scores into a Snapshot.
// The predicted grade only accounts for graded assessments; it is 0 when nothing is graded.
func Aggregate(scores []WeightedScore) Snapshot {
	var snap Snapshot
	for _, ws := range scores {
		if !ws.Weight.Valid {
			continue
		}
		weight := finiteOrZero(ws.Weight.Float64)
		snap.TotalWeight += weight

		if ws.Score.Valid {
			score := ClampPercent(finiteOrZero(ws.Score.Float64))
			snap.CompletedWeight += weight
			snap.WeightedScore += score * weight / 100
		}
	}

	if snap.CompletedWeight > 0 {
		snap.Predicted = snap.WeightedScore / snap.CompletedWeight * 100
	}
	snap.RemainingWeight = math.Max(0, snap.TotalWeight-snap.CompletedWeight)
	return snap
}

// Letter is the letter grade of the predicted grade.
func (s Snapshot) Letter() string {
	return LetterGrade(s.Predicted)
}
