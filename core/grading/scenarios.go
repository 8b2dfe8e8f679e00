package grading

// DefaultTargetGrade is used when no target grade is requested.
const DefaultTargetGrade = 70.0

// Scenarios are the what-if projections of a Snapshot.
type Scenarios struct {
	BestCase        float64 `json:"best_case"`
	WorstCase       float64 `json:"worst_case"`
	RequiredAverage float64 `json:"required_average"`
	TargetGrade     float64 `json:"target_grade"`
}

// Project computes the best/worst final grade and the average needed on the remaining
// weight to reach `target`. Without remaining weight all three collapse to the predicted grade.
func Project(snap Snapshot, target float64) Scenarios {
	target = ClampPercent(target)
	sc := Scenarios{TargetGrade: target}

	if snap.RemainingWeight > 0 && snap.TotalWeight > 0 {
		sc.BestCase = (snap.WeightedScore + snap.RemainingWeight) / snap.TotalWeight * 100
		sc.WorstCase = snap.WeightedScore / snap.TotalWeight * 100
		required := (target/100*snap.TotalWeight - snap.WeightedScore) / snap.RemainingWeight * 100
		sc.RequiredAverage = ClampPercent(required)
		return sc
	}

	sc.BestCase = snap.Predicted
	sc.WorstCase = snap.Predicted
	sc.RequiredAverage = snap.Predicted
	return sc
}
