package analysis

const classTrendThreshold = 3.0

type ClassPattern struct {
	HasData      bool    `json:"has_data"`
	ClassAverage float64 `json:"class_average"`
	StudentCount int     `json:"student_count"`
	Improving    int     `json:"improving_students"`
	Declining    int     `json:"declining_students"`
	Stable       int     `json:"stable_students"`
}

// AnalyzeClass looks at every student's chronological scores.
// A student is improving (declining) when the mean of the second half of their history
// beats (trails) the first half by more than 3 points.
func AnalyzeClass(students [][]float64) ClassPattern {
	cp := ClassPattern{StudentCount: len(students)}
	var all []float64
	for _, scores := range students {
		all = append(all, scores...)

		if len(scores) < 2 {
			cp.Stable++
			continue
		}
		half := len(scores) / 2
		delta := mean(scores[half:]) - mean(scores[:half])
		switch {
		case delta > classTrendThreshold:
			cp.Improving++
		case delta < -classTrendThreshold:
			cp.Declining++
		default:
			cp.Stable++
		}
	}
	if len(all) > 0 {
		cp.HasData = true
		cp.ClassAverage = mean(all)
	}
	return cp
}
