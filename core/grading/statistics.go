package grading

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/trezcool/smartgrades/core"
)

// Stats summarizes the predicted grades of a class.
type Stats struct {
	StudentCount      int            `json:"student_count"`
	MeanGrade         float64        `json:"mean_grade"`
	StdDeviation      float64        `json:"std_deviation"`
	HighestGrade      float64        `json:"highest_grade"`
	LowestGrade       float64        `json:"lowest_grade"`
	GradeDistribution map[string]int `json:"grade_distribution"`
	PassingRate       float64        `json:"passing_rate"`
}

func emptyDistribution() map[string]int {
	dist := make(map[string]int, len(Letters))
	for _, l := range Letters {
		dist[l] = 0
	}
	return dist
}

// ClassStatistics computes the class report over predicted grades.
// The standard deviation is the population one; all values are rounded to 2 decimals.
func ClassStatistics(grades []float64) Stats {
	st := Stats{GradeDistribution: emptyDistribution()}
	if len(grades) == 0 {
		return st
	}

	highest, lowest := math.Inf(-1), math.Inf(1)
	passing := 0
	for _, g := range grades {
		highest = math.Max(highest, g)
		lowest = math.Min(lowest, g)
		st.GradeDistribution[LetterGrade(g)]++
		if g >= PassingGrade {
			passing++
		}
	}
	mean, variance := stat.PopMeanVariance(grades, nil)

	st.StudentCount = len(grades)
	st.MeanGrade = core.Round(mean, 2)
	st.StdDeviation = core.Round(math.Sqrt(variance), 2)
	st.HighestGrade = core.Round(highest, 2)
	st.LowestGrade = core.Round(lowest, 2)
	st.PassingRate = core.Round(float64(passing)/float64(len(grades))*100, 2)
	return st
}
