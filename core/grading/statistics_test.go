package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassStatistics(t *testing.T) {
	tests := []struct {
		name   string
		grades []float64
		want   Stats
	}{
		{
			name:   "empty class",
			grades: nil,
			want:   Stats{GradeDistribution: map[string]int{"A": 0, "B": 0, "C": 0, "D": 0, "E": 0}},
		},
		{
			name:   "one of each letter",
			grades: []float64{95, 85, 75, 65, 55},
			want: Stats{
				StudentCount: 5, MeanGrade: 75, StdDeviation: 14.14, HighestGrade: 95, LowestGrade: 55,
				GradeDistribution: map[string]int{"A": 1, "B": 1, "C": 1, "D": 1, "E": 1},
				PassingRate:       80,
			},
		},
		{
			name:   "single student",
			grades: []float64{59.999},
			want: Stats{
				StudentCount: 1, MeanGrade: 60, StdDeviation: 0, HighestGrade: 60, LowestGrade: 60,
				GradeDistribution: map[string]int{"A": 0, "B": 0, "C": 0, "D": 0, "E": 1},
				PassingRate:       0,
			},
		},
		{
			name:   "rounding",
			grades: []float64{66.666, 70, 90},
			want: Stats{
				StudentCount: 3, MeanGrade: 75.56, StdDeviation: 10.3, HighestGrade: 90, LowestGrade: 66.67,
				GradeDistribution: map[string]int{"A": 1, "B": 0, "C": 1, "D": 1, "E": 0},
				PassingRate:       100,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassStatistics(tt.grades))
		})
	}
}
