package gradebook

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/smartgrades/core/prediction"
	"github.com/trezcool/smartgrades/core/school"
)

func TestConfidenceDescription(t *testing.T) {
	tests := []struct {
		confidence float64
		prefix     string
	}{
		{0.95, "Very High"},
		{0.8, "Very High"},
		{0.6, "High"},
		{0.45, "Moderate"},
		{0.2, "Low"},
		{0.1, "Very Low"},
	}
	for _, tt := range tests {
		assert.Regexp(t, "^"+tt.prefix+" - ", ConfidenceDescription(tt.confidence), "confidence %v", tt.confidence)
	}
}

func TestRecommendation(t *testing.T) {
	tests := []struct {
		name string
		res  prediction.Result
		want string
	}{
		{name: "excel", res: prediction.Result{PredictedScore: 93}, want: "Student is predicted to excel. Consider offering advanced challenges."},
		{name: "strong", res: prediction.Result{PredictedScore: 80}, want: "Student is on track for strong performance. Maintain current approach."},
		{name: "satisfactory", res: prediction.Result{PredictedScore: 75}, want: "Student should achieve satisfactory results with continued effort."},
		{name: "struggle", res: prediction.Result{PredictedScore: 60}, want: "Student may struggle. Consider additional support or review sessions."},
		{name: "confident fail", res: prediction.Result{PredictedScore: 40, Confidence: 0.7}, want: "Strong intervention recommended. Student likely needs significant help."},
		{name: "uncertain fail", res: prediction.Result{PredictedScore: 40, Confidence: 0.5}, want: "Prediction uncertain. Monitor closely and provide support as needed."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommendation(tt.res))
		})
	}
}

func TestMatchAssessment(t *testing.T) {
	assessments := []school.Assessment{
		{ID: 1, Name: "Quiz 1"},
		{ID: 2, Name: "quiz 1"},
		{ID: 3, Name: "Final Exam"},
	}
	tests := []struct {
		name      string
		column    string
		wantID    int
		wantFuzzy bool
		wantOK    bool
	}{
		{name: "exact wins over case-insensitive", column: "quiz 1", wantID: 2, wantOK: true},
		{name: "case-insensitive", column: "FINAL EXAM", wantID: 3, wantOK: true},
		{name: "close match", column: "Final Exams", wantID: 3, wantFuzzy: true, wantOK: true},
		{name: "no match", column: "Homework", wantFuzzy: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, fuzzy, ok := matchAssessment(tt.column, assessments)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantFuzzy, fuzzy)
			assert.Equal(t, tt.wantID, a.ID)
		})
	}
}
