package gradebook

import "github.com/trezcool/smartgrades/core/prediction"

// ConfidenceDescription puts a prediction confidence into words.
func ConfidenceDescription(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "Very High - Prediction based on strong historical patterns"
	case confidence >= 0.6:
		return "High - Good amount of data supports this prediction"
	case confidence >= 0.4:
		return "Moderate - Some uncertainty due to limited data"
	case confidence >= 0.2:
		return "Low - Prediction has significant uncertainty"
	default:
		return "Very Low - Use with caution, insufficient data"
	}
}

// Recommendation suggests what a teacher should do about a predicted score.
func Recommendation(res prediction.Result) string {
	switch score := res.PredictedScore; {
	case score >= 90:
		return "Student is predicted to excel. Consider offering advanced challenges."
	case score >= 80:
		return "Student is on track for strong performance. Maintain current approach."
	case score >= 70:
		return "Student should achieve satisfactory results with continued effort."
	case score >= 60:
		return "Student may struggle. Consider additional support or review sessions."
	case res.Confidence > 0.5:
		return "Strong intervention recommended. Student likely needs significant help."
	default:
		return "Prediction uncertain. Monitor closely and provide support as needed."
	}
}
