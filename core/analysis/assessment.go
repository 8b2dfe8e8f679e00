package analysis

import "sort"

type Difficulty string

const (
	Easy     Difficulty = "easy"
	Moderate Difficulty = "moderate"
	Hard     Difficulty = "hard"
	VeryHard Difficulty = "very_hard"
)

// AssessmentInfo describes the assessment being predicted.
type AssessmentInfo struct {
	ID          int
	Name        string
	Description string
	Weight      float64
}

type AssessmentProfile struct {
	Type         AssessmentType
	Weight       float64
	Difficulty   Difficulty
	HasClassData bool
	PeerCount    int
	ClassAverage float64
	ClassStdDev  float64
	// PeerScores sorted from best to worst.
	PeerScores []float64
}

// AnalyzeAssessment rates the difficulty of an assessment from the scores peers got on it,
// or from its weight when nobody has been graded yet.
func AnalyzeAssessment(info AssessmentInfo, peerScores []float64) AssessmentProfile {
	prof := AssessmentProfile{
		Type:   ClassifyAssessment(info.Name, info.Description),
		Weight: info.Weight,
	}
	if len(peerScores) == 0 {
		switch {
		case info.Weight >= 30:
			prof.Difficulty = Hard
		case info.Weight >= 20:
			prof.Difficulty = Moderate
		default:
			prof.Difficulty = Easy
		}
		return prof
	}

	prof.HasClassData = true
	prof.PeerCount = len(peerScores)
	prof.PeerScores = append([]float64(nil), peerScores...)
	sort.Sort(sort.Reverse(sort.Float64Slice(prof.PeerScores)))
	prof.ClassAverage = mean(peerScores)
	prof.ClassStdDev = popStdDev(peerScores)

	switch {
	case prof.ClassAverage >= 85:
		prof.Difficulty = Easy
	case prof.ClassAverage >= 75:
		prof.Difficulty = Moderate
	case prof.ClassAverage >= 65:
		prof.Difficulty = Hard
	default:
		prof.Difficulty = VeryHard
	}
	return prof
}
