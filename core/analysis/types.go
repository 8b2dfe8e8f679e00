// Package analysis derives the performance patterns the predictors feed on:
// per-student history, per-assessment difficulty and class-wide trends.
package analysis

import "strings"

type AssessmentType string

const (
	TypeQuiz         AssessmentType = "quiz"
	TypeExam         AssessmentType = "exam"
	TypeProject      AssessmentType = "project"
	TypeHomework     AssessmentType = "homework"
	TypeLab          AssessmentType = "lab"
	TypePresentation AssessmentType = "presentation"
	TypeOther        AssessmentType = "other"
)

// order matters: the first matching rule wins
var typeKeywords = []struct {
	typ      AssessmentType
	keywords []string
}{
	{TypeQuiz, []string{"quiz"}},
	{TypeExam, []string{"exam", "test"}},
	{TypeProject, []string{"project", "assignment"}},
	{TypeHomework, []string{"homework"}},
	{TypeLab, []string{"lab"}},
	{TypePresentation, []string{"presentation"}},
}

// ClassifyAssessment infers the assessment type from keywords in its name and description.
func ClassifyAssessment(name, description string) AssessmentType {
	text := strings.ToLower(name + " " + description)
	for _, rule := range typeKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.typ
			}
		}
	}
	return TypeOther
}
