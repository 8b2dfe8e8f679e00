package gradebook

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/smartgrades/core/analysis"
	"github.com/trezcool/smartgrades/core/grading"
	"github.com/trezcool/smartgrades/core/school"
)

type GradeEntry struct {
	ID           int          `json:"id" db:"id"`
	EnrollmentID int          `json:"enrollment_id" db:"enrollment_id"`
	AssessmentID int          `json:"assessment_id" db:"assessment_id"`
	Score        null.Float64 `json:"score" db:"score"`
	GradedAt     time.Time    `json:"graded_at" db:"graded_at"` // UTC
}

// GradeRow is one assessment of an enrollment's class along with the enrollment's score, if any.
type GradeRow struct {
	AssessmentID int          `json:"assessment_id" db:"assessment_id"`
	Name         string       `json:"name" db:"name"`
	Weight       float64      `json:"weight" db:"weight"`
	DueDate      null.String  `json:"due_date" db:"due_date"`
	Description  null.String  `json:"description" db:"description"`
	Score        null.Float64 `json:"score" db:"score"`
	GradedAt     null.Time    `json:"graded_at" db:"graded_at"`
}

// HistoryRecord is the grade state of an enrollment after a grade write.
type HistoryRecord struct {
	ID             int       `json:"id" db:"id"`
	EnrollmentID   int       `json:"enrollment_id" db:"enrollment_id"`
	PredictedGrade float64   `json:"predicted_grade" db:"predicted_grade"`
	WeightedScore  float64   `json:"weighted_score" db:"weighted_score"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"` // UTC
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func weightedScores(rows []GradeRow) []grading.WeightedScore {
	scores := make([]grading.WeightedScore, 0, len(rows))
	for _, r := range rows {
		scores = append(scores, grading.WeightedScore{Weight: null.Float64From(r.Weight), Score: r.Score})
	}
	return scores
}

// gradedItems keeps the graded rows, skipping `excludedAssessmentID`.
func gradedItems(rows []GradeRow, excludedAssessmentID int) []analysis.GradedItem {
	items := make([]analysis.GradedItem, 0, len(rows))
	for _, r := range rows {
		if !r.Score.Valid || r.AssessmentID == excludedAssessmentID {
			continue
		}
		items = append(items, analysis.GradedItem{
			AssessmentID: r.AssessmentID,
			Name:         r.Name,
			Description:  r.Description.String,
			Weight:       r.Weight,
			Score:        grading.ClampPercent(r.Score.Float64),
		})
	}
	return items
}

type ClassInfo struct {
	ClassID      int           `json:"class_id"`
	ClassName    string        `json:"class_name"`
	Subject      string        `json:"subject"`
	GradingScale grading.Scale `json:"grading_scale"`
}

func newClassInfo(cls school.Class) ClassInfo {
	return ClassInfo{
		ClassID:      cls.ID,
		ClassName:    cls.ClassName,
		Subject:      cls.Subject,
		GradingScale: cls.GradingScale,
	}
}

// GradeReport is the grade sheet of one enrollment.
type GradeReport struct {
	Grades       []GradeRow       `json:"grades"`
	Calculations grading.Snapshot `json:"calculations"`
	LetterGrade  string           `json:"letter_grade"`
	GradeLabel   string           `json:"grade_label"`
	ClassInfo    ClassInfo        `json:"class_info"`
}

type CurrentGrade struct {
	Predicted       float64 `json:"predicted"`
	LetterGrade     string  `json:"letter_grade"`
	WeightedScore   float64 `json:"weighted_score"`
	CompletedWeight float64 `json:"completed_weight"`
}

// Projection is the current grade of an enrollment with its what-if scenarios.
type Projection struct {
	Current         CurrentGrade      `json:"current"`
	Scenarios       grading.Scenarios `json:"scenarios"`
	RemainingWeight float64           `json:"remaining_weight"`
}

// RosterEntry is an enrolled student with their current grade.
type RosterEntry struct {
	school.EnrolledStudent
	grading.Snapshot
	LetterGrade string `json:"letter_grade"`
	GradeLabel  string `json:"grade_label"`
}

type StudentAnalytics struct {
	EnrollmentID    int        `json:"enrollment_id"`
	StudentID       string     `json:"student_id"`
	Name            string     `json:"name"`
	PredictedGrade  float64    `json:"predicted_grade"`
	LetterGrade     string     `json:"letter_grade"`
	GradeLabel      string     `json:"grade_label"`
	WeightedScore   float64    `json:"weighted_score"`
	CompletedWeight float64    `json:"completed_weight"`
	Grades          []GradeRow `json:"grades"`
}

type Analytics struct {
	Statistics grading.Stats         `json:"statistics"`
	Patterns   analysis.ClassPattern `json:"patterns"`
	Students   []StudentAnalytics    `json:"students"`
	ClassInfo  school.Class          `json:"class_info"`
}
