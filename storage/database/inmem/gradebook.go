package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/smartgrades/core/gradebook"
	"github.com/trezcool/smartgrades/core/school"
)

type gradebookRepository struct {
	db *DB
}

var _ gradebook.Repository = (*gradebookRepository)(nil) // interface compliance check

func NewGradebookRepository(db *DB) gradebook.Repository {
	return &gradebookRepository{db: db}
}

func (repo *gradebookRepository) grade(enrollmentID, assessmentID int) *gradebook.GradeEntry {
	for _, g := range repo.db.grades {
		if g.EnrollmentID == enrollmentID && g.AssessmentID == assessmentID {
			return g
		}
	}
	return nil
}

func (repo *gradebookRepository) UpsertGrade(_ context.Context, g gradebook.GradeEntry) (gradebook.GradeEntry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.enrollments[g.EnrollmentID]; !ok {
		return gradebook.GradeEntry{}, school.ErrEnrollmentNotFound
	}
	if _, ok := repo.db.assessments[g.AssessmentID]; !ok {
		return gradebook.GradeEntry{}, school.ErrAssessmentNotFound
	}
	if existing := repo.grade(g.EnrollmentID, g.AssessmentID); existing != nil {
		existing.Score = g.Score
		existing.GradedAt = g.GradedAt
		return *existing, nil
	}
	g.ID = repo.db.nextPK()
	repo.db.grades[g.ID] = &g
	return g, nil
}

// enrollmentGrades joins the class assessments of an enrollment with its grades; callers hold a lock.
func (repo *gradebookRepository) enrollmentGrades(enr *school.Enrollment) []gradebook.GradeRow {
	assessments := repo.db.classAssessments(enr.ClassID)
	rows := make([]gradebook.GradeRow, 0, len(assessments))
	for _, a := range assessments {
		row := gradebook.GradeRow{
			AssessmentID: a.ID,
			Name:         a.Name,
			Weight:       a.Weight,
			DueDate:      a.DueDate,
			Description:  a.Description,
		}
		if g := repo.grade(enr.ID, a.ID); g != nil {
			row.Score = g.Score
			row.GradedAt.SetValid(g.GradedAt)
		}
		rows = append(rows, row)
	}
	return rows
}

func (repo *gradebookRepository) QueryEnrollmentGrades(_ context.Context, enrollmentID int) ([]gradebook.GradeRow, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enr, ok := repo.db.enrollments[enrollmentID]
	if !ok {
		return nil, school.ErrEnrollmentNotFound
	}
	return repo.enrollmentGrades(enr), nil
}

func (repo *gradebookRepository) QueryAssessmentScores(_ context.Context, assessmentID, excludedEnrollmentID int) ([]float64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grades := make([]*gradebook.GradeEntry, 0)
	for _, g := range repo.db.grades {
		if g.AssessmentID == assessmentID && g.EnrollmentID != excludedEnrollmentID && g.Score.Valid {
			grades = append(grades, g)
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID < grades[j].ID })

	scores := make([]float64, 0, len(grades))
	for _, g := range grades {
		scores = append(scores, g.Score.Float64)
	}
	return scores, nil
}

func (repo *gradebookRepository) QueryClassScores(_ context.Context, classID int) (map[int][]float64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	byEnrollment := make(map[int][]float64)
	for _, enr := range repo.db.enrollments {
		if enr.ClassID != classID {
			continue
		}
		for _, row := range repo.enrollmentGrades(enr) {
			if row.Score.Valid {
				byEnrollment[enr.ID] = append(byEnrollment[enr.ID], row.Score.Float64)
			}
		}
	}
	return byEnrollment, nil
}

func (repo *gradebookRepository) AppendHistory(_ context.Context, rec gradebook.HistoryRecord) (gradebook.HistoryRecord, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.enrollments[rec.EnrollmentID]; !ok {
		return gradebook.HistoryRecord{}, school.ErrEnrollmentNotFound
	}
	rec.ID = repo.db.nextPK()
	repo.db.history[rec.ID] = &rec
	return rec, nil
}

func (repo *gradebookRepository) QueryHistory(_ context.Context, enrollmentID int) ([]gradebook.HistoryRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]gradebook.HistoryRecord, 0)
	for _, h := range repo.db.history {
		if h.EnrollmentID == enrollmentID {
			records = append(records, *h)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.Before(records[j].Timestamp)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}
