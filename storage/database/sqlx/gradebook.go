package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/smartgrades/core/gradebook"
	"github.com/trezcool/smartgrades/core/school"
)

type gradebookRepository struct {
	repository
}

var _ gradebook.Repository = (*gradebookRepository)(nil) // interface compliance check

func NewGradebookRepository(db *sqlx.DB) gradebook.Repository {
	return &gradebookRepository{repository{db: db}}
}

func (repo *gradebookRepository) checkEnrollment(ctx context.Context, q sqlx.QueryerContext, id int) error {
	found, err := repo.exists(ctx, q, "SELECT 1 FROM class_enrollments WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "checking enrollment")
	}
	if !found {
		return school.ErrEnrollmentNotFound
	}
	return nil
}

func (repo *gradebookRepository) UpsertGrade(ctx context.Context, g gradebook.GradeEntry) (gradebook.GradeEntry, error) {
	err := repo.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := repo.checkEnrollment(ctx, tx, g.EnrollmentID); err != nil {
			return err
		}
		found, err := repo.exists(ctx, tx, "SELECT 1 FROM assessments WHERE id = ?", g.AssessmentID)
		if err != nil {
			return errors.Wrap(err, "checking assessment")
		}
		if !found {
			return school.ErrAssessmentNotFound
		}

		g.ID, err = repo.insert(ctx, tx, `
INSERT INTO student_grades (enrollment_id, assessment_id, score, graded_at) VALUES (?, ?, ?, ?)
ON CONFLICT (enrollment_id, assessment_id) DO UPDATE
SET score = excluded.score, graded_at = excluded.graded_at
RETURNING id`,
			g.EnrollmentID, g.AssessmentID, g.Score, g.GradedAt.UTC())
		return errors.Wrap(err, "upserting grade")
	})
	if err != nil {
		return gradebook.GradeEntry{}, err
	}
	g.GradedAt = g.GradedAt.UTC()
	return g, nil
}

func (repo *gradebookRepository) QueryEnrollmentGrades(ctx context.Context, enrollmentID int) ([]gradebook.GradeRow, error) {
	if err := repo.checkEnrollment(ctx, repo.db, enrollmentID); err != nil {
		return nil, err
	}

	rows := make([]gradebook.GradeRow, 0)
	err := repo.selectAll(ctx, repo.db, &rows, `
SELECT a.id AS assessment_id, a.name, a.weight, a.due_date, a.description, sg.score, sg.graded_at
FROM class_enrollments ce
JOIN assessments a ON a.class_id = ce.class_id
LEFT JOIN student_grades sg ON sg.assessment_id = a.id AND sg.enrollment_id = ce.id
WHERE ce.id = ?
ORDER BY `+assessmentsOrder, enrollmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollment grades")
	}
	return rows, nil
}

func (repo *gradebookRepository) QueryAssessmentScores(ctx context.Context, assessmentID, excludedEnrollmentID int) ([]float64, error) {
	scores := make([]float64, 0)
	err := repo.selectAll(ctx, repo.db, &scores, `
SELECT score FROM student_grades
WHERE assessment_id = ? AND enrollment_id <> ? AND score IS NOT NULL
ORDER BY id`, assessmentID, excludedEnrollmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assessment scores")
	}
	return scores, nil
}

func (repo *gradebookRepository) QueryClassScores(ctx context.Context, classID int) (map[int][]float64, error) {
	var rows []struct {
		EnrollmentID int     `db:"enrollment_id"`
		Score        float64 `db:"score"`
	}
	err := repo.selectAll(ctx, repo.db, &rows, `
SELECT sg.enrollment_id, sg.score
FROM student_grades sg
JOIN assessments a ON a.id = sg.assessment_id
JOIN class_enrollments ce ON ce.id = sg.enrollment_id
WHERE ce.class_id = ? AND sg.score IS NOT NULL
ORDER BY sg.enrollment_id, `+assessmentsOrder, classID)
	if err != nil {
		return nil, errors.Wrap(err, "querying class scores")
	}

	byEnrollment := make(map[int][]float64)
	for _, r := range rows {
		byEnrollment[r.EnrollmentID] = append(byEnrollment[r.EnrollmentID], r.Score)
	}
	return byEnrollment, nil
}

func (repo *gradebookRepository) AppendHistory(ctx context.Context, rec gradebook.HistoryRecord) (gradebook.HistoryRecord, error) {
	if err := repo.checkEnrollment(ctx, repo.db, rec.EnrollmentID); err != nil {
		return gradebook.HistoryRecord{}, err
	}
	id, err := repo.insert(ctx, repo.db, `
INSERT INTO grade_history (enrollment_id, predicted_grade, weighted_score, timestamp)
VALUES (?, ?, ?, ?) RETURNING id`,
		rec.EnrollmentID, rec.PredictedGrade, rec.WeightedScore, rec.Timestamp.UTC())
	if err != nil {
		return gradebook.HistoryRecord{}, errors.Wrap(err, "inserting grade history")
	}
	rec.ID = id
	rec.Timestamp = rec.Timestamp.UTC()
	return rec, nil
}

func (repo *gradebookRepository) QueryHistory(ctx context.Context, enrollmentID int) ([]gradebook.HistoryRecord, error) {
	records := make([]gradebook.HistoryRecord, 0)
	err := repo.selectAll(ctx, repo.db, &records, `
SELECT id, enrollment_id, predicted_grade, weighted_score, timestamp
FROM grade_history WHERE enrollment_id = ?
ORDER BY timestamp, id`, enrollmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying grade history")
	}
	return records, nil
}
