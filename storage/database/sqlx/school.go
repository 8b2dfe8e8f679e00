package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/school"
)

const (
	teacherColumns    = "id, name, email, created_at"
	studentColumns    = "id, student_id, first_name, last_name, email, created_at"
	enrollmentColumns = "id, class_id, student_id, enrolled_at"
	assessmentColumns = "a.id, a.class_id, a.name, a.weight, a.due_date, a.description, a.created_at"

	classSelect = `
SELECT c.id, c.teacher_id, c.class_name, c.subject, c.year, c.semester, c.grading_scale, c.created_at,
       t.name AS teacher_name, t.email AS teacher_email,
       (SELECT COUNT(*) FROM class_enrollments ce WHERE ce.class_id = c.id) AS student_count
FROM classes c
JOIN teachers t ON t.id = c.teacher_id`
)

type schoolRepository struct {
	repository
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{repository{db: db}}
}

// Teachers

func (repo *schoolRepository) CreateTeacher(ctx context.Context, t school.Teacher) (school.Teacher, error) {
	err := repo.inTx(ctx, func(tx *sqlx.Tx) error {
		if t.Email.Valid {
			taken, err := repo.exists(ctx, tx, "SELECT 1 FROM teachers WHERE email = ?", t.Email)
			if err != nil {
				return errors.Wrap(err, "checking teacher email")
			}
			if taken {
				return school.ErrEmailExists
			}
		}
		id, err := repo.insert(ctx, tx,
			"INSERT INTO teachers (name, email, created_at) VALUES (?, ?, ?) RETURNING id",
			t.Name, t.Email, t.CreatedAt.UTC())
		if err != nil {
			return errors.Wrap(err, "inserting teacher")
		}
		t.ID = id
		return nil
	})
	if err != nil {
		return school.Teacher{}, err
	}
	return t, nil
}

func (repo *schoolRepository) QueryTeachers(ctx context.Context, ordering []core.DBOrdering) ([]school.Teacher, error) {
	q := "SELECT " + teacherColumns + " FROM teachers" + core.OrderByClause(ordering, "name ASC") + ", id ASC"
	teachers := make([]school.Teacher, 0)
	if err := repo.selectAll(ctx, repo.db, &teachers, q); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	return teachers, nil
}

func (repo *schoolRepository) GetTeacher(ctx context.Context, id int) (school.Teacher, error) {
	var t school.Teacher
	err := repo.get(ctx, repo.db, &t, "SELECT "+teacherColumns+" FROM teachers WHERE id = ?", id)
	if err != nil {
		return school.Teacher{}, trapNoRowsErr(err, school.ErrTeacherNotFound, "getting teacher")
	}
	return t, nil
}

func (repo *schoolRepository) DeleteTeacher(ctx context.Context, id int) error {
	return repo.inTx(ctx, func(tx *sqlx.Tx) error {
		classEnrollments := "SELECT ce.id FROM class_enrollments ce JOIN classes c ON c.id = ce.class_id WHERE c.teacher_id = ?"
		classes := "SELECT id FROM classes WHERE teacher_id = ?"
		err := repo.execAll(ctx, tx, []interface{}{id},
			"DELETE FROM student_grades WHERE enrollment_id IN ("+classEnrollments+")",
			"DELETE FROM grade_history WHERE enrollment_id IN ("+classEnrollments+")",
			"DELETE FROM class_enrollments WHERE class_id IN ("+classes+")",
			"DELETE FROM assessments WHERE class_id IN ("+classes+")",
			"DELETE FROM classes WHERE teacher_id = ?",
		)
		if err != nil {
			return errors.Wrap(err, "deleting teacher classes")
		}
		return repo.deleteByID(ctx, tx, "teachers", id, school.ErrTeacherNotFound)
	})
}

// Classes

func (repo *schoolRepository) CreateClass(ctx context.Context, c school.Class) (school.Class, error) {
	id, err := repo.insert(ctx, repo.db, `
INSERT INTO classes (teacher_id, class_name, subject, year, semester, grading_scale, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		c.TeacherID, c.ClassName, c.Subject, c.Year, c.Semester, c.GradingScale, c.CreatedAt.UTC())
	if err != nil {
		return school.Class{}, errors.Wrap(err, "inserting class")
	}
	return repo.GetClass(ctx, id)
}

func (repo *schoolRepository) QueryTeacherClasses(ctx context.Context, teacherID int) ([]school.Class, error) {
	classes := make([]school.Class, 0)
	err := repo.selectAll(ctx, repo.db, &classes, classSelect+" WHERE c.teacher_id = ? ORDER BY c.class_name, c.id", teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying teacher classes")
	}
	return classes, nil
}

func (repo *schoolRepository) GetClass(ctx context.Context, id int) (school.Class, error) {
	var c school.Class
	if err := repo.get(ctx, repo.db, &c, classSelect+" WHERE c.id = ?", id); err != nil {
		return school.Class{}, trapNoRowsErr(err, school.ErrClassNotFound, "getting class")
	}
	return c, nil
}

func (repo *schoolRepository) DeleteClass(ctx context.Context, id int) error {
	return repo.inTx(ctx, func(tx *sqlx.Tx) error {
		err := repo.execAll(ctx, tx, []interface{}{id},
			"DELETE FROM student_grades WHERE enrollment_id IN (SELECT id FROM class_enrollments WHERE class_id = ?)",
			"DELETE FROM student_grades WHERE assessment_id IN (SELECT id FROM assessments WHERE class_id = ?)",
			"DELETE FROM grade_history WHERE enrollment_id IN (SELECT id FROM class_enrollments WHERE class_id = ?)",
			"DELETE FROM class_enrollments WHERE class_id = ?",
			"DELETE FROM assessments WHERE class_id = ?",
		)
		if err != nil {
			return errors.Wrap(err, "deleting class records")
		}
		return repo.deleteByID(ctx, tx, "classes", id, school.ErrClassNotFound)
	})
}

// Students & enrollments

func (repo *schoolRepository) UpsertStudent(ctx context.Context, s school.Student) (school.Student, error) {
	id, err := repo.insert(ctx, repo.db, `
INSERT INTO students (student_id, first_name, last_name, email, created_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (student_id) DO UPDATE
SET first_name = excluded.first_name, last_name = excluded.last_name, email = excluded.email
RETURNING id`,
		s.Code, s.FirstName, s.LastName, s.Email, s.CreatedAt.UTC())
	if err != nil {
		return school.Student{}, errors.Wrap(err, "upserting student")
	}
	var st school.Student
	if err = repo.get(ctx, repo.db, &st, "SELECT "+studentColumns+" FROM students WHERE id = ?", id); err != nil {
		return school.Student{}, errors.Wrap(err, "getting student")
	}
	return st, nil
}

func (repo *schoolRepository) GetStudentByCode(ctx context.Context, code string) (school.Student, error) {
	var st school.Student
	if err := repo.get(ctx, repo.db, &st, "SELECT "+studentColumns+" FROM students WHERE student_id = ?", code); err != nil {
		return school.Student{}, trapNoRowsErr(err, school.ErrStudentNotFound, "getting student")
	}
	return st, nil
}

func (repo *schoolRepository) Enroll(ctx context.Context, classID, studentID int, at time.Time) (school.Enrollment, error) {
	var enr school.Enrollment
	err := repo.inTx(ctx, func(tx *sqlx.Tx) error {
		found, err := repo.exists(ctx, tx, "SELECT 1 FROM classes WHERE id = ?", classID)
		if err != nil {
			return errors.Wrap(err, "checking class")
		}
		if !found {
			return school.ErrClassNotFound
		}
		if found, err = repo.exists(ctx, tx, "SELECT 1 FROM students WHERE id = ?", studentID); err != nil {
			return errors.Wrap(err, "checking student")
		}
		if !found {
			return school.ErrStudentNotFound
		}

		_, err = tx.ExecContext(ctx, repo.db.Rebind(`
INSERT INTO class_enrollments (class_id, student_id, enrolled_at) VALUES (?, ?, ?)
ON CONFLICT (class_id, student_id) DO NOTHING`),
			classID, studentID, at.UTC())
		if err != nil {
			return errors.Wrap(err, "inserting enrollment")
		}
		err = repo.get(ctx, tx, &enr,
			"SELECT "+enrollmentColumns+" FROM class_enrollments WHERE class_id = ? AND student_id = ?", classID, studentID)
		return errors.Wrap(err, "getting enrollment")
	})
	if err != nil {
		return school.Enrollment{}, err
	}
	return enr, nil
}

func (repo *schoolRepository) GetEnrollment(ctx context.Context, id int) (school.Enrollment, error) {
	var enr school.Enrollment
	if err := repo.get(ctx, repo.db, &enr, "SELECT "+enrollmentColumns+" FROM class_enrollments WHERE id = ?", id); err != nil {
		return school.Enrollment{}, trapNoRowsErr(err, school.ErrEnrollmentNotFound, "getting enrollment")
	}
	return enr, nil
}

func (repo *schoolRepository) QueryClassStudents(ctx context.Context, classID int) ([]school.EnrolledStudent, error) {
	students := make([]school.EnrolledStudent, 0)
	err := repo.selectAll(ctx, repo.db, &students, `
SELECT s.id, s.student_id, s.first_name, s.last_name, s.email, s.created_at,
       ce.id AS enrollment_id, ce.enrolled_at
FROM students s
JOIN class_enrollments ce ON ce.student_id = s.id
WHERE ce.class_id = ?
ORDER BY s.last_name, s.first_name, ce.id`, classID)
	if err != nil {
		return nil, errors.Wrap(err, "querying class students")
	}
	return students, nil
}

func (repo *schoolRepository) DeleteEnrollment(ctx context.Context, id int) error {
	return repo.inTx(ctx, func(tx *sqlx.Tx) error {
		err := repo.execAll(ctx, tx, []interface{}{id},
			"DELETE FROM student_grades WHERE enrollment_id = ?",
			"DELETE FROM grade_history WHERE enrollment_id = ?",
		)
		if err != nil {
			return errors.Wrap(err, "deleting enrollment records")
		}
		return repo.deleteByID(ctx, tx, "class_enrollments", id, school.ErrEnrollmentNotFound)
	})
}

// Assessments

func (repo *schoolRepository) CreateAssessment(ctx context.Context, a school.Assessment) (school.Assessment, error) {
	found, err := repo.exists(ctx, repo.db, "SELECT 1 FROM classes WHERE id = ?", a.ClassID)
	if err != nil {
		return school.Assessment{}, errors.Wrap(err, "checking class")
	}
	if !found {
		return school.Assessment{}, school.ErrClassNotFound
	}
	id, err := repo.insert(ctx, repo.db, `
INSERT INTO assessments (class_id, name, weight, due_date, description, created_at)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		a.ClassID, a.Name, a.Weight, a.DueDate, a.Description, a.CreatedAt.UTC())
	if err != nil {
		return school.Assessment{}, errors.Wrap(err, "inserting assessment")
	}
	return repo.GetAssessment(ctx, id)
}

func (repo *schoolRepository) QueryClassAssessments(ctx context.Context, classID int) ([]school.Assessment, error) {
	assessments := make([]school.Assessment, 0)
	err := repo.selectAll(ctx, repo.db, &assessments,
		"SELECT "+assessmentColumns+" FROM assessments a WHERE a.class_id = ? ORDER BY "+assessmentsOrder, classID)
	if err != nil {
		return nil, errors.Wrap(err, "querying class assessments")
	}
	return assessments, nil
}

func (repo *schoolRepository) GetAssessment(ctx context.Context, id int) (school.Assessment, error) {
	var a school.Assessment
	if err := repo.get(ctx, repo.db, &a, "SELECT "+assessmentColumns+" FROM assessments a WHERE a.id = ?", id); err != nil {
		return school.Assessment{}, trapNoRowsErr(err, school.ErrAssessmentNotFound, "getting assessment")
	}
	return a, nil
}

func (repo *schoolRepository) UpdateAssessment(ctx context.Context, a school.Assessment) (school.Assessment, error) {
	res, err := repo.db.ExecContext(ctx,
		repo.db.Rebind("UPDATE assessments SET name = ?, weight = ?, due_date = ?, description = ? WHERE id = ?"),
		a.Name, a.Weight, a.DueDate, a.Description, a.ID)
	if err != nil {
		return school.Assessment{}, errors.Wrap(err, "updating assessment")
	}
	if n, err := res.RowsAffected(); err != nil {
		return school.Assessment{}, errors.Wrap(err, "updating assessment")
	} else if n == 0 {
		return school.Assessment{}, school.ErrAssessmentNotFound
	}
	return repo.GetAssessment(ctx, a.ID)
}

func (repo *schoolRepository) DeleteAssessment(ctx context.Context, id int) error {
	return repo.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := repo.execAll(ctx, tx, []interface{}{id}, "DELETE FROM student_grades WHERE assessment_id = ?"); err != nil {
			return errors.Wrap(err, "deleting assessment grades")
		}
		return repo.deleteByID(ctx, tx, "assessments", id, school.ErrAssessmentNotFound)
	})
}
