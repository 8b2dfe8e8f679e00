// Package school manages the registry the gradebook runs on: teachers, their classes,
// students, enrollments and assessments.
package school

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/grading"
)

// NotFoundError is returned when a record does not exist.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

var (
	// errors
	ErrTeacherNotFound    = &NotFoundError{Entity: "teacher"}
	ErrClassNotFound      = &NotFoundError{Entity: "class"}
	ErrStudentNotFound    = &NotFoundError{Entity: "student"}
	ErrEnrollmentNotFound = &NotFoundError{Entity: "enrollment"}
	ErrAssessmentNotFound = &NotFoundError{Entity: "assessment"}
	ErrTemplateNotFound   = &NotFoundError{Entity: "template"}

	ErrEmailExists = errors.New("a teacher with this email already exists")
	ErrEmptyPatch  = errors.New("no field to update")
)

// IsNotFound reports whether the cause of `err` is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

var nowFunc = func() time.Time { return time.Now().UTC() } // mockable

type (
	// Repository persists the registry. Deletes cascade to the dependent records.
	Repository interface {
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		QueryTeachers(ctx context.Context, ordering []core.DBOrdering) ([]Teacher, error)
		GetTeacher(ctx context.Context, id int) (Teacher, error)
		DeleteTeacher(ctx context.Context, id int) error

		CreateClass(ctx context.Context, c Class) (Class, error)
		QueryTeacherClasses(ctx context.Context, teacherID int) ([]Class, error)
		GetClass(ctx context.Context, id int) (Class, error)
		DeleteClass(ctx context.Context, id int) error

		// UpsertStudent creates the student or replaces the names and email of the
		// student with the same code.
		UpsertStudent(ctx context.Context, s Student) (Student, error)
		GetStudentByCode(ctx context.Context, code string) (Student, error)

		// Enroll returns the existing enrollment if the student is already enrolled.
		Enroll(ctx context.Context, classID, studentID int, at time.Time) (Enrollment, error)
		GetEnrollment(ctx context.Context, id int) (Enrollment, error)
		QueryClassStudents(ctx context.Context, classID int) ([]EnrolledStudent, error)
		DeleteEnrollment(ctx context.Context, id int) error

		CreateAssessment(ctx context.Context, a Assessment) (Assessment, error)
		// QueryClassAssessments returns assessments by due date (undated last), then creation.
		QueryClassAssessments(ctx context.Context, classID int) ([]Assessment, error)
		GetAssessment(ctx context.Context, id int) (Assessment, error)
		UpdateAssessment(ctx context.Context, a Assessment) (Assessment, error)
		DeleteAssessment(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Teachers

func (svc *Service) CreateTeacher(ctx context.Context, nt NewTeacher) (Teacher, error) {
	t, err := svc.repo.CreateTeacher(ctx, Teacher{
		Name:      nt.Name,
		Email:     optionalString(nt.Email),
		CreatedAt: nowFunc(),
	})
	if errors.Cause(err) == ErrEmailExists {
		return Teacher{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
	}
	return t, err
}

func (svc *Service) QueryTeachers(ctx context.Context, ordering []core.DBOrdering) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx, core.CleanOrderings(ordering, "name", "email", "created_at", "id"))
}

func (svc *Service) GetTeacher(ctx context.Context, id int) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, id)
}

func (svc *Service) DeleteTeacher(ctx context.Context, id int) error {
	return svc.repo.DeleteTeacher(ctx, id)
}

// Classes

func (svc *Service) CreateClass(ctx context.Context, teacherID int, nc NewClass) (Class, error) {
	teacher, err := svc.repo.GetTeacher(ctx, teacherID)
	if err != nil {
		return Class{}, err
	}
	scale := grading.Scale(nc.GradingScale)
	if !scale.Valid() {
		scale = grading.ScaleLetter
	}
	cls, err := svc.repo.CreateClass(ctx, Class{
		TeacherID:    teacher.ID,
		ClassName:    nc.ClassName,
		Subject:      nc.Subject,
		Year:         optionalString(nc.Year),
		Semester:     optionalString(nc.Semester),
		GradingScale: scale,
		CreatedAt:    nowFunc(),
	})
	if err != nil {
		return Class{}, errors.Wrap(err, "creating class")
	}
	cls.TeacherName = teacher.Name
	cls.TeacherEmail = teacher.Email
	return cls, nil
}

func (svc *Service) QueryTeacherClasses(ctx context.Context, teacherID int) ([]Class, error) {
	if _, err := svc.repo.GetTeacher(ctx, teacherID); err != nil {
		return nil, err
	}
	return svc.repo.QueryTeacherClasses(ctx, teacherID)
}

func (svc *Service) GetClass(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

func (svc *Service) DeleteClass(ctx context.Context, id int) error {
	return svc.repo.DeleteClass(ctx, id)
}

// Students & enrollments

// AddStudent creates or replaces the student, enrolling them when ns.ClassID is set.
func (svc *Service) AddStudent(ctx context.Context, ns NewStudent) (Student, *Enrollment, error) {
	if ns.ClassID != 0 {
		if _, err := svc.repo.GetClass(ctx, ns.ClassID); err != nil {
			return Student{}, nil, err
		}
	}
	st, err := svc.repo.UpsertStudent(ctx, Student{
		Code:      ns.Code,
		FirstName: ns.FirstName,
		LastName:  ns.LastName,
		Email:     optionalString(ns.Email),
		CreatedAt: nowFunc(),
	})
	if err != nil {
		return Student{}, nil, errors.Wrap(err, "upserting student")
	}
	if ns.ClassID == 0 {
		return st, nil, nil
	}
	enr, err := svc.repo.Enroll(ctx, ns.ClassID, st.ID, nowFunc())
	if err != nil {
		return Student{}, nil, errors.Wrap(err, "enrolling student")
	}
	return st, &enr, nil
}

// Enroll enrolls the student with the given code in a class.
func (svc *Service) Enroll(ctx context.Context, classID int, code string) (Enrollment, error) {
	if _, err := svc.repo.GetClass(ctx, classID); err != nil {
		return Enrollment{}, err
	}
	st, err := svc.repo.GetStudentByCode(ctx, core.CleanString(code))
	if err != nil {
		return Enrollment{}, err
	}
	return svc.repo.Enroll(ctx, classID, st.ID, nowFunc())
}

func (svc *Service) GetEnrollment(ctx context.Context, id int) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, id)
}

func (svc *Service) QueryClassStudents(ctx context.Context, classID int) ([]EnrolledStudent, error) {
	if _, err := svc.repo.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	return svc.repo.QueryClassStudents(ctx, classID)
}

func (svc *Service) DeleteEnrollment(ctx context.Context, id int) error {
	return svc.repo.DeleteEnrollment(ctx, id)
}

// Assessments

func (svc *Service) CreateAssessment(ctx context.Context, classID int, na NewAssessment) (Assessment, error) {
	if _, err := svc.repo.GetClass(ctx, classID); err != nil {
		return Assessment{}, err
	}
	var weight float64
	if na.Weight != nil {
		weight = grading.ClampPercent(*na.Weight)
	}
	return svc.repo.CreateAssessment(ctx, Assessment{
		ClassID:     classID,
		Name:        na.Name,
		Weight:      weight,
		DueDate:     optionalString(na.DueDate),
		Description: optionalString(na.Description),
		CreatedAt:   nowFunc(),
	})
}

func (svc *Service) QueryClassAssessments(ctx context.Context, classID int) ([]Assessment, error) {
	if _, err := svc.repo.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	return svc.repo.QueryClassAssessments(ctx, classID)
}

func (svc *Service) GetAssessment(ctx context.Context, id int) (Assessment, error) {
	return svc.repo.GetAssessment(ctx, id)
}

func (svc *Service) UpdateAssessment(ctx context.Context, id int, patch AssessmentPatch) (Assessment, error) {
	if patch.IsEmpty() {
		return Assessment{}, core.NewValidationError(ErrEmptyPatch)
	}
	a, err := svc.repo.GetAssessment(ctx, id)
	if err != nil {
		return Assessment{}, err
	}
	a = patch.Apply(a)
	a.Weight = grading.ClampPercent(a.Weight)
	return svc.repo.UpdateAssessment(ctx, a)
}

func (svc *Service) DeleteAssessment(ctx context.Context, id int) error {
	return svc.repo.DeleteAssessment(ctx, id)
}

// ApplyTemplate creates the assessments of a template in a class.
func (svc *Service) ApplyTemplate(ctx context.Context, classID int, name string) ([]Assessment, error) {
	tmpl, err := GetTemplate(name)
	if err != nil {
		return nil, err
	}
	if _, err := svc.repo.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	created := make([]Assessment, 0, len(tmpl.Assessments))
	for _, ta := range tmpl.Assessments {
		a, err := svc.repo.CreateAssessment(ctx, Assessment{
			ClassID:     classID,
			Name:        ta.Name,
			Weight:      ta.Weight,
			Description: null.NewString(ta.Description, ta.Description != ""),
			CreatedAt:   nowFunc(),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "creating assessment %q", ta.Name)
		}
		created = append(created, a)
	}
	return created, nil
}
