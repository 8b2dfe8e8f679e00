package school

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/grading"
)

type Teacher struct {
	ID        int         `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Email     null.String `json:"email" db:"email"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"` // UTC
}

type Class struct {
	ID           int           `json:"id" db:"id"`
	TeacherID    int           `json:"teacher_id" db:"teacher_id"`
	ClassName    string        `json:"class_name" db:"class_name"`
	Subject      string        `json:"subject" db:"subject"`
	Year         null.String   `json:"year" db:"year"`
	Semester     null.String   `json:"semester" db:"semester"`
	GradingScale grading.Scale `json:"grading_scale" db:"grading_scale"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"` // UTC

	// read-only
	TeacherName  string      `json:"teacher_name,omitempty" db:"teacher_name"`
	TeacherEmail null.String `json:"teacher_email,omitempty" db:"teacher_email"`
	StudentCount int         `json:"student_count" db:"student_count"`
}

type Student struct {
	ID        int         `json:"id" db:"id"`
	Code      string      `json:"student_id" db:"student_id"` // external ID
	FirstName string      `json:"first_name" db:"first_name"`
	LastName  string      `json:"last_name" db:"last_name"`
	Email     null.String `json:"email" db:"email"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"` // UTC
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

type Enrollment struct {
	ID         int       `json:"id" db:"id"`
	ClassID    int       `json:"class_id" db:"class_id"`
	StudentID  int       `json:"student_id" db:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"` // UTC
}

// EnrolledStudent is a student as seen from a class roster.
type EnrolledStudent struct {
	Student
	EnrollmentID int       `json:"enrollment_id" db:"enrollment_id"`
	EnrolledAt   time.Time `json:"enrolled_at" db:"enrolled_at"` // UTC
}

type Assessment struct {
	ID          int         `json:"id" db:"id"`
	ClassID     int         `json:"class_id" db:"class_id"`
	Name        string      `json:"name" db:"name"`
	Weight      float64     `json:"weight" db:"weight"`
	DueDate     null.String `json:"due_date" db:"due_date"` // YYYY-MM-DD
	Description null.String `json:"description" db:"description"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
}

func optionalString(s string) null.String {
	s = core.CleanString(s)
	return null.NewString(s, s != "")
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	return validate.Struct(nt)
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	ClassName    string `json:"class_name" validate:"required,max=200"`
	Subject      string `json:"subject" validate:"required,max=200"`
	Year         string `json:"year" validate:"omitempty,max=20"`
	Semester     string `json:"semester" validate:"omitempty,max=50"`
	GradingScale string `json:"grading_scale" validate:"omitempty,oneof=letter band"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.ClassName = core.CleanString(nc.ClassName)
	nc.Subject = core.CleanString(nc.Subject)
	nc.Year = core.CleanString(nc.Year)
	nc.Semester = core.CleanString(nc.Semester)
	nc.GradingScale = core.CleanString(nc.GradingScale, true /* lower */)
	return validate.Struct(nc)
}

// NewStudent contains information needed to create (or replace) a Student.
type NewStudent struct {
	Code      string `json:"student_id" validate:"required,max=50,alphanum_"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	ClassID   int    `json:"class_id" validate:"omitempty,min=1"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Code = core.CleanString(ns.Code)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

// NewAssessment contains information needed to create a new Assessment.
type NewAssessment struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Weight      *float64 `json:"weight" validate:"required,percent"`
	DueDate     string   `json:"due_date" validate:"omitempty,date"`
	Description string   `json:"description" validate:"omitempty,max=1000"`
}

func (na *NewAssessment) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.DueDate = core.CleanString(na.DueDate)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

// AssessmentPatch lists the assessment fields to change; nil fields are left untouched.
// A blank due date or description clears it.
type AssessmentPatch struct {
	Name        *string  `json:"name" validate:"omitempty,max=200"`
	Weight      *float64 `json:"weight" validate:"omitempty,percent"`
	DueDate     *string  `json:"due_date"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
}

func (ap AssessmentPatch) IsEmpty() bool {
	return ap.Name == nil && ap.Weight == nil && ap.DueDate == nil && ap.Description == nil
}

func (ap *AssessmentPatch) Validate(validate *validator.Validate) error {
	clean := func(s *string) {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	clean(ap.Name)
	clean(ap.DueDate)
	clean(ap.Description)

	if ap.IsEmpty() {
		return core.NewValidationError(ErrEmptyPatch)
	}
	if ap.Name != nil && *ap.Name == "" {
		return core.NewFieldValidationError("name", "this field cannot be blank")
	}
	// blank clears the due date
	if ap.DueDate != nil && *ap.DueDate != "" {
		if err := validate.Var(*ap.DueDate, "date"); err != nil {
			return core.NewFieldValidationError("due_date", core.DateText)
		}
	}
	return validate.Struct(ap)
}

// Apply returns `a` with the patch applied.
func (ap AssessmentPatch) Apply(a Assessment) Assessment {
	if ap.Name != nil {
		a.Name = *ap.Name
	}
	if ap.Weight != nil {
		a.Weight = *ap.Weight
	}
	if ap.DueDate != nil {
		a.DueDate = optionalString(*ap.DueDate)
	}
	if ap.Description != nil {
		a.Description = optionalString(*ap.Description)
	}
	return a
}
