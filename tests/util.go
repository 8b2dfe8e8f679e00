package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/gradebook"
	"github.com/trezcool/smartgrades/core/grading"
	"github.com/trezcool/smartgrades/core/school"
	"github.com/trezcool/smartgrades/storage/database/inmem"
)

// OpenDB returns an empty in-memory database.
func OpenDB() *inmemdb.DB {
	db, err := inmemdb.Open()
	if err != nil {
		panic(err)
	}
	return db
}

func ResetDB(t *testing.T, db *inmemdb.DB) {
	t.Helper()
	db.Flush()
}

func optional(s string) null.String {
	return null.NewString(s, s != "")
}

func timestamp(at []time.Time) time.Time {
	if len(at) > 0 {
		return at[0].UTC()
	}
	return time.Now().UTC()
}

func CreateTeacher(t *testing.T, repo school.Repository, name, email string, createdAt ...time.Time) school.Teacher {
	t.Helper()
	teacher, err := repo.CreateTeacher(context.Background(), school.Teacher{
		Name:      name,
		Email:     optional(email),
		CreatedAt: timestamp(createdAt),
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return teacher
}

func CreateClass(t *testing.T, repo school.Repository, teacherID int, name, subject string, scale grading.Scale) school.Class {
	t.Helper()
	if scale == "" {
		scale = grading.ScaleLetter
	}
	cls, err := repo.CreateClass(context.Background(), school.Class{
		TeacherID:    teacherID,
		ClassName:    name,
		Subject:      subject,
		GradingScale: scale,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateStudent(t *testing.T, repo school.Repository, code, firstName, lastName string) school.Student {
	t.Helper()
	st, err := repo.UpsertStudent(context.Background(), school.Student{
		Code:      code,
		FirstName: firstName,
		LastName:  lastName,
		Email:     optional(fmt.Sprintf("%s@school.test", code)),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

func Enroll(t *testing.T, repo school.Repository, classID, studentID int) school.Enrollment {
	t.Helper()
	enr, err := repo.Enroll(context.Background(), classID, studentID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return enr
}

// EnrollNew creates a student and enrolls them in a class.
func EnrollNew(t *testing.T, repo school.Repository, classID int, code, firstName, lastName string) school.Enrollment {
	t.Helper()
	st := CreateStudent(t, repo, code, firstName, lastName)
	return Enroll(t, repo, classID, st.ID)
}

// CreateAssessment creates an assessment of a class; dueDate (YYYY-MM-DD) may be blank.
func CreateAssessment(t *testing.T, repo school.Repository, classID int, name string, weight float64, dueDate string, createdAt ...time.Time) school.Assessment {
	t.Helper()
	a, err := repo.CreateAssessment(context.Background(), school.Assessment{
		ClassID:   classID,
		Name:      name,
		Weight:    weight,
		DueDate:   optional(dueDate),
		CreatedAt: timestamp(createdAt),
	})
	if err != nil {
		t.Fatalf("CreateAssessment() failed: %v", err)
	}
	return a
}

func SetGrade(t *testing.T, repo gradebook.Repository, enrollmentID, assessmentID int, score float64) gradebook.GradeEntry {
	t.Helper()
	g, err := repo.UpsertGrade(context.Background(), gradebook.GradeEntry{
		EnrollmentID: enrollmentID,
		AssessmentID: assessmentID,
		Score:        null.Float64From(score),
		GradedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("SetGrade() failed: %v", err)
	}
	return g
}

type testLogger struct {
	t *testing.T
}

// NewLogger returns a core.Logger writing to the test log.
func NewLogger(t *testing.T) core.Logger {
	return &testLogger{t: t}
}

func (l *testLogger) log(level, msg string, args ...interface{}) {
	l.t.Helper()
	l.t.Logf("[%s] %s %v", level, msg, args)
}

func (l *testLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args...) }
func (l *testLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args...) }
func (l *testLogger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args...) }
func (l *testLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args...) }
func (l *testLogger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args...) }
