package school_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/grading"
	"github.com/trezcool/smartgrades/core/school"
	"github.com/trezcool/smartgrades/storage/database/inmem"
	"github.com/trezcool/smartgrades/tests"
)

func newService(t *testing.T) (*school.Service, school.Repository) {
	repo := inmemdb.NewSchoolRepository(testutil.OpenDB())
	return school.NewService(repo), repo
}

func floatPtr(f float64) *float64 { return &f }

func TestService_CreateTeacher(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	teacher, err := svc.CreateTeacher(ctx, school.NewTeacher{Name: "Ms Frizzle", Email: "frizzle@school.edu"})
	require.NoError(t, err)
	assert.NotZero(t, teacher.ID)
	assert.Equal(t, "frizzle@school.edu", teacher.Email.String)
	assert.False(t, teacher.CreatedAt.IsZero())

	_, err = svc.CreateTeacher(ctx, school.NewTeacher{Name: "Impostor", Email: "frizzle@school.edu"})
	assert.True(t, core.IsValidationError(err))

	noEmail, err := svc.CreateTeacher(ctx, school.NewTeacher{Name: "Mr Keating"})
	require.NoError(t, err)
	assert.False(t, noEmail.Email.Valid)

	// teachers without email never collide
	_, err = svc.CreateTeacher(ctx, school.NewTeacher{Name: "Mr Chips"})
	assert.NoError(t, err)
}

func TestService_QueryTeachers(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	bob := testutil.CreateTeacher(t, repo, "Bob", "bob@school.edu")
	alice := testutil.CreateTeacher(t, repo, "Alice", "zed@school.edu")
	carl := testutil.CreateTeacher(t, repo, "Carl", "")

	tests := []struct {
		name     string
		ordering []core.DBOrdering
		want     []school.Teacher
	}{
		{name: "default", want: []school.Teacher{alice, bob, carl}},
		{name: "-name", ordering: []core.DBOrdering{{Field: "name"}}, want: []school.Teacher{carl, bob, alice}},
		{name: "email", ordering: []core.DBOrdering{{Field: "email", Ascending: true}}, want: []school.Teacher{carl, bob, alice}},
		{name: "unknown field is ignored", ordering: []core.DBOrdering{{Field: "password"}}, want: []school.Teacher{alice, bob, carl}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.QueryTeachers(ctx, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Classes(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	teacher := testutil.CreateTeacher(t, repo, "Ms Frizzle", "frizzle@school.edu")

	_, err := svc.CreateClass(ctx, 999, school.NewClass{ClassName: "Science", Subject: "Science"})
	assert.Equal(t, school.ErrTeacherNotFound, err)

	cls, err := svc.CreateClass(ctx, teacher.ID, school.NewClass{ClassName: "Year 7 Science", Subject: "Science"})
	require.NoError(t, err)
	assert.Equal(t, grading.ScaleLetter, cls.GradingScale)
	assert.Equal(t, "Ms Frizzle", cls.TeacherName)

	hsc, err := svc.CreateClass(ctx, teacher.ID, school.NewClass{ClassName: "HSC Physics", Subject: "Physics", GradingScale: "band"})
	require.NoError(t, err)
	assert.Equal(t, grading.ScaleBand, hsc.GradingScale)

	classes, err := svc.QueryTeacherClasses(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "HSC Physics", classes[0].ClassName)

	_, err = svc.QueryTeacherClasses(ctx, 999)
	assert.True(t, school.IsNotFound(err))

	require.NoError(t, svc.DeleteTeacher(ctx, teacher.ID))
	_, err = svc.GetClass(ctx, cls.ID)
	assert.Equal(t, school.ErrClassNotFound, err)
	assert.Equal(t, school.ErrTeacherNotFound, svc.DeleteTeacher(ctx, teacher.ID))
}

func TestService_Students(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	teacher := testutil.CreateTeacher(t, repo, "Ms Frizzle", "")
	cls := testutil.CreateClass(t, repo, teacher.ID, "Science", "Science", "")

	st, enr, err := svc.AddStudent(ctx, school.NewStudent{Code: "STU001", FirstName: "Arnold", LastName: "Perlstein", ClassID: cls.ID})
	require.NoError(t, err)
	require.NotNil(t, enr)
	assert.Equal(t, cls.ID, enr.ClassID)
	assert.Equal(t, st.ID, enr.StudentID)

	// same code: names replaced, identity and enrollment kept
	st2, enr2, err := svc.AddStudent(ctx, school.NewStudent{Code: "STU001", FirstName: "Arnie", LastName: "Perlstein", ClassID: cls.ID})
	require.NoError(t, err)
	assert.Equal(t, st.ID, st2.ID)
	assert.Equal(t, "Arnie", st2.FirstName)
	assert.Equal(t, enr.ID, enr2.ID)

	loner, noEnr, err := svc.AddStudent(ctx, school.NewStudent{Code: "STU002", FirstName: "Wanda", LastName: "Li"})
	require.NoError(t, err)
	assert.Nil(t, noEnr)

	_, _, err = svc.AddStudent(ctx, school.NewStudent{Code: "STU003", FirstName: "Tim", LastName: "Jamal", ClassID: 999})
	assert.Equal(t, school.ErrClassNotFound, err)

	enr3, err := svc.Enroll(ctx, cls.ID, " STU002 ")
	require.NoError(t, err)
	assert.Equal(t, loner.ID, enr3.StudentID)

	_, err = svc.Enroll(ctx, cls.ID, "NOPE")
	assert.Equal(t, school.ErrStudentNotFound, err)

	roster, err := svc.QueryClassStudents(ctx, cls.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Li", roster[0].LastName)
	assert.Equal(t, "Perlstein", roster[1].LastName)

	got, err := svc.GetClass(ctx, cls.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.StudentCount)

	require.NoError(t, svc.DeleteEnrollment(ctx, enr3.ID))
	_, err = svc.GetEnrollment(ctx, enr3.ID)
	assert.Equal(t, school.ErrEnrollmentNotFound, err)
}

func TestService_Assessments(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	teacher := testutil.CreateTeacher(t, repo, "Ms Frizzle", "")
	cls := testutil.CreateClass(t, repo, teacher.ID, "Science", "Science", "")

	exam, err := svc.CreateAssessment(ctx, cls.ID, school.NewAssessment{Name: "Exam", Weight: floatPtr(50)})
	require.NoError(t, err)
	quiz, err := svc.CreateAssessment(ctx, cls.ID, school.NewAssessment{Name: "Quiz", Weight: floatPtr(10), DueDate: "2024-03-01"})
	require.NoError(t, err)
	essay, err := svc.CreateAssessment(ctx, cls.ID, school.NewAssessment{Name: "Essay", Weight: floatPtr(40), DueDate: "2024-02-01"})
	require.NoError(t, err)

	_, err = svc.CreateAssessment(ctx, 999, school.NewAssessment{Name: "Lost", Weight: floatPtr(10)})
	assert.Equal(t, school.ErrClassNotFound, err)

	assessments, err := svc.QueryClassAssessments(ctx, cls.ID)
	require.NoError(t, err)
	assert.Equal(t, []school.Assessment{essay, quiz, exam}, assessments)

	name := "Final Exam"
	updated, err := svc.UpdateAssessment(ctx, exam.ID, school.AssessmentPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Final Exam", updated.Name)
	assert.Equal(t, 50.0, updated.Weight)

	_, err = svc.UpdateAssessment(ctx, exam.ID, school.AssessmentPatch{})
	assert.True(t, core.IsValidationError(err))

	_, err = svc.UpdateAssessment(ctx, 999, school.AssessmentPatch{Name: &name})
	assert.Equal(t, school.ErrAssessmentNotFound, err)

	require.NoError(t, svc.DeleteAssessment(ctx, quiz.ID))
	_, err = svc.GetAssessment(ctx, quiz.ID)
	assert.Equal(t, school.ErrAssessmentNotFound, err)
}

func TestService_ApplyTemplate(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	teacher := testutil.CreateTeacher(t, repo, "Ms Frizzle", "")
	cls := testutil.CreateClass(t, repo, teacher.ID, "Maths", "Mathematics", "")

	created, err := svc.ApplyTemplate(ctx, cls.ID, "mathematics")
	require.NoError(t, err)
	tmpl, _ := school.GetTemplate("Mathematics")
	require.Len(t, created, len(tmpl.Assessments))
	for i, a := range created {
		assert.Equal(t, tmpl.Assessments[i].Name, a.Name)
		assert.Equal(t, tmpl.Assessments[i].Weight, a.Weight)
		assert.Equal(t, cls.ID, a.ClassID)
	}

	_, err = svc.ApplyTemplate(ctx, cls.ID, "Astrology")
	assert.Equal(t, school.ErrTemplateNotFound, err)

	_, err = svc.ApplyTemplate(ctx, 999, "Mathematics")
	assert.Equal(t, school.ErrClassNotFound, err)
}
