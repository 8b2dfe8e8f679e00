package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/smartgrades/core/school"
	"github.com/trezcool/smartgrades/tests"
)

func Test_schoolApi_teachers(t *testing.T) {
	testutil.ResetDB(t, db)

	frizzle := testutil.CreateTeacher(t, schoolRepo, "Ms Frizzle", "frizzle@school.test")
	anderson := testutil.CreateTeacher(t, schoolRepo, "Mr Anderson", "")
	doomed := testutil.CreateTeacher(t, schoolRepo, "Zed", "")

	runHTTPTests(t, []httpTest{
		{
			name:     "list",
			method:   http.MethodGet,
			path:     "/api/teachers",
			wantCode: http.StatusOK,
			wantData: marchallList(t, anderson, frizzle, doomed),
		},
		{
			name:     "list ordered by name desc",
			method:   http.MethodGet,
			path:     "/api/teachers?ordering=-name",
			wantCode: http.StatusOK,
			wantData: marchallList(t, doomed, frizzle, anderson),
		},
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/teachers/%d", frizzle.ID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, frizzle),
		},
		{
			name:     "retrieve unknown",
			method:   http.MethodGet,
			path:     "/api/teachers/999",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "teacher not found"}),
		},
		{
			name:     "retrieve malformed id",
			method:   http.MethodGet,
			path:     "/api/teachers/abc",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "create invalid",
			method:   http.MethodPost,
			path:     "/api/teachers",
			body:     []byte(`{"name":"  ","email":"nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":  "this field is required",
				"email": "email must be a valid email address",
			}),
		},
		{
			name:     "create with taken email",
			method:   http.MethodPost,
			path:     "/api/teachers",
			body:     []byte(`{"name":"Copycat","email":"FRIZZLE@school.test"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": school.ErrEmailExists.Error()}),
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/teachers/%d", doomed.ID),
			wantCode: http.StatusNoContent,
		},
		{
			name:     "delete again",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/teachers/%d", doomed.ID),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "teacher not found"}),
		},
	})

	t.Run("create", func(t *testing.T) {
		rec := serve(newRequest(http.MethodPost, "/api/teachers", []byte(`{"name":" Mrs Puff ","email":"Puff@School.test"}`)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var teacher school.Teacher
		unmarshal(t, rec, &teacher)
		assert.NotZero(t, teacher.ID)
		assert.Equal(t, "Mrs Puff", teacher.Name)
		assert.Equal(t, "puff@school.test", teacher.Email.String)
		assert.False(t, teacher.CreatedAt.IsZero())
	})
}

func Test_schoolApi_classes(t *testing.T) {
	testutil.ResetDB(t, db)
	ctx := context.Background()

	teacher := testutil.CreateTeacher(t, schoolRepo, "Ms Frizzle", "")
	science := testutil.CreateClass(t, schoolRepo, teacher.ID, "Science", "Science", "")
	testutil.EnrollNew(t, schoolRepo, science.ID, "S1", "Ann", "Lee")
	science, _ = schoolRepo.GetClass(ctx, science.ID)
	doomed := testutil.CreateClass(t, schoolRepo, teacher.ID, "Zoology", "Science", "")

	runHTTPTests(t, []httpTest{
		{
			name:     "list teacher classes",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/teachers/%d/classes", teacher.ID),
			wantCode: http.StatusOK,
			wantData: marchallList(t, science, doomed),
		},
		{
			name:     "list classes of unknown teacher",
			method:   http.MethodGet,
			path:     "/api/teachers/999/classes",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "teacher not found"}),
		},
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/classes/%d", science.ID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, science),
		},
		{
			name:     "create invalid",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/api/teachers/%d/classes", teacher.ID),
			body:     []byte(`{"class_name":"Algebra","subject":"Math","grading_scale":"curve"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"grading_scale": "grading_scale must be one of [letter band]"}),
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/classes/%d", doomed.ID),
			wantCode: http.StatusNoContent,
		},
		{
			name:     "retrieve deleted",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/classes/%d", doomed.ID),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "class not found"}),
		},
	})

	t.Run("create", func(t *testing.T) {
		body := []byte(`{"class_name":"Algebra","subject":"Math","year":"2024","grading_scale":"BAND"}`)
		rec := serve(newRequest(http.MethodPost, fmt.Sprintf("/api/teachers/%d/classes", teacher.ID), body))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var cls school.Class
		unmarshal(t, rec, &cls)
		assert.Equal(t, "Algebra", cls.ClassName)
		assert.Equal(t, "band", string(cls.GradingScale))
		assert.Equal(t, "2024", cls.Year.String)
		assert.Equal(t, "Ms Frizzle", cls.TeacherName)
	})
}

func Test_schoolApi_students(t *testing.T) {
	testutil.ResetDB(t, db)
	ctx := context.Background()

	teacher := testutil.CreateTeacher(t, schoolRepo, "Ms Frizzle", "")
	cls := testutil.CreateClass(t, schoolRepo, teacher.ID, "Science", "Science", "")
	testutil.CreateStudent(t, schoolRepo, "S2", "Ben", "Young")

	t.Run("create and enroll", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"student_id":"S1","first_name":"Ann","last_name":"Lee","class_id":%d}`, cls.ID))
		rec := serve(newRequest(http.MethodPost, "/api/students", body))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Student    school.Student     `json:"student"`
			Enrollment *school.Enrollment `json:"enrollment"`
		}
		unmarshal(t, rec, &resp)
		assert.Equal(t, "S1", resp.Student.Code)
		require.NotNil(t, resp.Enrollment)
		assert.Equal(t, cls.ID, resp.Enrollment.ClassID)

		// enrolling twice keeps the enrollment
		rec = serve(newRequest(http.MethodPost, fmt.Sprintf("/api/classes/%d/students/S1/enroll", cls.ID)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var enr school.Enrollment
		unmarshal(t, rec, &enr)
		assert.Equal(t, resp.Enrollment.ID, enr.ID)
	})

	t.Run("create invalid", func(t *testing.T) {
		rec := serve(newRequest(http.MethodPost, "/api/students", []byte(`{"student_id":"S 1","first_name":"Ann"}`)))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var fields map[string]string
		unmarshal(t, rec, &fields)
		assert.Contains(t, fields, "student_id")
		assert.Equal(t, "this field is required", fields["last_name"])
	})

	t.Run("enroll existing student", func(t *testing.T) {
		rec := serve(newRequest(http.MethodPost, fmt.Sprintf("/api/classes/%d/students/S2/enroll", cls.ID)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	roster, err := gradebookSvc.ClassRoster(ctx, cls.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	runHTTPTests(t, []httpTest{
		{
			name:     "roster",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/classes/%d/students", cls.ID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, roster),
		},
		{
			name:     "enroll unknown student",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/api/classes/%d/students/nobody/enroll", cls.ID),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
		{
			name:     "remove enrollment",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/enrollments/%d", roster[0].EnrollmentID),
			wantCode: http.StatusNoContent,
		},
		{
			name:     "remove enrollment again",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/enrollments/%d", roster[0].EnrollmentID),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "enrollment not found"}),
		},
	})
}

func Test_schoolApi_assessments(t *testing.T) {
	testutil.ResetDB(t, db)

	teacher := testutil.CreateTeacher(t, schoolRepo, "Ms Frizzle", "")
	cls := testutil.CreateClass(t, schoolRepo, teacher.ID, "Science", "Science", "")
	exam := testutil.CreateAssessment(t, schoolRepo, cls.ID, "Exam", 50, "")
	quiz := testutil.CreateAssessment(t, schoolRepo, cls.ID, "Quiz", 10, "2024-03-01")

	runHTTPTests(t, []httpTest{
		{
			name:     "list",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/classes/%d/assessments", cls.ID),
			wantCode: http.StatusOK,
			wantData: marchallList(t, quiz, exam),
		},
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/assessments/%d", quiz.ID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, quiz),
		},
		{
			name:     "create invalid",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/api/classes/%d/assessments", cls.ID),
			body:     []byte(`{"name":"Essay","weight":120,"due_date":"March 1st"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"weight":   "must be a number between 0 and 100",
				"due_date": "must be a date formatted as YYYY-MM-DD",
			}),
		},
		{
			name:     "create in unknown class",
			method:   http.MethodPost,
			path:     "/api/classes/999/assessments",
			body:     []byte(`{"name":"Essay","weight":40}`),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "class not found"}),
		},
		{
			name:     "empty patch",
			method:   http.MethodPut,
			path:     fmt.Sprintf("/api/assessments/%d", quiz.ID),
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: school.ErrEmptyPatch.Error()}),
		},
		{
			name:     "patch with invalid due date",
			method:   http.MethodPut,
			path:     fmt.Sprintf("/api/assessments/%d", quiz.ID),
			body:     []byte(`{"due_date":"March 1st"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"due_date": "must be a date formatted as YYYY-MM-DD"}),
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/assessments/%d", exam.ID),
			wantCode: http.StatusNoContent,
		},
		{
			name:     "retrieve deleted",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/api/assessments/%d", exam.ID),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "assessment not found"}),
		},
	})

	t.Run("create", func(t *testing.T) {
		body := []byte(`{"name":"Essay","weight":40,"due_date":"2024-02-01","description":"Written essay"}`)
		rec := serve(newRequest(http.MethodPost, fmt.Sprintf("/api/classes/%d/assessments", cls.ID), body))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var a school.Assessment
		unmarshal(t, rec, &a)
		assert.Equal(t, "Essay", a.Name)
		assert.Equal(t, 40.0, a.Weight)
		assert.Equal(t, "2024-02-01", a.DueDate.String)
		assert.Equal(t, "Written essay", a.Description.String)
	})

	t.Run("patch", func(t *testing.T) {
		rec := serve(newRequest(http.MethodPut, fmt.Sprintf("/api/assessments/%d", quiz.ID), []byte(`{"weight":15,"due_date":""}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var a school.Assessment
		unmarshal(t, rec, &a)
		assert.Equal(t, "Quiz", a.Name)
		assert.Equal(t, 15.0, a.Weight)
		assert.False(t, a.DueDate.Valid)
	})

	t.Run("apply template", func(t *testing.T) {
		tmpl, err := school.GetTemplate("mathematics")
		require.NoError(t, err)

		rec := serve(newRequest(http.MethodPost, fmt.Sprintf("/api/classes/%d/templates/mathematics", cls.ID)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created []school.Assessment
		unmarshal(t, rec, &created)
		require.Len(t, created, len(tmpl.Assessments))
		for i, a := range created {
			assert.Equal(t, tmpl.Assessments[i].Name, a.Name)
			assert.Equal(t, cls.ID, a.ClassID)
		}

		rec = serve(newRequest(http.MethodPost, fmt.Sprintf("/api/classes/%d/templates/astrology", cls.ID)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
