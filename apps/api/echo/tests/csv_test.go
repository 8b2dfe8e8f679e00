package tests

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/smartgrades/core/gradebook"
	"github.com/trezcool/smartgrades/core/school"
	"github.com/trezcool/smartgrades/tests"
)

func Test_csvApi_import(t *testing.T) {
	testutil.ResetDB(t, db)

	teacher := testutil.CreateTeacher(t, schoolRepo, "Ms Frizzle", "")
	cls := testutil.CreateClass(t, schoolRepo, teacher.ID, "Science", "Science", "")
	quiz := testutil.CreateAssessment(t, schoolRepo, cls.ID, "Quiz 1", 20, "")
	path := fmt.Sprintf("/api/classes/%d/import/students", cls.ID)

	const content = "student_id,first_name,last_name,email,Quiz 1_score\n" +
		"S1,Ann,Lee,ann@school.test,88\n" +
		"S2,Ben,,,\n" +
		"S3,Cid,Moe,,150\n"

	errTests := []struct {
		name     string
		path     string
		filename string
		fields   map[string]string
		wantCode int
		wantData []byte
	}{
		{
			name:     "no file",
			path:     path,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": "no file provided"}),
		},
		{
			name:     "not a CSV",
			path:     path,
			filename: "students.txt",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": "file must be a CSV"}),
		},
		{
			name:     "bad mode",
			path:     path,
			filename: "students.csv",
			fields:   map[string]string{"import_mode": "everything"},
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"import_mode": "must be one of students-only, students-and-grades"}),
		},
		{
			name:     "unknown class",
			path:     "/api/classes/999/import/students",
			filename: "students.csv",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "class not found"}),
		},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newUploadRequest(t, tt.path, tt.filename, content, tt.fields))
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
		})
	}

	t.Run("students only", func(t *testing.T) {
		rec := serve(newUploadRequest(t, path, "students.CSV", content, nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var report gradebook.ImportReport
		unmarshal(t, rec, &report)
		assert.True(t, report.Success)
		assert.NotEmpty(t, report.ID)
		assert.Equal(t, 2, report.ImportedCount)
		assert.Nil(t, report.GradesImported)
		assert.Len(t, report.Errors, 1)

		roster, err := schoolRepo.QueryClassStudents(context.Background(), cls.ID)
		require.NoError(t, err)
		require.Len(t, roster, 2)
	})

	t.Run("students and grades", func(t *testing.T) {
		fields := map[string]string{"import_mode": "Students-And-Grades"}
		rec := serve(newUploadRequest(t, path, "students.csv", content, fields))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var report gradebook.ImportReport
		unmarshal(t, rec, &report)
		assert.Equal(t, 2, report.ImportedCount)
		require.NotNil(t, report.GradesImported)
		assert.Equal(t, 1, *report.GradesImported)
		assert.Equal(t, []string{quiz.Name}, report.AvailableAssessments)
		assert.Len(t, report.Errors, 2)
	})
}

func Test_csvApi_export(t *testing.T) {
	f := setUpGradebook(t)

	t.Run("unknown class", func(t *testing.T) {
		rec := serve(newRequest(http.MethodGet, "/api/classes/999/export"))
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "class not found"})}, rec)
	})

	t.Run("export", func(t *testing.T) {
		rec := serve(newRequest(http.MethodGet, fmt.Sprintf("/api/classes/%d/export", f.class.ID)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="Science_Science_`)

		var want bytes.Buffer
		require.NoError(t, gradebookSvc.ExportClassCSV(context.Background(), f.class.ID, &want))
		assert.Equal(t, want.String(), rec.Body.String())

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "student_id,first_name,last_name,email,Essay_score,Quiz_score,Exam_score,predicted_grade,total_weighted_score", lines[0])
		assert.Equal(t, "S1,Ann,Lee,S1@school.test,80,,,80,32", lines[1])
	})
}

func Test_csvApi_templates(t *testing.T) {
	var studentCSV bytes.Buffer
	require.NoError(t, gradebook.StudentCSVTemplate(&studentCSV))
	math, err := school.GetTemplate("Mathematics")
	require.NoError(t, err)

	runHTTPTests(t, []httpTest{
		{
			name:     "import info",
			method:   http.MethodGet,
			path:     "/api/import/info",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, gradebook.CSVImportInfo()),
		},
		{
			name:     "templates",
			method:   http.MethodGet,
			path:     "/api/templates",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, school.Templates()),
		},
		{
			name:     "template by name",
			method:   http.MethodGet,
			path:     "/api/templates/MATHEMATICS",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, math),
		},
		{
			name:     "unknown template",
			method:   http.MethodGet,
			path:     "/api/templates/astrology",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "template not found"}),
		},
	})

	t.Run("student CSV template", func(t *testing.T) {
		rec := serve(newRequest(http.MethodGet, "/api/templates/student-csv"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "student_import_template.csv")
		assert.Equal(t, studentCSV.String(), rec.Body.String())
	})
}

func Test_health(t *testing.T) {
	rec := serve(newRequest(http.MethodGet, "/api/health"))
	require.Equal(t, http.StatusOK, rec.Code)

	var data map[string]interface{}
	unmarshal(t, rec, &data)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "test", data["version"])
	assert.NotEmpty(t, data["timestamp"])
}
