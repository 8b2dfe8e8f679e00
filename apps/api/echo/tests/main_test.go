package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	. "github.com/trezcool/smartgrades/apps/api/echo"
	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/gradebook"
	"github.com/trezcool/smartgrades/core/school"
	"github.com/trezcool/smartgrades/services/metrics"
	"github.com/trezcool/smartgrades/storage/database/inmem"
	"github.com/trezcool/smartgrades/tests"
)

var (
	db           *inmemdb.DB
	app          Server
	schoolRepo   school.Repository
	gradeRepo    gradebook.Repository
	gradebookSvc *gradebook.Service
)

func TestMain(m *testing.M) {
	// set up DB & repos
	db = testutil.OpenDB()
	schoolRepo = inmemdb.NewSchoolRepository(db)
	gradeRepo = inmemdb.NewGradebookRepository(db)

	registry := prometheus.NewRegistry()
	metrics, err := metricsvc.NewPrometheusMetrics(registry)
	if err != nil {
		panic(err)
	}

	// set up services
	schoolSvc := school.NewService(schoolRepo)
	gradebookSvc = gradebook.NewService(schoolRepo, gradeRepo, core.NopLogger, metrics)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// set up server
	app = NewServer(
		"",  /* addr */
		nil, /* shutdown */
		&Deps{
			Conf: &core.Config{
				Build:    "test",
				TestMode: true,
				Grading: core.GradingConfig{
					DefaultTargetGrade:    70,
					DefaultPredictionMode: "ensemble",
				},
			},
			Logger:       core.NopLogger,
			SchoolSvc:    schoolSvc,
			GradebookSvc: gradebookSvc,
			Validate:     validate,
			Translator:   translator,
			Gatherer:     registry,
		},
	)

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

// newUploadRequest builds a multipart request carrying `content` as the `file` field.
func newUploadRequest(t *testing.T, path, filename, content string, fields map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField() failed: %v", err)
		}
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile() failed: %v", err)
		}
		if _, err = part.Write([]byte(content)); err != nil {
			t.Fatalf("part.Write() failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart.Close() failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, httptest.NewRecorder()
}

func serve(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	app.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("json.Unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		if rec.Body.Len() != 0 {
			t.Errorf("failed! data = %v; want no content", rec.Body.String())
		}
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			checkCodeAndData(t, tt, serve(req, rec))
		})
	}
}
