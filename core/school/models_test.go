package school

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/smartgrades/core"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	return validate
}

func strPtr(s string) *string      { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestNewAssessment_Validate(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name    string
		input   NewAssessment
		wantErr bool
	}{
		{name: "valid", input: NewAssessment{Name: " Quiz 1 ", Weight: floatPtr(10), DueDate: "2024-03-01"}},
		{name: "zero weight", input: NewAssessment{Name: "Practice", Weight: floatPtr(0)}},
		{name: "missing name", input: NewAssessment{Name: "  ", Weight: floatPtr(10)}, wantErr: true},
		{name: "missing weight", input: NewAssessment{Name: "Quiz"}, wantErr: true},
		{name: "weight above 100", input: NewAssessment{Name: "Quiz", Weight: floatPtr(100.5)}, wantErr: true},
		{name: "negative weight", input: NewAssessment{Name: "Quiz", Weight: floatPtr(-1)}, wantErr: true},
		{name: "bad due date", input: NewAssessment{Name: "Quiz", Weight: floatPtr(10), DueDate: "01/03/2024"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssessmentPatch(t *testing.T) {
	validate := newValidator()

	t.Run("empty", func(t *testing.T) {
		patch := AssessmentPatch{}
		err := patch.Validate(validate)
		assert.True(t, core.IsValidationError(err))
	})
	t.Run("blank name", func(t *testing.T) {
		patch := AssessmentPatch{Name: strPtr(" ")}
		err := patch.Validate(validate)
		if assert.True(t, core.IsValidationError(err)) {
			assert.Equal(t, "name", err.(*core.ValidationError).Fields[0].Field)
		}
	})
	t.Run("invalid weight", func(t *testing.T) {
		patch := AssessmentPatch{Weight: floatPtr(120)}
		assert.Error(t, patch.Validate(validate))
	})
	t.Run("invalid due date", func(t *testing.T) {
		patch := AssessmentPatch{DueDate: strPtr("March 1st")}
		err := patch.Validate(validate)
		if assert.True(t, core.IsValidationError(err)) {
			assert.Equal(t, []core.FieldError{{Field: "due_date", Error: core.DateText}}, err.(*core.ValidationError).Fields)
		}
	})
	t.Run("due date", func(t *testing.T) {
		patch := AssessmentPatch{DueDate: strPtr(" 2024-03-01 ")}
		if assert.NoError(t, patch.Validate(validate)) {
			assert.Equal(t, "2024-03-01", *patch.DueDate)
		}
	})
	t.Run("apply", func(t *testing.T) {
		a := Assessment{ID: 1, ClassID: 2, Name: "Quiz", Weight: 10}
		a.DueDate.SetValid("2024-01-01")
		patch := AssessmentPatch{Weight: floatPtr(15), DueDate: strPtr(""), Description: strPtr(" Chapter 3 ")}
		if !assert.NoError(t, patch.Validate(validate)) {
			return
		}
		got := patch.Apply(a)
		assert.Equal(t, "Quiz", got.Name)
		assert.Equal(t, 15.0, got.Weight)
		assert.False(t, got.DueDate.Valid)
		assert.Equal(t, "Chapter 3", got.Description.String)
		assert.Equal(t, 2, got.ClassID)
	})
}

func TestNewStudent_Validate(t *testing.T) {
	validate := newValidator()

	ns := NewStudent{Code: " STU-001 ", FirstName: "John", LastName: "Smith", Email: " John.Smith@School.EDU "}
	if assert.NoError(t, ns.Validate(validate)) {
		assert.Equal(t, "STU-001", ns.Code)
		assert.Equal(t, "john.smith@school.edu", ns.Email)
	}

	for _, code := range []string{"STU#1", "STU 1", "STU\t1"} {
		bad := NewStudent{Code: code, FirstName: "John", LastName: "Smith"}
		assert.Error(t, bad.Validate(validate), code)
	}

	noEmail := NewStudent{Code: "STU1", FirstName: "John", LastName: "Smith", Email: "nope"}
	assert.Error(t, noEmail.Validate(validate))
}

func TestNewClass_Validate(t *testing.T) {
	validate := newValidator()

	nc := NewClass{ClassName: "Year 11 Maths", Subject: "Mathematics", GradingScale: " BAND "}
	if assert.NoError(t, nc.Validate(validate)) {
		assert.Equal(t, "band", nc.GradingScale)
	}

	bad := NewClass{ClassName: "Year 11 Maths", Subject: "Mathematics", GradingScale: "gpa"}
	assert.Error(t, bad.Validate(validate))
}
