package gradebook

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/school"
)

type ImportMode string

const (
	ImportStudents          ImportMode = "students-only"
	ImportStudentsAndGrades ImportMode = "students-and-grades"
)

const (
	scoreColumnSuffix = "_score"
	// minColumnMatchRatio is the similarity needed to match a score column to an
	// assessment with a slightly different name.
	minColumnMatchRatio = 0.85
)

var (
	requiredColumns = []string{"student_id", "first_name", "last_name"}
	optionalColumns = []string{"email"}

	ErrEmptyCSV = errors.New("the CSV file is empty")
)

// ImportReport describes the outcome of a CSV import. Row problems do not abort the import.
type ImportReport struct {
	ID                   string   `json:"id"`
	Success              bool     `json:"success"`
	Message              string   `json:"message"`
	ImportedCount        int      `json:"imported_count"`
	GradesImported       *int     `json:"grades_imported,omitempty"`
	AvailableAssessments []string `json:"available_assessments,omitempty"`
	Errors               []string `json:"errors"`
	Warnings             []string `json:"warnings"`
}

type csvHeader map[string]int

func (h csvHeader) get(record []string, col string) string {
	idx, ok := h[col]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func readHeader(r *csv.Reader) (csvHeader, []string, error) {
	record, err := r.Read()
	if err == io.EOF {
		return nil, nil, core.NewValidationError(ErrEmptyCSV, core.FieldError{Field: "file", Error: ErrEmptyCSV.Error()})
	}
	if err != nil {
		return nil, nil, core.NewValidationError(errors.Wrap(err, "reading CSV header"), core.FieldError{Field: "file", Error: err.Error()})
	}
	header := make(csvHeader, len(record))
	columns := make([]string, 0, len(record))
	for i, col := range record {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		header[col] = i
		columns = append(columns, col)
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		msg := "missing required columns: " + strings.Join(missing, ", ")
		return nil, nil, core.NewValidationError(errors.New(msg), core.FieldError{Field: "file", Error: msg})
	}
	return header, columns, nil
}

func similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(strings.ToLower(a), ""), strings.Split(strings.ToLower(b), ""))
	return m.Ratio()
}

// matchAssessment finds the assessment named `name`: exactly, then ignoring case, then
// the closest name above minColumnMatchRatio. fuzzy is true for the last case.
func matchAssessment(name string, assessments []school.Assessment) (a school.Assessment, fuzzy, ok bool) {
	for _, a := range assessments {
		if a.Name == name {
			return a, false, true
		}
	}
	for _, a := range assessments {
		if strings.EqualFold(a.Name, name) {
			return a, false, true
		}
	}
	best := -1.0
	for _, candidate := range assessments {
		if ratio := similarity(candidate.Name, name); ratio >= minColumnMatchRatio && ratio > best {
			a, best = candidate, ratio
		}
	}
	return a, true, best >= 0
}

// scoreColumns maps the `<assessment>_score` columns of the header to the class assessments.
func scoreColumns(columns []string, assessments []school.Assessment, report *ImportReport) map[string]int {
	matched := make(map[string]int)
	for _, col := range columns {
		if len(col) <= len(scoreColumnSuffix) || !strings.HasSuffix(strings.ToLower(col), scoreColumnSuffix) {
			continue
		}
		name := strings.TrimSpace(col[:len(col)-len(scoreColumnSuffix)])
		a, fuzzy, ok := matchAssessment(name, assessments)
		switch {
		case !ok:
			report.Warnings = append(report.Warnings, fmt.Sprintf("Column %q does not match any assessment of the class", col))
		case fuzzy:
			report.Warnings = append(report.Warnings, fmt.Sprintf("Column %q matched to assessment %q", col, a.Name))
			matched[col] = a.ID
		default:
			matched[col] = a.ID
		}
	}
	return matched
}

// ImportStudentsCSV creates (or replaces) the students listed in a CSV file and enrolls
// them in a class. In ImportStudentsAndGrades mode the `<assessment>_score` columns are
// recorded as grades.
func (svc *Service) ImportStudentsCSV(ctx context.Context, classID int, r io.Reader, mode ImportMode) (ImportReport, error) {
	cls, err := svc.school.GetClass(ctx, classID)
	if err != nil {
		return ImportReport{}, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	header, columns, err := readHeader(reader)
	if err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{
		ID:       uuid.New().String(),
		Errors:   []string{},
		Warnings: []string{},
	}
	withGrades := mode == ImportStudentsAndGrades
	var grades map[string]int
	if withGrades {
		assessments, err := svc.school.QueryClassAssessments(ctx, cls.ID)
		if err != nil {
			return ImportReport{}, errors.Wrap(err, "querying class assessments")
		}
		report.AvailableAssessments = make([]string, 0, len(assessments))
		for _, a := range assessments {
			report.AvailableAssessments = append(report.AvailableAssessments, a.Name)
		}
		grades = scoreColumns(columns, assessments, &report)
	}

	gradesImported := 0
	for rowNum := 1; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		enr, err := svc.importStudent(ctx, cls.ID, header, record)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		report.ImportedCount++

		for _, col := range columns {
			assessmentID, ok := grades[col]
			if !ok {
				continue
			}
			raw := header.get(record, col)
			if raw == "" {
				continue
			}
			score, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("Row %d: Invalid score format for %s: %s", rowNum, col, raw))
				continue
			}
			if math.IsNaN(score) || score < 0 || score > 100 {
				report.Errors = append(report.Errors, fmt.Sprintf("Row %d: Invalid score %v for %s (must be 0-100)", rowNum, raw, col))
				continue
			}
			if _, err := svc.RecordGrade(ctx, enr.ID, assessmentID, score); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
				continue
			}
			gradesImported++
		}
	}

	report.Success = true
	report.Message = fmt.Sprintf("Successfully imported %d students", report.ImportedCount)
	if withGrades {
		report.GradesImported = &gradesImported
		report.Message += fmt.Sprintf(" and %d grade entries", gradesImported)
	}
	if len(report.Errors) > 0 {
		report.Message += fmt.Sprintf(" (with %d warnings)", len(report.Errors))
	}
	svc.metrics.ObserveImport(report.ImportedCount, len(report.Errors))
	svc.logger.Info("students imported", map[string]interface{}{
		"import_id": report.ID,
		"class_id":  cls.ID,
		"imported":  report.ImportedCount,
		"grades":    gradesImported,
		"errors":    len(report.Errors),
	})
	return report, nil
}

func (svc *Service) importStudent(ctx context.Context, classID int, header csvHeader, record []string) (school.Enrollment, error) {
	code := header.get(record, "student_id")
	firstName := header.get(record, "first_name")
	lastName := header.get(record, "last_name")
	if code == "" || firstName == "" || lastName == "" {
		return school.Enrollment{}, errors.New("missing required fields")
	}
	email := strings.ToLower(header.get(record, "email"))

	st, err := svc.school.UpsertStudent(ctx, school.Student{
		Code:      code,
		FirstName: firstName,
		LastName:  lastName,
		Email:     nullString(email),
		CreatedAt: nowFunc(),
	})
	if err != nil {
		return school.Enrollment{}, errors.Wrap(err, "saving student")
	}
	enr, err := svc.school.Enroll(ctx, classID, st.ID, nowFunc())
	return enr, errors.Wrap(err, "enrolling student")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExportClassCSV writes the roster of a class with every score and the current grade.
func (svc *Service) ExportClassCSV(ctx context.Context, classID int, w io.Writer) error {
	roster, err := svc.ClassRoster(ctx, classID)
	if err != nil {
		return err
	}
	assessments, err := svc.school.QueryClassAssessments(ctx, classID)
	if err != nil {
		return errors.Wrap(err, "querying class assessments")
	}

	cw := csv.NewWriter(w)
	header := []string{"student_id", "first_name", "last_name", "email"}
	for _, a := range assessments {
		header = append(header, a.Name+scoreColumnSuffix)
	}
	header = append(header, "predicted_grade", "total_weighted_score")
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing CSV header")
	}

	for _, entry := range roster {
		rows, err := svc.repo.QueryEnrollmentGrades(ctx, entry.EnrollmentID)
		if err != nil {
			return errors.Wrap(err, "querying enrollment grades")
		}
		scores := make(map[int]string, len(rows))
		for _, r := range rows {
			if r.Score.Valid {
				scores[r.AssessmentID] = formatNumber(r.Score.Float64)
			}
		}

		record := []string{entry.Code, entry.FirstName, entry.LastName, entry.Email.String}
		for _, a := range assessments {
			record = append(record, scores[a.ID])
		}
		record = append(record,
			formatNumber(core.Round(entry.Predicted, 2)),
			formatNumber(core.Round(entry.WeightedScore, 2)),
		)
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "writing CSV record")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing CSV")
}

var sampleStudents = [][]string{
	{"STU001", "John", "Smith", "john.smith@school.edu"},
	{"STU002", "Jane", "Doe", "jane.doe@school.edu"},
	{"STU003", "Mike", "Johnson", "mike.johnson@school.edu"},
	{"STU004", "Sarah", "Wilson", "sarah.wilson@school.edu"},
	{"STU005", "David", "Brown", "david.brown@school.edu"},
}

// StudentCSVTemplate writes a sample student import file.
func StudentCSVTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, requiredColumns...), optionalColumns...)); err != nil {
		return errors.Wrap(err, "writing CSV header")
	}
	if err := cw.WriteAll(sampleStudents); err != nil {
		return errors.Wrap(err, "writing CSV records")
	}
	return nil
}

type (
	ImportFormat struct {
		RequiredColumns []string `json:"required_columns"`
		OptionalColumns []string `json:"optional_columns"`
		ColumnOrder     []string `json:"column_order"`
		GradeColumns    string   `json:"grade_columns"`
		Encoding        string   `json:"encoding"`
		FileType        string   `json:"file_type"`
	}

	ImportInfo struct {
		Format       ImportFormat        `json:"format"`
		ImportModes  []ImportMode        `json:"import_modes"`
		Requirements []string            `json:"requirements"`
		Examples     []map[string]string `json:"examples"`
	}
)

// CSVImportInfo documents the format ImportStudentsCSV expects.
func CSVImportInfo() ImportInfo {
	examples := make([]map[string]string, 0, 2)
	for _, st := range sampleStudents[:2] {
		examples = append(examples, map[string]string{
			"student_id": st[0],
			"first_name": st[1],
			"last_name":  st[2],
			"email":      st[3],
		})
	}
	return ImportInfo{
		Format: ImportFormat{
			RequiredColumns: requiredColumns,
			OptionalColumns: optionalColumns,
			ColumnOrder:     append(append([]string{}, requiredColumns...), optionalColumns...),
			GradeColumns:    "<assessment name>" + scoreColumnSuffix,
			Encoding:        "UTF-8",
			FileType:        "CSV",
		},
		ImportModes: []ImportMode{ImportStudents, ImportStudentsAndGrades},
		Requirements: []string{
			"First row must contain column headers",
			"student_id must be unique",
			"first_name and last_name are required",
			"email is optional",
			"Score columns are only read in students-and-grades mode and must be between 0 and 100",
			"File must be saved in UTF-8 encoding",
		},
		Examples: examples,
	}
}
