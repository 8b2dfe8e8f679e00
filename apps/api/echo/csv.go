package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/gradebook"
	"github.com/trezcool/smartgrades/core/school"
)

const mimeTextCSV = "text/csv"

type csvApi struct {
	svc       *gradebook.Service
	schoolSvc *school.Service
}

func registerCSVAPI(g *echo.Group, svc *gradebook.Service, schoolSvc *school.Service) {
	api := csvApi{svc: svc, schoolSvc: schoolSvc}

	g.POST("/classes/:id/import/students", api.importStudents)
	g.GET("/classes/:id/export", api.export)
	g.GET("/import/info", api.importInfo)

	g.GET("/templates", api.templates)
	g.GET("/templates/student-csv", api.studentTemplate)
	g.GET("/templates/:name", api.template)
}

func sendCSV(ctx echo.Context, filename string, data []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, mimeTextCSV, data)
}

func (api *csvApi) importStudents(ctx echo.Context) error {
	classID, err := idParam(ctx, "id")
	if err != nil {
		return err
	}

	mode := gradebook.ImportMode(core.CleanString(ctx.FormValue("import_mode"), true /* lower */))
	switch mode {
	case "":
		mode = gradebook.ImportStudents
	case gradebook.ImportStudents, gradebook.ImportStudentsAndGrades:
	default:
		return errBadImportMode
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			return errFileMissing
		}
		return core.NewValidationError(errors.Wrap(err, "reading multipart form"))
	}
	if fh.Filename == "" {
		return errFileMissing
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		return errNotCSV
	}
	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = file.Close() }()

	report, err := api.svc.ImportStudentsCSV(ctx.Request().Context(), classID, file, mode)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *csvApi) export(ctx echo.Context) error {
	classID, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()
	cls, err := api.schoolSvc.GetClass(rctx, classID)
	if err != nil {
		return errors.Wrap(err, "getting class")
	}

	var buf bytes.Buffer
	if err = api.svc.ExportClassCSV(rctx, cls.ID, &buf); err != nil {
		return errors.Wrap(err, "exporting class")
	}
	filename := fmt.Sprintf("%s_%s_%s.csv", cls.ClassName, cls.Subject, time.Now().Format("20060102_150405"))
	return sendCSV(ctx, filename, buf.Bytes())
}

func (api *csvApi) importInfo(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, gradebook.CSVImportInfo())
}

func (api *csvApi) studentTemplate(ctx echo.Context) error {
	var buf bytes.Buffer
	if err := gradebook.StudentCSVTemplate(&buf); err != nil {
		return errors.Wrap(err, "writing student CSV template")
	}
	return sendCSV(ctx, "student_import_template.csv", buf.Bytes())
}

func (api *csvApi) templates(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, school.Templates())
}

func (api *csvApi) template(ctx echo.Context) error {
	tmpl, err := school.GetTemplate(ctx.Param("name"))
	if err != nil {
		return errors.Wrap(err, "getting template")
	}
	return ctx.JSON(http.StatusOK, tmpl)
}
