package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/school"
)

var (
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, "not found")
	errFileMissing    = core.NewFieldValidationError("file", "no file provided")
	errNotCSV         = core.NewFieldValidationError("file", "file must be a CSV")
	errBadImportMode  = core.NewFieldValidationError("import_mode", "must be one of students-only, students-and-grades")
	errObjNotFoundCtx = errors.New("object not found in echo.Context")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				if translator != nil {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				} else {
					fldErrs[vErr.Field()] = vErr.Error()
				}
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *school.NotFoundError:
			code = http.StatusNotFound
			message = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			if logger != nil {
				args := []interface{}{
					errors.Wrap(err, msg),
					map[string]interface{}{
						"method": ctx.Request().Method,
						"path":   ctx.Path(),
					},
				}
				// reported as the rollbar person
				if t, tErr := ctxTeacher(ctx); tErr == nil {
					args = append(args, t)
				}
				logger.Error(msg, args...)
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
