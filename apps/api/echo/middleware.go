package echoapi

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const contextObjectKey = "object"

// objectMiddleware loads the record identified by the `param` path parameter into the
// context; missing records end the request with a 404.
func objectMiddleware(param string, load func(ctx context.Context, id int) (interface{}, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := idParam(ctx, param)
			if err != nil {
				return err
			}
			obj, err := load(ctx.Request().Context(), id)
			if err != nil {
				return errors.Wrapf(err, "loading %s %d", param, id)
			}
			ctx.Set(contextObjectKey, obj)
			return next(ctx)
		}
	}
}
