package errs

import (
	"github.com/labstack/echo/v4"
)

// Echo converts a service error into an echo.HTTPError with the status for
// its kind. Untyped errors map to 500 with a generic message so internal
// detail does not leak to clients.
func Echo(err error) *echo.HTTPError {
	status := HTTPStatus(err)
	if KindOf(err) == KindUnknown {
		return echo.NewHTTPError(status, "internal error")
	}
	return echo.NewHTTPError(status, err.Error())
}
