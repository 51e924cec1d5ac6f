package middleware

import (
	"fmt"
	"log/slog"

	domainerrors "bertron/internal/domain/errors"
	"bertron/internal/delivery/http/response"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Application errors carry their own status and category.
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		//nolint:errcheck // Nothing left to do if writing the response fails.
		_ = response.AppError(c, appErr)

		return
	}

	// Echo's own errors: routing 404s and binding-layer 422s.
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		//nolint:errcheck
		_ = response.Error(c, httpErr.Code, "HTTP_ERROR", fmt.Sprintf("%v", httpErr.Message))

		return
	}

	// Anything else is unexpected; log it and return a generic error. The
	// message is echoed for diagnosability, the stack trace is not.
	m.logger.Error("Unhandled error",
		slog.String("error", err.Error()),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	//nolint:errcheck
	_ = response.InternalServerError(c, "INTERNAL_ERROR", err.Error())
}
