package response

import (
	"net/http"
	"strings"

	domainerrors "bertron/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// EntitiesResponse is the list response shape shared by every multi-document
// endpoint: the documents plus their count.
type EntitiesResponse struct {
	Documents any `json:"documents"`
	Count     int `json:"count"`
}

// ErrorResponse carries a human-readable detail string plus a
// machine-distinguishable error category.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// Documents writes the standard documents/count envelope.
func Documents(c echo.Context, documents any, count int) error {
	return c.JSON(http.StatusOK, EntitiesResponse{
		Documents: documents,
		Count:     count,
	})
}

// Error writes an error response.
func Error(c echo.Context, statusCode int, errorCode string, detail string) error {
	if detail == "" {
		detail = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, ErrorResponse{
		Detail: detail,
		Code:   errorCode,
	})
}

// AppError writes an application error, folding optional details into the
// detail string.
func AppError(c echo.Context, appErr domainerrors.AppError) error {
	detail := appErr.Message()
	if d := appErr.Details(); d != "" && !strings.Contains(detail, d) {
		detail += ": " + d
	}

	return Error(c, appErr.HTTPCode(), appErr.ErrorCode(), detail)
}

// BadRequest 400 error
func BadRequest(c echo.Context, errorCode string, detail string) error {
	return Error(c, http.StatusBadRequest, errorCode, detail)
}

// BindingError binding error response
func BindingError(c echo.Context, errorCode string, detail string) error {
	return Error(c, http.StatusBadRequest, errorCode, detail)
}

// NotFound 404 error
func NotFound(c echo.Context, errorCode string, detail string) error {
	return Error(c, http.StatusNotFound, errorCode, detail)
}

// InternalServerError 500 error
func InternalServerError(c echo.Context, errorCode string, detail string) error {
	return Error(c, http.StatusInternalServerError, errorCode, detail)
}
