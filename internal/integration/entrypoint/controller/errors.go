// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domainerror "github.com/dental-clinic/backend/internal/domain/error"
	"github.com/dental-clinic/backend/internal/domain/valueobject"
	"github.com/dental-clinic/backend/internal/integration/entrypoint/dto"
)

// handleFinanceError handles finance and auth errors and returns appropriate HTTP responses.
func handleFinanceError(ctx *gin.Context, err error) {
	var financeErr *domainerror.FinanceError
	if errors.As(err, &financeErr) {
		statusCode := statusCodeForFinanceError(financeErr)
		if statusCode == http.StatusInternalServerError {
			slog.Error("Finance request failed", "path", ctx.FullPath(), "error", err)
			ctx.JSON(statusCode, dto.ErrorResponse{
				Error: "An internal error occurred",
				Code:  string(financeErr.Code),
			})
			return
		}
		ctx.JSON(statusCode, dto.ErrorResponse{
			Error:   financeErr.Message,
			Code:    string(financeErr.Code),
			Details: financeErr.Field,
		})
		return
	}

	var authErr *domainerror.AuthError
	if errors.As(err, &authErr) {
		statusCode := http.StatusUnauthorized
		if authErr.Code == domainerror.ErrCodeForbiddenRole {
			statusCode = http.StatusForbidden
		}
		ctx.JSON(statusCode, dto.ErrorResponse{
			Error: authErr.Message,
			Code:  string(authErr.Code),
		})
		return
	}

	slog.Error("Unhandled request error", "path", ctx.FullPath(), "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// statusCodeForFinanceError maps finance error kinds to HTTP status codes.
func statusCodeForFinanceError(err *domainerror.FinanceError) int {
	switch err.Kind() {
	case domainerror.FinanceErrorValidation:
		return http.StatusBadRequest
	case domainerror.FinanceErrorNotFound:
		return http.StatusNotFound
	case domainerror.FinanceErrorConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// parseReportDate parses a YYYY-MM-DD date.
func parseReportDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	date, err := valueobject.ParseDate(value)
	if err != nil {
		return time.Time{}, domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidReportDate,
			field,
			field+" must use the YYYY-MM-DD format",
			domainerror.ErrInvalidReportDate,
		)
	}
	return date, nil
}

// parseFilterTime parses an RFC 3339 timestamp or a YYYY-MM-DD date.
// An empty value yields nil.
func parseFilterTime(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return &ts, nil
	}
	date, err := parseReportDate(field, value)
	if err != nil {
		return nil, domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidReportDate,
			field,
			field+" must be an RFC 3339 timestamp or a YYYY-MM-DD date",
			domainerror.ErrInvalidReportDate,
		)
	}
	return &date, nil
}

// invalidRequestBody responds to a body that could not be bound.
func invalidRequestBody(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid request body: " + err.Error(),
		Code:  string(domainerror.ErrCodeMissingFinanceFields),
	})
}
