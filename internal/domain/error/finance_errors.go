// Package error defines domain-specific errors for the dental clinic backend.
package error

import "errors"

// Finance domain errors.
var (
	// ErrReportNotFound is returned when no report exists for a date.
	ErrReportNotFound = errors.New("report not found")

	// ErrAppointmentNotFound is returned when a referenced appointment does not exist.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrDoctorNotFound is returned when a referenced doctor does not exist.
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrInvalidAmount is returned when an amount is missing or not usable.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidReportDate is returned when a report date is missing or malformed.
	ErrInvalidReportDate = errors.New("invalid report date")

	// ErrInvalidDateRange is returned when a date range starts after it ends.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidConsumptionTitle is returned when a consumption title is missing or too long.
	ErrInvalidConsumptionTitle = errors.New("invalid consumption title")

	// ErrInvalidEventKind is returned when a financial event has an unknown kind or a missing payload.
	ErrInvalidEventKind = errors.New("invalid financial event")

	// ErrInvalidKPIPercent is returned when a service KPI percent lies outside [0, 100].
	ErrInvalidKPIPercent = errors.New("kpi percent out of range")

	// ErrReportConflict is returned when concurrent writers keep colliding on the same report.
	ErrReportConflict = errors.New("concurrent report update")
)

// FinanceErrorCode defines error codes for finance errors.
// Format: FIN-XXYYYY where XX is category and YYYY is specific error.
type FinanceErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidAmount           FinanceErrorCode = "FIN-010001"
	ErrCodeInvalidReportDate       FinanceErrorCode = "FIN-010002"
	ErrCodeInvalidDateRange        FinanceErrorCode = "FIN-010003"
	ErrCodeInvalidConsumptionTitle FinanceErrorCode = "FIN-010004"
	ErrCodeInvalidEventKind        FinanceErrorCode = "FIN-010005"
	ErrCodeInvalidKPIPercent       FinanceErrorCode = "FIN-010006"
	ErrCodeMissingFinanceFields    FinanceErrorCode = "FIN-010007"

	// Not found errors (02XXXX)
	ErrCodeReportNotFound      FinanceErrorCode = "FIN-020001"
	ErrCodeAppointmentNotFound FinanceErrorCode = "FIN-020002"
	ErrCodeDoctorNotFound      FinanceErrorCode = "FIN-020003"

	// Conflict errors (03XXXX)
	ErrCodeReportConflict FinanceErrorCode = "FIN-030001"

	// Internal errors (05XXXX)
	ErrCodeFinanceInternal FinanceErrorCode = "FIN-050001"
)

// FinanceErrorKind groups finance error codes by how callers should react.
type FinanceErrorKind string

const (
	FinanceErrorValidation FinanceErrorKind = "validation"
	FinanceErrorNotFound   FinanceErrorKind = "not_found"
	FinanceErrorConflict   FinanceErrorKind = "conflict"
	FinanceErrorInternal   FinanceErrorKind = "internal"
)

// FinanceError represents a finance error with code and message.
// Field names the offending input for validation errors.
type FinanceError struct {
	Code    FinanceErrorCode
	Message string
	Field   string
	Err     error
}

// Error implements the error interface.
func (e *FinanceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *FinanceError) Unwrap() error {
	return e.Err
}

// Kind returns the category of the error derived from its code.
func (e *FinanceError) Kind() FinanceErrorKind {
	if len(e.Code) < 6 {
		return FinanceErrorInternal
	}
	switch e.Code[4:6] {
	case "01":
		return FinanceErrorValidation
	case "02":
		return FinanceErrorNotFound
	case "03":
		return FinanceErrorConflict
	default:
		return FinanceErrorInternal
	}
}

// NewFinanceError creates a new FinanceError with the given code and message.
func NewFinanceError(code FinanceErrorCode, message string, err error) *FinanceError {
	return &FinanceError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewFinanceValidationError creates a validation FinanceError for a specific input field.
func NewFinanceValidationError(code FinanceErrorCode, field, message string, err error) *FinanceError {
	return &FinanceError{
		Code:    code,
		Message: message,
		Field:   field,
		Err:     err,
	}
}

// NewFinanceInternalError wraps an unexpected failure.
func NewFinanceInternalError(message string, err error) *FinanceError {
	return &FinanceError{
		Code:    ErrCodeFinanceInternal,
		Message: message,
		Err:     err,
	}
}
