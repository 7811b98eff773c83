// Package error defines domain-specific errors for the dental clinic backend.
package error

import "errors"

// Notification domain errors.
var (
	// ErrNotificationQueueFailed is returned when a notification fails to be queued.
	ErrNotificationQueueFailed = errors.New("failed to queue notification")

	// ErrInvalidTemplate is returned when an unknown notification template is specified.
	ErrInvalidTemplate = errors.New("invalid notification template")

	// ErrUnsupportedChannel is returned when no sender is configured for a channel.
	ErrUnsupportedChannel = errors.New("unsupported notification channel")

	// ErrNotificationJobNotFound is returned when a notification job is not found.
	ErrNotificationJobNotFound = errors.New("notification job not found")
)

// NotificationErrorCode defines error codes for notification errors.
// Format: NTF-XXYYYY where XX is category and YYYY is specific error.
type NotificationErrorCode string

const (
	// Queue errors (01XXXX)
	ErrCodeNotificationQueueFailed NotificationErrorCode = "NTF-010001"
	ErrCodeNotificationJobNotFound NotificationErrorCode = "NTF-010002"

	// Send errors (02XXXX)
	ErrCodePermanentDeliveryFailure NotificationErrorCode = "NTF-020001"
	ErrCodeTemporaryDeliveryFailure NotificationErrorCode = "NTF-020002"
	ErrCodeUnsupportedChannel       NotificationErrorCode = "NTF-020003"

	// Template errors (03XXXX)
	ErrCodeInvalidTemplate      NotificationErrorCode = "NTF-030001"
	ErrCodeTemplateRenderFailed NotificationErrorCode = "NTF-030002"
)

// NotificationError represents a notification error with code and message.
type NotificationError struct {
	Code    NotificationErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *NotificationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *NotificationError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether retrying the delivery cannot succeed.
func (e *NotificationError) IsPermanent() bool {
	switch e.Code {
	case ErrCodePermanentDeliveryFailure, ErrCodeUnsupportedChannel, ErrCodeInvalidTemplate, ErrCodeTemplateRenderFailed:
		return true
	}
	return false
}

// NewNotificationError creates a new NotificationError with the given code and message.
func NewNotificationError(code NotificationErrorCode, message string, err error) *NotificationError {
	return &NotificationError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
