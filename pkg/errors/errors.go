package errors

import "fmt"

// Error codes
const (
	CodeSyncError  = "SYNC_ERROR"
	CodeAPIError   = "API_ERROR"
	CodeValidation = "VALIDATION_ERROR"
)

// SyncError is the common shape of every failure raised while moving records
// between PHA and BOB.
type SyncError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *SyncError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SyncError) Unwrap() error {
	return e.Cause
}

func NewSyncError(message, code string, statusCode int, context map[string]any) *SyncError {
	return &SyncError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *SyncError) WithCause(cause error) *SyncError {
	e.Cause = cause
	return e
}

// APIError is a failed call to a remote API. StatusCode is zero when the
// request never produced a response.
type APIError struct {
	*SyncError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		SyncError: &SyncError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

// WithCause sets the underlying error and keeps the *APIError type.
func (e *APIError) WithCause(cause error) *APIError {
	e.Cause = cause
	return e
}

// WithContext merges extra keys into the error context.
func (e *APIError) WithContext(context map[string]any) *APIError {
	if len(context) == 0 {
		return e
	}
	if e.Context == nil {
		e.Context = make(map[string]any, len(context))
	}
	for k, v := range context {
		e.Context[k] = v
	}
	return e
}

type ValidationError struct {
	*SyncError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		SyncError: &SyncError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}
