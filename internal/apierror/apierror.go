// Package apierror provides the error envelope for every 4xx/5xx response.
// Internal details (DB errors, stack traces) are logged, never sent.
package apierror

// APIError is the canonical error envelope.
type APIError struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// WithRequest tags the envelope with the caller's request id.
func (e *APIError) WithRequest(id string) *APIError {
	e.RequestID = id
	return e
}

// ValidationError wraps per-field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
