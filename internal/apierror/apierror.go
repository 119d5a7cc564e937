// Package apierror provides the error envelope returned by every 4xx/5xx response.
// Internal details (stack traces, DB errors) never reach clients.
package apierror

// APIError is the canonical error body. Code is a stable machine-readable key.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

func NewCode(code, msg string) *APIError {
	return &APIError{Detail: msg, Code: code}
}

// ValidationError wraps field-level validation failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Code: "validacion", Fields: fields}
}
