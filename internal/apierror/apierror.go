// Package apierror defines the error envelopes every 4xx/5xx response uses.
// Handlers build responses only through these constructors so the JSON shape
// stays uniform across the API.
package apierror

// APIError carries a single human-readable message in Spanish.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError adds per-field messages for 422 responses.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
