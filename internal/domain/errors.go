package domain

import (
	"errors"
	"strings"
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for malformed or out-of-range input. It is raised
// before any repository is touched.
type ValidationError struct {
	Fields []FieldError
}

// Add records a field failure.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns e when at least one field failed.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
