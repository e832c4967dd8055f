package validator

import (
	"errors"
	"net/url"
	"sort"
	"strings"

	"github.com/gookit/validate"
)

// ErrValidation is the base error of every validation failure.
var ErrValidation = errors.New("validation error")

// ValidationError holds the failed rules per field.
type ValidationError struct {
	Values url.Values
}

// NewValidationError wraps the validation result into an error.
func NewValidationError(v url.Values) error {
	return &ValidationError{Values: v}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Values))
	for field := range e.Values {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, field+": "+strings.Join(e.Values[field], ", "))
	}

	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

// Unwrap makes errors.Is(err, ErrValidation) work.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ValidateStruct validates the given struct by its `validate` tags.
// It returns nil when the struct is valid.
func ValidateStruct(s interface{}) url.Values {
	v := validate.Struct(s)
	if v.Validate() {
		return nil
	}

	result := make(url.Values, len(v.Errors))
	for field, msgs := range v.Errors {
		for _, msg := range msgs {
			result.Add(field, msg)
		}
	}
	if len(result) == 0 {
		result.Add("_", "invalid")
	}

	return result
}
