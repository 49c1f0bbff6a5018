package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by lookups that reference a missing recipe, guide,
// category or comment.
var ErrNotFound = errors.New("not found")

// ValidationError 输入校验失败，携带字段名与面向用户的提示
type ValidationError struct {
	Field   string
	Message string
	Err     error // optional cause, e.g. ErrNotFound for a dangling reference
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
