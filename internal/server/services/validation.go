package services

import (
	"errors"
	"regexp"
	"sort"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

var (
	emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phoneShape = regexp.MustCompile(`^\d{10}$`)
)

// invalid turns ozzo-validation field errors into a validation error
// with one detail per field, sorted by field name. Other errors pass through.
func invalid(msg string, err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return err
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	details := make([]goerrors.FieldError, 0, len(names))
	for _, name := range names {
		details = append(details, goerrors.FieldError{Field: name, Message: fields[name].Error()})
	}
	return common.NewValidationError(msg, details...)
}

func oneOf[T ~string](values ...T) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
