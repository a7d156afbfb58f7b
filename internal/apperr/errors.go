// Package apperr holds the two error kinds every registry raises: validation
// failures on caller input and operations addressed to an id that does not exist.
package apperr

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Kind string // group, task, member, user, session
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// FromValidator converts the result of validator.Struct into a *ValidationError
// naming the first failing field. Errors of any other type pass through.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.Namespace()
	// drop the struct name prefix: CreateTaskRequest.Steps[0].Title -> Steps[0].Title
	for i := 0; i < len(field); i++ {
		if field[i] == '.' {
			field = field[i+1:]
			break
		}
	}
	switch fe.Tag() {
	case "required":
		return Invalid(field, "is required")
	case "min":
		return Invalid(field, "must not be empty")
	case "oneof":
		return Invalid(field, fmt.Sprintf("must be one of [%s]", fe.Param()))
	default:
		return Invalid(field, "failed "+fe.Tag())
	}
}
