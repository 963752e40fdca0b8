package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field marks err as caused by the named input field. It returns nil if
// err is nil, so it can wrap validation results directly.
//
// Field names follow the Go struct field names. Nested fields and list
// elements are joined with a dot, for example "Milestones.2.Amount".
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if errIsNil(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) != 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{field: fieldName, desc: description, parent: err}
}

// AppendField adds the field error, if any, to the collected errors.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	field  string
	desc   string
	parent error
}

func (e *fieldError) Error() string {
	if e.desc != "" {
		return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
	}
	return fmt.Sprintf("field %q: %s", e.field, e.parent)
}

func (e *fieldError) Cause() error { return e.parent }

func (e *fieldError) Field() string { return e.field }

// FieldErrors collects the errors created by Field for the given name,
// looking into wrapped errors and into errors combined with Append.
func FieldErrors(err error, fieldName string) []error {
	var found []error
	for !errIsNil(err) {
		if f, ok := err.(*fieldError); ok && f.field == fieldName {
			return append(found, err)
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				found = append(found, FieldErrors(e, fieldName)...)
			}
			return found
		}
		err = cause(err)
	}
	return found
}
