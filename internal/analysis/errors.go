package analysis

import (
	"fmt"

	dErrors "claimsight/pkg/domain-errors"
)

// ModelError reports a provider failure or an output that broke its schema.
type ModelError struct {
	Op  Operation
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("analysis %s: %v", e.Op, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

func modelError(op Operation, err error) error {
	return &ModelError{Op: op, Err: err}
}

func invalidInput(field, message string) error {
	return dErrors.Validation("invalid analysis input", map[string]string{field: message})
}
