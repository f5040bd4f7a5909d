package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrGroupNotFound is returned when a group is not found.
	ErrGroupNotFound = errors.New("user group not found")
	// ErrCollectionNotFound is returned when a group collection is not found.
	ErrCollectionNotFound = errors.New("group collection not found")
	// ErrDuplicateGroupName is returned when creating a group whose name is
	// already taken within the target scope.
	ErrDuplicateGroupName = errors.New("group name already exists in scope")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// CriterionValidationError reports which criterion of a creation request
// failed validation and why (unknown type, operator, configuration or scope),
// so the caller can correct the specific input instead of guessing from a
// generic bad-request answer.
type CriterionValidationError struct {
	// Index is the position of the failing criterion in the request.
	Index int
	// CriterionType is the requested criterion type name.
	CriterionType string
	// Err is the underlying validation failure.
	Err error
}

// Error implements the error interface.
func (e *CriterionValidationError) Error() string {
	return fmt.Sprintf("criterion %d (%s): %v", e.Index, e.CriterionType, e.Err)
}

// Unwrap exposes the underlying validation error for errors.Is matching.
func (e *CriterionValidationError) Unwrap() error {
	return e.Err
}
