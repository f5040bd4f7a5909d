package criteria

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnknownCriterionType is returned when resolving a criterion type name
	// that was never registered. Callers must treat this as a hard validation
	// error, not a silent no-op.
	ErrUnknownCriterionType = errors.New("unknown criterion type")

	// ErrUnsupportedOperator is returned when an operator is either not a
	// recognized comparison operator or not supported by the criterion type.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrScopeNotSupported is returned when a criterion type is attached to a
	// group whose scope type is outside the type's supported scope set.
	ErrScopeNotSupported = errors.New("scope type not supported by criterion")

	// ErrInvalidConfiguration is the sentinel every configuration validation
	// failure wraps; match with errors.Is and inspect the
	// InvalidConfigurationError for field detail.
	ErrInvalidConfiguration = errors.New("invalid criterion configuration")

	// ErrCriterionNotImplemented is returned by criterion types whose
	// evaluation requires a concrete backend that is not wired in yet.
	ErrCriterionNotImplemented = errors.New("criterion evaluation not implemented")
)

// FieldError describes one configuration field that failed validation.
type FieldError struct {
	// Field is the configuration key that failed.
	Field string
	// Rule is the validation rule that was violated.
	Rule string
	// Value is the rejected value.
	Value any
}

// InvalidConfigurationError carries the per-field validation failures for a
// criterion configuration so the caller can correct the input.
type InvalidConfigurationError struct {
	// CriterionType is the criterion type whose configuration was rejected.
	CriterionType string
	// Fields lists the individual field failures.
	Fields []FieldError
}

// Error implements the error interface.
func (e *InvalidConfigurationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Rule))
	}

	return fmt.Sprintf(
		"invalid criterion configuration for %q: %s",
		e.CriterionType,
		strings.Join(parts, ", "),
	)
}

// Unwrap makes the error match ErrInvalidConfiguration via errors.Is.
func (e *InvalidConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// invalidConfigurationError converts a raw decode or validator error into an
// InvalidConfigurationError for the given criterion type.
func invalidConfigurationError(criterionType string, err error) error {
	icErr := &InvalidConfigurationError{CriterionType: criterionType}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			icErr.Fields = append(icErr.Fields, FieldError{
				Field: fe.Field(),
				Rule:  fe.Tag(),
				Value: fe.Value(),
			})
		}

		return icErr
	}

	icErr.Fields = append(icErr.Fields, FieldError{Field: "config", Rule: err.Error()})

	return icErr
}

// unsupportedOperatorError wraps ErrUnsupportedOperator with the offending
// operator and, when known, the operators the criterion type does support.
func unsupportedOperatorError(operator string, supported []Operator) error {
	if len(supported) == 0 {
		return fmt.Errorf("%w: %q", ErrUnsupportedOperator, operator)
	}

	names := make([]string, 0, len(supported))
	for _, op := range supported {
		names = append(names, string(op))
	}

	return fmt.Errorf(
		"%w: %q (supported: %s)",
		ErrUnsupportedOperator,
		operator,
		strings.Join(names, ", "),
	)
}
