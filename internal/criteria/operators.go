package criteria

// Operator is a comparison operator a criterion applies to its configuration
// when evaluating users.
type Operator string

const (
	// OperatorEqual is the equality operator.
	OperatorEqual Operator = "="
	// OperatorNotEqual is the inequality operator.
	OperatorNotEqual Operator = "!="
	// OperatorGreaterThan is the strictly-greater comparison operator.
	OperatorGreaterThan Operator = ">"
	// OperatorGreaterThanOrEqual is the greater-or-equal comparison operator.
	OperatorGreaterThanOrEqual Operator = ">="
	// OperatorLessThan is the strictly-less comparison operator.
	OperatorLessThan Operator = "<"
	// OperatorLessThanOrEqual is the less-or-equal comparison operator.
	OperatorLessThanOrEqual Operator = "<="
	// OperatorContains is the substring/containment operator.
	OperatorContains Operator = "contains"
	// OperatorNotContains is the negated containment operator.
	OperatorNotContains Operator = "not_contains"
	// OperatorIn is the set membership operator.
	OperatorIn Operator = "in"
	// OperatorNotIn is the negated set membership operator.
	OperatorNotIn Operator = "not_in"
	// OperatorExists is the existence operator.
	OperatorExists Operator = "exists"
	// OperatorNotExists is the negated existence operator.
	OperatorNotExists Operator = "not_exists"
)

// allOperators is the full set of recognized comparison operators.
var allOperators = map[Operator]struct{}{ //nolint:gochecknoglobals
	OperatorEqual:              {},
	OperatorNotEqual:           {},
	OperatorGreaterThan:        {},
	OperatorGreaterThanOrEqual: {},
	OperatorLessThan:           {},
	OperatorLessThanOrEqual:    {},
	OperatorContains:           {},
	OperatorNotContains:        {},
	OperatorIn:                 {},
	OperatorNotIn:              {},
	OperatorExists:             {},
	OperatorNotExists:          {},
}

// ParseOperator validates that the given string is a recognized comparison
// operator. It returns ErrUnsupportedOperator for unknown operators.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if _, ok := allOperators[op]; !ok {
		return "", unsupportedOperatorError(s, nil)
	}

	return op, nil
}
