// Package criteria implements the criterion type contract, the registry of
// criterion types, and the built-in criterion implementations. A criterion is
// one typed, configured rule yielding the set of users that match it; groups
// intersect their criteria's results to compute membership.
package criteria

import (
	"encoding/json"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
)

// CriterionType describes one registered kind of criterion: its static
// metadata (name, schema, supported operators and scopes, subscribed events)
// and the Bind constructor that validates an operator/configuration pair
// against this metadata and produces an evaluable Criterion.
type CriterionType interface {
	// Type is the unique registered name of the criterion type.
	Type() string
	// Description is a human readable description of the criterion type.
	Description() string
	// Operators is the subset of comparison operators this type supports.
	// A nil slice means every recognized operator is accepted.
	Operators() []Operator
	// Scopes is the set of scope types groups using this criterion may have.
	Scopes() []models.ScopeType
	// Events lists the domain event types whose occurrence may change this
	// criterion type's evaluation result.
	Events() []string
	// Schema describes the configuration fields, operators and scopes for
	// introspection by callers building criterion input.
	Schema() Schema
	// Bind validates the operator, configuration and owning scope and returns
	// a bound criterion ready for evaluation. Validation failures are
	// ErrUnsupportedOperator, ErrInvalidConfiguration or ErrScopeNotSupported.
	Bind(operator string, config json.RawMessage, scope *models.Scope, backend BackendClient) (Criterion, error)
}

// Criterion is one bound criterion instance. Evaluation is a pure function of
// the bound operator, configuration, scope and current backend data: it never
// writes memberships and an empty result is valid.
type Criterion interface {
	// Evaluate returns the set of users matching the criterion.
	Evaluate() (UserSet, error)
	// Serialize reproduces the (type, operator, config) triple sufficient to
	// reconstruct an equivalent criterion later.
	Serialize() Spec
}

// Spec is the serialized form of a bound criterion, ready to be persisted.
type Spec struct {
	CriterionType     string          `json:"criterion_type"`
	CriterionOperator string          `json:"criterion_operator"`
	CriterionConfig   json.RawMessage `json:"criterion_config"`
}

// FieldSchema describes one configuration field of a criterion type.
type FieldSchema struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Schema is the introspectable description of a criterion type.
type Schema struct {
	Title                string                 `json:"title"`
	Description          string                 `json:"description"`
	Properties           map[string]FieldSchema `json:"properties"`
	Operators            []string               `json:"operators"`
	CriterionDescription string                 `json:"criterion_description"`
	CriterionType        string                 `json:"criterion_type"`
	SupportedScopes      []models.ScopeType     `json:"supported_scopes"`
}

// allScopeTypes is the default scope support set: criterion types that do not
// restrict their scopes support all of them.
var allScopeTypes = []models.ScopeType{ //nolint:gochecknoglobals
	models.ScopeTypeCourse,
	models.ScopeTypeOrganization,
	models.ScopeTypeInstance,
}

// validate is the shared validator instance for criterion configurations.
var validate = validator.New() //nolint:gochecknoglobals

// decodeConfig unmarshals and validates a raw criterion configuration into
// the type's configuration struct.
func decodeConfig(criterionType string, raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return invalidConfigurationError(criterionType, err)
	}

	if err := validate.Struct(out); err != nil {
		return invalidConfigurationError(criterionType, err)
	}

	return nil
}

// validateOperator checks that the operator is recognized and within the
// criterion type's supported set. An empty supported set accepts every
// recognized operator.
func validateOperator(operator string, supported []Operator) (Operator, error) {
	op, err := ParseOperator(operator)
	if err != nil {
		return "", err
	}

	if len(supported) > 0 && !slices.Contains(supported, op) {
		return "", unsupportedOperatorError(operator, supported)
	}

	return op, nil
}

// validateScope checks that the owning group's resolved scope type is within
// the criterion type's supported scope set. Enforced once, at binding time.
func validateScope(scope *models.Scope, supported []models.ScopeType) error {
	if slices.Contains(supported, scope.Type()) {
		return nil
	}

	return ErrScopeNotSupported
}

// operatorNames renders an operator list for schema introspection.
func operatorNames(ops []Operator) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, string(op))
	}

	return out
}

// marshalConfig serializes a validated configuration struct back to plain
// JSON for persistence. Configurations are validated before binding, so
// marshaling them cannot fail.
func marshalConfig(cfg any) json.RawMessage {
	raw, err := json.Marshal(cfg)
	if err != nil {
		// Validated config structs are plain data and always marshal.
		panic(err)
	}

	return raw
}
