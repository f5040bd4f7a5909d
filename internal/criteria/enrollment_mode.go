package criteria

import (
	"encoding/json"
	"fmt"

	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
	"github.com/GoUserGroups/GoUserGroups/internal/events"
)

// EnrollmentModeCriterionType matches users by their current enrollment mode.
//
// The type is registered and fully validates its input, but evaluation
// requires an enrollment-mode backend that is not wired in yet: Evaluate
// returns ErrCriterionNotImplemented rather than a silently empty result, so
// a group using it fails loudly instead of quietly losing members.
type EnrollmentModeCriterionType struct{}

// EnrollmentModeConfig is the configuration for the enrollment mode criterion.
type EnrollmentModeConfig struct {
	// Mode is the enrollment mode to compare against.
	Mode string `json:"mode" validate:"required"`
}

// Type returns the registered name of the criterion type.
func (*EnrollmentModeCriterionType) Type() string {
	return "enrollment_mode"
}

// Description returns a human readable description of the criterion type.
func (*EnrollmentModeCriterionType) Description() string {
	return "A criterion that is used to evaluate the membership of a user group based on the enrollment mode of the user."
}

// Operators returns the operators the enrollment mode criterion supports.
func (*EnrollmentModeCriterionType) Operators() []Operator {
	return []Operator{OperatorEqual, OperatorNotEqual}
}

// Scopes restricts the enrollment mode criterion to course scopes.
func (*EnrollmentModeCriterionType) Scopes() []models.ScopeType {
	return []models.ScopeType{models.ScopeTypeCourse}
}

// Events returns the domain events that may change this criterion's result.
func (*EnrollmentModeCriterionType) Events() []string {
	return []string{events.CourseEnrollmentCreated, events.CourseEnrollmentChanged}
}

// Schema describes the enrollment mode criterion configuration.
func (t *EnrollmentModeCriterionType) Schema() Schema {
	return Schema{
		Title:       "Enrollment Mode Criterion Configuration",
		Description: "Configuration for filtering users based on their enrollment mode",
		Properties: map[string]FieldSchema{
			"mode": {
				Type:        "string",
				Description: "Enrollment mode to compare against",
				Required:    true,
			},
		},
		Operators:            operatorNames(t.Operators()),
		CriterionDescription: t.Description(),
		CriterionType:        t.Type(),
		SupportedScopes:      t.Scopes(),
	}
}

// Bind validates the operator, configuration and scope and returns a bound
// enrollment mode criterion.
func (t *EnrollmentModeCriterionType) Bind(
	operator string,
	config json.RawMessage,
	scope *models.Scope,
	backend BackendClient,
) (Criterion, error) {
	op, err := validateOperator(operator, t.Operators())
	if err != nil {
		return nil, err
	}

	var cfg EnrollmentModeConfig
	if err := decodeConfig(t.Type(), config, &cfg); err != nil {
		return nil, err
	}

	if err := validateScope(scope, t.Scopes()); err != nil {
		return nil, err
	}

	return &enrollmentModeCriterion{operator: op, config: cfg, scope: scope, backend: backend}, nil
}

type enrollmentModeCriterion struct {
	operator Operator
	config   EnrollmentModeConfig
	scope    *models.Scope
	backend  BackendClient
}

// Evaluate fails with ErrCriterionNotImplemented until a concrete
// enrollment-mode backend is available.
func (c *enrollmentModeCriterion) Evaluate() (UserSet, error) {
	return nil, fmt.Errorf(
		"%w: %s",
		ErrCriterionNotImplemented,
		(&EnrollmentModeCriterionType{}).Type(),
	)
}

// Serialize returns the persistable (type, operator, config) triple.
func (c *enrollmentModeCriterion) Serialize() Spec {
	return Spec{
		CriterionType:     (&EnrollmentModeCriterionType{}).Type(),
		CriterionOperator: string(c.operator),
		CriterionConfig:   marshalConfig(c.config),
	}
}
