package criteria

import (
	"encoding/json"

	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
	"github.com/GoUserGroups/GoUserGroups/internal/events"
)

// UserStaffStatusCriterionType matches users by their staff flag.
type UserStaffStatusCriterionType struct{}

// UserStaffStatusConfig is the configuration for the staff status criterion.
type UserStaffStatusConfig struct {
	// IsStaff selects staff users (true) or non-staff users (false).
	// A pointer so that an explicit false still satisfies required.
	IsStaff *bool `json:"is_staff" validate:"required"`
}

// Type returns the registered name of the criterion type.
func (*UserStaffStatusCriterionType) Type() string {
	return "user_staff_status"
}

// Description returns a human readable description of the criterion type.
func (*UserStaffStatusCriterionType) Description() string {
	return "A criterion that filters users based on whether they are staff members or not."
}

// Operators returns nil: the staff status criterion accepts any recognized
// comparison operator since the configuration alone decides the match.
func (*UserStaffStatusCriterionType) Operators() []Operator {
	return nil
}

// Scopes returns the scope types the staff status criterion supports.
func (*UserStaffStatusCriterionType) Scopes() []models.ScopeType {
	return allScopeTypes
}

// Events returns the domain events that may change this criterion's result.
func (*UserStaffStatusCriterionType) Events() []string {
	return []string{events.UserStaffStatusChanged}
}

// Schema describes the staff status criterion configuration.
func (t *UserStaffStatusCriterionType) Schema() Schema {
	return Schema{
		Title:       "User Staff Status Criterion Configuration",
		Description: "Configuration for filtering users based on their staff status",
		Properties: map[string]FieldSchema{
			"is_staff": {
				Type:        "boolean",
				Description: "Whether to filter for staff users (true) or non-staff users (false)",
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
// staff status criterion.
func (t *UserStaffStatusCriterionType) Bind(
	operator string,
	config json.RawMessage,
	scope *models.Scope,
	backend BackendClient,
) (Criterion, error) {
	op, err := validateOperator(operator, t.Operators())
	if err != nil {
		return nil, err
	}

	var cfg UserStaffStatusConfig
	if err := decodeConfig(t.Type(), config, &cfg); err != nil {
		return nil, err
	}

	if err := validateScope(scope, t.Scopes()); err != nil {
		return nil, err
	}

	return &userStaffStatusCriterion{operator: op, config: cfg, scope: scope, backend: backend}, nil
}

type userStaffStatusCriterion struct {
	operator Operator
	config   UserStaffStatusConfig
	scope    *models.Scope
	backend  BackendClient
}

// Evaluate matches users whose staff flag equals the configured value.
func (c *userStaffStatusCriterion) Evaluate() (UserSet, error) {
	users, err := c.backend.GetUsers(c.scope)
	if err != nil {
		return nil, err
	}

	out := make(UserSet)

	for _, user := range users {
		if user.IsStaff == *c.config.IsStaff {
			out.Add(user.ID)
		}
	}

	return out, nil
}

// Serialize returns the persistable (type, operator, config) triple.
func (c *userStaffStatusCriterion) Serialize() Spec {
	return Spec{
		CriterionType:     (&UserStaffStatusCriterionType{}).Type(),
		CriterionOperator: string(c.operator),
		CriterionConfig:   marshalConfig(c.config),
	}
}
