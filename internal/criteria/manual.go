package criteria

import (
	"encoding/json"

	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
)

// ManualCriterionType pushes an explicit list of users into a group.
type ManualCriterionType struct{}

// ManualConfig is the configuration for the manual criterion.
type ManualConfig struct {
	// UsernamesOrEmails lists the users to include, by username or email.
	UsernamesOrEmails []string `json:"usernames_or_emails" validate:"required,min=1"`
}

// Type returns the registered name of the criterion type.
func (*ManualCriterionType) Type() string {
	return "manual"
}

// Description returns a human readable description of the criterion type.
func (*ManualCriterionType) Description() string {
	return "A criterion that is used to push a given list of users to a group."
}

// Operators returns the operators the manual criterion supports.
func (*ManualCriterionType) Operators() []Operator {
	return []Operator{OperatorIn, OperatorNotIn}
}

// Scopes returns the scope types the manual criterion supports.
func (*ManualCriterionType) Scopes() []models.ScopeType {
	return allScopeTypes
}

// Events returns no subscriptions: a manual list only changes when the
// criterion itself is rewritten.
func (*ManualCriterionType) Events() []string {
	return nil
}

// Schema describes the manual criterion configuration.
func (t *ManualCriterionType) Schema() Schema {
	return Schema{
		Title:       "Manual Criterion Configuration",
		Description: "Configuration for manually specifying users by username or email",
		Properties: map[string]FieldSchema{
			"usernames_or_emails": {
				Type:        "array",
				Description: "List of usernames or email addresses to include in the group",
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
// manual criterion.
func (t *ManualCriterionType) Bind(
	operator string,
	config json.RawMessage,
	scope *models.Scope,
	backend BackendClient,
) (Criterion, error) {
	op, err := validateOperator(operator, t.Operators())
	if err != nil {
		return nil, err
	}

	var cfg ManualConfig
	if err := decodeConfig(t.Type(), config, &cfg); err != nil {
		return nil, err
	}

	if err := validateScope(scope, t.Scopes()); err != nil {
		return nil, err
	}

	return &manualCriterion{operator: op, config: cfg, scope: scope, backend: backend}, nil
}

type manualCriterion struct {
	operator Operator
	config   ManualConfig
	scope    *models.Scope
	backend  BackendClient
}

// Evaluate matches exactly the named users among the scope's visible users.
// The operator carries no evaluation semantics for a manual list.
func (c *manualCriterion) Evaluate() (UserSet, error) {
	users, err := c.backend.GetUsers(c.scope)
	if err != nil {
		return nil, err
	}

	named := make(map[string]struct{}, len(c.config.UsernamesOrEmails))
	for _, entry := range c.config.UsernamesOrEmails {
		named[entry] = struct{}{}
	}

	out := make(UserSet)

	for _, user := range users {
		_, matched := named[user.Username]
		if !matched {
			_, matched = named[user.Email]
		}

		if matched {
			out.Add(user.ID)
		}
	}

	return out, nil
}

// Serialize returns the persistable (type, operator, config) triple.
func (c *manualCriterion) Serialize() Spec {
	return Spec{
		CriterionType:     (&ManualCriterionType{}).Type(),
		CriterionOperator: string(c.operator),
		CriterionConfig:   marshalConfig(c.config),
	}
}
