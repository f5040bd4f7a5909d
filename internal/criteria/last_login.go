package criteria

import (
	"encoding/json"
	"time"

	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
	"github.com/GoUserGroups/GoUserGroups/internal/events"
)

// LastLoginCriterionType matches users by how long ago they last logged in.
type LastLoginCriterionType struct{}

// LastLoginConfig is the configuration for the last login criterion.
type LastLoginConfig struct {
	// Days is the number of days since last login to compare against.
	Days *int `json:"days" validate:"required,gte=0"`
}

// Type returns the registered name of the criterion type.
func (*LastLoginCriterionType) Type() string {
	return "last_login"
}

// Description returns a human readable description of the criterion type.
func (*LastLoginCriterionType) Description() string {
	return "A criterion that is used to evaluate the membership of a user group based on the last login of the user."
}

// Operators returns the comparison operators the last login criterion supports.
func (*LastLoginCriterionType) Operators() []Operator {
	return []Operator{
		OperatorEqual,
		OperatorNotEqual,
		OperatorGreaterThan,
		OperatorGreaterThanOrEqual,
		OperatorLessThan,
		OperatorLessThanOrEqual,
	}
}

// Scopes returns the scope types the last login criterion supports.
func (*LastLoginCriterionType) Scopes() []models.ScopeType {
	return allScopeTypes
}

// Events returns the domain events that may change this criterion's result.
func (*LastLoginCriterionType) Events() []string {
	return []string{events.SessionLoginCompleted}
}

// Schema describes the last login criterion configuration.
func (t *LastLoginCriterionType) Schema() Schema {
	return Schema{
		Title:       "Last Login Criterion Configuration",
		Description: "Configuration for filtering users based on their last login activity",
		Properties: map[string]FieldSchema{
			"days": {
				Type:        "integer",
				Description: "Number of days since last login to use for comparison",
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
// last login criterion.
func (t *LastLoginCriterionType) Bind(
	operator string,
	config json.RawMessage,
	scope *models.Scope,
	backend BackendClient,
) (Criterion, error) {
	op, err := validateOperator(operator, t.Operators())
	if err != nil {
		return nil, err
	}

	var cfg LastLoginConfig
	if err := decodeConfig(t.Type(), config, &cfg); err != nil {
		return nil, err
	}

	if err := validateScope(scope, t.Scopes()); err != nil {
		return nil, err
	}

	return &lastLoginCriterion{operator: op, config: cfg, scope: scope, backend: backend}, nil
}

type lastLoginCriterion struct {
	operator Operator
	config   LastLoginConfig
	scope    *models.Scope
	backend  BackendClient
}

// Evaluate matches users on "days since last login" semantics. The operator
// applies to the elapsed time, not to the timestamp, so the timestamp
// comparison against threshold = now - days is inverted:
//
//	=  / != -> last_login equals the threshold exactly
//	>       -> last_login before the threshold (older than N days)
//	>=      -> last_login at or before the threshold
//	<       -> last_login after the threshold (more recent than N days)
//	<=      -> last_login at or after the threshold
func (c *lastLoginCriterion) Evaluate() (UserSet, error) {
	users, err := c.backend.GetUsers(c.scope)
	if err != nil {
		return nil, err
	}

	threshold := time.Now().UTC().Add(-time.Duration(*c.config.Days) * 24 * time.Hour)
	out := make(UserSet)

	for _, user := range users {
		if user.LastLogin == nil {
			continue
		}

		lastLogin := *user.LastLogin

		var matched bool

		switch c.operator {
		case OperatorEqual, OperatorNotEqual:
			matched = lastLogin.Equal(threshold)
		case OperatorGreaterThan:
			matched = lastLogin.Before(threshold)
		case OperatorGreaterThanOrEqual:
			matched = !lastLogin.After(threshold)
		case OperatorLessThan:
			matched = lastLogin.After(threshold)
		case OperatorLessThanOrEqual:
			matched = !lastLogin.Before(threshold)
		}

		if matched {
			out.Add(user.ID)
		}
	}

	return out, nil
}

// Serialize returns the persistable (type, operator, config) triple.
func (c *lastLoginCriterion) Serialize() Spec {
	return Spec{
		CriterionType:     (&LastLoginCriterionType{}).Type(),
		CriterionOperator: string(c.operator),
		CriterionConfig:   marshalConfig(c.config),
	}
}
