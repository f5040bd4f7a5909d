package criteria

import (
	"encoding/json"
	"time"

	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
	"github.com/GoUserGroups/GoUserGroups/internal/events"
)

// CourseEnrollmentCriterionType matches users by their enrollment records in
// the course the group's scope references.
type CourseEnrollmentCriterionType struct{}

// CourseEnrollmentConfig is the configuration for the course enrollment
// criterion. Both fields are optional; present fields are combined with AND.
type CourseEnrollmentConfig struct {
	// Mode filters enrollments by mode (e.g. "audit", "verified", "honor").
	Mode *string `json:"mode,omitempty"`
	// EnrollmentDate keeps only users enrolled on or after this date.
	EnrollmentDate *time.Time `json:"enrollment_date,omitempty"`
}

// Type returns the registered name of the criterion type.
func (*CourseEnrollmentCriterionType) Type() string {
	return "course_enrollment"
}

// Description returns a human readable description of the criterion type.
func (*CourseEnrollmentCriterionType) Description() string {
	return "A criterion that is used to evaluate the membership of a user group based on the course enrollment mode of the user."
}

// Operators returns the operators the course enrollment criterion supports.
func (*CourseEnrollmentCriterionType) Operators() []Operator {
	return []Operator{
		OperatorIn,
		OperatorNotIn,
		OperatorEqual,
		OperatorNotEqual,
		OperatorGreaterThan,
		OperatorGreaterThanOrEqual,
		OperatorLessThan,
		OperatorLessThanOrEqual,
	}
}

// Scopes restricts the course enrollment criterion to course scopes.
func (*CourseEnrollmentCriterionType) Scopes() []models.ScopeType {
	return []models.ScopeType{models.ScopeTypeCourse}
}

// Events returns the domain events that may change this criterion's result.
func (*CourseEnrollmentCriterionType) Events() []string {
	return []string{events.CourseEnrollmentCreated, events.CourseEnrollmentChanged}
}

// Schema describes the course enrollment criterion configuration.
func (t *CourseEnrollmentCriterionType) Schema() Schema {
	return Schema{
		Title:       "Course Enrollment Criterion Configuration",
		Description: "Configuration for filtering users based on their course enrollment details",
		Properties: map[string]FieldSchema{
			"mode": {
				Type:        "string",
				Description: "Enrollment mode to filter by (e.g., 'audit', 'verified', 'honor')",
			},
			"enrollment_date": {
				Type:        "string",
				Description: "Filter users enrolled on or after this date",
			},
		},
		Operators:            operatorNames(t.Operators()),
		CriterionDescription: t.Description(),
		CriterionType:        t.Type(),
		SupportedScopes:      t.Scopes(),
	}
}

// Bind validates the operator, configuration and scope and returns a bound
// course enrollment criterion.
func (t *CourseEnrollmentCriterionType) Bind(
	operator string,
	config json.RawMessage,
	scope *models.Scope,
	backend BackendClient,
) (Criterion, error) {
	op, err := validateOperator(operator, t.Operators())
	if err != nil {
		return nil, err
	}

	var cfg CourseEnrollmentConfig
	if err := decodeConfig(t.Type(), config, &cfg); err != nil {
		return nil, err
	}

	if err := validateScope(scope, t.Scopes()); err != nil {
		return nil, err
	}

	return &courseEnrollmentCriterion{operator: op, config: cfg, scope: scope, backend: backend}, nil
}

type courseEnrollmentCriterion struct {
	operator Operator
	config   CourseEnrollmentConfig
	scope    *models.Scope
	backend  BackendClient
}

// Evaluate matches the scope's visible users that hold at least one
// enrollment record passing every configured filter.
func (c *courseEnrollmentCriterion) Evaluate() (UserSet, error) {
	enrollments, err := c.backend.GetEnrollments(c.scope)
	if err != nil {
		return nil, err
	}

	enrolled := make(UserSet)

	for _, enrollment := range enrollments {
		if c.config.Mode != nil && enrollment.Mode != *c.config.Mode {
			continue
		}

		if c.config.EnrollmentDate != nil && enrollment.CreatedAt.Before(*c.config.EnrollmentDate) {
			continue
		}

		enrolled.Add(enrollment.UserID)
	}

	users, err := c.backend.GetUsers(c.scope)
	if err != nil {
		return nil, err
	}

	out := make(UserSet)

	for _, user := range users {
		if enrolled.Contains(user.ID) {
			out.Add(user.ID)
		}
	}

	return out, nil
}

// Serialize returns the persistable (type, operator, config) triple.
func (c *courseEnrollmentCriterion) Serialize() Spec {
	return Spec{
		CriterionType:     (&CourseEnrollmentCriterionType{}).Type(),
		CriterionOperator: string(c.operator),
		CriterionConfig:   marshalConfig(c.config),
	}
}
