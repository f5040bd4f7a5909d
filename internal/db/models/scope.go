package models

import "time"

// ScopeType classifies the context a group and its criteria apply within.
// Criterion types declare which scope types they can be attached to.
type ScopeType string

const (
	// ScopeTypeCourse restricts a group to a single course.
	ScopeTypeCourse ScopeType = "course"
	// ScopeTypeOrganization restricts a group to an organization.
	ScopeTypeOrganization ScopeType = "organization"
	// ScopeTypeInstance applies a group site-wide.
	ScopeTypeInstance ScopeType = "instance"
)

// Scope represents the contextual boundary a user group operates within,
// referencing an external resource (a course, an organization, or the whole
// instance). Scopes are created on first use of a (name, resource) pair and
// are immutable afterwards; there is no update path.
type Scope struct {
	// ID is the unique identifier for the scope.
	ID uint `gorm:"primaryKey"`
	// Name is the display name of the scope.
	Name string `gorm:"size:255;not null;uniqueIndex:idx_scope_resource"`
	// Description provides a human-readable explanation of the scope.
	Description string `gorm:"size:255"`
	// ResourceType tags the kind of external resource the scope references
	// (e.g. "course", "organization"). Unrecognized tags resolve to the
	// instance scope type.
	ResourceType string `gorm:"size:255;not null;uniqueIndex:idx_scope_resource"`
	// ResourceID is the opaque identifier of the referenced resource.
	ResourceID string `gorm:"size:255;not null;uniqueIndex:idx_scope_resource"`
	// CreatedAt is the timestamp when the scope was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the scope was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Scope model.
// This overrides GORM's default pluralized table naming.
func (Scope) TableName() string {
	return "scopes"
}

// resourceTypeMapping maps resource type tags to scope types. Resource tags
// not listed here resolve to the instance scope type.
var resourceTypeMapping = map[string]ScopeType{ //nolint:gochecknoglobals
	"course":         ScopeTypeCourse,
	"courseoverview": ScopeTypeCourse,
	"organization":   ScopeTypeOrganization,
}

// Type resolves the scope type from the scope's resource type tag,
// defaulting to instance for unrecognized tags.
func (s *Scope) Type() ScopeType {
	if st, ok := resourceTypeMapping[s.ResourceType]; ok {
		return st
	}

	return ScopeTypeInstance
}
