package models

import "time"

// GroupCollection represents a named set of groups whose memberships are
// expected to be mutually exclusive. The collection-aware evaluation path
// detects users who matched more than one group in the collection and removes
// them from every conflicting group, reporting the duplicates for audit.
type GroupCollection struct {
	// ID is the unique identifier for the collection.
	ID uint `gorm:"primaryKey"`
	// Name is the display name of the collection.
	Name string `gorm:"size:255;not null;unique"`
	// Description provides a human-readable explanation of the collection.
	Description string `gorm:"size:255"`
	// Groups are the user groups belonging to this collection.
	Groups []Group `gorm:"many2many:group_collection_groups"`
	// CreatedAt is the timestamp when the collection was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the collection was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the GroupCollection model.
// This overrides GORM's default pluralized table naming.
func (GroupCollection) TableName() string {
	return "group_collections"
}
