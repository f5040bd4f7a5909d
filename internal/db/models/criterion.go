package models

import (
	"encoding/json"
	"time"
)

// Criterion represents one typed, configured rule attached to a group. The
// criterion type name must resolve in the criterion registry; the operator and
// configuration are validated by that type at attachment time. Criteria are
// immutable after creation: the model only supports create and delete.
type Criterion struct {
	// ID is the unique identifier for the criterion.
	ID uint `gorm:"primaryKey"`
	// GroupID is the ID of the group owning this criterion.
	GroupID uint `gorm:"not null;index"`
	// Group is the owning group (loaded via foreign key).
	// When a group is deleted, its criteria are automatically removed (CASCADE).
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	// CriterionType is the registered name of the criterion type.
	CriterionType string `gorm:"size:255;not null;index"`
	// CriterionOperator is the comparison operator the criterion applies.
	CriterionOperator string `gorm:"size:32;not null"`
	// CriterionConfig is the type-specific configuration, validated only by
	// the owning criterion type's schema.
	CriterionConfig json.RawMessage `gorm:"type:json"`
	// CreatedAt is the timestamp when the criterion was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Criterion model.
// This overrides GORM's default pluralized table naming.
func (Criterion) TableName() string {
	return "criteria"
}
