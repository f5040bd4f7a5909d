package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrScopeImmutable is returned when an update attempts to move a group to a
// different scope. A group's scope is fixed at creation time.
var ErrScopeImmutable = errors.New("group scope is immutable and cannot be changed")

// Group represents a named collection of users within one scope whose
// membership is computed from the group's criteria. Groups own their criteria
// and memberships; deleting a group removes both.
type Group struct {
	// ID is the unique identifier for the group.
	ID uint `gorm:"primaryKey"`
	// Name is the display name of the group, unique within its scope.
	Name string `gorm:"size:255;not null;uniqueIndex:idx_group_name_scope"`
	// Description provides a human-readable explanation of the group's purpose.
	Description string `gorm:"size:255"`
	// Enabled indicates whether the group participates in evaluation.
	// Soft deletion clears this flag while retaining the group's data.
	Enabled bool `gorm:"not null;default:true"`
	// ScopeID is the ID of the scope the group belongs to. Immutable after
	// creation; updates attempting to change it fail with ErrScopeImmutable.
	ScopeID uint `gorm:"not null;uniqueIndex:idx_group_name_scope"`
	// Scope is the associated scope (loaded via foreign key).
	// When a scope is deleted, its groups are automatically removed (CASCADE).
	Scope Scope `gorm:"foreignKey:ScopeID;constraint:OnDelete:CASCADE"`
	// Criteria are the criteria attached to this group. Membership is the
	// intersection of every criterion's result set.
	Criteria []Criterion `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	// LastMembershipChange is the timestamp of the last roster replacement.
	LastMembershipChange *time.Time
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Group model.
// This overrides GORM's default pluralized table naming.
func (Group) TableName() string {
	return "user_groups"
}

// BeforeUpdate enforces scope immutability: saving a group whose ScopeID
// differs from the persisted one fails without mutating the stored scope.
func (g *Group) BeforeUpdate(tx *gorm.DB) error {
	if g.ID == 0 || g.ScopeID == 0 {
		return nil
	}

	var current Group

	err := tx.Session(&gorm.Session{NewDB: true}).
		Select("scope_id").
		First(&current, g.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		return err
	}

	if current.ScopeID != g.ScopeID {
		return ErrScopeImmutable
	}

	return nil
}
