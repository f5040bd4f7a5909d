package models

import "time"

// Membership represents the membership of a user in a user group. Membership
// rows are fully derived state: the reconciler replaces a group's entire
// roster on every evaluation, so no external system may hand-author rows for
// criteria-governed groups.
type Membership struct {
	// ID is the unique identifier for the membership.
	ID uint `gorm:"primaryKey"`
	// UserID is the ID of the user in this membership.
	UserID uint64 `gorm:"not null;uniqueIndex:idx_membership_user_group"`
	// GroupID is the ID of the group in this membership.
	GroupID uint `gorm:"not null;uniqueIndex:idx_membership_user_group"`
	// User is the associated user (loaded via foreign key).
	// When a user is deleted, their memberships are automatically removed (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Group is the associated group (loaded via foreign key).
	// When a group is deleted, its memberships are automatically removed (CASCADE).
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	// JoinedAt is the timestamp when the user joined the group. Every roster
	// replacement assigns a fresh value; prior join timestamps are not kept.
	JoinedAt time.Time `gorm:"not null"`
	// LeftAt is the timestamp when the user left the group, if they have.
	LeftAt *time.Time
	// IsActive indicates whether the user is still a member of the group.
	IsActive bool `gorm:"not null;default:true"`
}

// TableName specifies the database table name for the Membership model.
// This overrides GORM's default pluralized table naming.
func (Membership) TableName() string {
	return "user_group_memberships"
}
