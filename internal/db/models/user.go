package models

import "time"

// User represents a platform user account as seen by the membership engine.
// The engine never creates or authenticates users; user rows are a read-model
// projection of the platform's account table that criteria evaluate against.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the user account is active.
	Active bool `gorm:"not null;default:true"`
	// Username is the unique username of the account.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the user's email address.
	Email string `gorm:"size:255;not null;index"`
	// IsStaff indicates whether the user is a staff member.
	IsStaff bool `gorm:"not null;default:false"`
	// IsSuperuser indicates whether the user is a superuser.
	IsSuperuser bool `gorm:"not null;default:false"`
	// LastLogin is the timestamp of the user's most recent login, nil if the
	// user has never logged in.
	LastLogin *time.Time `gorm:"index"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the User model.
// This overrides GORM's default pluralized table naming.
func (User) TableName() string {
	return "users"
}
