package models

import "time"

// Enrollment represents a user's enrollment in a course, projected from the
// platform's enrollment table. Enrollment-based criteria filter on the mode
// and enrollment date of these rows.
type Enrollment struct {
	// ID is the unique identifier for the enrollment.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the ID of the enrolled user.
	UserID uint64 `gorm:"not null;index"`
	// User is the enrolled user (loaded via foreign key).
	// When a user is deleted, their enrollments are automatically removed (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// CourseID is the opaque identifier of the course.
	CourseID string `gorm:"size:255;not null;index"`
	// Mode is the enrollment mode (e.g. "audit", "verified", "honor").
	Mode string `gorm:"size:100;not null"`
	// IsActive indicates whether the enrollment is active.
	IsActive bool `gorm:"not null;default:true"`
	// CreatedAt is the timestamp when the enrollment was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Enrollment model.
// This overrides GORM's default pluralized table naming.
func (Enrollment) TableName() string {
	return "course_enrollments"
}
