package criteria

import (
	"gorm.io/gorm"

	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
)

// BackendClient is the narrow interface criterion types use to fetch candidate
// user sets for a scope. Which users are visible within a scope (for instance
// excluding operators' accounts) is backend policy, not a criterion concern.
type BackendClient interface {
	// GetUsers returns all users visible within the given scope.
	GetUsers(scope *models.Scope) ([]models.User, error)
	// GetEnrollments returns all course enrollments within the given scope.
	GetEnrollments(scope *models.Scope) ([]models.Enrollment, error)
}

// GormBackendClient is the default backend client, querying the projected
// user and enrollment tables through GORM.
type GormBackendClient struct {
	db *gorm.DB
}

// NewGormBackendClient creates a backend client over the given database.
func NewGormBackendClient(db *gorm.DB) *GormBackendClient {
	return &GormBackendClient{db: db}
}

// GetUsers returns all users in the instance except accounts that are both
// staff and superuser, which are operator accounts and never group members.
func (c *GormBackendClient) GetUsers(_ *models.Scope) ([]models.User, error) {
	var users []models.User

	result := c.db.
		Not("is_staff = ? AND is_superuser = ?", true, true).
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

// GetEnrollments returns all enrollments for the course the scope references.
func (c *GormBackendClient) GetEnrollments(scope *models.Scope) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment

	result := c.db.
		Where("course_id = ?", scope.ResourceID).
		Find(&enrollments)
	if result.Error != nil {
		return nil, result.Error
	}

	return enrollments, nil
}
