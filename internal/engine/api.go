// Package engine implements the membership evaluation core: creating groups
// with validated criteria, the combinator intersecting criterion results, the
// roster reconciler and the group collection duplicate handling. It is
// invoked synchronously by the web handlers and asynchronously by the event
// worker pool.
package engine

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoUserGroups/GoUserGroups/internal/criteria"
	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
)

// ScopeSpec identifies the scope a group applies to. The (name, resource)
// pair is created on first use and immutable thereafter.
type ScopeSpec struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
}

// Service is the membership engine. It holds the database, the criterion
// registry built at startup, the backend client criteria evaluate against and
// the per-group reconciliation locks.
type Service struct {
	db       *gorm.DB
	registry *criteria.Registry
	backend  criteria.BackendClient
	locks    *groupLocks
}

// New creates the membership engine service.
func New(db *gorm.DB, registry *criteria.Registry, backend criteria.BackendClient) *Service {
	return &Service{
		db:       db,
		registry: registry,
		backend:  backend,
		locks:    newGroupLocks(),
	}
}

// Registry returns the criterion registry the engine was built with.
func (s *Service) Registry() *criteria.Registry {
	return s.registry
}

// Schemas returns the configuration schema of every registered criterion
// type, for callers building criterion input.
func (s *Service) Schemas() map[string]criteria.Schema {
	return s.registry.Schemas()
}

// getOrCreateScope finds or creates the scope for the given spec.
func getOrCreateScope(tx *gorm.DB, spec ScopeSpec) (*models.Scope, error) {
	scope := models.Scope{
		Name:         spec.Name,
		ResourceType: spec.ResourceType,
		ResourceID:   spec.ResourceID,
	}

	err := tx.Where(models.Scope{
		Name:         spec.Name,
		ResourceType: spec.ResourceType,
		ResourceID:   spec.ResourceID,
	}).Attrs(models.Scope{Description: spec.Description}).
		FirstOrCreate(&scope).Error
	if err != nil {
		return nil, err
	}

	return &scope, nil
}

// GetOrCreateGroupAndScope finds or creates a group and its scope. Both
// lookups are idempotent on their natural keys.
func (s *Service) GetOrCreateGroupAndScope(
	name string,
	description string,
	scopeSpec ScopeSpec,
) (*models.Group, *models.Scope, error) {
	if s.db == nil {
		return nil, nil, ErrDBNil
	}

	var (
		group models.Group
		scope *models.Scope
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error

		scope, err = getOrCreateScope(tx, scopeSpec)
		if err != nil {
			return err
		}

		group = models.Group{Name: name, ScopeID: scope.ID, Enabled: true}

		return tx.Where(models.Group{Name: name, ScopeID: scope.ID}).
			Attrs(models.Group{Description: description, Enabled: true}).
			FirstOrCreate(&group).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return &group, scope, nil
}

// bindCriteria validates every criterion spec against the resolved scope and
// returns the bound criteria. The first failure aborts with a
// CriterionValidationError naming the offending criterion.
func (s *Service) bindCriteria(
	scope *models.Scope,
	specs []criteria.Spec,
) ([]criteria.Criterion, error) {
	bound := make([]criteria.Criterion, 0, len(specs))

	for i, spec := range specs {
		criterionType, err := s.registry.Resolve(spec.CriterionType)
		if err != nil {
			return nil, &CriterionValidationError{
				Index:         i,
				CriterionType: spec.CriterionType,
				Err:           err,
			}
		}

		criterion, err := criterionType.Bind(
			spec.CriterionOperator,
			spec.CriterionConfig,
			scope,
			s.backend,
		)
		if err != nil {
			return nil, &CriterionValidationError{
				Index:         i,
				CriterionType: spec.CriterionType,
				Err:           err,
			}
		}

		bound = append(bound, criterion)
	}

	return bound, nil
}

// CreateGroupWithCriteria creates a group with the given criteria after
// validating each criterion's operator, configuration and scope
// compatibility. Any validation failure aborts the whole operation: no group
// and no criterion is persisted. The group name must be free within the
// scope.
func (s *Service) CreateGroupWithCriteria(
	name string,
	description string,
	scopeSpec ScopeSpec,
	criteriaSpecs []criteria.Spec,
) (*models.Group, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var group models.Group

	err := s.db.Transaction(func(tx *gorm.DB) error {
		scope, err := getOrCreateScope(tx, scopeSpec)
		if err != nil {
			return err
		}

		var existing models.Group

		err = tx.Where("name = ? AND scope_id = ?", name, scope.ID).First(&existing).Error
		if err == nil {
			return ErrDuplicateGroupName
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		bound, err := s.bindCriteria(scope, criteriaSpecs)
		if err != nil {
			return err
		}

		group = models.Group{
			Name:        name,
			Description: description,
			ScopeID:     scope.ID,
			Enabled:     true,
		}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		for _, criterion := range bound {
			spec := criterion.Serialize()
			row := models.Criterion{
				GroupID:           group.ID,
				CriterionType:     spec.CriterionType,
				CriterionOperator: spec.CriterionOperator,
				CriterionConfig:   spec.CriterionConfig,
			}

			if err := tx.Create(&row).Error; err != nil {
				return err
			}

			group.Criteria = append(group.Criteria, row)
		}

		group.Scope = *scope

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &group, nil
}

// CreateGroupWithCriteriaAndEvaluateMembership creates the group and
// immediately evaluates and commits its membership roster.
func (s *Service) CreateGroupWithCriteriaAndEvaluateMembership(
	name string,
	description string,
	scopeSpec ScopeSpec,
	criteriaSpecs []criteria.Spec,
) (*models.Group, error) {
	group, err := s.CreateGroupWithCriteria(name, description, scopeSpec, criteriaSpecs)
	if err != nil {
		return nil, err
	}

	if err := s.EvaluateAndUpdateMembershipForGroup(group.ID); err != nil {
		return nil, err
	}

	return group, nil
}

// GetGroupByID returns the group with its scope and criteria loaded.
func (s *Service) GetGroupByID(groupID uint) (*models.Group, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var group models.Group

	err := s.db.Preload("Scope").Preload("Criteria").First(&group, groupID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}

		return nil, err
	}

	return &group, nil
}

// GetGroupByNameAndScope returns the group with the given name in the scope.
func (s *Service) GetGroupByNameAndScope(name string, scopeID uint) (*models.Group, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var group models.Group

	err := s.db.Preload("Scope").Preload("Criteria").
		Where("name = ? AND scope_id = ?", name, scopeID).
		First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}

		return nil, err
	}

	return &group, nil
}

// GetGroupsForScope returns all groups attached to the given scope.
func (s *Service) GetGroupsForScope(scopeID uint) ([]models.Group, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var groups []models.Group

	err := s.db.Where("scope_id = ?", scopeID).Find(&groups).Error
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// GetGroupsForUser returns the groups the user is an active member of.
func (s *Service) GetGroupsForUser(userID uint64) ([]models.Group, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var groups []models.Group

	err := s.db.
		Joins("JOIN user_group_memberships ON user_group_memberships.group_id = user_groups.id").
		Where("user_group_memberships.user_id = ? AND user_group_memberships.is_active = ?", userID, true).
		Find(&groups).Error
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// GetGroupMembers returns the users currently in the group's roster.
func (s *Service) GetGroupMembers(groupID uint) ([]models.User, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var users []models.User

	err := s.db.
		Joins("JOIN user_group_memberships ON user_group_memberships.user_id = users.id").
		Where("user_group_memberships.group_id = ? AND user_group_memberships.is_active = ?", groupID, true).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// UpdateGroupNameOrDescription updates the group's name and description. The
// scope stays untouched; it cannot be changed after creation.
func (s *Service) UpdateGroupNameOrDescription(groupID uint, name, description string) error {
	if s.db == nil {
		return ErrDBNil
	}

	result := s.db.Model(&models.Group{}).
		Where("id = ?", groupID).
		Updates(map[string]any{"name": name, "description": description})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrGroupNotFound
	}

	return nil
}

// SoftDeleteGroup disables the group, excluding it from future evaluation
// while retaining its criteria and membership history.
func (s *Service) SoftDeleteGroup(groupID uint) error {
	if s.db == nil {
		return ErrDBNil
	}

	result := s.db.Model(&models.Group{}).
		Where("id = ?", groupID).
		Update("enabled", false)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrGroupNotFound
	}

	return nil
}

// HardDeleteGroup removes the group together with its criteria and
// memberships.
func (s *Service) HardDeleteGroup(groupID uint) error {
	if s.db == nil {
		return ErrDBNil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.Membership{}).Error; err != nil {
			return err
		}

		if err := tx.Where("group_id = ?", groupID).Delete(&models.Criterion{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Group{}, groupID)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrGroupNotFound
		}

		return nil
	})
}
