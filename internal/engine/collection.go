package engine

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
)

// CreateGroupCollectionAndAddGroups creates a named collection and attaches
// the given groups to it.
func (s *Service) CreateGroupCollectionAndAddGroups(
	name string,
	description string,
	groupIDs []uint,
) (*models.GroupCollection, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var collection models.GroupCollection

	err := s.db.Transaction(func(tx *gorm.DB) error {
		collection = models.GroupCollection{Name: name, Description: description}
		if err := tx.Create(&collection).Error; err != nil {
			return err
		}

		for _, groupID := range groupIDs {
			var group models.Group

			err := tx.First(&group, groupID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrGroupNotFound
				}

				return err
			}

			if err := tx.Model(&collection).Association("Groups").Append(&group); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &collection, nil
}

// GetGroupCollectionByID returns the collection with its groups loaded.
func (s *Service) GetGroupCollectionByID(collectionID uint) (*models.GroupCollection, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var collection models.GroupCollection

	err := s.db.Preload("Groups").First(&collection, collectionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollectionNotFound
		}

		return nil, err
	}

	return &collection, nil
}

// EvaluateAndUpdateMembershipForGroupCollection evaluates every group in the
// collection, then enforces mutual exclusivity: users who ended up in more
// than one collection group are removed from all of them. The removed user
// IDs are returned so the caller can act on or audit the conflicts.
func (s *Service) EvaluateAndUpdateMembershipForGroupCollection(
	collectionID uint,
) (*models.GroupCollection, []uint64, error) {
	if s.db == nil {
		return nil, nil, ErrDBNil
	}

	collection, err := s.GetGroupCollectionByID(collectionID)
	if err != nil {
		return nil, nil, err
	}

	groupIDs := make([]uint, 0, len(collection.Groups))
	for _, group := range collection.Groups {
		groupIDs = append(groupIDs, group.ID)
	}

	// Group locks stay held until the transaction finishes so a concurrent
	// single-group evaluation cannot interleave with the uncommitted batch.
	unlock := s.locks.LockAll(groupIDs)
	defer unlock()

	var duplicates []uint64

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, groupID := range groupIDs {
			if err := s.evaluateAndReconcile(tx, groupID); err != nil {
				return err
			}
		}

		if len(groupIDs) == 0 {
			return nil
		}

		err := tx.Model(&models.Membership{}).
			Where("group_id IN ?", groupIDs).
			Group("user_id").
			Having("COUNT(DISTINCT group_id) > 1").
			Pluck("user_id", &duplicates).Error
		if err != nil {
			return err
		}

		if len(duplicates) == 0 {
			return nil
		}

		log.Warn().
			Uint("collection_id", collectionID).
			Int("duplicates", len(duplicates)).
			Msg("removing users matching multiple groups in collection")

		return tx.Where("user_id IN ? AND group_id IN ?", duplicates, groupIDs).
			Delete(&models.Membership{}).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return collection, duplicates, nil
}
