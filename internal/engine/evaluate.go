package engine

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoUserGroups/GoUserGroups/internal/criteria"
	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
)

// evaluateGroup runs every criterion attached to the group and reduces the
// per-criterion user sets into the final membership set. A group with zero
// criteria has no automatic members; otherwise the result is the set
// intersection of all criteria (AND semantics). Any criterion error aborts
// the whole evaluation: partial intersections are never committed.
func (s *Service) evaluateGroup(group *models.Group) (criteria.UserSet, error) {
	results := make([]criteria.UserSet, 0, len(group.Criteria))

	for _, row := range group.Criteria {
		criterionType, err := s.registry.Resolve(row.CriterionType)
		if err != nil {
			return nil, err
		}

		bound, err := criterionType.Bind(
			row.CriterionOperator,
			row.CriterionConfig,
			&group.Scope,
			s.backend,
		)
		if err != nil {
			return nil, err
		}

		result, err := bound.Evaluate()
		if err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	if len(results) == 0 {
		return criteria.UserSet{}, nil
	}

	users := results[0]
	for _, result := range results[1:] {
		users = users.Intersect(result)
	}

	return users, nil
}

// reconcile replaces the group's full membership roster with exactly the
// given user set inside the caller's transaction. Every member gets a fresh
// joined-at timestamp; prior join timestamps are not preserved. The group's
// last membership change marker is bumped in the same unit of work.
func reconcile(tx *gorm.DB, group *models.Group, users criteria.UserSet) error {
	if err := tx.Where("group_id = ?", group.ID).Delete(&models.Membership{}).Error; err != nil {
		return err
	}

	now := time.Now().UTC()

	if len(users) > 0 {
		memberships := make([]models.Membership, 0, len(users))
		for _, userID := range users.IDs() {
			memberships = append(memberships, models.Membership{
				UserID:   userID,
				GroupID:  group.ID,
				JoinedAt: now,
				IsActive: true,
			})
		}

		if err := tx.Create(&memberships).Error; err != nil {
			return err
		}

		membershipsWritten.Add(float64(len(memberships)))
	}

	return tx.Model(&models.Group{}).
		Where("id = ?", group.ID).
		Update("last_membership_change", now).Error
}

// evaluateAndReconcile loads the group, evaluates its criteria and swaps the
// roster, all within the given transaction.
func (s *Service) evaluateAndReconcile(tx *gorm.DB, groupID uint) error {
	var group models.Group

	err := tx.Preload("Scope").Preload("Criteria").First(&group, groupID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}

		return err
	}

	users, err := s.evaluateGroup(&group)
	if err != nil {
		evaluationsTotal.WithLabelValues("error").Inc()
		return err
	}

	if err := reconcile(tx, &group, users); err != nil {
		evaluationsTotal.WithLabelValues("error").Inc()
		return err
	}

	evaluationsTotal.WithLabelValues("success").Inc()
	log.Debug().
		Uint("group_id", group.ID).
		Int("members", len(users)).
		Msg("group membership reconciled")

	return nil
}

// EvaluateAndUpdateMembershipForGroup evaluates the group's criteria and
// atomically replaces its membership roster. Concurrent calls for the same
// group are serialized; callers for different groups run in parallel.
func (s *Service) EvaluateAndUpdateMembershipForGroup(groupID uint) error {
	if s.db == nil {
		return ErrDBNil
	}

	unlock := s.locks.Lock(groupID)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.evaluateAndReconcile(tx, groupID)
	})
}

// EvaluateAndUpdateMembershipForMultipleGroups evaluates and reconciles each
// group within one overarching transaction: the batch commits or rolls back
// as a whole. Every group's lock is held until the transaction finishes, so
// a concurrent single-group evaluation cannot interleave with an uncommitted
// batch and overwrite its roster.
func (s *Service) EvaluateAndUpdateMembershipForMultipleGroups(groupIDs []uint) error {
	if s.db == nil {
		return ErrDBNil
	}

	unlock := s.locks.LockAll(groupIDs)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, groupID := range groupIDs {
			if err := s.evaluateAndReconcile(tx, groupID); err != nil {
				return err
			}
		}

		return nil
	})
}
