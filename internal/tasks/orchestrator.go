// Package tasks implements the event-driven side of the membership engine:
// the impact analyzer deciding which groups an incoming domain event makes
// stale, and the worker pool consuming the inbound event queue.
package tasks

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
	"github.com/GoUserGroups/GoUserGroups/internal/engine"
	"github.com/GoUserGroups/GoUserGroups/internal/events"
)

// Orchestrator maps an incoming domain event to the minimal set of groups
// whose membership must be re-evaluated. The event map is the immutable
// reverse subscription table built from the criterion registry at startup; it
// is passed in explicitly rather than read from shared state.
type Orchestrator struct {
	db       *gorm.DB
	engine   *engine.Service
	eventMap map[string][]string
}

// NewOrchestrator creates an orchestrator over the given engine and reverse
// event subscription map.
func NewOrchestrator(db *gorm.DB, eng *engine.Service, eventMap map[string][]string) *Orchestrator {
	return &Orchestrator{db: db, engine: eng, eventMap: eventMap}
}

// HandleEvent runs the impact analysis for one event and re-evaluates exactly
// the affected groups. Events without a subject user or without subscribed
// criterion types are valid steady states, not errors.
func (o *Orchestrator) HandleEvent(event events.Event) error {
	userID, ok := event.UserID()
	if !ok {
		log.Debug().Str("event_type", event.Type).Msg("event has no subject user, skipping")
		eventsObserved.WithLabelValues("no_subject").Inc()

		return nil
	}

	affectedTypes := o.eventMap[event.Type]
	if len(affectedTypes) == 0 {
		log.Debug().Str("event_type", event.Type).Msg("no criterion types subscribe to event, skipping")
		eventsObserved.WithLabelValues("no_subscribers").Inc()

		return nil
	}

	// Enabled groups carrying at least one criterion of an affected type.
	affectedGroups, err := o.affectedGroupIDs(affectedTypes)
	if err != nil {
		return err
	}

	if len(affectedGroups) == 0 {
		eventsObserved.WithLabelValues("no_groups").Inc()
		return nil
	}

	memberships, err := o.userMemberships(userID, affectedGroups)
	if err != nil {
		return err
	}

	// A user with no memberships might newly qualify for any affected group.
	if len(memberships) == 0 {
		eventsObserved.WithLabelValues("processed").Inc()
		return o.reevaluate(affectedGroups)
	}

	toUpdate := make(map[uint]struct{})
	currentGroups := make(map[uint]struct{}, len(memberships))

	for _, membership := range memberships {
		currentGroups[membership.GroupID] = struct{}{}

		for _, criterion := range membership.Group.Criteria {
			if !containsType(affectedTypes, criterion.CriterionType) {
				continue
			}

			if membershipStateChanged(event.Data, criterion.CriterionConfig) {
				toUpdate[membership.GroupID] = struct{}{}
			}
		}
	}

	// The user may now newly qualify for affected groups they are not in.
	for _, groupID := range affectedGroups {
		if _, member := currentGroups[groupID]; !member {
			toUpdate[groupID] = struct{}{}
		}
	}

	eventsObserved.WithLabelValues("processed").Inc()

	if len(toUpdate) == 0 {
		return nil
	}

	groupIDs := make([]uint, 0, len(toUpdate))
	for groupID := range toUpdate {
		groupIDs = append(groupIDs, groupID)
	}

	sort.Slice(groupIDs, func(i, j int) bool { return groupIDs[i] < groupIDs[j] })

	return o.reevaluate(groupIDs)
}

// affectedGroupIDs returns the enabled groups carrying at least one criterion
// whose type is in the affected set.
func (o *Orchestrator) affectedGroupIDs(affectedTypes []string) ([]uint, error) {
	subquery := o.db.Model(&models.Criterion{}).
		Distinct("group_id").
		Where("criterion_type IN ?", affectedTypes)

	var groupIDs []uint

	err := o.db.Model(&models.Group{}).
		Where("enabled = ? AND id IN (?)", true, subquery).
		Order("id").
		Pluck("id", &groupIDs).Error
	if err != nil {
		return nil, err
	}

	return groupIDs, nil
}

// userMemberships returns the user's active memberships among the given
// groups, with each group's criteria loaded.
func (o *Orchestrator) userMemberships(userID uint64, groupIDs []uint) ([]models.Membership, error) {
	var memberships []models.Membership

	err := o.db.Preload("Group.Criteria").
		Where("user_id = ? AND is_active = ? AND group_id IN ?", userID, true, groupIDs).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	return memberships, nil
}

func (o *Orchestrator) reevaluate(groupIDs []uint) error {
	log.Info().Int("groups", len(groupIDs)).Msg("re-evaluating groups for event")
	groupsReevaluated.Add(float64(len(groupIDs)))

	return o.engine.EvaluateAndUpdateMembershipForMultipleGroups(groupIDs)
}

func containsType(types []string, name string) bool {
	for _, t := range types {
		if t == name {
			return true
		}
	}

	return false
}

// membershipStateChanged is the staleness heuristic: a shallow key-by-key
// comparison of the criterion configuration against the event payload.
// A configuration key absent from the payload means there is not enough
// information to decide, and the answer is "not changed" — a conservative
// choice that can under-trigger re-evaluation. Present keys with differing
// values mean "changed". The heuristic does not understand operator
// semantics; it is a performance/correctness tradeoff, not a semantic diff.
func membershipStateChanged(eventData map[string]any, config json.RawMessage) bool {
	var configMap map[string]any
	if err := json.Unmarshal(config, &configMap); err != nil {
		return false
	}

	for key, configValue := range configMap {
		eventValue, present := eventData[key]
		if !present {
			return false
		}

		if !jsonEqual(eventValue, configValue) {
			return true
		}
	}

	return false
}

// jsonEqual compares two loosely typed values through their JSON encoding,
// normalizing the int/float64 mismatch between decoded payloads and in-memory
// event data.
func jsonEqual(a, b any) bool {
	rawA, errA := json.Marshal(a)
	rawB, errB := json.Marshal(b)

	if errA != nil || errB != nil {
		return false
	}

	return bytes.Equal(rawA, rawB)
}
