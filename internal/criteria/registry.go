package criteria

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Registry maps criterion type names to their implementations. It is built
// once at startup and treated as read-only afterwards; the event map is
// rebuilt from the full set of registered types on every registration rather
// than mutated incrementally.
type Registry struct {
	types    map[string]CriterionType
	order    []string
	eventMap map[string][]string
}

// NewRegistry builds a registry from the given criterion types.
func NewRegistry(types ...CriterionType) *Registry {
	r := &Registry{
		types: make(map[string]CriterionType, len(types)),
	}

	for _, ct := range types {
		r.Register(ct.Type(), ct)
	}

	return r
}

// Register associates a name with a criterion type. Registering the same name
// twice is not fatal: the collision is logged and the later registration
// wins. The name does not have to match ct.Type(), which allows aliases.
func (r *Registry) Register(name string, ct CriterionType) {
	if _, exists := r.types[name]; exists {
		log.Warn().
			Str("criterion_type", name).
			Msg("criterion type already registered, overriding")
	} else {
		r.order = append(r.order, name)
	}

	r.types[name] = ct
	r.rebuildEventMap()
}

// Resolve returns the criterion type registered under the given name.
// Unregistered names fail with ErrUnknownCriterionType; callers must treat
// this as a hard validation error.
func (r *Registry) Resolve(name string) (CriterionType, error) {
	ct, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCriterionType, name)
	}

	return ct, nil
}

// Types returns the registered type names in registration order.
func (r *Registry) Types() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}

// Schemas returns the configuration schema of every registered criterion
// type, keyed by registered name.
func (r *Registry) Schemas() map[string]Schema {
	out := make(map[string]Schema, len(r.types))
	for name, ct := range r.types {
		out[name] = ct.Schema()
	}

	return out
}

// EventMap returns the reverse mapping from domain event type to the
// registered criterion type names subscribing to it.
func (r *Registry) EventMap() map[string][]string {
	out := make(map[string][]string, len(r.eventMap))
	for event, names := range r.eventMap {
		out[event] = append([]string(nil), names...)
	}

	return out
}

// rebuildEventMap re-enumerates every registered type's event subscriptions.
func (r *Registry) rebuildEventMap() {
	eventMap := make(map[string][]string)

	for _, name := range r.order {
		for _, event := range r.types[name].Events() {
			eventMap[event] = append(eventMap[event], name)
		}
	}

	r.eventMap = eventMap
}

// DefaultRegistry builds the registry of built-in criterion types. The
// enrolled_with_specific_mode name is a legacy alias for enrollment_mode.
func DefaultRegistry() *Registry {
	r := NewRegistry(
		&LastLoginCriterionType{},
		&CourseEnrollmentCriterionType{},
		&ManualCriterionType{},
		&EnrollmentModeCriterionType{},
		&UserStaffStatusCriterionType{},
	)
	r.Register("enrolled_with_specific_mode", &EnrollmentModeCriterionType{})

	return r
}
