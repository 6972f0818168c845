package composer

import (
	"github.com/google/uuid"

	"segment-studio/internal/geometry"
)

// MaxDigitalHumans caps the global roster.
const MaxDigitalHumans = 3

// DefaultDigitalHumanScale is the scale of a newly added digital human.
const DefaultDigitalHumanScale = 1.0

// DigitalHumanScaleBounds is the valid scale range of roster entries.
var DigitalHumanScaleBounds = geometry.Bounds{Min: 0.3, Max: 3}

// Owner names a context that wants to mutate a shared resource. It is a
// display label compared by value, not an access-control token.
type Owner struct {
	Name string `json:"name"`
}

// DigitalHumanPatch is a partial roster entry update.
type DigitalHumanPatch struct {
	Name     *string            `json:"name,omitempty"`
	Position *geometry.Position `json:"position,omitempty"`
	Scale    *float64           `json:"scale,omitempty"`
}

// Roster is the single source of truth for the project's digital humans. Only
// the controller may change it; every segment with EnableDigitalHumans renders
// the live list.
type Roster struct {
	controller Owner
	humans     []DigitalHuman
}

// NewRoster returns an empty roster controlled by controller.
func NewRoster(controller Owner) *Roster {
	return &Roster{controller: controller}
}

// Controller returns the owner currently allowed to edit.
func (r *Roster) Controller() Owner {
	return r.controller
}

func (r *Roster) authorize(by Owner) error {
	if by != r.controller {
		return &RejectedError{Resource: "digital humans", Controller: r.controller.Name}
	}
	return nil
}

// Handover passes control to next. Only the current controller may do so.
func (r *Roster) Handover(by, next Owner) error {
	if err := r.authorize(by); err != nil {
		return err
	}
	r.controller = next
	return nil
}

// Add appends a digital human named name at the default placement.
func (r *Roster) Add(by Owner, name string) (DigitalHuman, error) {
	if err := r.authorize(by); err != nil {
		return DigitalHuman{}, err
	}
	if len(r.humans) >= MaxDigitalHumans {
		return DigitalHuman{}, ErrRosterFull
	}
	h := DigitalHuman{
		ID:       uuid.NewString(),
		Name:     name,
		Position: defaultOverlayPosition,
		Scale:    DefaultDigitalHumanScale,
	}
	r.humans = append(r.humans, h)
	return h, nil
}

// Update merges patch into the entry with id, clamping placement.
func (r *Roster) Update(by Owner, id string, patch DigitalHumanPatch) (DigitalHuman, error) {
	if err := r.authorize(by); err != nil {
		return DigitalHuman{}, err
	}
	i := r.indexOf(id)
	if i < 0 {
		return DigitalHuman{}, ErrDigitalHumanNotFound
	}
	h := &r.humans[i]
	if patch.Name != nil {
		h.Name = *patch.Name
	}
	if patch.Position != nil {
		h.Position = patch.Position.Clamp()
	}
	if patch.Scale != nil {
		h.Scale = DigitalHumanScaleBounds.Clamp(*patch.Scale)
	}
	return *h, nil
}

// Remove deletes the entry with id.
func (r *Roster) Remove(by Owner, id string) error {
	if err := r.authorize(by); err != nil {
		return err
	}
	i := r.indexOf(id)
	if i < 0 {
		return ErrDigitalHumanNotFound
	}
	r.humans = append(r.humans[:i:i], r.humans[i+1:]...)
	return nil
}

// Get returns a copy of the entry with id.
func (r *Roster) Get(id string) (DigitalHuman, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return DigitalHuman{}, false
	}
	return r.humans[i], true
}

// List returns the current roster in order.
func (r *Roster) List() []DigitalHuman {
	return append([]DigitalHuman(nil), r.humans...)
}

// Len returns the roster size.
func (r *Roster) Len() int {
	return len(r.humans)
}

func (r *Roster) indexOf(id string) int {
	for i, h := range r.humans {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// restore loads persisted entries, truncating to MaxDigitalHumans and
// clamping placement.
func (r *Roster) restore(humans []DigitalHuman) {
	r.humans = r.humans[:0]
	for _, h := range humans {
		if len(r.humans) == MaxDigitalHumans {
			break
		}
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		h.Position = h.Position.Clamp()
		h.Scale = DigitalHumanScaleBounds.Clamp(h.Scale)
		r.humans = append(r.humans, h)
	}
}
