package composer

import (
	"segment-studio/internal/geometry"
)

// ElementID identifies anything placeable on the preview surface: overlay ids
// and digital human ids share this space.
type ElementID string

// Handle is the part of an element a pointer went down on.
type Handle string

const (
	HandleBody   Handle = "body"
	HandleResize Handle = "resize"
)

// InteractionState is one of Idle, Dragging or Resizing.
type InteractionState interface {
	interaction()
}

// Idle means no element is being manipulated.
type Idle struct{}

// Dragging moves ElementID; Anchor is the pointer offset captured at start.
type Dragging struct {
	ElementID ElementID
	Anchor    geometry.Point
	Last      geometry.Position
}

// Resizing scales ElementID relative to the distance and size captured at
// start.
type Resizing struct {
	ElementID     ElementID
	Center        geometry.Point
	StartDistance float64
	StartSize     float64
}

func (Idle) interaction()     {}
func (Dragging) interaction() {}
func (Resizing) interaction() {}

// Geometry is what the surface needs to know about an element.
type Geometry struct {
	Position geometry.Position
	Size     float64
	Bounds   geometry.Bounds
	Mapping  geometry.Mapping
}

// Placeable is a collection of elements the surface can move and resize.
type Placeable interface {
	Geometry(id ElementID) (Geometry, error)
	Place(id ElementID, pos geometry.Position) error
	Resize(id ElementID, size float64) error
}

// Surface is the bounded preview area on which overlays are dragged and
// resized. One element at most is manipulated at a time; the latest
// pointer-down wins.
type Surface struct {
	container geometry.Rect
	state     InteractionState
	target    Placeable
	zOrder    []ElementID
}

// NewSurface returns an idle surface over container.
func NewSurface(container geometry.Rect) *Surface {
	return &Surface{container: container, state: Idle{}}
}

// SetContainer updates the surface bounds (e.g. after a layout change).
func (s *Surface) SetContainer(r geometry.Rect) {
	s.container = r
}

// Container returns the surface bounds.
func (s *Surface) Container() geometry.Rect {
	return s.container
}

// State returns the current interaction state.
func (s *Surface) State() InteractionState {
	return s.state
}

// PointerDown starts dragging (HandleBody) or resizing (HandleResize) id on
// target. Any interaction in progress ends first. On error the surface stays
// Idle.
func (s *Surface) PointerDown(target Placeable, id ElementID, handle Handle, pointer geometry.Point) error {
	s.state = Idle{}
	s.target = nil

	g, err := target.Geometry(id)
	if err != nil {
		return err
	}

	s.target = target
	s.raise(id)

	if handle == HandleResize {
		center := geometry.ToPixels(s.container, g.Position)
		s.state = Resizing{
			ElementID:     id,
			Center:        center,
			StartDistance: geometry.Distance(center, pointer),
			StartSize:     g.Size,
		}
		return nil
	}
	s.state = Dragging{
		ElementID: id,
		Anchor:    geometry.AnchorOffset(s.container, pointer, g.Position),
		Last:      g.Position,
	}
	return nil
}

// PointerMove applies the pointer to the element being manipulated. It is a
// no-op while Idle.
func (s *Surface) PointerMove(pointer geometry.Point) error {
	switch st := s.state.(type) {
	case Dragging:
		pos := geometry.Normalize(s.container, pointer, st.Anchor, st.Last)
		if err := s.target.Place(st.ElementID, pos); err != nil {
			s.reset()
			return err
		}
		st.Last = pos
		s.state = st
	case Resizing:
		g, err := s.target.Geometry(st.ElementID)
		if err != nil {
			s.reset()
			return err
		}
		size := geometry.ScaleFromDistance(g.Mapping, st.StartDistance, geometry.Distance(st.Center, pointer), st.StartSize, g.Bounds)
		if err := s.target.Resize(st.ElementID, size); err != nil {
			s.reset()
			return err
		}
	}
	return nil
}

// PointerUp ends the interaction.
func (s *Surface) PointerUp() {
	s.reset()
}

// PointerLeave ends the interaction when the pointer leaves the surface.
func (s *Surface) PointerLeave() {
	s.reset()
}

func (s *Surface) reset() {
	s.state = Idle{}
	s.target = nil
}

func (s *Surface) raise(id ElementID) {
	for i, e := range s.zOrder {
		if e == id {
			s.zOrder = append(s.zOrder[:i], s.zOrder[i+1:]...)
			break
		}
	}
	s.zOrder = append(s.zOrder, id)
}

// ZOrder returns interacted elements from bottom to top.
func (s *Surface) ZOrder() []ElementID {
	return append([]ElementID(nil), s.zOrder...)
}

// ZIndex is 0 for elements never interacted with and grows with recency.
func (s *Surface) ZIndex(id ElementID) int {
	for i, e := range s.zOrder {
		if e == id {
			return i + 1
		}
	}
	return 0
}

// Forget drops id from the z-order, e.g. after the element is removed. An
// interaction on it is ended.
func (s *Surface) Forget(id ElementID) {
	for i, e := range s.zOrder {
		if e == id {
			s.zOrder = append(s.zOrder[:i], s.zOrder[i+1:]...)
			break
		}
	}
	switch st := s.state.(type) {
	case Dragging:
		if st.ElementID == id {
			s.reset()
		}
	case Resizing:
		if st.ElementID == id {
			s.reset()
		}
	}
}

// textResizeGain is font-size points per pixel of pointer travel.
const textResizeGain = 0.5

// OverlayTarget exposes an OverlaySet to the surface.
type OverlayTarget struct {
	Overlays *OverlaySet
}

// Geometry implements Placeable.
func (t OverlayTarget) Geometry(id ElementID) (Geometry, error) {
	o, ok := t.Overlays.Get(OverlayID(id))
	if !ok {
		return Geometry{}, ErrOverlayNotFound
	}
	mapping := geometry.Ratio
	if o.Kind == OverlayText {
		mapping = geometry.LinearMapping(textResizeGain)
	}
	return Geometry{Position: o.Position, Size: o.Size(), Bounds: o.SizeBounds(), Mapping: mapping}, nil
}

// Place implements Placeable.
func (t OverlayTarget) Place(id ElementID, pos geometry.Position) error {
	_, err := t.Overlays.UpdatePosition(OverlayID(id), pos.X, pos.Y)
	return err
}

// Resize implements Placeable.
func (t OverlayTarget) Resize(id ElementID, size float64) error {
	_, err := t.Overlays.UpdateScale(OverlayID(id), size)
	return err
}

// RosterTarget exposes the digital-human roster to the surface on behalf of
// Actor. A non-controlling actor is rejected at pointer-down.
type RosterTarget struct {
	Roster *Roster
	Actor  Owner
}

// Geometry implements Placeable.
func (t RosterTarget) Geometry(id ElementID) (Geometry, error) {
	h, ok := t.Roster.Get(string(id))
	if !ok {
		return Geometry{}, ErrDigitalHumanNotFound
	}
	if err := t.Roster.authorize(t.Actor); err != nil {
		return Geometry{}, err
	}
	return Geometry{Position: h.Position, Size: h.Scale, Bounds: DigitalHumanScaleBounds, Mapping: geometry.Ratio}, nil
}

// Place implements Placeable.
func (t RosterTarget) Place(id ElementID, pos geometry.Position) error {
	_, err := t.Roster.Update(t.Actor, string(id), DigitalHumanPatch{Position: &pos})
	return err
}

// Resize implements Placeable.
func (t RosterTarget) Resize(id ElementID, size float64) error {
	_, err := t.Roster.Update(t.Actor, string(id), DigitalHumanPatch{Scale: &size})
	return err
}
