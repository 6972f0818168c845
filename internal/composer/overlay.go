package composer

import (
	"github.com/google/uuid"

	"segment-studio/internal/geometry"
)

// OverlayKind is the type of a segment-scoped overlay.
type OverlayKind string

const (
	OverlayText    OverlayKind = "text"
	OverlaySticker OverlayKind = "sticker"
)

const (
	DefaultFontSize     = 32.0
	DefaultStickerScale = 1.0
)

var (
	FontSizeBounds     = geometry.Bounds{Min: 12, Max: 120}
	StickerScaleBounds = geometry.Bounds{Min: 0.3, Max: 3}

	defaultOverlayPosition = geometry.Position{X: 50, Y: 50}
)

// Overlay is an animated text or sticker placed on one segment.
type Overlay struct {
	ID         OverlayID         `json:"id" yaml:"id"`
	Kind       OverlayKind       `json:"type" yaml:"type"`
	SegmentID  SegmentID         `json:"segmentId" yaml:"segmentId"`
	Content    string            `json:"content" yaml:"content"`
	MaterialID MaterialID        `json:"materialId,omitempty" yaml:"materialId,omitempty"`
	Position   geometry.Position `json:"position" yaml:"position"`
	Scale      float64           `json:"scale,omitempty" yaml:"scale,omitempty"`
	FontSize   float64           `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	Template   string            `json:"template,omitempty" yaml:"template,omitempty"`
}

// Size returns the kind's size value: font size for text, scale for stickers.
func (o Overlay) Size() float64 {
	if o.Kind == OverlayText {
		return o.FontSize
	}
	return o.Scale
}

// SizeBounds returns the valid range of Size for the overlay's kind.
func (o Overlay) SizeBounds() geometry.Bounds {
	return sizeBounds(o.Kind)
}

func sizeBounds(kind OverlayKind) geometry.Bounds {
	if kind == OverlayText {
		return FontSizeBounds
	}
	return StickerScaleBounds
}

func validKind(kind OverlayKind) bool {
	return kind == OverlayText || kind == OverlaySticker
}

// OverlayPatch is a partial overlay update; nil fields are left untouched.
type OverlayPatch struct {
	Content    *string            `json:"content,omitempty"`
	MaterialID *MaterialID        `json:"materialId,omitempty"`
	Position   *geometry.Position `json:"position,omitempty"`
	Scale      *float64           `json:"scale,omitempty"`
	FontSize   *float64           `json:"fontSize,omitempty"`
	Template   *string            `json:"template,omitempty"`
}

func (p OverlayPatch) applyTo(o *Overlay) {
	if p.Content != nil {
		o.Content = *p.Content
	}
	if p.MaterialID != nil {
		o.MaterialID = *p.MaterialID
	}
	if p.Position != nil {
		o.Position = p.Position.Clamp()
	}
	if p.Template != nil {
		o.Template = *p.Template
	}
	switch o.Kind {
	case OverlayText:
		if p.FontSize != nil {
			o.FontSize = FontSizeBounds.Clamp(*p.FontSize)
		}
	case OverlaySticker:
		if p.Scale != nil {
			o.Scale = StickerScaleBounds.Clamp(*p.Scale)
		}
	}
}

// OverlaySet holds the text and sticker overlays of a project in creation
// order. It is not safe for concurrent use; the owning Session serialises
// access.
type OverlaySet struct {
	order []OverlayID
	items map[OverlayID]*Overlay
}

// NewOverlaySet returns an empty set.
func NewOverlaySet() *OverlaySet {
	return &OverlaySet{items: make(map[OverlayID]*Overlay)}
}

// Create adds an overlay of kind to segmentID with kind defaults, then merges
// defaults on top.
func (s *OverlaySet) Create(kind OverlayKind, segmentID SegmentID, defaults OverlayPatch) (Overlay, error) {
	if !validKind(kind) {
		return Overlay{}, ErrUnknownOverlayKind
	}
	o := &Overlay{
		ID:        OverlayID(uuid.NewString()),
		Kind:      kind,
		SegmentID: segmentID,
		Position:  defaultOverlayPosition,
	}
	if kind == OverlayText {
		o.FontSize = DefaultFontSize
	} else {
		o.Scale = DefaultStickerScale
	}
	defaults.applyTo(o)
	s.insert(o)
	return *o, nil
}

func (s *OverlaySet) insert(o *Overlay) {
	if _, exists := s.items[o.ID]; !exists {
		s.order = append(s.order, o.ID)
	}
	s.items[o.ID] = o
}

// Get returns a copy of the overlay with id.
func (s *OverlaySet) Get(id OverlayID) (Overlay, bool) {
	o, ok := s.items[id]
	if !ok {
		return Overlay{}, false
	}
	return *o, true
}

// UpdatePosition moves the overlay, clamping both axes to [0,100].
func (s *OverlaySet) UpdatePosition(id OverlayID, x, y float64) (Overlay, error) {
	pos := geometry.Position{X: x, Y: y}
	return s.Update(id, OverlayPatch{Position: &pos})
}

// UpdateScale sets the kind's size value (font size for text, scale for
// stickers), clamped to the kind's range.
func (s *OverlaySet) UpdateScale(id OverlayID, value float64) (Overlay, error) {
	o, ok := s.items[id]
	if !ok {
		return Overlay{}, ErrOverlayNotFound
	}
	if o.Kind == OverlayText {
		return s.Update(id, OverlayPatch{FontSize: &value})
	}
	return s.Update(id, OverlayPatch{Scale: &value})
}

// Update merges patch into the overlay.
func (s *OverlaySet) Update(id OverlayID, patch OverlayPatch) (Overlay, error) {
	o, ok := s.items[id]
	if !ok {
		return Overlay{}, ErrOverlayNotFound
	}
	patch.applyTo(o)
	return *o, nil
}

// Remove deletes the overlay with id.
func (s *OverlaySet) Remove(id OverlayID) error {
	if _, ok := s.items[id]; !ok {
		return ErrOverlayNotFound
	}
	delete(s.items, id)
	s.compact()
	return nil
}

// RemoveForSegments deletes every overlay owned by one of ids and returns how
// many were removed.
func (s *OverlaySet) RemoveForSegments(ids map[SegmentID]struct{}) int {
	n := 0
	for id, o := range s.items {
		if _, hit := ids[o.SegmentID]; hit {
			delete(s.items, id)
			n++
		}
	}
	if n > 0 {
		s.compact()
	}
	return n
}

func (s *OverlaySet) compact() {
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.items[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

// ForSegment returns the overlays owned by segmentID in creation order.
func (s *OverlaySet) ForSegment(segmentID SegmentID) []Overlay {
	var out []Overlay
	for _, id := range s.order {
		if o := s.items[id]; o.SegmentID == segmentID {
			out = append(out, *o)
		}
	}
	return out
}

// All returns every overlay in creation order.
func (s *OverlaySet) All() []Overlay {
	out := make([]Overlay, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

// Len returns the number of overlays.
func (s *OverlaySet) Len() int {
	return len(s.order)
}

// restore loads persisted overlays, re-clamping their geometry.
func (s *OverlaySet) restore(overlays []Overlay) {
	for _, o := range overlays {
		if !validKind(o.Kind) {
			continue
		}
		o := o
		o.Position = o.Position.Clamp()
		if o.Kind == OverlayText {
			o.FontSize = FontSizeBounds.Clamp(o.FontSize)
		} else {
			o.Scale = StickerScaleBounds.Clamp(o.Scale)
		}
		s.insert(&o)
	}
}
