package composer

import (
	"errors"
	"math"
	"testing"

	"segment-studio/internal/geometry"
)

var testContainer = geometry.Rect{Left: 0, Top: 0, Width: 400, Height: 200}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func nearPos(a, b geometry.Position) bool {
	return near(a.X, b.X) && near(a.Y, b.Y)
}

func TestSurface_drag_keeps_anchor(t *testing.T) {
	set := NewOverlaySet()
	o, _ := set.Create(OverlayText, "seg", OverlayPatch{})
	target := OverlayTarget{Overlays: set}
	s := NewSurface(testContainer)

	// Overlay sits at (50,50) = pixel (200,100); grab it 10px right, 5px down.
	if err := s.PointerDown(target, ElementID(o.ID), HandleBody, geometry.Point{X: 210, Y: 105}); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.State().(Dragging); !ok {
		t.Fatalf("expected Dragging, got %T", s.State())
	}

	if err := s.PointerMove(geometry.Point{X: 250, Y: 115}); err != nil {
		t.Fatal(err)
	}
	got, _ := set.Get(o.ID)
	if !nearPos(got.Position, geometry.Position{X: 60, Y: 55}) {
		t.Fatalf("expected (60,55), got %+v", got.Position)
	}

	// Many moves must not accumulate error.
	for i := 0; i < 200; i++ {
		s.PointerMove(geometry.Point{X: 210 + float64(i%7), Y: 105 + float64(i%3)})
	}
	s.PointerMove(geometry.Point{X: 210, Y: 105})
	got, _ = set.Get(o.ID)
	if !nearPos(got.Position, geometry.Position{X: 50, Y: 50}) {
		t.Errorf("drag drifted: %+v", got.Position)
	}

	t.Run("clamped_at_edges", func(t *testing.T) {
		s.PointerMove(geometry.Point{X: -500, Y: 900})
		got, _ := set.Get(o.ID)
		if got.Position != (geometry.Position{X: 0, Y: 100}) {
			t.Errorf("expected clamp to (0,100), got %+v", got.Position)
		}
	})

	s.PointerUp()
	if _, ok := s.State().(Idle); !ok {
		t.Errorf("expected Idle after pointer up, got %T", s.State())
	}
	if err := s.PointerMove(geometry.Point{X: 100, Y: 100}); err != nil {
		t.Errorf("move while idle should be a no-op, got %v", err)
	}
}

func TestSurface_resize_relative_to_start(t *testing.T) {
	set := NewOverlaySet()
	sticker, _ := set.Create(OverlaySticker, "seg", OverlayPatch{})
	text, _ := set.Create(OverlayText, "seg", OverlayPatch{})
	target := OverlayTarget{Overlays: set}
	s := NewSurface(testContainer)

	// Center is pixel (200,100); start 20px away.
	s.PointerDown(target, ElementID(sticker.ID), HandleResize, geometry.Point{X: 220, Y: 100})
	if _, ok := s.State().(Resizing); !ok {
		t.Fatalf("expected Resizing, got %T", s.State())
	}

	s.PointerMove(geometry.Point{X: 240, Y: 100})
	if got, _ := set.Get(sticker.ID); !near(got.Scale, 2) {
		t.Errorf("doubling the distance should double the scale, got %v", got.Scale)
	}
	s.PointerMove(geometry.Point{X: 230, Y: 100})
	if got, _ := set.Get(sticker.ID); !near(got.Scale, 1.5) {
		t.Errorf("scale must be relative to the start distance, got %v", got.Scale)
	}
	s.PointerMove(geometry.Point{X: 1000, Y: 100})
	if got, _ := set.Get(sticker.ID); got.Scale != StickerScaleBounds.Max {
		t.Errorf("scale not clamped: %v", got.Scale)
	}
	s.PointerLeave()

	s.PointerDown(target, ElementID(text.ID), HandleResize, geometry.Point{X: 220, Y: 100})
	s.PointerMove(geometry.Point{X: 260, Y: 100})
	if got, _ := set.Get(text.ID); !near(got.FontSize, 52) {
		t.Errorf("expected font size 32+40*0.5=52, got %v", got.FontSize)
	}
}

func TestSurface_last_pointer_down_wins(t *testing.T) {
	set := NewOverlaySet()
	a, _ := set.Create(OverlayText, "seg", OverlayPatch{})
	b, _ := set.Create(OverlaySticker, "seg", OverlayPatch{})
	target := OverlayTarget{Overlays: set}
	s := NewSurface(testContainer)

	s.PointerDown(target, ElementID(a.ID), HandleBody, geometry.Point{X: 200, Y: 100})
	s.PointerDown(target, ElementID(b.ID), HandleBody, geometry.Point{X: 200, Y: 100})

	st, ok := s.State().(Dragging)
	if !ok || st.ElementID != ElementID(b.ID) {
		t.Fatalf("expected dragging %s, got %+v", b.ID, s.State())
	}
	s.PointerMove(geometry.Point{X: 100, Y: 50})

	if got, _ := set.Get(a.ID); got.Position != a.Position {
		t.Errorf("first element should not move, got %+v", got.Position)
	}
	if got, _ := set.Get(b.ID); !nearPos(got.Position, geometry.Position{X: 25, Y: 25}) {
		t.Errorf("second element should follow pointer, got %+v", got.Position)
	}

	if s.ZIndex(ElementID(b.ID)) <= s.ZIndex(ElementID(a.ID)) {
		t.Errorf("last interacted element should be on top: %v", s.ZOrder())
	}

	s.PointerDown(target, ElementID(a.ID), HandleBody, geometry.Point{X: 200, Y: 100})
	order := s.ZOrder()
	if len(order) != 2 || order[1] != ElementID(a.ID) {
		t.Errorf("z-order should move a to the top without duplicates: %v", order)
	}
}

func TestSurface_zero_size_container(t *testing.T) {
	set := NewOverlaySet()
	o, _ := set.Create(OverlayText, "seg", OverlayPatch{})
	s := NewSurface(geometry.Rect{})

	s.PointerDown(OverlayTarget{Overlays: set}, ElementID(o.ID), HandleBody, geometry.Point{X: 10, Y: 10})
	if err := s.PointerMove(geometry.Point{X: 90, Y: 90}); err != nil {
		t.Fatal(err)
	}
	got, _ := set.Get(o.ID)
	if got.Position != o.Position {
		t.Errorf("position should be unchanged in a zero-size container, got %+v", got.Position)
	}
}

func TestSurface_unknown_element(t *testing.T) {
	s := NewSurface(testContainer)
	err := s.PointerDown(OverlayTarget{Overlays: NewOverlaySet()}, "missing", HandleBody, geometry.Point{})
	if !errors.Is(err, ErrOverlayNotFound) {
		t.Fatalf("expected ErrOverlayNotFound, got %v", err)
	}
	if _, ok := s.State().(Idle); !ok {
		t.Errorf("expected Idle, got %T", s.State())
	}
}

func TestSurface_Forget_ends_interaction(t *testing.T) {
	set := NewOverlaySet()
	o, _ := set.Create(OverlayText, "seg", OverlayPatch{})
	s := NewSurface(testContainer)

	s.PointerDown(OverlayTarget{Overlays: set}, ElementID(o.ID), HandleBody, geometry.Point{X: 200, Y: 100})
	s.Forget(ElementID(o.ID))

	if _, ok := s.State().(Idle); !ok {
		t.Errorf("expected Idle after forgetting the dragged element, got %T", s.State())
	}
	if s.ZIndex(ElementID(o.ID)) != 0 {
		t.Errorf("forgotten element should leave the z-order")
	}
}

func TestRosterTarget_ownership(t *testing.T) {
	r := NewRoster(globalSettings)
	h, _ := r.Add(globalSettings, "Ava")
	s := NewSurface(testContainer)

	err := s.PointerDown(RosterTarget{Roster: r, Actor: segmentPanel}, ElementID(h.ID), HandleBody, geometry.Point{X: 200, Y: 100})
	if !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted, got %v", err)
	}
	if _, ok := s.State().(Idle); !ok {
		t.Errorf("rejected pointer-down should leave the surface idle, got %T", s.State())
	}

	err = s.PointerDown(RosterTarget{Roster: r, Actor: segmentPanel}, "missing", HandleBody, geometry.Point{})
	if !errors.Is(err, ErrDigitalHumanNotFound) {
		t.Errorf("expected ErrDigitalHumanNotFound, got %v", err)
	}

	if err := s.PointerDown(RosterTarget{Roster: r, Actor: globalSettings}, ElementID(h.ID), HandleBody, geometry.Point{X: 200, Y: 100}); err != nil {
		t.Fatal(err)
	}
	s.PointerMove(geometry.Point{X: 300, Y: 150})
	got, _ := r.Get(h.ID)
	if !nearPos(got.Position, geometry.Position{X: 75, Y: 75}) {
		t.Errorf("controller drag should move the digital human, got %+v", got.Position)
	}
}
