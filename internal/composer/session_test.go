package composer

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"segment-studio/internal/geometry"
)

func newTestSession(materials ...Material) *Session {
	return NewSession("p1", "promo", SessionOptions{Catalog: NewInMemoryCatalog(materials...)})
}

func TestSession_RemoveSegments_cascades_overlays(t *testing.T) {
	s := newTestSession()
	segs := s.ImportScripts("one\ntwo\nthree")
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}

	doomed, err := s.CreateOverlay(OverlayText, segs[1].ID, OverlayPatch{})
	if err != nil {
		t.Fatal(err)
	}
	kept, _ := s.CreateOverlay(OverlaySticker, segs[2].ID, OverlayPatch{})
	h, _ := s.AddDigitalHuman(DefaultController, "Ava")

	s.PointerDown(DefaultController, ElementID(doomed.ID), HandleBody, geometry.Point{X: 180, Y: 320})

	removed := s.RemoveSegments([]SegmentID{segs[1].ID})
	if len(removed) != 1 {
		t.Fatalf("expected 1 removed, got %v", removed)
	}

	snap := s.Snapshot()
	if len(snap.Overlays) != 1 || snap.Overlays[0].ID != kept.ID {
		t.Errorf("overlays of removed segments must go: %+v", snap.Overlays)
	}
	if len(snap.Global.DigitalHumans) != 1 || snap.Global.DigitalHumans[0].ID != h.ID {
		t.Errorf("roster must survive segment removal: %+v", snap.Global.DigitalHumans)
	}
	if snap.Segments[1].Name != "Segment 2" || snap.Segments[1].Script != "three" {
		t.Errorf("remaining segments not renumbered: %+v", snap.Segments)
	}
	if state, order := s.Interaction(); len(order) != 0 {
		t.Errorf("removed overlay should leave the surface, state %T order %v", state, order)
	}

	if got := s.RemoveSegments([]SegmentID{"missing"}); got != nil {
		t.Errorf("unknown ids should remove nothing, got %v", got)
	}
}

func TestSession_CreateOverlay_requires_segment(t *testing.T) {
	s := newTestSession()
	if _, err := s.CreateOverlay(OverlayText, "missing", OverlayPatch{}); !errors.Is(err, ErrSegmentNotFound) {
		t.Errorf("expected ErrSegmentNotFound, got %v", err)
	}
}

func TestSession_AttachMaterial(t *testing.T) {
	s := newTestSession(Material{ID: "m1", Name: "Beach", Type: MaterialVideo, Duration: 2})
	seg := s.AppendSegment(SegmentDefaults{Script: strings.Repeat("a", 20)})

	got, err := s.AttachMaterial(seg.ID, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Material == nil || got.MaterialWarning != MaterialTooShortWarning {
		t.Errorf("expected material with warning, got %+v", got)
	}

	got, err = s.AttachMaterial(seg.ID, "unknown")
	if err != nil {
		t.Fatal(err)
	}
	if got.Material != nil || got.MaterialWarning != "" {
		t.Errorf("catalog miss should detach, got %+v", got)
	}
}

func TestSession_digital_humans_shared(t *testing.T) {
	s := newTestSession()
	a := s.AppendSegment(SegmentDefaults{EnableDigitalHumans: true})
	b := s.AppendSegment(SegmentDefaults{EnableDigitalHumans: true})

	h, err := s.AddDigitalHuman(DefaultController, "Ava")
	if err != nil {
		t.Fatal(err)
	}
	scale := 2.0
	if _, err := s.UpdateDigitalHuman(DefaultController, h.ID, DigitalHumanPatch{Scale: &scale}); err != nil {
		t.Fatal(err)
	}

	for _, id := range []SegmentID{a.ID, b.ID} {
		humans, err := s.DigitalHumansFor(id)
		if err != nil {
			t.Fatal(err)
		}
		if len(humans) != 1 || humans[0].Scale != 2 {
			t.Errorf("segment %s should see the shared edit, got %+v", id, humans)
		}
	}

	panel := Owner{Name: "segment panel"}
	if _, err := s.UpdateDigitalHuman(panel, h.ID, DigitalHumanPatch{Scale: &scale}); !errors.Is(err, ErrNotPermitted) {
		t.Errorf("expected ErrNotPermitted, got %v", err)
	}
	if err := s.PointerDown(panel, ElementID(h.ID), HandleBody, geometry.Point{}); !errors.Is(err, ErrNotPermitted) {
		t.Errorf("expected ErrNotPermitted from the surface, got %v", err)
	}
}

func TestSession_audio_cascade(t *testing.T) {
	s := newTestSession()
	seg := s.AppendSegment(SegmentDefaults{})

	got, err := s.EffectiveAudio(seg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.VoiceID != DefaultAudio.VoiceID {
		t.Errorf("expected defaults, got %+v", got)
	}

	if _, err := s.UpdateGlobalAudio(Owner{Name: "segment panel"}, AudioSettings{VoiceID: "v2"}); !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted, got %v", err)
	}
	if _, err := s.UpdateGlobalAudio(DefaultController, AudioSettings{VoiceID: "v2"}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.EffectiveAudio(seg.ID)
	if got.VoiceID != "v2" {
		t.Errorf("expected project voice, got %q", got.VoiceID)
	}

	vol := 55.0
	if _, err := s.UpdateAudio(seg.ID, AudioSettings{BGMVolume: &vol}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.EffectiveAudio(seg.ID)
	if got.BGMVolume != 55 || got.VoiceID != DefaultAudio.VoiceID {
		t.Errorf("segment audio backfills from defaults, got %+v", got)
	}

	if _, err := s.EffectiveAudio("missing"); !errors.Is(err, ErrSegmentNotFound) {
		t.Errorf("expected ErrSegmentNotFound, got %v", err)
	}
}

func TestSession_FrameAt_and_Play(t *testing.T) {
	s := newTestSession()
	if _, ok := s.FrameAt(0); ok {
		t.Fatal("empty session should render nothing")
	}

	s.ImportScripts("a\nb")
	total := s.TotalDuration()
	if !near(total, 0.6) {
		t.Fatalf("expected 0.6s total, got %v", total)
	}

	var indexes []int
	err := s.Play(context.Background(), 50*time.Millisecond, func(f Frame) {
		indexes = append(indexes, f.Index)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(indexes) == 0 || indexes[len(indexes)-1] != 1 {
		t.Errorf("playback should end on the last segment, got %v", indexes)
	}

	f, ok := s.FrameAt(math.Inf(1))
	if !ok || f.Index != 1 || f.SegmentID == "" {
		t.Errorf("time past the end should clamp to the last segment, got %+v", f)
	}
}

func TestSession_Play_follows_edits(t *testing.T) {
	s := newTestSession()
	s.ImportScripts("a")

	var last Frame
	appended := false
	err := s.Play(context.Background(), 50*time.Millisecond, func(f Frame) {
		if !appended {
			s.AppendSegment(SegmentDefaults{Script: "b"})
			appended = true
		}
		last = f
	})
	if err != nil {
		t.Fatal(err)
	}
	if !near(last.Time, 0.6) || last.Index != 1 || last.Script != "b" {
		t.Errorf("playback should run to the end of the lengthened timeline, got %+v", last)
	}
}

func TestRestoreSession(t *testing.T) {
	p := Project{
		ID:   "p1",
		Name: "restored",
		Segments: []Segment{
			{ID: "a", Name: "Intro", Script: strings.Repeat("a", 10), Material: &MaterialRef{ID: "m1", Duration: 1}},
			{ID: "b", Name: "Outro"},
		},
		Overlays: []Overlay{
			{ID: "o1", Kind: OverlayText, SegmentID: "a", FontSize: 40},
			{ID: "o2", Kind: OverlayText, SegmentID: "gone", FontSize: 40},
		},
		Global: GlobalConfig{Controller: "editor", DigitalHumans: []DigitalHuman{{ID: "h1", Scale: 1}}},
	}
	s := RestoreSession(p, SessionOptions{})

	segs := s.Segments()
	if segs[0].Name != "Intro" || segs[1].Index != 1 {
		t.Errorf("restored names and indexes: %+v", segs)
	}
	if segs[0].MaterialWarning != MaterialTooShortWarning {
		t.Errorf("warning should be recomputed on restore")
	}
	if len(s.Snapshot().Overlays) != 1 {
		t.Errorf("orphan overlays should be dropped on restore")
	}
	if s.Controller().Name != "editor" {
		t.Errorf("controller should be restored, got %q", s.Controller().Name)
	}
}
