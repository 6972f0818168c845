package composer

import (
	"errors"
	"testing"
	"time"
)

func TestService_save_and_reopen(t *testing.T) {
	repo := NewInMemoryRepository()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	svc := NewService(repo, nil, Owner{})

	sess := svc.CreateProject("promo")
	sess.ImportScripts("hello\nworld")
	seg := sess.Segments()[0]
	sess.CreateOverlay(OverlayText, seg.ID, OverlayPatch{})

	saved, err := svc.Save(sess.ID())
	if err != nil {
		t.Fatal(err)
	}
	if len(saved.Segments) != 2 {
		t.Fatalf("expected 2 segments saved, got %d", len(saved.Segments))
	}
	if !saved.UpdatedAt.Equal(fixed) {
		t.Errorf("returned UpdatedAt = %v, want %v", saved.UpdatedAt, fixed)
	}
	if repo.ProjectCount() != 1 {
		t.Errorf("expected 1 stored project, got %d", repo.ProjectCount())
	}

	stored, ok, err := repo.GetProject(sess.ID())
	if err != nil || !ok {
		t.Fatalf("project not stored: %v", err)
	}
	if !stored.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", stored.UpdatedAt, fixed)
	}

	svc.Close(sess.ID())
	if svc.OpenCount() != 0 {
		t.Fatalf("expected no open sessions, got %d", svc.OpenCount())
	}

	reopened, err := svc.Open(sess.ID())
	if err != nil {
		t.Fatal(err)
	}
	if got := reopened.Segments(); len(got) != 2 || got[1].Script != "world" {
		t.Errorf("unexpected reopened segments: %+v", got)
	}
	if got := reopened.Overlays(seg.ID); len(got) != 1 {
		t.Errorf("overlays should survive a reopen, got %d", len(got))
	}
}

func TestService_Open_unknown(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, Owner{})
	if _, err := svc.Open("missing"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
	if _, err := svc.Save("missing"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

type failingStore struct {
	*InMemoryStore
}

func (failingStore) SetProject(*Project) error {
	return errors.New("disk full")
}

func TestService_Save_surfaces_failure(t *testing.T) {
	svc := NewService(NewRepositoryWithStore(failingStore{NewInMemoryStore()}), nil, Owner{})
	sess := svc.CreateProject("promo")
	sess.AppendSegment(SegmentDefaults{Script: "x"})

	if _, err := svc.Save(sess.ID()); err == nil {
		t.Fatal("expected save error")
	}
	if len(sess.Segments()) != 1 {
		t.Error("failed save must not touch the session")
	}
}

func TestService_Export_Import(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, Owner{})
	sess := svc.CreateProject("promo")
	seg := sess.AppendSegment(SegmentDefaults{Script: "hi", EnableDigitalHumans: true})
	sess.RenameSegment(seg.ID, "Intro")
	sess.SetScriptVariants(seg.ID, []ScriptVariant{{Content: "hi there"}, {Content: "hello"}})
	sess.AddDigitalHuman(DefaultController, "Ava")

	data, err := svc.Export(sess.ID())
	if err != nil {
		t.Fatal(err)
	}
	p, err := DecodeProject(data)
	if err != nil {
		t.Fatal(err)
	}

	other := NewService(NewInMemoryRepository(), nil, Owner{})
	imported := other.Import(*p)
	got := imported.Segments()
	if len(got) != 1 || got[0].Name != "Intro" || len(got[0].ScriptVariants) != 2 {
		t.Errorf("unexpected imported segments: %+v", got)
	}
	if len(imported.DigitalHumans()) != 1 {
		t.Errorf("roster should survive export, got %d", len(imported.DigitalHumans()))
	}
}
