package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"segment-studio/internal/composer"
	"segment-studio/internal/platform/logger"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestImportCmd_requires_output(t *testing.T) {
	script := filepath.Join(t.TempDir(), "script.txt")
	if err := os.WriteFile(script, []byte("hello\nworld\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	importCmd.Flags().Set("output", "")

	_, err := execute(t, "import", script)
	if err == nil || err.Error() != "output path is required" {
		t.Errorf("expected missing output error, got %v", err)
	}
}

func TestCheckCmd_shows_variants_placeholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promo.yaml")
	p := composer.Project{
		ID:   "p1",
		Name: "promo",
		Segments: []composer.Segment{
			{ID: "a", Name: "Intro", Script: "raw", ScriptVariants: []composer.ScriptVariant{{ID: "v1", Content: "hi"}, {ID: "v2", Content: "hello"}}},
			{ID: "b", Name: "Outro", Script: "bye"},
		},
	}
	if err := composer.WriteProjectFile(&p, path); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "check", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"Configured 2 variants"`) {
		t.Errorf("expected the variants placeholder, got:\n%s", out)
	}
	if !strings.Contains(out, `"bye"`) {
		t.Errorf("expected the raw script for a segment without variants, got:\n%s", out)
	}
}

func TestPlayTimeline(t *testing.T) {
	log = logger.NewWithWriter(io.Discard, "error", "text")
	svc := composer.NewService(composer.NewInMemoryRepository(), nil, composer.Owner{})
	sess := svc.CreateProject("promo")
	sess.ImportScripts("a\nb")

	var out bytes.Buffer
	if err := playTimeline(context.Background(), &out, sess, 50*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "segment 1: a") || !strings.Contains(out.String(), "segment 2: b") {
		t.Errorf("expected one line per segment change, got:\n%s", out.String())
	}

	t.Run("interrupted", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := playTimeline(ctx, io.Discard, sess, time.Hour); err != nil {
			t.Errorf("an interrupt should end playback cleanly, got %v", err)
		}
	})
}
