package composer

import (
	"strings"
	"testing"
)

func TestEstimatedDuration(t *testing.T) {
	if got := EstimatedDuration(""); got != 0 {
		t.Errorf("empty script: got %v", got)
	}
	if got := EstimatedDuration("héllo"); !near(got, 1.5) {
		t.Errorf("duration counts characters, not bytes: got %v", got)
	}

	prev := 0.0
	for n := 1; n <= 50; n++ {
		got := EstimatedDuration(strings.Repeat("a", n))
		if got < prev {
			t.Fatalf("not monotonic at %d: %v < %v", n, got, prev)
		}
		prev = got
	}
}

func TestMaterialWarning(t *testing.T) {
	clip := &MaterialRef{ID: "m1", Duration: 2.0}
	tests := []struct {
		name     string
		script   string
		material *MaterialRef
		want     string
	}{
		{"too_long", strings.Repeat("x", 10), clip, MaterialTooShortWarning},
		{"fits", strings.Repeat("x", 5), clip, ""},
		{"no_material", strings.Repeat("x", 100), nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaterialWarning(tt.script, tt.material); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultDurationEstimator(t *testing.T) {
	if got := DefaultDurationEstimator(Material{Type: MaterialImage}); got != 5 {
		t.Errorf("image: got %v", got)
	}
	if got := DefaultDurationEstimator(Material{Type: MaterialVideo}); got != 10 {
		t.Errorf("video: got %v", got)
	}
}
