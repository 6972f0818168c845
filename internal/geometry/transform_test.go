package geometry

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	container := Rect{Left: 100, Top: 50, Width: 1000, Height: 500}

	t.Run("no_anchor", func(t *testing.T) {
		got := Normalize(container, Point{X: 600, Y: 300}, Point{}, Position{})
		if got.X != 50 || got.Y != 50 {
			t.Errorf("expected (50,50), got %+v", got)
		}
	})

	t.Run("anchor_subtracted", func(t *testing.T) {
		start := Position{X: 50, Y: 50}
		anchor := AnchorOffset(container, Point{X: 620, Y: 310}, start)
		if anchor.X != 20 || anchor.Y != 10 {
			t.Fatalf("anchor: got %+v", anchor)
		}
		got := Normalize(container, Point{X: 720, Y: 335}, anchor, start)
		if math.Abs(got.X-60) > 1e-9 || math.Abs(got.Y-55) > 1e-9 {
			t.Errorf("expected (60,55), got %+v", got)
		}
	})

	t.Run("clamped", func(t *testing.T) {
		got := Normalize(container, Point{X: -1e9, Y: 1e9}, Point{}, Position{})
		if got.X != 0 || got.Y != 100 {
			t.Errorf("expected (0,100), got %+v", got)
		}
	})

	t.Run("zero_size_container_keeps_last", func(t *testing.T) {
		last := Position{X: 12, Y: 34}
		got := Normalize(Rect{Width: 0, Height: 400}, Point{X: 10, Y: 10}, Point{}, last)
		if got != last {
			t.Errorf("expected %+v, got %+v", last, got)
		}
	})
}

func TestClampPercent(t *testing.T) {
	cases := map[float64]float64{-5: 0, 0: 0, 42.5: 42.5, 100: 100, 250: 100}
	for in, want := range cases {
		if got := ClampPercent(in); got != want {
			t.Errorf("ClampPercent(%v) = %v, want %v", in, got, want)
		}
	}
	if got := ClampPercent(math.NaN()); got != 0 {
		t.Errorf("NaN should clamp to 0, got %v", got)
	}
}

func TestScaleFromDistance(t *testing.T) {
	b := Bounds{Min: 0.3, Max: 3}

	if got := ScaleFromDistance(Ratio, 100, 200, 1, b); got != 2 {
		t.Errorf("ratio doubling: got %v", got)
	}
	if got := ScaleFromDistance(Ratio, 100, 10000, 1, b); got != 3 {
		t.Errorf("ratio clamp max: got %v", got)
	}
	if got := ScaleFromDistance(Ratio, 100, 1, 1, b); got != 0.3 {
		t.Errorf("ratio clamp min: got %v", got)
	}
	if got := ScaleFromDistance(Ratio, 0, 50, 1.5, b); got != 1.5 {
		t.Errorf("zero start distance keeps start value: got %v", got)
	}

	font := Bounds{Min: 12, Max: 120}
	if got := ScaleFromDistance(LinearMapping(0.5), 40, 80, 32, font); got != 52 {
		t.Errorf("linear: got %v", got)
	}
	if got := ScaleFromDistance(LinearMapping(0.5), 40, 0, 12, font); got != 12 {
		t.Errorf("linear clamp min: got %v", got)
	}
}

func TestScaleFromDistance_deterministic(t *testing.T) {
	b := Bounds{Min: 0.3, Max: 3}
	first := ScaleFromDistance(Ratio, 37, 91, 1.2, b)
	for i := 0; i < 10; i++ {
		if got := ScaleFromDistance(Ratio, 37, 91, 1.2, b); got != first {
			t.Fatalf("non-deterministic result %v vs %v", got, first)
		}
	}
}
