// Package geometry converts pointer coordinates into the normalized
// percent-of-container space used by overlays, and maps resize gestures to
// bounded scale values. Everything here is pure.
package geometry

import "math"

// Point is a position in client pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position is a position in percent of the container, both axes in [0,100].
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Rect is a container bounding box in client pixels.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the rect cannot be used as a normalization base.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ClampPercent clamps v to [0,100]. NaN maps to 0.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Clamp returns p with both axes clamped to [0,100].
func (p Position) Clamp() Position {
	return Position{X: ClampPercent(p.X), Y: ClampPercent(p.Y)}
}

// ToPixels returns the client-pixel location of pos inside container.
func ToPixels(container Rect, pos Position) Point {
	return Point{
		X: container.Left + pos.X/100*container.Width,
		Y: container.Top + pos.Y/100*container.Height,
	}
}

// AnchorOffset is the distance between the pointer and the element's own
// location at drag start. Subsequent moves subtract it so the element does not
// jump under the pointer.
func AnchorOffset(container Rect, pointer Point, pos Position) Point {
	px := ToPixels(container, pos)
	return Point{X: pointer.X - px.X, Y: pointer.Y - px.Y}
}

// Normalize converts a pointer location into a clamped percent position,
// subtracting the anchor captured at drag start. A zero-size container returns
// last unchanged.
func Normalize(container Rect, pointer, anchor Point, last Position) Position {
	if container.Empty() {
		return last
	}
	x := (pointer.X - anchor.X - container.Left) / container.Width * 100
	y := (pointer.Y - anchor.Y - container.Top) / container.Height * 100
	return Position{X: x, Y: y}.Clamp()
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Bounds is an inclusive value range.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp clamps v into b. NaN maps to Min.
func (b Bounds) Clamp(v float64) float64 {
	if math.IsNaN(v) || v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Mapping selects how a resize gesture turns distance into a value.
type Mapping struct {
	// Linear adds (current-start)*Gain to the start value; otherwise the start
	// value is multiplied by current/start.
	Linear bool
	Gain   float64
}

// Ratio scales proportionally to the pointer distance.
var Ratio = Mapping{}

// LinearMapping returns a mapping that adds gain units per pixel.
func LinearMapping(gain float64) Mapping {
	return Mapping{Linear: true, Gain: gain}
}

// ScaleFromDistance computes a new value from the distance captured at resize
// start and the live distance. The result is always relative to the start
// reference, never to a previous move.
func ScaleFromDistance(m Mapping, startDistance, currentDistance, startValue float64, b Bounds) float64 {
	if m.Linear {
		return b.Clamp(startValue + (currentDistance-startDistance)*m.Gain)
	}
	if startDistance <= 0 {
		return b.Clamp(startValue)
	}
	return b.Clamp(startValue * currentDistance / startDistance)
}
