package composer

import (
	"context"
	"math"
	"time"

	"segment-studio/internal/geometry"
)

// DefaultTickInterval is the playback clock resolution.
const DefaultTickInterval = 100 * time.Millisecond

// SafeZone is a frame region, in percent, where host-platform UI occludes
// content. Zones are advisory: overlays inside them are reported, never moved.
type SafeZone struct {
	Name   string  `json:"name"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside the zone.
func (z SafeZone) Contains(p geometry.Position) bool {
	return p.X >= z.Left && p.X <= z.Left+z.Width && p.Y >= z.Top && p.Y <= z.Top+z.Height
}

// DefaultSafeZones reserves the top 12%, bottom 25% and right 15% of the frame.
var DefaultSafeZones = []SafeZone{
	{Name: "top", Left: 0, Top: 0, Width: 100, Height: 12},
	{Name: "bottom", Left: 0, Top: 75, Width: 100, Height: 25},
	{Name: "right", Left: 85, Top: 0, Width: 15, Height: 100},
}

// ActiveIndex maps currentTime to the active segment assuming n segments of
// equal length totalDuration/n. The result is clamped to [0,n-1]; ok is false
// when there are no segments.
func ActiveIndex(currentTime, totalDuration float64, n int) (index int, ok bool) {
	if n <= 0 {
		return 0, false
	}
	if totalDuration <= 0 || currentTime <= 0 || math.IsNaN(currentTime) {
		return 0, true
	}
	if currentTime >= totalDuration {
		return n - 1, true
	}
	// Compare as float before converting: huge quotients overflow int.
	q := math.Floor(currentTime / (totalDuration / float64(n)))
	if q >= float64(n-1) {
		return n - 1, true
	}
	return max(int(q), 0), true
}

// Frame is what the preview renders at one instant.
type Frame struct {
	Time          float64        `json:"time"`
	Index         int            `json:"index"`
	SegmentID     SegmentID      `json:"segmentId"`
	Script        string         `json:"script"`
	Overlays      []Overlay      `json:"overlays"`
	DigitalHumans []DigitalHuman `json:"digitalHumans"`
	SafeZones     []SafeZone     `json:"safeZones"`
	// Occluded lists elements positioned inside a safe zone.
	Occluded []ElementID `json:"occluded,omitempty"`
}

// Mapper projects the playback clock onto the segment collection. It reads the
// session's live collection, overlays and roster.
type Mapper struct {
	segments *Collection
	overlays *OverlaySet
	resolver *Resolver
	zones    []SafeZone
}

// NewMapper returns a Mapper; nil zones selects DefaultSafeZones.
func NewMapper(segments *Collection, overlays *OverlaySet, resolver *Resolver, zones []SafeZone) *Mapper {
	if zones == nil {
		zones = DefaultSafeZones
	}
	return &Mapper{segments: segments, overlays: overlays, resolver: resolver, zones: zones}
}

// FrameAt returns the frame at currentTime over totalDuration. ok is false
// when there are no segments and nothing should be rendered.
func (m *Mapper) FrameAt(currentTime, totalDuration float64) (Frame, bool) {
	index, ok := ActiveIndex(currentTime, totalDuration, m.segments.Len())
	if !ok {
		return Frame{}, false
	}
	seg, _ := m.segments.At(index)

	f := Frame{
		Time:          currentTime,
		Index:         index,
		SegmentID:     seg.ID,
		Script:        seg.PreviewScript(),
		Overlays:      m.overlays.ForSegment(seg.ID),
		DigitalHumans: m.resolver.DigitalHumansFor(seg),
		SafeZones:     m.zones,
	}
	for _, o := range f.Overlays {
		if m.inZone(o.Position) {
			f.Occluded = append(f.Occluded, ElementID(o.ID))
		}
	}
	for _, h := range f.DigitalHumans {
		if m.inZone(h.Position) {
			f.Occluded = append(f.Occluded, ElementID(h.ID))
		}
	}
	return f, true
}

func (m *Mapper) inZone(p geometry.Position) bool {
	for _, z := range m.zones {
		if z.Contains(p) {
			return true
		}
	}
	return false
}

// SegmentDuration is the timeline length of one segment: its material duration
// when attached, else the estimated script duration.
func SegmentDuration(s Segment) float64 {
	if s.Material != nil && s.Material.Duration > 0 {
		return s.Material.Duration
	}
	return EstimatedDuration(s.PreviewScript())
}

// TotalDuration sums SegmentDuration over segments.
func TotalDuration(segments []Segment) float64 {
	total := 0.0
	for _, s := range segments {
		total += SegmentDuration(s)
	}
	return total
}

// Player is the playback clock. Time advances monotonically while playing and
// stops at the total duration; it never loops.
type Player struct {
	current float64
	total   float64
	playing bool
	follow  func() float64
}

// NewPlayer returns a stopped player over total seconds.
func NewPlayer(total float64) *Player {
	return &Player{total: math.Max(total, 0)}
}

// SetTotal changes the total duration, clamping the current time into it.
func (p *Player) SetTotal(total float64) {
	p.total = math.Max(total, 0)
	if p.current > p.total {
		p.current = p.total
		p.playing = false
	}
}

// Follow makes Run re-read the total from fn before every tick, so edits made
// during playback lengthen or shorten it.
func (p *Player) Follow(fn func() float64) {
	p.follow = fn
}

// Play starts playback. Playing from the end restarts at 0.
func (p *Player) Play() {
	if p.current >= p.total {
		p.current = 0
	}
	p.playing = p.total > 0
}

// Pause stops the clock at its current time.
func (p *Player) Pause() {
	p.playing = false
}

// Seek moves to t, clamped into [0,total].
func (p *Player) Seek(t float64) {
	p.current = math.Min(math.Max(t, 0), p.total)
}

// Tick advances the clock by dt while playing and reports whether it is still
// playing afterwards.
func (p *Player) Tick(dt time.Duration) bool {
	if !p.playing {
		return false
	}
	p.current += dt.Seconds()
	if p.current >= p.total {
		p.current = p.total
		p.playing = false
	}
	return p.playing
}

// Current returns the playback time in seconds.
func (p *Player) Current() float64 { return p.current }

// Total returns the total duration in seconds.
func (p *Player) Total() float64 { return p.total }

// Playing reports whether the clock is running.
func (p *Player) Playing() bool { return p.playing }

// Run drives the clock from a ticker until playback ends or ctx is cancelled,
// calling onTick with the time after every tick. It starts playback itself.
func (p *Player) Run(ctx context.Context, interval time.Duration, onTick func(current float64)) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if p.follow != nil {
		p.SetTotal(p.follow())
	}
	p.Play()
	if !p.playing {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Pause()
			return ctx.Err()
		case <-ticker.C:
			if p.follow != nil {
				p.SetTotal(p.follow())
			}
			playing := p.Tick(interval)
			if onTick != nil {
				onTick(p.current)
			}
			if !playing {
				return nil
			}
		}
	}
}
