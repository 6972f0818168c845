package composer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SegmentDefaults seeds a new segment.
type SegmentDefaults struct {
	Script              string
	EnableDigitalHumans bool
	Audio               *AudioSettings
}

// Collection is the ordered list of segments of one project. Every structural
// change (append, bulk insert, removal, move) renumbers all segments. It is not
// safe for concurrent use.
type Collection struct {
	segments []*Segment
	estimate DurationEstimator
	newID    func() SegmentID
}

// NewCollection returns an empty collection. A nil estimator selects
// DefaultDurationEstimator.
func NewCollection(estimate DurationEstimator) *Collection {
	if estimate == nil {
		estimate = DefaultDurationEstimator
	}
	return &Collection{
		estimate: estimate,
		newID:    func() SegmentID { return SegmentID(uuid.NewString()) },
	}
}

// SegmentName is the generated name of the segment at index.
func SegmentName(index int) string {
	return fmt.Sprintf("Segment %d", index+1)
}

// renumber sets index and name from position, overwriting custom names.
func (c *Collection) renumber() {
	for i, s := range c.segments {
		s.Index = i
		s.Name = SegmentName(i)
	}
}

func (c *Collection) create(d SegmentDefaults) *Segment {
	s := &Segment{
		ID:                  c.newID(),
		Script:              d.Script,
		EnableDigitalHumans: d.EnableDigitalHumans,
	}
	if d.Audio != nil {
		s.Audio = d.Audio.clone()
	}
	c.segments = append(c.segments, s)
	return s
}

// Append creates a segment from defaults at the end of the collection.
func (c *Collection) Append(d SegmentDefaults) Segment {
	s := c.create(d)
	c.renumber()
	return s.clone()
}

// InsertMany appends one segment per script in input order and renumbers once.
func (c *Collection) InsertMany(scripts []string) []Segment {
	created := make([]*Segment, 0, len(scripts))
	for _, script := range scripts {
		created = append(created, c.create(SegmentDefaults{Script: script}))
	}
	c.renumber()

	out := make([]Segment, len(created))
	for i, s := range created {
		out[i] = s.clone()
	}
	return out
}

// SplitScriptLines splits imported text into trimmed, non-empty lines.
func SplitScriptLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// RemoveMany deletes every segment whose id is in ids and renumbers the rest.
// It returns the ids actually removed. Removing everything is allowed.
func (c *Collection) RemoveMany(ids map[SegmentID]struct{}) []SegmentID {
	var removed []SegmentID
	kept := c.segments[:0]
	for _, s := range c.segments {
		if _, hit := ids[s.ID]; hit {
			removed = append(removed, s.ID)
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(c.segments); i++ {
		c.segments[i] = nil
	}
	c.segments = kept
	c.renumber()
	return removed
}

// Move places the segment at newIndex (clamped) and renumbers.
func (c *Collection) Move(id SegmentID, newIndex int) (Segment, error) {
	from := c.indexOf(id)
	if from < 0 {
		return Segment{}, ErrSegmentNotFound
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(c.segments)-1 {
		newIndex = len(c.segments) - 1
	}
	s := c.segments[from]
	c.segments = append(c.segments[:from], c.segments[from+1:]...)
	c.segments = append(c.segments[:newIndex], append([]*Segment{s}, c.segments[newIndex:]...)...)
	c.renumber()
	return s.clone(), nil
}

// Rename sets a custom name. The next structural change overwrites it.
func (c *Collection) Rename(id SegmentID, name string) (Segment, error) {
	return c.mutate(id, func(s *Segment) error {
		s.Name = name
		return nil
	})
}

// UpdateScript replaces the raw script and recomputes the material warning.
func (c *Collection) UpdateScript(id SegmentID, text string) (Segment, error) {
	return c.mutate(id, func(s *Segment) error {
		if s.HasVariants() {
			return ErrScriptReadOnly
		}
		s.Script = text
		refreshWarning(s)
		return nil
	})
}

// AttachMaterial sets the segment's material, estimating its duration when
// unknown, and recomputes the material warning.
func (c *Collection) AttachMaterial(id SegmentID, m Material) (Segment, error) {
	return c.mutate(id, func(s *Segment) error {
		duration := m.Duration
		if duration <= 0 {
			duration = c.estimate(m)
		}
		s.Material = &MaterialRef{
			ID:       m.ID,
			Name:     m.Name,
			Type:     m.Type,
			Duration: duration,
			URL:      m.URL,
		}
		refreshWarning(s)
		return nil
	})
}

// DetachMaterial clears the material and with it the warning.
func (c *Collection) DetachMaterial(id SegmentID) (Segment, error) {
	return c.mutate(id, func(s *Segment) error {
		s.Material = nil
		refreshWarning(s)
		return nil
	})
}

// SetScriptVariants commits variants, dropping blank ones. At least one
// non-empty variant must remain.
func (c *Collection) SetScriptVariants(id SegmentID, variants []ScriptVariant) (Segment, error) {
	return c.mutate(id, func(s *Segment) error {
		kept := make([]ScriptVariant, 0, len(variants))
		for _, v := range variants {
			if strings.TrimSpace(v.Content) == "" {
				continue
			}
			if v.ID == "" {
				v.ID = uuid.NewString()
			}
			kept = append(kept, v)
		}
		if len(kept) == 0 {
			return ErrNoVariants
		}
		s.ScriptVariants = kept
		refreshWarning(s)
		return nil
	})
}

// AddScriptVariant appends a non-empty variant.
func (c *Collection) AddScriptVariant(id SegmentID, content string) (Segment, error) {
	return c.mutate(id, func(s *Segment) error {
		if strings.TrimSpace(content) == "" {
			return ErrNoVariants
		}
		s.ScriptVariants = append(s.ScriptVariants, ScriptVariant{ID: uuid.NewString(), Content: content})
		refreshWarning(s)
		return nil
	})
}

// RemoveScriptVariant deletes one variant. Removing the last one is rejected.
func (c *Collection) RemoveScriptVariant(id SegmentID, variantID string) (Segment, error) {
	return c.mutate(id, func(s *Segment) error {
		at := -1
		for i, v := range s.ScriptVariants {
			if v.ID == variantID {
				at = i
				break
			}
		}
		if at < 0 {
			return nil
		}
		if len(s.ScriptVariants) == 1 {
			return ErrLastVariant
		}
		s.ScriptVariants = append(s.ScriptVariants[:at:at], s.ScriptVariants[at+1:]...)
		refreshWarning(s)
		return nil
	})
}

// ClearScriptVariants drops every variant and makes the raw script editable
// again.
func (c *Collection) ClearScriptVariants(id SegmentID) (Segment, error) {
	return c.mutate(id, func(s *Segment) error {
		s.ScriptVariants = nil
		refreshWarning(s)
		return nil
	})
}

// SetDigitalHumansEnabled opts the segment in or out of the global roster.
func (c *Collection) SetDigitalHumansEnabled(id SegmentID, enabled bool) (Segment, error) {
	return c.mutate(id, func(s *Segment) error {
		s.EnableDigitalHumans = enabled
		return nil
	})
}

// UpdateAudio merges patch into the segment's audio settings, backfilling
// unset fields from DefaultAudio.
func (c *Collection) UpdateAudio(id SegmentID, patch AudioSettings) (Segment, error) {
	return c.mutate(id, func(s *Segment) error {
		merged, err := MergeAudio(s.Audio, patch, DefaultAudio)
		if err != nil {
			return err
		}
		s.Audio = merged
		return nil
	})
}

// AddBGMTrack appends track to the segment's BGM list.
func (c *Collection) AddBGMTrack(id SegmentID, track BGMTrack) (Segment, error) {
	return c.mutate(id, func(s *Segment) error {
		s.Audio = AppendTrack(s.Audio, track, DefaultAudio)
		return nil
	})
}

// RemoveBGMTrack deletes a track from the segment's BGM list. An unknown track
// id is a no-op.
func (c *Collection) RemoveBGMTrack(id SegmentID, trackID string) (Segment, error) {
	return c.mutate(id, func(s *Segment) error {
		if out, ok := RemoveTrack(s.Audio, trackID); ok {
			s.Audio = out
		}
		return nil
	})
}

// Get returns a copy of the segment with id.
func (c *Collection) Get(id SegmentID) (Segment, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return Segment{}, false
	}
	return c.segments[i].clone(), true
}

// At returns a copy of the segment at index.
func (c *Collection) At(index int) (Segment, bool) {
	if index < 0 || index >= len(c.segments) {
		return Segment{}, false
	}
	return c.segments[index].clone(), true
}

// Segments returns copies of all segments in order.
func (c *Collection) Segments() []Segment {
	out := make([]Segment, len(c.segments))
	for i, s := range c.segments {
		out[i] = s.clone()
	}
	return out
}

// Len returns the number of segments.
func (c *Collection) Len() int {
	return len(c.segments)
}

// restore loads persisted segments as-is (names included), recomputing the
// derived index and warning.
func (c *Collection) restore(segments []Segment) {
	c.segments = c.segments[:0]
	seen := make(map[SegmentID]struct{}, len(segments))
	for _, s := range segments {
		if s.ID == "" {
			s.ID = c.newID()
		}
		if _, dup := seen[s.ID]; dup {
			s.ID = c.newID()
		}
		seen[s.ID] = struct{}{}
		s := s.clone()
		refreshWarning(&s)
		c.segments = append(c.segments, &s)
	}
	for i, s := range c.segments {
		s.Index = i
	}
}

func (c *Collection) indexOf(id SegmentID) int {
	for i, s := range c.segments {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// mutate runs fn on the live segment. fn must leave the segment untouched when
// it returns an error.
func (c *Collection) mutate(id SegmentID, fn func(s *Segment) error) (Segment, error) {
	i := c.indexOf(id)
	if i < 0 {
		return Segment{}, ErrSegmentNotFound
	}
	s := c.segments[i]
	if err := fn(s); err != nil {
		return s.clone(), err
	}
	return s.clone(), nil
}

// refreshWarning recomputes the derived material warning. With variants the
// longest variant is checked since any of them may be spoken.
func refreshWarning(s *Segment) {
	script := s.Script
	if s.HasVariants() {
		script = ""
		for _, v := range s.ScriptVariants {
			if EstimatedDuration(v.Content) > EstimatedDuration(script) {
				script = v.Content
			}
		}
	}
	s.MaterialWarning = MaterialWarning(script, s.Material)
}
