package composer

import (
	"encoding/json"
	"fmt"
	"time"

	"segment-studio/internal/geometry"
)

// ProjectID uniquely identifies an authoring project.
type ProjectID string

// SegmentID is the opaque, never reused identifier of a segment.
type SegmentID string

// OverlayID identifies a text or sticker overlay.
type OverlayID string

// MaterialID identifies a material record in the external catalog.
type MaterialID string

// MaterialType is the media kind of a material.
type MaterialType string

const (
	MaterialVideo MaterialType = "video"
	MaterialImage MaterialType = "image"
	MaterialAudio MaterialType = "audio"
)

// Material is the read-only view of a catalog record the engine needs.
type Material struct {
	ID       MaterialID   `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Type     MaterialType `json:"type" yaml:"type"`
	Duration float64      `json:"duration" yaml:"duration"` // seconds, 0 when unknown
	URL      string       `json:"url,omitempty" yaml:"url,omitempty"`
}

// MaterialRef is a material attached to a segment. Duration is always known
// once attached.
type MaterialRef struct {
	ID       MaterialID   `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Type     MaterialType `json:"type" yaml:"type"`
	Duration float64      `json:"duration" yaml:"duration"`
	URL      string       `json:"url,omitempty" yaml:"url,omitempty"`
}

// ScriptVariant is one alternative script for a segment.
type ScriptVariant struct {
	ID      string `json:"id" yaml:"id"`
	Content string `json:"content" yaml:"content"`
}

// Segment is one unit of the authored video.
type Segment struct {
	ID                  SegmentID       `json:"id" yaml:"id"`
	Index               int             `json:"index" yaml:"index"`
	Name                string          `json:"name" yaml:"name"`
	Script              string          `json:"script" yaml:"script"`
	ScriptVariants      []ScriptVariant `json:"scriptVariants,omitempty" yaml:"scriptVariants,omitempty"`
	Material            *MaterialRef    `json:"material,omitempty" yaml:"material,omitempty"`
	EnableDigitalHumans bool            `json:"enableDigitalHumans" yaml:"enableDigitalHumans"`
	Audio               *AudioSettings  `json:"audio,omitempty" yaml:"audio,omitempty"`

	// Derived on every script or material change, never persisted.
	MaterialWarning string `json:"materialWarning,omitempty" yaml:"-"`
}

// HasVariants reports whether committed script variants replace the raw script.
func (s Segment) HasVariants() bool {
	return len(s.ScriptVariants) > 0
}

// DisplayScript is the script text shown in the editor. With variants present
// the raw script is read-only and a placeholder is shown instead.
func (s Segment) DisplayScript() string {
	if s.HasVariants() {
		return fmt.Sprintf("Configured %d variants", len(s.ScriptVariants))
	}
	return s.Script
}

// MarshalJSON adds the derived displayScript to the segment's fields.
func (s Segment) MarshalJSON() ([]byte, error) {
	type plain Segment
	return json.Marshal(struct {
		plain
		DisplayScript string `json:"displayScript"`
	}{plain(s), s.DisplayScript()})
}

// PreviewScript is the script spoken in preview: the first variant when
// variants exist, the raw script otherwise.
func (s Segment) PreviewScript() string {
	if s.HasVariants() {
		return s.ScriptVariants[0].Content
	}
	return s.Script
}

func (s Segment) clone() Segment {
	out := s
	if s.ScriptVariants != nil {
		out.ScriptVariants = append([]ScriptVariant(nil), s.ScriptVariants...)
	}
	if s.Material != nil {
		m := *s.Material
		out.Material = &m
	}
	if s.Audio != nil {
		out.Audio = s.Audio.clone()
	}
	return out
}

// DigitalHuman is one entry of the global digital-human roster.
type DigitalHuman struct {
	ID       string            `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Position geometry.Position `json:"position" yaml:"position"`
	Scale    float64           `json:"scale" yaml:"scale"`
}

// GlobalConfig is project-wide configuration shared by every segment.
type GlobalConfig struct {
	Controller    string         `json:"controller" yaml:"controller"`
	DigitalHumans []DigitalHuman `json:"digitalHumans" yaml:"digitalHumans"`
	Audio         *AudioSettings `json:"audio,omitempty" yaml:"audio,omitempty"`
}

// Project is the persisted record: the ordered segments, their overlays and
// the global configuration.
type Project struct {
	ID        ProjectID    `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	Segments  []Segment    `json:"segments" yaml:"segments"`
	Overlays  []Overlay    `json:"overlays" yaml:"overlays"`
	Global    GlobalConfig `json:"global" yaml:"global"`
	UpdatedAt time.Time    `json:"updatedAt" yaml:"updatedAt"`
}
