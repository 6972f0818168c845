package composer

import (
	"github.com/google/uuid"

	"segment-studio/internal/geometry"
)

// LoopMode controls how the BGM track list is played.
type LoopMode string

const (
	LoopSequential LoopMode = "loop"
	LoopShuffle    LoopMode = "shuffle"
)

var (
	SpeedBounds  = geometry.Bounds{Min: 0.5, Max: 2}
	VolumeBounds = geometry.Bounds{Min: 0, Max: 100}
)

// BGMTrack is one background music track.
type BGMTrack struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	MaterialID MaterialID `json:"materialId,omitempty" yaml:"materialId,omitempty"`
	Duration   float64    `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// AudioSettings is a segment's (or the project's) voice and BGM
// configuration. Unset fields are empty strings or nil pointers so a partial
// value can be told apart from an explicit zero.
type AudioSettings struct {
	VoiceID     string     `json:"voiceId,omitempty" yaml:"voiceId,omitempty"`
	VoiceName   string     `json:"voiceName,omitempty" yaml:"voiceName,omitempty"`
	VoiceAvatar string     `json:"voiceAvatar,omitempty" yaml:"voiceAvatar,omitempty"`
	VoiceStyle  string     `json:"voiceStyle,omitempty" yaml:"voiceStyle,omitempty"`
	Speed       *float64   `json:"speed,omitempty" yaml:"speed,omitempty"`
	TTSVolume   *float64   `json:"ttsVolume,omitempty" yaml:"ttsVolume,omitempty"`
	BGMVolume   *float64   `json:"bgmVolume,omitempty" yaml:"bgmVolume,omitempty"`
	AutoDucking *bool      `json:"autoDucking,omitempty" yaml:"autoDucking,omitempty"`
	Tracks      []BGMTrack `json:"tracks,omitempty" yaml:"tracks,omitempty"`
	LoopMode    LoopMode   `json:"loopMode,omitempty" yaml:"loopMode,omitempty"`
}

// ResolvedAudio is AudioSettings with every field filled in.
type ResolvedAudio struct {
	VoiceID     string     `json:"voiceId"`
	VoiceName   string     `json:"voiceName"`
	VoiceAvatar string     `json:"voiceAvatar"`
	VoiceStyle  string     `json:"voiceStyle"`
	Speed       float64    `json:"speed"`
	TTSVolume   float64    `json:"ttsVolume"`
	BGMVolume   float64    `json:"bgmVolume"`
	AutoDucking bool       `json:"autoDucking"`
	Tracks      []BGMTrack `json:"tracks"`
	LoopMode    LoopMode   `json:"loopMode"`
}

// DefaultAudio is the fixed table missing audio fields are backfilled from.
var DefaultAudio = ResolvedAudio{
	VoiceID:     "voice-001",
	VoiceName:   "Default Voice",
	VoiceAvatar: "avatars/voice-001.png",
	VoiceStyle:  "neutral",
	Speed:       1.0,
	TTSVolume:   80,
	BGMVolume:   30,
	AutoDucking: true,
	Tracks:      []BGMTrack{},
	LoopMode:    LoopSequential,
}

func (a *AudioSettings) clone() *AudioSettings {
	out := *a
	if a.Speed != nil {
		v := *a.Speed
		out.Speed = &v
	}
	if a.TTSVolume != nil {
		v := *a.TTSVolume
		out.TTSVolume = &v
	}
	if a.BGMVolume != nil {
		v := *a.BGMVolume
		out.BGMVolume = &v
	}
	if a.AutoDucking != nil {
		v := *a.AutoDucking
		out.AutoDucking = &v
	}
	if a.Tracks != nil {
		out.Tracks = append([]BGMTrack(nil), a.Tracks...)
	}
	return &out
}

// MergeAudio applies the set fields of patch onto current, then backfills every
// field that is still unset from base. current is never modified; a new value
// is returned. A non-nil patch.Tracks replaces the track list.
func MergeAudio(current *AudioSettings, patch AudioSettings, base ResolvedAudio) (*AudioSettings, error) {
	if patch.LoopMode != "" && patch.LoopMode != LoopSequential && patch.LoopMode != LoopShuffle {
		return nil, ErrInvalidLoopMode
	}

	var out *AudioSettings
	if current == nil {
		out = &AudioSettings{}
	} else {
		out = current.clone()
	}

	if patch.VoiceID != "" {
		out.VoiceID = patch.VoiceID
	}
	if patch.VoiceName != "" {
		out.VoiceName = patch.VoiceName
	}
	if patch.VoiceAvatar != "" {
		out.VoiceAvatar = patch.VoiceAvatar
	}
	if patch.VoiceStyle != "" {
		out.VoiceStyle = patch.VoiceStyle
	}
	if patch.Speed != nil {
		out.Speed = floatPtr(SpeedBounds.Clamp(*patch.Speed))
	}
	if patch.TTSVolume != nil {
		out.TTSVolume = floatPtr(VolumeBounds.Clamp(*patch.TTSVolume))
	}
	if patch.BGMVolume != nil {
		out.BGMVolume = floatPtr(VolumeBounds.Clamp(*patch.BGMVolume))
	}
	if patch.AutoDucking != nil {
		v := *patch.AutoDucking
		out.AutoDucking = &v
	}
	if patch.Tracks != nil {
		out.Tracks = append([]BGMTrack{}, patch.Tracks...)
	}
	if patch.LoopMode != "" {
		out.LoopMode = patch.LoopMode
	}

	backfill(out, base)
	return out, nil
}

// AppendTrack returns current with track appended to its list and every unset
// field backfilled from base. A track without an id gets one.
func AppendTrack(current *AudioSettings, track BGMTrack, base ResolvedAudio) *AudioSettings {
	var out *AudioSettings
	if current == nil {
		out = &AudioSettings{}
	} else {
		out = current.clone()
	}
	if track.ID == "" {
		track.ID = uuid.NewString()
	}
	out.Tracks = append(out.Tracks, track)
	backfill(out, base)
	return out
}

// RemoveTrack returns current without the track with id, and whether it was
// present.
func RemoveTrack(current *AudioSettings, id string) (*AudioSettings, bool) {
	if current == nil {
		return nil, false
	}
	out := current.clone()
	kept := out.Tracks[:0]
	found := false
	for _, t := range out.Tracks {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	out.Tracks = kept
	return out, found
}

func backfill(a *AudioSettings, base ResolvedAudio) {
	if a.VoiceID == "" {
		a.VoiceID = base.VoiceID
	}
	if a.VoiceName == "" {
		a.VoiceName = base.VoiceName
	}
	if a.VoiceAvatar == "" {
		a.VoiceAvatar = base.VoiceAvatar
	}
	if a.VoiceStyle == "" {
		a.VoiceStyle = base.VoiceStyle
	}
	if a.Speed == nil {
		a.Speed = floatPtr(base.Speed)
	}
	if a.TTSVolume == nil {
		a.TTSVolume = floatPtr(base.TTSVolume)
	}
	if a.BGMVolume == nil {
		a.BGMVolume = floatPtr(base.BGMVolume)
	}
	if a.AutoDucking == nil {
		v := base.AutoDucking
		a.AutoDucking = &v
	}
	if a.Tracks == nil {
		a.Tracks = append([]BGMTrack{}, base.Tracks...)
	}
	if a.LoopMode == "" {
		a.LoopMode = base.LoopMode
	}
}

// Resolve returns a fully populated copy of a, taking unset fields from base.
func (a *AudioSettings) Resolve(base ResolvedAudio) ResolvedAudio {
	var full AudioSettings
	if a != nil {
		full = *a.clone()
	}
	backfill(&full, base)
	return ResolvedAudio{
		VoiceID:     full.VoiceID,
		VoiceName:   full.VoiceName,
		VoiceAvatar: full.VoiceAvatar,
		VoiceStyle:  full.VoiceStyle,
		Speed:       *full.Speed,
		TTSVolume:   *full.TTSVolume,
		BGMVolume:   *full.BGMVolume,
		AutoDucking: *full.AutoDucking,
		Tracks:      full.Tracks,
		LoopMode:    full.LoopMode,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
