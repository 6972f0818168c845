package composer

import (
	"context"
	"sync"
	"time"

	"segment-studio/internal/geometry"
)

// DefaultController is the owner of the digital-human roster and the shared
// audio settings of a new project.
var DefaultController = Owner{Name: "global settings"}

// DefaultSurface is the preview container used until the editor reports its
// real bounds (a 9:16 frame).
var DefaultSurface = geometry.Rect{Width: 360, Height: 640}

// Session owns the live state of one project: the segment collection, the
// overlays, the global roster and configuration, the placement surface and
// the preview mapper. Consumers receive these by reference through the
// session; none of them is ever duplicated. Exported methods are safe for
// concurrent use; each call runs to completion before the next one starts.
type Session struct {
	mu sync.Mutex

	id       ProjectID
	name     string
	catalog  MaterialCatalog
	segments *Collection
	overlays *OverlaySet
	roster   *Roster
	global   GlobalConfig
	resolver *Resolver
	mapper   *Mapper
	surface  *Surface
}

// SessionOptions configures a new Session.
type SessionOptions struct {
	Catalog    MaterialCatalog
	Controller Owner
	Estimator  DurationEstimator
	SafeZones  []SafeZone
}

// NewSession returns an empty session for project id.
func NewSession(id ProjectID, name string, opts SessionOptions) *Session {
	if opts.Catalog == nil {
		opts.Catalog = NewInMemoryCatalog()
	}
	if opts.Controller == (Owner{}) {
		opts.Controller = DefaultController
	}
	s := &Session{
		id:       id,
		name:     name,
		catalog:  opts.Catalog,
		segments: NewCollection(opts.Estimator),
		overlays: NewOverlaySet(),
		roster:   NewRoster(opts.Controller),
		surface:  NewSurface(DefaultSurface),
	}
	s.resolver = NewResolver(s.roster, &s.global)
	s.mapper = NewMapper(s.segments, s.overlays, s.resolver, opts.SafeZones)
	return s
}

// RestoreSession rebuilds a session from a persisted project.
func RestoreSession(p Project, opts SessionOptions) *Session {
	if p.Global.Controller != "" {
		opts.Controller = Owner{Name: p.Global.Controller}
	}
	s := NewSession(p.ID, p.Name, opts)
	s.segments.restore(p.Segments)

	known := make(map[SegmentID]struct{}, len(p.Segments))
	for _, seg := range s.segments.Segments() {
		known[seg.ID] = struct{}{}
	}
	var overlays []Overlay
	for _, o := range p.Overlays {
		if _, ok := known[o.SegmentID]; ok {
			overlays = append(overlays, o)
		}
	}
	s.overlays.restore(overlays)
	s.roster.restore(p.Global.DigitalHumans)
	if p.Global.Audio != nil {
		s.global.Audio = p.Global.Audio.clone()
	}
	return s
}

// ID returns the project id.
func (s *Session) ID() ProjectID { return s.id }

// Snapshot returns the project record for persistence or export.
func (s *Session) Snapshot() Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Project{
		ID:       s.id,
		Name:     s.name,
		Segments: s.segments.Segments(),
		Overlays: s.overlays.All(),
		Global: GlobalConfig{
			Controller:    s.roster.Controller().Name,
			DigitalHumans: s.roster.List(),
		},
	}
	if s.global.Audio != nil {
		p.Global.Audio = s.global.Audio.clone()
	}
	return p
}

// Segments returns the ordered segments.
func (s *Session) Segments() []Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.Segments()
}

// Segment returns one segment.
func (s *Session) Segment(id SegmentID) (Segment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.Get(id)
}

// AppendSegment adds a segment at the end.
func (s *Session) AppendSegment(d SegmentDefaults) Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.Append(d)
}

// ImportScripts creates one segment per non-empty line of text.
func (s *Session) ImportScripts(text string) []Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.InsertMany(SplitScriptLines(text))
}

// RemoveSegments deletes segments and their overlays. The roster is left
// untouched.
func (s *Session) RemoveSegments(ids []SegmentID) []SegmentID {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := make(map[SegmentID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	removed := s.segments.RemoveMany(set)
	if len(removed) == 0 {
		return nil
	}

	gone := make(map[SegmentID]struct{}, len(removed))
	for _, id := range removed {
		gone[id] = struct{}{}
	}
	for _, o := range s.overlays.All() {
		if _, ok := gone[o.SegmentID]; ok {
			s.surface.Forget(ElementID(o.ID))
		}
	}
	s.overlays.RemoveForSegments(gone)
	return removed
}

// MoveSegment reorders a segment.
func (s *Session) MoveSegment(id SegmentID, index int) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.Move(id, index)
}

// RenameSegment sets a custom segment name.
func (s *Session) RenameSegment(id SegmentID, name string) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.Rename(id, name)
}

// UpdateScript edits the raw script.
func (s *Session) UpdateScript(id SegmentID, text string) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.UpdateScript(id, text)
}

// AttachMaterial resolves materialID through the catalog and attaches it. A
// catalog miss detaches whatever was attached.
func (s *Session) AttachMaterial(id SegmentID, materialID MaterialID) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.catalog.GetMaterial(materialID)
	if !ok {
		return s.segments.DetachMaterial(id)
	}
	return s.segments.AttachMaterial(id, m)
}

// DetachMaterial clears the segment's material.
func (s *Session) DetachMaterial(id SegmentID) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.DetachMaterial(id)
}

// SetScriptVariants commits script variants.
func (s *Session) SetScriptVariants(id SegmentID, variants []ScriptVariant) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.SetScriptVariants(id, variants)
}

// AddScriptVariant appends one variant.
func (s *Session) AddScriptVariant(id SegmentID, content string) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.AddScriptVariant(id, content)
}

// RemoveScriptVariant deletes one variant.
func (s *Session) RemoveScriptVariant(id SegmentID, variantID string) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.RemoveScriptVariant(id, variantID)
}

// ClearScriptVariants returns the segment to its raw script.
func (s *Session) ClearScriptVariants(id SegmentID) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.ClearScriptVariants(id)
}

// SetDigitalHumansEnabled opts a segment in or out of the roster.
func (s *Session) SetDigitalHumansEnabled(id SegmentID, enabled bool) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.SetDigitalHumansEnabled(id, enabled)
}

// UpdateAudio merges a partial audio update into a segment.
func (s *Session) UpdateAudio(id SegmentID, patch AudioSettings) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.UpdateAudio(id, patch)
}

// AddBGMTrack appends a BGM track to a segment.
func (s *Session) AddBGMTrack(id SegmentID, track BGMTrack) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.AddBGMTrack(id, track)
}

// RemoveBGMTrack deletes a BGM track from a segment.
func (s *Session) RemoveBGMTrack(id SegmentID, trackID string) (Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments.RemoveBGMTrack(id, trackID)
}

// EffectiveAudio returns the fully resolved audio of a segment.
func (s *Session) EffectiveAudio(id SegmentID) (ResolvedAudio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seg, ok := s.segments.Get(id)
	if !ok {
		return ResolvedAudio{}, ErrSegmentNotFound
	}
	return s.resolver.AudioFor(seg), nil
}

// UpdateGlobalAudio merges a partial update into the project-wide audio
// settings. Like the roster, only the controller may change them.
func (s *Session) UpdateGlobalAudio(by Owner, patch AudioSettings) (AudioSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if by != s.roster.Controller() {
		return AudioSettings{}, &RejectedError{Resource: "global audio", Controller: s.roster.Controller().Name}
	}
	merged, err := MergeAudio(s.global.Audio, patch, DefaultAudio)
	if err != nil {
		return AudioSettings{}, err
	}
	s.global.Audio = merged
	return *merged.clone(), nil
}

// CreateOverlay adds an overlay to an existing segment.
func (s *Session) CreateOverlay(kind OverlayKind, segmentID SegmentID, defaults OverlayPatch) (Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.segments.Get(segmentID); !ok {
		return Overlay{}, ErrSegmentNotFound
	}
	return s.overlays.Create(kind, segmentID, defaults)
}

// UpdateOverlay merges a partial overlay update.
func (s *Session) UpdateOverlay(id OverlayID, patch OverlayPatch) (Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlays.Update(id, patch)
}

// RemoveOverlay deletes an overlay.
func (s *Session) RemoveOverlay(id OverlayID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.overlays.Remove(id); err != nil {
		return err
	}
	s.surface.Forget(ElementID(id))
	return nil
}

// Overlays returns the overlays of a segment.
func (s *Session) Overlays(segmentID SegmentID) []Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlays.ForSegment(segmentID)
}

// Controller returns the current roster controller.
func (s *Session) Controller() Owner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Controller()
}

// Handover passes roster control from by to next.
func (s *Session) Handover(by, next Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Handover(by, next)
}

// AddDigitalHuman adds a roster entry on behalf of by.
func (s *Session) AddDigitalHuman(by Owner, name string) (DigitalHuman, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Add(by, name)
}

// UpdateDigitalHuman edits a roster entry on behalf of by.
func (s *Session) UpdateDigitalHuman(by Owner, id string, patch DigitalHumanPatch) (DigitalHuman, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Update(by, id, patch)
}

// RemoveDigitalHuman deletes a roster entry on behalf of by.
func (s *Session) RemoveDigitalHuman(by Owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.roster.Remove(by, id); err != nil {
		return err
	}
	s.surface.Forget(ElementID(id))
	return nil
}

// DigitalHumans returns the global roster.
func (s *Session) DigitalHumans() []DigitalHuman {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.List()
}

// DigitalHumansFor returns what a segment renders from the roster.
func (s *Session) DigitalHumansFor(id SegmentID) ([]DigitalHuman, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seg, ok := s.segments.Get(id)
	if !ok {
		return nil, ErrSegmentNotFound
	}
	return s.resolver.DigitalHumansFor(seg), nil
}

// SetSurface reports the preview container bounds.
func (s *Session) SetSurface(r geometry.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface.SetContainer(r)
}

// PointerDown starts manipulating an overlay or digital human. actor is only
// consulted for digital humans.
func (s *Session) PointerDown(actor Owner, id ElementID, handle Handle, pointer geometry.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target Placeable
	if _, ok := s.overlays.Get(OverlayID(id)); ok {
		target = OverlayTarget{Overlays: s.overlays}
	} else {
		target = RosterTarget{Roster: s.roster, Actor: actor}
	}
	return s.surface.PointerDown(target, id, handle, pointer)
}

// PointerMove continues the current interaction.
func (s *Session) PointerMove(pointer geometry.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.PointerMove(pointer)
}

// PointerUp ends the current interaction.
func (s *Session) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface.PointerUp()
}

// PointerLeave ends the current interaction because the pointer left the
// surface.
func (s *Session) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surface.PointerLeave()
}

// Interaction returns the surface state and the z-order.
func (s *Session) Interaction() (InteractionState, []ElementID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.State(), s.surface.ZOrder()
}

// TotalDuration is the timeline length in seconds.
func (s *Session) TotalDuration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalDuration(s.segments.Segments())
}

// FrameAt returns the preview frame at t seconds.
func (s *Session) FrameAt(t float64) (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapper.FrameAt(t, TotalDuration(s.segments.Segments()))
}

// PreviewPlaylist renders the material sequence as an HLS playlist.
func (s *Session) PreviewPlaylist() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildPreviewPlaylist(s.segments.Segments())
}

// Play runs the preview clock from the start until the end of the timeline or
// until ctx is cancelled, emitting a frame per tick. Edits made meanwhile are
// visible in the following frames.
func (s *Session) Play(ctx context.Context, interval time.Duration, onFrame func(Frame)) error {
	player := NewPlayer(s.TotalDuration())
	player.Follow(s.TotalDuration)
	return player.Run(ctx, interval, func(current float64) {
		if f, ok := s.FrameAt(current); ok && onFrame != nil {
			onFrame(f)
		}
	})
}
