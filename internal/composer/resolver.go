package composer

// Resolver answers what a segment actually renders once global and
// per-segment configuration are combined. It holds the roster by reference, so
// results always reflect the latest roster edits.
type Resolver struct {
	roster *Roster
	global *GlobalConfig
}

// NewResolver returns a Resolver over the session's roster and global config.
func NewResolver(roster *Roster, global *GlobalConfig) *Resolver {
	return &Resolver{roster: roster, global: global}
}

// DigitalHumansFor returns the live roster when the segment opted in.
func (r *Resolver) DigitalHumansFor(s Segment) []DigitalHuman {
	if !s.EnableDigitalHumans {
		return nil
	}
	return r.roster.List()
}

// AudioFor returns the segment's effective audio: its own settings when set,
// otherwise the project-wide settings, backfilled from DefaultAudio.
func (r *Resolver) AudioFor(s Segment) ResolvedAudio {
	if s.Audio != nil {
		return s.Audio.Resolve(DefaultAudio)
	}
	if r.global != nil && r.global.Audio != nil {
		return r.global.Audio.Resolve(DefaultAudio)
	}
	return (*AudioSettings)(nil).Resolve(DefaultAudio)
}
