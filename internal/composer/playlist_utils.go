package composer

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// BuildPreviewPlaylist renders the segment timeline as an HLS VOD playlist so
// an external player can preview the material sequence. Each segment
// contributes one entry of SegmentDuration seconds pointing at its material
// URL; segments without a playable material are skipped. An empty timeline
// produces a minimal valid playlist.
func BuildPreviewPlaylist(segments []Segment) string {
	var b strings.Builder

	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	b.WriteString("#EXT-X-PLAYLIST-TYPE:VOD\n")

	playable := make([]Segment, 0, len(segments))
	for _, s := range segments {
		if s.Material != nil && s.Material.URL != "" {
			playable = append(playable, s)
		}
	}

	b.WriteString(fmt.Sprintf("#EXT-X-TARGETDURATION:%d\n", targetDurationFromSegments(playable)))
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:0\n")

	for i, s := range playable {
		if i > 0 {
			b.WriteString("#EXT-X-DISCONTINUITY\n")
		}
		b.WriteString(fmt.Sprintf("#EXTINF:%.1f,%s\n", SegmentDuration(s), playlistText(s.Name)))
		b.WriteString(playlistText(s.Material.URL))
		b.WriteString("\n")
	}

	b.WriteString("#EXT-X-ENDLIST\n")
	return b.String()
}

// playlistText drops control characters so a value stays on its own line.
func playlistText(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, v)
}

// targetDurationFromSegments returns the ceiling of the longest segment
// duration, at least 1.
func targetDurationFromSegments(segments []Segment) int {
	max := 0.0
	for _, s := range segments {
		if d := SegmentDuration(s); d > max {
			max = d
		}
	}
	if max <= 0 {
		return 1
	}
	return int(math.Ceil(max))
}
