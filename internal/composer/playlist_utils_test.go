package composer

import (
	"strings"
	"testing"
)

func TestBuildPreviewPlaylist_empty(t *testing.T) {
	out := BuildPreviewPlaylist(nil)
	if !strings.HasPrefix(out, "#EXTM3U\n") {
		t.Error("expected #EXTM3U header")
	}
	if !strings.Contains(out, "#EXT-X-TARGETDURATION:1") {
		t.Error("expected target duration 1 for empty")
	}
	if !strings.Contains(out, "#EXT-X-ENDLIST") {
		t.Error("preview playlist is always complete")
	}
	if strings.Contains(out, "#EXTINF") {
		t.Error("empty timeline should have no entries")
	}
}

func TestBuildPreviewPlaylist_with_materials(t *testing.T) {
	segs := []Segment{
		{Name: "Segment 1", Material: &MaterialRef{ID: "m1", Duration: 2.5, URL: "/media/m1.mp4"}},
		{Name: "Segment 2", Script: "no material"},
		{Name: "Segment 3", Material: &MaterialRef{ID: "m3", Duration: 4.0, URL: "/media/m3.mp4"}},
	}
	out := BuildPreviewPlaylist(segs)

	if !strings.Contains(out, "#EXT-X-TARGETDURATION:4") {
		t.Errorf("expected TARGETDURATION 4: %s", out)
	}
	if !strings.Contains(out, "#EXTINF:2.5,Segment 1\n/media/m1.mp4") {
		t.Errorf("expected first entry: %s", out)
	}
	if !strings.Contains(out, "#EXTINF:4.0,Segment 3\n/media/m3.mp4") {
		t.Errorf("expected third entry: %s", out)
	}
	if strings.Contains(out, "Segment 2") {
		t.Errorf("segment without material should be skipped: %s", out)
	}
	if strings.Count(out, "#EXT-X-DISCONTINUITY") != 1 {
		t.Errorf("expected one discontinuity between two entries: %s", out)
	}
}

func TestBuildPreviewPlaylist_target_duration_ceiling(t *testing.T) {
	segs := []Segment{{Name: "Segment 1", Material: &MaterialRef{Duration: 1.1, URL: "/a.mp4"}}}
	out := BuildPreviewPlaylist(segs)
	if !strings.Contains(out, "#EXT-X-TARGETDURATION:2") {
		t.Errorf("expected TARGETDURATION 2 (ceil 1.1): %s", out)
	}
}

func TestBuildPreviewPlaylist_name_stays_on_one_line(t *testing.T) {
	segs := []Segment{
		{Name: "Intro\n#EXT-X-ENDLIST\r\nhttp://evil/x.ts", Material: &MaterialRef{ID: "m1", Duration: 2, URL: "/media/m1.mp4"}},
		{Name: "Outro", Material: &MaterialRef{ID: "m2", Duration: 2, URL: "/media/m2.mp4"}},
	}
	out := BuildPreviewPlaylist(segs)

	endlists := 0
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if line == "#EXT-X-ENDLIST" {
			endlists++
		}
		if strings.HasPrefix(line, "http://evil") {
			t.Errorf("name leaked a playlist line: %q", line)
		}
	}
	if endlists != 1 {
		t.Errorf("expected exactly one ENDLIST line, got %d:\n%s", endlists, out)
	}
	if !strings.Contains(out, "#EXTINF:2.0,Intro#EXT-X-ENDLISThttp://evil/x.ts\n") {
		t.Errorf("expected the sanitized title on the EXTINF line:\n%s", out)
	}
	if !strings.Contains(out, "/media/m2.mp4\n#EXT-X-ENDLIST\n") {
		t.Errorf("later entries should be intact:\n%s", out)
	}
}
