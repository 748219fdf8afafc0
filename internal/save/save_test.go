package save

import (
	"bytes"
	"testing"
)

func TestWriteLoadRoundTrip(t *testing.T) {
	p := &Payload{
		Date:       Date{Year: 2026, Month: 7, Day: 31, Hour: 12, Minute: 30, Second: 0, Weekday: 5},
		Title:      "Chapter 3",
		SceneTitle: "The Rooftop",
		ScriptText: "scene03.vn",
		HasState:   true,
		State: StateChunk{
			Motion: MotionSnapshot{SnowSeeds: [][2]uint64{{42, 7}, {1, 2}}},
			Audio:  AudioSnapshot{MasterVolume: 0.8, Playing: true, TrackPath: "bgm01.wma", PositionMs: 15000},
			TableIDs: []uint64{1, 2, 3},
		},
		ThumbnailW:    4,
		ThumbnailH:    2,
		ThumbnailRGBA: bytes.Repeat([]byte{10, 20, 30, 255}, 8),
	}

	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Title != p.Title || got.SceneTitle != p.SceneTitle || got.ScriptText != p.ScriptText {
		t.Fatalf("text fields mismatch: %+v", got)
	}
	if got.Date != p.Date {
		t.Fatalf("date mismatch: got %+v want %+v", got.Date, p.Date)
	}
	if !got.HasState {
		t.Fatalf("expected HasState true")
	}
	if len(got.State.Motion.SnowSeeds) != 2 || got.State.Motion.SnowSeeds[0] != [2]uint64{42, 7} {
		t.Fatalf("snow seeds mismatch: %+v", got.State.Motion.SnowSeeds)
	}
	if got.State.Audio != p.State.Audio {
		t.Fatalf("audio snapshot mismatch: got %+v want %+v", got.State.Audio, p.State.Audio)
	}
	if len(got.State.TableIDs) != 3 || got.State.TableIDs[2] != 3 {
		t.Fatalf("table ids mismatch: %+v", got.State.TableIDs)
	}
	if !bytes.Equal(got.ThumbnailRGBA, p.ThumbnailRGBA) {
		t.Fatalf("thumbnail mismatch")
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("XXXX")))
	if err == nil {
		t.Fatalf("expected bad magic to error")
	}
}

func TestWriteLoadWithoutStateChunk(t *testing.T) {
	p := &Payload{
		Date:       Date{Year: 2026, Month: 1, Day: 1},
		Title:      "Prologue",
		SceneTitle: "Intro",
		ScriptText: "intro.vn",
		HasState:   false,
	}
	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.HasState {
		t.Fatalf("expected HasState false")
	}
}
