package playback

import (
	"testing"

	"github.com/contre95/lyricsync/src/features/metrics"
	"github.com/contre95/lyricsync/src/music"
)

func syncLines() []music.SyncedLine {
	return []music.SyncedLine{
		{Time: 5.0, LrcTime: "00:05.00", Text: "first"},
		{Time: 10.0, LrcTime: "00:10.00", Text: "second"},
		{Time: 40.0, LrcTime: "00:40.00", Text: "after the gap"},
	}
}

func TestComputeIndexes(t *testing.T) {
	lines := syncLines()
	window := 8.0

	cases := []struct {
		name       string
		positionMs int
		current    int
		next       int
	}{
		{"before first line", 1000, -1, 0},
		{"exactly at line start", 5000, 0, 0},
		{"inside window", 6500, 0, 1},
		{"later line wins", 10100, 1, 2},
		{"inside instrumental gap", 25000, -1, 2},
		{"window edge is exclusive", 18000, -1, 2},
		{"just inside window edge", 17990, 1, 2},
		{"after last line", 50000, -1, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			current, next := computeIndexes(lines, tc.positionMs, window)
			if current != tc.current {
				t.Errorf("current: expected %d, got %d", tc.current, current)
			}
			if next != tc.next {
				t.Errorf("next: expected %d, got %d", tc.next, next)
			}
		})
	}
}

func TestComputeIndexes_EmptySequence(t *testing.T) {
	current, next := computeIndexes(nil, 5000, 8.0)
	if current != -1 || next != -1 {
		t.Errorf("expected -1/-1 on empty sequence, got %d/%d", current, next)
	}
}

func TestAdvance_PausedFreezesIndex(t *testing.T) {
	sync := NewSynchronizer(8.0, metrics.NewService())
	sync.SetTrack(&music.Track{ID: "t", Title: "Song"})
	sync.SetLines(music.ProviderSpotify, syncLines())
	sync.Resync(5000, false, music.Device{})

	before := sync.State()
	sync.Advance(10000)
	after := sync.State()

	if after.Position != before.Position {
		t.Errorf("expected position frozen while paused, got %d", after.Position)
	}
	if after.Current != before.Current {
		t.Errorf("expected current index frozen while paused, got %d", after.Current)
	}
}

func TestAdvance_TicksForward(t *testing.T) {
	sync := NewSynchronizer(8.0, metrics.NewService())
	sync.SetLines(music.ProviderSpotify, syncLines())
	sync.Resync(4500, true, music.Device{})

	if state := sync.State(); state.Current != -1 {
		t.Fatalf("expected no current line yet, got %d", state.Current)
	}

	sync.Advance(1000)
	if state := sync.State(); state.Current != 0 {
		t.Errorf("expected first line current after tick, got %d", state.Current)
	}
}

func TestResync_CorrectsDrift(t *testing.T) {
	sync := NewSynchronizer(8.0, metrics.NewService())
	sync.SetLines(music.ProviderSpotify, syncLines())
	sync.Resync(6000, true, music.Device{})
	sync.Advance(1000)

	// The host observed a seek backwards.
	sync.Resync(1000, true, music.Device{})
	state := sync.State()
	if state.Position != 1000 {
		t.Errorf("expected authoritative position 1000, got %d", state.Position)
	}
	if state.Current != -1 || state.Next != 0 {
		t.Errorf("expected indexes recomputed after resync, got %d/%d", state.Current, state.Next)
	}
}

func TestSetTrack_ClearsSequence(t *testing.T) {
	sync := NewSynchronizer(8.0, metrics.NewService())
	sync.SetLines(music.ProviderSpotify, syncLines())
	sync.Resync(6000, true, music.Device{})

	sync.SetTrack(&music.Track{ID: "next", Title: "Next Song"})
	state := sync.State()
	if len(state.Lines) != 0 {
		t.Error("expected lines cleared on track change")
	}
	if state.Provider != music.ProviderNone {
		t.Errorf("expected provider reset, got %s", state.Provider)
	}
	if state.Current != -1 {
		t.Errorf("expected no current line, got %d", state.Current)
	}
}

func TestSubscribe_PublishesLineChanges(t *testing.T) {
	sync := NewSynchronizer(8.0, metrics.NewService())
	sync.SetLines(music.ProviderSpotify, syncLines())
	id, events := sync.Subscribe()
	defer sync.Unsubscribe(id)

	sync.Resync(5000, true, music.Device{})

	select {
	case event := <-events:
		if event.Current != 0 {
			t.Errorf("expected current index 0, got %d", event.Current)
		}
		if event.Line == nil || event.Line.Text != "first" {
			t.Errorf("expected the first line in the event, got %+v", event.Line)
		}
	default:
		t.Fatal("expected a line event to be published")
	}
}

func TestSubscribe_SlowConsumerSeesLatest(t *testing.T) {
	sync := NewSynchronizer(8.0, metrics.NewService())
	sync.SetLines(music.ProviderSpotify, syncLines())
	id, events := sync.Subscribe()
	defer sync.Unsubscribe(id)

	// Two changes without the subscriber draining in between.
	sync.Resync(5000, true, music.Device{})
	sync.Resync(10000, true, music.Device{})

	select {
	case event := <-events:
		if event.Current != 1 {
			t.Errorf("expected only the latest event, got current %d", event.Current)
		}
	default:
		t.Fatal("expected a pending event")
	}
}
