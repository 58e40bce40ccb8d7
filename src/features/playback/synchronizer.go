package playback

import (
	"sync"

	"github.com/contre95/lyricsync/src/features/metrics"
	"github.com/contre95/lyricsync/src/music"
)

// LineEvent is published whenever the current or upcoming lyric line
// changes. Current and Next are indexes into the active sequence, -1 when
// no line qualifies.
type LineEvent struct {
	Current int               `json:"current"`
	Next    int               `json:"next"`
	Line    *music.SyncedLine `json:"line,omitempty"`
}

// Synchronizer maps a continuously advancing playback position onto the
// active lyric sequence. A line is current only while the position lies in
// [line.Time, line.Time+window); during longer instrumental gaps no line is
// current and Next points at the upcoming one. Paused playback freezes the
// index.
type Synchronizer struct {
	mu          sync.RWMutex
	track       *music.Track
	device      music.Device
	isPlaying   bool
	position    int // milliseconds
	lines       []music.SyncedLine
	provider    music.Provider
	window      float64 // seconds
	current     int
	next        int
	subscribers map[string]chan LineEvent
	metrics     *metrics.Service
}

// NewSynchronizer creates a synchronizer with the given look-ahead window
// in seconds.
func NewSynchronizer(window float64, metricsService *metrics.Service) *Synchronizer {
	return &Synchronizer{
		window:      window,
		current:     -1,
		next:        -1,
		provider:    music.ProviderNone,
		subscribers: make(map[string]chan LineEvent),
		metrics:     metricsService,
	}
}

// computeIndexes returns the current and next line indexes for a position.
// Sequences are assumed ordered by time ascending; this is not re-validated.
func computeIndexes(lines []music.SyncedLine, positionMs int, window float64) (current, next int) {
	pos := float64(positionMs) / 1000
	current, next = -1, -1
	for i, line := range lines {
		if line.Time <= pos && pos < line.Time+window {
			current = i
		}
		if next == -1 && line.Time >= pos {
			next = i
		}
	}
	return current, next
}

// SetTrack replaces the tracked item and clears the active sequence.
func (s *Synchronizer) SetTrack(track *music.Track) {
	s.mu.Lock()
	s.track = track
	s.lines = nil
	s.provider = music.ProviderNone
	s.position = 0
	s.mu.Unlock()
	s.recompute()
}

// SetLines replaces the active lyric sequence.
func (s *Synchronizer) SetLines(provider music.Provider, lines []music.SyncedLine) {
	s.mu.Lock()
	s.provider = provider
	s.lines = lines
	s.mu.Unlock()
	s.recompute()
}

// Resync applies an authoritative position/playing observation from the
// host, correcting any drift accumulated by local ticking.
func (s *Synchronizer) Resync(positionMs int, isPlaying bool, device music.Device) {
	s.mu.Lock()
	s.position = positionMs
	s.isPlaying = isPlaying
	s.device = device
	s.mu.Unlock()
	s.recompute()
}

// Advance moves the local position forward by deltaMs. No-op while paused.
func (s *Synchronizer) Advance(deltaMs int) {
	s.mu.Lock()
	if !s.isPlaying {
		s.mu.Unlock()
		return
	}
	s.position += deltaMs
	s.mu.Unlock()
	s.recompute()
}

// recompute refreshes the indexes and publishes a LineEvent on change.
func (s *Synchronizer) recompute() {
	s.mu.Lock()
	current, next := computeIndexes(s.lines, s.position, s.window)
	changed := current != s.current || next != s.next
	s.current, s.next = current, next

	var event LineEvent
	if changed {
		event = LineEvent{Current: current, Next: next}
		if current >= 0 && current < len(s.lines) {
			line := s.lines[current]
			event.Line = &line
		}
	}
	subscribers := make([]chan LineEvent, 0, len(s.subscribers))
	for _, ch := range s.subscribers {
		subscribers = append(subscribers, ch)
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	s.metrics.RecordLineChange()
	for _, ch := range subscribers {
		publishLatest(ch, event)
	}
}

// publishLatest delivers an event without blocking: a slow subscriber only
// ever sees the latest pending target, older ones are dropped.
func publishLatest(ch chan LineEvent, event LineEvent) {
	select {
	case ch <- event:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- event:
	default:
	}
}

// Subscribe registers a line-change listener. The returned id cancels it.
func (s *Synchronizer) Subscribe() (string, <-chan LineEvent) {
	id := newSubscriberID()
	ch := make(chan LineEvent, 1)
	s.mu.Lock()
	s.subscribers[id] = ch
	s.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a listener.
func (s *Synchronizer) Unsubscribe(id string) {
	s.mu.Lock()
	delete(s.subscribers, id)
	s.mu.Unlock()
}

// Snapshot is the externally visible synchronizer state.
type Snapshot struct {
	Track     *music.Track
	Device    music.Device
	IsPlaying bool
	Position  int
	Provider  music.Provider
	Lines     []music.SyncedLine
	Current   int
	Next      int
}

// State returns a copy of the current synchronizer state.
func (s *Synchronizer) State() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Track:     s.track,
		Device:    s.device,
		IsPlaying: s.isPlaying,
		Position:  s.position,
		Provider:  s.provider,
		Lines:     s.lines,
		Current:   s.current,
		Next:      s.next,
	}
}

// Track returns the tracked item, nil when nothing is playing.
func (s *Synchronizer) Track() *music.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.track
}
