package lyrics

import (
	"sync"

	"github.com/contre95/lyricsync/src/music"
)

type negKey struct {
	trackID  string
	provider music.Provider
}

// negativeCache is the session-scoped record of providers already confirmed
// to have no lyrics for a track. Memory only; discarded on restart or purge.
type negativeCache struct {
	entries sync.Map // map[negKey]struct{}
}

func newNegativeCache() *negativeCache {
	return &negativeCache{}
}

// Record marks a (track, provider) pair as a known miss.
func (n *negativeCache) Record(trackID string, provider music.Provider) {
	n.entries.Store(negKey{trackID: trackID, provider: provider}, struct{}{})
}

// Known reports whether the pair is already a known miss.
func (n *negativeCache) Known(trackID string, provider music.Provider) bool {
	_, ok := n.entries.Load(negKey{trackID: trackID, provider: provider})
	return ok
}

// AllNegative reports whether every given provider is a known miss for the
// track. An empty provider list is never all-negative.
func (n *negativeCache) AllNegative(trackID string, providers []music.Provider) bool {
	if len(providers) == 0 {
		return false
	}
	for _, p := range providers {
		if !n.Known(trackID, p) {
			return false
		}
	}
	return true
}

// Clear drops every recorded miss.
func (n *negativeCache) Clear() {
	n.entries.Range(func(key, value any) bool {
		n.entries.Delete(key)
		return true
	})
}
