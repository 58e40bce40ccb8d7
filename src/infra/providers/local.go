package providers

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/contre95/lyricsync/src/features/lyrics"
	"github.com/contre95/lyricsync/src/music"
)

// LocalProvider serves user-supplied "<artist> - <title>.lrc" files from a
// local directory. The directory is watched so dropped-in files become
// available without a restart.
type LocalProvider struct {
	dir     string
	enabled bool

	mu    sync.RWMutex
	index map[string]string // normalized "artist - title" -> file path

	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ lyrics.Provider = (*LocalProvider)(nil)

// NewLocalProvider creates the provider and builds the initial file index.
func NewLocalProvider(dir string, enabled bool) *LocalProvider {
	p := &LocalProvider{
		dir:      dir,
		enabled:  enabled && dir != "",
		index:    make(map[string]string),
		stopChan: make(chan struct{}),
	}
	if p.enabled {
		p.rescan()
	}
	return p
}

// Start begins watching the lyrics directory for changes.
func (p *LocalProvider) Start() error {
	if !p.enabled {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(p.dir); err != nil {
		watcher.Close()
		return err
	}
	p.watcher = watcher
	go p.watchLoop()
	slog.Info("Local lyrics watcher started", "path", p.dir)
	return nil
}

// Stop stops the directory watcher.
func (p *LocalProvider) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
		if p.watcher != nil {
			p.watcher.Close()
		}
	})
}

func (p *LocalProvider) watchLoop() {
	for {
		select {
		case <-p.stopChan:
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if strings.EqualFold(filepath.Ext(event.Name), ".lrc") {
				slog.Debug("Local lyrics directory changed", "file", event.Name, "op", event.Op.String())
				p.rescan()
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Local lyrics watcher error", "error", err)
		}
	}
}

// rescan rebuilds the whole index. The directory holds at most a few hundred
// small files, so a full rebuild per event is simpler than tracking deltas.
func (p *LocalProvider) rescan() {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		slog.Warn("Cannot read local lyrics directory", "path", p.dir, "error", err)
		return
	}
	index := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".lrc") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		index[normalizeKey(name)] = filepath.Join(p.dir, entry.Name())
	}
	p.mu.Lock()
	p.index = index
	p.mu.Unlock()
}

func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func (p *LocalProvider) FetchLyrics(ctx context.Context, track *music.Track) ([]music.SyncedLine, error) {
	key := normalizeKey(track.MainArtist() + " - " + track.Title)

	p.mu.RLock()
	path, ok := p.index[key]
	p.mu.RUnlock()
	if !ok {
		return nil, lyrics.ErrNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lyrics.ErrNotFound
	}
	lines := ParseSyncedLyrics(string(data))
	if len(lines) == 0 {
		return nil, lyrics.ErrNotFound
	}
	return lines, nil
}

func (p *LocalProvider) Provider() music.Provider { return music.ProviderLocal }
func (p *LocalProvider) Name() string             { return "Local" }
func (p *LocalProvider) IsEnabled() bool          { return p.enabled }
