package translating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/contre95/lyricsync/src/features/config"
	"github.com/contre95/lyricsync/src/music"
	"github.com/gosimple/unidecode"
)

// ErrTranslationFailed means the adapter produced no usable result. Partial
// results never count as success.
var ErrTranslationFailed = errors.New("translation returned no usable result")

// Sentence is one translated unit returned by the engine.
type Sentence struct {
	Orig     string
	Trans    string
	Translit string
}

// Engine is the remote machine-translation backend. Implemented by the
// Google endpoint client in infra/translate.
type Engine interface {
	// Translate translates text (possibly multi-line) into the target language.
	Translate(ctx context.Context, text, targetLang string) ([]Sentence, error)
	// Romanize transliterates text into Latin script.
	Romanize(ctx context.Context, text string) ([]Sentence, error)
}

// CrowdSource supplies crowd-sourced translation pairs for a track, keyed by
// original line text. Implemented by the Musixmatch client; optional.
type CrowdSource interface {
	CrowdTranslations(ctx context.Context, track *music.Track) (map[string]string, error)
}

// Service deduplicates lyric text, runs the configured translation strategy,
// and remaps results back onto the timestamped sequence.
type Service struct {
	engine Engine
	crowd  CrowdSource
	config *config.Manager
}

// NewService creates a new translating service. crowd may be nil.
func NewService(engine Engine, crowd CrowdSource, cfg *config.Manager) *Service {
	return &Service{engine: engine, crowd: crowd, config: cfg}
}

// Adapt derives a translated or romanized sequence from lines. Timestamps
// are preserved untouched; no-text lines stay no-text.
func (s *Service) Adapt(ctx context.Context, track *music.Track, lines []music.SyncedLine, target music.Provider) ([]music.SyncedLine, error) {
	if !target.IsDerived() {
		return nil, fmt.Errorf("cannot adapt lyrics into %q", target)
	}

	distinct := distinctTexts(lines)
	if len(distinct) == 0 {
		return nil, ErrTranslationFailed
	}

	lookup := make(map[string]string, len(distinct))

	// Crowd-sourced pairs beat machine translation when available.
	if target == music.ProviderTranslated && s.crowd != nil && track != nil {
		if pairs, err := s.crowd.CrowdTranslations(ctx, track); err == nil {
			for orig, trans := range pairs {
				if trans != "" {
					lookup[orig] = trans
				}
			}
		} else {
			slog.Debug("No crowd translations", "trackID", track.ID, "error", err)
		}
	}

	var missing []string
	for _, text := range distinct {
		if _, ok := lookup[text]; !ok {
			missing = append(missing, text)
		}
	}

	if len(missing) > 0 {
		var err error
		switch s.config.Get().Translate.Strategy {
		case "per_line":
			err = s.perLine(ctx, missing, target, lookup)
		default:
			err = s.batch(ctx, missing, target, lookup)
		}
		if err != nil && target == music.ProviderRomanized && s.config.Get().Translate.OfflineRomanize {
			slog.Warn("Remote romanization failed, falling back to offline transliteration", "error", err)
			for _, text := range missing {
				lookup[text] = strings.TrimSpace(unidecode.Unidecode(text))
			}
			err = nil
		}
		if err != nil {
			return nil, err
		}
	}

	usable := 0
	for _, v := range lookup {
		if v != "" {
			usable++
		}
	}
	if usable == 0 {
		return nil, ErrTranslationFailed
	}

	adapted := make([]music.SyncedLine, len(lines))
	for i, line := range lines {
		adapted[i] = line
		if !line.HasText() {
			continue
		}
		if text, ok := lookup[line.Text]; ok && text != "" {
			adapted[i].Text = text
		}
	}
	return adapted, nil
}

// batch joins all distinct texts into one request and splits the sentence
// list back by original line.
func (s *Service) batch(ctx context.Context, texts []string, target music.Provider, lookup map[string]string) error {
	joined := strings.Join(texts, "\n")

	var sentences []Sentence
	var err error
	if target == music.ProviderRomanized {
		sentences, err = s.engine.Romanize(ctx, joined)
	} else {
		sentences, err = s.engine.Translate(ctx, joined, s.config.Get().Translate.TargetLanguage)
	}
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTranslationFailed, err)
	}
	if len(sentences) == 0 {
		return ErrTranslationFailed
	}

	for _, sentence := range sentences {
		orig := stripNewline(sentence.Orig)
		if orig == "" {
			continue
		}
		result := sentence.Trans
		if target == music.ProviderRomanized {
			result = sentence.Translit
		}
		lookup[orig] = stripNewline(result)
	}
	return nil
}

// perLine issues one request per distinct text with bounded concurrency.
// Lines already entirely in Latin script are skipped when romanizing.
func (s *Service) perLine(ctx context.Context, texts []string, target music.Provider, lookup map[string]string) error {
	maxConcurrent := s.config.Get().Translate.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrent)

	for _, text := range texts {
		if target == music.ProviderRomanized && isLatin(text) {
			lookup[text] = text
			continue
		}

		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var sentences []Sentence
			var err error
			if target == music.ProviderRomanized {
				sentences, err = s.engine.Romanize(ctx, text)
			} else {
				sentences, err = s.engine.Translate(ctx, text, s.config.Get().Translate.TargetLanguage)
			}
			if err != nil || len(sentences) == 0 {
				return
			}

			result := sentences[0].Trans
			if target == music.ProviderRomanized {
				result = sentences[0].Translit
			}
			if result == "" {
				return
			}
			mu.Lock()
			lookup[text] = stripNewline(result)
			mu.Unlock()
		}(text)
	}
	wg.Wait()
	return nil
}

// distinctTexts collects the distinct non-empty line texts in first-seen
// order. Translation is billed per call; a chorus should cost one request.
func distinctTexts(lines []music.SyncedLine) []string {
	seen := make(map[string]struct{}, len(lines))
	var texts []string
	for _, line := range lines {
		if !line.HasText() {
			continue
		}
		if _, ok := seen[line.Text]; ok {
			continue
		}
		seen[line.Text] = struct{}{}
		texts = append(texts, line.Text)
	}
	return texts
}

func stripNewline(text string) string {
	return strings.ReplaceAll(text, "\n", "")
}

// isLatin reports whether every letter in the text is already Latin script.
func isLatin(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) && !unicode.Is(unicode.Latin, r) {
			return false
		}
	}
	return true
}
