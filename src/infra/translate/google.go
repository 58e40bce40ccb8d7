// Package translate implements the translating.Engine interface against the
// public Google translate endpoint.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/contre95/lyricsync/src/features/translating"
	"github.com/contre95/lyricsync/src/infra/providers"
)

type gtxResponse struct {
	Sentences []gtxSentence `json:"sentences"`
}

type gtxSentence struct {
	Trans       string `json:"trans"`
	Orig        string `json:"orig"`
	Translit    string `json:"translit"`
	SrcTranslit string `json:"src_translit"`
}

// Engine calls the unauthenticated gtx endpoint. The dt parameter selects the
// payload: "t" returns translations, "rm" returns transliterations.
type Engine struct {
	baseURL string
	client  *providers.Client
}

var _ translating.Engine = (*Engine)(nil)

// NewEngine creates a new translation engine.
func NewEngine(baseURL string, client *providers.Client) *Engine {
	return &Engine{baseURL: baseURL, client: client}
}

func (e *Engine) Translate(ctx context.Context, text, targetLang string) ([]translating.Sentence, error) {
	return e.request(ctx, text, targetLang, "t")
}

func (e *Engine) Romanize(ctx context.Context, text string) ([]translating.Sentence, error) {
	return e.request(ctx, text, "en", "rm")
}

func (e *Engine) request(ctx context.Context, text, targetLang, dt string) ([]translating.Sentence, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", targetLang)
	params.Set("dt", dt)
	params.Set("dj", "1")
	params.Set("source", "input")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", translating.ErrTranslationFailed, err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", translating.ErrTranslationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", translating.ErrTranslationFailed, resp.StatusCode)
	}

	var payload gtxResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %s", translating.ErrTranslationFailed, err)
	}
	if len(payload.Sentences) == 0 {
		return nil, translating.ErrTranslationFailed
	}

	sentences := make([]translating.Sentence, 0, len(payload.Sentences))
	for _, s := range payload.Sentences {
		translit := s.SrcTranslit
		if translit == "" {
			translit = s.Translit
		}
		if s.Orig == "" && s.Trans == "" && translit == "" {
			continue
		}
		sentences = append(sentences, translating.Sentence{
			Orig:     s.Orig,
			Trans:    s.Trans,
			Translit: translit,
		})
	}
	if len(sentences) == 0 {
		return nil, translating.ErrTranslationFailed
	}
	return sentences, nil
}
