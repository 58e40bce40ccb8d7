package providers

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "Lyricsync/1.0 (+https://github.com/contre95/lyricsync)"

// Client wraps an http.Client with a shared token-bucket limiter so the
// lyric providers stay polite towards free upstream services.
type Client struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client allowing perSecond requests with a small
// burst, each request bounded by timeout.
func NewClient(timeout time.Duration, perSecond float64) *Client {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSecond), 3),
	}
}

// Do waits for the limiter, then performs the request.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return c.client.Do(req)
}
