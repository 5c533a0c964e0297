package hospitals

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Prober decides whether a hospital website is reachable.
type Prober interface {
	Alive(ctx context.Context, rawURL string) bool
}

// HTTPProber checks liveness with a HEAD request, following redirects. Any
// status below 400 counts as alive.
type HTTPProber struct {
	client *http.Client
}

func NewHTTPProber(timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPProber{client: &http.Client{Timeout: timeout}}
}

func (p *HTTPProber) Alive(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", rawURL).Msg("Liveness probe failed")
		return false
	}
	resp.Body.Close()

	return resp.StatusCode < http.StatusBadRequest
}
