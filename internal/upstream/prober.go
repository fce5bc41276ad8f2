package upstream

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Prober checks whether a generated image URL is likely to resolve.
type Prober interface {
	Probe(ctx context.Context, imageURL string) error
}

// HeadProber issues a HEAD request and follows redirects.
type HeadProber struct {
	client  *http.Client
	timeout time.Duration
}

func NewHeadProber(client *http.Client, timeout time.Duration) *HeadProber {
	return &HeadProber{
		client:  client,
		timeout: timeout,
	}
}

// Probe returns nil when the final response status is below 400.
func (p *HeadProber) Probe(ctx context.Context, imageURL string) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, */*")
	req.Header.Set("User-Agent", "Go-Property-Enhancer/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
