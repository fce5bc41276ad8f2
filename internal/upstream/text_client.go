package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-property-enhancer/internal/prompt"
)

// maxResponseBytes caps how much of an analysis response is read.
const maxResponseBytes = 4 << 20

// StatusError reports a non-2xx answer from a collaborator.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

// TextCompleter sends a multimodal payload and returns the raw response text.
type TextCompleter interface {
	Complete(ctx context.Context, payload prompt.Payload) (string, error)
}

// TextClient posts payloads to the analysis endpoint.
type TextClient struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

func NewTextClient(client *http.Client, endpoint string, timeout time.Duration) *TextClient {
	return &TextClient{
		client:   client,
		endpoint: endpoint,
		timeout:  timeout,
	}
}

// Complete makes exactly one attempt. Non-2xx statuses come back as
// *StatusError; the body of a 2xx answer is returned untouched.
func (c *TextClient) Complete(ctx context.Context, payload prompt.Payload) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", "Go-Property-Enhancer/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(raw)), 256),
		}
	}

	return string(raw), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
