package upstream

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

const maxRedirects = 3

// NewHTTPClient returns a client shared by every collaborator call. Per-call
// deadlines come from the caller's context, so the client itself only bounds
// connection setup.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		// Requests fan in to two hosts
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,

		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects (limit: %d)", maxRedirects)
			}
			return nil
		},
	}
}
