package httpclient

import (
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// New creates an HTTP client for outbound calls (JWKS, identity provider)
// with tuned connection reuse and a traced transport.
func New(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(transport),
	}
}

var (
	shared     *http.Client
	sharedOnce sync.Once
)

// Shared returns a process-wide client with a 15s timeout
func Shared() *http.Client {
	sharedOnce.Do(func() {
		shared = New(15 * time.Second)
	})
	return shared
}
