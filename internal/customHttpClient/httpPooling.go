package customHttpClient

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/newschat/internal/config"
)

var (
	sharedTransport *http.Transport
	transportOnce   sync.Once
)

// transport is shared by every outbound client so LLM, news and search calls reuse connections.
func transport() *http.Transport {
	transportOnce.Do(func() {
		dialer := &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}
		sharedTransport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			MaxIdleConns:          config.MaxIdleConns,
			MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
			IdleConnTimeout:       config.IdleConnTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: config.OutboundTimeout,
		}
	})
	return sharedTransport
}

// NewPooledClient returns an http.Client on the shared transport.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: transport(),
	}
}

type headerTransport struct {
	headers map[string]string
	next    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())
	for k, v := range t.headers {
		reqCopy.Header.Set(k, v)
	}
	return t.next.RoundTrip(reqCopy)
}
