package customHttpClient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/pkg/logger_i"
	"github.com/avast/retry-go/v4"
)

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the status is worth another attempt.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Connector struct {
	baseURL    string
	httpClient *http.Client
	retryOpts  []retry.Option
	logger     *logger_i.Logger
}

type ConnectorConfig struct {
	Name     string
	BaseURL  string
	Timeout  time.Duration
	Headers  map[string]string
	Attempts uint
}

func NewConnector(cfg ConnectorConfig) *Connector {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.OutboundTimeout
	}
	attempts := cfg.Attempts
	if attempts == 0 {
		attempts = config.RetryAttempts
	}

	client := NewPooledClient(timeout)
	if len(cfg.Headers) > 0 {
		client.Transport = &headerTransport{headers: cfg.Headers, next: client.Transport}
	}

	return &Connector{
		baseURL:    cfg.BaseURL,
		httpClient: client,
		logger:     logger_i.NewLogger("http:" + cfg.Name),
		retryOpts: []retry.Option{
			retry.Attempts(attempts),
			retry.Delay(config.RetryDelay),
			retry.MaxDelay(config.RetryMaxDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(isRetryable),
		},
	}
}

func isRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	// context cancellation is final, everything else is a transport failure
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// DoRequest sends reqBody as JSON (when non-nil) and decodes the response into respBody.
func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, query url.Values, reqBody, respBody any) error {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var rawBody []byte
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		rawBody = data
	}

	log := c.logger.WithTrace(ctx).With("method", method, "endpoint", endpoint)
	opts := append([]retry.Option{
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("retrying request", "attempt", n+1, "error", err)
		}),
	}, c.retryOpts...)

	body, err := retry.DoWithData(func() ([]byte, error) {
		return c.do(ctx, method, target, rawBody)
	}, opts...)
	if err != nil {
		log.Error("request failed", "error", err)
		return err
	}

	if respBody != nil && len(body) > 0 {
		if err := json.Unmarshal(body, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Connector) do(ctx context.Context, method, target string, rawBody []byte) ([]byte, error) {
	var bodyReader io.Reader
	if rawBody != nil {
		bodyReader = bytes.NewReader(rawBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}
	if rawBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	return body, nil
}
