// Package backend is the typed REST client for the bookshare order and
// payment service. All response-shape normalization and the uniform error
// taxonomy live here; the rest of the pipeline only sees domain types.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Abdelhameed97/bookshare-sub001/internal/session"
)

type apiResult struct {
	status int
	body   []byte
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
	breaker    *gobreaker.CircuitBreaker[apiResult]
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, sess *session.Session, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		session: sess,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[apiResult](gobreaker.Settings{
		Name: "bookshare-backend",
	})
	return c
}

// do performs one request. Transport faults and 5xx responses count as
// breaker failures; business 4xx responses do not trip it.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.breaker.Execute(func() (apiResult, error) {
		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			return apiResult{}, reqErr
		}
		defer resp.Body.Close()

		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return apiResult{}, fmt.Errorf("failed to read response body: %w", readErr)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return apiResult{}, fmt.Errorf("backend returned %d for %s %s", resp.StatusCode, method, path)
		}
		return apiResult{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("backend request failed: %w", err)
	}

	if res.status == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	if res.status >= http.StatusBadRequest {
		return &APIError{StatusCode: res.status, Message: errorMessage(res.body)}
	}

	if out != nil && len(res.body) > 0 {
		if err := json.Unmarshal(res.body, out); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return nil
}

// errorMessage extracts the human-readable reason from an error body.
// The backend uses {"message": ...}; {"error": ...} is tolerated.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
