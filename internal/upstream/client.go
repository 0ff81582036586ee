// Package upstream is the HTTP client for the remote journal REST backend.
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

	"go.uber.org/zap"

	"github.com/noah-isme/journal-desk-api/internal/normalize"
	appErrors "github.com/noah-isme/journal-desk-api/pkg/errors"
)

const maxBodyBytes = 8 << 20

// Observer receives per-call timing.
type Observer interface {
	ObserveUpstreamCall(endpoint, outcome string, duration time.Duration)
}

// Options configure a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Observer   Observer
	Logger     *zap.Logger
	// OnUnauthorized is invoked with the rejected token when the backend answers 401.
	OnUnauthorized func(ctx context.Context, token string)
}

// Client talks to the journal backend on behalf of a signed-in panel user.
// It never retries; every failure is reported once to the caller.
type Client struct {
	baseURL        string
	http           *http.Client
	observer       Observer
	logger         *zap.Logger
	onUnauthorized func(ctx context.Context, token string)
}

// New builds a Client.
func New(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		http:           client,
		observer:       opts.Observer,
		logger:         logger,
		onUnauthorized: opts.OnUnauthorized,
	}
}

type call struct {
	endpoint    string
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
}

func (c *Client) do(ctx context.Context, rc call) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, rc.method, c.baseURL+rc.path, rc.body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if rc.contentType != "" {
		req.Header.Set("Content-Type", rc.contentType)
	}
	if rc.token != "" {
		req.Header.Set("Authorization", "Bearer "+rc.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(rc.endpoint, "error", start)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, appErrors.Wrap(ctxErr, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "backend request cancelled")
		}
		c.logger.Warn("backend unreachable", zap.String("endpoint", rc.endpoint), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, appErrors.ErrFetchFailed.Message)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.observe(rc.endpoint, "error", start)
		return nil, appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, appErrors.ErrFetchFailed.Message)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.observe(rc.endpoint, "unauthorized", start)
		if c.onUnauthorized != nil && rc.token != "" {
			c.onUnauthorized(ctx, rc.token)
		}
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.observe(rc.endpoint, "failed", start)
		message := serverMessage(body)
		c.logger.Warn("backend request failed",
			zap.String("endpoint", rc.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
		if message == "" {
			message = appErrors.ErrFetchFailed.Message
		}
		return nil, appErrors.Wrap(fmt.Errorf("%s %s: status %d", rc.method, rc.path, resp.StatusCode), appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, message)
	}
	c.observe(rc.endpoint, "ok", start)
	return body, nil
}

func (c *Client) observe(endpoint, outcome string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpstreamCall(endpoint, outcome, time.Since(start))
	}
}

// serverMessage extracts the backend-provided message, if any.
func serverMessage(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "msg"} {
		if text, ok := payload[key].(string); ok && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
	}
	return ""
}

func jsonBody(v interface{}) (io.Reader, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode backend request")
	}
	return bytes.NewReader(raw), nil
}

func (c *Client) getAll(ctx context.Context, token, endpoint, path, entity string) ([]interface{}, error) {
	body, err := c.do(ctx, call{endpoint: endpoint, method: http.MethodGet, path: path, token: token})
	if err != nil {
		return nil, err
	}
	envelope, err := normalize.ParseBody(body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, "backend returned malformed JSON")
	}
	return normalize.ExtractArray(envelope, normalize.PathsFor(entity)), nil
}

func (c *Client) send(ctx context.Context, token, endpoint, method, path string, payload interface{}) error {
	body, err := jsonBody(payload)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, call{endpoint: endpoint, method: method, path: path, token: token, body: body, contentType: "application/json"})
	return err
}
