package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fintrack/fintrack/internal/apierror"
	"fintrack/fintrack/internal/logging"
)

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

// Client talks to the backend over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	logger  logging.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTokenSource attaches the bearer token provider.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger logging.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// request describes one call to the backend.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	// anonymous requests carry no bearer token and never expire the session
	anonymous bool
}

// do sends req and returns the response with its body fully read. Non-2xx
// responses are turned into *apierror.APIError; failures to get a response
// at all into *apierror.TransportError.
func (c *Client) do(ctx context.Context, req request) (*http.Response, []byte, error) {
	// req.path is already escaped; JoinPath keeps escaped ids intact
	u := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), req.body)
	if err != nil {
		return nil, nil, fmt.Errorf("build request %s %s: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	authenticated := false
	if c.tokens != nil && !req.anonymous {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
			authenticated = true
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.WithError(err).Warn("Backend request failed",
			logging.F(logging.FieldMethod, req.method),
			logging.F(logging.FieldPath, req.path))
		return nil, nil, &apierror.TransportError{Method: req.method, Path: req.path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	log := c.logger.WithFields(
		logging.F(logging.FieldMethod, req.method),
		logging.F(logging.FieldPath, req.path),
		logging.F(logging.FieldStatusCode, resp.StatusCode),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &apierror.APIError{
			Method:     req.method,
			Path:       req.path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(body),
		}
		if resp.StatusCode == http.StatusUnauthorized && authenticated {
			log.Info("Session rejected by backend, expiring token")
			c.tokens.Expire()
		} else {
			log.Debug("Backend returned an error", logging.F(logging.FieldError, apiErr.Detail))
		}
		return resp, body, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &apierror.TransportError{Method: req.method, Path: req.path, Err: err}
	}
	log.Debug("Backend request completed")
	return resp, body, nil
}

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	_, body, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	return decode(path, body, out)
}

// sendJSON encodes in as the request body and decodes the response into out
// when out is not nil.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out interface{}) error {
	return c.send(ctx, request{method: method, path: path}, in, out)
}

// send encodes in as the JSON body of req and decodes the response into out.
func (c *Client) send(ctx context.Context, req request, in, out interface{}) error {
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request %s %s: %w", req.method, req.path, err)
		}
		req.body = bytes.NewReader(payload)
		req.contentType = "application/json"
	}

	_, respBody, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(req.path, respBody, out)
}

func decode(path string, body []byte, out interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("decode response of %s: empty body", path)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response of %s: %w", path, err)
	}
	return nil
}

// parseDetail extracts a human readable message from an error body:
// FastAPI's {"detail": "..."} or {"detail": [{"msg": ...}]}, or an
// {"error"} / {"message"} field. It returns "" when none is present.
func parseDetail(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string        `json:"msg"`
			Loc []interface{} `json:"loc"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, item := range items {
				if item.Msg == "" {
					continue
				}
				if n := len(item.Loc); n > 0 {
					msgs = append(msgs, fmt.Sprintf("%v: %s", item.Loc[n-1], item.Msg))
				} else {
					msgs = append(msgs, item.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
