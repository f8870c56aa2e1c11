// Package api talks to the catalog backend. It owns the wire format: request
// encoding, response envelopes, field-name normalization and error decoding.
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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/smileynet/storefront/internal/logger"
	"github.com/smileynet/storefront/internal/observability"
	"github.com/smileynet/storefront/internal/token"
)

// DefaultTimeout bounds a request when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response body is read.
const maxBody = 16 << 20

// Options configure a Client.
type Options struct {
	BaseURL    string // e.g. http://localhost:8080
	Version    string // path segment after /api/, e.g. v1
	Timeout    time.Duration
	Tokens     token.Store // optional; adds a bearer token when one is stored
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
	Telemetry  *observability.Config
}

// Client sends requests to /api/<version> under the base URL.
type Client struct {
	base    string
	timeout time.Duration
	tokens  token.Store
	http    *http.Client
	log     logrus.FieldLogger
	tracer  *observability.Tracer
	metrics *observability.Metrics
}

// New creates a Client.
func New(opts Options) *Client {
	version := opts.Version
	if version == "" {
		version = "v1"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		base:    strings.TrimRight(opts.BaseURL, "/") + "/api/" + version,
		timeout: timeout,
		tokens:  opts.Tokens,
		http:    hc,
		log:     log,
		tracer:  opts.Telemetry.Tracer(),
		metrics: opts.Telemetry.Metrics(),
	}
}

// BaseURL returns the versioned API root.
func (c *Client) BaseURL() string {
	return c.base
}

// Authenticated reports whether a bearer token is available.
func (c *Client) Authenticated() bool {
	return c.tokens != nil && c.tokens.Has()
}

func (c *Client) url(path string, query url.Values) string {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends one request and returns the response body of a 2xx response.
// Any failure is an *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqID := logger.RequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = logger.ContextWithRequestID(ctx, reqID)
	}
	ctx, span := c.tracer.StartRequest(ctx, method, path, reqID)
	defer span.End()

	log := logger.WithContext(ctx, c.log).WithFields(logrus.Fields{"method": method, "path": path})
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), body)
	if err != nil {
		return nil, &Error{Code: CodeNetwork, Message: "building request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if tok, err := c.tokens.Get(); err == nil {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := transportError(err)
		c.metrics.RecordRequest(ctx, method, path, 0, time.Since(start))
		observability.RecordError(span, apiErr, apiErr.Code)
		log.WithError(err).Warn("request failed")
		return nil, apiErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	c.metrics.RecordRequest(ctx, method, path, resp.StatusCode, time.Since(start))
	observability.SetStatus(span, resp.StatusCode)
	if err != nil {
		apiErr := transportError(err)
		observability.RecordError(span, apiErr, apiErr.Code)
		log.WithError(err).Warn("reading response")
		return nil, apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := responseError(resp.StatusCode, data)
		observability.RecordError(span, apiErr, apiErr.Code)
		log.WithFields(logrus.Fields{"status": resp.StatusCode, "code": apiErr.Code}).Warn(apiErr.Message)
		return nil, apiErr
	}

	log.WithFields(logrus.Fields{"status": resp.StatusCode, "duration": time.Since(start)}).Debug("request done")
	return data, nil
}

// get issues a GET and returns the raw body.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

// sendJSON encodes payload as the request body.
func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("api: encoding %s %s: %w", method, path, err)
	}
	return c.do(ctx, method, path, nil, bytes.NewReader(b), "application/json")
}

// sendMultipart posts payload as the "dados" part plus an optional "imagem" part.
func (c *Client) sendMultipart(ctx context.Context, method, path string, payload any, img *Upload) ([]byte, error) {
	body, contentType, err := encodeMultipart(payload, img)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, path, nil, body, contentType)
}

// del issues a DELETE.
func (c *Client) del(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, "")
	return err
}
