package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	errx "github.com/triptrop/client/internal/core/error"
	logx "github.com/triptrop/client/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	// maxBodySize caps how much of a response is read; generated itineraries
	// are the largest payloads and stay far below this.
	maxBodySize = 8 << 20
	// RequestIDHeader correlates client log lines with server logs.
	RequestIDHeader = "X-Request-ID"
)

// Config holds the HTTP adapter settings.
type Config struct {
	BaseURL string        `envconfig:"API_BASE_URL" required:"true"`
	Prefix  string        `envconfig:"API_PREFIX" default:"/api/v1"`
	Timeout time.Duration `envconfig:"API_TIMEOUT" default:"30s"`
	// RateLimit caps outgoing requests per second; 0 disables the limiter.
	RateLimit float64 `envconfig:"API_RATE_LIMIT" default:"0"`
	RateBurst int     `envconfig:"API_RATE_BURST" default:"5"`
}

// HTTP is the net/http implementation of Transport.
type HTTP struct {
	client  *http.Client
	base    string
	tokens  TokenSource
	limiter *rate.Limiter
}

// Option customises an HTTP transport.
type Option func(*HTTP)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) { h.client = c }
}

// NewHTTP builds an HTTP transport. tokens may be nil.
func NewHTTP(cfg Config, tokens TokenSource, opts ...Option) (*HTTP, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("transport: base url is empty")
	}
	h := &HTTP{
		client: &http.Client{Timeout: cfg.Timeout},
		base:   cfg.endpoint(),
		tokens: tokens,
	}
	if cfg.RateLimit > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// URL resolves a path against the base endpoint.
func (h *HTTP) URL(path string) string {
	return join(h.base, path)
}

// URL resolves a path against the configured endpoint without building a
// transport.
func (c Config) URL(path string) string {
	return join(c.endpoint(), path)
}

func (c Config) endpoint() string {
	return strings.TrimRight(strings.TrimRight(c.BaseURL, "/")+"/"+strings.Trim(c.Prefix, "/"), "/")
}

func join(base, path string) string {
	return base + "/" + strings.TrimLeft(path, "/")
}

// Do implements Transport.
func (h *HTTP) Do(ctx context.Context, r Request) (*Response, error) {
	op := r.Method + " " + r.Path
	reqURL := h.URL(r.Path)
	if len(r.Query) > 0 {
		reqURL += "?" + r.Query.Encode()
	}

	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, errx.Network(err).WithOp(op)
		}
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, errx.New(errx.KindValidation, 0, "request body not encodable", err).WithOp(op)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, reqURL, body)
	if err != nil {
		return nil, errx.New(errx.KindValidation, 0, "request not constructible", err).WithOp(op)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.tokens != nil {
		token, err := h.tokens.Token(ctx)
		if err != nil {
			// the server decides authorization, so a broken slot is not fatal
			logx.Warn().Err(err).Str("op", op).Msg("credential lookup failed, sending unauthenticated")
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		logx.Warn().Err(err).Str("op", op).Str("request_id", requestID).Msg("request failed")
		return nil, errx.Classify(err).WithOp(op)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		logx.Warn().Err(err).Str("op", op).Str("request_id", requestID).Msg("reading response failed")
		return nil, errx.Network(err).WithOp(op)
	}

	logx.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Str("request_id", requestID).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := errx.FromStatus(resp.StatusCode, errx.DetailMessage(data)).WithOp(op)
		if e.Kind == errx.KindServer {
			logx.Error().Int("status", resp.StatusCode).Str("op", op).Str("request_id", requestID).Msg(e.Message)
		}
		return nil, e
	}

	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("null")
	}
	return &Response{Status: resp.StatusCode, Data: json.RawMessage(data)}, nil
}

var _ Transport = (*HTTP)(nil)
