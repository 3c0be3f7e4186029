package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

const (
	defaultRatePerSec = 5
	defaultBurst      = 5
	defaultTimeout    = 10 * time.Second

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond

	maxErrorBody = 512
)

// Recorder recibe una observación por cada intento HTTP contra una plataforma.
type Recorder interface {
	ObserveUpstream(platform, outcome string, d time.Duration)
}

// Client es el HTTP client compartido por los adapters, con rate limiting y retries.
// Cada plataforma tiene su propio Client y por tanto su propio limiter.
type Client struct {
	http     *http.Client
	name     string
	limiter  *rate.Limiter
	recorder Recorder
	retries  int
	backoff  time.Duration
}

// Option configura el Client.
type Option func(*Client)

// WithRateLimit fija el rate limit en requests/segundo y el burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			if burst <= 0 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithHTTPClient sustituye el *http.Client (tests, transports custom).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRecorder engancha las métricas.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithRetries cambia el nº de reintentos y la espera base del backoff.
func WithRetries(n int, base time.Duration) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
		if base > 0 {
			c.backoff = base
		}
	}
}

// New crea un Client identificado por name (normalmente la plataforma).
func New(name string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		name:    name,
		limiter: rate.NewLimiter(defaultRatePerSec, defaultBurst),
		retries: maxRetries,
		backoff: baseRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name devuelve el identificador del client.
func (c *Client) Name() string { return c.name }

// GetJSON hace un GET con rate limiting y retries y decodifica el JSON en out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// PostJSON hace un POST JSON con rate limiting y retries.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("httpx.PostJSON: marshal body: %w", err)
	}
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial, respetando el contexto.
// 429 y 5xx se reintentan; el resto de 4xx no.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		start := time.Now()
		resp, err := fn()
		if err != nil {
			c.observe("error", start)
			lastErr = fmt.Errorf("%w: %s: %w", domain.ErrUpstream, c.name, err)
			if ctx.Err() != nil {
				return fmt.Errorf("%s: %w", c.name, ctx.Err())
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			c.observe("rate_limited", start)
			slog.Warn("rate limited by API", "platform", c.name, "attempt", attempt+1)
			lastErr = fmt.Errorf("%w: %s: status 429", domain.ErrUpstream, c.name)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			c.observe("server_error", start)
			lastErr = fmt.Errorf("%w: %s: server error %d", domain.ErrUpstream, c.name, resp.StatusCode)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			c.observe("not_found", start)
			return fmt.Errorf("%w: %s", domain.ErrNotFound, c.name)
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			resp.Body.Close()
			c.observe("client_error", start)
			return fmt.Errorf("%w: %s: client error %d: %s", domain.ErrUpstream, c.name, resp.StatusCode, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			c.observe("decode_error", start)
			return fmt.Errorf("%s: decode response: %w", c.name, err)
		}
		c.observe("ok", start)
		return nil
	}
	return fmt.Errorf("%s: request failed after %d retries: %w", c.name, c.retries, lastErr)
}

func (c *Client) observe(outcome string, start time.Time) {
	if c.recorder != nil {
		c.recorder.ObserveUpstream(c.name, outcome, time.Since(start))
	}
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	if attempt >= c.retries {
		return
	}
	wait := time.Duration(math.Pow(2, float64(attempt))) * c.backoff
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
