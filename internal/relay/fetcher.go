// Package relay issues upstream requests on behalf of the dashboard and
// classifies what comes back.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fundboard/fundboard/internal/logger"
	"github.com/fundboard/fundboard/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBodyBytes caps how much of an upstream body is read.
	DefaultMaxBodyBytes = 5 << 20
)

// Fetcher retrieves a JSON document from an allowed upstream URL.
// Implementations never return Go errors; every failure is a Response kind.
type Fetcher interface {
	Fetch(ctx context.Context, target string) Response
}

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	maxBody    int64
	origin     string
	logger     *zap.Logger
	metrics    *metrics.Registry
}

// Option configures a Direct or Remote fetcher.
type Option func(*options)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRateLimit throttles outbound calls. A non-positive rps disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		if rps <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxBodyBytes caps the upstream body size.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBody = n
		}
	}
}

// WithOrigin sets the site used for the Referer and Origin headers.
func WithOrigin(origin string) Option {
	return func(o *options) {
		o.origin = strings.TrimSuffix(origin, "/")
	}
}

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records per-call outcomes.
func WithMetrics(m *metrics.Registry) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(domain string, opts []Option) options {
	o := options{
		timeout: DefaultTimeout,
		maxBody: DefaultMaxBodyBytes,
		origin:  "https://" + domain,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		// the per-call context carries the timeout
		o.httpClient = &http.Client{}
	}
	o.logger = logger.OrNop(o.logger)
	return o
}

// Direct calls the upstream itself, presenting a browser header signature.
type Direct struct {
	domain string
	opts   options
}

// NewDirect creates a fetcher restricted to domain and its subdomains.
func NewDirect(domain string, opts ...Option) *Direct {
	return &Direct{
		domain: domain,
		opts:   buildOptions(domain, opts),
	}
}

// Domain returns the registered upstream domain.
func (d *Direct) Domain() string {
	return d.domain
}

// Fetch performs one GET against target. There are no retries.
func (d *Direct) Fetch(ctx context.Context, target string) Response {
	start := time.Now()
	resp := d.fetch(ctx, target)
	d.opts.metrics.RecordRelay(resp.Kind.String(), time.Since(start).Seconds())

	if !resp.OK() {
		d.opts.logger.Debug("relay request failed",
			zap.String("target", target),
			zap.Stringer("kind", resp.Kind),
			zap.Int("http_status", resp.HTTPStatus),
			zap.String("message", resp.Message),
		)
	}
	return resp
}

func (d *Direct) fetch(ctx context.Context, target string) Response {
	u, rejected, ok := checkTarget(target, d.domain)
	if !ok {
		return rejected
	}

	ctx, cancel := context.WithTimeout(ctx, d.opts.timeout)
	defer cancel()

	if d.opts.limiter != nil {
		if err := d.opts.limiter.Wait(ctx); err != nil {
			return NetworkFailure(fmt.Sprintf("waiting for rate limiter: %v", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return NetworkFailure(fmt.Sprintf("building request: %v", err))
	}
	setBrowserHeaders(req.Header, d.opts.origin)

	res, err := d.opts.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NetworkFailure(fmt.Sprintf("upstream timeout after %s", d.opts.timeout))
		}
		return NetworkFailure(err.Error())
	}
	defer res.Body.Close()

	body, err := readBody(res.Body, d.opts.maxBody)
	if err != nil {
		return NetworkFailure(err.Error())
	}

	return classifyBody(res.StatusCode, res.Header.Get("Content-Type"), body)
}

// readBody reads at most limit bytes. A longer body is an error rather
// than a silently truncated document.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("body exceeds %d bytes", limit)
	}
	return body, nil
}

// classifyBody decides what an upstream answer is. Bot protection answers
// with an HTML interstitial, sometimes with a 200 status, so markup is
// treated as a block regardless of status.
func classifyBody(status int, contentType string, body []byte) Response {
	if status < 200 || status >= 300 || isMarkupType(contentType) || looksLikeMarkup(body) {
		return Blocked(status, body)
	}
	if !json.Valid(body) {
		return InvalidJSON(body)
	}
	return Success(body)
}

func isMarkupType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

func looksLikeMarkup(body []byte) bool {
	trimmed := bytes.TrimLeft(body, "\ufeff \t\r\n")
	if len(trimmed) > 16 {
		trimmed = trimmed[:16]
	}
	lead := bytes.ToLower(trimmed)
	return bytes.HasPrefix(lead, []byte("<!doctype")) || bytes.HasPrefix(lead, []byte("<html"))
}
