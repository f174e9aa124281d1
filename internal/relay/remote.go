package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Remote reaches the upstream through a deployed relay endpoint instead of
// calling it directly. It maps the relay's status codes back to Response
// kinds so callers cannot tell the two apart.
type Remote struct {
	baseURL string
	domain  string
	opts    options
}

// NewRemote creates a fetcher that calls {baseURL}/relay. The allow-list
// for domain is also enforced locally.
func NewRemote(baseURL, domain string, opts ...Option) *Remote {
	return &Remote{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		domain:  domain,
		opts:    buildOptions(domain, opts),
	}
}

// Fetch asks the relay for target.
func (r *Remote) Fetch(ctx context.Context, target string) Response {
	start := time.Now()
	resp := r.fetch(ctx, target)
	r.opts.metrics.RecordRelay(resp.Kind.String(), time.Since(start).Seconds())

	if !resp.OK() {
		r.opts.logger.Debug("remote relay request failed",
			zap.String("target", target),
			zap.Stringer("kind", resp.Kind),
			zap.Int("http_status", resp.HTTPStatus),
		)
	}
	return resp
}

func (r *Remote) fetch(ctx context.Context, target string) Response {
	u, rejected, ok := checkTarget(target, r.domain)
	if !ok {
		return rejected
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.timeout)
	defer cancel()

	if r.opts.limiter != nil {
		if err := r.opts.limiter.Wait(ctx); err != nil {
			return NetworkFailure(fmt.Sprintf("waiting for rate limiter: %v", err))
		}
	}

	reqURL := fmt.Sprintf("%s/relay?url=%s", r.baseURL, url.QueryEscape(u.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return NetworkFailure(fmt.Sprintf("building request: %v", err))
	}
	req.Header.Set("Accept", "application/json")

	res, err := r.opts.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NetworkFailure(fmt.Sprintf("relay timeout after %s", r.opts.timeout))
		}
		return NetworkFailure(err.Error())
	}
	defer res.Body.Close()

	body, err := readBody(res.Body, r.opts.maxBody)
	if err != nil {
		return NetworkFailure(err.Error())
	}

	return fromRelayStatus(res.StatusCode, body)
}

// fromRelayStatus inverts the relay endpoint's status mapping.
func fromRelayStatus(status int, body []byte) Response {
	doc := gjson.ParseBytes(body)

	switch status {
	case http.StatusOK:
		if !json.Valid(body) {
			return InvalidJSON(body)
		}
		return Success(body)
	case http.StatusBadRequest, http.StatusForbidden:
		return Rejected(doc.Get("error").String())
	case http.StatusServiceUnavailable:
		return Response{
			Kind:       KindBlocked,
			HTTPStatus: int(doc.Get("httpStatus").Int()),
			Preview:    doc.Get("preview").String(),
		}
	case http.StatusBadGateway:
		if upstream := doc.Get("httpStatus"); upstream.Exists() {
			return UpstreamError(int(upstream.Int()))
		}
		return Response{
			Kind:       KindInvalidJSON,
			HTTPStatus: http.StatusOK,
			Preview:    doc.Get("preview").String(),
		}
	case http.StatusInternalServerError:
		msg := doc.Get("details").String()
		if msg == "" {
			msg = doc.Get("error").String()
		}
		return NetworkFailure(msg)
	default:
		return UpstreamError(status)
	}
}
