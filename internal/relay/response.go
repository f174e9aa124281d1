package relay

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fundboard/fundboard/internal/core"
)

// previewRunes bounds the body excerpt attached to failed responses.
const previewRunes = 200

// Kind tags the outcome of a relayed request
type Kind int

const (
	KindSuccess Kind = iota
	KindRejected
	KindBlocked
	KindInvalidJSON
	KindUpstreamError
	KindNetworkFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRejected:
		return "rejected"
	case KindBlocked:
		return "blocked"
	case KindInvalidJSON:
		return "invalid_json"
	case KindUpstreamError:
		return "upstream_error"
	case KindNetworkFailure:
		return "network_failure"
	default:
		return "unknown"
	}
}

// Response is the tagged result of a relayed request. Only a Success
// carries a Body.
type Response struct {
	Kind       Kind
	Body       json.RawMessage
	HTTPStatus int
	Preview    string
	Message    string
}

// OK reports whether the response carries usable data
func (r Response) OK() bool {
	return r.Kind == KindSuccess
}

// Err maps a failed response to the matching core error, nil on success.
func (r Response) Err() error {
	switch r.Kind {
	case KindSuccess:
		return nil
	case KindRejected:
		return core.WrapError(core.ErrRelayRejected, fmt.Errorf("%s", r.Message))
	case KindBlocked:
		return core.WrapError(core.ErrUpstreamBlocked, fmt.Errorf("status %d", r.HTTPStatus))
	case KindInvalidJSON:
		return core.WrapError(core.ErrUpstreamMalformed, fmt.Errorf("body starts with %q", truncate(r.Preview, 40)))
	case KindUpstreamError:
		return core.WrapError(core.ErrUpstreamHTTP, fmt.Errorf("status %d", r.HTTPStatus))
	default:
		return core.WrapError(core.ErrNetworkFailure, fmt.Errorf("%s", r.Message))
	}
}

// Success wraps a parsed upstream body
func Success(body []byte) Response {
	return Response{Kind: KindSuccess, Body: json.RawMessage(body), HTTPStatus: 200}
}

// Rejected reports a policy violation; no network call was made
func Rejected(message string) Response {
	return Response{Kind: KindRejected, Message: message}
}

// Blocked reports a challenge or interstitial page
func Blocked(status int, body []byte) Response {
	return Response{Kind: KindBlocked, HTTPStatus: status, Preview: Preview(body)}
}

// InvalidJSON reports a body that is neither markup nor JSON
func InvalidJSON(body []byte) Response {
	return Response{Kind: KindInvalidJSON, HTTPStatus: 200, Preview: Preview(body)}
}

// UpstreamError reports an unexpected status from a remote relay
func UpstreamError(status int) Response {
	return Response{Kind: KindUpstreamError, HTTPStatus: status}
}

// NetworkFailure reports a transport level failure, including timeouts
func NetworkFailure(message string) Response {
	return Response{Kind: KindNetworkFailure, Message: message}
}

// Preview returns the leading runes of body, safe to echo back to clients.
func Preview(body []byte) string {
	return truncate(strings.ToValidUTF8(string(body), ""), previewRunes)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
