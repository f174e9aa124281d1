// internal/api/handler/api/relay.go
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fundboard/fundboard/internal/api/response"
	"github.com/fundboard/fundboard/internal/relay"
)

// RelayHandler forwards allow-listed GET requests to the upstream and
// translates the tagged result into an HTTP status.
type RelayHandler struct {
	fetcher      relay.Fetcher
	domain       string
	cacheControl string
}

// NewRelayHandler creates a relay handler. sMaxAge and staleWhileRevalidate
// feed the shared cache hint on successful responses.
func NewRelayHandler(fetcher relay.Fetcher, domain string, sMaxAge, staleWhileRevalidate time.Duration) *RelayHandler {
	return &RelayHandler{
		fetcher:      fetcher,
		domain:       domain,
		cacheControl: CacheControl(sMaxAge, staleWhileRevalidate),
	}
}

// CacheControl renders the shared cache hint sent with relayed data.
func CacheControl(sMaxAge, staleWhileRevalidate time.Duration) string {
	return fmt.Sprintf("public, max-age=0, s-maxage=%d, stale-while-revalidate=%d",
		int(sMaxAge.Seconds()), int(staleWhileRevalidate.Seconds()))
}

// Relay handles GET /relay?url=<absolute upstream url>
func (h *RelayHandler) Relay(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		response.Relay(w, http.StatusBadRequest, response.RelayError{Error: "Missing url parameter"})
		return
	}

	target, err := relay.ResolveTarget(raw)
	if err != nil {
		response.Relay(w, http.StatusBadRequest, response.RelayError{Error: "Invalid url parameter"})
		return
	}
	if !relay.HostAllowed(target.Hostname(), h.domain) {
		response.Relay(w, http.StatusForbidden, response.RelayError{Error: "Domain not allowed"})
		return
	}

	resp := h.fetcher.Fetch(r.Context(), target.String())
	switch resp.Kind {
	case relay.KindSuccess:
		w.Header().Set("Cache-Control", h.cacheControl)
		response.Raw(w, http.StatusOK, resp.Body)
	case relay.KindRejected:
		response.Relay(w, http.StatusForbidden, response.RelayError{Error: resp.Message})
	case relay.KindBlocked:
		response.Relay(w, http.StatusServiceUnavailable, response.RelayError{
			Error:      "Upstream blocked the request",
			HTTPStatus: resp.HTTPStatus,
			Preview:    resp.Preview,
		})
	case relay.KindInvalidJSON:
		response.Relay(w, http.StatusBadGateway, response.RelayError{
			Error:   "Upstream returned invalid JSON",
			Preview: resp.Preview,
		})
	case relay.KindUpstreamError:
		response.Relay(w, http.StatusBadGateway, response.RelayError{
			Error:      "Upstream returned an error status",
			HTTPStatus: resp.HTTPStatus,
		})
	default:
		response.Relay(w, http.StatusInternalServerError, response.RelayError{
			Error:   "Relay request failed",
			Details: resp.Message,
		})
	}
}
