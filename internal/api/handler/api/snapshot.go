// internal/api/handler/api/snapshot.go
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fundboard/fundboard/internal/api/response"
	"github.com/fundboard/fundboard/internal/core"
	"go.uber.org/zap"
)

// SnapshotLoader defines the interface needed from dashboard.Service.
type SnapshotLoader interface {
	Load(ctx context.Context, query string) (*core.FinancialSnapshot, error)
}

// SnapshotHandler serves assembled snapshots.
type SnapshotHandler struct {
	loader SnapshotLoader
	logger *zap.Logger
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(loader SnapshotLoader, logger *zap.Logger) *SnapshotHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotHandler{loader: loader, logger: logger}
}

// Get handles GET /api/snapshot?ticker=<symbol>
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loader.Load(r.Context(), r.URL.Query().Get("ticker"))
	switch {
	case err == nil:
		response.JSON(w, http.StatusOK, snap)
	case errors.Is(err, core.ErrInvalidTicker):
		response.Error(w, http.StatusBadRequest, err)
	case errors.Is(err, context.Canceled):
		// client went away; nobody is listening
		h.logger.Debug("snapshot request canceled", zap.String("ticker", r.URL.Query().Get("ticker")))
	default:
		h.logger.Error("loading snapshot failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, err)
	}
}
