package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fundboard/fundboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildPipeline_RemoteModeRoutesThroughRelay(t *testing.T) {
	var hits atomic.Int32
	relaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/relay", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer relaySrv.Close()

	cfg := config.Defaults()
	cfg.Relay.Mode = config.RelayModeRemote
	cfg.Relay.BaseURL = relaySrv.URL
	require.NoError(t, cfg.Validate())

	p := buildPipeline(cfg, zap.NewNop(), nil)
	require.NotNil(t, p.direct)
	assert.Equal(t, cfg.Upstream.Domain, p.direct.Domain())

	snap, err := p.service.Load(context.Background(), "mxrf11")
	require.NoError(t, err)
	assert.True(t, snap.IsSynthetic)
	assert.Positive(t, hits.Load())
}
