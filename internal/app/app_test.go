package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantaqb/internal/config"
	"github.com/riskibarqy/fantaqb/internal/domain/quarterback"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		HTTPAddr:           ":0",
		StoreDriver:        config.StoreMemory,
		CacheTTL:           time.Minute,
		AggregateWorkers:   2,
		LiveViewBuffer:     4,
		MetricsEnabled:     true,
		CORSAllowedOrigins: []string{"*"},
		AnubisTimeout:      time.Second,
	}
}

func TestOpenStore_MemoryServesRuntime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := memoryConfig()

	store, err := OpenStore(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	store.Start(ctx)
	t.Cleanup(func() {
		cancel()
		require.NoError(t, store.Close())
	})

	rt := NewRuntime(cfg, store, logging.NewNop())
	srv, err := NewHTTPServer(cfg, rt, logging.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fantaqb_live_watches")

	rows, err := rt.Rankings.LeagueTable(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "demo-user", rows[0].UserID)
}

func TestOpenStore_QuarterbackCacheFollowsChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := memoryConfig()

	store, err := OpenStore(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	store.Start(ctx)
	t.Cleanup(func() {
		cancel()
		require.NoError(t, store.Close())
	})

	before, err := store.Quarterbacks.List(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Quarterbacks.Upsert(ctx, quarterback.Quarterback{
		ID: "qb-new", Name: "New Arm", Team: "Jets", Status: quarterback.StatusStarter,
	}))

	after, err := store.Quarterbacks.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)
}

func TestOpenStore_RejectsUnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.StoreDriver = "sqlite"

	_, err := OpenStore(context.Background(), cfg, logging.NewNop())
	require.Error(t, err)
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	cfg := memoryConfig()
	store, err := OpenStore(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)

	cfg.HTTPAddr = ""
	_, err = NewHTTPServer(cfg, NewRuntime(cfg, store, logging.NewNop()), logging.NewNop())
	require.Error(t, err)
}
