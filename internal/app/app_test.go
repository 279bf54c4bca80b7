package app_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"catalogbench/internal/app"
	"catalogbench/internal/config"
	"catalogbench/internal/logging"
	"catalogbench/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		AppPort:        ":0",
		AppEnv:         "production",
		LogLevel:       "info",
		DatabaseDriver: "sqlite",
		DataDir:        t.TempDir(),
		CatalogName:    "warehouse_database",
		SeedTotal:      300,
		SeedBatchSize:  100,
		SearchDebounce: 10 * time.Millisecond,
		SearchLimit:    50,
	}
}

func TestApp_SeedPersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := app.New(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, a.Seed(ctx))
	assert.True(t, a.Seeder.Seeded())
	n, err := a.Repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(300), n)
	require.NoError(t, a.Close())

	b, err := app.New(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()

	// Records written by the first run are searchable before any seeding.
	got, err := b.Repo.Search(ctx, models.SearchFieldCode, "-00299", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(299), got[0].ID)

	var progress []int
	require.NoError(t, b.Seeder.Seed(ctx, func(p int) { progress = append(progress, p) }))
	assert.Equal(t, []int{100}, progress)
}

func TestApp_HTTP(t *testing.T) {
	ctx := context.Background()
	a, err := app.New(ctx, testConfig(t))
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Seed(ctx))

	srv := a.HTTP()

	resp, err := srv.Test(httptest.NewRequest(http.MethodGet, "/api/v1/seed", nil), -1)
	require.NoError(t, err)
	var status map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.Equal(t, true, status["seeded"])

	resp, err = srv.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products?field=code&q=-0000", nil), -1)
	require.NoError(t, err)
	var result struct {
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	assert.Len(t, result.Products, 10)

	resp, err = srv.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "catalog_seeded_products_total 300")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestApp_ServeStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.AppPort = "127.0.0.1:0"
	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	assert.Eventually(t, a.Seeder.Seeded, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
