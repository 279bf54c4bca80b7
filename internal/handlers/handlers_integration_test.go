package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"catalogbench/internal/generator"
	"catalogbench/internal/handlers"
	"catalogbench/internal/logging"
	"catalogbench/internal/metrics"
	"catalogbench/internal/models"
	"catalogbench/internal/repositories"
	"catalogbench/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app    *fiber.App
	repo   *repositories.MemoryProductRepository
	seeder *services.SeedService
}

// setupApp wires an in-memory catalog, the services and the handlers.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	reg := prometheus.NewRegistry()
	recorder := metrics.NewPrometheus(reg)

	repo := repositories.NewMemoryProductRepository()
	seeder := services.NewSeedService(repo, generator.NewSeeded(7), services.SeedOptions{
		Total:     200,
		BatchSize: 50,
		Category:  func(int64) string { return "TOOL" },
	}, recorder, nil)
	coordinator := services.NewSearchCoordinator(repo, services.CoordinatorOptions{Debounce: 10 * time.Millisecond}, recorder, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		coordinator.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	app := fiber.New()
	handlers.RegisterSystemRoutes(app, reg, false)
	handlers.NewCatalogHandler(seeder, coordinator).RegisterRoutes(app.Group("/api/v1"))

	return &testEnv{app: app, repo: repo, seeder: seeder}
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	require.NoError(t, e.seeder.Seed(context.Background(), nil))
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestHealthAndMetrics(t *testing.T) {
	env := setupApp(t)
	env.seed(t)

	var health map[string]string
	assert.Equal(t, http.StatusOK, doJSON(t, env.app, http.MethodGet, "/health", nil, &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "disabled", health["rabbitmq"])

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "catalog_seed_progress_percent 100")
}

func TestQueriesRejectedBeforeSeeding(t *testing.T) {
	env := setupApp(t)

	var status map[string]any
	assert.Equal(t, http.StatusOK, doJSON(t, env.app, http.MethodGet, "/api/v1/seed", nil, &status))
	assert.Equal(t, false, status["seeded"])
	assert.EqualValues(t, 0, status["progress"])

	assert.Equal(t, http.StatusServiceUnavailable, doJSON(t, env.app, http.MethodGet, "/api/v1/products?q=TOOL", nil, nil))
	assert.Equal(t, http.StatusServiceUnavailable, doJSON(t, env.app, http.MethodPost, "/api/v1/search", map[string]string{"query": "TOOL"}, nil))

	env.seed(t)
	assert.Equal(t, http.StatusOK, doJSON(t, env.app, http.MethodGet, "/api/v1/seed", nil, &status))
	assert.Equal(t, true, status["seeded"])
	assert.EqualValues(t, 100, status["progress"])
}

func TestSearchProducts(t *testing.T) {
	env := setupApp(t)
	env.seed(t)

	var r services.SearchResult
	assert.Equal(t, http.StatusOK, doJSON(t, env.app, http.MethodGet, "/api/v1/products?field=code&q=TOOL-00042", nil, &r))
	require.Len(t, r.Products, 1)
	assert.Equal(t, int64(42), r.Products[0].ID)
	assert.Equal(t, "TOOL-00042", r.Query)

	assert.Equal(t, http.StatusOK, doJSON(t, env.app, http.MethodGet, "/api/v1/products?q=TOOL-", nil, &r))
	assert.Len(t, r.Products, services.DefaultSearchLimit)
	for i, p := range r.Products {
		assert.Equal(t, int64(i), p.ID, "results follow insertion order")
	}

	assert.Equal(t, http.StatusOK, doJSON(t, env.app, http.MethodGet, "/api/v1/products?q=", nil, &r))
	assert.Empty(t, r.Products)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, env.app, http.MethodGet, "/api/v1/products?field=color&q=red", nil, nil))
}

func TestScanBarcode(t *testing.T) {
	env := setupApp(t)
	env.seed(t)

	got, err := env.repo.Search(context.Background(), models.SearchFieldCode, "TOOL-00007", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	barcode := got[0].Barcode

	var r services.ScanResult
	assert.Equal(t, http.StatusOK, doJSON(t, env.app, http.MethodGet, "/api/v1/products/barcode/"+barcode, nil, &r))
	require.NotNil(t, r.Product)
	assert.Equal(t, barcode, r.Product.Barcode)
	assert.True(t, generator.ValidBarcode(r.Product.Barcode))

	var miss map[string]any
	assert.Equal(t, http.StatusNotFound, doJSON(t, env.app, http.MethodGet, "/api/v1/products/barcode/000000000000", nil, &miss))
	assert.Contains(t, miss["message"], "not found")
}

func TestDebouncedSearchFlow(t *testing.T) {
	env := setupApp(t)
	env.seed(t)

	assert.Equal(t, http.StatusNotFound, doJSON(t, env.app, http.MethodGet, "/api/v1/search/latest", nil, nil))

	var accepted map[string]string
	assert.Equal(t, http.StatusAccepted, doJSON(t, env.app, http.MethodPost, "/api/v1/search", map[string]string{"query": "TOOL-0010"}, &accepted))
	assert.Equal(t, "TOOL-0010", accepted["query"])

	var latest struct {
		Query    string           `json:"query"`
		Products []models.Product `json:"products"`
		State    string           `json:"state"`
	}
	require.Eventually(t, func() bool {
		status := doJSON(t, env.app, http.MethodGet, "/api/v1/search/latest", nil, &latest)
		return status == http.StatusOK && latest.Query == "TOOL-0010"
	}, 2*time.Second, 10*time.Millisecond)

	// TOOL-00100 .. TOOL-00109
	assert.Len(t, latest.Products, 10)
	for _, p := range latest.Products {
		assert.True(t, strings.HasPrefix(p.Code, "TOOL-0010"))
	}
}

func TestSubmitSearchValidation(t *testing.T) {
	env := setupApp(t)
	env.seed(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	long := map[string]string{"query": strings.Repeat("x", 300)}
	assert.Equal(t, http.StatusBadRequest, doJSON(t, env.app, http.MethodPost, "/api/v1/search", long, nil))
}
