package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/config"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/engine"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/storage"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/testsCommon"
	"github.com/stretchr/testify/require"
)

type testStore interface {
	Storage
	UpsertModel(ctx context.Context, metric common.AggregatedMetric) error
	Close() error
}

func setupTestServer(t *testing.T, processor Processor) (*server, testStore) {
	store, err := storage.NewSQLiteStorage(":memory:", 0)
	require.NoError(t, err)

	args := ArgsWebServer{
		ListenAddress:  ":0",
		Storage:        store,
		Processor:      processor,
		GeneralHandler: func(h http.Handler) http.Handler { return h },
	}

	serv, err := NewServer(args)
	require.NoError(t, err)

	return serv, store
}

func seedModel(t *testing.T, store testStore, id string, throughput float64, scrapedAt string) {
	err := store.UpsertModel(context.Background(), common.AggregatedMetric{
		EntityID:         id,
		Name:             "name-" + id,
		LatestThroughput: throughput,
		LatestDate:       "2025-01-10",
		ScrapedAt:        scrapedAt,
	})
	require.NoError(t, err)
}

func TestGetModelsEndpoint(t *testing.T) {
	serv, store := setupTestServer(t, &testsCommon.ProcessorStub{})
	defer func() {
		_ = store.Close()
	}()

	// Empty store
	req, _ := http.NewRequest(http.MethodGet, "/api/models", nil)
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"models":[],"total":0,"scraped_at":null}`, w.Body.String())

	// Seeded store
	seedModel(t, store, "a", 10, "2025-01-11T10:00:00.000Z")
	seedModel(t, store, "b", 50, "2025-01-11T11:00:00.000Z")

	req, _ = http.NewRequest(http.MethodGet, "/api/models", nil)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ModelsResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	require.Len(t, resp.Models, 2)
	require.Equal(t, "b", resp.Models[0].EntityID)
	require.Equal(t, "a", resp.Models[1].EntityID)
	require.NotNil(t, resp.ScrapedAt)
	require.Equal(t, "2025-01-11T11:00:00.000Z", *resp.ScrapedAt)

	// wire names of a record
	var raw map[string][]map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &raw)
	require.NoError(t, err)
	for _, key := range []string{"chute_id", "name", "latest_tps", "latest_ttft", "latest_requests",
		"avg_7d", "avg_30d", "peak_tps", "latest_date", "scraped_at"} {
		require.Contains(t, raw["models"][0], key)
	}
}

func TestScrapeEndpoint(t *testing.T) {
	numCalls := 0
	processor := &testsCommon.ProcessorStub{
		ProcessHandler: func(ctx context.Context) (common.ScrapeResult, error) {
			numCalls++
			return common.ScrapeResult{Scraped: 4, Total: 12, Errors: 1, NextCursor: 10, RunID: "run"}, nil
		},
	}
	serv, store := setupTestServer(t, processor)
	defer func() {
		_ = store.Close()
	}()

	req, _ := http.NewRequest(http.MethodPost, "/api/scrape", nil)
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"scraped":4,"total":12,"errors":1}`, w.Body.String())
	require.Equal(t, 1, numCalls)

	// GET is not a trigger
	req, _ = http.NewRequest(http.MethodGet, "/api/scrape", nil)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Not found", w.Body.String())
	require.Equal(t, 1, numCalls)
}

func TestScrapeEndpoint_ClientGoneMidRun(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:", 0)
	require.NoError(t, err)
	defer func() {
		_ = store.Close()
	}()

	reqCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scrapeEngine, err := engine.NewScrapeEngine(engine.ArgsScrapeEngine{
		Catalogue: &testsCommon.CatalogueFetcherStub{
			FetchCatalogueHandler: func(ctx context.Context) ([]common.CatalogueEntry, error) {
				return []common.CatalogueEntry{
					{ID: "a", DisplayName: "alpha"},
					{ID: "b", DisplayName: "beta"},
					{ID: "c", DisplayName: "gamma"},
				}, nil
			},
		},
		Stats: &testsCommon.StatsFetcherStub{
			FetchEntityStatsHandler: func(ctx context.Context, entityID string) ([]common.RawObservation, error) {
				// the client gives up while the batch is running
				cancel()
				require.NoError(t, ctx.Err())

				return []common.RawObservation{{EntityID: entityID, Date: "2025-01-10", Throughput: 10}}, nil
			},
		},
		Storage:   store,
		Mode:      config.BatchModeSlice,
		BatchSize: 2,
	})
	require.NoError(t, err)

	serv, err := NewServer(ArgsWebServer{
		ListenAddress:  ":0",
		Storage:        store,
		Processor:      scrapeEngine,
		GeneralHandler: func(h http.Handler) http.Handler { return h },
	})
	require.NoError(t, err)

	req, _ := http.NewRequestWithContext(reqCtx, http.MethodPost, "/api/scrape", nil)
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"scraped":2,"total":3,"errors":0}`, w.Body.String())

	models, err := store.AllModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)

	cursor, found, err := store.GetMeta(context.Background(), engine.MetaBatchOffset)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2", cursor)
}

func TestHealthEndpoint(t *testing.T) {
	serv, store := setupTestServer(t, &testsCommon.ProcessorStub{})
	defer func() {
		_ = store.Close()
	}()

	req, _ := http.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok","models_count":0,"last_scraped_at":null}`, w.Body.String())

	seedModel(t, store, "a", 10, "2025-01-11T10:00:00.000Z")
	seedModel(t, store, "b", 10, "2025-01-11T09:00:00.000Z")

	req, _ = http.NewRequest(http.MethodGet, "/api/health", nil)
	w = httptest.NewRecorder()
	serv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok","models_count":2,"last_scraped_at":"2025-01-11T10:00:00.000Z"}`, w.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	serv, store := setupTestServer(t, &testsCommon.ProcessorStub{})
	defer func() {
		_ = store.Close()
	}()

	for _, path := range []string{"/", "/api/unknown", "/models"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		serv.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusNotFound, w.Code, path)
		require.Equal(t, "Not found", w.Body.String(), path)
	}
}
