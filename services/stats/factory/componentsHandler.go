package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/iulianpascalau/model-stats-monitor/commonGo"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/api"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/config"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/engine"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/extractor"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/fetcher"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/storage"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("factory")

type componentsHandler struct {
	store          Store
	engine         ScrapeEngine
	server         Server
	scrapeInterval time.Duration
	cancelFunc     context.CancelFunc
}

// NewComponentsHandler creates a new components handler
func NewComponentsHandler(
	sqlitePath string,
	sourceAPIKey string,
	cfg config.Config,
) (*componentsHandler, error) {
	httpFetcher := fetcher.NewHTTPFetcher(fetcher.ArgsHTTPFetcher{
		Timeout:           time.Duration(cfg.Source.FetchTimeoutInSeconds) * time.Second,
		UserAgent:         cfg.Source.UserAgent,
		APIKey:            sourceAPIKey,
		RequestsPerSecond: cfg.Source.RequestsPerSecond,
	})

	catalogue, err := createCatalogueFetcher(httpFetcher, cfg.Source)
	if err != nil {
		return nil, err
	}

	stats, err := extractor.NewHTMLStats(extractor.ArgsHTMLStats{
		Fetcher:     httpFetcher,
		URLTemplate: cfg.Source.StatsURLTemplate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w while creating the stats extractor", err)
	}

	store, err := storage.NewSQLiteStorage(sqlitePath, cfg.RetentionSeconds)
	if err != nil {
		return nil, err
	}

	scrapeEngine, err := engine.NewScrapeEngine(engine.ArgsScrapeEngine{
		Catalogue: catalogue,
		Stats:     stats,
		Storage:   store,
		Mode:      cfg.Batch.Mode,
		BatchSize: cfg.Batch.Size,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	serverArgs := api.ArgsWebServer{
		ListenAddress:  cfg.ListenAddress,
		Storage:        store,
		Processor:      scrapeEngine,
		GeneralHandler: api.NewCORSMiddleware(cfg.AllowedOrigins),
	}

	server, err := api.NewServer(serverArgs)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &componentsHandler{
		store:          store,
		engine:         scrapeEngine,
		server:         server,
		scrapeInterval: time.Duration(cfg.ScrapeIntervalInSeconds) * time.Second,
		cancelFunc:     func() {},
	}, nil
}

func createCatalogueFetcher(httpFetcher extractor.Fetcher, cfg config.SourceConfig) (engine.CatalogueFetcher, error) {
	switch cfg.CatalogueStrategy {
	case config.CatalogueStrategyJSON:
		return extractor.NewJSONCatalogue(extractor.ArgsJSONCatalogue{
			Fetcher: httpFetcher,
			URL:     cfg.CatalogueURL,
			Fields: extractor.CatalogueFields{
				ItemsPath:   cfg.ItemsPath,
				IDPath:      cfg.IDPath,
				NamePath:    cfg.NamePath,
				FamilyPath:  cfg.FamilyPath,
				FamilyValue: cfg.FamilyValue,
			},
		})
	case config.CatalogueStrategyHTML:
		return extractor.NewHTMLCatalogue(extractor.ArgsHTMLCatalogue{
			Fetcher:      httpFetcher,
			URL:          cfg.CatalogueURL,
			FamilyMarker: cfg.FamilyMarker,
			FamilyWindow: cfg.FamilyWindow,
		})
	default:
		return nil, fmt.Errorf("%w %q", errUnknownCatalogueStrategy, cfg.CatalogueStrategy)
	}
}

// GetStore returns the storage component
func (ch *componentsHandler) GetStore() Store {
	return ch.store
}

// GetEngine returns the scrape engine
func (ch *componentsHandler) GetEngine() ScrapeEngine {
	return ch.engine
}

// GetServer returns the server component
func (ch *componentsHandler) GetServer() Server {
	return ch.server
}

// Start starts the HTTP server and, if an interval is configured, the scrape scheduler
func (ch *componentsHandler) Start() {
	ch.server.Start()

	if ch.scrapeInterval <= 0 {
		log.Info("scrape scheduler disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch.cancelFunc = cancel
	log.Info("starting scrape scheduler", "interval", ch.scrapeInterval)
	commonGo.CronJobStarter(ctx, ch.engine.Run, ch.scrapeInterval)
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	ch.cancelFunc()
	_ = ch.server.Close()
	_ = ch.store.Close()
}
