package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/aggregator"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
	"github.com/iulianpascalau/model-stats-monitor/services/stats/config"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const (
	// MetaBatchOffset is the meta key holding the batch cursor
	MetaBatchOffset = "batch_offset"
	// MetaLastRunAt is the meta key holding the time of the last completed invocation
	MetaLastRunAt = "last_run_at"
	// MetaLastRunID is the meta key holding the ID of the last completed invocation
	MetaLastRunID = "last_run_id"
)

var log = logger.GetOrCreate("engine")

// ArgsScrapeEngine defines the arguments needed to create a new scrape engine
type ArgsScrapeEngine struct {
	Catalogue   CatalogueFetcher
	Stats       StatsFetcher
	Storage     Storage
	Mode        string
	BatchSize   int
	TimeHandler func() time.Time
}

// scrapeEngine runs the discover -> select -> fetch & aggregate -> persist pipeline
type scrapeEngine struct {
	catalogue   CatalogueFetcher
	stats       StatsFetcher
	storage     Storage
	mode        string
	batchSize   int
	timeHandler func() time.Time
}

// NewScrapeEngine creates a new engine instance
func NewScrapeEngine(args ArgsScrapeEngine) (*scrapeEngine, error) {
	if check.IfNil(args.Catalogue) {
		return nil, errNilCatalogueFetcher
	}
	if check.IfNil(args.Stats) {
		return nil, errNilStatsFetcher
	}
	if check.IfNil(args.Storage) {
		return nil, errNilStorage
	}

	batchSize := args.BatchSize
	switch args.Mode {
	case config.BatchModeBulk:
		batchSize = 0
	case config.BatchModeSlice:
		if batchSize <= 0 {
			return nil, fmt.Errorf("%w %d for mode %s", errInvalidBatchSize, args.BatchSize, args.Mode)
		}
	default:
		return nil, fmt.Errorf("%w %q", errInvalidMode, args.Mode)
	}

	timeHandler := args.TimeHandler
	if timeHandler == nil {
		timeHandler = time.Now
	}

	return &scrapeEngine{
		catalogue:   args.Catalogue,
		stats:       args.Stats,
		storage:     args.Storage,
		mode:        args.Mode,
		batchSize:   batchSize,
		timeHandler: timeHandler,
	}, nil
}

// ScrapeBatch runs one invocation starting from the provided cursor. The cursor of the next invocation is
// returned in the result, persisting it is the caller's job.
// Only a catalogue failure is returned as error: per model fetch and persist failures are logged and counted.
func (e *scrapeEngine) ScrapeBatch(ctx context.Context, cursor int) (common.ScrapeResult, error) {
	runID := uuid.NewString()
	log.Debug("starting scrape batch", "run", runID, "mode", e.mode, "cursor", cursor)

	catalogue, err := e.catalogue.FetchCatalogue(ctx)
	if err != nil {
		return common.ScrapeResult{RunID: runID}, fmt.Errorf("%w while fetching the catalogue", err)
	}

	total := len(catalogue)
	if total == 0 {
		log.Warn("catalogue returned 0 models, scrape aborted", "run", runID)
		return common.ScrapeResult{RunID: runID, NextCursor: cursor}, nil
	}

	start, end := SelectSlice(cursor, total, e.batchSize)
	batch := catalogue[start:end]
	log.Debug("processing batch", "run", runID, "offset", start, "size", len(batch), "total", total)

	var metrics []common.AggregatedMetric
	var numErrors int
	if e.mode == config.BatchModeBulk {
		metrics, numErrors = e.collectBulk(ctx, runID, batch)
	} else {
		metrics, numErrors = e.collectPerEntity(ctx, runID, batch)
	}

	scrapedAt := common.FormatScrapedAt(e.timeHandler())
	scraped := 0
	for _, metric := range metrics {
		metric.ScrapedAt = scrapedAt
		err = e.storage.UpsertModel(ctx, metric)
		if err != nil {
			numErrors++
			persistErr := &PersistError{EntityID: metric.EntityID, Name: metric.Name, Err: err}
			log.Warn("model upsert failed", "run", runID, "error", persistErr)
			continue
		}

		scraped++
	}

	result := common.ScrapeResult{
		Scraped:    scraped,
		Total:      total,
		Errors:     numErrors,
		NextCursor: NextCursor(start, total, e.batchSize),
		RunID:      runID,
	}
	log.Info("scrape batch done", "run", runID, "scraped", scraped, "batch", len(batch),
		"offset", start, "next", result.NextCursor, "total", total, "errors", numErrors)

	return result, nil
}

func (e *scrapeEngine) collectPerEntity(ctx context.Context, runID string, batch []common.CatalogueEntry) ([]common.AggregatedMetric, int) {
	metrics := make([]common.AggregatedMetric, 0, len(batch))
	numErrors := 0
	for _, entry := range batch {
		observations, err := e.stats.FetchEntityStats(ctx, entry.ID)
		if err != nil {
			numErrors++
			fetchErr := &EntityFetchError{EntityID: entry.ID, Name: entry.DisplayName, Err: err}
			log.Warn("model stats fetch failed", "run", runID, "error", fetchErr)
			continue
		}

		log.Trace("model stats fetched", "run", runID, "chute_id", entry.ID, "rows", len(observations))
		metrics = append(metrics, aggregator.ForEntry(entry, observations))
	}

	return metrics, numErrors
}

func (e *scrapeEngine) collectBulk(ctx context.Context, runID string, batch []common.CatalogueEntry) ([]common.AggregatedMetric, int) {
	seed := batch[0]
	grouped, err := e.stats.FetchBulkStats(ctx, seed.ID)
	if err != nil {
		fetchErr := &EntityFetchError{EntityID: seed.ID, Name: seed.DisplayName, Err: err}
		log.Warn("bulk stats fetch failed, nothing will be persisted", "run", runID, "models", len(batch), "error", fetchErr)
		return nil, len(batch)
	}

	metrics := make([]common.AggregatedMetric, 0, len(batch))
	numWithStats := 0
	for _, entry := range batch {
		observations := grouped[entry.ID]
		if len(observations) > 0 {
			numWithStats++
		}

		metrics = append(metrics, aggregator.ForEntry(entry, observations))
	}

	log.Debug("bulk stats aggregated", "run", runID, "models", len(batch), "with stats", numWithStats,
		"not in catalogue", len(grouped)-numWithStats)

	return metrics, 0
}

// Process reads the persisted cursor, runs one invocation and persists the advanced cursor together with the
// invocation metadata. An empty catalogue leaves the store untouched.
// Metadata write failures are logged only: the errors counter is reserved for model fetch and persist failures.
// Overlapping calls are not serialized: they may read the same cursor and process the same slice.
func (e *scrapeEngine) Process(ctx context.Context) (common.ScrapeResult, error) {
	cursor := e.readCursor(ctx)

	result, err := e.ScrapeBatch(ctx, cursor)
	if err != nil {
		return result, err
	}
	if result.Total == 0 {
		return result, nil
	}

	meta := []struct {
		key   string
		value string
	}{
		{MetaBatchOffset, strconv.Itoa(result.NextCursor)},
		{MetaLastRunAt, common.FormatScrapedAt(e.timeHandler())},
		{MetaLastRunID, result.RunID},
	}
	for _, m := range meta {
		err = e.storage.SetMeta(ctx, m.key, m.value)
		if err != nil {
			log.Warn("failed to persist invocation metadata", "run", result.RunID, "key", m.key, "error", err)
		}
	}

	return result, nil
}

func (e *scrapeEngine) readCursor(ctx context.Context) int {
	if e.mode == config.BatchModeBulk {
		return 0
	}

	value, found, err := e.storage.GetMeta(ctx, MetaBatchOffset)
	if err != nil {
		log.Warn("failed to read the batch cursor, starting from 0", "error", err)
		return 0
	}
	if !found {
		return 0
	}

	cursor, err := strconv.Atoi(value)
	if err != nil || cursor < 0 {
		log.Warn("invalid batch cursor, starting from 0", "value", value)
		return 0
	}

	return cursor
}

// Run is the scheduled variant of Process: the outcome is only logged
func (e *scrapeEngine) Run(ctx context.Context) {
	result, err := e.Process(ctx)
	if err != nil {
		log.Error("scheduled scrape failed", "run", result.RunID, "error", err)
		return
	}

	log.Info("scheduled scrape complete", "run", result.RunID, "scraped", result.Scraped,
		"total", result.Total, "errors", result.Errors)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *scrapeEngine) IsInterfaceNil() bool {
	return e == nil
}
