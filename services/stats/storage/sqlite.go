package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
	_ "github.com/mattn/go-sqlite3"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("storage")

// sqliteStorage is the sqlite implementation for the aggregated model statistics
type sqliteStorage struct {
	db               *sql.DB
	retentionSeconds int
	timeHandler      func() time.Time
	cancelFunc       context.CancelFunc
	wg               sync.WaitGroup
}

// NewSQLiteStorage creates the database, schema, and starts the retention cleaner if retentionSeconds is positive
func NewSQLiteStorage(dbPath string, retentionSeconds int) (*sqliteStorage, error) {
	err := prepareDirectories(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial empty DB file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: opens its own database, a single connection keeps the data shared
	db.SetMaxOpenConns(1)

	err = createSchema(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &sqliteStorage{
		db:               db,
		retentionSeconds: retentionSeconds,
		timeHandler:      time.Now,
		cancelFunc:       cancel,
	}

	if retentionSeconds > 0 {
		s.startRetentionCleaner(ctx)
	}

	return s, nil
}

func prepareDirectories(dbPath string) error {
	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS models (
		chute_id        TEXT    NOT NULL PRIMARY KEY,
		name            TEXT    NOT NULL,
		latest_tps      REAL    NOT NULL DEFAULT 0,
		latest_ttft     REAL    NOT NULL DEFAULT 0,
		latest_requests INTEGER NOT NULL DEFAULT 0,
		avg_7d          REAL    NOT NULL DEFAULT 0,
		avg_30d         REAL    NOT NULL DEFAULT 0,
		peak_tps        REAL    NOT NULL DEFAULT 0,
		latest_date     TEXT    NOT NULL DEFAULT '',
		scraped_at      TEXT    NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_models_latest_tps ON models(latest_tps);
	CREATE INDEX IF NOT EXISTS idx_models_scraped_at ON models(scraped_at);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// UpsertModel inserts the model record or replaces every field of the existing one
func (s *sqliteStorage) UpsertModel(ctx context.Context, metric common.AggregatedMetric) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO models (chute_id, name, latest_tps, latest_ttft, latest_requests, avg_7d, avg_30d, peak_tps, latest_date, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chute_id) DO UPDATE SET
			name=excluded.name,
			latest_tps=excluded.latest_tps,
			latest_ttft=excluded.latest_ttft,
			latest_requests=excluded.latest_requests,
			avg_7d=excluded.avg_7d,
			avg_30d=excluded.avg_30d,
			peak_tps=excluded.peak_tps,
			latest_date=excluded.latest_date,
			scraped_at=excluded.scraped_at
	`, metric.EntityID, metric.Name, metric.LatestThroughput, metric.LatestTTFT, metric.LatestRequestCount,
		metric.AvgThroughput7, metric.AvgThroughput30, metric.PeakThroughput, metric.LatestDate, metric.ScrapedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert model %s: %w", metric.EntityID, err)
	}

	return nil
}

// AllModels returns every stored model, highest latest throughput first
func (s *sqliteStorage) AllModels(ctx context.Context) ([]common.AggregatedMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chute_id, name, latest_tps, latest_ttft, latest_requests, avg_7d, avg_30d, peak_tps, latest_date, scraped_at
		FROM models
		ORDER BY latest_tps DESC, chute_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	results := make([]common.AggregatedMetric, 0)
	for rows.Next() {
		var m common.AggregatedMetric
		err = rows.Scan(&m.EntityID, &m.Name, &m.LatestThroughput, &m.LatestTTFT, &m.LatestRequestCount,
			&m.AvgThroughput7, &m.AvgThroughput30, &m.PeakThroughput, &m.LatestDate, &m.ScrapedAt)
		if err != nil {
			return nil, err
		}

		results = append(results, m)
	}

	return results, rows.Err()
}

// GetHealth returns the number of stored models and the most recent scraped_at value, nil on an empty store
func (s *sqliteStorage) GetHealth(ctx context.Context) (common.HealthInfo, error) {
	var info common.HealthInfo
	var lastScrapedAt sql.NullString

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), MAX(scraped_at) FROM models").Scan(&info.ModelsCount, &lastScrapedAt)
	if err != nil {
		return common.HealthInfo{}, fmt.Errorf("health query failed: %w", err)
	}

	if lastScrapedAt.Valid {
		info.LastScrapedAt = &lastScrapedAt.String
	}

	return info, nil
}

// GetMeta returns the value stored under the key. The bool result is false if the key was never set
func (s *sqliteStorage) GetMeta(ctx context.Context, key string) (string, bool, error) {
	var value string

	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return value, true, nil
}

// SetMeta stores the value under the key, replacing any previous one
func (s *sqliteStorage) SetMeta(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value
	`, key, value)
	return err
}

// cleanRetainedModels removes the models not refreshed during the retention period
func (s *sqliteStorage) cleanRetainedModels(ctx context.Context) (int64, error) {
	cutoff := s.timeHandler().Add(-time.Duration(s.retentionSeconds) * time.Second)
	res, err := s.db.ExecContext(ctx, "DELETE FROM models WHERE scraped_at < ?", common.FormatScrapedAt(cutoff))
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (s *sqliteStorage) startRetentionCleaner(ctx context.Context) {
	s.wg.Add(1)

	// max(RetentionSeconds/10, 60)
	intervalSec := s.retentionSeconds / 10
	if intervalSec < 60 {
		intervalSec = 60
	}

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)

	go func() {
		defer s.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Debug("running retention cleanup")

				removed, err := s.cleanRetainedModels(ctx)
				if err != nil {
					log.Warn("failed to cleanup stale models", "error", err)
					continue
				}
				if removed > 0 {
					log.Info("removed stale models", "count", removed)
				}
			}
		}
	}()
}

// Close closes the database and stops background routines
func (s *sqliteStorage) Close() error {
	s.cancelFunc()
	s.wg.Wait()
	return s.db.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sqliteStorage) IsInterfaceNil() bool {
	return s == nil
}
