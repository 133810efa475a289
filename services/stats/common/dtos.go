package common

import "time"

// ScrapedAtLayout is the timestamp layout used for the scraped_at column. It is lexicographically sortable
const ScrapedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// CatalogueEntry is one model eligible for scraping
type CatalogueEntry struct {
	ID          string
	DisplayName string
}

// RawObservation is a single dated statistics row for one model, as found in the source page
type RawObservation struct {
	EntityID         string
	DisplayName      string
	Date             string
	RequestCount     int64
	InputTokens      int64
	OutputTokens     int64
	Throughput       float64 // tokens/sec
	TimeToFirstToken float64 // seconds
}

// AggregatedMetric is the persisted, per model record served by the API
type AggregatedMetric struct {
	EntityID           string  `json:"chute_id"`
	Name               string  `json:"name"`
	LatestThroughput   float64 `json:"latest_tps"`
	LatestTTFT         float64 `json:"latest_ttft"`
	LatestRequestCount int64   `json:"latest_requests"`
	AvgThroughput7     float64 `json:"avg_7d"`
	AvgThroughput30    float64 `json:"avg_30d"`
	PeakThroughput     float64 `json:"peak_tps"`
	LatestDate         string  `json:"latest_date"`
	ScrapedAt          string  `json:"scraped_at"`
}

// ScrapeResult is the outcome of one scrape invocation
type ScrapeResult struct {
	Scraped    int    `json:"scraped"`
	Total      int    `json:"total"`
	Errors     int    `json:"errors"`
	NextCursor int    `json:"-"`
	RunID      string `json:"-"`
}

// HealthInfo holds the storage summary used by the health endpoint
type HealthInfo struct {
	ModelsCount   int     `json:"models_count"`
	LastScrapedAt *string `json:"last_scraped_at"`
}

// FormatScrapedAt returns the canonical scraped_at representation of the provided time
func FormatScrapedAt(t time.Time) string {
	return t.UTC().Format(ScrapedAtLayout)
}
