package factory

import (
	"context"

	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
)

// Server defines the operation of an entity able to serve requests
type Server interface {
	Start()
	Address() string
	Close() error
}

// Store defines the full storage contract used by the wired components
type Store interface {
	UpsertModel(ctx context.Context, metric common.AggregatedMetric) error
	AllModels(ctx context.Context) ([]common.AggregatedMetric, error)
	GetHealth(ctx context.Context) (common.HealthInfo, error)
	GetMeta(ctx context.Context, key string) (string, bool, error)
	SetMeta(ctx context.Context, key string, value string) error
	Close() error
	IsInterfaceNil() bool
}

// ScrapeEngine defines the operations of the scrape pipeline
type ScrapeEngine interface {
	Process(ctx context.Context) (common.ScrapeResult, error)
	Run(ctx context.Context)
	IsInterfaceNil() bool
}
