package api

import (
	"context"

	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
)

// Storage defines the read side of the model statistics store
type Storage interface {
	// AllModels returns every stored model, highest latest throughput first
	AllModels(ctx context.Context) ([]common.AggregatedMetric, error)

	// GetHealth returns the number of stored models and the latest scrape time
	GetHealth(ctx context.Context) (common.HealthInfo, error)

	IsInterfaceNil() bool
}

// Processor defines the component able to run one scrape invocation on demand
type Processor interface {
	Process(ctx context.Context) (common.ScrapeResult, error)
	IsInterfaceNil() bool
}
