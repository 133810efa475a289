package engine

import (
	"context"

	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
)

// CatalogueFetcher defines the operations of a component able to list the models eligible for scraping
type CatalogueFetcher interface {
	// FetchCatalogue returns the deduplicated models, in a stable order. Any error is fatal for the invocation
	FetchCatalogue(ctx context.Context) ([]common.CatalogueEntry, error)
	IsInterfaceNil() bool
}

// StatsFetcher defines the operations of a component able to extract the statistics rows of the models
type StatsFetcher interface {
	// FetchEntityStats returns the rows of one model. No rows is not an error
	FetchEntityStats(ctx context.Context, entityID string) ([]common.RawObservation, error)

	// FetchBulkStats returns the rows of all the models found through the seed model, grouped by model ID
	FetchBulkStats(ctx context.Context, seedID string) (map[string][]common.RawObservation, error)

	IsInterfaceNil() bool
}

// Storage defines the persistence operations needed by the engine
type Storage interface {
	// UpsertModel inserts or replaces the record keyed by the model ID
	UpsertModel(ctx context.Context, metric common.AggregatedMetric) error

	// GetMeta returns the value stored in the key slot and false if the slot is empty
	GetMeta(ctx context.Context, key string) (string, bool, error)

	// SetMeta stores the value in the key slot
	SetMeta(ctx context.Context, key string, value string) error

	IsInterfaceNil() bool
}
