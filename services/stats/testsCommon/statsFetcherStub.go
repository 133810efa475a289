package testsCommon

import (
	"context"

	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
)

// StatsFetcherStub -
type StatsFetcherStub struct {
	FetchEntityStatsHandler func(ctx context.Context, entityID string) ([]common.RawObservation, error)
	FetchBulkStatsHandler   func(ctx context.Context, seedID string) (map[string][]common.RawObservation, error)
}

// FetchEntityStats -
func (stub *StatsFetcherStub) FetchEntityStats(ctx context.Context, entityID string) ([]common.RawObservation, error) {
	if stub.FetchEntityStatsHandler != nil {
		return stub.FetchEntityStatsHandler(ctx, entityID)
	}

	return make([]common.RawObservation, 0), nil
}

// FetchBulkStats -
func (stub *StatsFetcherStub) FetchBulkStats(ctx context.Context, seedID string) (map[string][]common.RawObservation, error) {
	if stub.FetchBulkStatsHandler != nil {
		return stub.FetchBulkStatsHandler(ctx, seedID)
	}

	return make(map[string][]common.RawObservation), nil
}

// IsInterfaceNil -
func (stub *StatsFetcherStub) IsInterfaceNil() bool {
	return stub == nil
}
