package testsCommon

import (
	"context"

	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
)

// StoreStub -
type StoreStub struct {
	UpsertModelHandler func(ctx context.Context, metric common.AggregatedMetric) error
	AllModelsHandler   func(ctx context.Context) ([]common.AggregatedMetric, error)
	GetHealthHandler   func(ctx context.Context) (common.HealthInfo, error)
	GetMetaHandler     func(ctx context.Context, key string) (string, bool, error)
	SetMetaHandler     func(ctx context.Context, key string, value string) error
	CloseHandler       func() error
}

// UpsertModel -
func (stub *StoreStub) UpsertModel(ctx context.Context, metric common.AggregatedMetric) error {
	if stub.UpsertModelHandler != nil {
		return stub.UpsertModelHandler(ctx, metric)
	}

	return nil
}

// AllModels -
func (stub *StoreStub) AllModels(ctx context.Context) ([]common.AggregatedMetric, error) {
	if stub.AllModelsHandler != nil {
		return stub.AllModelsHandler(ctx)
	}

	return make([]common.AggregatedMetric, 0), nil
}

// GetHealth -
func (stub *StoreStub) GetHealth(ctx context.Context) (common.HealthInfo, error) {
	if stub.GetHealthHandler != nil {
		return stub.GetHealthHandler(ctx)
	}

	return common.HealthInfo{}, nil
}

// GetMeta -
func (stub *StoreStub) GetMeta(ctx context.Context, key string) (string, bool, error) {
	if stub.GetMetaHandler != nil {
		return stub.GetMetaHandler(ctx, key)
	}

	return "", false, nil
}

// SetMeta -
func (stub *StoreStub) SetMeta(ctx context.Context, key string, value string) error {
	if stub.SetMetaHandler != nil {
		return stub.SetMetaHandler(ctx, key, value)
	}

	return nil
}

// Close -
func (stub *StoreStub) Close() error {
	if stub.CloseHandler != nil {
		return stub.CloseHandler()
	}

	return nil
}

// IsInterfaceNil -
func (stub *StoreStub) IsInterfaceNil() bool {
	return stub == nil
}
