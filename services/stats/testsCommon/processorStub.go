package testsCommon

import (
	"context"

	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
)

// ProcessorStub -
type ProcessorStub struct {
	ProcessHandler func(ctx context.Context) (common.ScrapeResult, error)
}

// Process -
func (stub *ProcessorStub) Process(ctx context.Context) (common.ScrapeResult, error) {
	if stub.ProcessHandler != nil {
		return stub.ProcessHandler(ctx)
	}

	return common.ScrapeResult{}, nil
}

// IsInterfaceNil -
func (stub *ProcessorStub) IsInterfaceNil() bool {
	return stub == nil
}
