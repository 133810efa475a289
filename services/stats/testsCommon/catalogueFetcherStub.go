package testsCommon

import (
	"context"

	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
)

// CatalogueFetcherStub -
type CatalogueFetcherStub struct {
	FetchCatalogueHandler func(ctx context.Context) ([]common.CatalogueEntry, error)
}

// FetchCatalogue -
func (stub *CatalogueFetcherStub) FetchCatalogue(ctx context.Context) ([]common.CatalogueEntry, error) {
	if stub.FetchCatalogueHandler != nil {
		return stub.FetchCatalogueHandler(ctx)
	}

	return make([]common.CatalogueEntry, 0), nil
}

// IsInterfaceNil -
func (stub *CatalogueFetcherStub) IsInterfaceNil() bool {
	return stub == nil
}
