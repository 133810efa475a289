package testsCommon

import (
	"context"

	"github.com/tidwall/gjson"
)

// FetcherStub -
type FetcherStub struct {
	FetchHandler     func(ctx context.Context, url string) ([]byte, error)
	FetchJSONHandler func(ctx context.Context, url string) (gjson.Result, error)
}

// Fetch -
func (stub *FetcherStub) Fetch(ctx context.Context, url string) ([]byte, error) {
	if stub.FetchHandler != nil {
		return stub.FetchHandler(ctx, url)
	}

	return make([]byte, 0), nil
}

// FetchJSON -
func (stub *FetcherStub) FetchJSON(ctx context.Context, url string) (gjson.Result, error) {
	if stub.FetchJSONHandler != nil {
		return stub.FetchJSONHandler(ctx, url)
	}

	return gjson.Parse("{}"), nil
}

// IsInterfaceNil -
func (stub *FetcherStub) IsInterfaceNil() bool {
	return stub == nil
}
