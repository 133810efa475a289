package extractor

import (
	"context"

	"github.com/tidwall/gjson"
)

// Fetcher defines the operations of a component able to retrieve remote resources
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	FetchJSON(ctx context.Context, url string) (gjson.Result, error)
	IsInterfaceNil() bool
}
