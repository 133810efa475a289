package factory

import "errors"

var errUnknownCatalogueStrategy = errors.New("unknown catalogue strategy")
