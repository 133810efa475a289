package engine

import (
	"errors"
	"fmt"
)

var errNilCatalogueFetcher = errors.New("nil catalogue fetcher")
var errNilStatsFetcher = errors.New("nil stats fetcher")
var errNilStorage = errors.New("nil storage")
var errInvalidMode = errors.New("invalid batch mode")
var errInvalidBatchSize = errors.New("invalid batch size")

// EntityFetchError is the failure of fetching the statistics of one model
type EntityFetchError struct {
	EntityID string
	Name     string
	Err      error
}

// Error returns the string representation of the error
func (e *EntityFetchError) Error() string {
	return fmt.Sprintf("failed to fetch stats for %s (%s): %v", e.Name, e.EntityID, e.Err)
}

// Unwrap returns the wrapped error
func (e *EntityFetchError) Unwrap() error {
	return e.Err
}

// PersistError is the failure of storing the record of one model
type PersistError struct {
	EntityID string
	Name     string
	Err      error
}

// Error returns the string representation of the error
func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist %s (%s): %v", e.Name, e.EntityID, e.Err)
}

// Unwrap returns the wrapped error
func (e *PersistError) Unwrap() error {
	return e.Err
}
