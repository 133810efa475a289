package extractor

import (
	"errors"
	"fmt"
)

const maxSnapshotLength = 256

var errNilFetcher = errors.New("nil fetcher")
var errEmptyURL = errors.New("empty URL")
var errEmptyItemsPath = errors.New("empty items path")
var errEmptyIDPath = errors.New("empty ID path")
var errInvalidURLTemplate = errors.New("URL template should contain exactly one %s verb")

// ShapeError is returned when the payload is valid but does not have the expected structure
type ShapeError struct {
	Path     string
	Snapshot string
}

// Error returns the string representation of the error
func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected payload shape: %q is missing or not an array, payload: %s", e.Path, e.Snapshot)
}

func newShapeError(path string, raw string) *ShapeError {
	if len(raw) > maxSnapshotLength {
		raw = raw[:maxSnapshotLength] + "..."
	}

	return &ShapeError{
		Path:     path,
		Snapshot: raw,
	}
}
