package fetcher

import (
	"errors"
	"net/http"
	"strconv"
)

// ErrTimeout signals that a fetch exceeded its time budget
var ErrTimeout = errors.New("fetch timed out")

// ErrInvalidJSON signals that a JSON fetch returned a body that is not valid JSON
var ErrInvalidJSON = errors.New("response body is not valid JSON")

var errEmptyURL = errors.New("empty URL")

// StatusError is returned when the remote answered with a non-2xx status code
type StatusError int

// Error returns the string representation of the error
func (e StatusError) Error() string {
	return "non-2xx HTTP status code: " + strconv.Itoa(int(e)) + " " + http.StatusText(int(e))
}
