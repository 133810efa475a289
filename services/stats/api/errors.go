package api

import "errors"

var errNilStorage = errors.New("nil storage")
var errNilProcessor = errors.New("nil processor")
var errNilGeneralHandler = errors.New("nil http handler")
