package gametime

import "errors"

// ErrMalformedClock reports a clock or clock label that cannot be read.
var ErrMalformedClock = errors.New("malformed clock")
