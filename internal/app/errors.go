package service

import "errors"

var (
	// ErrNoRecords reports a series build with nothing to score.
	ErrNoRecords = errors.New("no sentiment records")
	// ErrUnknownGame reports an export name missing from the team table.
	ErrUnknownGame = errors.New("unknown game")
	// ErrGameNotFound reports teams with no game in the scoring plays.
	ErrGameNotFound = errors.New("game not found in scoring plays")
	// ErrEmptySeries reports an export without sentiment points.
	ErrEmptySeries = errors.New("export has no sentiment series")
	// ErrMalformedInput reports a document that cannot be decoded.
	ErrMalformedInput = errors.New("malformed input")
	// ErrNoCommentSource reports a fetch without a configured source.
	ErrNoCommentSource = errors.New("no comment source configured")
	// ErrNotStarted reports a call made before Start.
	ErrNotStarted = errors.New("service not started")
)
