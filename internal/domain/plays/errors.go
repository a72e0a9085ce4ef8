package plays

import "errors"

var (
	// ErrMalformedFeed reports a feed that is not a JSON array of games.
	ErrMalformedFeed = errors.New("malformed play-by-play feed")
	// ErrGameIndex reports a game index outside the feed.
	ErrGameIndex = errors.New("game index out of range")
)
