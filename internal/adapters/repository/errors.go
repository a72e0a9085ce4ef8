package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound   = errors.New("document not found")
	ErrInvalidKey = errors.New("invalid document key")
	ErrBackend    = errors.New("store backend failure")
)
