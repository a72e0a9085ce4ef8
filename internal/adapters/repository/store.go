// Package repository persists the JSON documents passed between pipeline
// stages: sentiment exports, scoring plays, and analysis reports.
package repository

import (
	"context"
	"fmt"
	"strings"
)

// Kind groups documents of one shape.
type Kind string

const (
	// KindExport holds windowed series exports, keyed by game file name.
	KindExport Kind = "exports"
	// KindReport holds analysis reports, keyed by game_analysis_<away>_<home>.
	KindReport Kind = "reports"
	// KindScoring holds extractor output.
	KindScoring Kind = "scoring"
)

// Store reads and writes JSON documents by kind and key.
type Store interface {
	// Put stores doc under key, replacing any previous document.
	Put(ctx context.Context, kind Kind, key string, doc []byte) error

	// Get returns the document under key, or ErrNotFound.
	Get(ctx context.Context, kind Kind, key string) ([]byte, error)

	// List returns every key of kind in ascending order.
	List(ctx context.Context, kind Kind) ([]string, error)

	Close() error
}

// validateKey rejects keys that would escape a namespace.
func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\:`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
