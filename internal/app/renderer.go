package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/gamepulse/internal/adapters/repository"
	"github.com/okian/gamepulse/internal/domain/predict"
)

// Renderer publishes an analysis report.
type Renderer interface {
	Render(ctx context.Context, rep predict.Report) error
}

// StoreRenderer writes reports as indented JSON under their key.
type StoreRenderer struct {
	store repository.Store
}

// NewStoreRenderer creates a StoreRenderer over store.
func NewStoreRenderer(store repository.Store) *StoreRenderer {
	return &StoreRenderer{store: store}
}

// Render implements Renderer.
func (r *StoreRenderer) Render(ctx context.Context, rep predict.Report) error {
	doc, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := r.store.Put(ctx, repository.KindReport, rep.Key(), doc); err != nil {
		return fmt.Errorf("store report %s: %w", rep.Key(), err)
	}
	return nil
}
