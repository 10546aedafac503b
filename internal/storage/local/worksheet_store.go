package local

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/worksheet"
)

const worksheetCollection = "worksheets"

// WorksheetStore implements worksheet.Store on JSON files
type WorksheetStore struct {
	store *Store
}

var _ worksheet.Store = (*WorksheetStore)(nil)

// NewWorksheetStore stores worksheets under basePath/worksheets
func NewWorksheetStore(basePath string) (*WorksheetStore, error) {
	s, err := NewStore(basePath)
	if err != nil {
		return nil, err
	}
	return &WorksheetStore{store: s}, nil
}

func (w *WorksheetStore) Save(_ context.Context, ws *domain.Worksheet) error {
	return w.store.Save(worksheetCollection, ws.ID, ws)
}

func (w *WorksheetStore) Get(_ context.Context, id string) (*domain.Worksheet, error) {
	var ws domain.Worksheet
	if err := w.store.Load(worksheetCollection, id, &ws); err != nil {
		return nil, mapErr(err)
	}
	return &ws, nil
}

// List decodes every worksheet file; corrupt files fail the call
func (w *WorksheetStore) List(ctx context.Context, f worksheet.Filter) ([]*domain.Worksheet, error) {
	ids, err := w.store.List(worksheetCollection)
	if err != nil {
		return nil, err
	}

	all := make([]*domain.Worksheet, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ws, err := w.Get(ctx, id)
		if errors.Is(err, domain.ErrWorksheetNotFound) {
			// removed between List and Load
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load worksheet %s: %w", id, err)
		}
		all = append(all, ws)
	}
	return f.Apply(all), nil
}

func (w *WorksheetStore) Delete(_ context.Context, id string) error {
	return mapErr(w.store.Delete(worksheetCollection, id))
}

func mapErr(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidID) {
		return domain.ErrWorksheetNotFound
	}
	return err
}
