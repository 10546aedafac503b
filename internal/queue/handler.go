package queue

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mathdrill/internal/drill"
	"github.com/felixgeelhaar/mathdrill/internal/worksheet"
)

// NewWorksheetHandler generates the requested worksheet and saves it
func NewWorksheetHandler(svc *drill.Service, store worksheet.Store) JobHandler {
	return func(ctx context.Context, job *WorksheetJob) (*JobResult, error) {
		ws, err := svc.Batch(ctx, job.Request)
		if err != nil {
			return nil, fmt.Errorf("generate worksheet: %w", err)
		}
		if err := store.Save(ctx, ws); err != nil {
			return nil, fmt.Errorf("save worksheet %s: %w", ws.ID, err)
		}

		status := StatusCompleted
		if !ws.Complete() {
			status = StatusPartial
		}
		return &JobResult{
			Status:      status,
			WorksheetID: ws.ID,
			Problems:    len(ws.Problems),
			Fallbacks:   ws.Fallbacks,
		}, nil
	}
}
