package repo

import (
	"context"

	"github.com/hamed0406/urlstatus/internal/domain"
)

// ResultStore accumulates the results of one batch run. Implementations
// must be safe for concurrent Append calls.
type ResultStore interface {
	// Append stores r and returns the number of results stored so far.
	Append(ctx context.Context, r domain.ProbeResult) (int, error)
	Results(ctx context.Context) ([]domain.ProbeResult, error)
}
