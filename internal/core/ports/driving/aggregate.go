package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

// AggregateOptions selects and bounds a cross-account aggregation.
type AggregateOptions struct {
	// Accounts limits the aggregation to these emails. Empty means all.
	Accounts []string
	// Filter applies per-task filtering.
	Filter domain.TaskFilter
	// Limit caps the number of merged tasks returned (0 = no cap).
	Limit int
	// WithCounts includes open-task counts on aggregated lists.
	WithCounts bool
	// Now anchors overdue/due-today calculations; zero means time.Now().
	Now time.Time
}

// AggregateService fans an operation out across accounts, serializing
// lifecycle calls per account while running accounts concurrently.
type AggregateService interface {
	// Tasks merges tasks from every selected account, sorted by due date
	// (undated last), each annotated with its account and list.
	Tasks(ctx context.Context, opts AggregateOptions) ([]domain.AccountTask, error)

	// Lists merges task lists from every selected account.
	Lists(ctx context.Context, opts AggregateOptions) ([]domain.AccountTaskList, error)

	// Summary returns per-account task statistics. Accounts that fail
	// report their error inline rather than failing the whole summary.
	Summary(ctx context.Context, opts AggregateOptions) ([]domain.AccountSummary, error)
}
