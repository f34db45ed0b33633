package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mtrev/fossawatch/internal/models"
)

// completionRetention bounds ledger growth: entries whose completion date
// is older than this are pruned on the next append. A finished order is
// never re-listed by the portal months later, so the window only has to
// outlive scrape jitter.
const completionRetention = 180 * 24 * time.Hour

// HasCompletion reports whether the job is already recorded as completed.
func (r *Repository) HasCompletion(ctx context.Context, jobID string) (bool, error) {
	const opn = "repository.sqlite.HasCompletion"

	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM completed_jobs WHERE job_id = ?", jobID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%s: failed to query completion: %w", opn, err)
	}

	return count > 0, nil
}

// AppendCompletion records a job as completed and prunes entries outside
// the retention window in the same transaction.
func (r *Repository) AppendCompletion(
	ctx context.Context,
	entry models.CompletionEntry,
	recordedAt time.Time,
) error {
	const opn = "repository.sqlite.AppendCompletion"

	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx its a default naming for transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit returns sql.ErrTxDone, nothing to act on

	_, err = tx.ExecContext(
		ctx,
		"INSERT OR IGNORE INTO completed_jobs (job_id, store_name, visit_date, recorded_at) VALUES (?, ?, ?, ?)",
		entry.JobID,
		entry.StoreName,
		entry.Date.Format(dateLayout),
		recordedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to insert completion for %s: %w", opn, entry.JobID, err)
	}

	cutoff := recordedAt.Add(-completionRetention).Format(dateLayout)
	_, err = tx.ExecContext(ctx, "DELETE FROM completed_jobs WHERE visit_date < ?", cutoff)
	if err != nil {
		return fmt.Errorf("%s: failed to prune expired completions: %w", opn, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}
