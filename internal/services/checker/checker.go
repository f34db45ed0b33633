package checker

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mtrev/fossawatch/internal/models"
	"github.com/mtrev/fossawatch/internal/repository"
	"github.com/mtrev/fossawatch/internal/repository/sqlite"
	"github.com/mtrev/fossawatch/internal/scraper"
)

// ScheduleComparator computes the classified diff between two snapshots.
type ScheduleComparator interface {
	Compare(ctx context.Context, current, previous *models.Snapshot, today time.Time) (*models.ChangeSet, error)
}

// Checker is an orchestrator that performs a full verification cycle:
// fetch the portal schedule, diff it against the stored snapshot, persist
// the new state and return the classified changes.
type Checker struct {
	log        *slog.Logger
	portal     scraper.PortalClient
	repo       sqlite.SnapshotRepository
	comparator ScheduleComparator
}

type Interface interface {
	// CheckForUpdates performs the full change checking algorithm.
	CheckForUpdates(ctx context.Context, today time.Time) (*models.ChangeSet, error)
}

// NewChecker creates a new Checker instance.
func NewChecker(
	log *slog.Logger,
	portal scraper.PortalClient,
	repo sqlite.SnapshotRepository,
	comparator ScheduleComparator,
) *Checker {
	return &Checker{log: log, portal: portal, repo: repo, comparator: comparator}
}

// CheckForUpdates performs the full change checking algorithm. "today" is
// injected so the comparison stays deterministic and testable.
func (c *Checker) CheckForUpdates(ctx context.Context, today time.Time) (*models.ChangeSet, error) {
	const opn = "checker.CheckForUpdates"
	log := c.log.With("op", opn)

	// 1. Retrieving the schedule page and calculating a new hash
	log.InfoContext(ctx, "Fetching schedule page to check for updates")
	resp, err := c.portal.GetScheduleResponse(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get schedule response: %w", opn, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response body: %w", opn, err)
	}

	newPageHash := calculateHash(body)
	log.DebugContext(ctx, "Calculated new page hash", "hash", newPageHash)

	// 2. Getting the old snapshot from the database
	previous, err := c.repo.GetSnapshot(ctx)
	if err != nil && !errors.Is(err, repository.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("%s: failed to get previous snapshot: %w", opn, err)
	}
	firstRun := errors.Is(err, repository.ErrSnapshotNotFound)

	// 3. Hash comparison
	if !firstRun && previous.PageHash == newPageHash {
		log.InfoContext(ctx, "Page hash has not changed. No updates.")
		return &models.ChangeSet{}, nil
	}
	log.InfoContext(ctx, "Page hash differs or first run. Starting full analysis...")

	// 4. Full page parsing
	orders, err := c.portal.ParseScheduleResponse(ctx, io.NopCloser(bytes.NewReader(body)))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse work orders from new response: %w", opn, err)
	}
	log.InfoContext(ctx, "Successfully parsed work orders", "count", len(orders))

	current := &models.Snapshot{PageHash: newPageHash, Orders: orders}

	// 5. First run only establishes the baseline; reporting every existing
	// job as "added" would be pure noise.
	if firstRun {
		if err = c.repo.SaveSnapshot(ctx, current); err != nil {
			return nil, fmt.Errorf("%s: failed to save baseline snapshot: %w", opn, err)
		}
		log.InfoContext(ctx, "Baseline snapshot established", "orders", len(orders))
		return &models.ChangeSet{}, nil
	}

	// 6. Snapshot comparison
	changes, err := c.comparator.Compare(ctx, current, previous, today)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to compare snapshots: %w", opn, err)
	}
	log.InfoContext(
		ctx,
		"Change detection complete",
		"added", changes.Summary.Added,
		"removed", changes.Summary.Removed,
		"modified", changes.Summary.Modified,
		"dateChanged", changes.Summary.DateChanged,
		"swapped", changes.Summary.Swapped,
		"completed", changes.Summary.Completed,
	)

	// 7. Updating the database and returning the result
	if err = c.repo.SaveSnapshot(ctx, current); err != nil {
		return nil, fmt.Errorf("%s: failed to save snapshot in repository: %w", opn, err)
	}
	log.InfoContext(ctx, "Successfully updated snapshot in repository")

	return changes, nil
}

// calculateHash calculates the SHA256 hash for a slice of bytes.
func calculateHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
