package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mtrev/fossawatch/internal/models"
	"github.com/mtrev/fossawatch/internal/repository"
	"github.com/mtrev/fossawatch/internal/repository/sqlite"
)

// Service decides whether a job that disappeared from the schedule was
// completed (its visit date has passed; the portal stops listing finished
// work) or genuinely removed. Completions are recorded once and never
// re-reported.
type Service struct {
	log  *slog.Logger
	repo sqlite.CompletionRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a new ledger Service instance.
func NewService(log *slog.Logger, repo sqlite.CompletionRepository) *Service {
	return &Service{log: log, repo: repo, locks: make(map[string]*sync.Mutex)}
}

// ClassifyRemoval classifies a removed job. The boolean reports whether a
// record should be emitted: a completion already present in the ledger was
// reported before and is suppressed. Storage failures wrap
// repository.ErrLedgerUnavailable; the caller is expected to fail safe by
// treating the removal as a critical removal.
func (s *Service) ClassifyRemoval(
	ctx context.Context,
	prev models.WorkOrder,
	today time.Time,
) (models.ChangeKind, bool, error) {
	const opn = "ledger.ClassifyRemoval"

	if prev.VisitDate == nil || prev.VisitDate.After(today) {
		// Future-dated or unscheduled jobs do not vanish on their own;
		// this is the case most likely to need user action.
		return models.KindRemoved, true, nil
	}

	// Serialize the lookup-then-append per job so concurrent comparison
	// runs cannot both decide "not recorded yet".
	lock := s.lockFor(prev.ID)
	lock.Lock()
	defer lock.Unlock()

	recorded, err := s.repo.HasCompletion(ctx, prev.ID)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", opn, errors.Join(repository.ErrLedgerUnavailable, err))
	}
	if recorded {
		s.log.DebugContext(ctx, "completion already recorded, suppressing duplicate", "job_id", prev.ID)
		return models.KindCompleted, false, nil
	}

	entry := models.CompletionEntry{
		JobID:     prev.ID,
		StoreName: prev.CustomerName,
		Date:      *prev.VisitDate,
	}
	if err = s.repo.AppendCompletion(ctx, entry, today); err != nil {
		return "", false, fmt.Errorf("%s: %w", opn, errors.Join(repository.ErrLedgerUnavailable, err))
	}

	return models.KindCompleted, true, nil
}

// lockFor returns the advisory mutex for one ledger key.
func (s *Service) lockFor(jobID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[jobID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[jobID] = lock
	}
	return lock
}
