package diff

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mtrev/fossawatch/internal/models"
)

// RemovalClassifier decides whether a job that disappeared from the
// schedule was completed or genuinely removed. The second return reports
// whether a record should be emitted at all; a completion already present
// in the ledger is suppressed.
type RemovalClassifier interface {
	ClassifyRemoval(ctx context.Context, prev models.WorkOrder, today time.Time) (models.ChangeKind, bool, error)
}

// Comparator computes the classified diff between two schedule snapshots.
// It is deterministic and performs no I/O of its own; the only external
// call is the removal classifier, whose failures degrade to a critical
// "removed" record rather than a lost change.
type Comparator struct {
	log    *slog.Logger
	ledger RemovalClassifier
}

// NewComparator creates a new Comparator instance.
func NewComparator(log *slog.Logger, ledger RemovalClassifier) *Comparator {
	return &Comparator{log: log, ledger: ledger}
}

// Compare classifies every job-level difference between previous and
// current. "today" is injected by the caller; the comparator never reads a
// live clock.
func (c *Comparator) Compare(
	ctx context.Context,
	current, previous *models.Snapshot,
	today time.Time,
) (*models.ChangeSet, error) {
	const opn = "diff.Compare"

	if current == nil || previous == nil {
		return nil, fmt.Errorf("%s: nil snapshot: %w", opn, models.ErrInvalidInput)
	}

	curIdx, err := index(current)
	if err != nil {
		return nil, fmt.Errorf("%s: current snapshot: %w", opn, err)
	}
	prevIdx, err := index(previous)
	if err != nil {
		return nil, fmt.Errorf("%s: previous snapshot: %w", opn, err)
	}

	var commonIDs, addedIDs, removedIDs []string
	for id := range curIdx {
		if _, ok := prevIdx[id]; ok {
			commonIDs = append(commonIDs, id)
		} else {
			addedIDs = append(addedIDs, id)
		}
	}
	for id := range prevIdx {
		if _, ok := curIdx[id]; !ok {
			removedIDs = append(removedIDs, id)
		}
	}
	slices.Sort(commonIDs)
	slices.Sort(addedIDs)
	slices.Sort(removedIDs)

	changes := &models.ChangeSet{}

	// Swaps first: a naive pass would report each half of a swap as a
	// plain date change.
	swapped := c.detectSwaps(changes, commonIDs, curIdx, prevIdx)

	for _, id := range commonIDs {
		if swapped[id] {
			continue
		}
		c.classifyCommon(changes, curIdx[id], prevIdx[id])
	}

	for _, id := range addedIDs {
		c.emit(changes, recordFor(models.KindAdded, curIdx[id]))
		changes.Summary.Added++
	}

	for _, id := range removedIDs {
		c.classifyRemoval(ctx, changes, prevIdx[id], today)
	}

	return changes, nil
}

// index builds the by-ID lookup for a snapshot, enforcing the unique
// non-empty ID invariant.
func index(s *models.Snapshot) (map[string]models.WorkOrder, error) {
	idx := make(map[string]models.WorkOrder, len(s.Orders))
	for _, wo := range s.Orders {
		if wo.ID == "" {
			return nil, fmt.Errorf("work order without id: %w", models.ErrInvalidInput)
		}
		if _, dup := idx[wo.ID]; dup {
			return nil, fmt.Errorf("duplicate work order id %s: %w", wo.ID, models.ErrInvalidInput)
		}
		idx[wo.ID] = wo
	}
	return idx, nil
}

// detectSwaps finds pairs of jobs that exchanged visit dates between the
// snapshots. One record is emitted per pair, with the lexicographically
// smaller ID as the primary; both IDs are returned as consumed so the
// plain dateChanged/modified pass skips them.
func (c *Comparator) detectSwaps(
	changes *models.ChangeSet,
	commonIDs []string,
	curIdx, prevIdx map[string]models.WorkOrder,
) map[string]bool {
	// Only jobs whose date actually moved, with real dates on both sides,
	// can participate. Null-dated jobs are never swap candidates.
	var candidates []string
	for _, id := range commonIDs {
		cur, prev := curIdx[id], prevIdx[id]
		if cur.VisitDate == nil || prev.VisitDate == nil {
			continue
		}
		if !models.SameDate(cur.VisitDate, prev.VisitDate) {
			candidates = append(candidates, id)
		}
	}

	consumed := make(map[string]bool, len(candidates))
	for i, x := range candidates {
		if consumed[x] {
			continue
		}
		for _, y := range candidates[i+1:] {
			if consumed[y] {
				continue
			}
			if models.SameDate(curIdx[x].VisitDate, prevIdx[y].VisitDate) &&
				models.SameDate(curIdx[y].VisitDate, prevIdx[x].VisitDate) {
				rec := recordFor(models.KindSwapped, curIdx[x])
				rec.OldDate = prevIdx[x].VisitDate
				rec.NewDate = curIdx[x].VisitDate
				rec.OtherJobID = y
				c.emit(changes, rec)
				changes.Summary.Swapped += 2 // one per participant
				consumed[x], consumed[y] = true, true
				break
			}
		}
	}
	return consumed
}

// classifyCommon handles a job present in both snapshots: a moved date
// wins over attribute edits; unchanged jobs produce no record.
func (c *Comparator) classifyCommon(changes *models.ChangeSet, cur, prev models.WorkOrder) {
	if !models.SameDate(cur.VisitDate, prev.VisitDate) {
		rec := recordFor(models.KindDateChanged, cur)
		rec.OldDate = prev.VisitDate
		rec.NewDate = cur.VisitDate
		c.emit(changes, rec)
		changes.Summary.DateChanged++
		return
	}

	var fields []string
	if cur.EquipmentCount != prev.EquipmentCount {
		fields = append(fields, "equipmentCount")
	}
	if cur.CustomerName != prev.CustomerName {
		fields = append(fields, "customerName")
	}
	if cur.StoreNumber != prev.StoreNumber {
		fields = append(fields, "storeNumber")
	}
	if cur.CityState != prev.CityState {
		fields = append(fields, "cityState")
	}
	if len(fields) == 0 {
		return
	}

	rec := recordFor(models.KindModified, cur)
	rec.OldEquipmentCount = prev.EquipmentCount
	rec.ChangedFields = fields
	c.emit(changes, rec)
	changes.Summary.Modified++
}

// classifyRemoval defers to the ledger for the completed-vs-removed call.
// A ledger failure must never hide a disappearance: the job is reported as
// removed at critical severity instead.
func (c *Comparator) classifyRemoval(
	ctx context.Context,
	changes *models.ChangeSet,
	prev models.WorkOrder,
	today time.Time,
) {
	kind, report, err := c.ledger.ClassifyRemoval(ctx, prev, today)
	if err != nil {
		c.log.WarnContext(ctx, "ledger unavailable, treating removal as critical",
			"job_id", prev.ID, "error", err)
		kind, report = models.KindRemoved, true
	}
	if !report {
		return // completion already recorded and notified
	}

	c.emit(changes, recordFor(kind, prev))
	switch kind {
	case models.KindCompleted:
		changes.Summary.Completed++
	default:
		changes.Summary.Removed++
	}
}

// recordFor builds the base record for a job; kind-specific fields are
// filled in by the caller.
func recordFor(kind models.ChangeKind, wo models.WorkOrder) models.ChangeRecord {
	return models.ChangeRecord{
		Kind:           kind,
		JobID:          wo.ID,
		StoreName:      wo.CustomerName,
		StoreNumber:    wo.StoreNumber,
		Location:       wo.CityState,
		Date:           wo.VisitDate,
		EquipmentCount: wo.EquipmentCount,
	}
}

// emit appends a record to the bucket its severity dictates.
func (c *Comparator) emit(changes *models.ChangeSet, rec models.ChangeRecord) {
	switch SeverityFor(rec.Kind) {
	case models.SeverityCritical:
		changes.Critical = append(changes.Critical, rec)
	case models.SeverityHigh:
		changes.High = append(changes.High, rec)
	case models.SeverityMedium:
		changes.Medium = append(changes.Medium, rec)
	case models.SeverityLow:
		changes.Low = append(changes.Low, rec)
	}
}
