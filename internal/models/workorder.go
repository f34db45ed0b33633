package models

import "time"

// WorkOrder is an immutable snapshot of one scheduled job on the portal.
// Instances are never mutated; a "change" is a new snapshot compared
// against an old one.
type WorkOrder struct {
	ID             string // stable across scrapes, format W-<digits>
	CustomerName   string
	StoreNumber    string
	CityState      string
	VisitDate      *time.Time // nil for unscheduled jobs
	EquipmentCount int        // billable calibration units across service entries
}

// Snapshot is a complete point-in-time listing of the scheduled work orders,
// plus the hash of the raw page it was parsed from.
type Snapshot struct {
	PageHash string
	Orders   []WorkOrder
}

// SameDate reports whether two nullable visit dates are equal.
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// CompletionEntry is one row of the completion ledger: a job whose
// disappearance was explained by its visit date having passed.
type CompletionEntry struct {
	JobID     string
	StoreName string
	Date      time.Time
}
