package models

import "time"

// ChangeKind classifies a single job-level difference between two snapshots.
type ChangeKind string

const (
	KindAdded       ChangeKind = "added"
	KindRemoved     ChangeKind = "removed"
	KindModified    ChangeKind = "modified"
	KindDateChanged ChangeKind = "dateChanged"
	KindSwapped     ChangeKind = "swapped"
	KindCompleted   ChangeKind = "completed"
)

// Severity drives notification urgency and content verbosity.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ChangeRecord is one classified difference. Fields that do not apply to
// the record's kind are left zero: OldDate/NewDate are set only for
// dateChanged and swapped, OtherJobID only for swapped, ChangedFields only
// for modified.
type ChangeRecord struct {
	Kind              ChangeKind
	JobID             string
	StoreName         string
	StoreNumber       string
	Location          string
	Date              *time.Time
	OldDate           *time.Time
	NewDate           *time.Time
	EquipmentCount    int
	OldEquipmentCount int
	OtherJobID        string
	ChangedFields     []string
}

// Summary counts the classified differences. A swap contributes 2 to
// Swapped, one per participating job.
type Summary struct {
	Added       int
	Removed     int
	Modified    int
	DateChanged int
	Swapped     int
	Completed   int
}

// ChangeSet is the comparison result, partitioned by severity. Every job
// present in exactly one snapshot appears exactly once across the buckets.
type ChangeSet struct {
	Critical []ChangeRecord
	High     []ChangeRecord
	Medium   []ChangeRecord
	Low      []ChangeRecord
	Summary  Summary
}

// Empty reports whether the set contains no records.
func (cs *ChangeSet) Empty() bool {
	return len(cs.Critical) == 0 && len(cs.High) == 0 && len(cs.Medium) == 0 && len(cs.Low) == 0
}

// LowOnly reports whether every record in the set sits in the low bucket.
func (cs *ChangeSet) LowOnly() bool {
	return !cs.Empty() && len(cs.Critical) == 0 && len(cs.High) == 0 && len(cs.Medium) == 0
}

// Records returns all records in severity order, critical first.
func (cs *ChangeSet) Records() []ChangeRecord {
	out := make([]ChangeRecord, 0, len(cs.Critical)+len(cs.High)+len(cs.Medium)+len(cs.Low))
	out = append(out, cs.Critical...)
	out = append(out, cs.High...)
	out = append(out, cs.Medium...)
	out = append(out, cs.Low...)
	return out
}
