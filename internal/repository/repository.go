package repository

import "errors"

// ErrSnapshotNotFound is returned when no schedule snapshot has been stored
// yet (first run).
var ErrSnapshotNotFound = errors.New("schedule snapshot not found")

// ErrSubscriptionNotFound is returned when a chat has no stored
// preferences.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// ErrLedgerUnavailable marks a completion-ledger read/write failure. The
// comparison as a whole survives it: the affected removal is reported as a
// critical removal instead of being silently dropped.
var ErrLedgerUnavailable = errors.New("completion ledger unavailable")
