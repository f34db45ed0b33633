package diff

import "github.com/mtrev/fossawatch/internal/models"

// SeverityFor maps a change kind to its notification severity. The mapping
// is static: added/removed/swapped change what the user must physically do
// and where, date changes reorder the week, attribute edits are
// informational, completions are expected housekeeping.
func SeverityFor(kind models.ChangeKind) models.Severity {
	switch kind {
	case models.KindAdded, models.KindRemoved, models.KindSwapped:
		return models.SeverityCritical
	case models.KindDateChanged:
		return models.SeverityHigh
	case models.KindModified:
		return models.SeverityMedium
	case models.KindCompleted:
		return models.SeverityLow
	default:
		return models.SeverityMedium
	}
}
