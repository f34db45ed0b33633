package notify

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mtrev/fossawatch/internal/models"
)

// placeholder is rendered for any absent optional attribute. The composer
// never fails a whole notification over a missing field.
const placeholder = "—"

const dateLayout = "Mon, Jan 2 2006"

// Composer renders a ChangeSet into per-channel notification payloads
// according to a subscriber's display preferences.
type Composer struct {
	log *slog.Logger
}

// NewComposer creates a new Composer instance.
func NewComposer(log *slog.Logger) *Composer {
	return &Composer{log: log}
}

// Compose builds one payload per enabled channel. The result is empty when
// the set has no records, and when the set is completed-only and the
// subscriber opted out of low-severity notifications. forceAllFields
// bypasses the preference filter; the self-test path uses it to verify
// every attribute renders.
func (c *Composer) Compose(
	changes *models.ChangeSet,
	prefs models.Preferences,
	forceAllFields bool,
) []models.Payload {
	if changes == nil || changes.Empty() {
		return nil
	}
	if changes.LowOnly() && prefs.SuppressLowOnly {
		return nil
	}

	fields := prefs.Fields
	if forceAllFields {
		fields = models.AllFields()
	}

	subject := c.subject(changes)
	body := c.body(changes, fields)

	var payloads []models.Payload
	if prefs.Push {
		payloads = append(payloads, models.Payload{
			Channel: models.ChannelPush,
			ChatID:  prefs.ChatID,
			Subject: subject,
			Body:    body,
		})
	}
	if prefs.Email {
		payloads = append(payloads, models.Payload{
			Channel: models.ChannelEmail,
			ChatID:  prefs.ChatID,
			Subject: subject,
			Body:    body,
		})
	}

	return payloads
}

// subject summarizes the set: total record count plus the top severity.
func (c *Composer) subject(changes *models.ChangeSet) string {
	total := len(changes.Records())

	severity := models.SeverityLow
	switch {
	case len(changes.Critical) > 0:
		severity = models.SeverityCritical
	case len(changes.High) > 0:
		severity = models.SeverityHigh
	case len(changes.Medium) > 0:
		severity = models.SeverityMedium
	}

	noun := "changes"
	if total == 1 {
		noun = "change"
	}
	return fmt.Sprintf("Schedule update: %d %s (%s)", total, noun, severity)
}

func (c *Composer) body(changes *models.ChangeSet, fields models.FieldSet) string {
	var b strings.Builder

	sections := []struct {
		title   string
		records []models.ChangeRecord
	}{
		{"Needs attention", changes.Critical},
		{"Date changes", changes.High},
		{"Details changed", changes.Medium},
		{"Completed", changes.Low},
	}

	for _, section := range sections {
		if len(section.records) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(section.title)
		b.WriteString(":\n")
		for _, rec := range section.records {
			b.WriteString(c.renderRecord(rec, fields))
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderRecord renders one change as a single line, honoring the field
// toggles. Absent values render as the placeholder.
func (c *Composer) renderRecord(rec models.ChangeRecord, fields models.FieldSet) string {
	if rec.JobID == "" {
		// An internal defect upstream, not a user error; render what we
		// have and leave a trace for the operator.
		c.log.Warn("change record is missing its job id", "kind", rec.Kind, "store", rec.StoreName)
	}

	var parts []string

	parts = append(parts, kindLabel(rec))
	if fields.JobID {
		parts = append(parts, orDash(rec.JobID))
	}
	if fields.StoreName {
		parts = append(parts, orDash(rec.StoreName))
	}
	if fields.StoreNumber {
		parts = append(parts, "store "+orDash(rec.StoreNumber))
	}
	if fields.Location {
		parts = append(parts, orDash(rec.Location))
	}
	if fields.Date {
		parts = append(parts, dateDetail(rec))
	}
	if fields.EquipmentCount {
		parts = append(parts, fmt.Sprintf("%d unit(s)", rec.EquipmentCount))
	}

	return "• " + strings.Join(parts, " | ")
}

func kindLabel(rec models.ChangeRecord) string {
	switch rec.Kind {
	case models.KindAdded:
		return "NEW"
	case models.KindRemoved:
		return "REMOVED"
	case models.KindModified:
		if len(rec.ChangedFields) > 0 {
			return "CHANGED (" + strings.Join(rec.ChangedFields, ", ") + ")"
		}
		return "CHANGED"
	case models.KindDateChanged:
		return "RESCHEDULED"
	case models.KindSwapped:
		return "SWAPPED with " + orDash(rec.OtherJobID)
	case models.KindCompleted:
		return "COMPLETED"
	default:
		return strings.ToUpper(string(rec.Kind))
	}
}

// dateDetail shows the old and new dates for date moves and swaps, the
// plain date otherwise.
func dateDetail(rec models.ChangeRecord) string {
	switch rec.Kind {
	case models.KindDateChanged, models.KindSwapped:
		return formatDate(rec.OldDate) + " → " + formatDate(rec.NewDate)
	default:
		return formatDate(rec.Date)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return placeholder
	}
	return t.Format(dateLayout)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
