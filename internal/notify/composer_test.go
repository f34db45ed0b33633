package notify_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtrev/fossawatch/internal/models"
	"github.com/mtrev/fossawatch/internal/notify"
)

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return &parsed
}

func newComposer() *notify.Composer {
	return notify.NewComposer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleSet(t *testing.T) *models.ChangeSet {
	t.Helper()
	return &models.ChangeSet{
		Critical: []models.ChangeRecord{{
			Kind:           models.KindAdded,
			JobID:          "W-103",
			StoreName:      "New Mart",
			StoreNumber:    "56",
			Location:       "Decatur, IL",
			Date:           date(t, "2023-11-20"),
			EquipmentCount: 3,
		}},
		Low: []models.ChangeRecord{{
			Kind:      models.KindCompleted,
			JobID:     "W-101",
			StoreName: "Fuel Stop",
			Location:  "Springfield, IL",
			Date:      date(t, "2023-11-10"),
		}},
		Summary: models.Summary{Added: 1, Completed: 1},
	}
}

func TestCompose_EmptySetProducesNothing(t *testing.T) {
	prefs := models.DefaultPreferences(42)

	assert.Nil(t, newComposer().Compose(&models.ChangeSet{}, prefs, false))
	assert.Nil(t, newComposer().Compose(nil, prefs, false))
}

func TestCompose_LowOnlySuppression(t *testing.T) {
	lowOnly := &models.ChangeSet{
		Low: []models.ChangeRecord{{
			Kind:  models.KindCompleted,
			JobID: "W-101",
			Date:  date(t, "2023-11-10"),
		}},
		Summary: models.Summary{Completed: 1},
	}

	t.Run("suppressed when opted out", func(t *testing.T) {
		prefs := models.DefaultPreferences(42)
		prefs.SuppressLowOnly = true

		assert.Nil(t, newComposer().Compose(lowOnly, prefs, false))
	})

	t.Run("delivered by default", func(t *testing.T) {
		prefs := models.DefaultPreferences(42)

		payloads := newComposer().Compose(lowOnly, prefs, false)
		require.Len(t, payloads, 1)
		assert.Contains(t, payloads[0].Body, "COMPLETED")
	})

	t.Run("opt-out does not mute mixed sets", func(t *testing.T) {
		prefs := models.DefaultPreferences(42)
		prefs.SuppressLowOnly = true

		payloads := newComposer().Compose(sampleSet(t), prefs, false)
		require.Len(t, payloads, 1)
	})
}

func TestCompose_ChannelSelection(t *testing.T) {
	prefs := models.DefaultPreferences(42)
	prefs.Email = true

	payloads := newComposer().Compose(sampleSet(t), prefs, false)

	require.Len(t, payloads, 2)
	assert.Equal(t, models.ChannelPush, payloads[0].Channel)
	assert.Equal(t, models.ChannelEmail, payloads[1].Channel)
	assert.Equal(t, int64(42), payloads[0].ChatID)
	assert.Equal(t, payloads[0].Body, payloads[1].Body)
}

func TestCompose_SubjectCarriesTopSeverityAndCount(t *testing.T) {
	prefs := models.DefaultPreferences(42)

	payloads := newComposer().Compose(sampleSet(t), prefs, false)
	require.Len(t, payloads, 1)
	assert.Equal(t, "Schedule update: 2 changes (critical)", payloads[0].Subject)

	lowOnly := &models.ChangeSet{
		Low:     []models.ChangeRecord{{Kind: models.KindCompleted, JobID: "W-101"}},
		Summary: models.Summary{Completed: 1},
	}
	payloads = newComposer().Compose(lowOnly, prefs, false)
	require.Len(t, payloads, 1)
	assert.Equal(t, "Schedule update: 1 change (low)", payloads[0].Subject)
}

func TestCompose_FieldFiltering(t *testing.T) {
	prefs := models.DefaultPreferences(42)
	prefs.Fields = models.FieldSet{JobID: true} // everything else off

	payloads := newComposer().Compose(sampleSet(t), prefs, false)
	require.Len(t, payloads, 1)

	body := payloads[0].Body
	assert.Contains(t, body, "W-103")
	assert.NotContains(t, body, "New Mart")
	assert.NotContains(t, body, "Decatur")
	assert.NotContains(t, body, "unit(s)")
}

func TestCompose_ForceAllFieldsBypassesPreferences(t *testing.T) {
	prefs := models.DefaultPreferences(42)
	prefs.Fields = models.FieldSet{} // nothing selected

	payloads := newComposer().Compose(sampleSet(t), prefs, true)
	require.Len(t, payloads, 1)

	body := payloads[0].Body
	assert.Contains(t, body, "W-103")
	assert.Contains(t, body, "New Mart")
	assert.Contains(t, body, "store 56")
	assert.Contains(t, body, "Decatur, IL")
	assert.Contains(t, body, "3 unit(s)")
}

func TestCompose_MissingFieldsRenderPlaceholder(t *testing.T) {
	sparse := &models.ChangeSet{
		Critical: []models.ChangeRecord{{
			Kind:  models.KindRemoved,
			JobID: "W-200",
			// no store name, location or date
		}},
		Summary: models.Summary{Removed: 1},
	}

	prefs := models.DefaultPreferences(42)
	payloads := newComposer().Compose(sparse, prefs, true)
	require.Len(t, payloads, 1)

	assert.Contains(t, payloads[0].Body, "—")
	assert.Contains(t, payloads[0].Body, "REMOVED")
}

func TestCompose_RecordRendering(t *testing.T) {
	set := &models.ChangeSet{
		Critical: []models.ChangeRecord{{
			Kind:       models.KindSwapped,
			JobID:      "W-1001",
			OtherJobID: "W-1002",
			StoreName:  "Fuel Stop",
			OldDate:    date(t, "2023-11-01"),
			NewDate:    date(t, "2023-11-05"),
		}},
		High: []models.ChangeRecord{{
			Kind:      models.KindDateChanged,
			JobID:     "W-1004",
			StoreName: "Travel Center",
			OldDate:   date(t, "2023-11-02"),
			NewDate:   date(t, "2023-11-09"),
		}},
		Medium: []models.ChangeRecord{{
			Kind:          models.KindModified,
			JobID:         "W-1005",
			StoreName:     "Corner Gas",
			ChangedFields: []string{"equipmentCount", "customerName"},
			Date:          date(t, "2023-11-12"),
		}},
		Summary: models.Summary{Swapped: 2, DateChanged: 1, Modified: 1},
	}

	payloads := newComposer().Compose(set, models.DefaultPreferences(42), false)
	require.Len(t, payloads, 1)
	body := payloads[0].Body

	assert.Contains(t, body, "SWAPPED with W-1002")
	assert.Contains(t, body, "Wed, Nov 1 2023 → Sun, Nov 5 2023")
	assert.Contains(t, body, "RESCHEDULED")
	assert.Contains(t, body, "CHANGED (equipmentCount, customerName)")

	// Sections appear in severity order.
	assert.Less(t, strings.Index(body, "Needs attention"), strings.Index(body, "Date changes"))
	assert.Less(t, strings.Index(body, "Date changes"), strings.Index(body, "Details changed"))
}
