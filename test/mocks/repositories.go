package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mtrev/fossawatch/internal/models"
)

// SnapshotRepository is a mock type for the sqlite.SnapshotRepository interface.
type SnapshotRepository struct {
	mock.Mock
}

func (m *SnapshotRepository) GetSnapshot(ctx context.Context) (*models.Snapshot, error) {
	args := m.Called(ctx)

	var snap *models.Snapshot
	if args.Get(0) != nil {
		snap = args.Get(0).(*models.Snapshot)
	}
	return snap, args.Error(1)
}

func (m *SnapshotRepository) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

// CompletionRepository is a mock type for the sqlite.CompletionRepository interface.
type CompletionRepository struct {
	mock.Mock
}

func (m *CompletionRepository) HasCompletion(ctx context.Context, jobID string) (bool, error) {
	args := m.Called(ctx, jobID)
	return args.Bool(0), args.Error(1)
}

func (m *CompletionRepository) AppendCompletion(
	ctx context.Context,
	entry models.CompletionEntry,
	recordedAt time.Time,
) error {
	args := m.Called(ctx, entry, recordedAt)
	return args.Error(0)
}

// SubscriptionRepository is a mock type for the sqlite.SubscriptionRepository interface.
type SubscriptionRepository struct {
	mock.Mock
}

func (m *SubscriptionRepository) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

func (m *SubscriptionRepository) GetPreferences(ctx context.Context, chatID int64) (models.Preferences, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(models.Preferences), args.Error(1)
}

func (m *SubscriptionRepository) ListSubscribers(ctx context.Context) ([]models.Preferences, error) {
	args := m.Called(ctx)

	var subs []models.Preferences
	if args.Get(0) != nil {
		subs = args.Get(0).([]models.Preferences)
	}
	return subs, args.Error(1)
}

func (m *SubscriptionRepository) Unsubscribe(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}
