package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mtrev/fossawatch/internal/models"
)

// ScheduleComparator is a mock type for the checker.ScheduleComparator interface.
type ScheduleComparator struct {
	mock.Mock
}

func (m *ScheduleComparator) Compare(
	ctx context.Context,
	current, previous *models.Snapshot,
	today time.Time,
) (*models.ChangeSet, error) {
	args := m.Called(ctx, current, previous, today)

	var changes *models.ChangeSet
	if args.Get(0) != nil {
		changes = args.Get(0).(*models.ChangeSet)
	}
	return changes, args.Error(1)
}

// RemovalClassifier is a mock type for the diff.RemovalClassifier interface.
type RemovalClassifier struct {
	mock.Mock
}

func (m *RemovalClassifier) ClassifyRemoval(
	ctx context.Context,
	prev models.WorkOrder,
	today time.Time,
) (models.ChangeKind, bool, error) {
	args := m.Called(ctx, prev, today)
	return args.Get(0).(models.ChangeKind), args.Bool(1), args.Error(2)
}
