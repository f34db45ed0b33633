package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtrev/fossawatch/internal/repository/sqlite"
)

func TestNewRepository(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("creates_database_and_schema", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "fossawatch.db")

		repo, err := sqlite.NewRepository(context.Background(), logger, dbPath)
		require.NoError(t, err)
		require.NotNil(t, repo.DB())

		// The schema must be queryable right after initialization.
		var count int
		err = repo.DB().QueryRowContext(context.Background(), "SELECT COUNT(1) FROM subscriptions").Scan(&count)
		require.NoError(t, err)
		assert.Zero(t, count)

		require.NoError(t, repo.Close())
	})

	t.Run("error_on_unusable_path", func(t *testing.T) {
		_, err := sqlite.NewRepository(context.Background(), logger, filepath.Join(t.TempDir(), "missing", "nested", "fossawatch.db"))
		require.Error(t, err)
	})
}
