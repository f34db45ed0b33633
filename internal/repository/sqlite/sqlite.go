package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtrev/fossawatch/internal/models"
)

// SnapshotRepository persists the most recent schedule state: the stored
// snapshot is "previous" from the next comparison's point of view.
type SnapshotRepository interface {
	GetSnapshot(ctx context.Context) (*models.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap *models.Snapshot) error
}

// CompletionRepository backs the completion ledger.
type CompletionRepository interface {
	HasCompletion(ctx context.Context, jobID string) (bool, error)
	AppendCompletion(ctx context.Context, entry models.CompletionEntry, recordedAt time.Time) error
}

// SubscriptionRepository stores per-chat notification preferences.
type SubscriptionRepository interface {
	SavePreferences(ctx context.Context, prefs models.Preferences) error
	GetPreferences(ctx context.Context, chatID int64) (models.Preferences, error)
	ListSubscribers(ctx context.Context) ([]models.Preferences, error)
	Unsubscribe(ctx context.Context, chatID int64) error
}

// Repository represents a data repository that interacts with the database
// and provides logging capabilities. It holds a reference to the database
// and a logger instance for logging operations.
type Repository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewRepository creates a new instance of Repository with the provided
// storage path. It returns a pointer to the newly created Repository.
func NewRepository(ctx context.Context, log *slog.Logger, storagePath string) (*Repository, error) {
	// Open (or create if it doesn't exist) the database file.
	dtb, err := sql.Open("sqlite3", fmt.Sprintf("%s?_pragma=foreign_keys(1)", storagePath))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Check if the connection is actually established.
	if err = dtb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("unable to establish connection to database: %w", err)
	}

	// Perform the initial schema migration.
	if err = initSchema(ctx, dtb); err != nil {
		return nil, fmt.Errorf("DB schema initialization error: %w", err)
	}

	return &Repository{db: dtb, log: log}, nil
}

// NewForTest wraps an existing database handle (e.g. sqlmock) without
// running migrations.
func NewForTest(dtb *sql.DB) *Repository {
	return &Repository{db: dtb, log: slog.Default()}
}

// initSchema creates the necessary tables if they don't already exist.
func initSchema(ctx context.Context, dtb *sql.DB) error {
	const migrationQuery = `
	CREATE TABLE IF NOT EXISTS schedule_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		page_hash TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS work_orders (
		id TEXT PRIMARY KEY NOT NULL,
		customer_name TEXT,
		store_number TEXT,
		city_state TEXT,
		visit_date TEXT,
		equipment_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS completed_jobs (
		job_id TEXT PRIMARY KEY NOT NULL,
		store_name TEXT,
		visit_date TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS subscriptions (
		chat_id INTEGER PRIMARY KEY,
		push INTEGER NOT NULL DEFAULT 1,
		email INTEGER NOT NULL DEFAULT 0,
		suppress_low_only INTEGER NOT NULL DEFAULT 0,
		show_job_id INTEGER NOT NULL DEFAULT 1,
		show_store_name INTEGER NOT NULL DEFAULT 1,
		show_store_number INTEGER NOT NULL DEFAULT 0,
		show_location INTEGER NOT NULL DEFAULT 1,
		show_date INTEGER NOT NULL DEFAULT 1,
		show_equipment INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := dtb.ExecContext(ctx, migrationQuery)
	if err != nil {
		return fmt.Errorf("failed to execute migration query: %w", err)
	}

	return nil
}

// Close closes the connection to the database.
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		r.log.Error("failed to close the database", "op", "repository.sqlite.Close", "error", err)
		return fmt.Errorf("failed to close the database: %w", err)
	}

	return nil
}

// DB is a getter for database handler.
func (r *Repository) DB() *sql.DB {
	return r.db
}
