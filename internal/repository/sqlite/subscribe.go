package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mtrev/fossawatch/internal/models"
	"github.com/mtrev/fossawatch/internal/repository"
)

const prefColumns = "chat_id, push, email, suppress_low_only, " +
	"show_job_id, show_store_name, show_store_number, show_location, show_date, show_equipment"

// SavePreferences inserts or replaces a subscriber's preferences.
func (r *Repository) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	const opn = "repository.sqlite.SavePreferences"

	_, err := r.db.ExecContext(
		ctx,
		"INSERT OR REPLACE INTO subscriptions ("+prefColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		prefs.ChatID,
		prefs.Push,
		prefs.Email,
		prefs.SuppressLowOnly,
		prefs.Fields.JobID,
		prefs.Fields.StoreName,
		prefs.Fields.StoreNumber,
		prefs.Fields.Location,
		prefs.Fields.Date,
		prefs.Fields.EquipmentCount,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// GetPreferences returns the stored preferences for a single chat.
func (r *Repository) GetPreferences(ctx context.Context, chatID int64) (models.Preferences, error) {
	const opn = "repository.sqlite.GetPreferences"

	row := r.db.QueryRowContext(ctx, "SELECT "+prefColumns+" FROM subscriptions WHERE chat_id = ?", chatID)

	prefs, err := scanPreferences(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Preferences{}, repository.ErrSubscriptionNotFound
		}
		return models.Preferences{}, fmt.Errorf("%s: %w", opn, err)
	}

	return prefs, nil
}

// ListSubscribers returns the preferences of every subscribed chat.
func (r *Repository) ListSubscribers(ctx context.Context) ([]models.Preferences, error) {
	const opn = "repository.sqlite.ListSubscribers"

	rows, err := r.db.QueryContext(ctx, "SELECT "+prefColumns+" FROM subscriptions")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer rows.Close()

	var subscribers []models.Preferences
	for rows.Next() {
		prefs, serr := scanPreferences(rows.Scan)
		if serr != nil {
			return nil, fmt.Errorf("%s: failed to scan subscription: %w", opn, serr)
		}
		subscribers = append(subscribers, prefs)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return subscribers, nil
}

// Unsubscribe deletes the chat's subscription.
func (r *Repository) Unsubscribe(ctx context.Context, chatID int64) error {
	const opn = "repository.sqlite.Unsubscribe"

	_, err := r.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE chat_id = ?", chatID)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

func scanPreferences(scan func(dest ...any) error) (models.Preferences, error) {
	var prefs models.Preferences
	err := scan(
		&prefs.ChatID,
		&prefs.Push,
		&prefs.Email,
		&prefs.SuppressLowOnly,
		&prefs.Fields.JobID,
		&prefs.Fields.StoreName,
		&prefs.Fields.StoreNumber,
		&prefs.Fields.Location,
		&prefs.Fields.Date,
		&prefs.Fields.EquipmentCount,
	)
	return prefs, err
}
