package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mtrev/fossawatch/internal/models"
	"github.com/mtrev/fossawatch/internal/repository"
)

const dateLayout = "2006-01-02"

// GetSnapshot implements an interface method for retrieving the stored
// schedule snapshot from the database.
func (r *Repository) GetSnapshot(ctx context.Context) (*models.Snapshot, error) {
	const opn = "repository.sqlite.GetSnapshot"

	// 1. Get hash of the schedule page
	var pageHash string
	err := r.db.QueryRowContext(ctx, "SELECT page_hash FROM schedule_state WHERE id = 1").Scan(&pageHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("%s: failed to get page hash: %w", opn, err)
	}

	// 2. Get all work orders from the table
	rows, err := r.db.QueryContext(
		ctx,
		"SELECT id, customer_name, store_number, city_state, visit_date, equipment_count FROM work_orders",
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get work orders: %w", opn, err)
	}
	defer rows.Close()

	// 3. Scan every row into a WorkOrder structure
	var orders []models.WorkOrder
	for rows.Next() {
		var (
			wo        models.WorkOrder
			visitDate sql.NullString
		)
		if err = rows.Scan(&wo.ID, &wo.CustomerName, &wo.StoreNumber, &wo.CityState, &visitDate, &wo.EquipmentCount); err != nil {
			return nil, fmt.Errorf("%s: failed to scan work order: %w", opn, err)
		}
		if visitDate.Valid {
			parsed, perr := time.Parse(dateLayout, visitDate.String)
			if perr != nil {
				return nil, fmt.Errorf("%s: corrupt visit date %q: %w", opn, visitDate.String, perr)
			}
			wo.VisitDate = &parsed
		}
		orders = append(orders, wo)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return &models.Snapshot{
		PageHash: pageHash,
		Orders:   orders,
	}, nil
}

// SaveSnapshot atomically replaces the stored schedule using a transaction.
func (r *Repository) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	const opn = "repository.sqlite.SaveSnapshot"

	// 1. begin transaction
	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx its a default naming for transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // Because in Go, it's common practice to ignore the Rollback() error in a defer, since if the transaction committed successfully, the rollback would just return sql.ErrTxDone and it's not useful to log or act on.

	// 2. Update (or insert) hash of the schedule page.
	_, err = tx.ExecContext(ctx, "INSERT OR REPLACE INTO schedule_state (id, page_hash) VALUES (1, ?)", snap.PageHash)
	if err != nil {
		return fmt.Errorf("%s: failed to update page hash: %w", opn, err)
	}

	// 3. Completely clear the work_orders table to record the new current state.
	_, err = tx.ExecContext(ctx, "DELETE FROM work_orders")
	if err != nil {
		return fmt.Errorf("%s: failed to delete old work orders: %w", opn, err)
	}

	// 4. Preparing a request for the effective insertion of new work orders.
	stmt, err := tx.PrepareContext(
		ctx,
		"INSERT INTO work_orders (id, customer_name, store_number, city_state, visit_date, equipment_count) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare insert statement: %w", opn, err)
	}
	defer stmt.Close()

	// 5. Insert each work order into the table.
	for _, wo := range snap.Orders {
		var visitDate any
		if wo.VisitDate != nil {
			visitDate = wo.VisitDate.Format(dateLayout)
		}
		if _, err = stmt.ExecContext(ctx, wo.ID, wo.CustomerName, wo.StoreNumber, wo.CityState, visitDate, wo.EquipmentCount); err != nil {
			return fmt.Errorf("%s: failed to insert work order %s: %w", opn, wo.ID, err)
		}
	}

	// 6. If all operations went through without errors - confirm the transaction.
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}
