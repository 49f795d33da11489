package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/studylogapp/studylog-server/internal/domain"
	"github.com/studylogapp/studylog-server/internal/store"
)

// unitColumns is the ordered list of columns selected in unit queries.
// Must match the scan order in scanUnit.
const unitColumns = `id, book_id, title, number, created_at, updated_at`

// scanUnit scans a sql.Row (or sql.Rows via its Scan method) into a domain.Unit.
func scanUnit(scanner interface{ Scan(dest ...any) error }) (*domain.Unit, error) {
	var u domain.Unit

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&u.ID,
		&u.BookID,
		&u.Title,
		&u.Number,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// insertUnit inserts a unit within an existing transaction.
func insertUnit(ctx context.Context, tx *sql.Tx, unit *domain.Unit) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO units (
			id, book_id, title, number, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		unit.ID,
		unit.BookID,
		unit.Title,
		unit.Number,
		formatTime(unit.CreatedAt),
		formatTime(unit.UpdatedAt),
	)
	if err != nil && isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetUnit retrieves a unit by ID.
func (s *Store) GetUnit(ctx context.Context, id string) (*domain.Unit, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE id = ?`, id)

	unit, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// ListUnits returns a book's units ordered by unit number.
func (s *Store) ListUnits(ctx context.Context, bookID string) ([]*domain.Unit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE book_id = ? ORDER BY number ASC, created_at ASC`,
		bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*domain.Unit
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

// ReconcileUnits applies a unit diff for a book in one transaction:
// updates land in place, inserts are added, and deleted units cascade to
// their tasks and parts through foreign keys.
func (s *Store) ReconcileUnits(ctx context.Context, bookID string, change store.UnitReconcile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, unit := range change.Updates {
		result, err := tx.ExecContext(ctx, `
			UPDATE units SET title = ?, number = ?, updated_at = ?
			WHERE id = ? AND book_id = ?`,
			unit.Title,
			unit.Number,
			formatTime(unit.UpdatedAt),
			unit.ID,
			bookID,
		)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return store.ErrNotFound.WithMessage("unit " + unit.ID + " not found in book")
		}
	}

	for _, unit := range change.Inserts {
		if err := insertUnit(ctx, tx, unit); err != nil {
			return err
		}
	}

	for _, unitID := range change.DeleteIDs {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM units WHERE id = ? AND book_id = ?`, unitID, bookID); err != nil {
			return err
		}
	}

	return tx.Commit()
}
