package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/studylogapp/studylog-server/internal/domain"
	"github.com/studylogapp/studylog-server/internal/store"
)

// partColumns is the ordered list of columns selected in part queries.
// Must match the scan order in scanPart.
const partColumns = `id, task_id, letter, completed, created_at`

// partOrder sorts letters by sequence position: "z" before "aa".
const partOrder = `ORDER BY LENGTH(letter) ASC, letter ASC`

// scanPart scans a sql.Row (or sql.Rows via its Scan method) into a domain.TaskPart.
func scanPart(scanner interface{ Scan(dest ...any) error }) (*domain.TaskPart, error) {
	var p domain.TaskPart

	var createdAt string

	err := scanner.Scan(
		&p.ID,
		&p.TaskID,
		&p.Letter,
		&p.Completed,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func insertPart(ctx context.Context, tx *sql.Tx, part *domain.TaskPart) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO task_parts (
			id, task_id, letter, completed, created_at
		) VALUES (?, ?, ?, ?, ?)`,
		part.ID,
		part.TaskID,
		part.Letter,
		part.Completed,
		formatTime(part.CreatedAt),
	)
	if err != nil && isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// SplitTask inserts parts a and b (lettered "a" and "b") for the task if and
// only if the task currently has zero parts. The check and both inserts share
// one transaction, so two concurrent splits cannot each observe zero parts
// and double-insert. Reports whether the split happened; a task that already
// has parts is left untouched.
func (s *Store) SplitTask(ctx context.Context, taskID string, a, b *domain.TaskPart) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var taskExists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE id = ?`, taskID).Scan(&taskExists)
	if err != nil {
		return false, err
	}
	if taskExists == 0 {
		return false, store.ErrNotFound.WithMessage("task not found")
	}

	var partCount int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM task_parts WHERE task_id = ?`, taskID).Scan(&partCount)
	if err != nil {
		return false, err
	}
	if partCount > 0 {
		return false, tx.Commit()
	}

	a.TaskID, a.Letter = taskID, "a"
	b.TaskID, b.Letter = taskID, "b"

	if err := insertPart(ctx, tx, a); err != nil {
		return false, err
	}
	if err := insertPart(ctx, tx, b); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// AddPart inserts a single part, assigning the letter after the task's
// current last part within the insert transaction.
func (s *Store) AddPart(ctx context.Context, part *domain.TaskPart) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var taskExists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE id = ?`, part.TaskID).Scan(&taskExists)
	if err != nil {
		return err
	}
	if taskExists == 0 {
		return store.ErrNotFound.WithMessage("task not found")
	}

	var lastLetter string
	err = tx.QueryRowContext(ctx,
		`SELECT letter FROM task_parts WHERE task_id = ?
		 ORDER BY LENGTH(letter) DESC, letter DESC LIMIT 1`,
		part.TaskID).Scan(&lastLetter)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	part.Letter = domain.NextLetter(lastLetter)

	if err := insertPart(ctx, tx, part); err != nil {
		return err
	}

	return tx.Commit()
}

// GetPart retrieves a part by ID.
func (s *Store) GetPart(ctx context.Context, id string) (*domain.TaskPart, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+partColumns+` FROM task_parts WHERE id = ?`, id)

	part, err := scanPart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return part, nil
}

// ListParts returns a task's parts in letter sequence order.
func (s *Store) ListParts(ctx context.Context, taskID string) ([]*domain.TaskPart, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+partColumns+` FROM task_parts WHERE task_id = ? `+partOrder, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectParts(rows)
}

// ListPartsByUnit returns all parts under a unit's tasks.
func (s *Store) ListPartsByUnit(ctx context.Context, unitID string) ([]*domain.TaskPart, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.task_id, p.letter, p.completed, p.created_at
		FROM task_parts p
		JOIN tasks t ON t.id = p.task_id
		WHERE t.unit_id = ?
		ORDER BY LENGTH(p.letter) ASC, p.letter ASC`, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectParts(rows)
}

// ListPartsByBook returns all parts under a book's tasks.
func (s *Store) ListPartsByBook(ctx context.Context, bookID string) ([]*domain.TaskPart, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.task_id, p.letter, p.completed, p.created_at
		FROM task_parts p
		JOIN tasks t ON t.id = p.task_id
		JOIN units u ON u.id = t.unit_id
		WHERE u.book_id = ?
		ORDER BY LENGTH(p.letter) ASC, p.letter ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectParts(rows)
}

func collectParts(rows *sql.Rows) ([]*domain.TaskPart, error) {
	var parts []*domain.TaskPart
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, rows.Err()
}

// SetPartCompleted sets a part's completion flag.
func (s *Store) SetPartCompleted(ctx context.Context, id string, completed bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE task_parts SET completed = ? WHERE id = ?`, completed, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeletePart removes a single part.
func (s *Store) DeletePart(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM task_parts WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteParts removes all parts of a task, reverting it to flag-based
// completion. Returns the number of parts deleted; zero parts is not an
// error, which keeps undoing a split idempotent.
func (s *Store) DeleteParts(ctx context.Context, taskID string) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM task_parts WHERE task_id = ?`, taskID)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
