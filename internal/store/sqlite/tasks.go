package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/studylogapp/studylog-server/internal/domain"
	"github.com/studylogapp/studylog-server/internal/store"
)

// taskColumns is the ordered list of columns selected in task queries.
// Must match the scan order in scanTask.
const taskColumns = `id, unit_id, number, completed, created_at, updated_at`

// scanTask scans a sql.Row (or sql.Rows via its Scan method) into a domain.Task.
func scanTask(scanner interface{ Scan(dest ...any) error }) (*domain.Task, error) {
	var t domain.Task

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&t.ID,
		&t.UnitID,
		&t.Number,
		&t.Completed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateTask inserts a new task, assigning the next sequential number within
// its unit. The number is computed and consumed inside one transaction, so
// concurrent inserts on the same unit serialize on the SQLite writer instead
// of racing; the UNIQUE(unit_id, number) constraint backstops the invariant.
func (s *Store) CreateTask(ctx context.Context, task *domain.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM units WHERE id = ?`, task.UnitID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return store.ErrNotFound.WithMessage("unit not found")
	}

	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(number), 0) + 1 FROM tasks WHERE unit_id = ?`,
		task.UnitID).Scan(&task.Number)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (
			id, unit_id, number, completed, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.UnitID,
		task.Number,
		task.Completed,
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}

	return tx.Commit()
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns a unit's tasks ordered by task number.
func (s *Store) ListTasks(ctx context.Context, unitID string) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE unit_id = ? ORDER BY number ASC`, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

// ListTasksByBook returns all tasks across a book's units, ordered by unit
// number then task number.
func (s *Store) ListTasksByBook(ctx context.Context, bookID string) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.unit_id, t.number, t.completed, t.created_at, t.updated_at
		FROM tasks t
		JOIN units u ON u.id = t.unit_id
		WHERE u.book_id = ?
		ORDER BY u.number ASC, t.number ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// DeleteTask removes a task; its parts go with it through the foreign key
// cascade, so a reader never observes a part without its task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
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

// SetTaskCompleted sets a task's completion flag.
func (s *Store) SetTaskCompleted(ctx context.Context, id string, completed bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET completed = ?, updated_at = ? WHERE id = ?`,
		completed, formatTime(time.Now()), id)
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
