package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/studylogapp/studylog-server/internal/domain"
	"github.com/studylogapp/studylog-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, owner_id, title, archived, position, created_at, updated_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&b.ID,
		&b.OwnerID,
		&b.Title,
		&b.Archived,
		&b.Position,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// OwnerOf resolves the owning user of an entity by joining up the chain
// part -> task -> unit -> book. Returns store.ErrNotFound if the entity
// does not exist.
func (s *Store) OwnerOf(ctx context.Context, kind store.OwnerKind, id string) (string, error) {
	var query string
	switch kind {
	case store.KindBook:
		query = `SELECT owner_id FROM books WHERE id = ?`
	case store.KindUnit:
		query = `SELECT b.owner_id FROM units u
			JOIN books b ON b.id = u.book_id
			WHERE u.id = ?`
	case store.KindTask:
		query = `SELECT b.owner_id FROM tasks t
			JOIN units u ON u.id = t.unit_id
			JOIN books b ON b.id = u.book_id
			WHERE t.id = ?`
	case store.KindPart:
		query = `SELECT b.owner_id FROM task_parts p
			JOIN tasks t ON t.id = p.task_id
			JOIN units u ON u.id = t.unit_id
			JOIN books b ON b.id = u.book_id
			WHERE p.id = ?`
	default:
		return "", fmt.Errorf("unknown owner kind %q", kind)
	}

	var ownerID string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return ownerID, nil
}

// CreateBook inserts a new book and its initial units in one transaction.
// The book's position is assigned as max(position)+1 among the owner's books.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book, units []*domain.Unit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM books WHERE owner_id = ?`,
		book.OwnerID).Scan(&book.Position)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (
			id, owner_id, title, archived, position, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.OwnerID,
		book.Title,
		book.Archived,
		book.Position,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}

	for _, unit := range units {
		if err := insertUnit(ctx, tx, unit); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// ListBooks returns the owner's books in position order, falling back to
// newest-first for equal positions.
func (s *Store) ListBooks(ctx context.Context, ownerID string, includeArchived bool) ([]*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE owner_id = ?`
	if !includeArchived {
		query += ` AND archived = 0`
	}
	query += ` ORDER BY position ASC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// UpdateBook updates a book's mutable fields.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET title = ?, archived = ?, position = ?, updated_at = ?
		WHERE id = ?`,
		book.Title,
		book.Archived,
		book.Position,
		formatTime(book.UpdatedAt),
		book.ID,
	)
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

// ReorderBooks rewrites the positions of the owner's books to match the
// order of orderedIDs, in one transaction. Callers are responsible for
// validating that orderedIDs covers exactly the owner's books.
func (s *Store) ReorderBooks(ctx context.Context, ownerID string, orderedIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, bookID := range orderedIDs {
		result, err := tx.ExecContext(ctx,
			`UPDATE books SET position = ? WHERE id = ? AND owner_id = ?`,
			i, bookID, ownerID)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return store.ErrNotFound.WithMessage(fmt.Sprintf("book %s not found", bookID))
		}
	}

	return tx.Commit()
}
