// Package store defines the persistence contract for the StudyLog server.
package store

import (
	"context"

	"github.com/studylogapp/studylog-server/internal/domain"
)

// OwnerKind identifies which table an ownership lookup starts from.
type OwnerKind string

const (
	KindBook OwnerKind = "book"
	KindUnit OwnerKind = "unit"
	KindTask OwnerKind = "task"
	KindPart OwnerKind = "part"
)

// UnitReconcile describes the outcome of diffing a submitted unit list
// against the stored one. Applied atomically: updates and inserts land, and
// deleted units take their tasks and parts with them, in one transaction.
type UnitReconcile struct {
	Updates   []*domain.Unit
	Inserts   []*domain.Unit
	DeleteIDs []string
}

// Store is the persistence interface for the StudyLog server.
// All methods honor context cancellation and return *Error values
// (ErrNotFound, ErrAlreadyExists) for expected failure modes.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	CountUsers(ctx context.Context) (int, error)
	ListUserIDs(ctx context.Context) ([]string, error)

	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	RevokeSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Ownership resolves the user that owns an entity by walking the chain
	// part -> task -> unit -> book -> owner. Returns ErrNotFound if any link
	// in the chain is missing.
	OwnerOf(ctx context.Context, kind OwnerKind, id string) (string, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book, units []*domain.Unit) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context, ownerID string, includeArchived bool) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	ReorderBooks(ctx context.Context, ownerID string, orderedIDs []string) error
	ReconcileUnits(ctx context.Context, bookID string, change UnitReconcile) error

	// Units
	GetUnit(ctx context.Context, id string) (*domain.Unit, error)
	ListUnits(ctx context.Context, bookID string) ([]*domain.Unit, error)

	// Tasks. CreateTask assigns the next sequential number within the unit
	// inside the insert transaction and fills task.Number.
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, unitID string) ([]*domain.Task, error)
	ListTasksByBook(ctx context.Context, bookID string) ([]*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	SetTaskCompleted(ctx context.Context, id string, completed bool) error

	// Parts. SplitTask inserts both parts only when the task has none,
	// reporting whether the split happened. AddPart assigns the next letter
	// inside the insert transaction and fills part.Letter.
	SplitTask(ctx context.Context, taskID string, a, b *domain.TaskPart) (bool, error)
	AddPart(ctx context.Context, part *domain.TaskPart) error
	GetPart(ctx context.Context, id string) (*domain.TaskPart, error)
	ListParts(ctx context.Context, taskID string) ([]*domain.TaskPart, error)
	ListPartsByUnit(ctx context.Context, unitID string) ([]*domain.TaskPart, error)
	ListPartsByBook(ctx context.Context, bookID string) ([]*domain.TaskPart, error)
	SetPartCompleted(ctx context.Context, id string, completed bool) error
	DeletePart(ctx context.Context, id string) error
	DeleteParts(ctx context.Context, taskID string) (int, error)

	Close() error
}
