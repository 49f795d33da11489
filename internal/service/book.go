package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/studylogapp/studylog-server/internal/domain"
	domainerrors "github.com/studylogapp/studylog-server/internal/errors"
	"github.com/studylogapp/studylog-server/internal/id"
	"github.com/studylogapp/studylog-server/internal/search"
	"github.com/studylogapp/studylog-server/internal/sse"
	"github.com/studylogapp/studylog-server/internal/store"
)

// BookService orchestrates book and unit operations: creation with initial
// units, listing, archiving, unit-list reconciliation, and whole-list
// reordering. Every mutation is ownership-gated.
type BookService struct {
	store       store.Store
	searchIndex *search.SearchIndex
	sseManager  *sse.Manager
	logger      *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, searchIndex *search.SearchIndex, sseManager *sse.Manager, logger *slog.Logger) *BookService {
	return &BookService{
		store:       store,
		searchIndex: searchIndex,
		sseManager:  sseManager,
		logger:      logger,
	}
}

// CreateBookRequest contains the data for creating a book with optional
// initial units.
type CreateBookRequest struct {
	Title    string            `json:"title" validate:"required,max=300"`
	Archived bool              `json:"archived"`
	Units    []CreateUnitInput `json:"units" validate:"dive"`
}

// CreateUnitInput describes one initial unit in a create request.
type CreateUnitInput struct {
	Title  string `json:"title" validate:"required,max=300"`
	Number int    `json:"number" validate:"gte=0"`
}

// UpdateBookRequest contains the data for a book edit. The unit list is
// reconciled against the stored one: entries with an id update in place,
// entries without an id insert, and stored units missing from the list are
// deleted along with their tasks and parts.
type UpdateBookRequest struct {
	Title    string            `json:"title" validate:"required,max=300"`
	Archived bool              `json:"archived"`
	Units    []UpdateUnitInput `json:"units" validate:"dive"`
}

// UpdateUnitInput describes one unit entry in an edit request.
type UpdateUnitInput struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title" validate:"required,max=300"`
	Number int    `json:"number" validate:"gte=0"`
}

// BookWithUnits pairs a book with its ordered units.
type BookWithUnits struct {
	Book  *domain.Book   `json:"book"`
	Units []*domain.Unit `json:"units"`
}

// CreateBook creates a new book for the user, with any initial units, in one
// transaction.
func (s *BookService) CreateBook(ctx context.Context, ownerID string, req CreateBookRequest) (*BookWithUnits, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := time.Now()
	book := &domain.Book{
		ID:        bookID,
		OwnerID:   ownerID,
		Title:     req.Title,
		Archived:  req.Archived,
		CreatedAt: now,
		UpdatedAt: now,
	}

	units := make([]*domain.Unit, 0, len(req.Units))
	for _, u := range req.Units {
		unitID, err := id.Generate("unit")
		if err != nil {
			return nil, fmt.Errorf("generate unit ID: %w", err)
		}
		units = append(units, &domain.Unit{
			ID:        unitID,
			BookID:    bookID,
			Title:     u.Title,
			Number:    u.Number,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.store.CreateBook(ctx, book, units); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book created",
		"book_id", bookID,
		"owner_id", ownerID,
		"units", len(units),
	)

	s.indexBook(book, units)
	s.sseManager.Emit(sse.NewEvent(ownerID, sse.EventBookCreated, sse.BookEventData{Book: book}))

	return &BookWithUnits{Book: book, Units: units}, nil
}

// GetBook retrieves a book with its units. A book that does not exist or is
// not owned by the caller is reported as not found, without revealing which.
func (s *BookService) GetBook(ctx context.Context, callerID, bookID string) (*BookWithUnits, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.OwnerID != callerID {
		return nil, domainerrors.NotFound("book not found")
	}

	units, err := s.store.ListUnits(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}

	return &BookWithUnits{Book: book, Units: units}, nil
}

// ListBooks returns the caller's books ordered by position.
func (s *BookService) ListBooks(ctx context.Context, callerID string, includeArchived bool) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx, callerID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// UpdateBook applies a book edit: title, archive state, and the reconciled
// unit list. The unit changes land in a single transaction.
func (s *BookService) UpdateBook(ctx context.Context, callerID, bookID string, req UpdateBookRequest) (*BookWithUnits, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.OwnerID != callerID {
		return nil, domainerrors.Forbidden("you do not own this book")
	}

	existing, err := s.store.ListUnits(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}

	change, err := diffUnits(bookID, existing, req.Units)
	if err != nil {
		return nil, err
	}

	book.Title = req.Title
	book.Archived = req.Archived
	book.UpdatedAt = time.Now()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	if err := s.store.ReconcileUnits(ctx, bookID, change); err != nil {
		return nil, fmt.Errorf("reconcile units: %w", err)
	}

	units, err := s.store.ListUnits(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}

	s.logger.Info("book updated",
		"book_id", bookID,
		"user_id", callerID,
		"updated", len(change.Updates),
		"inserted", len(change.Inserts),
		"deleted", len(change.DeleteIDs),
	)

	s.reindexBook(book, units, change.DeleteIDs)
	s.sseManager.Emit(sse.NewEvent(callerID, sse.EventBookUpdated, sse.BookEventData{Book: book}))

	return &BookWithUnits{Book: book, Units: units}, nil
}

// ReorderBooks replaces the caller's book ordering. The submitted list must
// be a permutation of exactly the caller's book ids; any foreign or unknown
// id rejects the whole batch with no positions changed.
func (s *BookService) ReorderBooks(ctx context.Context, callerID string, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return domainerrors.Validation("ordered ids must not be empty")
	}

	owned, err := s.store.ListBooks(ctx, callerID, true)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	ownedSet := make(map[string]bool, len(owned))
	for _, b := range owned {
		ownedSet[b.ID] = true
	}

	seen := make(map[string]bool, len(orderedIDs))
	for _, bookID := range orderedIDs {
		if seen[bookID] {
			return domainerrors.Validationf("duplicate book id %q in reorder list", bookID)
		}
		seen[bookID] = true

		if ownedSet[bookID] {
			continue
		}
		// Distinguish a foreign book from a nonexistent one
		ownerID, err := s.store.OwnerOf(ctx, store.KindBook, bookID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domainerrors.NotFoundf("book %q not found", bookID)
			}
			return fmt.Errorf("resolve book owner: %w", err)
		}
		if ownerID != callerID {
			return domainerrors.Forbidden("you do not own all books in the reorder list")
		}
	}

	if len(orderedIDs) != len(owned) {
		return domainerrors.Validation("reorder list must include every book exactly once")
	}

	if err := s.store.ReorderBooks(ctx, callerID, orderedIDs); err != nil {
		return fmt.Errorf("reorder books: %w", err)
	}

	s.logger.Info("books reordered",
		"user_id", callerID,
		"count", len(orderedIDs),
	)

	s.sseManager.Emit(sse.NewEvent(callerID, sse.EventBooksReordered, sse.BooksReorderedEventData{BookIDs: orderedIDs}))

	return nil
}

// diffUnits computes the reconcile change set for a submitted unit list.
// Entries with an id must refer to units of this book; anything else is
// rejected before any write happens.
func diffUnits(bookID string, existing []*domain.Unit, submitted []UpdateUnitInput) (store.UnitReconcile, error) {
	byID := make(map[string]*domain.Unit, len(existing))
	for _, u := range existing {
		byID[u.ID] = u
	}

	var change store.UnitReconcile
	now := time.Now()
	kept := make(map[string]bool, len(submitted))

	for _, in := range submitted {
		if in.ID == "" {
			unitID, err := id.Generate("unit")
			if err != nil {
				return store.UnitReconcile{}, fmt.Errorf("generate unit ID: %w", err)
			}
			change.Inserts = append(change.Inserts, &domain.Unit{
				ID:        unitID,
				BookID:    bookID,
				Title:     in.Title,
				Number:    in.Number,
				CreatedAt: now,
				UpdatedAt: now,
			})
			continue
		}

		unit, ok := byID[in.ID]
		if !ok {
			// Either a unit of another book or a stale id; reject before writing
			return store.UnitReconcile{}, domainerrors.Forbiddenf("unit %q does not belong to this book", in.ID)
		}
		if kept[in.ID] {
			return store.UnitReconcile{}, domainerrors.Validationf("duplicate unit id %q in submitted list", in.ID)
		}
		kept[in.ID] = true

		updated := *unit
		updated.Title = in.Title
		updated.Number = in.Number
		updated.UpdatedAt = now
		change.Updates = append(change.Updates, &updated)
	}

	for _, u := range existing {
		if !kept[u.ID] {
			change.DeleteIDs = append(change.DeleteIDs, u.ID)
		}
	}

	return change, nil
}

// indexBook adds a book and its units to the search index. Indexing is
// best-effort; failures are logged and never fail the mutation.
func (s *BookService) indexBook(book *domain.Book, units []*domain.Unit) {
	docs := make([]*search.SearchDocument, 0, len(units)+1)
	docs = append(docs, search.BookToSearchDocument(book))
	for _, u := range units {
		docs = append(docs, search.UnitToSearchDocument(u, book.OwnerID, book.Title))
	}
	if err := s.searchIndex.IndexDocuments(docs); err != nil {
		s.logger.Warn("failed to index book",
			"book_id", book.ID,
			"error", err,
		)
	}
}

// reindexBook refreshes search documents after an edit, removing documents
// for deleted units.
func (s *BookService) reindexBook(book *domain.Book, units []*domain.Unit, deletedUnitIDs []string) {
	if len(deletedUnitIDs) > 0 {
		if err := s.searchIndex.DeleteDocuments(deletedUnitIDs); err != nil {
			s.logger.Warn("failed to remove deleted units from index",
				"book_id", book.ID,
				"error", err,
			)
		}
	}
	s.indexBook(book, units)
}
