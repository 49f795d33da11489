package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studylogapp/studylog-server/internal/search"
	"github.com/studylogapp/studylog-server/internal/store"
)

// SearchService answers full-text queries over book and unit titles. Every
// query is scoped to the caller; documents of other users are filtered at
// the index level, not post-hoc.
type SearchService struct {
	store       store.Store
	searchIndex *search.SearchIndex
	logger      *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store store.Store, searchIndex *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:       store,
		searchIndex: searchIndex,
		logger:      logger,
	}
}

// Search runs a scoped query for the caller.
func (s *SearchService) Search(ctx context.Context, callerID string, params search.SearchParams) (*search.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params.OwnerID = callerID

	result, err := s.searchIndex.Search(params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return result, nil
}

// DocumentCount returns the number of indexed documents, for health checks.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.searchIndex.DocumentCount()
}

// ReindexUser rebuilds the caller's search documents from the store. Used
// after restoring a database or when the index falls out of sync.
func (s *SearchService) ReindexUser(ctx context.Context, callerID string) (int, error) {
	books, err := s.store.ListBooks(ctx, callerID, true)
	if err != nil {
		return 0, fmt.Errorf("list books: %w", err)
	}

	var docs []*search.SearchDocument
	for _, book := range books {
		docs = append(docs, search.BookToSearchDocument(book))

		units, err := s.store.ListUnits(ctx, book.ID)
		if err != nil {
			return 0, fmt.Errorf("list units for %s: %w", book.ID, err)
		}
		for _, unit := range units {
			docs = append(docs, search.UnitToSearchDocument(unit, book.OwnerID, book.Title))
		}
	}

	if err := s.searchIndex.IndexDocuments(docs); err != nil {
		return 0, fmt.Errorf("index documents: %w", err)
	}

	s.logger.Info("reindexed user documents",
		"user_id", callerID,
		"count", len(docs),
	)

	return len(docs), nil
}

// ReindexAll rebuilds search documents for every user. Runs on startup when
// the index came up empty but the database has data, e.g. after a mapping
// version bump forced a rebuild.
func (s *SearchService) ReindexAll(ctx context.Context) (int, error) {
	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	total := 0
	for _, userID := range userIDs {
		count, err := s.ReindexUser(ctx, userID)
		if err != nil {
			return total, err
		}
		total += count
	}
	return total, nil
}
