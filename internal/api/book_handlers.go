package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/studylogapp/studylog-server/internal/domain"
	"github.com/studylogapp/studylog-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the caller's books ordered by position",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Creates a new book with optional initial units",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "reorderBooks",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/reorder",
		Summary:     "Reorder books",
		Description: "Replaces the caller's book ordering. The list must contain every book exactly once.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReorderBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its units",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Updates title and archive state and reconciles the unit list: entries with an id update in place, entries without one insert, and stored units missing from the list are deleted with their tasks and parts.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookProgress",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/progress",
		Summary:     "Get book progress",
		Description: "Returns the full hierarchy with completion counts and percentages at every level",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBookProgress)
}

// === DTOs ===

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
	Archived      bool   `query:"archived" doc:"Include archived books"`
}

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID        string    `json:"id" doc:"Book ID"`
	Title     string    `json:"title" doc:"Book title"`
	Archived  bool      `json:"archived" doc:"Whether the book is archived"`
	Position  int       `json:"position" doc:"Position in the user's ordering"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// UnitResponse contains unit data in API responses.
type UnitResponse struct {
	ID        string    `json:"id" doc:"Unit ID"`
	Title     string    `json:"title" doc:"Unit title"`
	Number    int       `json:"number" doc:"Unit number"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListBooksResponse contains a list of books.
type ListBooksResponse struct {
	Books []BookResponse `json:"books" doc:"List of books"`
}

// ListBooksOutput wraps the list books response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title    string           `json:"title" validate:"required,min=1,max=300" doc:"Book title"`
	Archived bool             `json:"archived,omitempty" doc:"Create in archived state"`
	Units    []UnitEntryInput `json:"units,omitempty" doc:"Initial units"`
}

// UnitEntryInput describes one unit in a create or update request. The ID is
// only meaningful on update.
type UnitEntryInput struct {
	ID     string `json:"id,omitempty" doc:"Unit ID (update an existing unit); omit to create"`
	Title  string `json:"title" validate:"required,min=1,max=300" doc:"Unit title"`
	Number int    `json:"number" validate:"gte=0" doc:"Unit number"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateBookRequest
}

// BookDetailResponse contains a book with its units.
type BookDetailResponse struct {
	Book  BookResponse   `json:"book" doc:"Book"`
	Units []UnitResponse `json:"units" doc:"Units ordered by number"`
}

// BookDetailOutput wraps the book detail response for Huma.
type BookDetailOutput struct {
	Body BookDetailResponse
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// UpdateBookRequest is the request body for a book edit.
type UpdateBookRequest struct {
	Title    string           `json:"title" validate:"required,min=1,max=300" doc:"Book title"`
	Archived bool             `json:"archived" doc:"Archive state"`
	Units    []UnitEntryInput `json:"units" doc:"Full unit list to reconcile against"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpdateBookRequest
}

// ReorderBooksRequest is the request body for a reorder.
type ReorderBooksRequest struct {
	BookIDs []string `json:"book_ids" validate:"required,min=1" doc:"All book IDs in the desired order"`
}

// ReorderBooksInput wraps the reorder request for Huma.
type ReorderBooksInput struct {
	Authorization string `header:"Authorization"`
	Body          ReorderBooksRequest
}

// GetBookProgressInput contains parameters for the progress query.
type GetBookProgressInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// BookProgressOutput wraps the progress hierarchy for Huma.
type BookProgressOutput struct {
	Body service.BookProgress
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListBooks(ctx, userID, input.Archived)
	if err != nil {
		return nil, err
	}

	resp := ListBooksResponse{Books: make([]BookResponse, 0, len(books))}
	for _, book := range books {
		resp.Books = append(resp.Books, mapBookResponse(book))
	}

	return &ListBooksOutput{Body: resp}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookDetailOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req := service.CreateBookRequest{
		Title:    input.Body.Title,
		Archived: input.Body.Archived,
	}
	for _, u := range input.Body.Units {
		req.Units = append(req.Units, service.CreateUnitInput{
			Title:  u.Title,
			Number: u.Number,
		})
	}

	result, err := s.services.Book.CreateBook(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	return &BookDetailOutput{Body: mapBookDetail(result)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookDetailOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Book.GetBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookDetailOutput{Body: mapBookDetail(result)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookDetailOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req := service.UpdateBookRequest{
		Title:    input.Body.Title,
		Archived: input.Body.Archived,
	}
	for _, u := range input.Body.Units {
		req.Units = append(req.Units, service.UpdateUnitInput{
			ID:     u.ID,
			Title:  u.Title,
			Number: u.Number,
		})
	}

	result, err := s.services.Book.UpdateBook(ctx, userID, input.ID, req)
	if err != nil {
		return nil, err
	}

	return &BookDetailOutput{Body: mapBookDetail(result)}, nil
}

func (s *Server) handleReorderBooks(ctx context.Context, input *ReorderBooksInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.ReorderBooks(ctx, userID, input.Body.BookIDs); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Books reordered"}}, nil
}

func (s *Server) handleGetBookProgress(ctx context.Context, input *GetBookProgressInput) (*BookProgressOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	progress, err := s.services.Progress.BookProgress(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookProgressOutput{Body: *progress}, nil
}

// === Helpers ===

func mapBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:        book.ID,
		Title:     book.Title,
		Archived:  book.Archived,
		Position:  book.Position,
		CreatedAt: book.CreatedAt,
		UpdatedAt: book.UpdatedAt,
	}
}

func mapUnitResponse(unit *domain.Unit) UnitResponse {
	return UnitResponse{
		ID:        unit.ID,
		Title:     unit.Title,
		Number:    unit.Number,
		CreatedAt: unit.CreatedAt,
		UpdatedAt: unit.UpdatedAt,
	}
}

func mapBookDetail(result *service.BookWithUnits) BookDetailResponse {
	resp := BookDetailResponse{
		Book:  mapBookResponse(result.Book),
		Units: make([]UnitResponse, 0, len(result.Units)),
	}
	for _, unit := range result.Units {
		resp.Units = append(resp.Units, mapUnitResponse(unit))
	}
	return resp
}
