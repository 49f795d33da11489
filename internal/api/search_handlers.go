package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/studylogapp/studylog-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search",
		Description: "Full-text search over the caller's book and unit titles",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search query"`
	Type          string `query:"type" enum:"book,unit," doc:"Restrict to one document type"`
	Archived      bool   `query:"archived" doc:"Include documents from archived books"`
	Limit         int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (default 20)"`
	Offset        int    `query:"offset" minimum:"0" doc:"Pagination offset"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body search.SearchResult
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	params := search.SearchParams{
		Query:           input.Query,
		IncludeArchived: input.Archived,
		Limit:           input.Limit,
		Offset:          input.Offset,
	}
	if input.Type != "" {
		params.Types = []search.DocType{search.DocType(input.Type)}
	}

	result, err := s.services.Search.Search(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}
