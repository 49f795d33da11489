package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams defines the parameters for a search query.
type SearchParams struct {
	Query           string    // The search query string
	OwnerID         string    // Scope results to this owner (required)
	Types           []DocType // Filter by document types (empty = all types)
	IncludeArchived bool      // Include documents from archived books
	Limit           int       // Maximum results (default 20, max 100)
	Offset          int       // Pagination offset
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID        string   `json:"id"`
	Type      DocType  `json:"type"`
	Score     float64  `json:"score"`
	Name      string   `json:"name"`
	BookID    string   `json:"bookId,omitempty"`
	BookTitle string   `json:"bookTitle,omitempty"`
	Number    int      `json:"number,omitempty"`
	Fragments []string `json:"fragments,omitempty"` // Highlighted snippets
}

// SearchResult contains search results and metadata.
type SearchResult struct {
	Hits     []SearchHit `json:"hits"`
	Total    uint64      `json:"total"`
	MaxScore float64     `json:"maxScore"`
	Took     int64       `json:"tookMs"` // Search duration in milliseconds
}

// Search performs a full-text search scoped to a single owner.
func (s *SearchIndex) Search(params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.OwnerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	searchRequest.Fields = []string{"id", "type", "name", "book_id", "book_title", "number"}
	searchRequest.Highlight = bleve.NewHighlightWithStyle("html")
	searchRequest.Highlight.AddField("name")

	searchResult, err := s.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	result := &SearchResult{
		Hits:     make([]SearchHit, 0, len(searchResult.Hits)),
		Total:    searchResult.Total,
		MaxScore: searchResult.MaxScore,
		Took:     searchResult.Took.Milliseconds(),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = DocType(t)
		}
		if name, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = name
		}
		if bookID, ok := hit.Fields["book_id"].(string); ok {
			searchHit.BookID = bookID
		}
		if bookTitle, ok := hit.Fields["book_title"].(string); ok {
			searchHit.BookTitle = bookTitle
		}
		if number, ok := hit.Fields["number"].(float64); ok {
			searchHit.Number = int(number)
		}

		if fragments, ok := hit.Fragments["name"]; ok {
			searchHit.Fragments = fragments
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from search parameters.
// Every query is conjoined with an exact-match filter on owner_id so one
// user's documents never surface in another user's results.
func buildSearchQuery(params SearchParams) query.Query {
	conjuncts := []query.Query{}

	ownerQuery := bleve.NewTermQuery(params.OwnerID)
	ownerQuery.SetField("owner_id")
	conjuncts = append(conjuncts, ownerQuery)

	if params.Query != "" {
		// Match query with fuzziness for typo tolerance
		matchQuery := bleve.NewMatchQuery(params.Query)
		matchQuery.SetField("name")
		matchQuery.SetBoost(3.0)

		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetBoost(0.8)

		prefixQuery := bleve.NewPrefixQuery(params.Query)
		prefixQuery.SetField("name")
		prefixQuery.SetBoost(0.5)

		bookTitleQuery := bleve.NewMatchQuery(params.Query)
		bookTitleQuery.SetField("book_title")
		bookTitleQuery.SetBoost(1.5)

		conjuncts = append(conjuncts, bleve.NewDisjunctionQuery(matchQuery, fuzzyQuery, prefixQuery, bookTitleQuery))
	} else {
		conjuncts = append(conjuncts, bleve.NewMatchAllQuery())
	}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, 0, len(params.Types))
		for _, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			typeQueries = append(typeQueries, tq)
		}
		conjuncts = append(conjuncts, bleve.NewDisjunctionQuery(typeQueries...))
	}

	if !params.IncludeArchived {
		notArchived := bleve.NewBoolFieldQuery(false)
		notArchived.SetField("archived")
		conjuncts = append(conjuncts, notArchived)
	}

	return bleve.NewConjunctionQuery(conjuncts...)
}
