package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studylogapp/studylog-server/internal/search"
)

func TestSearchService_ScopedToCaller(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "alice@example.com")
	bob := env.seedUser(t, "bob@example.com")
	env.seedBook(t, alice.ID, "Organic Chemistry", "Alkanes")
	env.seedBook(t, bob.ID, "Organic Chemistry", "Alkenes")

	result, err := env.search.Search(ctx, alice.ID, search.SearchParams{Query: "chemistry"})
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	for _, hit := range result.Hits {
		assert.NotEqual(t, "Alkenes", hit.Name, "bob's documents must not leak")
	}
}

func TestSearchService_FindsUnitsWithBookTitle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Discrete Mathematics", "Graph Theory")

	result, err := env.search.Search(ctx, user.ID, search.SearchParams{Query: "graph"})
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	hit := result.Hits[0]
	assert.Equal(t, search.DocTypeUnit, hit.Type)
	assert.Equal(t, book.Book.ID, hit.BookID)
	assert.Equal(t, "Discrete Mathematics", hit.BookTitle)
}

func TestSearchService_TypeFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	env.seedBook(t, user.ID, "Calculus", "Calculus of Variations")

	result, err := env.search.Search(ctx, user.ID, search.SearchParams{
		Query: "calculus",
		Types: []search.DocType{search.DocTypeBook},
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	for _, hit := range result.Hits {
		assert.Equal(t, search.DocTypeBook, hit.Type)
	}
}

func TestSearchService_ReindexUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	env.seedBook(t, user.ID, "Calculus", "Limits", "Derivatives")

	count, err := env.search.ReindexUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "one book plus two units")
}
