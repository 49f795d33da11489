package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createBook creates a book over the API and returns its detail payload.
func createBook(t *testing.T, srv *Server, token, title string, unitTitles ...string) map[string]any {
	t.Helper()

	units := make([]map[string]any, 0, len(unitTitles))
	for i, ut := range unitTitles {
		units = append(units, map[string]any{"title": ut, "number": i + 1})
	}

	status, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/books", token, map[string]any{
		"title": title,
		"units": units,
	})
	require.Equal(t, http.StatusOK, status, "create book failed: %v", envelope)
	return dataField(t, envelope)
}

func TestCreateAndGetBook(t *testing.T) {
	srv := newTestServer(t)
	token := setupRoot(t, srv)

	detail := createBook(t, srv, token, "Algebra II", "Linear Equations", "Quadratics")
	book := detail["book"].(map[string]any)
	bookID := book["id"].(string)
	assert.Equal(t, "Algebra II", book["title"])

	status, envelope := doJSON(t, srv, http.MethodGet, "/api/v1/books/"+bookID, token, nil)
	require.Equal(t, http.StatusOK, status)

	data := dataField(t, envelope)
	units := data["units"].([]any)
	require.Len(t, units, 2)
	first := units[0].(map[string]any)
	assert.Equal(t, "Linear Equations", first["title"])
	assert.EqualValues(t, 1, first["number"])
}

func TestGetBookNotFound(t *testing.T) {
	srv := newTestServer(t)
	token := setupRoot(t, srv)

	status, envelope := doJSON(t, srv, http.MethodGet, "/api/v1/books/no-such-book", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", envelope["code"])
}

func TestUpdateBookReconcilesUnits(t *testing.T) {
	srv := newTestServer(t)
	token := setupRoot(t, srv)

	detail := createBook(t, srv, token, "Chemistry", "Atoms", "Bonding")
	bookID := detail["book"].(map[string]any)["id"].(string)
	units := detail["units"].([]any)
	keptID := units[0].(map[string]any)["id"].(string)

	// Rename the kept unit, drop the second, add a third.
	status, envelope := doJSON(t, srv, http.MethodPatch, "/api/v1/books/"+bookID, token, map[string]any{
		"title":    "Chemistry (2nd ed.)",
		"archived": false,
		"units": []map[string]any{
			{"id": keptID, "title": "Atomic Structure", "number": 1},
			{"title": "Stoichiometry", "number": 2},
		},
	})
	require.Equal(t, http.StatusOK, status, "update failed: %v", envelope)

	data := dataField(t, envelope)
	assert.Equal(t, "Chemistry (2nd ed.)", data["book"].(map[string]any)["title"])

	updated := data["units"].([]any)
	require.Len(t, updated, 2)
	assert.Equal(t, "Atomic Structure", updated[0].(map[string]any)["title"])
	assert.Equal(t, keptID, updated[0].(map[string]any)["id"])
	assert.Equal(t, "Stoichiometry", updated[1].(map[string]any)["title"])
}

func TestReorderBooks(t *testing.T) {
	srv := newTestServer(t)
	token := setupRoot(t, srv)

	a := createBook(t, srv, token, "Book A")["book"].(map[string]any)["id"].(string)
	b := createBook(t, srv, token, "Book B")["book"].(map[string]any)["id"].(string)
	c := createBook(t, srv, token, "Book C")["book"].(map[string]any)["id"].(string)

	status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/books/reorder", token, map[string]any{
		"book_ids": []string{c, a, b},
	})
	require.Equal(t, http.StatusOK, status)

	_, envelope := doJSON(t, srv, http.MethodGet, "/api/v1/books", token, nil)
	books := dataField(t, envelope)["books"].([]any)
	require.Len(t, books, 3)
	assert.Equal(t, "Book C", books[0].(map[string]any)["title"])
	assert.Equal(t, "Book A", books[1].(map[string]any)["title"])
	assert.Equal(t, "Book B", books[2].(map[string]any)["title"])
}

func TestReorderBooksIncompleteList(t *testing.T) {
	srv := newTestServer(t)
	token := setupRoot(t, srv)

	a := createBook(t, srv, token, "Book A")["book"].(map[string]any)["id"].(string)
	createBook(t, srv, token, "Book B")

	status, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/books/reorder", token, map[string]any{
		"book_ids": []string{a},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", envelope["code"])
}

func TestBooksAreScopedToOwner(t *testing.T) {
	srv := newTestServer(t)
	rootToken := setupRoot(t, srv)

	detail := createBook(t, srv, rootToken, "Root's Book")
	bookID := detail["book"].(map[string]any)["id"].(string)

	// Register and log in a second user.
	status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":      "bob@example.com",
		"password":   "a fine password",
		"first_name": "Bob",
		"last_name":  "Jones",
	})
	require.Equal(t, http.StatusOK, status)

	status, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "bob@example.com",
		"password": "a fine password",
	})
	require.Equal(t, http.StatusOK, status)
	bobToken := dataField(t, envelope)["access_token"].(string)

	// Another user's book reads as missing.
	status, envelope = doJSON(t, srv, http.MethodGet, "/api/v1/books/"+bookID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", envelope["code"])

	// And a mutation against it is forbidden.
	status, envelope = doJSON(t, srv, http.MethodPatch, "/api/v1/books/"+bookID, bobToken, map[string]any{
		"title":    "Hijacked",
		"archived": false,
		"units":    []map[string]any{},
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", envelope["code"])
}
