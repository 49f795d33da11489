// Package search provides full-text search over book and unit titles using
// Bleve. Every document carries its owner's ID so queries can be scoped to
// one user.
package search

import (
	"github.com/studylogapp/studylog-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeBook DocType = "book"
	DocTypeUnit DocType = "unit"
)

// SearchDocument is the unified document structure for the Bleve index.
// Books and units are indexed together with type discrimination; unit
// documents denormalize their book's title so a unit hit is renderable
// without a follow-up lookup.
type SearchDocument struct {
	// Identity
	ID      string  `json:"id"`       // Original entity ID (book-xxx, unit-xxx)
	Type    DocType `json:"type"`     // Discriminator for result grouping
	OwnerID string  `json:"owner_id"` // Owning user, used for query scoping

	// Primary searchable text: book title or unit title.
	Name string `json:"name"`

	// Unit-specific fields (empty for books)
	BookID    string `json:"book_id,omitempty"`
	BookTitle string `json:"book_title,omitempty"` // Denormalized for display
	Number    int    `json:"number,omitempty"`

	// Book-specific fields
	Archived bool `json:"archived,omitempty"`

	// Timestamps for sorting
	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"owner_id":   d.OwnerID,
		"name":       d.Name,
		"archived":   d.Archived,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.BookID != "" {
		m["book_id"] = d.BookID
	}
	if d.BookTitle != "" {
		m["book_title"] = d.BookTitle
	}
	if d.Number > 0 {
		m["number"] = d.Number
	}

	return m
}

// BookToSearchDocument converts a domain Book to a SearchDocument.
func BookToSearchDocument(book *domain.Book) *SearchDocument {
	return &SearchDocument{
		ID:        book.ID,
		Type:      DocTypeBook,
		OwnerID:   book.OwnerID,
		Name:      book.Title,
		Archived:  book.Archived,
		CreatedAt: book.CreatedAt.UnixMilli(),
		UpdatedAt: book.UpdatedAt.UnixMilli(),
	}
}

// UnitToSearchDocument converts a domain Unit to a SearchDocument.
// The owner and book title are provided by the caller, as the search
// package shouldn't depend on store.
func UnitToSearchDocument(unit *domain.Unit, ownerID, bookTitle string) *SearchDocument {
	return &SearchDocument{
		ID:        unit.ID,
		Type:      DocTypeUnit,
		OwnerID:   ownerID,
		Name:      unit.Title,
		BookID:    unit.BookID,
		BookTitle: bookTitle,
		Number:    unit.Number,
		CreatedAt: unit.CreatedAt.UnixMilli(),
		UpdatedAt: unit.UpdatedAt.UnixMilli(),
	}
}
