package domain

import "time"

// Book represents a textbook (or similar source of homework) owned by one user.
// Books are never hard-deleted; archiving hides them from the default listing.
type Book struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Archived  bool      `json:"archived"`
	Position  int       `json:"position"` // user-customizable ordering
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Unit represents a numbered chapter or section within a book.
// Unit numbers are caller-assigned and may start anywhere; duplicates
// within a book are allowed.
type Unit struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Title     string    `json:"title"`
	Number    int       `json:"number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UnitInput describes a unit in a reconcile request. An entry with an ID
// updates the existing unit in place; an entry without one creates a new
// unit. Existing units omitted from the submitted list are deleted along
// with their tasks and parts.
type UnitInput struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Number int    `json:"number"`
}
