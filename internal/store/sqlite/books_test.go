package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studylogapp/studylog-server/internal/domain"
	"github.com/studylogapp/studylog-server/internal/id"
	"github.com/studylogapp/studylog-server/internal/store"
)

func TestCreateBook_WithUnits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	book, units := seedBook(t, s, user.ID, "Algebra II", "Linear Equations", "Polynomials")

	retrieved, err := s.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Algebra II", retrieved.Title)
	assert.Equal(t, user.ID, retrieved.OwnerID)

	stored, err := s.ListUnits(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, units[0].ID, stored[0].ID)
	assert.Equal(t, 1, stored[0].Number)
	assert.Equal(t, 2, stored[1].Number)
}

func TestGetBook_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBook(context.Background(), "book-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListBooks_ArchivedFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	active, _ := seedBook(t, s, user.ID, "Active")
	archived, _ := seedBook(t, s, user.ID, "Archived")

	archived.Archived = true
	archived.UpdatedAt = time.Now().UTC()
	require.NoError(t, s.UpdateBook(ctx, archived))

	visible, err := s.ListBooks(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, active.ID, visible[0].ID)

	all, err := s.ListBooks(ctx, user.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListBooks_ScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	seedBook(t, s, alice.ID, "Alice's Book")
	seedBook(t, s, bob.ID, "Bob's Book")

	books, err := s.ListBooks(ctx, alice.ID, true)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Alice's Book", books[0].Title)
}

func TestReorderBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	first, _ := seedBook(t, s, user.ID, "First")
	second, _ := seedBook(t, s, user.ID, "Second")
	third, _ := seedBook(t, s, user.ID, "Third")

	err := s.ReorderBooks(ctx, user.ID, []string{third.ID, first.ID, second.ID})
	require.NoError(t, err)

	books, err := s.ListBooks(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, third.ID, books[0].ID)
	assert.Equal(t, first.ID, books[1].ID)
	assert.Equal(t, second.ID, books[2].ID)
}

func TestReorderBooks_ForeignBookRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	a1, _ := seedBook(t, s, alice.ID, "A1")
	a2, _ := seedBook(t, s, alice.ID, "A2")
	foreign, _ := seedBook(t, s, bob.ID, "B1")

	before, err := s.ListBooks(ctx, alice.ID, true)
	require.NoError(t, err)

	// Foreign id appears after a valid entry: the partial position write
	// must not survive the failed transaction.
	err = s.ReorderBooks(ctx, alice.ID, []string{a2.ID, foreign.ID, a1.ID})
	assert.ErrorIs(t, err, store.ErrNotFound)

	after, err := s.ListBooks(ctx, alice.ID, true)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Position, after[i].Position)
	}
}

func TestOwnerOf_WalksTheChain(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	book, units := seedBook(t, s, user.ID, "Chemistry", "Stoichiometry")
	task := seedTask(t, s, units[0].ID)

	part := testPart(task.ID)
	require.NoError(t, s.AddPart(ctx, part))

	for _, tc := range []struct {
		kind store.OwnerKind
		id   string
	}{
		{store.KindBook, book.ID},
		{store.KindUnit, units[0].ID},
		{store.KindTask, task.ID},
		{store.KindPart, part.ID},
	} {
		owner, err := s.OwnerOf(ctx, tc.kind, tc.id)
		require.NoError(t, err, "kind %s", tc.kind)
		assert.Equal(t, user.ID, owner, "kind %s", tc.kind)
	}
}

func TestOwnerOf_MissingEntity(t *testing.T) {
	s := newTestStore(t)

	_, err := s.OwnerOf(context.Background(), store.KindTask, "task-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReconcileUnits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	book, units := seedBook(t, s, user.ID, "History", "Antiquity", "Middle Ages")

	now := time.Now().UTC()
	keep := *units[0]
	keep.Title = "Antiquity (revised)"
	keep.UpdatedAt = now

	inserted := &domain.Unit{
		ID:        id.MustGenerate("unit"),
		BookID:    book.ID,
		Title:     "Renaissance",
		Number:    3,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.ReconcileUnits(ctx, book.ID, store.UnitReconcile{
		Updates:   []*domain.Unit{&keep},
		Inserts:   []*domain.Unit{inserted},
		DeleteIDs: []string{units[1].ID},
	})
	require.NoError(t, err)

	final, err := s.ListUnits(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, final, 2)
	assert.Equal(t, "Antiquity (revised)", final[0].Title)
	assert.Equal(t, "Renaissance", final[1].Title)
}

func TestReconcileUnits_DeleteCascadesToTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	book, units := seedBook(t, s, user.ID, "Physics", "Kinematics")
	task := seedTask(t, s, units[0].ID)
	require.NoError(t, s.AddPart(ctx, testPart(task.ID)))

	err := s.ReconcileUnits(ctx, book.ID, store.UnitReconcile{
		DeleteIDs: []string{units[0].ID},
	})
	require.NoError(t, err)

	_, err = s.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	parts, err := s.ListPartsByBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestReconcileUnits_UpdateForeignUnitFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	book, _ := seedBook(t, s, user.ID, "Book One", "U1")
	_, otherUnits := seedBook(t, s, user.ID, "Book Two", "U2")

	stray := *otherUnits[0]
	stray.Title = "hijacked"
	stray.UpdatedAt = time.Now().UTC()

	err := s.ReconcileUnits(ctx, book.ID, store.UnitReconcile{
		Updates: []*domain.Unit{&stray},
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The other book's unit is untouched.
	unit, err := s.GetUnit(ctx, otherUnits[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "U2", unit.Title)
}
