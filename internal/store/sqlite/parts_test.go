package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studylogapp/studylog-server/internal/store"
)

func TestSplitTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	_, units := seedBook(t, s, user.ID, "Greek", "Alphabet")
	task := seedTask(t, s, units[0].ID)

	split, err := s.SplitTask(ctx, task.ID, testPart(task.ID), testPart(task.ID))
	require.NoError(t, err)
	assert.True(t, split)

	parts, err := s.ListParts(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "a", parts[0].Letter)
	assert.Equal(t, "b", parts[1].Letter)
	assert.False(t, parts[0].Completed)
	assert.False(t, parts[1].Completed)
}

func TestSplitTask_SecondSplitIsNoOp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	_, units := seedBook(t, s, user.ID, "Greek", "Alphabet")
	task := seedTask(t, s, units[0].ID)

	split, err := s.SplitTask(ctx, task.ID, testPart(task.ID), testPart(task.ID))
	require.NoError(t, err)
	require.True(t, split)

	split, err = s.SplitTask(ctx, task.ID, testPart(task.ID), testPart(task.ID))
	require.NoError(t, err)
	assert.False(t, split)

	parts, err := s.ListParts(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, parts, 2, "repeat split must not add parts")
}

func TestSplitTask_MissingTask(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SplitTask(context.Background(), "task-missing",
		testPart("task-missing"), testPart("task-missing"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddPart_AssignsNextLetter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	_, units := seedBook(t, s, user.ID, "Greek", "Alphabet")
	task := seedTask(t, s, units[0].ID)

	want := []string{"a", "b", "c", "d"}
	for _, letter := range want {
		part := testPart(task.ID)
		require.NoError(t, s.AddPart(ctx, part))
		assert.Equal(t, letter, part.Letter)
	}
}

func TestAddPart_LetterRollsOverPastZ(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	_, units := seedBook(t, s, user.ID, "Greek", "Alphabet")
	task := seedTask(t, s, units[0].ID)

	var last string
	for i := 0; i < 28; i++ {
		part := testPart(task.ID)
		require.NoError(t, s.AddPart(ctx, part))
		last = part.Letter
	}
	assert.Equal(t, "ab", last)

	// Listing preserves sequence order: "z" comes before "aa".
	parts, err := s.ListParts(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, parts, 28)
	assert.Equal(t, "z", parts[25].Letter)
	assert.Equal(t, "aa", parts[26].Letter)
	assert.Equal(t, "ab", parts[27].Letter)
}

func TestAddPart_MissingTask(t *testing.T) {
	s := newTestStore(t)

	err := s.AddPart(context.Background(), testPart("task-missing"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetPartCompleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	_, units := seedBook(t, s, user.ID, "Greek", "Alphabet")
	task := seedTask(t, s, units[0].ID)

	part := testPart(task.ID)
	require.NoError(t, s.AddPart(ctx, part))

	require.NoError(t, s.SetPartCompleted(ctx, part.ID, true))

	got, err := s.GetPart(ctx, part.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestDeleteParts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	_, units := seedBook(t, s, user.ID, "Greek", "Alphabet")
	task := seedTask(t, s, units[0].ID)

	split, err := s.SplitTask(ctx, task.ID, testPart(task.ID), testPart(task.ID))
	require.NoError(t, err)
	require.True(t, split)

	removed, err := s.DeleteParts(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// Deleting parts of an unsplit task removes nothing and is not an error.
	removed, err = s.DeleteParts(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestDeleteParts_DoesNotTouchTaskFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	_, units := seedBook(t, s, user.ID, "Greek", "Alphabet")
	task := seedTask(t, s, units[0].ID)

	require.NoError(t, s.SetTaskCompleted(ctx, task.ID, true))

	split, err := s.SplitTask(ctx, task.ID, testPart(task.ID), testPart(task.ID))
	require.NoError(t, err)
	require.True(t, split)

	_, err = s.DeleteParts(ctx, task.ID)
	require.NoError(t, err)

	// The pre-split flag survives the round trip untouched.
	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestListPartsByUnit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "reader@example.com")
	_, units := seedBook(t, s, user.ID, "Greek", "Alphabet", "Accents")
	first := seedTask(t, s, units[0].ID)
	other := seedTask(t, s, units[1].ID)

	require.NoError(t, s.AddPart(ctx, testPart(first.ID)))
	require.NoError(t, s.AddPart(ctx, testPart(first.ID)))
	require.NoError(t, s.AddPart(ctx, testPart(other.ID)))

	parts, err := s.ListPartsByUnit(ctx, units[0].ID)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	for _, part := range parts {
		assert.Equal(t, first.ID, part.TaskID)
	}
}
