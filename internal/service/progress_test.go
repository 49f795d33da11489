package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/studylogapp/studylog-server/internal/errors"
)

func TestProgressService_BookProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Latin", "Declensions")
	unitID := book.Units[0].ID

	// One completed unsplit task plus a split task with one of two parts
	// done: three countable items, two complete.
	plain := env.seedTask(t, user.ID, unitID)
	_, err := env.tasks.ToggleTask(ctx, user.ID, plain.ID, true)
	require.NoError(t, err)

	split := env.seedTask(t, user.ID, unitID)
	parts, err := env.tasks.SplitTask(ctx, user.ID, split.ID)
	require.NoError(t, err)
	_, err = env.tasks.TogglePart(ctx, user.ID, parts[0].ID, true)
	require.NoError(t, err)

	progress, err := env.progress.BookProgress(ctx, user.ID, book.Book.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, progress.Progress.Total)
	assert.Equal(t, 2, progress.Progress.Completed)
	assert.Equal(t, 67, progress.Progress.Percent)

	require.Len(t, progress.Units, 1)
	unit := progress.Units[0]
	assert.False(t, unit.Complete)
	require.Len(t, unit.Tasks, 2)
	assert.True(t, unit.Tasks[0].Completed)
	assert.False(t, unit.Tasks[1].Completed, "split task incomplete until every part is done")
}

func TestProgressService_BookProgress_EmptyBook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Untouched", "Ch 1")

	progress, err := env.progress.BookProgress(ctx, user.ID, book.Book.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, progress.Progress.Total)
	assert.Equal(t, 0, progress.Progress.Percent)
	require.Len(t, progress.Units, 1)
	assert.False(t, progress.Units[0].Complete, "an empty unit is never complete")
}

func TestProgressService_BookProgress_NotOwnedLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "alice@example.com")
	bob := env.seedUser(t, "bob@example.com")
	book := env.seedBook(t, alice.ID, "Private")

	_, err := env.progress.BookProgress(ctx, bob.ID, book.Book.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestProgressService_UnitProgress_Complete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Latin", "Declensions")
	unitID := book.Units[0].ID

	task := env.seedTask(t, user.ID, unitID)
	parts, err := env.tasks.SplitTask(ctx, user.ID, task.ID)
	require.NoError(t, err)

	progress, err := env.progress.UnitProgress(ctx, user.ID, unitID)
	require.NoError(t, err)
	assert.False(t, progress.Complete)

	for _, part := range parts {
		_, err = env.tasks.TogglePart(ctx, user.ID, part.ID, true)
		require.NoError(t, err)
	}

	progress, err = env.progress.UnitProgress(ctx, user.ID, unitID)
	require.NoError(t, err)
	assert.True(t, progress.Complete)
	assert.Equal(t, 100, progress.Progress.Percent)
	assert.True(t, progress.Tasks[0].Completed, "all parts done completes the task")
}

func TestProgressService_UnitProgress_NotOwnedLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "alice@example.com")
	bob := env.seedUser(t, "bob@example.com")
	book := env.seedBook(t, alice.ID, "Private", "Ch 1")

	_, err := env.progress.UnitProgress(ctx, bob.ID, book.Units[0].ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.progress.UnitProgress(ctx, bob.ID, "unit-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestProgressService_BookProgress_MultiUnitAggregation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Latin", "Declensions", "Conjugations")

	// Unit 1: one completed task. Unit 2: one incomplete task.
	done := env.seedTask(t, user.ID, book.Units[0].ID)
	_, err := env.tasks.ToggleTask(ctx, user.ID, done.ID, true)
	require.NoError(t, err)
	env.seedTask(t, user.ID, book.Units[1].ID)

	progress, err := env.progress.BookProgress(ctx, user.ID, book.Book.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, progress.Progress.Total)
	assert.Equal(t, 1, progress.Progress.Completed)
	assert.Equal(t, 50, progress.Progress.Percent)

	require.Len(t, progress.Units, 2)
	assert.True(t, progress.Units[0].Complete)
	assert.False(t, progress.Units[1].Complete)
}
