package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/studylogapp/studylog-server/internal/errors"
)

func TestTaskService_AddTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Latin", "Declensions")
	unitID := book.Units[0].ID

	first, err := env.tasks.AddTask(ctx, user.ID, unitID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Number)
	assert.False(t, first.Completed)

	second, err := env.tasks.AddTask(ctx, user.ID, unitID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Number)
}

func TestTaskService_AddTask_Authorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "alice@example.com")
	bob := env.seedUser(t, "bob@example.com")
	book := env.seedBook(t, alice.ID, "Latin", "Declensions")

	_, err := env.tasks.AddTask(ctx, bob.ID, book.Units[0].ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = env.tasks.AddTask(ctx, alice.ID, "unit-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestTaskService_RemoveTask_NumberNotReused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Latin", "Declensions")
	unitID := book.Units[0].ID

	env.seedTask(t, user.ID, unitID)
	second := env.seedTask(t, user.ID, unitID)
	env.seedTask(t, user.ID, unitID)

	require.NoError(t, env.tasks.RemoveTask(ctx, user.ID, second.ID))

	next, err := env.tasks.AddTask(ctx, user.ID, unitID)
	require.NoError(t, err)
	assert.Equal(t, 4, next.Number)
}

func TestTaskService_SplitTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Latin", "Declensions")
	task := env.seedTask(t, user.ID, book.Units[0].ID)

	parts, err := env.tasks.SplitTask(ctx, user.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "a", parts[0].Letter)
	assert.Equal(t, "b", parts[1].Letter)
	assert.False(t, parts[0].Completed)
	assert.False(t, parts[1].Completed)
}

func TestTaskService_SplitTask_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Latin", "Declensions")
	task := env.seedTask(t, user.ID, book.Units[0].ID)

	first, err := env.tasks.SplitTask(ctx, user.ID, task.ID)
	require.NoError(t, err)

	// Mark one part done, then split again: the second call must return
	// the existing parts, state intact, not fresh ones.
	_, err = env.tasks.TogglePart(ctx, user.ID, first[0].ID, true)
	require.NoError(t, err)

	second, err := env.tasks.SplitTask(ctx, user.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
	assert.True(t, second[0].Completed)
}

func TestTaskService_UndoSplit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Latin", "Declensions")
	task := env.seedTask(t, user.ID, book.Units[0].ID)

	_, err := env.tasks.SplitTask(ctx, user.ID, task.ID)
	require.NoError(t, err)

	removed, err := env.tasks.UndoSplit(ctx, user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// Undoing again is a no-op, not an error.
	removed, err = env.tasks.UndoSplit(ctx, user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestTaskService_UndoSplit_KeepsStaleFlag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Latin", "Declensions")
	task := env.seedTask(t, user.ID, book.Units[0].ID)

	// Complete the task, split it, finish neither part, then undo.
	_, err := env.tasks.ToggleTask(ctx, user.ID, task.ID, true)
	require.NoError(t, err)

	_, err = env.tasks.SplitTask(ctx, user.ID, task.ID)
	require.NoError(t, err)

	_, err = env.tasks.UndoSplit(ctx, user.ID, task.ID)
	require.NoError(t, err)

	// The flag keeps its pre-split value; undo does not recompute it.
	progress, err := env.progress.UnitProgress(ctx, user.ID, book.Units[0].ID)
	require.NoError(t, err)
	require.Len(t, progress.Tasks, 1)
	assert.True(t, progress.Tasks[0].Completed)
}

func TestTaskService_ToggleTask_OnSplitTaskIsHarmless(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Latin", "Declensions")
	task := env.seedTask(t, user.ID, book.Units[0].ID)

	_, err := env.tasks.SplitTask(ctx, user.ID, task.ID)
	require.NoError(t, err)

	// The write succeeds but progress stays part-driven.
	toggled, err := env.tasks.ToggleTask(ctx, user.ID, task.ID, true)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	progress, err := env.progress.UnitProgress(ctx, user.ID, book.Units[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.Progress.Total)
	assert.Equal(t, 0, progress.Progress.Completed)
	assert.False(t, progress.Tasks[0].Completed)
}

func TestTaskService_AddPart_Letters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, user.ID, "Latin", "Declensions")
	task := env.seedTask(t, user.ID, book.Units[0].ID)

	_, err := env.tasks.SplitTask(ctx, user.ID, task.ID)
	require.NoError(t, err)

	third, err := env.tasks.AddPart(ctx, user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "c", third.Letter)

	// Removing a middle part leaves a gap; the next letter still advances.
	require.NoError(t, env.tasks.RemovePart(ctx, user.ID, third.ID))

	next, err := env.tasks.AddPart(ctx, user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "c", next.Letter, "letter follows the current last part")
}

func TestTaskService_MutationsRequireOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "alice@example.com")
	bob := env.seedUser(t, "bob@example.com")
	book := env.seedBook(t, alice.ID, "Latin", "Declensions")
	task := env.seedTask(t, alice.ID, book.Units[0].ID)
	parts, err := env.tasks.SplitTask(ctx, alice.ID, task.ID)
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
	}{
		{"remove task", func() error { return env.tasks.RemoveTask(ctx, bob.ID, task.ID) }},
		{"split task", func() error { _, err := env.tasks.SplitTask(ctx, bob.ID, task.ID); return err }},
		{"undo split", func() error { _, err := env.tasks.UndoSplit(ctx, bob.ID, task.ID); return err }},
		{"toggle task", func() error { _, err := env.tasks.ToggleTask(ctx, bob.ID, task.ID, true); return err }},
		{"add part", func() error { _, err := env.tasks.AddPart(ctx, bob.ID, task.ID); return err }},
		{"toggle part", func() error { _, err := env.tasks.TogglePart(ctx, bob.ID, parts[0].ID, true); return err }},
		{"remove part", func() error { return env.tasks.RemovePart(ctx, bob.ID, parts[0].ID) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), domainerrors.ErrForbidden)
		})
	}

	// None of the rejected mutations changed anything.
	progress, err := env.progress.UnitProgress(ctx, alice.ID, book.Units[0].ID)
	require.NoError(t, err)
	require.Len(t, progress.Tasks, 1)
	assert.Len(t, progress.Tasks[0].Parts, 2)
	assert.Equal(t, 0, progress.Progress.Completed)
}
