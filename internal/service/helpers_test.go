package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studylogapp/studylog-server/internal/auth"
	"github.com/studylogapp/studylog-server/internal/domain"
	"github.com/studylogapp/studylog-server/internal/id"
	"github.com/studylogapp/studylog-server/internal/search"
	"github.com/studylogapp/studylog-server/internal/sse"
	"github.com/studylogapp/studylog-server/internal/store/sqlite"
)

// testTokenKey is a fixed 32-byte key, hex-encoded, for token tests.
const testTokenKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type testEnv struct {
	store    *sqlite.Store
	books    *BookService
	tasks    *TaskService
	progress *ProgressService
	search   *SearchService
	sessions *SessionService
	auth     *AuthService
}

// newTestEnv wires the full service stack against throwaway storage.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	s, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	manager := sse.NewManager(logger)

	tokens, err := auth.NewTokenService(testTokenKey, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	sessions := NewSessionService(s, tokens, logger)

	return &testEnv{
		store:    s,
		books:    NewBookService(s, index, manager, logger),
		tasks:    NewTaskService(s, manager, logger),
		progress: NewProgressService(s, logger),
		search:   NewSearchService(s, index, logger),
		sessions: sessions,
		auth:     NewAuthService(s, tokens, sessions, true, logger),
	}
}

func (e *testEnv) seedUser(t *testing.T, email string) *domain.User {
	t.Helper()

	now := time.Now().UTC()
	user := &domain.User{
		ID:           id.MustGenerate("user"),
		Email:        email,
		PasswordHash: "not-a-real-hash",
		FirstName:    "Test",
		LastName:     "User",
		DisplayName:  "Test User",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) seedBook(t *testing.T, ownerID, title string, unitTitles ...string) *BookWithUnits {
	t.Helper()

	req := CreateBookRequest{Title: title}
	for i, unitTitle := range unitTitles {
		req.Units = append(req.Units, CreateUnitInput{Title: unitTitle, Number: i + 1})
	}

	book, err := e.books.CreateBook(context.Background(), ownerID, req)
	require.NoError(t, err)
	return book
}

func (e *testEnv) seedTask(t *testing.T, callerID, unitID string) *domain.Task {
	t.Helper()

	task, err := e.tasks.AddTask(context.Background(), callerID, unitID)
	require.NoError(t, err)
	return task
}
