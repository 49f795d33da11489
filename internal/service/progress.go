package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/studylogapp/studylog-server/internal/domain"
	domainerrors "github.com/studylogapp/studylog-server/internal/errors"
	"github.com/studylogapp/studylog-server/internal/store"
)

// ProgressService computes completion aggregates bottom-up over a book's
// hierarchy: part to task, task to unit, unit to book. It is read-only and
// derives everything from a fresh fetch, so concurrent callers are safe.
type ProgressService struct {
	store  store.Store
	logger *slog.Logger
}

// NewProgressService creates a new progress service.
func NewProgressService(store store.Store, logger *slog.Logger) *ProgressService {
	return &ProgressService{
		store:  store,
		logger: logger,
	}
}

// TaskStatus is a task with its parts and derived completion state.
type TaskStatus struct {
	Task      *domain.Task       `json:"task"`
	Parts     []*domain.TaskPart `json:"parts,omitempty"`
	Completed bool               `json:"completed"`
}

// UnitProgress is a unit with its tasks and accumulated counts. Complete is
// true only when the unit has at least one countable item and all of them
// are done; an empty unit is never "complete".
type UnitProgress struct {
	Unit     *domain.Unit    `json:"unit"`
	Tasks    []TaskStatus    `json:"tasks"`
	Progress domain.Progress `json:"progress"`
	Complete bool            `json:"complete"`
}

// BookProgress is the full hierarchy with aggregates at every level.
type BookProgress struct {
	Book     *domain.Book    `json:"book"`
	Units    []UnitProgress  `json:"units"`
	Progress domain.Progress `json:"progress"`
}

// BookProgress computes the progress hierarchy for one of the caller's
// books. A book that does not exist or is not owned is reported as not
// found.
func (s *ProgressService) BookProgress(ctx context.Context, callerID, bookID string) (*BookProgress, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.OwnerID != callerID {
		return nil, domainerrors.NotFound("book not found")
	}

	units, err := s.store.ListUnits(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	tasks, err := s.store.ListTasksByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	parts, err := s.store.ListPartsByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}

	return aggregate(book, units, tasks, parts), nil
}

// UnitProgress computes the progress of a single unit of one of the
// caller's books.
func (s *ProgressService) UnitProgress(ctx context.Context, callerID, unitID string) (*UnitProgress, error) {
	ownerID, err := s.store.OwnerOf(ctx, store.KindUnit, unitID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("unit not found")
		}
		return nil, fmt.Errorf("resolve unit owner: %w", err)
	}
	if ownerID != callerID {
		return nil, domainerrors.NotFound("unit not found")
	}

	unit, err := s.store.GetUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("get unit: %w", err)
	}
	tasks, err := s.store.ListTasks(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	parts, err := s.store.ListPartsByUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}

	up := aggregateUnit(unit, tasks, groupParts(parts))
	return &up, nil
}

// aggregate builds the full progress hierarchy. Pure over its inputs.
func aggregate(book *domain.Book, units []*domain.Unit, tasks []*domain.Task, parts []*domain.TaskPart) *BookProgress {
	partsByTask := groupParts(parts)

	tasksByUnit := make(map[string][]*domain.Task, len(units))
	for _, task := range tasks {
		tasksByUnit[task.UnitID] = append(tasksByUnit[task.UnitID], task)
	}

	result := &BookProgress{
		Book:  book,
		Units: make([]UnitProgress, 0, len(units)),
	}

	var total domain.Progress
	for _, unit := range units {
		up := aggregateUnit(unit, tasksByUnit[unit.ID], partsByTask)
		total = total.Merge(up.Progress)
		result.Units = append(result.Units, up)
	}
	result.Progress = total

	return result
}

// aggregateUnit accumulates one unit's counts from its tasks.
func aggregateUnit(unit *domain.Unit, tasks []*domain.Task, partsByTask map[string][]*domain.TaskPart) UnitProgress {
	up := UnitProgress{
		Unit:  unit,
		Tasks: make([]TaskStatus, 0, len(tasks)),
	}

	var progress domain.Progress
	for _, task := range tasks {
		taskParts := partsByTask[task.ID]
		progress = progress.Merge(domain.TaskProgress(*task, derefParts(taskParts)))
		up.Tasks = append(up.Tasks, TaskStatus{
			Task:      task,
			Parts:     taskParts,
			Completed: domain.EffectiveCompleted(*task, derefParts(taskParts)),
		})
	}

	up.Progress = progress
	up.Complete = progress.Total > 0 && progress.Completed == progress.Total

	return up
}

func groupParts(parts []*domain.TaskPart) map[string][]*domain.TaskPart {
	byTask := make(map[string][]*domain.TaskPart)
	for _, part := range parts {
		byTask[part.TaskID] = append(byTask[part.TaskID], part)
	}
	return byTask
}

func derefParts(parts []*domain.TaskPart) []domain.TaskPart {
	out := make([]domain.TaskPart, 0, len(parts))
	for _, p := range parts {
		out = append(out, *p)
	}
	return out
}
