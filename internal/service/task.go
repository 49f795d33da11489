package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/studylogapp/studylog-server/internal/domain"
	domainerrors "github.com/studylogapp/studylog-server/internal/errors"
	"github.com/studylogapp/studylog-server/internal/id"
	"github.com/studylogapp/studylog-server/internal/sse"
	"github.com/studylogapp/studylog-server/internal/store"
)

// TaskService is the mutation surface for tasks and parts: adding and
// removing tasks, splitting a task into lettered parts and undoing the
// split, and toggling completion flags. Every operation resolves the
// ownership chain of its target before touching anything.
type TaskService struct {
	store      store.Store
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(store store.Store, sseManager *sse.Manager, logger *slog.Logger) *TaskService {
	return &TaskService{
		store:      store,
		sseManager: sseManager,
		logger:     logger,
	}
}

// AddTask creates a new uncompleted task in the unit. The task number is the
// unit's current maximum plus one, assigned inside the insert transaction so
// numbers are never reused after deletions.
func (s *TaskService) AddTask(ctx context.Context, callerID, unitID string) (*domain.Task, error) {
	if err := s.requireOwner(ctx, store.KindUnit, unitID, callerID); err != nil {
		return nil, err
	}

	taskID, err := id.Generate("task")
	if err != nil {
		return nil, fmt.Errorf("generate task ID: %w", err)
	}

	now := time.Now()
	task := &domain.Task{
		ID:        taskID,
		UnitID:    unitID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info("task created",
		"task_id", taskID,
		"unit_id", unitID,
		"number", task.Number,
	)

	s.sseManager.Emit(sse.NewEvent(callerID, sse.EventTaskCreated, sse.TaskEventData{Task: task}))

	return task, nil
}

// RemoveTask deletes a task and all of its parts.
func (s *TaskService) RemoveTask(ctx context.Context, callerID, taskID string) error {
	if err := s.requireOwner(ctx, store.KindTask, taskID, callerID); err != nil {
		return err
	}

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}

	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.Info("task deleted",
		"task_id", taskID,
		"unit_id", task.UnitID,
	)

	s.sseManager.Emit(sse.NewEvent(callerID, sse.EventTaskDeleted, sse.TaskDeletedEventData{
		DeletedAt: time.Now(),
		TaskID:    taskID,
		UnitID:    task.UnitID,
	}))

	return nil
}

// SplitTask splits a task into parts "a" and "b", both uncompleted. A task
// that already has parts is left untouched; the existing parts are returned
// so repeated calls always observe exactly the same outcome.
func (s *TaskService) SplitTask(ctx context.Context, callerID, taskID string) ([]*domain.TaskPart, error) {
	if err := s.requireOwner(ctx, store.KindTask, taskID, callerID); err != nil {
		return nil, err
	}

	now := time.Now()
	a, err := newPart(taskID, now)
	if err != nil {
		return nil, err
	}
	b, err := newPart(taskID, now)
	if err != nil {
		return nil, err
	}

	split, err := s.store.SplitTask(ctx, taskID, a, b)
	if err != nil {
		return nil, fmt.Errorf("split task: %w", err)
	}

	if !split {
		// Lost the race or already split; report the existing parts
		return s.store.ListParts(ctx, taskID)
	}

	parts := []*domain.TaskPart{a, b}

	s.logger.Info("task split",
		"task_id", taskID,
	)

	s.sseManager.Emit(sse.NewEvent(callerID, sse.EventTaskSplit, sse.TaskSplitEventData{
		TaskID: taskID,
		Parts:  parts,
	}))

	return parts, nil
}

// UndoSplit deletes all parts of a task, returning it to flag-based
// completion. The task's own completed flag keeps whatever value it last had
// before the split; it is not restored. Returns the number of parts removed;
// zero means the task was not split, which is not an error.
func (s *TaskService) UndoSplit(ctx context.Context, callerID, taskID string) (int, error) {
	if err := s.requireOwner(ctx, store.KindTask, taskID, callerID); err != nil {
		return 0, err
	}

	removed, err := s.store.DeleteParts(ctx, taskID)
	if err != nil {
		return 0, fmt.Errorf("delete parts: %w", err)
	}

	if removed > 0 {
		s.logger.Info("task unsplit",
			"task_id", taskID,
			"removed", removed,
		)

		s.sseManager.Emit(sse.NewEvent(callerID, sse.EventTaskUnsplit, sse.TaskUnsplitEventData{
			TaskID:  taskID,
			Removed: removed,
		}))
	}

	return removed, nil
}

// ToggleTask sets a task's completed flag. While a task has parts the flag
// is ignored by progress computation, so toggling a split task is a harmless
// write rather than an error.
func (s *TaskService) ToggleTask(ctx context.Context, callerID, taskID string, completed bool) (*domain.Task, error) {
	if err := s.requireOwner(ctx, store.KindTask, taskID, callerID); err != nil {
		return nil, err
	}

	if err := s.store.SetTaskCompleted(ctx, taskID, completed); err != nil {
		return nil, fmt.Errorf("set task completed: %w", err)
	}

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	s.sseManager.Emit(sse.NewEvent(callerID, sse.EventTaskToggled, sse.TaskEventData{Task: task}))

	return task, nil
}

// AddPart appends one part to a task. The letter is the successor of the
// task's current last letter ("a" for a task with no parts), assigned inside
// the insert transaction.
func (s *TaskService) AddPart(ctx context.Context, callerID, taskID string) (*domain.TaskPart, error) {
	if err := s.requireOwner(ctx, store.KindTask, taskID, callerID); err != nil {
		return nil, err
	}

	part, err := newPart(taskID, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.store.AddPart(ctx, part); err != nil {
		return nil, fmt.Errorf("add part: %w", err)
	}

	s.logger.Info("part added",
		"part_id", part.ID,
		"task_id", taskID,
		"letter", part.Letter,
	)

	s.sseManager.Emit(sse.NewEvent(callerID, sse.EventPartAdded, sse.PartEventData{Part: part}))

	return part, nil
}

// TogglePart sets a part's completed flag.
func (s *TaskService) TogglePart(ctx context.Context, callerID, partID string, completed bool) (*domain.TaskPart, error) {
	if err := s.requireOwner(ctx, store.KindPart, partID, callerID); err != nil {
		return nil, err
	}

	if err := s.store.SetPartCompleted(ctx, partID, completed); err != nil {
		return nil, fmt.Errorf("set part completed: %w", err)
	}

	part, err := s.store.GetPart(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}

	s.sseManager.Emit(sse.NewEvent(callerID, sse.EventPartToggled, sse.PartEventData{Part: part}))

	return part, nil
}

// RemovePart deletes a single part.
func (s *TaskService) RemovePart(ctx context.Context, callerID, partID string) error {
	if err := s.requireOwner(ctx, store.KindPart, partID, callerID); err != nil {
		return err
	}

	part, err := s.store.GetPart(ctx, partID)
	if err != nil {
		return fmt.Errorf("get part: %w", err)
	}

	if err := s.store.DeletePart(ctx, partID); err != nil {
		return fmt.Errorf("delete part: %w", err)
	}

	s.logger.Info("part removed",
		"part_id", partID,
		"task_id", part.TaskID,
	)

	s.sseManager.Emit(sse.NewEvent(callerID, sse.EventPartRemoved, sse.PartRemovedEventData{
		DeletedAt: time.Now(),
		PartID:    partID,
		TaskID:    part.TaskID,
	}))

	return nil
}

// requireOwner walks the ownership chain of the entity and compares the
// owning user against the caller. A broken chain is reported as not found;
// an intact chain owned by someone else as forbidden.
func (s *TaskService) requireOwner(ctx context.Context, kind store.OwnerKind, entityID, callerID string) error {
	ownerID, err := s.store.OwnerOf(ctx, kind, entityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("%s not found", kind)
		}
		return fmt.Errorf("resolve owner: %w", err)
	}
	if ownerID != callerID {
		return domainerrors.Forbiddenf("you do not own this %s", kind)
	}
	return nil
}

// newPart builds a part record without a letter; the store assigns one.
func newPart(taskID string, now time.Time) (*domain.TaskPart, error) {
	partID, err := id.Generate("part")
	if err != nil {
		return nil, fmt.Errorf("generate part ID: %w", err)
	}
	return &domain.TaskPart{
		ID:        partID,
		TaskID:    taskID,
		CreatedAt: now,
	}, nil
}
