package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/studylogapp/studylog-server/internal/domain"
)

func (s *Server) registerTaskRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listUnitTasks",
		Method:      http.MethodGet,
		Path:        "/api/v1/units/{id}/tasks",
		Summary:     "List unit tasks",
		Description: "Returns the unit's tasks with their parts, ordered by number",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUnitTasks)

	huma.Register(s.api, huma.Operation{
		OperationID: "addTask",
		Method:      http.MethodPost,
		Path:        "/api/v1/units/{id}/tasks",
		Summary:     "Add task",
		Description: "Creates a new uncompleted task with the next number in the unit",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeTask",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tasks/{id}",
		Summary:     "Remove task",
		Description: "Deletes a task and all of its parts",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleTask",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tasks/{id}",
		Summary:     "Toggle task",
		Description: "Sets the task's completed flag. Ignored by progress while the task has parts.",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "splitTask",
		Method:      http.MethodPost,
		Path:        "/api/v1/tasks/{id}/split",
		Summary:     "Split task",
		Description: "Splits a task into parts \"a\" and \"b\". A task that already has parts is left unchanged.",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSplitTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "addPart",
		Method:      http.MethodPost,
		Path:        "/api/v1/tasks/{id}/parts",
		Summary:     "Add part",
		Description: "Appends one part with the next letter in the sequence",
		Tags:        []string{"Parts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddPart)

	huma.Register(s.api, huma.Operation{
		OperationID: "undoSplit",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tasks/{id}/parts",
		Summary:     "Undo split",
		Description: "Deletes all parts of a task, returning it to flag-based completion",
		Tags:        []string{"Parts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUndoSplit)

	huma.Register(s.api, huma.Operation{
		OperationID: "togglePart",
		Method:      http.MethodPatch,
		Path:        "/api/v1/parts/{id}",
		Summary:     "Toggle part",
		Description: "Sets the part's completed flag",
		Tags:        []string{"Parts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleTogglePart)

	huma.Register(s.api, huma.Operation{
		OperationID: "removePart",
		Method:      http.MethodDelete,
		Path:        "/api/v1/parts/{id}",
		Summary:     "Remove part",
		Description: "Deletes a single part",
		Tags:        []string{"Parts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemovePart)
}

// === DTOs ===

// TaskResponse contains task data in API responses.
type TaskResponse struct {
	ID        string         `json:"id" doc:"Task ID"`
	UnitID    string         `json:"unit_id" doc:"Parent unit ID"`
	Number    int            `json:"number" doc:"Task number within the unit"`
	Completed bool           `json:"completed" doc:"Completion flag (ignored while parts exist)"`
	Parts     []PartResponse `json:"parts,omitempty" doc:"Parts ordered by letter"`
	CreatedAt time.Time      `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time      `json:"updated_at" doc:"Last update time"`
}

// PartResponse contains part data in API responses.
type PartResponse struct {
	ID        string    `json:"id" doc:"Part ID"`
	TaskID    string    `json:"task_id" doc:"Parent task ID"`
	Letter    string    `json:"letter" doc:"Part letter"`
	Completed bool      `json:"completed" doc:"Completion flag"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// ListUnitTasksInput contains parameters for listing a unit's tasks.
type ListUnitTasksInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Unit ID"`
}

// ListTasksResponse contains a unit's tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks" doc:"Tasks ordered by number"`
}

// ListTasksOutput wraps the task list for Huma.
type ListTasksOutput struct {
	Body ListTasksResponse
}

// AddTaskInput contains parameters for adding a task.
type AddTaskInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Unit ID"`
}

// TaskOutput wraps a single task for Huma.
type TaskOutput struct {
	Body TaskResponse
}

// TaskIDInput identifies a task.
type TaskIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Task ID"`
}

// ToggleRequest is the request body for completion toggles.
type ToggleRequest struct {
	Completed bool `json:"completed" doc:"New completion state"`
}

// ToggleTaskInput wraps the toggle request for Huma.
type ToggleTaskInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Task ID"`
	Body          ToggleRequest
}

// SplitTaskOutput contains the task's parts after a split.
type SplitTaskOutput struct {
	Body ListPartsResponse
}

// ListPartsResponse contains a task's parts.
type ListPartsResponse struct {
	Parts []PartResponse `json:"parts" doc:"Parts ordered by letter"`
}

// PartOutput wraps a single part for Huma.
type PartOutput struct {
	Body PartResponse
}

// PartIDInput identifies a part.
type PartIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Part ID"`
}

// TogglePartInput wraps the part toggle request for Huma.
type TogglePartInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Part ID"`
	Body          ToggleRequest
}

// UndoSplitResponse reports how many parts were removed.
type UndoSplitResponse struct {
	Removed int `json:"removed" doc:"Number of parts deleted"`
}

// UndoSplitOutput wraps the undo-split response for Huma.
type UndoSplitOutput struct {
	Body UndoSplitResponse
}

// === Handlers ===

func (s *Server) handleListUnitTasks(ctx context.Context, input *ListUnitTasksInput) (*ListTasksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	unitProgress, err := s.services.Progress.UnitProgress(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	resp := ListTasksResponse{Tasks: make([]TaskResponse, 0, len(unitProgress.Tasks))}
	for _, ts := range unitProgress.Tasks {
		resp.Tasks = append(resp.Tasks, mapTaskResponse(ts.Task, ts.Parts))
	}

	return &ListTasksOutput{Body: resp}, nil
}

func (s *Server) handleAddTask(ctx context.Context, input *AddTaskInput) (*TaskOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	task, err := s.services.Task.AddTask(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &TaskOutput{Body: mapTaskResponse(task, nil)}, nil
}

func (s *Server) handleRemoveTask(ctx context.Context, input *TaskIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Task.RemoveTask(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Task removed"}}, nil
}

func (s *Server) handleToggleTask(ctx context.Context, input *ToggleTaskInput) (*TaskOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	task, err := s.services.Task.ToggleTask(ctx, userID, input.ID, input.Body.Completed)
	if err != nil {
		return nil, err
	}

	return &TaskOutput{Body: mapTaskResponse(task, nil)}, nil
}

func (s *Server) handleSplitTask(ctx context.Context, input *TaskIDInput) (*SplitTaskOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	parts, err := s.services.Task.SplitTask(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &SplitTaskOutput{Body: mapPartsResponse(parts)}, nil
}

func (s *Server) handleAddPart(ctx context.Context, input *TaskIDInput) (*PartOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	part, err := s.services.Task.AddPart(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &PartOutput{Body: mapPartResponse(part)}, nil
}

func (s *Server) handleUndoSplit(ctx context.Context, input *TaskIDInput) (*UndoSplitOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	removed, err := s.services.Task.UndoSplit(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &UndoSplitOutput{Body: UndoSplitResponse{Removed: removed}}, nil
}

func (s *Server) handleTogglePart(ctx context.Context, input *TogglePartInput) (*PartOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	part, err := s.services.Task.TogglePart(ctx, userID, input.ID, input.Body.Completed)
	if err != nil {
		return nil, err
	}

	return &PartOutput{Body: mapPartResponse(part)}, nil
}

func (s *Server) handleRemovePart(ctx context.Context, input *PartIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Task.RemovePart(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Part removed"}}, nil
}

// === Helpers ===

func mapTaskResponse(task *domain.Task, parts []*domain.TaskPart) TaskResponse {
	resp := TaskResponse{
		ID:        task.ID,
		UnitID:    task.UnitID,
		Number:    task.Number,
		Completed: task.Completed,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
	for _, part := range parts {
		resp.Parts = append(resp.Parts, mapPartResponse(part))
	}
	return resp
}

func mapPartResponse(part *domain.TaskPart) PartResponse {
	return PartResponse{
		ID:        part.ID,
		TaskID:    part.TaskID,
		Letter:    part.Letter,
		Completed: part.Completed,
		CreatedAt: part.CreatedAt,
	}
}

func mapPartsResponse(parts []*domain.TaskPart) ListPartsResponse {
	resp := ListPartsResponse{Parts: make([]PartResponse, 0, len(parts))}
	for _, part := range parts {
		resp.Parts = append(resp.Parts, mapPartResponse(part))
	}
	return resp
}
