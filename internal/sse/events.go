// Package sse implements Server-Sent Events for real-time study progress
// updates and event broadcasting.
package sse

import (
	"time"

	"github.com/studylogapp/studylog-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventBookCreated represents a book creation event.
	EventBookCreated EventType = "book.created"
	// EventBookUpdated represents a book update event (title, archive state,
	// or unit reconciliation).
	EventBookUpdated EventType = "book.updated"
	// EventBooksReordered represents a change to the user's book ordering.
	EventBooksReordered EventType = "book.reordered"

	// EventTaskCreated represents a task creation event.
	EventTaskCreated EventType = "task.created"
	// EventTaskDeleted represents a task deletion event (parts cascade).
	EventTaskDeleted EventType = "task.deleted"
	// EventTaskToggled represents a task completion flag change.
	EventTaskToggled EventType = "task.toggled"
	// EventTaskSplit represents a task being split into parts "a" and "b".
	EventTaskSplit EventType = "task.split"
	// EventTaskUnsplit represents all parts of a task being removed.
	EventTaskUnsplit EventType = "task.unsplit"

	// EventPartAdded represents a single part being appended to a task.
	EventPartAdded EventType = "part.added"
	// EventPartToggled represents a part completion flag change.
	EventPartToggled EventType = "part.toggled"
	// EventPartRemoved represents a single part deletion.
	EventPartRemoved EventType = "part.removed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`

	// UserID filters delivery to the owning user's clients. Every StudyLog
	// event is user-scoped; an empty value means broadcast to all (heartbeats).
	UserID string `json:"-"`
}

// BookEventData is the data payload for book events.
type BookEventData struct {
	Book *domain.Book `json:"book"`
}

// BooksReorderedEventData is the data payload for reorder events.
type BooksReorderedEventData struct {
	BookIDs []string `json:"book_ids"`
}

// TaskEventData is the data payload for task events.
type TaskEventData struct {
	Task *domain.Task `json:"task"`
}

// TaskDeletedEventData is the data payload for task delete events.
type TaskDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	TaskID    string    `json:"task_id"`
	UnitID    string    `json:"unit_id"`
}

// TaskSplitEventData is the data payload for split events.
type TaskSplitEventData struct {
	TaskID string             `json:"task_id"`
	Parts  []*domain.TaskPart `json:"parts"`
}

// TaskUnsplitEventData is the data payload for undo-split events.
type TaskUnsplitEventData struct {
	TaskID  string `json:"task_id"`
	Removed int    `json:"removed"`
}

// PartEventData is the data payload for part events.
type PartEventData struct {
	Part *domain.TaskPart `json:"part"`
}

// PartRemovedEventData is the data payload for part delete events.
type PartRemovedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	PartID    string    `json:"part_id"`
	TaskID    string    `json:"task_id"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewEvent creates an event for the given user with the current timestamp.
func NewEvent(userID string, eventType EventType, data any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		UserID:    userID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Timestamp: now,
		Data:      HeartbeatEventData{ServerTime: now},
	}
}
