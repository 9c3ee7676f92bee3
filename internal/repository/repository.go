package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
)

// ConversationStore persists conversations. Every backend must behave
// identically for every method: the service layer never knows which one
// was selected at startup.
type ConversationStore interface {
	// LoadOrCreate returns the conversation identified by conversationID when
	// it exists under ownerID; otherwise it creates and persists a new one
	// titled seedTitle. It fails only on storage errors.
	LoadOrCreate(ctx context.Context, ownerID, conversationID, seedTitle string) (*model.Conversation, error)
	// Append persists entries at the end of conv and mirrors them into conv.
	Append(ctx context.Context, conv *model.Conversation, entries ...model.Entry) error
	// List returns the owner's conversations, most recently updated first.
	List(ctx context.Context, ownerID string) ([]model.ConversationSummary, error)
	Get(ctx context.Context, ownerID, conversationID string) (*model.Conversation, error)
	Rename(ctx context.Context, ownerID, conversationID, title string) error
	Delete(ctx context.Context, ownerID, conversationID string) error
}

// TaskStore persists the owner's task list.
type TaskStore interface {
	CreateTask(ctx context.Context, task *model.Task) error
	// ListTasks returns the owner's tasks, newest first.
	ListTasks(ctx context.Context, ownerID string) ([]model.Task, error)
}

// Store is a complete storage backend.
type Store interface {
	ConversationStore
	TaskStore
	// Name identifies the backend, e.g. "memory" or "sqlite".
	Name() string
}

func newConversation(ownerID, title string) *model.Conversation {
	now := model.Now()
	return &model.Conversation{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Messages:  []model.Entry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// prepareTask fills in the defaults every backend applies before insertion.
func prepareTask(task *model.Task) error {
	if task.OwnerID == "" {
		return ErrOwnerRequired
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = model.TaskOpen
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = model.Now()
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}
	return nil
}

// mirror applies a successful append to the caller's working copy.
func mirror(conv *model.Conversation, entries []model.Entry, updatedAt time.Time) {
	conv.Messages = append(conv.Messages, entries...)
	conv.UpdatedAt = updatedAt
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
