package model

import (
	"time"
	"unicode/utf8"
)

// Role identifies the author of a conversation entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// TitleMaxRunes bounds titles derived from the first message of a conversation.
const TitleMaxRunes = 60

// Entry is a single message in a conversation. Entries are append-only.
type Entry struct {
	Role      Role      `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	ToolName  string    `json:"toolName,omitempty" bson:"toolName,omitempty"`
}

// Conversation is an owned, ordered sequence of entries.
type Conversation struct {
	ID        string    `json:"id" bson:"_id"`
	OwnerID   string    `json:"ownerId" bson:"ownerId"`
	Title     string    `json:"title" bson:"title"`
	Messages  []Entry   `json:"messages" bson:"messages"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate the working history freely.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Messages = make([]Entry, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return &cp
}

// Summary returns the listing view of the conversation.
func (c *Conversation) Summary() ConversationSummary {
	return ConversationSummary{ID: c.ID, Title: c.Title, UpdatedAt: c.UpdatedAt}
}

// ConversationSummary is the listing view of a conversation.
type ConversationSummary struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ToolObservation is the transient output of an external tool.
type ToolObservation struct {
	ToolName string `json:"toolName"`
	Content  string `json:"content"`
}

// TurnResult is returned by a buffered chat turn.
type TurnResult struct {
	ConversationID string            `json:"conversationId"`
	Messages       []Entry           `json:"messages"`
	ToolResults    []ToolObservation `json:"toolResults"`
	Citations      []string          `json:"citations"`
}

// Stream event types.
const (
	EventDelta = "delta"
	EventDone  = "done"
	EventError = "error"
)

// StreamEvent is a single server-sent event of a streamed chat turn.
type StreamEvent struct {
	Type           string   `json:"type"`
	Chunk          string   `json:"chunk,omitempty"`
	ConversationID string   `json:"conversationId,omitempty"`
	Citations      []string `json:"citations,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Terminal reports whether the event ends a stream.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskOpen       TaskStatus = "open"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Task is a lightweight to-do item owned by a user.
type Task struct {
	ID          string     `json:"id" bson:"_id"`
	OwnerID     string     `json:"ownerId" bson:"ownerId"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Status      TaskStatus `json:"status" bson:"status"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Now returns the current UTC time truncated to milliseconds. Every backend
// stores at least millisecond precision, so timestamps round-trip unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Truncate shortens a string to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// TitleFrom derives a conversation title from its first message.
func TitleFrom(s string) string {
	return Truncate(s, TitleMaxRunes)
}
