package interfaces

import (
	"context"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/service"
)

// The API layer depends on these interfaces rather than on the concrete
// services, so handlers can be tested against the mocks in ./mocks.

// ChatService defines the contract for chat turns and chat management.
type ChatService interface {
	HandleTurn(ctx context.Context, ownerID string, req *service.ChatRequest) (*model.TurnResult, error)
	HandleTurnStream(ctx context.Context, ownerID string, req *service.ChatRequest, events chan<- model.StreamEvent)
	AttachDocument(ctx context.Context, ownerID string, req *service.DocumentRequest) (*service.DocumentResult, error)
	ListChats(ctx context.Context, ownerID string) ([]model.ConversationSummary, error)
	GetChat(ctx context.Context, ownerID, chatID string) (*model.Conversation, error)
	RenameChat(ctx context.Context, ownerID, chatID, title string) error
	DeleteChat(ctx context.Context, ownerID, chatID string) error
}

// TaskService defines the contract for the owner's task list.
type TaskService interface {
	CreateTask(ctx context.Context, ownerID string, req *service.CreateTaskRequest) (*model.Task, error)
	ListTasks(ctx context.Context, ownerID string) ([]model.Task, error)
}

// ProviderService reports the configured provider chain.
type ProviderService interface {
	List(ctx context.Context) (*service.ProviderInfo, error)
}

var (
	_ ChatService     = (*service.ChatService)(nil)
	_ TaskService     = (*service.TaskService)(nil)
	_ ProviderService = (*service.ProviderService)(nil)
)
