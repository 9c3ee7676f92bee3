package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
)

// memoryRepository is the ephemeral backend: a nested map
// owner -> conversation id -> conversation living for the process lifetime.
// It is never evicted and is meant for development and offline use only.
type memoryRepository struct {
	mu            sync.RWMutex
	conversations map[string]map[string]*model.Conversation
	tasks         map[string][]model.Task
}

// NewMemoryRepository creates an empty ephemeral store.
func NewMemoryRepository() Store {
	return &memoryRepository{
		conversations: make(map[string]map[string]*model.Conversation),
		tasks:         make(map[string][]model.Task),
	}
}

func (r *memoryRepository) Name() string { return "memory" }

// --- Conversation Operations ---

func (r *memoryRepository) LoadOrCreate(ctx context.Context, ownerID, conversationID, seedTitle string) (*model.Conversation, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	owned := r.conversations[ownerID]
	if owned == nil {
		owned = make(map[string]*model.Conversation)
		r.conversations[ownerID] = owned
	}
	if conversationID != "" {
		if conv, ok := owned[conversationID]; ok {
			return conv.Clone(), nil
		}
	}

	conv := newConversation(ownerID, seedTitle)
	owned[conv.ID] = conv.Clone()
	return conv, nil
}

func (r *memoryRepository) Append(ctx context.Context, conv *model.Conversation, entries ...model.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.conversations[conv.OwnerID][conv.ID]
	if !ok {
		return ErrNotFound
	}
	now := model.Now()
	mirror(stored, entries, now)
	mirror(conv, entries, now)
	return nil
}

func (r *memoryRepository) List(ctx context.Context, ownerID string) ([]model.ConversationSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.ConversationSummary, 0, len(r.conversations[ownerID]))
	for _, conv := range r.conversations[ownerID] {
		out = append(out, conv.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryRepository) Get(ctx context.Context, ownerID, conversationID string) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[ownerID][conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	return conv.Clone(), nil
}

func (r *memoryRepository) Rename(ctx context.Context, ownerID, conversationID, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[ownerID][conversationID]
	if !ok {
		return ErrNotFound
	}
	conv.Title = title
	conv.UpdatedAt = model.Now()
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, ownerID, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned := r.conversations[ownerID]
	if _, ok := owned[conversationID]; !ok {
		return ErrNotFound
	}
	delete(owned, conversationID)
	return nil
}

// --- Task Operations ---

func (r *memoryRepository) CreateTask(ctx context.Context, task *model.Task) error {
	if err := prepareTask(task); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.OwnerID] = append(r.tasks[task.OwnerID], *task)
	return nil
}

func (r *memoryRepository) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Task, len(r.tasks[ownerID]))
	copy(out, r.tasks[ownerID])
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
