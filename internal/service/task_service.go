package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	app_errors "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/errors"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/repository"
)

// CreateTaskRequest is the DTO for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=200" example:"Call the supplier"`
	Description string `json:"description,omitempty" validate:"max=2000" example:"Ask about Q3 pricing"`
}

// TaskService manages the owner's task list.
type TaskService struct {
	store repository.TaskStore
}

func NewTaskService(store repository.TaskStore) *TaskService {
	return &TaskService{store: store}
}

// CreateTask stores a new open task for ownerID.
func (s *TaskService) CreateTask(ctx context.Context, ownerID string, req *CreateTaskRequest) (*model.Task, error) {
	title := strings.TrimSpace(req.Title)
	if len([]rune(title)) < 2 {
		return nil, fmt.Errorf("%w: title must be at least 2 characters", app_errors.ErrValidation)
	}
	task := &model.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Status:      model.TaskOpen,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, storeError(err, "could not create task")
	}
	slog.Info("Task created", "task_id", task.ID, "owner_id", ownerID)
	return task, nil
}

// ListTasks returns the owner's tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	tasks, err := s.store.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, "could not list tasks")
	}
	return tasks, nil
}
