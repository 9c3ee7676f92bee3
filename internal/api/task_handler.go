package api

import (
	"net/http"
	"strings"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/interfaces"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/service"
)

// TaskHandler serves the caller's task list.
type TaskHandler struct {
	service interfaces.TaskService
}

func NewTaskHandler(svc interfaces.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// GetTasks godoc
// @Summary      List tasks
// @Description  Lists the caller's tasks, newest first.
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  TaskListResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /v1/tasks [get]
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	tasks, err := h.service.ListTasks(r.Context(), ownerID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	respondWithJSON(w, http.StatusOK, TaskListResponse{Tasks: tasks})
}

// CreateTask godoc
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        taskRequest  body      service.CreateTaskRequest  true  "Task"
// @Success      201          {object}  TaskResponse
// @Failure      400          {object}  ErrorResponse
// @Router       /v1/tasks [post]
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req service.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	task, err := h.service.CreateTask(r.Context(), ownerID, &req)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, TaskResponse{Task: task})
}
