package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/errors"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
)

// This file contains shared DTOs (Data Transfer Objects) for API responses
// and helper functions for sending consistent HTTP responses.

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OKResponse acknowledges operations that return no resource.
type OKResponse struct {
	OK bool `json:"ok"`
}

// RenameChatRequest is the DTO for the chat rename endpoint.
type RenameChatRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100" example:"Q3 planning"`
}

// ChatListResponse wraps the chat listing.
type ChatListResponse struct {
	Chats []model.ConversationSummary `json:"chats"`
}

// ChatResponse wraps a single chat.
type ChatResponse struct {
	Chat *model.Conversation `json:"chat"`
}

// TaskListResponse wraps the task listing.
type TaskListResponse struct {
	Tasks []model.Task `json:"tasks"`
}

// TaskResponse wraps a single task.
type TaskResponse struct {
	Task *model.Task `json:"task"`
}

// UploadResponse is returned when a document is stored without analysis.
type UploadResponse struct {
	OK             bool   `json:"ok"`
	ConversationID string `json:"conversationId"`
	Filename       string `json:"filename"`
	Bytes          int    `json:"bytes"`
	Chars          int    `json:"chars"`
}

// errorMappings pairs domain sentinels with the status and client message
// they produce. The first match wins.
var errorMappings = []struct {
	target  error
	status  int
	message string
}{
	{app_errors.ErrNotFound, http.StatusNotFound, "The requested chat was not found."},
	{app_errors.ErrUnauthorized, http.StatusUnauthorized, "Authentication is required."},
	{app_errors.ErrRateLimited, http.StatusTooManyRequests, "Too many requests. Please slow down."},
	{app_errors.ErrConflict, http.StatusConflict, "The request conflicts with the current state of the chat."},
	{app_errors.ErrPermission, http.StatusForbidden, "You do not have permission to perform this action."},
}

// respondWithError maps a service error to a JSON error response. Validation
// messages are written for the client and pass through; everything else is
// replaced by a fixed message and only logged.
func respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "The server could not complete the request."

	if errors.Is(err, app_errors.ErrValidation) {
		statusCode = http.StatusBadRequest
		message = err.Error()
	} else {
		for _, m := range errorMappings {
			if errors.Is(err, m.target) {
				statusCode, message = m.status, m.message
				break
			}
		}
	}

	if statusCode >= http.StatusInternalServerError {
		slog.Error("Request failed", "status_code", statusCode, "error", err)
	} else {
		slog.Warn("Request rejected", "status_code", statusCode, "client_message", message, "error", err)
	}

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON is a low-level helper for marshaling a payload to JSON
// and writing it to the http.ResponseWriter with a given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// sendStreamError ends an SSE stream with a terminal error event.
func sendStreamError(w http.ResponseWriter, message string) {
	slog.Warn("Sending stream error to client", "message", message)
	if err := writeStreamEvent(w, model.StreamEvent{Type: model.EventError, Error: message}); err != nil {
		slog.Warn("Failed to write stream error, client might have disconnected", "error", err)
	}
}

// writeStreamEvent is a generic helper to marshal data and write it to an SSE stream.
// It returns an error on write failure, which is a signal that the client has disconnected.
func writeStreamEvent(w http.ResponseWriter, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal stream data to JSON", "error", err)
		// The connection is still usable.
		return nil
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", string(jsonData)); err != nil {
		return fmt.Errorf("failed to write data to stream: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
