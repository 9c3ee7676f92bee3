package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	app_errors "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/errors"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/extract"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/interfaces"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/service"
)

// analyzeDisabled matches the upload form values that turn analysis off.
var analyzeDisabled = regexp.MustCompile(`(?i)^(0|false|no)$`)

const streamGenericError = "The assistant could not complete this reply."

var (
	errBadUploadForm    = fmt.Errorf("%w: the upload must be a multipart form with a file field", app_errors.ErrValidation)
	errUnreadableUpload = fmt.Errorf("%w: the uploaded file could not be read", app_errors.ErrValidation)
)

// ChatHandler serves chat turns, chat management and document uploads.
type ChatHandler struct {
	chatService    interfaces.ChatService
	uploadMaxBytes int64
}

func NewChatHandler(chatSvc interfaces.ChatService, uploadMaxBytes int64) *ChatHandler {
	return &ChatHandler{chatService: chatSvc, uploadMaxBytes: uploadMaxBytes}
}

// HandleChat godoc
// @Summary      Send a chat message
// @Description  Runs one buffered turn and returns the stored conversation. A missing or unknown conversationId starts a new conversation.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        chatRequest  body      service.ChatRequest  true  "Message"
// @Success      200          {object}  model.TurnResult
// @Failure      400          {object}  ErrorResponse
// @Failure      401          {object}  ErrorResponse
// @Failure      429          {object}  ErrorResponse
// @Failure      500          {object}  ErrorResponse
// @Router       /v1/chat [post]
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	req, err := decodeChatRequest(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	res, err := h.chatService.HandleTurn(r.Context(), ownerID, req)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

// HandleChatStream godoc
// @Summary      Stream a chat reply
// @Description  Runs one turn and streams the reply as server-sent events: delta events followed by exactly one done or error event.
// @Tags         Chat
// @Accept       json
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        chatRequest  body      service.ChatRequest  true  "Message"
// @Success      200          {object}  model.StreamEvent  "Stream of events"
// @Failure      400          {object}  ErrorResponse
// @Failure      401          {object}  ErrorResponse
// @Router       /v1/chat/stream [post]
func (h *ChatHandler) HandleChatStream(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	// Bad input is rejected before the stream opens.
	req, err := decodeChatRequest(r)
	if err != nil {
		respondWithError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	events := make(chan model.StreamEvent)
	go h.chatService.HandleTurnStream(r.Context(), ownerID, req, events)

	terminated := false
	for ev := range events {
		if terminated {
			// Only the first terminal event reaches the client.
			continue
		}
		if err := writeStreamEvent(w, ev); err != nil {
			slog.Warn("Could not write to chat stream, client likely disconnected.", "error", err)
			go drain(events)
			return
		}
		terminated = ev.Terminal()
	}

	if !terminated && r.Context().Err() == nil {
		sendStreamError(w, streamGenericError)
	}
	slog.Debug("Finished streaming chat reply.", "owner_id", ownerID)
}

// drain consumes the remaining events so the producer can exit.
func drain(events <-chan model.StreamEvent) {
	for range events {
	}
}

// GetChats godoc
// @Summary      List chats
// @Description  Lists the caller's chats, most recently updated first.
// @Tags         Chats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ChatListResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/chats [get]
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	chats, err := h.chatService.ListChats(r.Context(), ownerID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if chats == nil {
		chats = []model.ConversationSummary{}
	}
	respondWithJSON(w, http.StatusOK, ChatListResponse{Chats: chats})
}

// GetChat godoc
// @Summary      Get a chat
// @Description  Returns one of the caller's chats with all of its messages.
// @Tags         Chats
// @Produce      json
// @Security     BearerAuth
// @Param        chatID  path      string  true  "Chat ID"
// @Success      200     {object}  ChatResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /v1/chats/{chatID} [get]
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	chat, err := h.chatService.GetChat(r.Context(), ownerID, chi.URLParam(r, "chatID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ChatResponse{Chat: chat})
}

// RenameChat godoc
// @Summary      Rename a chat
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        chatID        path      string             true  "Chat ID"
// @Param        titleRequest  body      RenameChatRequest  true  "New title"
// @Success      200           {object}  OKResponse
// @Failure      400           {object}  ErrorResponse
// @Failure      404           {object}  ErrorResponse
// @Router       /v1/chats/{chatID} [patch]
func (h *ChatHandler) RenameChat(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req RenameChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.chatService.RenameChat(r.Context(), ownerID, chi.URLParam(r, "chatID"), req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, OKResponse{OK: true})
}

// DeleteChat godoc
// @Summary      Delete a chat
// @Description  Deletes one of the caller's chats and all of its messages.
// @Tags         Chats
// @Produce      json
// @Security     BearerAuth
// @Param        chatID  path      string  true  "Chat ID"
// @Success      200     {object}  OKResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /v1/chats/{chatID} [delete]
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.chatService.DeleteChat(r.Context(), ownerID, chi.URLParam(r, "chatID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, OKResponse{OK: true})
}

// HandleUpload godoc
// @Summary      Upload a document
// @Description  Extracts text from a PDF, DOCX, text, markdown, CSV, JSON or HTML file and stores it in a chat. Unless analyze is 0, false or no, the assistant also summarizes it.
// @Tags         Chat
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file            formData  file    true   "Document"
// @Param        conversationId  formData  string  false  "Existing chat ID"
// @Param        message         formData  string  false  "Prompt for the analysis"
// @Param        analyze         formData  string  false  "0, false or no to skip analysis"
// @Success      200             {object}  UploadResponse
// @Failure      400             {object}  ErrorResponse
// @Failure      413             {object}  ErrorResponse
// @Router       /v1/upload [post]
func (h *ChatHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxBytes+1<<20)
	if err := r.ParseMultipartForm(h.uploadMaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "The uploaded file is too large."})
			return
		}
		slog.Warn("Rejected malformed upload form", "error", err)
		respondWithError(w, errBadUploadForm)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, fmt.Errorf("%w: no file uploaded", app_errors.ErrValidation))
		return
	}
	defer func() { _ = file.Close() }()
	if header.Size > h.uploadMaxBytes {
		respondWithJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "The uploaded file is too large."})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Warn("Failed to read uploaded file", "error", err)
		respondWithError(w, errUnreadableUpload)
		return
	}
	text, err := extract.Text(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		respondWithError(w, err)
		return
	}

	res, err := h.chatService.AttachDocument(r.Context(), ownerID, &service.DocumentRequest{
		ConversationID: strings.TrimSpace(r.FormValue("conversationId")),
		Filename:       header.Filename,
		Text:           text,
		Bytes:          len(data),
		Message:        r.FormValue("message"),
		Analyze:        !analyzeDisabled.MatchString(strings.TrimSpace(r.FormValue("analyze"))),
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	if res.Turn != nil {
		respondWithJSON(w, http.StatusOK, res.Turn)
		return
	}
	respondWithJSON(w, http.StatusOK, UploadResponse{
		OK:             true,
		ConversationID: res.ConversationID,
		Filename:       res.Filename,
		Bytes:          res.Bytes,
		Chars:          res.Chars,
	})
}

func decodeChatRequest(r *http.Request) (*service.ChatRequest, error) {
	var req service.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	req.ConversationID = strings.TrimSpace(req.ConversationID)
	req.Message = strings.TrimSpace(req.Message)
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation)
	}
	return nil
}
