package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/citation"
	app_errors "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/errors"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/llm"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/observability"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/repository"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/tools"
)

const (
	// DocumentMaxRunes caps the extracted text kept from an uploaded document.
	DocumentMaxRunes = 15000
	// DefaultDocumentPrompt is the user message used to analyze an upload
	// when the caller supplies none.
	DefaultDocumentPrompt = "Summarize the attached document with key points and action items."
	// TitleMaxRunes bounds titles set through RenameChat.
	TitleMaxRunes = 100

	modeBuffered = "buffered"
	modeStream   = "stream"

	streamFailureMessage = "The assistant could not complete this reply."
)

// ChatRequest is a single user turn.
type ChatRequest struct {
	ConversationID string `json:"conversationId,omitempty" validate:"omitempty,max=128" example:"6f1c1d1e-9a55-4a4f-8a53-0a0f5e3c8d21"`
	Message        string `json:"message" validate:"required,max=20000" example:"What are the latest trends in retail?"`
}

// DocumentRequest carries text extracted from an uploaded file.
type DocumentRequest struct {
	ConversationID string
	Filename       string
	Text           string
	// Bytes is the size of the original upload.
	Bytes   int
	Message string
	Analyze bool
}

// DocumentResult is the outcome of AttachDocument. Turn is set only when the
// document was analyzed.
type DocumentResult struct {
	ConversationID string
	Filename       string
	Bytes          int
	Chars          int
	Turn           *model.TurnResult
}

// ChatService runs chat turns against a conversation store, a tool router and
// a provider chain.
type ChatService struct {
	store   repository.ConversationStore
	router  *tools.Router
	chain   *llm.Chain
	metrics *observability.Metrics
}

func NewChatService(store repository.ConversationStore, router *tools.Router, chain *llm.Chain, metrics *observability.Metrics) *ChatService {
	return &ChatService{store: store, router: router, chain: chain, metrics: metrics}
}

// turn is the working state of one request. Nothing in it is shared.
type turn struct {
	id          string
	conv        *model.Conversation
	user        model.Entry
	context     []model.Entry
	toolResults []model.ToolObservation
}

func (t *turn) state(name string) {
	slog.Debug("Turn state", "turn_id", t.id, "conversation_id", t.conv.ID, "state", name)
}

// HandleTurn runs a buffered turn and returns the persisted conversation.
func (s *ChatService) HandleTurn(ctx context.Context, ownerID string, req *ChatRequest) (*model.TurnResult, error) {
	start := time.Now()
	res, err := s.handleTurn(ctx, ownerID, req)
	s.metrics.TurnFinished(modeBuffered, turnStatus(ctx, err), start)
	return res, err
}

func (s *ChatService) handleTurn(ctx context.Context, ownerID string, req *ChatRequest) (*model.TurnResult, error) {
	message, err := validateMessage(req)
	if err != nil {
		return nil, err
	}
	conv, err := s.resolve(ctx, ownerID, req.ConversationID, model.TitleFrom(message))
	if err != nil {
		return nil, err
	}
	t := s.begin(ctx, ownerID, conv, message)

	t.state("Generating")
	res, err := s.chain.Generate(ctx, &llm.Request{OwnerID: ownerID, Messages: t.context})
	if err != nil {
		t.state("Failed")
		return nil, fmt.Errorf("%w: generation failed: %v", app_errors.ErrInternal, err)
	}
	return s.persist(ctx, t, res)
}

// HandleTurnStream runs a streamed turn. It sends delta events followed by
// exactly one done or error event and always closes events. When ctx is
// cancelled it stops sending and persists nothing.
func (s *ChatService) HandleTurnStream(ctx context.Context, ownerID string, req *ChatRequest, events chan<- model.StreamEvent) {
	defer close(events)
	start := time.Now()
	s.metrics.StreamStarted()
	defer s.metrics.StreamEnded()

	status := "success"
	defer func() { s.metrics.TurnFinished(modeStream, status, start) }()

	send := func(ev model.StreamEvent) bool {
		// A ready reader must not win over an already cancelled ctx.
		if ctx.Err() != nil {
			return false
		}
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(err error, message string) {
		status = turnStatus(ctx, err)
		if status == "cancelled" {
			slog.Info("Stream cancelled by client", "owner_id", ownerID)
			return
		}
		slog.Error("Streaming turn failed", "owner_id", ownerID, "error", err)
		send(model.StreamEvent{Type: model.EventError, Error: message})
	}

	message, err := validateMessage(req)
	if err != nil {
		fail(err, err.Error())
		return
	}
	conv, err := s.resolve(ctx, ownerID, req.ConversationID, model.TitleFrom(message))
	if err != nil {
		fail(err, streamFailureMessage)
		return
	}
	t := s.begin(ctx, ownerID, conv, message)

	t.state("Generating")
	res, err := s.chain.GenerateStream(ctx, &llm.Request{OwnerID: ownerID, Messages: t.context}, func(chunk string) error {
		if !send(model.StreamEvent{Type: model.EventDelta, Chunk: chunk}) {
			return ctx.Err()
		}
		return nil
	})
	if err != nil {
		t.state("Failed")
		fail(err, streamFailureMessage)
		return
	}
	if ctx.Err() != nil {
		fail(ctx.Err(), streamFailureMessage)
		return
	}

	result, err := s.persist(ctx, t, res)
	if err != nil {
		fail(err, "The reply could not be saved.")
		return
	}
	send(model.StreamEvent{Type: model.EventDone, ConversationID: result.ConversationID, Citations: result.Citations})
}

// AttachDocument stores extracted document text as a tool entry and, when
// requested, runs a turn asking the assistant about it.
func (s *ChatService) AttachDocument(ctx context.Context, ownerID string, req *DocumentRequest) (*DocumentResult, error) {
	text := model.Truncate(strings.TrimSpace(req.Text), DocumentMaxRunes)
	if text == "" {
		return nil, fmt.Errorf("%w: the document contains no extractable text", app_errors.ErrValidation)
	}
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = "document"
	}

	conv, err := s.resolve(ctx, ownerID, req.ConversationID, model.TitleFrom(filename))
	if err != nil {
		return nil, err
	}
	doc := model.Entry{
		Role:      model.RoleTool,
		Content:   fmt.Sprintf("Document: %s\n\n%s", filename, text),
		CreatedAt: model.Now(),
		ToolName:  tools.FileUploadName,
	}
	if err := s.store.Append(ctx, conv, doc); err != nil {
		return nil, storeError(err, "could not save document")
	}
	slog.Info("Document attached", "conversation_id", conv.ID, "filename", filename, "chars", len([]rune(text)))

	result := &DocumentResult{
		ConversationID: conv.ID,
		Filename:       filename,
		Bytes:          req.Bytes,
		Chars:          len([]rune(text)),
	}
	if !req.Analyze {
		return result, nil
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = DefaultDocumentPrompt
	}
	start := time.Now()
	t := s.begin(ctx, ownerID, conv, message)
	t.state("Generating")
	res, err := s.chain.Generate(ctx, &llm.Request{OwnerID: ownerID, Messages: t.context})
	if err == nil {
		result.Turn, err = s.persist(ctx, t, res)
	} else {
		err = fmt.Errorf("%w: generation failed: %v", app_errors.ErrInternal, err)
	}
	s.metrics.TurnFinished(modeBuffered, turnStatus(ctx, err), start)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolve loads the caller's conversation or creates a new one.
func (s *ChatService) resolve(ctx context.Context, ownerID, conversationID, seedTitle string) (*model.Conversation, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: missing owner", app_errors.ErrUnauthorized)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conv, err := s.store.LoadOrCreate(ctx, ownerID, conversationID, seedTitle)
	if err != nil {
		return nil, storeError(err, "could not load conversation")
	}
	return conv, nil
}

// begin appends the user entry to the working history and runs the tool
// router. Tool failures never abort the turn.
func (s *ChatService) begin(ctx context.Context, ownerID string, conv *model.Conversation, message string) *turn {
	t := &turn{
		id:          uuid.NewString(),
		conv:        conv,
		toolResults: []model.ToolObservation{},
	}
	t.state("Resolving")

	t.state("AppendingUser")
	t.user = model.Entry{Role: model.RoleUser, Content: message, CreatedAt: model.Now()}
	t.context = make([]model.Entry, 0, len(conv.Messages)+2)
	t.context = append(t.context, conv.Messages...)
	t.context = append(t.context, t.user)

	t.state("RoutingTools")
	decision := s.router.Decide(t.context)
	if !decision.ShouldInvoke {
		return t
	}
	obs, err := s.router.Invoke(ctx, decision.Tool, decision.Query)
	if err != nil {
		slog.Debug("Continuing turn without tool", "turn_id", t.id, "tool", decision.Tool, "owner_id", ownerID)
		return t
	}
	t.toolResults = append(t.toolResults, *obs)
	t.context = append(t.context, model.Entry{
		Role:      model.RoleSystem,
		Content:   fmt.Sprintf("Web search results (via Tavily):\n\n%s", obs.Content),
		CreatedAt: model.Now(),
		ToolName:  obs.ToolName,
	})
	return t
}

// persist writes the user and assistant entries in a single append.
func (s *ChatService) persist(ctx context.Context, t *turn, res *llm.Result) (*model.TurnResult, error) {
	t.state("Persisting")
	assistant := model.Entry{Role: model.RoleAssistant, Content: res.Text, CreatedAt: model.Now()}
	if err := s.store.Append(ctx, t.conv, t.user, assistant); err != nil {
		t.state("Failed")
		return nil, storeError(err, "could not save turn")
	}

	t.toolResults = append(t.toolResults, res.Observations...)
	t.state("Complete")
	slog.Info("Turn completed", "turn_id", t.id, "conversation_id", t.conv.ID, "provider", res.Provider, "tool_results", len(t.toolResults))
	return &model.TurnResult{
		ConversationID: t.conv.ID,
		Messages:       t.conv.Messages,
		ToolResults:    t.toolResults,
		Citations:      citations(t.toolResults, res.Text),
	}, nil
}

// citations prefers URLs from tool output over URLs in the answer text.
func citations(observations []model.ToolObservation, text string) []string {
	parts := make([]string, 0, len(observations))
	for _, obs := range observations {
		parts = append(parts, obs.Content)
	}
	if urls := citation.Extract(strings.Join(parts, "\n"), citation.DefaultMax); len(urls) > 0 {
		return urls
	}
	return citation.Extract(text, citation.DefaultMax)
}

// ListChats returns the owner's conversations, most recently updated first.
func (s *ChatService) ListChats(ctx context.Context, ownerID string) ([]model.ConversationSummary, error) {
	chats, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, "could not list chats")
	}
	return chats, nil
}

// GetChat returns a conversation with all of its entries.
func (s *ChatService) GetChat(ctx context.Context, ownerID, chatID string) (*model.Conversation, error) {
	conv, err := s.store.Get(ctx, ownerID, chatID)
	if err != nil {
		return nil, storeError(err, "could not get chat "+chatID)
	}
	return conv, nil
}

// RenameChat handles the logic for manually updating a chat's title.
func (s *ChatService) RenameChat(ctx context.Context, ownerID, chatID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title cannot be empty", app_errors.ErrValidation)
	}
	if len([]rune(title)) > TitleMaxRunes {
		return fmt.Errorf("%w: title must be at most %d characters", app_errors.ErrValidation, TitleMaxRunes)
	}
	slog.Info("Renaming chat", "chat_id", chatID, "title", title)
	if err := s.store.Rename(ctx, ownerID, chatID, title); err != nil {
		return storeError(err, "could not rename chat "+chatID)
	}
	return nil
}

// DeleteChat removes a chat and all of its entries.
func (s *ChatService) DeleteChat(ctx context.Context, ownerID, chatID string) error {
	slog.Info("Deleting chat", "chat_id", chatID)
	if err := s.store.Delete(ctx, ownerID, chatID); err != nil {
		return storeError(err, "could not delete chat "+chatID)
	}
	return nil
}

func validateMessage(req *ChatRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: request body is required", app_errors.ErrValidation)
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", fmt.Errorf("%w: message cannot be empty", app_errors.ErrValidation)
	}
	return message, nil
}

// storeError translates repository failures into application errors.
func storeError(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", app_errors.ErrNotFound, msg)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %s: %v", app_errors.ErrInternal, msg, err)
	}
}

func turnStatus(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return "success"
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}
