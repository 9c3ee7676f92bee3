package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	app_errors "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/errors"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/llm"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/repository"
	mock_repo "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/repository/mocks"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/service"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/tools"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

// setupChatService wires the service the way the app does with no provider
// credentials: a memory store, no search backend and the local fallback.
func setupChatService(t *testing.T) (*service.ChatService, repository.Store) {
	store := repository.NewMemoryRepository()
	svc := service.NewChatService(store, tools.NewRouter(nil, nil), llm.NewChain(nil, nil, nil), nil)
	return svc, store
}

// newTavilyServer serves a fixed search result, or a 500 when fail is set.
func newTavilyServer(t *testing.T, fail bool) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]string{
				{"title": "Retail report", "url": "https://example.com/retail", "content": "Retail grew 4%."},
				{"title": "Market notes", "url": "https://another.com/notes", "content": "Margins shrank."},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func collect(events <-chan model.StreamEvent) []model.StreamEvent {
	var out []model.StreamEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

// TestChatService_HandleTurn_NewConversation tests the first turn of a chat.
//
// GOAL: Verify that a turn without a conversation id creates exactly one
// conversation whose history ends with the user entry and the assistant reply.
func TestChatService_HandleTurn_NewConversation(t *testing.T) {
	// ARRANGE
	ctx := context.Background()
	svc, store := setupChatService(t)

	// ACT
	res, err := svc.HandleTurn(ctx, alice, &service.ChatRequest{Message: "Draft a welcome email"})

	// ASSERT
	require.NoError(t, err)
	assert.NotEmpty(t, res.ConversationID)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, model.RoleUser, res.Messages[0].Role)
	assert.Equal(t, "Draft a welcome email", res.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, res.Messages[1].Role)
	assert.Contains(t, res.Messages[1].Content, "Draft a welcome email")
	assert.NotNil(t, res.ToolResults)
	assert.Empty(t, res.ToolResults)

	chats, err := store.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, res.ConversationID, chats[0].ID)
	assert.Equal(t, "Draft a welcome email", chats[0].Title)
}

func TestChatService_HandleTurn_TitleIsTruncated(t *testing.T) {
	svc, store := setupChatService(t)
	message := strings.Repeat("x", 90)

	_, err := svc.HandleTurn(context.Background(), alice, &service.ChatRequest{Message: message})
	require.NoError(t, err)

	chats, err := store.List(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, strings.Repeat("x", model.TitleMaxRunes), chats[0].Title)
}

// TestChatService_HandleTurn_RemembersName tests context retention across turns
// using only the local fallback responder.
func TestChatService_HandleTurn_RemembersName(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupChatService(t)

	first, err := svc.HandleTurn(ctx, alice, &service.ChatRequest{Message: "My name is David."})
	require.NoError(t, err)

	second, err := svc.HandleTurn(ctx, alice, &service.ChatRequest{ConversationID: first.ConversationID, Message: "What is my name?"})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)
	require.Len(t, second.Messages, 4)
	reply := second.Messages[3]
	assert.Equal(t, model.RoleAssistant, reply.Role)
	assert.Contains(t, strings.ToLower(reply.Content), "david")
}

func TestChatService_HandleTurn_UnknownConversationStartsNewOne(t *testing.T) {
	ctx := context.Background()
	svc, store := setupChatService(t)

	res, err := svc.HandleTurn(ctx, alice, &service.ChatRequest{ConversationID: "does-not-exist", Message: "hello"})
	require.NoError(t, err)
	assert.NotEqual(t, "does-not-exist", res.ConversationID)

	// Another owner's id behaves like an unknown id.
	other, err := svc.HandleTurn(ctx, bob, &service.ChatRequest{ConversationID: res.ConversationID, Message: "hi"})
	require.NoError(t, err)
	assert.NotEqual(t, res.ConversationID, other.ConversationID)

	conv, err := store.Get(ctx, alice, res.ConversationID)
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 2, "bob's turn must not touch alice's conversation")
}

// TestChatService_HandleTurn_Validation checks that invalid input never starts
// a turn.
func TestChatService_HandleTurn_Validation(t *testing.T) {
	testCases := []struct {
		name string
		req  *service.ChatRequest
	}{
		{name: "nil request", req: nil},
		{name: "empty message", req: &service.ChatRequest{Message: ""}},
		{name: "whitespace message", req: &service.ChatRequest{Message: "   \n\t"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := setupChatService(t)

			_, err := svc.HandleTurn(context.Background(), alice, tc.req)

			assert.ErrorIs(t, err, app_errors.ErrValidation)
			chats, err := store.List(context.Background(), alice)
			require.NoError(t, err)
			assert.Empty(t, chats)
		})
	}
}

// TestChatService_HandleTurn_WebSearch tests the heuristic pre-fetch.
//
// GOAL: Verify that a research-style message folds search results into the
// provider context, reports them as tool results and citations, and does not
// persist the synthetic system entry.
func TestChatService_HandleTurn_WebSearch(t *testing.T) {
	// ARRANGE
	ctx := context.Background()
	srv := newTavilyServer(t, false)
	store := repository.NewMemoryRepository()
	router := tools.NewRouter(tools.NewTavilyClient(srv.URL, "test-key"), nil)
	svc := service.NewChatService(store, router, llm.NewChain(nil, nil, nil), nil)

	// ACT
	res, err := svc.HandleTurn(ctx, alice, &service.ChatRequest{Message: "What are the latest retail trends?"})

	// ASSERT
	require.NoError(t, err)
	require.Len(t, res.ToolResults, 1)
	assert.Equal(t, tools.WebSearchName, res.ToolResults[0].ToolName)
	assert.Contains(t, res.ToolResults[0].Content, "https://example.com/retail")
	assert.Equal(t, []string{"https://example.com/retail", "https://another.com/notes"}, res.Citations)

	require.Len(t, res.Messages, 2)
	assert.Contains(t, res.Messages[1].Content, "Sources (tool):\n- https://example.com/retail\n- https://another.com/notes")

	conv, err := store.Get(ctx, alice, res.ConversationID)
	require.NoError(t, err)
	for _, e := range conv.Messages {
		assert.NotEqual(t, model.RoleSystem, e.Role, "observations are not persisted")
	}
}

func TestChatService_HandleTurn_SearchFailureIsSwallowed(t *testing.T) {
	srv := newTavilyServer(t, true)
	router := tools.NewRouter(tools.NewTavilyClient(srv.URL, "test-key"), nil)
	svc := service.NewChatService(repository.NewMemoryRepository(), router, llm.NewChain(nil, nil, nil), nil)

	res, err := svc.HandleTurn(context.Background(), alice, &service.ChatRequest{Message: "latest market news"})

	require.NoError(t, err)
	assert.Empty(t, res.ToolResults)
	assert.Empty(t, res.Citations)
	require.Len(t, res.Messages, 2)
	assert.NotContains(t, res.Messages[1].Content, "Sources")
}

// TestChatService_HandleTurn_StoreFailures covers durable-store errors, which
// are surfaced instead of being downgraded.
func TestChatService_HandleTurn_StoreFailures(t *testing.T) {
	conv := &model.Conversation{ID: "c1", OwnerID: alice, Title: "hello", Messages: []model.Entry{}, CreatedAt: model.Now(), UpdatedAt: model.Now()}

	t.Run("Load fails", func(t *testing.T) {
		store := mock_repo.NewMockStore(t)
		svc := service.NewChatService(store, tools.NewRouter(nil, nil), llm.NewChain(nil, nil, nil), nil)
		store.On("LoadOrCreate", mock.Anything, alice, "", "hello").Return(nil, errors.New("connection refused")).Once()

		_, err := svc.HandleTurn(context.Background(), alice, &service.ChatRequest{Message: "hello"})

		assert.ErrorIs(t, err, app_errors.ErrInternal)
		assert.NotContains(t, err.Error(), "not found")
	})

	t.Run("Append fails", func(t *testing.T) {
		store := mock_repo.NewMockStore(t)
		svc := service.NewChatService(store, tools.NewRouter(nil, nil), llm.NewChain(nil, nil, nil), nil)
		store.On("LoadOrCreate", mock.Anything, alice, "", "hello").Return(conv.Clone(), nil).Once()
		store.On("Append", mock.Anything, mock.AnythingOfType("*model.Conversation"), mock.Anything, mock.Anything).
			Return(errors.New("disk full")).Once()

		_, err := svc.HandleTurn(context.Background(), alice, &service.ChatRequest{Message: "hello"})

		assert.ErrorIs(t, err, app_errors.ErrInternal)
	})

	t.Run("User and assistant are appended together", func(t *testing.T) {
		store := mock_repo.NewMockStore(t)
		svc := service.NewChatService(store, tools.NewRouter(nil, nil), llm.NewChain(nil, nil, nil), nil)
		store.On("LoadOrCreate", mock.Anything, alice, "", "hello").Return(conv.Clone(), nil).Once()
		store.On("Append", mock.Anything, mock.AnythingOfType("*model.Conversation"),
			mock.MatchedBy(func(e model.Entry) bool { return e.Role == model.RoleUser && e.Content == "hello" }),
			mock.MatchedBy(func(e model.Entry) bool { return e.Role == model.RoleAssistant }),
		).Return(nil).Once()

		_, err := svc.HandleTurn(context.Background(), alice, &service.ChatRequest{Message: "hello"})

		assert.NoError(t, err)
	})
}

// TestChatService_HandleTurnStream tests the streamed variant.
//
// GOAL: Verify deltas are followed by exactly one terminal done event carrying
// the conversation id, and that the persisted reply equals the concatenated
// deltas.
func TestChatService_HandleTurnStream(t *testing.T) {
	// ARRANGE
	ctx := context.Background()
	svc, store := setupChatService(t)
	message := "Please write a longer acknowledgment so that the reply spans several chunks."

	// ACT
	events := make(chan model.StreamEvent)
	go svc.HandleTurnStream(ctx, alice, &service.ChatRequest{Message: message}, events)
	got := collect(events)

	// ASSERT
	require.GreaterOrEqual(t, len(got), 3)
	var text strings.Builder
	terminals := 0
	for _, ev := range got[:len(got)-1] {
		assert.Equal(t, model.EventDelta, ev.Type)
		assert.LessOrEqual(t, len([]rune(ev.Chunk)), llm.ChunkSize)
		text.WriteString(ev.Chunk)
	}
	for _, ev := range got {
		if ev.Terminal() {
			terminals++
		}
	}
	last := got[len(got)-1]
	assert.Equal(t, 1, terminals)
	assert.Equal(t, model.EventDone, last.Type)
	require.NotEmpty(t, last.ConversationID)

	conv, err := store.Get(ctx, alice, last.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, text.String(), conv.Messages[1].Content)

	buffered, err := svc.HandleTurn(ctx, alice, &service.ChatRequest{Message: message})
	require.NoError(t, err)
	assert.Equal(t, buffered.Messages[1].Content, text.String(), "streamed and buffered replies must match")
}

func TestChatService_HandleTurnStream_ValidationError(t *testing.T) {
	svc, store := setupChatService(t)

	events := make(chan model.StreamEvent)
	go svc.HandleTurnStream(context.Background(), alice, &service.ChatRequest{Message: " "}, events)
	got := collect(events)

	require.Len(t, got, 1)
	assert.Equal(t, model.EventError, got[0].Type)
	assert.NotEmpty(t, got[0].Error)
	chats, err := store.List(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, chats)
}

// TestChatService_HandleTurnStream_Cancelled checks that a client that has
// gone away gets no further events and no reply is persisted.
func TestChatService_HandleTurnStream_Cancelled(t *testing.T) {
	svc, store := setupChatService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := make(chan model.StreamEvent)
	go svc.HandleTurnStream(ctx, alice, &service.ChatRequest{Message: "hello there"}, events)
	got := collect(events)

	assert.Empty(t, got)
	chats, err := store.List(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, chats, "a cancelled turn must not create a conversation")
}

// TestChatService_HandleTurnStream_CancelledWhileReaderWaits covers a reader
// that keeps receiving after the request context is gone: no delta may slip
// through, however often the turn is repeated.
func TestChatService_HandleTurnStream_CancelledWhileReaderWaits(t *testing.T) {
	svc, _ := setupChatService(t)

	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		events := make(chan model.StreamEvent)
		go svc.HandleTurnStream(ctx, alice, &service.ChatRequest{Message: "tell me a long story about pricing"}, events)

		got := collect(events)
		require.Empty(t, got, "iteration %d", i)
	}
}

func TestChatService_HandleTurn_CancelledBeforeStart(t *testing.T) {
	svc, store := setupChatService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.HandleTurn(ctx, alice, &service.ChatRequest{Message: "hello"})

	require.ErrorIs(t, err, context.Canceled)
	chats, err := store.List(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestChatService_HandleTurnStream_PersistFailure(t *testing.T) {
	store := mock_repo.NewMockStore(t)
	svc := service.NewChatService(store, tools.NewRouter(nil, nil), llm.NewChain(nil, nil, nil), nil)
	conv := &model.Conversation{ID: "c1", OwnerID: alice, Messages: []model.Entry{}}
	store.On("LoadOrCreate", mock.Anything, alice, "", "hi").Return(conv, nil).Once()
	store.On("Append", mock.Anything, conv, mock.Anything, mock.Anything).Return(errors.New("write timeout")).Once()

	events := make(chan model.StreamEvent)
	go svc.HandleTurnStream(context.Background(), alice, &service.ChatRequest{Message: "hi"}, events)
	got := collect(events)

	require.NotEmpty(t, got)
	last := got[len(got)-1]
	assert.Equal(t, model.EventError, last.Type)
	assert.NotContains(t, last.Error, "write timeout")
	for _, ev := range got[:len(got)-1] {
		assert.Equal(t, model.EventDelta, ev.Type)
	}
}

// TestChatService_AttachDocument tests the upload flow.
func TestChatService_AttachDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("Without analysis only the document is stored", func(t *testing.T) {
		svc, store := setupChatService(t)

		res, err := svc.AttachDocument(ctx, alice, &service.DocumentRequest{
			Filename: "plan.md", Text: "  # Plan\nShip it.  ", Bytes: 20,
		})

		require.NoError(t, err)
		assert.Nil(t, res.Turn)
		assert.Equal(t, "plan.md", res.Filename)
		assert.Equal(t, 20, res.Bytes)
		assert.Equal(t, len("# Plan\nShip it."), res.Chars)

		conv, err := store.Get(ctx, alice, res.ConversationID)
		require.NoError(t, err)
		assert.Equal(t, "plan.md", conv.Title)
		require.Len(t, conv.Messages, 1)
		assert.Equal(t, model.RoleTool, conv.Messages[0].Role)
		assert.Equal(t, tools.FileUploadName, conv.Messages[0].ToolName)
		assert.Equal(t, "Document: plan.md\n\n# Plan\nShip it.", conv.Messages[0].Content)
	})

	t.Run("With analysis a turn runs on the default prompt", func(t *testing.T) {
		svc, _ := setupChatService(t)

		res, err := svc.AttachDocument(ctx, alice, &service.DocumentRequest{
			Filename: "notes.txt", Text: "Revenue is up.", Analyze: true,
		})

		require.NoError(t, err)
		require.NotNil(t, res.Turn)
		assert.Equal(t, res.ConversationID, res.Turn.ConversationID)
		require.Len(t, res.Turn.Messages, 3)
		assert.Equal(t, model.RoleTool, res.Turn.Messages[0].Role)
		assert.Equal(t, service.DefaultDocumentPrompt, res.Turn.Messages[1].Content)
		assert.Equal(t, model.RoleAssistant, res.Turn.Messages[2].Role)
	})

	t.Run("Existing conversation and custom prompt", func(t *testing.T) {
		svc, _ := setupChatService(t)
		first, err := svc.HandleTurn(ctx, alice, &service.ChatRequest{Message: "hello"})
		require.NoError(t, err)

		res, err := svc.AttachDocument(ctx, alice, &service.DocumentRequest{
			ConversationID: first.ConversationID, Filename: "a.csv", Text: "a,b\n1,2", Analyze: true, Message: "Total column b",
		})

		require.NoError(t, err)
		assert.Equal(t, first.ConversationID, res.ConversationID)
		require.Len(t, res.Turn.Messages, 5)
		assert.Equal(t, "Total column b", res.Turn.Messages[3].Content)
	})

	t.Run("Text is capped", func(t *testing.T) {
		svc, store := setupChatService(t)

		res, err := svc.AttachDocument(ctx, alice, &service.DocumentRequest{
			Filename: "big.txt", Text: strings.Repeat("é", service.DocumentMaxRunes+500),
		})

		require.NoError(t, err)
		assert.Equal(t, service.DocumentMaxRunes, res.Chars)
		conv, err := store.Get(ctx, alice, res.ConversationID)
		require.NoError(t, err)
		assert.Equal(t, "Document: big.txt\n\n"+strings.Repeat("é", service.DocumentMaxRunes), conv.Messages[0].Content)
	})

	t.Run("Empty text is rejected", func(t *testing.T) {
		svc, store := setupChatService(t)

		_, err := svc.AttachDocument(ctx, alice, &service.DocumentRequest{Filename: "empty.txt", Text: " \n "})

		assert.ErrorIs(t, err, app_errors.ErrValidation)
		chats, err := store.List(ctx, alice)
		require.NoError(t, err)
		assert.Empty(t, chats)
	})
}

// TestChatService_Ownership verifies that every chat operation is scoped to
// its owner.
func TestChatService_Ownership(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupChatService(t)
	res, err := svc.HandleTurn(ctx, alice, &service.ChatRequest{Message: "private"})
	require.NoError(t, err)

	_, err = svc.GetChat(ctx, bob, res.ConversationID)
	assert.ErrorIs(t, err, app_errors.ErrNotFound)
	assert.ErrorIs(t, svc.RenameChat(ctx, bob, res.ConversationID, "stolen"), app_errors.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteChat(ctx, bob, res.ConversationID), app_errors.ErrNotFound)

	chats, err := svc.ListChats(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, chats)

	conv, err := svc.GetChat(ctx, alice, res.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "private", conv.Title)
}

func TestChatService_GetChat_IsRepeatable(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupChatService(t)
	res, err := svc.HandleTurn(ctx, alice, &service.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	first, err := svc.GetChat(ctx, alice, res.ConversationID)
	require.NoError(t, err)
	second, err := svc.GetChat(ctx, alice, res.ConversationID)
	require.NoError(t, err)

	assert.Equal(t, first.Messages, second.Messages)
}

func TestChatService_RenameChat(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupChatService(t)
	res, err := svc.HandleTurn(ctx, alice, &service.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, svc.RenameChat(ctx, alice, res.ConversationID, "  Q3 planning  "))
		conv, err := svc.GetChat(ctx, alice, res.ConversationID)
		require.NoError(t, err)
		assert.Equal(t, "Q3 planning", conv.Title)
	})

	t.Run("Empty title", func(t *testing.T) {
		err := svc.RenameChat(ctx, alice, res.ConversationID, "   ")
		assert.ErrorIs(t, err, app_errors.ErrValidation)
	})

	t.Run("Title too long", func(t *testing.T) {
		err := svc.RenameChat(ctx, alice, res.ConversationID, strings.Repeat("t", service.TitleMaxRunes+1))
		assert.ErrorIs(t, err, app_errors.ErrValidation)
	})

	t.Run("Unknown chat", func(t *testing.T) {
		err := svc.RenameChat(ctx, alice, "missing", "title")
		assert.ErrorIs(t, err, app_errors.ErrNotFound)
	})
}

func TestChatService_DeleteChat(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupChatService(t)
	res, err := svc.HandleTurn(ctx, alice, &service.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteChat(ctx, alice, res.ConversationID))

	_, err = svc.GetChat(ctx, alice, res.ConversationID)
	assert.ErrorIs(t, err, app_errors.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteChat(ctx, alice, res.ConversationID), app_errors.ErrNotFound)
}

func TestChatService_ListChats_StoreError(t *testing.T) {
	store := mock_repo.NewMockStore(t)
	svc := service.NewChatService(store, tools.NewRouter(nil, nil), llm.NewChain(nil, nil, nil), nil)
	store.On("List", mock.Anything, alice).Return(nil, errors.New("timeout")).Once()

	_, err := svc.ListChats(context.Background(), alice)

	assert.ErrorIs(t, err, app_errors.ErrInternal)
}
