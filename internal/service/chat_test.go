package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kemalefekolayli/madlen-case-study/internal/config"
	"github.com/kemalefekolayli/madlen-case-study/internal/domain"
	"github.com/kemalefekolayli/madlen-case-study/internal/repository"
)

func newTestChatService(upstreamURL string) (*ChatService, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	catalog := NewModelCatalog([]domain.AIModel{
		{ID: "m1", Name: "Text Model", Available: true},
		{ID: "m2", Name: "Vision Model", Available: true, SupportsVision: true},
		{ID: "m3", Name: "Retired Model", Available: false},
	})
	openRouter := NewOpenRouterService("test-key", upstreamURL)
	cfg := &config.Config{MaxSessionsPerUser: 2, MaxMessagesPerSession: 4}
	return NewChatService(store, openRouter, catalog, cfg), store
}

func seedSession(t *testing.T, store *repository.MemoryStore, session *domain.ChatSession) *domain.ChatSession {
	t.Helper()
	saved, err := store.Save(context.Background(), session)
	require.NoError(t, err)
	return saved
}

func completionServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + reply + `"}}]}`))
	}))
}

func TestCreateSession(t *testing.T) {
	svc, _ := newTestChatService("")

	session, err := svc.CreateSession(context.Background(), "u1", "m1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, "m1", session.SelectedModel)
	assert.Empty(t, session.Messages)
}

func TestCreateSessionInvalidModel(t *testing.T) {
	svc, _ := newTestChatService("")

	_, err := svc.CreateSession(context.Background(), "u1", "nope", "")
	assert.ErrorIs(t, err, domain.ErrInvalidModel)

	_, err = svc.CreateSession(context.Background(), "u1", "m3", "")
	assert.ErrorIs(t, err, domain.ErrInvalidModel, "unavailable model rejected")
}

func TestCreateSessionLimit(t *testing.T) {
	svc, _ := newTestChatService("")
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, "u1", "m1", "")
	require.NoError(t, err)
	_, err = svc.CreateSession(ctx, "u1", "m1", "")
	require.NoError(t, err)

	_, err = svc.CreateSession(ctx, "u1", "m1", "")
	assert.ErrorIs(t, err, domain.ErrSessionLimitReached)

	// other users are unaffected
	_, err = svc.CreateSession(ctx, "u2", "m1", "")
	assert.NoError(t, err)
}

func TestDeleteSessionOwnerChecked(t *testing.T) {
	svc, store := newTestChatService("")
	ctx := context.Background()
	session := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m1"})

	err := svc.DeleteSession(ctx, session.ID, "intruder")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, svc.DeleteSession(ctx, session.ID, "u1"))
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSendMessageSessionNotFound(t *testing.T) {
	svc, _ := newTestChatService("")

	_, err := svc.SendMessage(context.Background(), ChatRequest{SessionID: "missing", Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSendMessageLimitReached(t *testing.T) {
	svc, store := newTestChatService("")
	session := &domain.ChatSession{UserID: "u1", SelectedModel: "m1"}
	for i := 0; i < 4; i++ {
		session.Messages = append(session.Messages, domain.ChatMessage{Role: domain.RoleUser, Content: "x"})
	}
	session = seedSession(t, store, session)

	_, err := svc.SendMessage(context.Background(), ChatRequest{SessionID: session.ID, Message: "one more"})
	assert.ErrorIs(t, err, domain.ErrMessageLimitReached)
}

func TestSendMessageInvalidModelOverride(t *testing.T) {
	svc, store := newTestChatService("")
	session := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m1"})

	_, err := svc.SendMessage(context.Background(), ChatRequest{SessionID: session.ID, Message: "hi", Model: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidModel)
}

func TestSendMessageVisionNotSupported(t *testing.T) {
	svc, store := newTestChatService("")
	ctx := context.Background()
	session := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m1"})

	_, err := svc.SendMessage(ctx, ChatRequest{
		SessionID: session.ID,
		Message:   "what is this?",
		Images:    []domain.ImageContent{domain.FromURL("https://example.com/a.png")},
	})
	assert.ErrorIs(t, err, domain.ErrVisionNotSupported)

	// no partial append
	current, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, current.Messages)
}

func TestSendMessageImageValidation(t *testing.T) {
	svc, store := newTestChatService("")
	ctx := context.Background()
	session := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m2"})

	_, err := svc.SendMessage(ctx, ChatRequest{
		SessionID: session.ID,
		Message:   "hi",
		Images:    []domain.ImageContent{domain.FromBase64("abcd", "image/bmp")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	oversized := strings.Repeat("a", 8*1024*1024)
	_, err = svc.SendMessage(ctx, ChatRequest{
		SessionID: session.ID,
		Message:   "hi",
		Images:    []domain.ImageContent{domain.FromBase64(oversized, "image/png")},
	})
	assert.ErrorIs(t, err, domain.ErrImageTooLarge)

	// url images are not size-checked
	current, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, current.Messages)
}

func TestSendMessagePersistsTurn(t *testing.T) {
	server := completionServer(t, "Nice to meet you")
	defer server.Close()

	svc, store := newTestChatService(server.URL)
	ctx := context.Background()
	session := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m1"})

	result, err := svc.SendMessage(ctx, ChatRequest{SessionID: session.ID, Message: "hello\nsecond line"})
	require.NoError(t, err)
	assert.Equal(t, session.ID, result.SessionID)
	assert.Equal(t, "m1", result.Model)
	assert.Equal(t, 2, result.TotalMessages)
	assert.Equal(t, "Nice to meet you", result.AssistantMessage.Content)
	assert.Equal(t, "m1", result.AssistantMessage.Model)

	current, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, current.Messages, 2)
	assert.Equal(t, domain.RoleUser, current.Messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, current.Messages[1].Role)
	assert.Equal(t, "hello", current.Title, "title derived from first line")
}

func TestSendMessageModelOverridePersisted(t *testing.T) {
	server := completionServer(t, "ok")
	defer server.Close()

	svc, store := newTestChatService(server.URL)
	ctx := context.Background()
	session := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m1"})

	result, err := svc.SendMessage(ctx, ChatRequest{SessionID: session.ID, Message: "hi", Model: "m2"})
	require.NoError(t, err)
	assert.Equal(t, "m2", result.Model)
	assert.Equal(t, "m2", result.AssistantMessage.Model)

	current, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "m2", current.SelectedModel)
}

func streamingServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, chunk := range chunks {
			w.Write([]byte(chunk + "\n\n"))
			flusher.Flush()
		}
	}))
}

func TestSendMessageStream(t *testing.T) {
	server := streamingServer(t, []string{
		`data: {"choices":[{"delta":{"content":"Hi"}}]}`,
		`data: {"choices":[{"delta":{"content":" there"}}]}`,
		"data: [DONE]",
	})
	defer server.Close()

	svc, store := newTestChatService(server.URL)
	ctx := context.Background()
	session := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m1"})

	var fragments []string
	err := svc.SendMessageStream(ctx, ChatRequest{SessionID: session.ID, Message: "hello"}, func(delta string) error {
		fragments = append(fragments, delta)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hi", " there"}, fragments)

	current, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, current.Messages, 2)
	assert.Equal(t, domain.RoleUser, current.Messages[0].Role)
	assert.Equal(t, "hello", current.Messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, current.Messages[1].Role)
	assert.Equal(t, "Hi there", current.Messages[1].Content)
	assert.Equal(t, "m1", current.Messages[1].Model)
}

func TestSendMessageStreamValidationShortCircuits(t *testing.T) {
	svc, store := newTestChatService("")
	ctx := context.Background()
	session := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m1"})

	err := svc.SendMessageStream(ctx, ChatRequest{
		SessionID: session.ID,
		Message:   "look",
		Images:    []domain.ImageContent{domain.FromURL("https://example.com/a.png")},
	}, func(delta string) error {
		t.Fatalf("no delta expected, got %q", delta)
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrVisionNotSupported)

	current, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, current.Messages, "validation failure must not persist the user message")
}

func TestSendMessageStreamUpstreamErrorKeepsUserMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc, store := newTestChatService(server.URL)
	ctx := context.Background()
	session := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m1"})

	err := svc.SendMessageStream(ctx, ChatRequest{SessionID: session.ID, Message: "hello"}, func(string) error {
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrUpstreamService)

	current, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, current.Messages, 1, "user message persisted, partial assistant message not")
	assert.Equal(t, domain.RoleUser, current.Messages[0].Role)
}

func TestSendMessageStreamSessionDeletedMidStream(t *testing.T) {
	server := streamingServer(t, []string{
		`data: {"choices":[{"delta":{"content":"Hi"}}]}`,
		"data: [DONE]",
	})
	defer server.Close()

	svc, store := newTestChatService(server.URL)
	ctx := context.Background()
	session := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m1"})

	err := svc.SendMessageStream(ctx, ChatRequest{SessionID: session.ID, Message: "hello"}, func(string) error {
		return store.Delete(ctx, session)
	})
	require.NoError(t, err, "a session deleted mid-stream is not an error")

	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestUpdateSessionModel(t *testing.T) {
	svc, store := newTestChatService("")
	ctx := context.Background()
	session := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m1"})

	updated, err := svc.UpdateSessionModel(ctx, session.ID, "m2")
	require.NoError(t, err)
	assert.Equal(t, "m2", updated.SelectedModel)

	_, err = svc.UpdateSessionModel(ctx, session.ID, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidModel)
}

func TestListSessionsOrderedByUpdate(t *testing.T) {
	svc, store := newTestChatService("")
	ctx := context.Background()

	first := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m1"})
	second := seedSession(t, store, &domain.ChatSession{UserID: "u1", SelectedModel: "m1"})
	seedSession(t, store, &domain.ChatSession{UserID: "u2", SelectedModel: "m1"})

	// touch the older session so it moves to the front
	_, err := svc.RenameSession(ctx, first.ID, "renamed")
	require.NoError(t, err)

	sessions, err := svc.ListSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.ID, sessions[0].ID)
	assert.Equal(t, second.ID, sessions[1].ID)
}
