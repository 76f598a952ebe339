package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kemalefekolayli/madlen-case-study/internal/config"
	"github.com/kemalefekolayli/madlen-case-study/internal/domain"
)

// SessionStore is the persistence contract the chat service depends on.
// Save upserts and must refresh the session's update timestamp.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.ChatSession, error)
	Save(ctx context.Context, session *domain.ChatSession) (*domain.ChatSession, error)
	Delete(ctx context.Context, session *domain.ChatSession) error
	CountByUser(ctx context.Context, userID string) (int, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ChatSession, error)
}

type ChatRequest struct {
	SessionID string
	Message   string
	Model     string // optional override; session's model when empty
	Images    []domain.ImageContent
}

type ChatResult struct {
	SessionID        string
	AssistantMessage domain.ChatMessage
	Model            string
	TotalMessages    int
}

// ChatService drives the end-to-end chat lifecycle: validation, session
// mutation, the upstream call and persistence of both turns.
type ChatService struct {
	store                 SessionStore
	openRouter            *OpenRouterService
	catalog               *ModelCatalog
	maxSessionsPerUser    int
	maxMessagesPerSession int
}

func NewChatService(store SessionStore, openRouter *OpenRouterService, catalog *ModelCatalog, cfg *config.Config) *ChatService {
	return &ChatService{
		store:                 store,
		openRouter:            openRouter,
		catalog:               catalog,
		maxSessionsPerUser:    cfg.MaxSessionsPerUser,
		maxMessagesPerSession: cfg.MaxMessagesPerSession,
	}
}

func (s *ChatService) Models() []domain.AIModel {
	return s.catalog.List()
}

func (s *ChatService) VisionModels() []domain.AIModel {
	return s.catalog.VisionCapable()
}

func (s *ChatService) SupportsVision(modelID string) bool {
	return s.catalog.SupportsVision(modelID)
}

func (s *ChatService) CreateSession(ctx context.Context, userID, model, title string) (*domain.ChatSession, error) {
	if !s.catalog.IsValid(model) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidModel, model)
	}

	count, err := s.store.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= s.maxSessionsPerUser {
		return nil, fmt.Errorf("%w: maximum of %d sessions per user", domain.ErrSessionLimitReached, s.maxSessionsPerUser)
	}

	session, err := s.store.Save(ctx, &domain.ChatSession{
		UserID:        userID,
		Title:         title,
		SelectedModel: model,
		Messages:      []domain.ChatMessage{},
	})
	if err != nil {
		return nil, err
	}

	slog.Info("session created", "session_id", session.ID, "user_id", userID, "model", model)
	return session, nil
}

func (s *ChatService) GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	return s.store.Get(ctx, sessionID)
}

func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]domain.ChatSession, error) {
	return s.store.ListByUser(ctx, userID)
}

// DeleteSession removes a session. A session owned by another user is
// reported as not found.
func (s *ChatService) DeleteSession(ctx context.Context, sessionID, userID string) error {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return domain.ErrSessionNotFound
	}
	if err := s.store.Delete(ctx, session); err != nil {
		return err
	}
	slog.Info("session deleted", "session_id", sessionID, "user_id", userID)
	return nil
}

func (s *ChatService) UpdateSessionModel(ctx context.Context, sessionID, model string) (*domain.ChatSession, error) {
	if !s.catalog.IsValid(model) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidModel, model)
	}
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.SelectedModel = model
	return s.store.Save(ctx, session)
}

func (s *ChatService) RenameSession(ctx context.Context, sessionID, title string) (*domain.ChatSession, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Title = title
	return s.store.Save(ctx, session)
}

// SendMessage processes one blocking chat turn. The session is only persisted
// after the upstream call succeeds, so a failed turn leaves it untouched.
func (s *ChatService) SendMessage(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	session, model, err := s.prepareTurn(ctx, req)
	if err != nil {
		return nil, err
	}

	session.AddMessage(domain.ChatMessage{
		Role:      domain.RoleUser,
		Content:   req.Message,
		Images:    req.Images,
		Timestamp: time.Now(),
	})

	// History excludes the just-appended user message; the upstream client
	// appends the new turn itself.
	history := session.Messages[:len(session.Messages)-1]
	assistant, err := s.openRouter.Chat(ctx, model, history, req.Message, req.Images)
	if err != nil {
		return nil, err
	}
	assistant.Model = model

	session.AddMessage(*assistant)
	if req.Model != "" {
		session.SelectedModel = model
	}

	session, err = s.store.Save(ctx, session)
	if err != nil {
		return nil, err
	}

	slog.Info("message processed",
		"session_id", session.ID,
		"model", model,
		"total_messages", len(session.Messages),
	)

	return &ChatResult{
		SessionID:        session.ID,
		AssistantMessage: *assistant,
		Model:            model,
		TotalMessages:    len(session.Messages),
	}, nil
}

// SendMessageStream processes one streaming chat turn. Validation failures
// are returned before any delta is emitted; the handler layer turns them
// into a single terminal error event. Each decoded delta is buffered and
// forwarded to handle; once the stream completes the session is re-loaded
// and the full assistant message persisted. On a stream error no partial
// assistant message is saved. The user message persisted up front remains
// either way.
func (s *ChatService) SendMessageStream(ctx context.Context, req ChatRequest, handle StreamHandler) error {
	session, model, err := s.prepareTurn(ctx, req)
	if err != nil {
		return err
	}

	session.AddMessage(domain.ChatMessage{
		Role:      domain.RoleUser,
		Content:   req.Message,
		Images:    req.Images,
		Timestamp: time.Now(),
	})
	session, err = s.store.Save(ctx, session)
	if err != nil {
		return err
	}

	history := session.Messages[:len(session.Messages)-1]

	var full strings.Builder
	err = s.openRouter.ChatStream(ctx, model, history, req.Message, req.Images, func(delta string) error {
		full.WriteString(delta)
		return handle(delta)
	})
	if err != nil {
		slog.Error("streaming failed", "session_id", session.ID, "error", err)
		return err
	}

	// The session may have been modified while streaming; re-load before
	// appending the assistant turn.
	current, err := s.store.Get(ctx, session.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			slog.Warn("session deleted during stream, dropping assistant message", "session_id", session.ID)
			return nil
		}
		return err
	}

	current.AddMessage(domain.ChatMessage{
		Role:      domain.RoleAssistant,
		Content:   full.String(),
		Model:     model,
		Timestamp: time.Now(),
	})
	if _, err := s.store.Save(ctx, current); err != nil {
		return err
	}

	slog.Info("streaming complete", "session_id", session.ID, "chars", full.Len())
	return nil
}

// prepareTurn runs the shared pre-flight of both send paths: session lookup,
// message cap, model resolution and image validation. It does not mutate the
// store.
func (s *ChatService) prepareTurn(ctx context.Context, req ChatRequest) (*domain.ChatSession, string, error) {
	session, err := s.store.Get(ctx, req.SessionID)
	if err != nil {
		return nil, "", err
	}

	if len(session.Messages) >= s.maxMessagesPerSession {
		return nil, "", fmt.Errorf("%w: maximum of %d messages per session", domain.ErrMessageLimitReached, s.maxMessagesPerSession)
	}

	model := req.Model
	if model == "" {
		model = session.SelectedModel
	}
	if !s.catalog.IsValid(model) {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrInvalidModel, model)
	}

	if len(req.Images) > 0 {
		if !s.catalog.SupportsVision(model) {
			return nil, "", fmt.Errorf("%w: %s", domain.ErrVisionNotSupported, model)
		}
		if err := validateImages(req.Images); err != nil {
			return nil, "", err
		}
	}

	return session, model, nil
}

func validateImages(images []domain.ImageContent) error {
	for _, img := range images {
		if !img.IsValid() {
			return fmt.Errorf("%w: missing data or unsupported media type", domain.ErrInvalidImage)
		}
		if img.Type == domain.ImageTypeBase64 && img.EstimatedSize() > config.MaxImageSizeBytes {
			return fmt.Errorf("%w: limit is %d MB", domain.ErrImageTooLarge, config.MaxImageSizeBytes/1024/1024)
		}
	}
	return nil
}
