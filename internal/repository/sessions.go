package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kemalefekolayli/madlen-case-study/internal/domain"
)

// SessionStore persists chat sessions as single-row documents. The message
// history lives in a jsonb column, so Save is one atomic upsert and
// concurrent saves of the same session are last-write-wins.
type SessionStore struct {
	db *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.ChatSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrSessionNotFound
	}

	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, title, selected_model, messages, created_at, updated_at
		FROM chat_sessions WHERE id = $1`, id)

	session, err := scanSession(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// Save upserts the session and refreshes its update timestamp. A session
// without an ID is assigned one.
func (s *SessionStore) Save(ctx context.Context, session *domain.ChatSession) (*domain.ChatSession, error) {
	now := time.Now()
	if session.ID == "" {
		session.ID = uuid.New().String()
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	messages, err := json.Marshal(session.Messages)
	if err != nil {
		return nil, fmt.Errorf("marshal messages: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO chat_sessions (id, user_id, title, selected_model, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			selected_model = EXCLUDED.selected_model,
			messages = EXCLUDED.messages,
			updated_at = EXCLUDED.updated_at`,
		session.ID, session.UserID, session.Title, session.SelectedModel,
		messages, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, session *domain.ChatSession) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, session.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM chat_sessions WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

func (s *SessionStore) ListByUser(ctx context.Context, userID string) ([]domain.ChatSession, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, title, selected_model, messages, created_at, updated_at
		FROM chat_sessions WHERE user_id = $1
		ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ChatSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (*domain.ChatSession, error) {
	var (
		session  domain.ChatSession
		messages []byte
	)
	err := row.Scan(&session.ID, &session.UserID, &session.Title, &session.SelectedModel,
		&messages, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(messages, &session.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	return &session, nil
}
