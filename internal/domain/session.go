package domain

import (
	"strings"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatSession struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	Title         string        `json:"title,omitempty"`
	SelectedModel string        `json:"selectedModel"`
	Messages      []ChatMessage `json:"messages"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type ChatMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Images    []ImageContent `json:"images,omitempty"`
	Model     string         `json:"model,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// HasImages reports whether the message carries at least one image.
func (m ChatMessage) HasImages() bool {
	return len(m.Images) > 0
}

// IsMultiModal reports whether the message goes upstream as a multi-part
// message. Only user messages carry images upstream.
func (m ChatMessage) IsMultiModal() bool {
	return m.HasImages() && m.Role == RoleUser
}

// AddMessage appends a message and refreshes the update timestamp. The first
// user message also derives the session title when none was set.
func (s *ChatSession) AddMessage(msg ChatMessage) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()

	if s.Title == "" && msg.Role == RoleUser {
		s.Title = generateTitle(msg.Content)
	}
}

// generateTitle takes the first line of content, truncated to 50 characters.
func generateTitle(content string) string {
	if strings.TrimSpace(content) == "" {
		return "New Chat"
	}
	title := strings.SplitN(content, "\n", 2)[0]
	if len(title) > 50 {
		title = title[:47] + "..."
	}
	return title
}
