package service

import (
	"strings"

	"github.com/kemalefekolayli/madlen-case-study/internal/domain"
)

// Wire message format for the OpenRouter chat-completions endpoint. Content
// is either a plain string or an array of typed parts for multi-modal
// messages.
type wireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// buildMessageList serializes the conversation for the provider: history
// first (oldest to newest), the new user turn last.
func buildMessageList(history []domain.ChatMessage, userText string, images []domain.ImageContent) []wireMessage {
	messages := make([]wireMessage, 0, len(history)+1)

	for _, m := range history {
		if m.IsMultiModal() {
			messages = append(messages, buildMultiModalMessage(m.Role, m.Content, m.Images))
		} else {
			messages = append(messages, wireMessage{Role: m.Role, Content: m.Content})
		}
	}

	if len(images) > 0 {
		messages = append(messages, buildMultiModalMessage(domain.RoleUser, userText, images))
	} else {
		messages = append(messages, wireMessage{Role: domain.RoleUser, Content: userText})
	}

	return messages
}

// buildMultiModalMessage emits the text part first (when non-blank), then one
// image part per image in input order. Inline images become data URIs.
func buildMultiModalMessage(role, text string, images []domain.ImageContent) wireMessage {
	parts := make([]contentPart, 0, len(images)+1)

	if strings.TrimSpace(text) != "" {
		parts = append(parts, contentPart{Type: "text", Text: text})
	}

	for _, img := range images {
		url := img.Data
		if img.Type == domain.ImageTypeBase64 {
			url = "data:" + img.MediaType + ";base64," + img.Data
		}
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: url, Detail: "auto"},
		})
	}

	return wireMessage{Role: role, Content: parts}
}
