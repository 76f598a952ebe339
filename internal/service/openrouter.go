package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kemalefekolayli/madlen-case-study/internal/config"
	"github.com/kemalefekolayli/madlen-case-study/internal/domain"
)

// OpenRouterService talks to the OpenRouter chat-completions API, both
// blocking and streaming.
type OpenRouterService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOpenRouterService(apiKey, baseURL string) *OpenRouterService {
	return &OpenRouterService{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		// Timeouts are applied per call via context deadlines; streaming
		// requests outlive any sensible client-level timeout.
		httpClient: &http.Client{},
	}
}

// StreamHandler receives each decoded content delta in arrival order.
// Returning an error stops the stream.
type StreamHandler func(delta string) error

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// messageContent is the dynamic shape of an upstream message content field:
// a plain string for simple replies, or an array of typed parts.
type messageContent struct {
	Text  string
	Parts []contentPart
}

func decodeMessageContent(raw json.RawMessage) (messageContent, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return messageContent{}, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return messageContent{Text: text}, nil
	}
	var parts []contentPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		return messageContent{}, fmt.Errorf("decode message content: %w", err)
	}
	return messageContent{Parts: parts}, nil
}

// Flatten joins the text of all parts, or returns the plain text.
func (c messageContent) Flatten() string {
	if c.Parts == nil {
		return c.Text
	}
	var sb strings.Builder
	for _, p := range c.Parts {
		if p.Type == "text" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Chat sends a non-streaming completion request and returns the assistant
// message from the first choice.
func (s *OpenRouterService) Chat(ctx context.Context, model string, history []domain.ChatMessage, userText string, images []domain.ImageContent) (*domain.ChatMessage, error) {
	if s.apiKey == "" {
		return nil, domain.ErrAPIKeyNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	payload := chatCompletionRequest{
		Model:       model,
		Messages:    buildMessageList(history, userText, images),
		Stream:      false,
		MaxTokens:   config.MaxTokens,
		Temperature: config.Temperature,
	}

	resp, err := s.post(ctx, payload, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrUpstreamService, err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", domain.ErrUpstreamService, err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response from AI model", domain.ErrUpstreamService)
	}

	content, err := decodeMessageContent(chatResp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamService, err)
	}

	slog.Info("chat completion received",
		"model", model,
		"total_tokens", chatResp.Usage.TotalTokens,
	)

	return &domain.ChatMessage{
		Role:      domain.RoleAssistant,
		Content:   content.Flatten(),
		Timestamp: time.Now(),
	}, nil
}

// ChatStream sends a streaming completion request and invokes handle for
// every decoded content delta. Blank deltas are dropped before reaching the
// handler. The whole stream is gated by a single total timeout.
func (s *OpenRouterService) ChatStream(ctx context.Context, model string, history []domain.ChatMessage, userText string, images []domain.ImageContent, handle StreamHandler) error {
	if s.apiKey == "" {
		return domain.ErrAPIKeyNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, config.StreamTimeout)
	defer cancel()

	payload := chatCompletionRequest{
		Model:       model,
		Messages:    buildMessageList(history, userText, images),
		Stream:      true,
		MaxTokens:   config.MaxTokens,
		Temperature: config.Temperature,
	}

	resp, err := s.post(ctx, payload, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		delta := extractContentFromChunk(scanner.Text())
		if delta == "" {
			continue
		}
		if err := handle(delta); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: streaming failed: %v", domain.ErrUpstreamService, err)
	}
	return nil
}

func (s *OpenRouterService) post(ctx context.Context, payload chatCompletionRequest, stream bool) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("HTTP-Referer", "http://localhost:8080")
	req.Header.Set("X-Title", "Madlen Chat")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamService, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
	return fmt.Errorf("%w: upstream returned %d: %s", domain.ErrUpstreamService, resp.StatusCode, strings.TrimSpace(string(detail)))
}
