package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kemalefekolayli/madlen-case-study/internal/domain"
	"github.com/kemalefekolayli/madlen-case-study/internal/service"
)

type chatRequest struct {
	SessionID string                `json:"sessionId" binding:"required"`
	Message   string                `json:"message" binding:"required"`
	Model     string                `json:"model"`
	Images    []domain.ImageContent `json:"images"`
}

type chatResponse struct {
	SessionID        string             `json:"sessionId"`
	AssistantMessage domain.ChatMessage `json:"assistantMessage"`
	Model            string             `json:"model"`
	TotalMessages    int                `json:"totalMessages"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.chat.SendMessage(c.Request.Context(), service.ChatRequest{
		SessionID: req.SessionID,
		Message:   req.Message,
		Model:     req.Model,
		Images:    req.Images,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		SessionID:        result.SessionID,
		AssistantMessage: result.AssistantMessage,
		Model:            result.Model,
		TotalMessages:    result.TotalMessages,
	})
}

// sendMessageStream emits the assistant reply as a text/event-stream of
// content fragments. Any failure, including pre-flight validation, arrives as
// a single terminal error event, so clients always see either fragments
// ending cleanly or fragments ending in one error.
func (h *Handler) sendMessageStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		respondError(c, fmt.Errorf("streaming unsupported by response writer"))
		return
	}

	ctx := c.Request.Context()
	err := h.chat.SendMessageStream(ctx, service.ChatRequest{
		SessionID: req.SessionID,
		Message:   req.Message,
		Model:     req.Model,
		Images:    req.Images,
	}, func(delta string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		writeSSEData(c.Writer, delta)
		flusher.Flush()
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			// Client went away; nothing left to write.
			return
		}
		fmt.Fprintf(c.Writer, "event: error\ndata: %s\n\n", publicMessage(err))
		flusher.Flush()
	}
}

// writeSSEData writes one SSE event, splitting embedded newlines across
// data: lines so multi-line deltas survive the framing.
func writeSSEData(w http.ResponseWriter, data string) {
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
