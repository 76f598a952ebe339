package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kemalefekolayli/madlen-case-study/internal/domain"
)

type createSessionRequest struct {
	UserID string `json:"userId" binding:"required"`
	Model  string `json:"model" binding:"required"`
	Title  string `json:"title"`
}

type updateModelRequest struct {
	Model string `json:"model" binding:"required"`
}

type renameSessionRequest struct {
	Title string `json:"title" binding:"required"`
}

type sessionResponse struct {
	ID            string               `json:"id"`
	UserID        string               `json:"userId"`
	Title         string               `json:"title,omitempty"`
	SelectedModel string               `json:"selectedModel"`
	Messages      []domain.ChatMessage `json:"messages"`
	MessageCount  int                  `json:"messageCount"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

func toSessionResponse(s *domain.ChatSession) sessionResponse {
	return sessionResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		Title:         s.Title,
		SelectedModel: s.SelectedModel,
		Messages:      s.Messages,
		MessageCount:  len(s.Messages),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (h *Handler) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	session, err := h.chat.CreateSession(c.Request.Context(), req.UserID, req.Model, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionResponse(session))
}

func (h *Handler) getSessions(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondFieldError(c, "userId", "is required")
		return
	}

	sessions, err := h.chat.ListSessions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]sessionResponse, 0, len(sessions))
	for i := range sessions {
		responses = append(responses, toSessionResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *Handler) getSession(c *gin.Context) {
	session, err := h.chat.GetSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(session))
}

func (h *Handler) deleteSession(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondFieldError(c, "userId", "is required")
		return
	}

	if err := h.chat.DeleteSession(c.Request.Context(), c.Param("sessionId"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) updateSessionModel(c *gin.Context) {
	var req updateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	session, err := h.chat.UpdateSessionModel(c.Request.Context(), c.Param("sessionId"), req.Model)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(session))
}

func (h *Handler) renameSession(c *gin.Context) {
	var req renameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	session, err := h.chat.RenameSession(c.Request.Context(), c.Param("sessionId"), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(session))
}
