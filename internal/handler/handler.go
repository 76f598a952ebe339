package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kemalefekolayli/madlen-case-study/internal/service"
)

// Handler holds the dependencies of the REST surface.
type Handler struct {
	chat *service.ChatService
}

func New(chat *service.ChatService) *Handler {
	return &Handler{chat: chat}
}

// Register mounts all routes under /api.
func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/models", h.getModels)
	api.GET("/models/vision", h.getVisionModels)
	api.GET("/models/:modelId/supports-vision", h.checkVisionSupport)

	api.POST("/sessions", h.createSession)
	api.GET("/sessions", h.getSessions)
	api.GET("/sessions/:sessionId", h.getSession)
	api.DELETE("/sessions/:sessionId", h.deleteSession)
	api.PATCH("/sessions/:sessionId/model", h.updateSessionModel)
	api.PATCH("/sessions/:sessionId/title", h.renameSession)
	api.GET("/history/:sessionId", h.getSession)

	api.POST("/chat", h.sendMessage)
	api.POST("/chat/stream", h.sendMessageStream)

	api.GET("/health", h.health)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "UP",
		"service":  "madlen-chat",
		"features": "multi-modal-vision",
	})
}
