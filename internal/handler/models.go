package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getModels(c *gin.Context) {
	c.JSON(http.StatusOK, h.chat.Models())
}

func (h *Handler) getVisionModels(c *gin.Context) {
	c.JSON(http.StatusOK, h.chat.VisionModels())
}

func (h *Handler) checkVisionSupport(c *gin.Context) {
	modelID := c.Param("modelId")
	c.JSON(http.StatusOK, gin.H{
		"modelId":        modelID,
		"supportsVision": h.chat.SupportsVision(modelID),
	})
}
