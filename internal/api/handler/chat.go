package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ChatHistory returns the stored chat messages, oldest first.
func (h *Handler) ChatHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.Storage.GetChatMessages())
}
