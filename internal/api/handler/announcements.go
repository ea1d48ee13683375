package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"modhub/backend/internal/models"
)

type announcementRequest struct {
	Message string `json:"message" binding:"required,max=5000"`
}

func (h *Handler) ListAnnouncements(c *gin.Context) {
	c.JSON(http.StatusOK, h.Storage.GetAnnouncements())
}

// CreateAnnouncement stores the Markdown message with its sanitized HTML and
// broadcasts it before responding.
func (h *Handler) CreateAnnouncement(c *gin.Context) {
	var req announcementRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	html, err := h.Renderer.Render(req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}

	announcement, err := h.Storage.CreateAnnouncement(req.Message, html)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Hub.PublishEvent(models.TopicPublic, models.EventAnnouncement, announcement)
	c.JSON(http.StatusCreated, announcement)
}

func (h *Handler) DeleteAnnouncement(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.Storage.DeleteAnnouncement(id); err != nil {
		h.respondError(c, notFound(err, "Announcement not found"))
		return
	}

	payload := models.IDPayload{ID: id}
	h.Hub.PublishEvent(models.TopicPublic, models.EventAnnouncementDeleted, payload)
	c.JSON(http.StatusOK, payload)
}
