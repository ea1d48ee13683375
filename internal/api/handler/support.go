package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"modhub/backend/internal/apperr"
	"modhub/backend/internal/models"
)

type supportTicketRequest struct {
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

// CreateSupportTicket opens a ticket for the caller.
func (h *Handler) CreateSupportTicket(c *gin.Context) {
	var req supportTicketRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	in := models.InsertSupportTicket{
		UserID:  currentUser(c).ID,
		Subject: h.Filter.Clean(req.Subject),
		Message: h.Filter.Clean(req.Message),
	}
	if in.Subject == "" || in.Message == "" {
		h.respondError(c, apperr.NewValidationError("Subject and message are required"))
		return
	}

	ticket, err := h.Storage.CreateSupportTicket(in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Hub.PublishEvent(models.TopicAdmin, models.EventSupportTicketCreated, ticket)
	c.JSON(http.StatusCreated, ticket)
}

func (h *Handler) ListSupportTickets(c *gin.Context) {
	c.JSON(http.StatusOK, h.Storage.GetSupportTickets())
}

// GetSupportTicket is open to the ticket's owner and to admins.
func (h *Handler) GetSupportTicket(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ticket, err := h.Storage.GetSupportTicketByID(id)
	if err != nil {
		h.respondError(c, notFound(err, "Ticket not found"))
		return
	}
	if actor := currentUser(c); !actor.IsAdmin && actor.ID != ticket.UserID {
		h.respondError(c, apperr.NewForbiddenError("You cannot view this ticket"))
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// UpdateSupportTicket lets admins answer a ticket. Resolving it notifies the owner.
func (h *Handler) UpdateSupportTicket(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var in models.UpdateSupportTicket
	if err := bindJSON(c, &in); err != nil {
		h.respondError(c, err)
		return
	}
	in.ResponseMessage = h.Filter.Clean(in.ResponseMessage)

	ticket, err := h.Storage.UpdateSupportTicket(id, in)
	if err != nil {
		h.respondError(c, notFound(err, "Ticket not found"))
		return
	}

	if in.Status == models.TicketResolved {
		h.Hub.PublishEvent(models.UserTopic(ticket.UserID), models.EventSupportTicketResolved, ticket)
		h.Hub.PublishEvent(models.TopicAdmin, models.EventSupportTicketResolved, ticket)
	}
	c.JSON(http.StatusOK, ticket)
}
