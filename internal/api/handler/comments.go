package handler

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"modhub/backend/internal/apperr"
	"modhub/backend/internal/models"
)

type createCommentRequest struct {
	Name      string `json:"name" binding:"max=64"`
	Content   string `json:"content" binding:"required,max=2000"`
	ReplyToID *int64 `json:"replyToId"`
}

type reportRequest struct {
	ReportReason string `json:"reportReason"`
}

func (h *Handler) ListComments(c *gin.Context) {
	modID, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if _, err := h.Storage.GetModByID(modID); err != nil {
		h.respondError(c, notFound(err, "Mod not found"))
		return
	}
	c.JSON(http.StatusOK, h.Storage.GetCommentsByModID(modID))
}

// CreateComment accepts visitors. Signed-in authors are linked by id and
// default to their username when no display name is sent.
func (h *Handler) CreateComment(c *gin.Context) {
	modID, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req createCommentRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	if _, err := h.Storage.GetModByID(modID); err != nil {
		h.respondError(c, notFound(err, "Mod not found"))
		return
	}

	in := models.InsertComment{
		ModID:   modID,
		Name:    h.Filter.Clean(req.Name),
		Content: h.Filter.Clean(req.Content),
	}
	if user := currentUser(c); user != nil {
		in.UserID = &user.ID
		if in.Name == "" {
			in.Name = user.Username
		}
	}
	if in.Name == "" || in.Content == "" {
		h.respondError(c, apperr.NewValidationError("Name and content are required"))
		return
	}

	if req.ReplyToID != nil {
		parent, err := h.Storage.GetCommentByID(*req.ReplyToID)
		if err != nil {
			h.respondError(c, notFound(err, "Parent comment not found"))
			return
		}
		// Відповіді дозволені лише на коментарі верхнього рівня того ж мода.
		if parent.ModID != modID || parent.ReplyToID != nil {
			h.respondError(c, apperr.NewValidationError("Replies must target a top-level comment of the same mod"))
			return
		}
		in.ReplyToID = &parent.ID
	}

	comment, err := h.Storage.CreateComment(in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) ReportComment(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	reason, err := h.reportReason(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	comment, err := h.Storage.ReportComment(id, reason)
	if err != nil {
		h.respondError(c, notFound(err, "Comment not found"))
		return
	}

	h.Hub.PublishEvent(models.TopicAdmin, models.EventCommentReported, comment)
	c.JSON(http.StatusOK, comment)
}

// ReportedComments lists reported comments, resolved ones included unless ?unresolved=true.
func (h *Handler) ReportedComments(c *gin.Context) {
	comments := h.Storage.GetReportedComments()
	if c.Query("unresolved") == "true" {
		comments = slices.DeleteFunc(comments, func(cm models.Comment) bool { return cm.IsResolved })
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) ResolveComment(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	comment, err := h.Storage.ResolveReportedComment(id)
	if err != nil {
		h.respondError(c, notFound(err, "Comment not found"))
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *Handler) CommentReplies(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if _, err := h.Storage.GetCommentByID(id); err != nil {
		h.respondError(c, notFound(err, "Comment not found"))
		return
	}
	c.JSON(http.StatusOK, h.Storage.GetRepliesByCommentID(id))
}

// reportReason reads and cleans {reportReason}; comment and user reports share it.
func (h *Handler) reportReason(c *gin.Context) (string, error) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", apperr.NewValidationError("A report reason is required").WithCause(err)
	}
	reason := h.Filter.Clean(req.ReportReason)
	if reason == "" {
		return "", apperr.NewValidationError("A report reason is required")
	}
	return reason, nil
}
