package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"modhub/backend/internal/apperr"
	"modhub/backend/internal/models"
)

const maxBioLength = 500

func (h *Handler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, publicUsers(h.Storage.GetAllUsers()))
}

func (h *Handler) ReportedUsers(c *gin.Context) {
	c.JSON(http.StatusOK, publicUsers(h.Storage.GetReportedUsers()))
}

// BanUser notifies the admins and the banned account itself.
func (h *Handler) BanUser(c *gin.Context) {
	h.setBanned(c, true)
}

func (h *Handler) UnbanUser(c *gin.Context) {
	h.setBanned(c, false)
}

func (h *Handler) setBanned(c *gin.Context, banned bool) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if actor := currentUser(c); banned && actor.ID == id {
		h.respondError(c, apperr.NewValidationError("You cannot ban yourself"))
		return
	}

	update, event := h.Storage.UnbanUser, models.EventUserUnbanned
	if banned {
		update, event = h.Storage.BanUser, models.EventUserBanned
	}

	user, err := update(id)
	if err != nil {
		h.respondError(c, notFound(err, "User not found"))
		return
	}

	pub := publicUser(user)
	h.Hub.PublishEvent(models.TopicAdmin, event, pub)
	h.Hub.PublishEvent(models.UserTopic(user.ID), event, pub)
	c.JSON(http.StatusOK, pub)
}

func (h *Handler) ApproveUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.Storage.ApproveUserProfile(id)
	if err != nil {
		h.respondError(c, notFound(err, "User not found"))
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// UpdateProfile takes a multipart form with "bio" and an optional "profilePicture"
// image. Users edit their own profile; admins may edit any. Every change sends the
// profile back to review.
func (h *Handler) UpdateProfile(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if actor := currentUser(c); actor.ID != id && !actor.IsAdmin {
		h.respondError(c, apperr.NewForbiddenError("You can only edit your own profile"))
		return
	}
	if _, err := h.Storage.GetUser(id); err != nil {
		h.respondError(c, notFound(err, "User not found"))
		return
	}

	h.limitUploadBody(c)

	var in models.UpdateUserProfile
	in.Bio = h.Filter.Clean(c.PostForm("bio"))
	if len([]rune(in.Bio)) > maxBioLength {
		h.respondError(c, apperr.NewValidationError("Bio is too long"))
		return
	}

	fh, err := c.FormFile("profilePicture")
	switch {
	case err == nil:
		url, err := h.Uploader.Save(fh)
		if err != nil {
			h.respondError(c, err)
			return
		}
		in.ProfilePicture = url
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.respondError(c, formFileError(err, "Invalid form data"))
		return
	}

	if in.Bio == "" && in.ProfilePicture == "" {
		h.respondError(c, apperr.NewValidationError("Nothing to update"))
		return
	}

	user, err := h.Storage.UpdateUserProfile(id, in)
	if err != nil {
		h.respondError(c, notFound(err, "User not found"))
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (h *Handler) ReportUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if currentUser(c).ID == id {
		h.respondError(c, apperr.NewValidationError("You cannot report yourself"))
		return
	}

	reason, err := h.reportReason(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.Storage.ReportUser(id, reason)
	if err != nil {
		h.respondError(c, notFound(err, "User not found"))
		return
	}

	pub := publicUser(user)
	h.Hub.PublishEvent(models.TopicAdmin, models.EventUserReported, pub)
	c.JSON(http.StatusOK, pub)
}
