package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"modhub/backend/internal/apperr"
	"modhub/backend/internal/auth"
	"modhub/backend/internal/models"
	"modhub/backend/internal/storage"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Bio      string `json:"bio" binding:"max=500"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Register створює обліковий запис і одразу повертає токен.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	username := strings.TrimSpace(req.Username)
	if username != h.Filter.Clean(username) || h.Filter.IsProfane(username) {
		h.respondError(c, apperr.NewValidationError("Username is not allowed"))
		return
	}

	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		h.respondError(c, err)
		return
	}

	in := models.InsertUser{Username: username, PasswordHash: hash}
	if bio := h.Filter.Clean(req.Bio); bio != "" {
		in.Bio = &bio
	}

	user, err := h.Storage.CreateUser(in)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			err = apperr.NewConflictError("Username already taken").WithCause(err)
		}
		h.respondError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	invalid := apperr.NewUnauthorizedError("Invalid username or password")

	user, err := h.Storage.GetUserByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = invalid
		}
		h.respondError(c, err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		h.respondError(c, invalid)
		return
	}
	if user.IsBanned {
		h.respondError(c, apperr.NewForbiddenError("Your account is banned"))
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// CurrentUser returns the account behind the token.
func (h *Handler) CurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c).Public())
}

func (h *Handler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(status, authResponse{User: user.Public(), Token: token})
}
