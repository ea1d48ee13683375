package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"modhub/backend/internal/apperr"
	"modhub/backend/internal/auth"
	"modhub/backend/internal/chathub"
	"modhub/backend/internal/logger"
	"modhub/backend/internal/markup"
	"modhub/backend/internal/models"
	"modhub/backend/internal/moderation"
	"modhub/backend/internal/storage"
	"modhub/backend/internal/upload"
)

const (
	ctxUserKey   = "user"
	ctxUserIDKey = "user_id"
)

// Handler містить усі залежності HTTP-шару.
type Handler struct {
	Storage  storage.Storage
	Hub      *chathub.ManagerService
	Tokens   *auth.TokenService
	Enforcer *auth.Enforcer
	Filter   *moderation.Filter
	Renderer *markup.Renderer
	Uploader *upload.Uploader

	bcryptCost     int
	allowedOrigins []string
	log            *slog.Logger
}

// Options are the tunables of the HTTP layer that come from configuration.
type Options struct {
	BcryptCost     int
	AllowedOrigins []string
}

func NewHandler(s storage.Storage, hub *chathub.ManagerService, tokens *auth.TokenService, enforcer *auth.Enforcer,
	filter *moderation.Filter, renderer *markup.Renderer, uploader *upload.Uploader, opts Options) *Handler {
	return &Handler{
		Storage:        s,
		Hub:            hub,
		Tokens:         tokens,
		Enforcer:       enforcer,
		Filter:         filter,
		Renderer:       renderer,
		Uploader:       uploader,
		bcryptCost:     opts.BcryptCost,
		allowedOrigins: opts.AllowedOrigins,
		log:            logger.WithComponent("http"),
	}
}

// currentUser returns the authenticated account, nil for visitors.
func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NewValidationError("Invalid id")
	}
	return id, nil
}

// bindJSON decodes the body into obj and turns binding failures into validation errors.
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, fe.Field()+" failed on '"+fe.Tag()+"'")
			}
			return apperr.NewValidationError("Invalid request body", details...)
		}
		return apperr.NewValidationError("Invalid request body").WithCause(err)
	}
	return nil
}

// respondError writes err as {message} with the matching status.
func (h *Handler) respondError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			appErr = apperr.NewNotFoundError("Not found").WithCause(err)
		case errors.Is(err, storage.ErrConflict):
			appErr = apperr.NewConflictError("Already exists").WithCause(err)
		case errors.Is(err, storage.ErrInvalidRating):
			appErr = apperr.NewValidationError("Invalid rating").WithCause(err)
		default:
			appErr = apperr.NewInternalError("Internal server error").WithCause(err)
		}
	}

	if appErr.Code >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}

	body := gin.H{"message": appErr.Message}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.AbortWithStatusJSON(appErr.Code, body)
}

// notFound keeps the client-facing message specific to the entity.
func notFound(err error, message string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NewNotFoundError(message).WithCause(err)
	}
	return err
}

func publicUsers(users []models.User) []models.User {
	out := make([]models.User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out
}

func publicUser(u *models.User) *models.User {
	p := u.Public()
	return &p
}
