package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"modhub/backend/internal/apperr"
	"modhub/backend/internal/config"
	"modhub/backend/internal/models"
)

type rateRequest struct {
	Rating ratingValue `json:"rating"`
}

// ratingValue accepts 4 as well as "4", which older clients send from form inputs.
type ratingValue int

func (r *ratingValue) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*r = ratingValue(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*r = ratingValue(n)
	return nil
}

// ListMods returns every mod, or the matches of ?q= when it is set.
func (h *Handler) ListMods(c *gin.Context) {
	if q := c.Query("q"); q != "" {
		c.JSON(http.StatusOK, h.Storage.SearchMods(q))
		return
	}
	c.JSON(http.StatusOK, h.Storage.GetMods())
}

// SearchMods treats a missing query as "match everything".
func (h *Handler) SearchMods(c *gin.Context) {
	c.JSON(http.StatusOK, h.Storage.SearchMods(c.Query("q")))
}

func (h *Handler) GetMod(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	mod, err := h.Storage.GetModByID(id)
	if err != nil {
		h.respondError(c, notFound(err, "Mod not found"))
		return
	}
	c.JSON(http.StatusOK, mod)
}

func (h *Handler) CreateMod(c *gin.Context) {
	var in models.InsertMod
	if err := bindJSON(c, &in); err != nil {
		h.respondError(c, err)
		return
	}

	mod, err := h.Storage.CreateMod(in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mod)
}

func (h *Handler) UpdateMod(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var in models.UpdateMod
	if err := bindJSON(c, &in); err != nil {
		h.respondError(c, err)
		return
	}

	mod, err := h.Storage.UpdateMod(id, in)
	if err != nil {
		h.respondError(c, notFound(err, "Mod not found"))
		return
	}
	c.JSON(http.StatusOK, mod)
}

// DeleteMod removes the mod. Its comments stay in the store.
func (h *Handler) DeleteMod(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.Storage.DeleteMod(id); err != nil {
		h.respondError(c, notFound(err, "Mod not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RateMod(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.NewValidationError("Invalid rating").WithCause(err))
		return
	}
	rating := int(req.Rating)
	if rating < config.MinRating || rating > config.MaxRating {
		h.respondError(c, apperr.NewValidationError("Invalid rating"))
		return
	}

	mod, err := h.Storage.RateMod(id, rating)
	if err != nil {
		h.respondError(c, notFound(err, "Mod not found"))
		return
	}
	c.JSON(http.StatusOK, mod)
}
