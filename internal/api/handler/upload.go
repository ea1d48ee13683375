package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"modhub/backend/internal/apperr"
)

// Upload stores the multipart "file" image and returns its public URL.
func (h *Handler) Upload(c *gin.Context) {
	h.limitUploadBody(c)

	fh, err := c.FormFile("file")
	if err != nil {
		h.respondError(c, formFileError(err, "No file uploaded"))
		return
	}

	url, err := h.Uploader.Save(fh)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// limitUploadBody stops reading the request once it is too big to hold an
// acceptable file, before multipart parsing spills it to disk.
func (h *Handler) limitUploadBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Uploader.BodyLimit())
}

func formFileError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.NewUploadError("File too large", true).WithCause(err)
	}
	return apperr.NewValidationError(message).WithCause(err)
}
