package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"modhub/backend/internal/models"
)

// RegisterValidators adds the custom binding rules used by request models.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("ticketstatus", validateTicketStatus)
	}
}

func validateTicketStatus(fl validator.FieldLevel) bool {
	return models.TicketStatus(fl.Field().String()).Valid()
}
