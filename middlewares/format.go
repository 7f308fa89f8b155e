package middlewares

import (
	"CareSlot/models"
	"CareSlot/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// RespondJSON writes a JSON response to the client.
func RespondJSON(c *gin.Context, data interface{}, status int) {
	c.JSON(status, data)
}

// HttpError maps err to a status code and writes {"error": message}.
// Internal errors are logged and answered with a generic message.
func HttpError(c *gin.Context, err error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	c.JSON(status, gin.H{"error": message})
}

// BadRequest writes a 400 with message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func classify(err error) (int, string) {
	var fieldErr *utils.FieldError
	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, fieldErr.Message
	case errors.Is(err, models.ErrPatientNotFound), errors.Is(err, models.ErrAppointmentNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrSlotConflict), errors.Is(err, models.ErrPatientHasAppointments):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
