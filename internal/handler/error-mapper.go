package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"merch-forecast/internal/domain"
	"merch-forecast/internal/dto"
)

var errInvalidJSONBody = errors.New("request body is not a JSON array of records")

// mapDomainError translates domain errors into HTTP responses. Validation
// problems are the caller's to fix and come back verbatim; anything else is
// logged and reported as an internal error without leaking details.
func mapDomainError(c *gin.Context, err error) {
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Status:         "error",
			Message:        verr.Error(),
			MissingColumns: verr.MissingColumns,
		})
	case errors.Is(err, domain.ErrEmptyBatch):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Status:  "error",
			Message: domain.ErrEmptyBatch.Error(),
		})
	case errors.Is(err, domain.ErrBundleNotLoaded):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Status:  "error",
			Message: domain.ErrBundleNotLoaded.Error(),
		})
	default:
		log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Status:  "error",
			Message: "internal server error",
		})
	}
}
