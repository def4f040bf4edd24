package handler

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"merch-forecast/internal/csvio"
	"merch-forecast/internal/domain"
	"merch-forecast/internal/dto"
)

// Predict scores a batch of rows. The body is either a JSON array of
// objects or a raw CSV document, selected by Content-Type.
func (h *Handler) Predict(c *gin.Context) {
	input, err := h.decodeBatch(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	result, err := h.predictUC.Predict(c.Request.Context(), input)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	log.WithFields(log.Fields{
		"rows": result.Len(),
	}).Info("batch scored")

	c.JSON(http.StatusOK, dto.ToPredictResponse(result))
}

func (h *Handler) decodeBatch(c *gin.Context) (*domain.Table, error) {
	contentType := c.GetHeader("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}

	if contentType == "text/csv" {
		return csvio.Read(c.Request.Body)
	}

	var records []map[string]any
	if err := c.ShouldBindJSON(&records); err != nil {
		return nil, errInvalidJSONBody
	}
	return dto.TableFromRecords(records, h.predictUC.RequiredColumns()), nil
}
