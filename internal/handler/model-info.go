package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"merch-forecast/internal/dto"
)

// ModelInfo describes the loaded bundle: feature schema, required input
// columns, and the artifacts it was built from.
func (h *Handler) ModelInfo(c *gin.Context) {
	info, err := h.infoUC.Info(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModelInfoResponse(info))
}
