package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"merch-forecast/internal/dto"
	"merch-forecast/internal/usecase"
)

// Handler wires the prediction use cases into gin routes.
type Handler struct {
	predictUC *usecase.PredictUseCase
	infoUC    *usecase.ModelInfoUseCase
}

func New(predictUC *usecase.PredictUseCase, infoUC *usecase.ModelInfoUseCase) *Handler {
	return &Handler{
		predictUC: predictUC,
		infoUC:    infoUC,
	}
}

// RegisterRoutes mounts the API endpoints on the given router group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/predict", h.Predict)
	r.GET("/model-info", h.ModelInfo)
}

// Health reports whether the service is up and the model bundle is loaded.
// It is mounted outside the versioned API group so probes stay stable.
func (h *Handler) Health(c *gin.Context) {
	info, err := h.infoUC.Info(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:  "error",
			Message: "model bundle is not loaded",
		})
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   "ok",
		Message:  "api is healthy, model bundle is loaded",
		Bundle:   info.Name,
		LoadedAt: info.LoadedAt.Format(time.RFC3339),
	})
}
