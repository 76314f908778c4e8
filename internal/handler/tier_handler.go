package handler

import (
	"errors"
	"net/http"

	"go-ticket-sales-engine/internal/model"
	"go-ticket-sales-engine/internal/service"
	apperrors "go-ticket-sales-engine/pkg/app_errors"
	"go-ticket-sales-engine/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TierHandler struct {
	service service.TierService
}

func NewTierHandler(service service.TierService) *TierHandler {
	return &TierHandler{service: service}
}

func (h *TierHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("tiers", h.CreateTier)
		router.GET("tiers/:id", h.GetTier)
		router.GET("tiers/:id/availability", h.GetAvailability)
		router.GET("events/:event_id/tiers", h.ListTiers)
	}
}

func (h *TierHandler) CreateTier(c *gin.Context) {
	var req model.CreateTierRequest

	if err := BindJson(c, &req); err != nil {
		return
	}

	tier, err := h.service.Create(c, req)
	if err != nil {
		h.handleTierError(c, err, "CreateTier")
		return
	}

	c.JSON(http.StatusCreated, model.NewTierResponse(tier))
}

func (h *TierHandler) GetTier(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	tier, err := h.service.GetByID(c, id)
	if err != nil {
		h.handleTierError(c, err, "GetTier")
		return
	}

	c.JSON(http.StatusOK, model.NewTierResponse(tier))
}

func (h *TierHandler) GetAvailability(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	avail, err := h.service.Availability(c, id)
	if err != nil {
		h.handleTierError(c, err, "GetAvailability")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tier_id":   id,
		"remaining": avail.Remaining,
		"price":     avail.Price,
	})
}

func (h *TierHandler) ListTiers(c *gin.Context) {
	eventID, ok := ParamInt(c, "event_id")
	if !ok {
		return
	}

	tiers, err := h.service.ListByEvent(c, eventID)
	if err != nil {
		h.handleTierError(c, err, "ListTiers")
		return
	}

	responses := make([]model.TierResponse, 0, len(tiers))
	for _, tier := range tiers {
		responses = append(responses, model.NewTierResponse(tier))
	}

	c.JSON(http.StatusOK, responses)
}

func (h *TierHandler) handleTierError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrTierNotFound):
		log.Warn("Ticket tier not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket tier not found",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
