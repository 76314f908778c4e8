package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go-ticket-sales-engine/internal/model"
	"go-ticket-sales-engine/internal/service"
	apperrors "go-ticket-sales-engine/pkg/app_errors"
	"go-ticket-sales-engine/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WaitlistHandler struct {
	service service.WaitlistService
}

func NewWaitlistHandler(service service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{service: service}
}

func (h *WaitlistHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("waitlist", h.JoinWaitlist)
		router.GET("waitlist/:id", h.GetEntry)
		router.DELETE("waitlist/:id", h.LeaveWaitlist)
		router.GET("events/:event_id/waitlist", h.ListWaitlist)
	}
}

func (h *WaitlistHandler) JoinWaitlist(c *gin.Context) {
	var req model.JoinWaitlistRequest

	if err := BindJson(c, &req); err != nil {
		return
	}

	entry, err := h.service.Join(c, req)
	if err != nil {
		h.handleWaitlistError(c, err, "JoinWaitlist")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *WaitlistHandler) GetEntry(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	entry, err := h.service.GetEntry(c, id)
	if err != nil {
		h.handleWaitlistError(c, err, "GetEntry")
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *WaitlistHandler) LeaveWaitlist(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	err := h.service.Leave(c, id)
	if err != nil {
		h.handleWaitlistError(c, err, "LeaveWaitlist")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *WaitlistHandler) ListWaitlist(c *gin.Context) {
	eventID, ok := ParamInt(c, "event_id")
	if !ok {
		return
	}

	// tier_id 不帶代表活動的一般候補
	var tierID *int
	if raw := c.Query("tier_id"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request format",
			})
			return
		}
		tierID = &val
	}

	entries, err := h.service.ListByScope(c, eventID, tierID)
	if err != nil {
		h.handleWaitlistError(c, err, "ListWaitlist")
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *WaitlistHandler) handleWaitlistError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrWaitlistEntryNotFound):
		log.Warn("Waitlist entry not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Waitlist entry not found",
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
