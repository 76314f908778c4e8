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

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(service service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

func (h *PurchaseHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("quotes", h.CreateQuote)
		router.POST("purchases", h.CreatePurchase)
		router.GET("tickets/:id", h.GetTicket)
		router.GET("events/:event_id/tickets", h.ListTickets)
		router.PUT("tickets/:id/cancel", h.CancelTicket)
	}
}

func (h *PurchaseHandler) CreateQuote(c *gin.Context) {
	var req model.QuoteRequest

	if err := BindJson(c, &req); err != nil {
		return
	}

	quote, err := h.service.Quote(c, req)
	if err != nil {
		h.handlePurchaseError(c, err, "CreateQuote")
		return
	}

	c.JSON(http.StatusOK, model.NewQuoteResponse(quote))
}

func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var req model.PurchaseRequest

	if err := BindJson(c, &req); err != nil {
		return
	}

	ticket, err := h.service.Purchase(c, req)
	if err != nil {
		h.handlePurchaseError(c, err, "CreatePurchase")
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

func (h *PurchaseHandler) GetTicket(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	ticket, err := h.service.GetTicket(c, id)
	if err != nil {
		h.handlePurchaseError(c, err, "GetTicket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *PurchaseHandler) ListTickets(c *gin.Context) {
	eventID, ok := ParamInt(c, "event_id")
	if !ok {
		return
	}

	tickets, err := h.service.ListTickets(c, eventID)
	if err != nil {
		h.handlePurchaseError(c, err, "ListTickets")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func (h *PurchaseHandler) CancelTicket(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	ticket, err := h.service.CancelTicket(c, id)
	if err != nil {
		h.handlePurchaseError(c, err, "CancelTicket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// Helper functions

func (h *PurchaseHandler) handlePurchaseError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))

	var insufficientErr *apperrors.InsufficientInventoryError
	var limitErr *apperrors.PerOrderLimitError

	switch {
	case errors.As(err, &insufficientErr):
		log.Warn("Insufficient inventory")
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Insufficient inventory",
			"tier_id":   insufficientErr.TierID,
			"available": insufficientErr.Available,
		})
	case errors.As(err, &limitErr):
		log.Warn("Per-order limit exceeded")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Per-order limit exceeded",
			"tier_id": limitErr.TierID,
			"limit":   limitErr.Limit,
		})
	case errors.Is(err, apperrors.ErrPromoNotFound):
		log.Warn("Promo code not found")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Promo code not found",
		})
	case errors.Is(err, apperrors.ErrPromoExpired):
		log.Warn("Promo code expired")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Promo code expired",
		})
	case errors.Is(err, apperrors.ErrPromoExhausted):
		log.Warn("Promo code usage exhausted")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Promo code usage exhausted",
		})
	case errors.Is(err, apperrors.ErrTierNotFound):
		log.Warn("Ticket tier not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket tier not found",
		})
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket not found",
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
