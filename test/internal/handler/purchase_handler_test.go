package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-ticket-sales-engine/internal/handler"
	"go-ticket-sales-engine/internal/model"
	mocks "go-ticket-sales-engine/test/internal/mocks/services"

	apperrors "go-ticket-sales-engine/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupPurchaseTestRouter(mockService *mocks.PurchaseServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	purchaseHandler := handler.NewPurchaseHandler(mockService)
	purchaseHandler.RegisterRoutes(router)

	return router
}

func validPurchaseRequest() model.PurchaseRequest {
	return model.PurchaseRequest{
		EventID: 1,
		Items:   []model.LineItem{{TierID: 1, Quantity: 2}},
		Buyer:   model.BuyerInfo{Name: "Alice", Email: "alice@test.com"},
	}
}

func TestCreatePurchase(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		mockService.On("Purchase", mock.Anything, mock.Anything).Return(&model.Ticket{
			ID:            1,
			EventID:       1,
			BuyerName:     "Alice",
			TotalPrice:    decimal.RequireFromString("42.00"),
			PaymentStatus: model.PaymentStatusPending,
		}, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/purchases", validPurchaseRequest())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - InsufficientInventory", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		mockService.On("Purchase", mock.Anything, mock.Anything).Return(nil, &apperrors.InsufficientInventoryError{
			TierID: 1, Requested: 5, Available: 2,
		}).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/purchases", validPurchaseRequest())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		// 結構化錯誤要帶 tier_id 與剩餘量
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"tier_id":1`)
		assert.Contains(t, w.Body.String(), `"available":2`)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - PerOrderLimit", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		mockService.On("Purchase", mock.Anything, mock.Anything).Return(nil, &apperrors.PerOrderLimitError{
			TierID: 1, Requested: 10, Limit: 4,
		}).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/purchases", validPurchaseRequest())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"limit":4`)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - PromoExhausted", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		mockService.On("Purchase", mock.Anything, mock.Anything).Return(nil, apperrors.ErrPromoExhausted).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/purchases", validPurchaseRequest())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - TierNotFound", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		mockService.On("Purchase", mock.Anything, mock.Anything).Return(nil, apperrors.ErrTierNotFound).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/purchases", validPurchaseRequest())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrInternalServerError", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		mockService.On("Purchase", mock.Anything, mock.Anything).Return(nil, apperrors.ErrInternalServerError).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/purchases", validPurchaseRequest())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - BindingError", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		req := createJSONHTTPRequest("POST", "/api/v1/purchases", InvalidJSON)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Purchase")
	})
}

func TestCreateQuote(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		mockService.On("Quote", mock.Anything, mock.Anything).Return(&model.PriceQuote{
			Subtotal:       decimal.RequireFromString("600"),
			GroupDiscount:  decimal.RequireFromString("60"),
			PromoDiscount:  decimal.RequireFromString("27"),
			TicketSubtotal: decimal.RequireFromString("513"),
			ServiceFee:     decimal.RequireFromString("25.65"),
			Total:          decimal.RequireFromString("538.65"),
		}, nil).Once()

		quoteRequest := model.QuoteRequest{
			EventID:   1,
			Items:     []model.LineItem{{TierID: 1, Quantity: 12}},
			PromoCode: "SAVE5",
		}

		req := createJSONHTTPRequest("POST", "/api/v1/quotes", quoteRequest)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":"538.65"`)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - PromoExpired", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		mockService.On("Quote", mock.Anything, mock.Anything).Return(nil, apperrors.ErrPromoExpired).Once()

		quoteRequest := model.QuoteRequest{
			EventID:   1,
			Items:     []model.LineItem{{TierID: 1, Quantity: 1}},
			PromoCode: "GONE",
		}

		req := createJSONHTTPRequest("POST", "/api/v1/quotes", quoteRequest)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestGetTicket(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		mockService.On("GetTicket", mock.Anything, 1).Return(&model.Ticket{
			ID: 1, EventID: 1, BuyerName: "Alice",
		}, nil).Once()

		req, _ := http.NewRequest("GET", "/api/v1/tickets/1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - NotFound", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		mockService.On("GetTicket", mock.Anything, 999).Return(nil, apperrors.ErrTicketNotFound).Once()

		req, _ := http.NewRequest("GET", "/api/v1/tickets/999", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - BadID", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		req, _ := http.NewRequest("GET", "/api/v1/tickets/abc", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetTicket")
	})
}

func TestCancelTicket(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		mockService.On("CancelTicket", mock.Anything, 1).Return(&model.Ticket{
			ID: 1, EventID: 1, PaymentStatus: model.PaymentStatusCancelled,
		}, nil).Once()

		req, _ := http.NewRequest("PUT", "/api/v1/tickets/1/cancel", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - AlreadyCancelled", func(t *testing.T) {
		mockService := mocks.NewPurchaseServiceMock()
		router := setupPurchaseTestRouter(mockService)

		mockService.On("CancelTicket", mock.Anything, 1).Return(nil, apperrors.ErrTicketNotFound).Once()

		req, _ := http.NewRequest("PUT", "/api/v1/tickets/1/cancel", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})
}
