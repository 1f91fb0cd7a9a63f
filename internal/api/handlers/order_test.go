package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/screwfx/storefront-platform/internal/api/handlers"
	appErrors "github.com/screwfx/storefront-platform/internal/errors"
	"github.com/screwfx/storefront-platform/internal/models"
	repository "github.com/screwfx/storefront-platform/internal/repositories"
	repoMocks "github.com/screwfx/storefront-platform/internal/repositories/mocks"
	"github.com/screwfx/storefront-platform/internal/services/mocks"
	"github.com/screwfx/storefront-platform/internal/testutils"
	"github.com/screwfx/storefront-platform/internal/utils/response"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func checkoutBody(t *testing.T) *bytes.Reader {
	t.Helper()

	body, err := json.Marshal(models.CheckoutRequest{
		FullName:   "Ada Wong",
		Email:      "ada@example.com",
		Phone:      "07123456789",
		Address:    "1 Forge Lane",
		City:       "Sheffield",
		PostalCode: "S1 1AA",
		CardNumber: "4242424242424242",
		CardExpiry: "12/27",
		CVV:        "123",
	})
	assert.NoError(t, err)

	return bytes.NewReader(body)
}

func TestCheckoutHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("Success - Order Created", func(t *testing.T) {
		// Arrange
		mockOrderService := mocks.NewOrderService(t)
		mockRateRepo := repoMocks.NewRateLimitRepository(t)
		orderHandler := handlers.NewOrderHandler(mockOrderService, mockRateRepo)

		expectedOrder := &models.Order{
			ID:          uuid.New(),
			UserID:      userID,
			OrderNumber: "A1B2C3D4E5",
			Status:      models.OrderStatusPending,
			Total:       decimal.RequireFromString("25.00"),
		}

		mockOrderService.On("Checkout", mock.Anything, userID, mock.AnythingOfType("*models.CheckoutRequest")).
			Return(expectedOrder, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/checkout", checkoutBody(t), userID, nil)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		orderHandler.Checkout().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp response.APIResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("Failure - Empty Cart", func(t *testing.T) {
		// Arrange
		mockOrderService := mocks.NewOrderService(t)
		mockRateRepo := repoMocks.NewRateLimitRepository(t)
		orderHandler := handlers.NewOrderHandler(mockOrderService, mockRateRepo)

		mockOrderService.On("Checkout", mock.Anything, userID, mock.AnythingOfType("*models.CheckoutRequest")).
			Return(nil, appErrors.EmptyCartError("Your cart is empty")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/checkout", checkoutBody(t), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		orderHandler.Checkout().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp response.APIResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, appErrors.ErrCodeEmptyCart, resp.Error.Code)
	})

	t.Run("Failure - Out Of Stock", func(t *testing.T) {
		// Arrange
		mockOrderService := mocks.NewOrderService(t)
		mockRateRepo := repoMocks.NewRateLimitRepository(t)
		orderHandler := handlers.NewOrderHandler(mockOrderService, mockRateRepo)

		mockOrderService.On("Checkout", mock.Anything, userID, mock.AnythingOfType("*models.CheckoutRequest")).
			Return(nil, appErrors.OutOfStockError("Some items in your cart are no longer in stock")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/checkout", checkoutBody(t), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		orderHandler.Checkout().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)

		var resp response.APIResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, appErrors.ErrCodeOutOfStock, resp.Error.Code)
	})

	t.Run("Failure - Unauthenticated", func(t *testing.T) {
		// Arrange
		mockOrderService := mocks.NewOrderService(t)
		mockRateRepo := repoMocks.NewRateLimitRepository(t)
		orderHandler := handlers.NewOrderHandler(mockOrderService, mockRateRepo)

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/checkout", checkoutBody(t), nil)
		rr := httptest.NewRecorder()

		// Act
		orderHandler.Checkout().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestTrackOrderHandler(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("Success - Status Returned", func(t *testing.T) {
		// Arrange
		mockOrderService := mocks.NewOrderService(t)
		mockRateRepo := repoMocks.NewRateLimitRepository(t)
		orderHandler := handlers.NewOrderHandler(mockOrderService, mockRateRepo)

		mockRateRepo.On("Allow", mock.Anything, repository.ScopeTrackingPoll, userID.String()).
			Return(true, 4, 0, nil).Once()
		mockOrderService.On("PeekStatus", mock.Anything, userID, orderID).
			Return(&models.TrackingStatus{
				Status:      models.OrderStatusShipped,
				StatusLabel: "Shipped",
				OrderNumber: "A1B2C3D4E5",
			}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders/"+orderID.String()+"/tracking", nil, userID,
			map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		// Act
		orderHandler.TrackOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp response.APIResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

		data, err := json.Marshal(resp.Data)
		assert.NoError(t, err)

		var status models.TrackingStatus
		assert.NoError(t, json.Unmarshal(data, &status))
		assert.Equal(t, models.OrderStatusShipped, status.Status)
		assert.Equal(t, "Shipped", status.StatusLabel)
		assert.Equal(t, "A1B2C3D4E5", status.OrderNumber)
	})

	t.Run("Failure - Rate Limited", func(t *testing.T) {
		// Arrange
		mockOrderService := mocks.NewOrderService(t)
		mockRateRepo := repoMocks.NewRateLimitRepository(t)
		orderHandler := handlers.NewOrderHandler(mockOrderService, mockRateRepo)

		mockRateRepo.On("Allow", mock.Anything, repository.ScopeTrackingPoll, userID.String()).
			Return(false, 0, 9, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders/"+orderID.String()+"/tracking", nil, userID,
			map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		// Act
		orderHandler.TrackOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "9", rr.Header().Get("Retry-After"))
		mockOrderService.AssertNotCalled(t, "PeekStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Invalid Order ID", func(t *testing.T) {
		// Arrange
		mockOrderService := mocks.NewOrderService(t)
		mockRateRepo := repoMocks.NewRateLimitRepository(t)
		orderHandler := handlers.NewOrderHandler(mockOrderService, mockRateRepo)

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders/not-a-uuid/tracking", nil, userID,
			map[string]string{"id": "not-a-uuid"})
		rr := httptest.NewRecorder()

		// Act
		orderHandler.TrackOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	orderID := uuid.New()
	staffID := uuid.New()

	t.Run("Success - Cancelled", func(t *testing.T) {
		// Arrange
		mockOrderService := mocks.NewOrderService(t)
		mockRateRepo := repoMocks.NewRateLimitRepository(t)
		orderHandler := handlers.NewOrderHandler(mockOrderService, mockRateRepo)

		mockOrderService.On("OverrideStatus", mock.Anything, orderID, models.OrderStatusCancelled).
			Return(&models.Order{ID: orderID, Status: models.OrderStatusCancelled}, nil).Once()

		body, _ := json.Marshal(models.UpdateOrderStatusRequest{Status: models.OrderStatusCancelled})
		req := testutils.CreateStaffTestRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status",
			bytes.NewReader(body), staffID, map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		// Act
		orderHandler.UpdateOrderStatus().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Invalid Status Value", func(t *testing.T) {
		// Arrange
		mockOrderService := mocks.NewOrderService(t)
		mockRateRepo := repoMocks.NewRateLimitRepository(t)
		orderHandler := handlers.NewOrderHandler(mockOrderService, mockRateRepo)

		body := []byte(`{"status":"teleported"}`)
		req := testutils.CreateStaffTestRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status",
			bytes.NewReader(body), staffID, map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		// Act
		orderHandler.UpdateOrderStatus().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockOrderService.AssertNotCalled(t, "OverrideStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
