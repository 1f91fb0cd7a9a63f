package service_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	appErrors "github.com/screwfx/storefront-platform/internal/errors"
	"github.com/screwfx/storefront-platform/internal/models"
	repository "github.com/screwfx/storefront-platform/internal/repositories"
	repoMocks "github.com/screwfx/storefront-platform/internal/repositories/mocks"
	service "github.com/screwfx/storefront-platform/internal/services"
	svcMocks "github.com/screwfx/storefront-platform/internal/services/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const statusInterval = 30 * time.Second

func setupOrderServiceTest(t *testing.T) (service.OrderService, *repoMocks.OrderRepository, *repoMocks.CartRepository, *svcMocks.NotificationService) {
	mockOrderRepo := repoMocks.NewOrderRepository(t)
	mockCartRepo := repoMocks.NewCartRepository(t)
	mockNotifications := svcMocks.NewNotificationService(t)
	orderService := service.NewOrderService(mockOrderRepo, mockCartRepo, mockNotifications, statusInterval)

	return orderService, mockOrderRepo, mockCartRepo, mockNotifications
}

func testCart(userID uuid.UUID) *models.Cart {
	return &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.CartItem{
			{
				ID:        uuid.New(),
				ProductID: 1,
				Quantity:  2,
				Product:   &models.Product{ID: 1, Name: "Impact Driver", Price: decimal.RequireFromString("10.00"), Stock: 5},
			},
			{
				ID:        uuid.New(),
				ProductID: 2,
				Quantity:  1,
				Product:   &models.Product{ID: 2, Name: "Drill Bit Set", Price: decimal.RequireFromString("5.00"), Stock: 3},
			},
		},
	}
}

func testCheckoutRequest() *models.CheckoutRequest {
	return &models.CheckoutRequest{
		FullName:   "Ada Wong",
		Email:      "ada@example.com",
		Phone:      "07123456789",
		Address:    "1 Forge Lane",
		City:       "Sheffield",
		PostalCode: "S1 1AA",
		CardNumber: "4242424242424242",
		CardExpiry: "12/27",
		CVV:        "123",
	}
}

func TestCheckout_Success(t *testing.T) {
	// Arrange
	orderService, mockOrderRepo, mockCartRepo, mockNotifications := setupOrderServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()
	cart := testCart(userID)

	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()

	orderNumberPattern := regexp.MustCompile(`^[A-Z0-9]{10}$`)

	mockOrderRepo.On("CreateOrder", ctx, mock.AnythingOfType("*models.Order"), cart.ID).Return(nil).Run(func(args mock.Arguments) {
		orderArg := args.Get(1).(*models.Order)
		assert.Equal(t, userID, orderArg.UserID)
		assert.Equal(t, models.OrderStatusPending, orderArg.Status)
		assert.True(t, orderArg.Total.Equal(decimal.RequireFromString("25.00")), "total should be 25.00, got %s", orderArg.Total)
		assert.Regexp(t, orderNumberPattern, orderArg.OrderNumber)
		assert.Equal(t, "4242****", orderArg.CardNumber)
		assert.Equal(t, "***", orderArg.CVV)
		assert.Len(t, orderArg.Items, 2)
		assert.True(t, orderArg.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
		assert.True(t, orderArg.Items[1].UnitPrice.Equal(decimal.RequireFromString("5.00")))
	}).Once()

	mockNotifications.On("NotifyOrderStatus", ctx, mock.AnythingOfType("*models.Order")).Once()

	// Act
	order, err := orderService.Checkout(ctx, userID, testCheckoutRequest())

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestCheckout_MissingCardFieldsStillMasked(t *testing.T) {
	// Arrange
	orderService, mockOrderRepo, mockCartRepo, mockNotifications := setupOrderServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()
	cart := testCart(userID)

	req := testCheckoutRequest()
	req.CardNumber = ""
	req.CVV = ""

	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
	mockOrderRepo.On("CreateOrder", ctx, mock.AnythingOfType("*models.Order"), cart.ID).Return(nil).Once()
	mockNotifications.On("NotifyOrderStatus", ctx, mock.AnythingOfType("*models.Order")).Once()

	// Act
	order, err := orderService.Checkout(ctx, userID, req)

	// Assert
	assert.NoError(t, err)
	assert.Empty(t, order.CardNumber)
	assert.Equal(t, "***", order.CVV)
}

func TestCheckout_PriceChangeAfterCheckoutDoesNotAffectOrder(t *testing.T) {
	// Arrange
	orderService, mockOrderRepo, mockCartRepo, mockNotifications := setupOrderServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()
	cart := testCart(userID)

	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
	mockOrderRepo.On("CreateOrder", ctx, mock.AnythingOfType("*models.Order"), cart.ID).Return(nil).Once()
	mockNotifications.On("NotifyOrderStatus", ctx, mock.AnythingOfType("*models.Order")).Once()

	// Act
	order, err := orderService.Checkout(ctx, userID, testCheckoutRequest())
	assert.NoError(t, err)

	// A later catalog price change must not reach the snapshot.
	cart.Items[0].Product.Price = decimal.RequireFromString("99.99")

	// Assert
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("25.00")))
}

func TestCheckout_EmptyCart(t *testing.T) {
	// Arrange
	orderService, _, mockCartRepo, _ := setupOrderServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()

	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(&models.Cart{ID: uuid.New(), UserID: userID}, nil).Once()

	// Act
	order, err := orderService.Checkout(ctx, userID, testCheckoutRequest())

	// Assert
	assert.Error(t, err)
	assert.Nil(t, order)
	appErr, ok := appErrors.IsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeEmptyCart, appErr.Code)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	// Arrange
	orderService, mockOrderRepo, mockCartRepo, _ := setupOrderServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()
	cart := testCart(userID)

	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
	mockOrderRepo.On("CreateOrder", ctx, mock.AnythingOfType("*models.Order"), cart.ID).
		Return(repository.ErrInsufficientStock).Once()

	// Act
	order, err := orderService.Checkout(ctx, userID, testCheckoutRequest())

	// Assert
	assert.Error(t, err)
	assert.Nil(t, order)
	appErr, ok := appErrors.IsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeOutOfStock, appErr.Code)
}

func TestGetOrder_OtherUsersOrderIsHidden(t *testing.T) {
	// Arrange
	orderService, mockOrderRepo, _, _ := setupOrderServiceTest(t)
	ctx := context.Background()
	orderID := uuid.New()

	mockOrderRepo.On("GetOrderByID", ctx, orderID).
		Return(&models.Order{ID: orderID, UserID: uuid.New(), Status: models.OrderStatusPending}, nil).Once()

	// Act
	order, err := orderService.GetOrder(ctx, uuid.New(), orderID)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, order)
	appErr, ok := appErrors.IsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
}

func trackedOrder(userID uuid.UUID, status models.OrderStatus, age time.Duration) *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		UserID:      userID,
		OrderNumber: "A1B2C3D4E5",
		Status:      status,
		Total:       decimal.RequireFromString("25.00"),
		Email:       "ada@example.com",
		FullName:    "Ada Wong",
		CreatedAt:   time.Now().Add(-age),
	}
}

func TestPeekStatus_AdvancesExactlyOneStep(t *testing.T) {
	// A pending order past its first window moves to confirmed, never further,
	// even when several windows have elapsed.
	orderService, mockOrderRepo, _, mockNotifications := setupOrderServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()
	order := trackedOrder(userID, models.OrderStatusPending, 95*time.Second)

	mockOrderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()
	mockOrderRepo.On("AdvanceOrderStatus", ctx, order.ID, models.OrderStatusPending, models.OrderStatusConfirmed).
		Return(true, nil).Once()
	mockNotifications.On("NotifyOrderStatus", ctx, mock.MatchedBy(func(o *models.Order) bool {
		return o.Status == models.OrderStatusConfirmed
	})).Once()

	// Act
	status, err := orderService.PeekStatus(ctx, userID, order.ID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, status.Status)
	assert.Equal(t, "Confirmed", status.StatusLabel)
	assert.Equal(t, "A1B2C3D4E5", status.OrderNumber)
}

func TestPeekStatus_NoAdvanceWithinWindow(t *testing.T) {
	// Arrange
	orderService, mockOrderRepo, _, _ := setupOrderServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()
	order := trackedOrder(userID, models.OrderStatusPending, 10*time.Second)

	mockOrderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()

	// Act
	status, err := orderService.PeekStatus(ctx, userID, order.ID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, status.Status)
}

func TestPeekStatus_DeliveredNeverMoves(t *testing.T) {
	// Arrange
	orderService, mockOrderRepo, _, _ := setupOrderServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()
	order := trackedOrder(userID, models.OrderStatusDelivered, 24*time.Hour)

	mockOrderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()

	// Act
	status, err := orderService.PeekStatus(ctx, userID, order.ID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, status.Status)
}

func TestPeekStatus_CancelledNeverMoves(t *testing.T) {
	// Arrange
	orderService, mockOrderRepo, _, _ := setupOrderServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()
	order := trackedOrder(userID, models.OrderStatusCancelled, 24*time.Hour)

	mockOrderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()

	// Act
	status, err := orderService.PeekStatus(ctx, userID, order.ID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, status.Status)
}

func TestPeekStatus_LostRaceReReadsWithoutNotifying(t *testing.T) {
	// When a concurrent poll advanced the order first, the compare-and-set
	// misses; the loser must re-read and must not send its own notification.
	orderService, mockOrderRepo, _, mockNotifications := setupOrderServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()
	order := trackedOrder(userID, models.OrderStatusPending, 45*time.Second)

	winner := *order
	winner.Status = models.OrderStatusConfirmed

	mockOrderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()
	mockOrderRepo.On("AdvanceOrderStatus", ctx, order.ID, models.OrderStatusPending, models.OrderStatusConfirmed).
		Return(false, nil).Once()
	mockOrderRepo.On("GetOrderByID", ctx, order.ID).Return(&winner, nil).Once()

	// Act
	status, err := orderService.PeekStatus(ctx, userID, order.ID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, status.Status)
	mockNotifications.AssertNotCalled(t, "NotifyOrderStatus", mock.Anything, mock.Anything)
}

func TestTrackOrder_ReturnsStatusLadder(t *testing.T) {
	// Arrange
	orderService, mockOrderRepo, _, mockNotifications := setupOrderServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()
	order := trackedOrder(userID, models.OrderStatusConfirmed, 70*time.Second)

	mockOrderRepo.On("GetOrderByID", ctx, order.ID).Return(order, nil).Once()
	mockOrderRepo.On("AdvanceOrderStatus", ctx, order.ID, models.OrderStatusConfirmed, models.OrderStatusPreparing).
		Return(true, nil).Once()
	mockNotifications.On("NotifyOrderStatus", ctx, mock.AnythingOfType("*models.Order")).Once()

	// Act
	tracking, err := orderService.TrackOrder(ctx, userID, order.ID)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, tracking.Statuses, 6)
	assert.Equal(t, models.OrderStatusPending, tracking.Statuses[0].Code)
	assert.Equal(t, models.OrderStatusDelivered, tracking.Statuses[5].Code)
	assert.Equal(t, 2, tracking.CurrentIndex)
	assert.Equal(t, models.OrderStatusPreparing, tracking.Order.Status)
}

func TestOverrideStatus_Cancel(t *testing.T) {
	// Arrange
	orderService, mockOrderRepo, _, mockNotifications := setupOrderServiceTest(t)
	ctx := context.Background()
	orderID := uuid.New()

	cancelled := trackedOrder(uuid.New(), models.OrderStatusCancelled, time.Minute)
	cancelled.ID = orderID

	mockOrderRepo.On("UpdateOrderStatus", ctx, orderID, models.OrderStatusCancelled).Return(nil).Once()
	mockOrderRepo.On("GetOrderByID", ctx, orderID).Return(cancelled, nil).Once()
	mockNotifications.On("NotifyOrderStatus", ctx, cancelled).Once()

	// Act
	order, err := orderService.OverrideStatus(ctx, orderID, models.OrderStatusCancelled)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
}
