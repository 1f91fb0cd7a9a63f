package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/screwfx/storefront-platform/internal/api/middleware"
	"github.com/screwfx/storefront-platform/internal/errors"
	"github.com/screwfx/storefront-platform/internal/metrics"
	"github.com/screwfx/storefront-platform/internal/models"
	repository "github.com/screwfx/storefront-platform/internal/repositories"
)

const (
	orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderNumberLength  = 10
)

type OrderService interface {
	Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error)
	TrackOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.OrderTracking, error)
	PeekStatus(ctx context.Context, userID, orderID uuid.UUID) (*models.TrackingStatus, error)
	OverrideStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	orderRepo      repository.OrderRepository
	cartRepo       repository.CartRepository
	notifications  NotificationService
	statusInterval time.Duration
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, notifications NotificationService, statusInterval time.Duration) OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		cartRepo:       cartRepo,
		notifications:  notifications,
		statusInterval: statusInterval,
	}
}

// Checkout turns the user's cart into an order. The total and per-line unit
// prices are frozen from the live product prices at this moment; later price
// changes never touch existing orders. The card number is masked before it
// reaches the repository and the CVV is never persisted in cleartext.
func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.EmptyCartError("Your cart is empty")
		}
		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	if len(cart.Items) == 0 {
		return nil, errors.EmptyCartError("Your cart is empty")
	}

	orderNumber, err := generateOrderNumber()
	if err != nil {
		return nil, errors.InternalError("Failed to generate order number").WithError(err)
	}

	order := &models.Order{
		ID:          uuid.New(),
		UserID:      userID,
		OrderNumber: orderNumber,
		Status:      models.OrderStatusPending,
		Total:       cart.Total(),
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		PostalCode:  req.PostalCode,
		CardNumber:  maskCardNumber(req.CardNumber),
		CardExpiry:  req.CardExpiry,
		CVV:         maskCVV(req.CVV),
	}

	for i := range cart.Items {
		item := &cart.Items[i]

		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
		})
	}

	if err := s.orderRepo.CreateOrder(ctx, order, cart.ID); err != nil {
		if stdErrors.Is(err, repository.ErrInsufficientStock) {
			return nil, errors.OutOfStockError("Some items in your cart are no longer in stock").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to place order").WithError(err)
	}

	metrics.OrderPlaced()

	s.notifications.NotifyOrderStatus(ctx, order)

	return order, nil
}

// GetOrder returns one of the caller's orders with its items.
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Order not found")
		}
		return nil, errors.DatabaseError("Failed to fetch order").WithError(err)
	}

	if order.UserID != userID {
		return nil, errors.NotFoundError("Order not found")
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 50 {
		size = 10
	}

	orders, total, err := s.orderRepo.ListOrdersByUser(ctx, userID, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list orders").WithError(err)
	}

	return orders, total, nil
}

// TrackOrder is the tracking page read: it runs the lazy status advance, then
// returns the order together with the full status ladder and the position of
// the current status on it.
func (s *orderService) TrackOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.OrderTracking, error) {

	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	order, err = s.advanceStatus(ctx, order)
	if err != nil {
		return nil, err
	}

	tracking := &models.OrderTracking{
		Order:        order,
		CurrentIndex: order.Status.Index(),
	}

	for _, status := range models.OrderStatusFlow {
		tracking.Statuses = append(tracking.Statuses, models.StatusStep{
			Code:  status,
			Label: status.Label(),
		})
	}

	return tracking, nil
}

// PeekStatus serves the lightweight poll endpoint behind the tracking page.
// Like TrackOrder it advances the status first, so polling alone is enough to
// move an order through its lifecycle.
func (s *orderService) PeekStatus(ctx context.Context, userID, orderID uuid.UUID) (*models.TrackingStatus, error) {

	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	order, err = s.advanceStatus(ctx, order)
	if err != nil {
		return nil, err
	}

	return &models.TrackingStatus{
		Status:      order.Status,
		StatusLabel: order.Status.Label(),
		OrderNumber: order.OrderNumber,
	}, nil
}

// OverrideStatus sets an order's status unconditionally. Staff only; this is
// the one route into cancelled.
func (s *orderService) OverrideStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Order not found")
		}
		return nil, errors.DatabaseError("Failed to update order status").WithError(err)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch order").WithError(err)
	}

	s.notifications.NotifyOrderStatus(ctx, order)

	return order, nil
}

// advanceStatus moves the order at most ONE step towards where the elapsed
// time says it should be. Each status occupies one statusInterval window
// starting at the order's creation, so the target index is
// elapsed/statusInterval capped at the end of the flow; if the order sits
// below the target it advances a single step and the customer gets notified.
// Reaching the target takes as many reads as there are missed steps, which is
// what the tracking page's poll loop provides. Terminal orders never move.
//
// The step is a compare-and-set on the observed status. Losing the race to a
// concurrent poll is fine: the winner already advanced the order and sent the
// notification, so we just re-read.
func (s *orderService) advanceStatus(ctx context.Context, order *models.Order) (*models.Order, error) {

	if order.Status.IsTerminal() {
		return order, nil
	}

	currentIndex := order.Status.Index()
	if currentIndex < 0 {
		return order, nil
	}

	elapsed := time.Since(order.CreatedAt)

	targetIndex := int(elapsed / s.statusInterval)
	if targetIndex > len(models.OrderStatusFlow)-1 {
		targetIndex = len(models.OrderStatusFlow) - 1
	}

	if targetIndex <= currentIndex {
		return order, nil
	}

	next, ok := order.Status.Next()
	if !ok {
		return order, nil
	}

	advanced, err := s.orderRepo.AdvanceOrderStatus(ctx, order.ID, order.Status, next)
	if err != nil {
		return nil, errors.DatabaseError("Failed to advance order status").WithError(err)
	}

	if !advanced {
		// A concurrent read advanced the order first; pick up its result.
		fresh, err := s.orderRepo.GetOrderByID(ctx, order.ID)
		if err != nil {
			return nil, errors.DatabaseError("Failed to fetch order").WithError(err)
		}

		return fresh, nil
	}

	order.Status = next
	order.UpdatedAt = time.Now()

	metrics.OrderStatusAdvanced(string(next))

	middleware.LoggerFromContext(ctx).Info("Order status advanced",
		slog.String("orderNumber", order.OrderNumber),
		slog.String("status", string(next)))

	s.notifications.NotifyOrderStatus(ctx, order)

	return order, nil
}

// generateOrderNumber draws 10 characters from A-Z0-9. Generated once at
// checkout and never regenerated.
func generateOrderNumber() (string, error) {

	number := make([]byte, orderNumberLength)
	max := big.NewInt(int64(len(orderNumberCharset)))

	for i := range number {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate order number: %w", err)
		}

		number[i] = orderNumberCharset[n.Int64()]
	}

	return string(number), nil
}

// maskCardNumber keeps the first four digits and replaces the rest with a
// fixed "****". Empty input stays empty.
func maskCardNumber(cardNumber string) string {
	if cardNumber == "" {
		return ""
	}

	if len(cardNumber) <= 4 {
		return cardNumber + "****"
	}

	return cardNumber[:4] + "****"
}

// maskCVV discards the input entirely; only the fixed mask is ever stored.
func maskCVV(string) string {
	return "***"
}
