package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusInTransit OrderStatus = "in_transit"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatusFlow is the automatic progression, in order. Cancelled sits
// outside the flow: nothing transitions into it except a staff override.
var OrderStatusFlow = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusShipped,
	OrderStatusInTransit,
	OrderStatusDelivered,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Pending",
	OrderStatusConfirmed: "Confirmed",
	OrderStatusPreparing: "Preparing",
	OrderStatusShipped:   "Shipped",
	OrderStatusInTransit: "In Transit",
	OrderStatusDelivered: "Delivered",
	OrderStatusCancelled: "Cancelled",
}

// Index returns the position of s in the flow, or -1 for cancelled and
// unknown values.
func (s OrderStatus) Index() int {
	for i, status := range OrderStatusFlow {
		if status == s {
			return i
		}
	}

	return -1
}

func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}

	return string(s)
}

// IsTerminal reports whether no further automatic transition may happen.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Next returns the following status in the flow. ok is false for terminal
// and out-of-flow statuses.
func (s OrderStatus) Next() (OrderStatus, bool) {
	idx := s.Index()
	if idx < 0 || idx >= len(OrderStatusFlow)-1 {
		return s, false
	}

	return OrderStatusFlow[idx+1], true
}

type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"` // frozen at purchase time
	CreatedAt time.Time       `json:"created_at"`
}

// Order is the immutable checkout snapshot. Only Status ever changes after
// creation, and only through the tracking advance or a staff override.
type Order struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	OrderNumber string          `json:"order_number"`
	Status      OrderStatus     `json:"status"`
	Total       decimal.Decimal `json:"total"`
	FullName    string          `json:"full_name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	PostalCode  string          `json:"postal_code"`
	CardNumber  string          `json:"card_number,omitempty"` // stored masked: first 4 digits + "****"
	CardExpiry  string          `json:"card_expiry,omitempty"`
	CVV         string          `json:"-"` // never stored in cleartext
	Items       []OrderItem     `json:"items,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type CheckoutRequest struct {
	FullName   string `json:"full_name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,max=20"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=10"`
	CardNumber string `json:"card_number,omitempty" validate:"omitempty,numeric,min=12,max=16"`
	CardExpiry string `json:"card_expiry,omitempty" validate:"omitempty,max=5"`
	CVV        string `json:"cvv,omitempty" validate:"omitempty,numeric,len=3"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending confirmed preparing shipped in_transit delivered cancelled"`
}

// TrackingStatus is the poll endpoint payload.
type TrackingStatus struct {
	Status      OrderStatus `json:"status"`
	StatusLabel string      `json:"status_label"`
	OrderNumber string      `json:"order_number"`
}

type StatusStep struct {
	Code  OrderStatus `json:"code"`
	Label string      `json:"label"`
}

// OrderTracking is the tracking page data: the order, the full status list
// and the index of the current one.
type OrderTracking struct {
	Order        *Order       `json:"order"`
	Statuses     []StatusStep `json:"statuses"`
	CurrentIndex int          `json:"current_index"`
}
