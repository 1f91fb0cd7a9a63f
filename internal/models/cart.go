package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one (cart, product) line. A product appears at most once per
// cart; quantity stays within 1..product.Stock.
type CartItem struct {
	ID        uuid.UUID `json:"id"`
	CartID    uuid.UUID `json:"cart_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
}

// Subtotal is the live product price times quantity. Cart aggregates are
// always computed from the current lines, never cached.
func (i *CartItem) Subtotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}

	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].Subtotal())
	}

	return total
}

func (c *Cart) ItemCount() int {
	var count int
	for i := range c.Items {
		count += c.Items[i].Quantity
	}

	return count
}

type AddToCartRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
}

type CartItemAction string

const (
	CartItemIncrease CartItemAction = "increase"
	CartItemDecrease CartItemAction = "decrease"
	CartItemRemove   CartItemAction = "remove"
)

type UpdateCartItemRequest struct {
	Action CartItemAction `json:"action" validate:"required,oneof=increase decrease remove"`
}

// CartView is what the rendering layer receives: the cart plus its live
// aggregates.
type CartView struct {
	Cart      *Cart           `json:"cart"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func NewCartView(cart *Cart) *CartView {
	return &CartView{
		Cart:      cart,
		Total:     cart.Total(),
		ItemCount: cart.ItemCount(),
	}
}
