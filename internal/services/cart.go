package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/screwfx/storefront-platform/internal/errors"
	"github.com/screwfx/storefront-platform/internal/models"
	repository "github.com/screwfx/storefront-platform/internal/repositories"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.CartView, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddToCartRequest) (*models.CartView, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req *models.UpdateCartItemRequest) (*models.CartView, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartView, error) {

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	return models.NewCartView(cart), nil
}

// AddItem puts one unit of the product into the cart. If the product is
// already present the quantity goes up by one instead, but never past the
// product's current stock. A new line is created unconditionally; the stock
// cap applies only to increments, so checkout surfaces the shortage instead.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddToCartRequest) (*models.CartView, error) {

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found")
		}
		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		item := &cart.Items[i]
		if item.ProductID != req.ProductID {
			continue
		}

		if item.Quantity >= product.Stock {
			return nil, errors.OutOfStockError(fmt.Sprintf("Only %d of %q available", product.Stock, product.Name))
		}

		if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, item.Quantity+1); err != nil {
			return nil, errors.DatabaseError("Failed to update cart item").WithError(err)
		}

		item.Quantity++

		return models.NewCartView(cart), nil
	}

	newItem := models.CartItem{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: req.ProductID,
		Quantity:  1,
		Product:   product,
	}

	if err := s.cartRepo.AddItem(ctx, &newItem); err != nil {
		return nil, errors.DatabaseError("Failed to add item to cart").WithError(err)
	}

	cart.Items = append(cart.Items, newItem)

	return models.NewCartView(cart), nil
}

// UpdateItem applies one of the line actions: increase, decrease or remove.
// Decreasing a quantity of one removes the line. The item must belong to the
// caller's cart.
func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req *models.UpdateCartItemRequest) (*models.CartView, error) {

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.GetCartItem(ctx, itemID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Cart item not found")
		}
		return nil, errors.DatabaseError("Failed to fetch cart item").WithError(err)
	}

	if item.CartID != cart.ID {
		return nil, errors.NotFoundError("Cart item not found")
	}

	switch req.Action {
	case models.CartItemIncrease:
		if item.Product != nil && item.Quantity >= item.Product.Stock {
			return nil, errors.OutOfStockError(fmt.Sprintf("Only %d of %q available", item.Product.Stock, item.Product.Name))
		}

		if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, item.Quantity+1); err != nil {
			return nil, errors.DatabaseError("Failed to update cart item").WithError(err)
		}

	case models.CartItemDecrease:
		if item.Quantity <= 1 {
			if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
				return nil, errors.DatabaseError("Failed to remove cart item").WithError(err)
			}
			break
		}

		if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, item.Quantity-1); err != nil {
			return nil, errors.DatabaseError("Failed to update cart item").WithError(err)
		}

	case models.CartItemRemove:
		if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
			return nil, errors.DatabaseError("Failed to remove cart item").WithError(err)
		}

	default:
		return nil, errors.BadRequestError("Unknown cart action")
	}

	cart, err = s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to reload cart").WithError(err)
	}

	return models.NewCartView(cart), nil
}

func (s *cartService) getOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}

	if !stdErrors.Is(err, sql.ErrNoRows) {
		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	cart = &models.Cart{ID: uuid.New(), UserID: userID}

	if err := s.cartRepo.CreateCart(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to create cart").WithError(err)
	}

	return cart, nil
}
