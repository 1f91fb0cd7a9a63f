package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	appErrors "github.com/screwfx/storefront-platform/internal/errors"
	"github.com/screwfx/storefront-platform/internal/models"
	repoMocks "github.com/screwfx/storefront-platform/internal/repositories/mocks"
	service "github.com/screwfx/storefront-platform/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupCartServiceTest(t *testing.T) (service.CartService, *repoMocks.CartRepository, *repoMocks.ProductRepository) {
	mockCartRepo := repoMocks.NewCartRepository(t)
	mockProductRepo := repoMocks.NewProductRepository(t)
	cartService := service.NewCartService(mockCartRepo, mockProductRepo)

	return cartService, mockCartRepo, mockProductRepo
}

func TestGetCart_CreatesCartOnFirstAccess(t *testing.T) {
	// Arrange
	cartService, mockCartRepo, _ := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()

	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(nil, sql.ErrNoRows).Once()
	mockCartRepo.On("CreateCart", ctx, mock.MatchedBy(func(c *models.Cart) bool {
		return c.UserID == userID
	})).Return(nil).Once()

	// Act
	view, err := cartService.GetCart(ctx, userID)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, view)
	assert.Equal(t, 0, view.ItemCount)
	assert.True(t, view.Total.IsZero())
}

func TestAddItem_NewProduct(t *testing.T) {
	// Arrange
	cartService, mockCartRepo, mockProductRepo := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()

	product := &models.Product{ID: 7, Name: "Torque Wrench", Price: decimal.RequireFromString("42.50"), Stock: 4}
	cart := &models.Cart{ID: uuid.New(), UserID: userID}

	mockProductRepo.On("GetProductByID", ctx, int64(7)).Return(product, nil).Once()
	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
	mockCartRepo.On("AddItem", ctx, mock.MatchedBy(func(item *models.CartItem) bool {
		return item.ProductID == 7 && item.Quantity == 1 && item.CartID == cart.ID
	})).Return(nil).Once()

	// Act
	view, err := cartService.AddItem(ctx, userID, &models.AddToCartRequest{ProductID: 7})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, view.ItemCount)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("42.50")))
}

func TestAddItem_ExistingProductIncrements(t *testing.T) {
	// Arrange
	cartService, mockCartRepo, mockProductRepo := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()

	product := &models.Product{ID: 7, Name: "Torque Wrench", Price: decimal.RequireFromString("42.50"), Stock: 4}
	itemID := uuid.New()
	cart := &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.CartItem{
			{ID: itemID, ProductID: 7, Quantity: 2, Product: product},
		},
	}

	mockProductRepo.On("GetProductByID", ctx, int64(7)).Return(product, nil).Once()
	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
	mockCartRepo.On("UpdateItemQuantity", ctx, itemID, 3).Return(nil).Once()

	// Act
	view, err := cartService.AddItem(ctx, userID, &models.AddToCartRequest{ProductID: 7})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 3, view.ItemCount)
}

func TestAddItem_QuantityNeverExceedsStock(t *testing.T) {
	// Arrange
	cartService, mockCartRepo, mockProductRepo := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()

	product := &models.Product{ID: 7, Name: "Torque Wrench", Price: decimal.RequireFromString("42.50"), Stock: 2}
	cart := &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.CartItem{
			{ID: uuid.New(), ProductID: 7, Quantity: 2, Product: product},
		},
	}

	mockProductRepo.On("GetProductByID", ctx, int64(7)).Return(product, nil).Once()
	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()

	// Act
	view, err := cartService.AddItem(ctx, userID, &models.AddToCartRequest{ProductID: 7})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, view)
	appErr, ok := appErrors.IsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeOutOfStock, appErr.Code)
	mockCartRepo.AssertNotCalled(t, "UpdateItemQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddItem_ZeroStockProductStillCreatesLine(t *testing.T) {
	// The stock cap guards increments only. A first add always creates the
	// quantity-1 line; checkout is where the shortage surfaces.
	cartService, mockCartRepo, mockProductRepo := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()

	product := &models.Product{ID: 9, Name: "Angle Grinder", Price: decimal.RequireFromString("89.00"), Stock: 0}
	cart := &models.Cart{ID: uuid.New(), UserID: userID}

	mockProductRepo.On("GetProductByID", ctx, int64(9)).Return(product, nil).Once()
	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
	mockCartRepo.On("AddItem", ctx, mock.MatchedBy(func(item *models.CartItem) bool {
		return item.ProductID == 9 && item.Quantity == 1 && item.CartID == cart.ID
	})).Return(nil).Once()

	// Act
	view, err := cartService.AddItem(ctx, userID, &models.AddToCartRequest{ProductID: 9})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, view.ItemCount)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	// Arrange
	cartService, _, mockProductRepo := setupCartServiceTest(t)
	ctx := context.Background()

	mockProductRepo.On("GetProductByID", ctx, int64(99)).Return(nil, sql.ErrNoRows).Once()

	// Act
	view, err := cartService.AddItem(ctx, uuid.New(), &models.AddToCartRequest{ProductID: 99})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, view)
	appErr, ok := appErrors.IsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
}

func TestUpdateItem_DecreaseAtOneRemovesLine(t *testing.T) {
	// Arrange
	cartService, mockCartRepo, _ := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()

	product := &models.Product{ID: 7, Name: "Torque Wrench", Price: decimal.RequireFromString("42.50"), Stock: 4}
	itemID := uuid.New()
	cartID := uuid.New()
	cart := &models.Cart{
		ID:     cartID,
		UserID: userID,
		Items: []models.CartItem{
			{ID: itemID, CartID: cartID, ProductID: 7, Quantity: 1, Product: product},
		},
	}

	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
	mockCartRepo.On("GetCartItem", ctx, itemID).Return(&cart.Items[0], nil).Once()
	mockCartRepo.On("DeleteItem", ctx, itemID).Return(nil).Once()
	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(&models.Cart{ID: cartID, UserID: userID}, nil).Once()

	// Act
	view, err := cartService.UpdateItem(ctx, userID, itemID, &models.UpdateCartItemRequest{Action: models.CartItemDecrease})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 0, view.ItemCount)
}

func TestUpdateItem_ForeignItemIsHidden(t *testing.T) {
	// An item id belonging to another user's cart must look like a missing
	// item, not a permission error.
	cartService, mockCartRepo, _ := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()
	itemID := uuid.New()

	cart := &models.Cart{ID: uuid.New(), UserID: userID}
	foreignItem := &models.CartItem{ID: itemID, CartID: uuid.New(), ProductID: 3, Quantity: 1}

	mockCartRepo.On("GetCartByUserID", ctx, userID).Return(cart, nil).Once()
	mockCartRepo.On("GetCartItem", ctx, itemID).Return(foreignItem, nil).Once()

	// Act
	view, err := cartService.UpdateItem(ctx, userID, itemID, &models.UpdateCartItemRequest{Action: models.CartItemRemove})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, view)
	appErr, ok := appErrors.IsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
}
