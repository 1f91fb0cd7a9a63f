package service_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/screwfx/storefront-platform/internal/cache"
	appErrors "github.com/screwfx/storefront-platform/internal/errors"
	"github.com/screwfx/storefront-platform/internal/models"
	repoMocks "github.com/screwfx/storefront-platform/internal/repositories/mocks"
	service "github.com/screwfx/storefront-platform/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// fakeCache is an in-memory Cache for catalog tests.
type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, value any) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(raw, value)
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.entries[key] = raw

	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)

	return nil
}

func (c *fakeCache) Close() error { return nil }

func setupCatalogServiceTest(t *testing.T) (service.CatalogService, *repoMocks.ProductRepository, *repoMocks.CategoryRepository, cache.Cache) {
	mockProductRepo := repoMocks.NewProductRepository(t)
	mockCategoryRepo := repoMocks.NewCategoryRepository(t)
	c := newFakeCache()
	catalogService := service.NewCatalogService(mockProductRepo, mockCategoryRepo, c)

	return catalogService, mockProductRepo, mockCategoryRepo, c
}

func TestCreateProduct_SanitizesMarkup(t *testing.T) {
	// Arrange
	catalogService, mockProductRepo, _, _ := setupCatalogServiceTest(t)
	ctx := context.Background()

	mockProductRepo.On("CreateProduct", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "Cordless Drill" && p.Description == "18V, brushless"
	})).Return(nil).Once()

	// Act
	product, err := catalogService.CreateProduct(ctx, &models.CreateProductRequest{
		Name:        "<b>Cordless Drill</b>",
		Description: "<em>18V</em>, brushless",
		Price:       decimal.RequireFromString("129.99"),
		Stock:       10,
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "Cordless Drill", product.Name)
}

func TestCreateProduct_NegativePrice(t *testing.T) {
	// Arrange
	catalogService, mockProductRepo, _, _ := setupCatalogServiceTest(t)
	ctx := context.Background()

	// Act
	product, err := catalogService.CreateProduct(ctx, &models.CreateProductRequest{
		Name:  "Cordless Drill",
		Price: decimal.RequireFromString("-1.00"),
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, product)
	appErr, ok := appErrors.IsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeValidation, appErr.Code)
	mockProductRepo.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestGetProduct_SecondReadHitsCache(t *testing.T) {
	// Arrange
	catalogService, mockProductRepo, _, _ := setupCatalogServiceTest(t)
	ctx := context.Background()

	product := &models.Product{ID: 3, Name: "Claw Hammer", Price: decimal.RequireFromString("12.00"), Stock: 30}
	mockProductRepo.On("GetProductByID", ctx, int64(3)).Return(product, nil).Once()

	// Act
	first, err := catalogService.GetProduct(ctx, 3)
	assert.NoError(t, err)

	second, err := catalogService.GetProduct(ctx, 3)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
	mockProductRepo.AssertNumberOfCalls(t, "GetProductByID", 1)
}

func TestUpdateProduct_InvalidatesCache(t *testing.T) {
	// Arrange
	catalogService, mockProductRepo, _, _ := setupCatalogServiceTest(t)
	ctx := context.Background()

	stale := &models.Product{ID: 3, Name: "Claw Hammer", Price: decimal.RequireFromString("12.00"), Stock: 30}
	mockProductRepo.On("GetProductByID", ctx, int64(3)).Return(stale, nil).Times(3)
	mockProductRepo.On("UpdateProduct", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	_, err := catalogService.GetProduct(ctx, 3)
	assert.NoError(t, err)

	newName := "Framing Hammer"

	// Act
	updated, err := catalogService.UpdateProduct(ctx, 3, &models.UpdateProductRequest{Name: &newName})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "Framing Hammer", updated.Name)

	// The stale cache entry must be gone, so the next read goes to the store.
	_, err = catalogService.GetProduct(ctx, 3)
	assert.NoError(t, err)
	mockProductRepo.AssertNumberOfCalls(t, "GetProductByID", 3)
}

func TestDeleteCategory_NotFound(t *testing.T) {
	// Arrange
	catalogService, _, mockCategoryRepo, _ := setupCatalogServiceTest(t)
	ctx := context.Background()

	mockCategoryRepo.On("DeleteCategory", ctx, int64(44)).Return(sql.ErrNoRows).Once()

	// Act
	err := catalogService.DeleteCategory(ctx, 44)

	// Assert
	assert.Error(t, err)
	appErr, ok := appErrors.IsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
}
