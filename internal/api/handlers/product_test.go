package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/screwfx/storefront-platform/internal/api/handlers"
	"github.com/screwfx/storefront-platform/internal/models"
	"github.com/screwfx/storefront-platform/internal/services/mocks"
	"github.com/screwfx/storefront-platform/internal/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListProductsHandler(t *testing.T) {
	t.Run("Browse Filters Reach The Catalog", func(t *testing.T) {
		// Arrange
		mockCatalogService := mocks.NewCatalogService(t)
		productHandler := handlers.NewProductHandler(mockCatalogService)

		mockCatalogService.On("ListProducts", mock.Anything, mock.MatchedBy(func(q *models.ProductQuery) bool {
			return q.Search == "drill" &&
				q.Sort == "price_desc" &&
				q.CategoryID != nil && *q.CategoryID == 3 &&
				q.PriceMin != nil && q.PriceMin.Equal(decimal.RequireFromString("5")) &&
				q.PriceMax != nil && q.PriceMax.Equal(decimal.RequireFromString("120.50"))
		}), 2, 10).Return([]*models.Product{}, 0, nil).Once()

		target := "/api/v1/products?q=drill&sort=price_desc&category=3&price_min=5&price_max=120.50&page=2&pageSize=10"
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, target, nil, nil)
		rr := httptest.NewRecorder()

		// Act
		productHandler.ListProducts().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Category Path Scopes The Listing", func(t *testing.T) {
		// Arrange
		mockCatalogService := mocks.NewCatalogService(t)
		productHandler := handlers.NewProductHandler(mockCatalogService)

		mockCatalogService.On("ListProducts", mock.Anything, mock.MatchedBy(func(q *models.ProductQuery) bool {
			return q.CategoryID != nil && *q.CategoryID == 7 && q.Search == ""
		}), 1, 20).Return([]*models.Product{}, 0, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/categories/7/products", nil,
			map[string]string{"id": "7"})
		rr := httptest.NewRecorder()

		// Act
		productHandler.ListProducts().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Bad Paging Falls Back To Defaults", func(t *testing.T) {
		// Arrange
		mockCatalogService := mocks.NewCatalogService(t)
		productHandler := handlers.NewProductHandler(mockCatalogService)

		mockCatalogService.On("ListProducts", mock.Anything, mock.AnythingOfType("*models.ProductQuery"), 1, 20).
			Return([]*models.Product{}, 0, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/products?page=-4&pageSize=9000", nil, nil)
		rr := httptest.NewRecorder()

		// Act
		productHandler.ListProducts().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
