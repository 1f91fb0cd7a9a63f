package repository_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/screwfx/storefront-platform/internal/models"
	repository "github.com/screwfx/storefront-platform/internal/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProductRepoTest(t *testing.T) (repository.ProductRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	return repository.NewProductRepo(db), mock
}

func productRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "category_id", "name", "description", "price", "stock", "created_at", "updated_at",
	}).
		AddRow(int64(1), int64(2), "Impact Driver", "18V", "10.00", 5, now, now).
		AddRow(int64(2), nil, "Drill Bit Set", "Titanium", "5.00", 3, now, now)
}

func TestListProducts_NoFilters(t *testing.T) {
	// Arrange
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products p`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`ORDER BY p.name`).
		WithArgs(20, 0).
		WillReturnRows(productRows(now))

	// Act
	products, total, err := repo.ListProducts(ctx, &models.ProductQuery{}, 1, 20)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, products, 2)
	assert.Nil(t, products[1].CategoryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_SearchCategoryAndPriceBounds(t *testing.T) {
	// Arrange
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()
	now := time.Now()

	categoryID := int64(2)
	priceMin := decimal.RequireFromString("5.00")
	priceMax := decimal.RequireFromString("50.00")

	query := &models.ProductQuery{
		Search:     "drill",
		CategoryID: &categoryID,
		PriceMin:   &priceMin,
		PriceMax:   &priceMax,
		Sort:       "price_desc",
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products p WHERE \(p.name ILIKE \$1 OR p.description ILIKE \$1\) AND p.category_id = \$2 AND p.price >= \$3 AND p.price <= \$4`).
		WithArgs("%drill%", categoryID, priceMin, priceMax).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY p.price DESC`).
		WithArgs("%drill%", categoryID, priceMin, priceMax, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "category_id", "name", "description", "price", "stock", "created_at", "updated_at",
		}).AddRow(int64(1), categoryID, "Impact Driver", "18V", "10.00", 5, now, now))

	// Act
	products, total, err := repo.ListProducts(ctx, query, 1, 20)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, products, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductByID_WithoutCategory(t *testing.T) {
	// Arrange
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()
	now := time.Now()

	mock.ExpectQuery(`LEFT JOIN categories`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "category_id", "name", "description", "price", "stock", "created_at", "updated_at",
			"c_id", "c_name", "c_description",
		}).AddRow(int64(9), nil, "Angle Grinder", "900W", "89.00", 2, now, now, nil, nil, nil))

	// Act
	product, err := repo.GetProductByID(ctx, 9)

	// Assert
	assert.NoError(t, err)
	assert.Nil(t, product.CategoryID)
	assert.Nil(t, product.Category)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("89.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
