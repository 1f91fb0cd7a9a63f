package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"log/slog"
	"strconv"

	"github.com/microcosm-cc/bluemonday"
	"github.com/screwfx/storefront-platform/internal/api/middleware"
	"github.com/screwfx/storefront-platform/internal/cache"
	"github.com/screwfx/storefront-platform/internal/errors"
	"github.com/screwfx/storefront-platform/internal/models"
	repository "github.com/screwfx/storefront-platform/internal/repositories"
)

// CatalogService covers products and categories. Reads of single products go
// through the cache; every write invalidates the affected key.
type CatalogService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, query *models.ProductQuery, page, size int) ([]*models.Product, int, error)

	CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, req *models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cache        cache.Cache
	sanitizer    *bluemonday.Policy
}

func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, c cache.Cache) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        c,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	if req.Price.IsNegative() {
		return nil, errors.ValidationError("Price must not be negative")
	}

	if req.CategoryID != nil {
		if _, err := s.categoryRepo.GetCategoryByID(ctx, *req.CategoryID); err != nil {
			if stdErrors.Is(err, sql.ErrNoRows) {
				return nil, errors.NotFoundError("Category not found")
			}
			return nil, errors.DatabaseError("Failed to fetch category").WithError(err)
		}
	}

	product := &models.Product{
		CategoryID:  req.CategoryID,
		Name:        s.sanitizer.Sanitize(req.Name),
		Description: s.sanitizer.Sanitize(req.Description),
		Price:       req.Price,
		Stock:       req.Stock,
	}

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {

	key := cache.Key(cache.ProductKeyPrefix, strconv.FormatInt(id, 10))

	var cached models.Product

	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("Product cache read failed", slog.Any("error", err))
	}

	if found {
		return &cached, nil
	}

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found")
		}
		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if err := s.cache.Set(ctx, key, product, 0); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Product cache write failed", slog.Any("error", err))
	}

	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found")
		}
		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if req.CategoryID != nil {
		if _, err := s.categoryRepo.GetCategoryByID(ctx, *req.CategoryID); err != nil {
			if stdErrors.Is(err, sql.ErrNoRows) {
				return nil, errors.NotFoundError("Category not found")
			}
			return nil, errors.DatabaseError("Failed to fetch category").WithError(err)
		}

		product.CategoryID = req.CategoryID
	}

	if req.Name != nil {
		product.Name = s.sanitizer.Sanitize(*req.Name)
	}

	if req.Description != nil {
		product.Description = s.sanitizer.Sanitize(*req.Description)
	}

	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, errors.ValidationError("Price must not be negative")
		}

		product.Price = *req.Price
	}

	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidateProduct(ctx, id)

	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Product not found")
		}
		return errors.DatabaseError("Failed to delete product").WithError(err)
	}

	s.invalidateProduct(ctx, id)

	return nil
}

func (s *catalogService) ListProducts(ctx context.Context, query *models.ProductQuery, page, size int) ([]*models.Product, int, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 20
	}

	products, total, err := s.productRepo.ListProducts(ctx, query, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list products").WithError(err)
	}

	return products, total, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {

	category := &models.Category{
		Name:        s.sanitizer.Sanitize(req.Name),
		Description: s.sanitizer.Sanitize(req.Description),
	}

	if err := s.categoryRepo.CreateCategory(ctx, category); err != nil {
		return nil, errors.DatabaseError("Failed to create category").WithError(err)
	}

	return category, nil
}

func (s *catalogService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {

	category, err := s.categoryRepo.GetCategoryByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Category not found")
		}
		return nil, errors.DatabaseError("Failed to fetch category").WithError(err)
	}

	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id int64, req *models.UpdateCategoryRequest) (*models.Category, error) {

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = s.sanitizer.Sanitize(*req.Name)
	}

	if req.Description != nil {
		category.Description = s.sanitizer.Sanitize(*req.Description)
	}

	if err := s.categoryRepo.UpdateCategory(ctx, category); err != nil {
		return nil, errors.DatabaseError("Failed to update category").WithError(err)
	}

	return category, nil
}

// DeleteCategory removes the category; its products survive with a null
// category reference.
func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {

	if err := s.categoryRepo.DeleteCategory(ctx, id); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Category not found")
		}
		return errors.DatabaseError("Failed to delete category").WithError(err)
	}

	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {

	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list categories").WithError(err)
	}

	return categories, nil
}

func (s *catalogService) invalidateProduct(ctx context.Context, id int64) {
	key := cache.Key(cache.ProductKeyPrefix, strconv.FormatInt(id, 10))

	if err := s.cache.Delete(ctx, key); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Product cache invalidation failed", slog.Any("error", err))
	}
}
