package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const catalogCacheKey = "catalog:products"

// CatalogService serves product reads for the storefront and CRUD for
// the admin dashboard. The active-product listing is cached in Redis
// because it backs every storefront page load.
type CatalogService struct {
	store    *store.Store
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service. cache may be nil,
// in which case every listing hits the database.
func NewCatalogService(store *store.Store, cache *redis.Client, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// ListProducts returns the storefront catalog (active products only).
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	if s.cache != nil {
		data, err := s.cache.Get(ctx, catalogCacheKey).Bytes()
		if err == nil {
			var products []models.Product
			if jerr := json.Unmarshal(data, &products); jerr == nil {
				util.CatalogCacheHits.WithLabelValues("hit").Inc()
				return products, nil
			}
			// A stale or corrupt cache entry falls through to the DB.
		} else if err != redis.Nil {
			s.logger.Warn("Catalog cache read failed", zap.Error(err))
		}
		util.CatalogCacheHits.WithLabelValues("miss").Inc()
	}

	products, err := s.store.GetActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(products); err == nil {
			if err := s.cache.Set(ctx, catalogCacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("Catalog cache write failed", zap.Error(err))
			}
		}
	}

	return products, nil
}

// GetProduct retrieves one product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// CreateProductRequest carries the admin product form.
type CreateProductRequest struct {
	Name        string                `json:"name" binding:"required"`
	Brand       string                `json:"brand"`
	Category    string                `json:"category"`
	Description string                `json:"description"`
	Image       string                `json:"image"`
	Active      *bool                 `json:"active"`
	Details     models.ProductDetails `json:"details"`
}

// CreateProduct creates a catalog product with a server-assigned id.
// The details blob is written in the same statement as the base row.
func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	product := &models.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Brand:       req.Brand,
		Category:    req.Category,
		Description: req.Description,
		Image:       req.Image,
		Active:      active,
		Details:     req.Details,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateCache(ctx)
	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Int("price_options", len(product.Details.PriceOptions)))
	return product, nil
}

// UpdateProduct replaces a product's catalog fields
func (s *CatalogService) UpdateProduct(ctx context.Context, product *models.Product) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.logger.Info("Product updated", zap.String("product_id", product.ID))
	return nil
}

// DeleteProduct removes a product from the catalog
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProduct")
	defer span.End()

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

func (s *CatalogService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, catalogCacheKey).Err(); err != nil {
		s.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}
