package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const productCacheTTL = time.Minute

func productCacheKey(productID uint64) string {
	return fmt.Sprintf("product:%d", productID)
}

type CatalogService struct {
	catalog     repository.CatalogRepository
	redisClient *redis.Client
}

func NewCatalogService(catalog repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// Categories

func (s *CatalogService) CreateCategory(ctx context.Context, actor domain.Actor, name, description string) (*domain.Category, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrPermissionDenied
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.Validationf("category name is required")
	}
	c := &domain.Category{Name: name, Description: description}
	if err := s.catalog.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, actor domain.Actor, id uint64, name, description string) (*domain.Category, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrPermissionDenied
	}
	c, err := s.catalog.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCategoryNotFound
	}
	if name != "" {
		c.Name = name
	}
	c.Description = description
	if err := s.catalog.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, actor domain.Actor, id uint64) error {
	if !actor.IsAdmin {
		return domain.ErrPermissionDenied
	}
	return s.catalog.DeleteCategory(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.catalog.ListCategories(ctx)
}

func (s *CatalogService) CategoryProducts(ctx context.Context, categoryID uint64) ([]domain.Product, error) {
	c, err := s.catalog.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCategoryNotFound
	}
	return s.catalog.ListProducts(ctx, repository.ProductFilter{CategoryID: categoryID, ActiveOnly: true})
}

// Products

type ProductInput struct {
	CategoryID  *uint64
	Name        string
	Description string
	Price       string
	Stock       int
	SKU         string
	ImageURL    string
	IsActive    *bool
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor domain.Actor, in ProductInput) (*domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Validationf("product name is required")
	}
	if strings.TrimSpace(in.SKU) == "" {
		return nil, domain.Validationf("sku is required")
	}
	price, err := parseAmount(in.Price)
	if err != nil || !price.IsPositive() {
		return nil, domain.Validationf("price must be a positive amount")
	}
	if in.Stock < 0 {
		return nil, domain.Validationf("stock quantity cannot be negative")
	}
	if in.CategoryID != nil {
		c, err := s.catalog.FindCategoryByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.ErrCategoryNotFound
		}
	}

	p := &domain.Product{
		UserID:        actor.UserID,
		CategoryID:    in.CategoryID,
		Name:          in.Name,
		Description:   in.Description,
		Price:         price,
		StockQuantity: in.Stock,
		SKU:           in.SKU,
		ImageURL:      in.ImageURL,
		IsActive:      true,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := s.catalog.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor domain.Actor, id uint64, in ProductInput) (*domain.Product, error) {
	p, err := s.catalog.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	if !actor.CanManageProduct(p.UserID) {
		return nil, domain.ErrPermissionDenied
	}

	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.Price != "" {
		price, err := parseAmount(in.Price)
		if err != nil || !price.IsPositive() {
			return nil, domain.Validationf("price must be a positive amount")
		}
		p.Price = price
	}
	if in.SKU != "" {
		p.SKU = in.SKU
	}
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	if in.CategoryID != nil {
		p.CategoryID = in.CategoryID
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	if err := s.catalog.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateProduct(ctx, p.ID)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actor domain.Actor, id uint64) error {
	p, err := s.catalog.FindProductByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrProductNotFound
	}
	if !actor.CanManageProduct(p.UserID) {
		return domain.ErrPermissionDenied
	}
	if err := s.catalog.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidateProduct(ctx, id)
	return nil
}

// GetProduct reads through the cache; misses fall back to the store and
// repopulate with a short TTL.
func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, productCacheKey(id)).Result()
		if err == nil {
			var p domain.Product
			if err := json.Unmarshal([]byte(cached), &p); err == nil {
				return &p, nil
			}
		}
	}

	p, err := s.catalog.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}

	s.cacheProduct(ctx, p, productCacheTTL)
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	return s.catalog.ListProducts(ctx, f)
}

func (s *CatalogService) ListLowStock(ctx context.Context, actor domain.Actor) ([]domain.Product, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrPermissionDenied
	}
	return s.catalog.ListLowStock(ctx)
}

// SetStock overwrites a product's stock level, owner or admin only. This is
// the only stock write outside the order workflow.
func (s *CatalogService) SetStock(ctx context.Context, actor domain.Actor, id uint64, quantity int) (*domain.Product, error) {
	if quantity < 0 {
		return nil, domain.Validationf("stock quantity cannot be negative")
	}
	p, err := s.catalog.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	if !actor.CanManageProduct(p.UserID) {
		return nil, domain.ErrPermissionDenied
	}

	updated, err := s.catalog.SetStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	s.invalidateProduct(ctx, id)
	return updated, nil
}

// Shipping

func (s *CatalogService) ListShippingZones(ctx context.Context) ([]domain.ShippingZone, error) {
	return s.catalog.ListShippingZones(ctx)
}

// ShippingPreview quotes the shipping cost for a cart total in a zone before
// the order is placed.
func (s *CatalogService) ShippingPreview(ctx context.Context, zoneID uint64, cartTotal string) (decimal.Decimal, bool, error) {
	zone, err := s.catalog.FindShippingZoneByID(ctx, zoneID)
	if err != nil {
		return decimal.Zero, false, err
	}
	if zone == nil {
		return decimal.Zero, false, domain.ErrZoneNotFound
	}
	total, err := parseAmount(cartTotal)
	if err != nil {
		return decimal.Zero, false, domain.Validationf("invalid cart total %q", cartTotal)
	}
	cost := zone.ShippingCost(total)
	return cost, cost.IsZero(), nil
}

// WarmupProductCache primes the cache for a set of products concurrently.
func (s *CatalogService) WarmupProductCache(ctx context.Context, productIDs []uint64) error {
	if s.redisClient == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range productIDs {
		id := id // preserve per-iteration semantics of the original go >= 1.22 directive
		g.Go(func() error {
			p, err := s.catalog.FindProductByID(gctx, id)
			if err != nil {
				log.Printf("Failed to warm up cache for product %d: %v", id, err)
				return nil
			}
			if p != nil {
				s.cacheProduct(gctx, p, 5*time.Minute)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *CatalogService) cacheProduct(ctx context.Context, p *domain.Product, ttl time.Duration) {
	if s.redisClient == nil {
		return
	}
	if data, err := json.Marshal(p); err == nil {
		s.redisClient.Set(ctx, productCacheKey(p.ID), data, ttl)
	}
}

func (s *CatalogService) invalidateProduct(ctx context.Context, id uint64) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Del(ctx, productCacheKey(id))
}

func parseAmount(v string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(v))
}
