package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductCache caches product-by-id lookups. Implementations must
// return (nil, nil) on a miss. The cache is best effort: failures are
// logged and the caller falls through to the repository.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	Set(ctx context.Context, product *catalog.Product) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// ProductService implements product catalog use cases
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	cache        ProductCache
	logger       *zap.Logger
}

// NewProductService creates a new product service. cache may be nil
// when caching is disabled.
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	cache ProductCache,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
		logger:       logger,
	}
}

// ListProducts returns active products for the public catalog
func (s *ProductService) ListProducts(ctx context.Context, filter shared.Filter) (shared.Paginated[ProductView], error) {
	page, err := s.productRepo.FindActive(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductView]{}, err
	}

	views := make([]ProductView, len(page.Items))
	for i := range page.Items {
		views[i] = *NewProductView(&page.Items[i])
	}

	return shared.Paginated[ProductView]{
		Items:      views,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// GetProduct fetches one product by id, retired ones included.
// Reads go through the cache when one is configured.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("Product cache read failed",
				zap.String("product_id", id.String()),
				zap.Error(err))
		}
		if cached != nil {
			return NewProductView(cached), nil
		}
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, product); err != nil {
			s.logger.Warn("Product cache write failed",
				zap.String("product_id", id.String()),
				zap.Error(err))
		}
	}

	return NewProductView(product), nil
}

// CreateProduct adds a new product to the catalog
func (s *ProductService) CreateProduct(ctx context.Context, input ProductInput) (*ProductView, error) {
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(input.Name, input.Description, input.Price, input.Stock, input.CategoryID)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name))

	return NewProductView(product), nil
}

// UpdateProduct replaces a product's catalog information
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductView, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	if err := product.Update(input.Name, input.Description, input.Price, input.Stock, input.CategoryID); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)

	return NewProductView(product), nil
}

// RetireProduct takes a product off sale. The row stays, so
// historical order lines keep resolving.
func (s *ProductService) RetireProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := product.Retire(); err != nil {
		return err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}

	s.invalidate(ctx, id)

	s.logger.Info("Product retired",
		zap.String("product_id", id.String()))

	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("Product cache invalidation failed",
			zap.String("product_id", id.String()),
			zap.Error(err))
	}
}
