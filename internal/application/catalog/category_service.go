package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService implements category management use cases
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// ListCategories returns all categories ordered by name
func (s *CategoryService) ListCategories(ctx context.Context) ([]CategoryView, error) {
	page, err := s.categoryRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}

	views := make([]CategoryView, len(page.Items))
	for i := range page.Items {
		views[i] = *NewCategoryView(&page.Items[i])
	}
	return views, nil
}

// GetCategory fetches one category by id
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryView, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewCategoryView(category), nil
}

// CreateCategory adds a new category. Names are unique.
func (s *CategoryService) CreateCategory(ctx context.Context, input CategoryInput) (*CategoryView, error) {
	if existing, err := s.categoryRepo.FindByName(ctx, input.Name); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
	}

	category, err := catalog.NewCategory(input.Name, input.Description)
	if err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("Category created",
		zap.String("category_id", category.ID.String()),
		zap.String("name", category.Name))

	return NewCategoryView(category), nil
}

// UpdateCategory renames or redescribes a category
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryView, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing, err := s.categoryRepo.FindByName(ctx, input.Name); err == nil && existing != nil && existing.ID != id {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
	}

	if err := category.Update(input.Name, input.Description); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	return NewCategoryView(category), nil
}

// DeleteCategory removes an empty category. Categories still holding
// products cannot be deleted.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("INVALID_STATE", "Category still has products assigned")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Category deleted",
		zap.String("category_id", id.String()))

	return nil
}
