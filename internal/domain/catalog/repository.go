package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindActive(ctx context.Context, filter shared.Filter) (shared.Paginated[Product], error)
	Save(ctx context.Context, product *Product) error
	// SaveWithLock persists the product only if its version has not
	// changed since it was loaded. Returns ErrConcurrencyConflict
	// when another transaction got there first.
	SaveWithLock(ctx context.Context, product *Product, expectedVersion int) error
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// CategoryRepository defines persistence operations for categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[Category], error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}
