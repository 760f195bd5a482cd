package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines persistence operations for orders.
// Save cascades the order's items.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (shared.Paginated[Order], error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[Order], error)
	Save(ctx context.Context, order *Order) error
}
