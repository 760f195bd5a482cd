package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxPlaceOrderAttempts bounds the retries after a version conflict
// on a stock row
const maxPlaceOrderAttempts = 3

// ProductCacheInvalidator drops cached product entries after checkout
// changes their stock
type ProductCacheInvalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// Service implements the order workflow. Checkout is the one place
// where money, stock and persistence intersect, so every mutation in
// PlaceOrder runs inside a single transaction scope.
type Service struct {
	scope     TransactionScope
	orderRepo order.Repository
	cache     ProductCacheInvalidator
	logger    *zap.Logger
}

// NewService creates a new order service. cache may be nil when
// product caching is disabled.
func NewService(scope TransactionScope, orderRepo order.Repository, cache ProductCacheInvalidator, logger *zap.Logger) *Service {
	return &Service{
		scope:     scope,
		orderRepo: orderRepo,
		cache:     cache,
		logger:    logger,
	}
}

// PlaceOrder converts requested (product, quantity) pairs into a
// persisted order, one line per pair in the order given.
// All-or-nothing: stock checks, stock decrements and the order insert
// commit together or not at all. Stock rows are updated with an
// optimistic version check; a conflict means another transaction got
// there first, so the whole unit of work is retried against the fresh
// stock. Of two concurrent orders racing for the last unit exactly
// one succeeds and the other reports insufficient stock.
func (s *Service) PlaceOrder(ctx context.Context, callerID uuid.UUID, input PlaceOrderInput) (*View, error) {
	if len(input.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order must have at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be at least 1")
		}
	}

	var placed *order.Order
	var err error
	for attempt := 1; attempt <= maxPlaceOrderAttempts; attempt++ {
		placed, err = s.placeOrderOnce(ctx, callerID, input)
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			break
		}
		s.logger.Debug("Retrying order placement after version conflict",
			zap.String("user_id", callerID.String()),
			zap.Int("attempt", attempt))
	}
	if err != nil {
		s.logger.Warn("Order placement failed",
			zap.String("user_id", callerID.String()),
			zap.Error(err))
		return nil, err
	}

	s.invalidateProducts(ctx, placed)

	s.logger.Info("Order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("user_id", callerID.String()),
		zap.String("total_price", placed.TotalPrice.String()),
		zap.Int("items", len(placed.Items)))

	return NewView(placed), nil
}

// placeOrderOnce runs one transactional checkout attempt
func (s *Service) placeOrderOnce(ctx context.Context, callerID uuid.UUID, input PlaceOrderInput) (*order.Order, error) {
	var placed *order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		user, err := repos.Users().FindByID(ctx, callerID)
		if err != nil {
			return err
		}

		o, err := order.NewOrder(user.ID)
		if err != nil {
			return err
		}

		for _, requested := range input.Items {
			product, err := repos.Products().FindByID(ctx, requested.ProductID)
			if err != nil {
				return err
			}

			expectedVersion := product.Version
			if err := product.DecreaseStock(requested.Quantity); err != nil {
				return err
			}

			// Snapshot name and price at order time
			if _, err := o.AddItem(product.ID, product.Name, product.Price, requested.Quantity); err != nil {
				return err
			}

			if err := repos.Products().SaveWithLock(ctx, product, expectedVersion); err != nil {
				return err
			}
		}

		if err := o.Validate(); err != nil {
			return err
		}

		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// invalidateProducts drops cached entries for every product whose
// stock the order changed. Best effort: failures are logged and the
// stale entry ages out with its TTL.
func (s *Service) invalidateProducts(ctx context.Context, o *order.Order) {
	if s.cache == nil {
		return
	}
	for i := range o.Items {
		if err := s.cache.Invalidate(ctx, o.Items[i].ProductID); err != nil {
			s.logger.Warn("Product cache invalidation failed",
				zap.String("product_id", o.Items[i].ProductID.String()),
				zap.Error(err))
		}
	}
}

// GetOrder fetches an order. Non-admin callers only see their own.
func (s *Service) GetOrder(ctx context.Context, id, callerID uuid.UUID, isAdmin bool) (*View, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isAdmin && !o.IsOwnedBy(callerID) {
		return nil, shared.ErrForbidden
	}

	return NewView(o), nil
}

// ListOrdersForUser returns the caller's orders, newest first
func (s *Service) ListOrdersForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (shared.Paginated[View], error) {
	page, err := s.orderRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		return shared.Paginated[View]{}, err
	}
	return mapPage(page), nil
}

// ListAllOrders returns all orders, newest first
func (s *Service) ListAllOrders(ctx context.Context, filter shared.Filter) (shared.Paginated[View], error) {
	page, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[View]{}, err
	}
	return mapPage(page), nil
}

// UpdateStatus moves an order along the status graph
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) (*View, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := o.ChangeStatus(status); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", o.ID.String()),
		zap.String("status", string(o.Status)))

	return NewView(o), nil
}

func mapPage(page shared.Paginated[order.Order]) shared.Paginated[View] {
	views := make([]View, len(page.Items))
	for i := range page.Items {
		views[i] = *NewView(&page.Items[i])
	}
	return shared.Paginated[View]{
		Items:      views,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}
