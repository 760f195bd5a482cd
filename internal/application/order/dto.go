package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
)

// ItemInput is one requested (product, quantity) pair
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderInput contains the input for placing an order
type PlaceOrderInput struct {
	Items []ItemInput
}

// ItemView is the read model of an order line
type ItemView struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// View is the read model of an order. Prices are the values stored
// at order-creation time, never recomputed from the live catalog.
type View struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Items      []ItemView
	TotalPrice decimal.Decimal
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewView builds a View from a domain order
func NewView(o *order.Order) *View {
	items := make([]ItemView, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		}
	}

	return &View{
		ID:         o.ID,
		UserID:     o.UserID,
		Items:      items,
		TotalPrice: o.TotalPrice,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
