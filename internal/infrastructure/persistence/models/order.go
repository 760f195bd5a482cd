package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
)

// OrderModel is the persistence model for order.Order
type OrderModel struct {
	AggregateModel
	UserID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	TotalPrice decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	Status     string           `gorm:"type:varchar(20);not null;default:'NEW';index"`
	Items      []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for order.Item.
// ProductName and UnitPrice are snapshots from order time.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity    int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the model to a domain order
func (m *OrderModel) ToDomain() *order.Order {
	items := make([]order.Item, len(m.Items))
	for i, im := range m.Items {
		items[i] = order.Item{
			ID:          im.ID,
			OrderID:     im.OrderID,
			ProductID:   im.ProductID,
			ProductName: im.ProductName,
			UnitPrice:   im.UnitPrice,
			Quantity:    im.Quantity,
		}
	}

	return &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		Items:             items,
		TotalPrice:        m.TotalPrice,
		Status:            order.Status(m.Status),
	}
}

// OrderModelFromDomain builds a persistence model from a domain order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		}
	}

	m := &OrderModel{
		UserID:     o.UserID,
		TotalPrice: o.TotalPrice,
		Status:     string(o.Status),
		Items:      items,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}
