package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductStatus represents the lifecycle state of a product.
// A retired product stays resolvable so historical orders keep
// their references; it only disappears from catalog listings.
type ProductStatus string

const (
	ProductStatusActive  ProductStatus = "active"
	ProductStatusRetired ProductStatus = "retired"
)

// IsValid checks if the status is a known product status
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusActive || s == ProductStatusRetired
}

// Product represents a sellable item in the catalog.
// It is the aggregate root for catalog stock operations.
type Product struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Status      ProductStatus
	CategoryID  uuid.UUID
}

// NewProduct creates a new active product
func NewProduct(name, description string, price decimal.Decimal, stock int, categoryID uuid.UUID) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		Price:             price,
		Stock:             stock,
		Status:            ProductStatusActive,
		CategoryID:        categoryID,
	}, nil
}

// Update updates the product's catalog information
func (p *Product) Update(name, description string, price decimal.Decimal, stock int, categoryID uuid.UUID) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}

	p.Name = name
	p.Description = description
	p.Price = price
	p.Stock = stock
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// DecreaseStock reserves stock for an accepted order line.
// The whole requested quantity must be available; partial
// decrements are never performed.
func (p *Product) DecreaseStock(quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if quantity > p.Stock {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Not enough stock for product id=%s. Requested=%d, available=%d", p.ID, quantity, p.Stock))
	}

	p.Stock -= quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// IncreaseStock returns stock, e.g. on replenishment
func (p *Product) IncreaseStock(quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	p.Stock += quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Retire removes the product from sale. Existing orders keep their
// snapshots; the row is never deleted.
func (p *Product) Retire() error {
	if p.Status == ProductStatusRetired {
		return shared.NewDomainError("ALREADY_RETIRED", "Product is already retired")
	}

	p.Status = ProductStatusRetired
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Reinstate puts a retired product back on sale
func (p *Product) Reinstate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}

	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// IsActive returns true if the product is on sale
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
