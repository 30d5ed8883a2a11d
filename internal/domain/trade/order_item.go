package trade

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// OrderLine is the input for one order line
type OrderLine struct {
	ProductID     uuid.UUID
	ProductCode   string
	ProductName   string
	Quantity      int
	UnitPrice     decimal.Decimal
	Customization string
	Notes         string
}

// OrderItem is a line item with its computed total
type OrderItem struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	ProductCode   string
	ProductName   string
	Quantity      int
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	Customization string
	Notes         string
}

// NewOrderItem validates a line and computes TotalPrice = Quantity * UnitPrice
func NewOrderItem(line OrderLine) (OrderItem, error) {
	if line.ProductID == uuid.Nil {
		return OrderItem{}, shared.NewValidationError("product_id", "REQUIRED", "Product ID cannot be empty")
	}
	if line.Quantity <= 0 {
		return OrderItem{}, shared.NewValidationError("quantity", "INVALID_QUANTITY", "Quantity must be positive")
	}
	if line.UnitPrice.IsNegative() {
		return OrderItem{}, shared.NewValidationError("unit_price", "INVALID_PRICE", "Unit price cannot be negative")
	}
	return OrderItem{
		ID:            uuid.New(),
		ProductID:     line.ProductID,
		ProductCode:   line.ProductCode,
		ProductName:   line.ProductName,
		Quantity:      line.Quantity,
		UnitPrice:     line.UnitPrice,
		TotalPrice:    line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		Customization: strings.TrimSpace(line.Customization),
		Notes:         strings.TrimSpace(line.Notes),
	}, nil
}
