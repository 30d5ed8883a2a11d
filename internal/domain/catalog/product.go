package catalog

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// Category is the garment category of a product
type Category string

const (
	CategoryShirt      Category = "shirt"
	CategoryTrouser    Category = "trouser"
	CategorySkirt      Category = "skirt"
	CategoryBlazer     Category = "blazer"
	CategoryJacket     Category = "jacket"
	CategorySweater    Category = "sweater"
	CategorySportswear Category = "sportswear"
	CategoryAccessory  Category = "accessory"
	CategoryOther      Category = "other"
)

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryShirt, CategoryTrouser, CategorySkirt, CategoryBlazer, CategoryJacket,
		CategorySweater, CategorySportswear, CategoryAccessory, CategoryOther:
		return true
	}
	return false
}

// UniformType is the market a uniform is made for
type UniformType string

const (
	UniformSchool     UniformType = "school"
	UniformCorporate  UniformType = "corporate"
	UniformHospital   UniformType = "hospital"
	UniformHotel      UniformType = "hotel"
	UniformIndustrial UniformType = "industrial"
	UniformSecurity   UniformType = "security"
	UniformSports     UniformType = "sports"
	UniformOther      UniformType = "other"
)

// IsValid checks if the uniform type is valid
func (u UniformType) IsValid() bool {
	switch u {
	case UniformSchool, UniformCorporate, UniformHospital, UniformHotel,
		UniformIndustrial, UniformSecurity, UniformSports, UniformOther:
		return true
	}
	return false
}

// StockStatus is derived from the stock quantity and the reorder level
type StockStatus string

const (
	StockOut StockStatus = "out_of_stock"
	StockLow StockStatus = "low_stock"
	StockIn  StockStatus = "in_stock"
)

// StockOperation selects the direction of a stock adjustment
type StockOperation string

const (
	StockIncrease StockOperation = "increase"
	StockDecrease StockOperation = "decrease"
)

// PriceTier is a bulk price for quantities in [MinQuantity, MaxQuantity]; MaxQuantity 0 is open ended
type PriceTier struct {
	MinQuantity int             `json:"min_quantity"`
	MaxQuantity int             `json:"max_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Covers reports whether qty falls inside the tier
func (t PriceTier) Covers(qty int) bool {
	return qty >= t.MinQuantity && (t.MaxQuantity == 0 || qty <= t.MaxQuantity)
}

// ProductDetails are the caller-editable catalog fields
type ProductDetails struct {
	Code                 string
	Name                 string
	Description          string
	Category             Category
	UniformType          UniformType
	BasePrice            decimal.Decimal
	SpecialPrice         *decimal.Decimal
	BulkPricing          []PriceTier
	ReorderLevel         int
	Sizes                []string
	Colors               []string
	CustomizationOptions []string
}

// Product is a catalog item
type Product struct {
	shared.BaseAggregateRoot
	Code                 string
	Name                 string
	Description          string
	Category             Category
	UniformType          UniformType
	BasePrice            decimal.Decimal
	SpecialPrice         *decimal.Decimal
	BulkPricing          []PriceTier
	StockQuantity        int
	ReorderLevel         int
	Sizes                []string
	Colors               []string
	CustomizationOptions []string
	Images               []ProductImage
	IsActive             bool
	TotalSold            int
	TotalRevenue         decimal.Decimal
	CreatedBy            *uuid.UUID
}

// NewProduct creates a new active product with the given opening stock
func NewProduct(d ProductDetails, openingStock int, createdBy *uuid.UUID) (*Product, error) {
	if openingStock < 0 {
		return nil, shared.NewValidationError("stock_quantity", "INVALID_STOCK", "Stock quantity cannot be negative")
	}
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StockQuantity:     openingStock,
		Images:            make([]ProductImage, 0),
		IsActive:          true,
		TotalRevenue:      decimal.Zero,
		CreatedBy:         createdBy,
	}
	if err := p.apply(d); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

func (p *Product) apply(d ProductDetails) error {
	code := strings.ToUpper(strings.TrimSpace(d.Code))
	if err := validateProductCode(code); err != nil {
		return err
	}
	name := strings.TrimSpace(d.Name)
	if err := shared.ValidateLength("name", name, 1, 200); err != nil {
		return err
	}
	if err := shared.ValidateLength("description", d.Description, 0, 2000); err != nil {
		return err
	}
	if d.Category == "" {
		d.Category = CategoryOther
	}
	if !d.Category.IsValid() {
		return shared.NewValidationError("category", "INVALID_CATEGORY", "Invalid product category")
	}
	if d.UniformType == "" {
		d.UniformType = UniformOther
	}
	if !d.UniformType.IsValid() {
		return shared.NewValidationError("uniform_type", "INVALID_UNIFORM_TYPE", "Invalid uniform type")
	}
	if !d.BasePrice.IsPositive() {
		return shared.NewValidationError("base_price", "INVALID_PRICE", "Base price must be positive")
	}
	if d.SpecialPrice != nil && d.SpecialPrice.IsNegative() {
		return shared.NewValidationError("special_price", "INVALID_PRICE", "Special price cannot be negative")
	}
	if d.ReorderLevel < 0 {
		return shared.NewValidationError("reorder_level", "INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
	}
	tiers, err := normalizeTiers(d.BulkPricing)
	if err != nil {
		return err
	}

	p.Code = code
	p.Name = name
	p.Description = strings.TrimSpace(d.Description)
	p.Category = d.Category
	p.UniformType = d.UniformType
	p.BasePrice = d.BasePrice
	p.SpecialPrice = d.SpecialPrice
	p.BulkPricing = tiers
	p.ReorderLevel = d.ReorderLevel
	p.Sizes = cleanList(d.Sizes)
	p.Colors = cleanList(d.Colors)
	p.CustomizationOptions = cleanList(d.CustomizationOptions)
	return nil
}

// Details returns the editable fields as a ProductDetails value
func (p *Product) Details() ProductDetails {
	return ProductDetails{
		Code:                 p.Code,
		Name:                 p.Name,
		Description:          p.Description,
		Category:             p.Category,
		UniformType:          p.UniformType,
		BasePrice:            p.BasePrice,
		SpecialPrice:         p.SpecialPrice,
		BulkPricing:          p.BulkPricing,
		ReorderLevel:         p.ReorderLevel,
		Sizes:                p.Sizes,
		Colors:               p.Colors,
		CustomizationOptions: p.CustomizationOptions,
	}
}

// Update replaces the editable fields
func (p *Product) Update(d ProductDetails) error {
	if err := p.apply(d); err != nil {
		return err
	}
	p.Touch()
	return nil
}

// EffectivePrice is the special price when set, otherwise the base price
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SpecialPrice != nil {
		return *p.SpecialPrice
	}
	return p.BasePrice
}

// PriceForQuantity returns the bulk tier price covering qty, or the effective price
func (p *Product) PriceForQuantity(qty int) decimal.Decimal {
	for _, t := range p.BulkPricing {
		if t.Covers(qty) {
			return t.UnitPrice
		}
	}
	return p.EffectivePrice()
}

// StockStatus derives the stock status from quantity and reorder level
func (p *Product) StockStatus() StockStatus {
	switch {
	case p.StockQuantity <= 0:
		return StockOut
	case p.StockQuantity <= p.ReorderLevel:
		return StockLow
	default:
		return StockIn
	}
}

// NeedsReorder reports whether stock is at or below the reorder level
func (p *Product) NeedsReorder() bool {
	return p.StockStatus() != StockIn
}

// UpdateStock adjusts stock. Decreases floor at zero; increases are unconditional.
func (p *Product) UpdateStock(quantity int, op StockOperation) error {
	if quantity < 0 {
		return shared.NewValidationError("quantity", "INVALID_QUANTITY", "Quantity cannot be negative")
	}
	old := p.StockQuantity
	switch op {
	case StockIncrease:
		p.StockQuantity += quantity
	case StockDecrease:
		p.StockQuantity -= quantity
		if p.StockQuantity < 0 {
			p.StockQuantity = 0
		}
	default:
		return shared.NewValidationError("operation", "INVALID_OPERATION", "Operation must be 'increase' or 'decrease'")
	}
	p.Touch()
	p.AddDomainEvent(NewProductStockChangedEvent(p, old))
	return nil
}

// CanFulfil reports whether qty units are currently in stock
func (p *Product) CanFulfil(qty int) bool {
	return qty > 0 && p.StockQuantity >= qty
}

// RecordSale bumps the sales counters after an order is delivered
func (p *Product) RecordSale(qty int, amount decimal.Decimal) {
	if qty <= 0 {
		return
	}
	p.TotalSold += qty
	p.TotalRevenue = p.TotalRevenue.Add(amount)
	p.Touch()
}

// Activate makes the product orderable
func (p *Product) Activate() {
	p.IsActive = true
	p.Touch()
}

// Deactivate hides the product from new orders
func (p *Product) Deactivate() {
	p.IsActive = false
	p.Touch()
}

func validateProductCode(code string) error {
	if len(code) < 2 || len(code) > 30 {
		return shared.NewValidationError("code", "INVALID_CODE", "Product code must be 2 to 30 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewValidationError("code", "INVALID_CODE", "Product code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func normalizeTiers(tiers []PriceTier) ([]PriceTier, error) {
	out := make([]PriceTier, len(tiers))
	copy(out, tiers)
	sort.Slice(out, func(i, j int) bool { return out[i].MinQuantity < out[j].MinQuantity })
	for i, t := range out {
		if t.MinQuantity < 1 {
			return nil, shared.NewValidationError("bulk_pricing", "INVALID_PRICE_TIER", "Tier minimum quantity must be at least 1")
		}
		if t.MaxQuantity != 0 && t.MaxQuantity < t.MinQuantity {
			return nil, shared.NewValidationError("bulk_pricing", "INVALID_PRICE_TIER", "Tier maximum must not be below its minimum")
		}
		if !t.UnitPrice.IsPositive() {
			return nil, shared.NewValidationError("bulk_pricing", "INVALID_PRICE_TIER", "Tier price must be positive")
		}
		if i > 0 {
			prev := out[i-1]
			if prev.MaxQuantity == 0 || prev.MaxQuantity >= t.MinQuantity {
				return nil, shared.NewValidationError("bulk_pricing", "INVALID_PRICE_TIER", "Price tiers must not overlap")
			}
		}
	}
	return out, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
