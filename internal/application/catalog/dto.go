package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/catalog"
)

// PriceTierRequest is one bulk pricing tier
type PriceTierRequest struct {
	MinQuantity int             `json:"min_quantity" binding:"required,min=1"`
	MaxQuantity int             `json:"max_quantity" binding:"min=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required,decimal_gt0"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code                 string             `json:"code" binding:"required,min=2,max=30"`
	Name                 string             `json:"name" binding:"required,min=1,max=200"`
	Description          string             `json:"description" binding:"max=2000"`
	Category             string             `json:"category" binding:"omitempty,oneof=shirt trouser skirt blazer jacket sweater sportswear accessory other"`
	UniformType          string             `json:"uniform_type" binding:"omitempty,oneof=school corporate hospital hotel industrial security sports other"`
	BasePrice            decimal.Decimal    `json:"base_price" binding:"required,decimal_gt0"`
	SpecialPrice         *decimal.Decimal   `json:"special_price" binding:"omitempty,decimal_gte0"`
	BulkPricing          []PriceTierRequest `json:"bulk_pricing" binding:"max=10,dive"`
	StockQuantity        int                `json:"stock_quantity" binding:"min=0"`
	ReorderLevel         int                `json:"reorder_level" binding:"min=0"`
	Sizes                []string           `json:"sizes" binding:"max=30,dive,max=20"`
	Colors               []string           `json:"colors" binding:"max=30,dive,max=50"`
	CustomizationOptions []string           `json:"customization_options" binding:"max=30,dive,max=100"`
}

func (r CreateProductRequest) details() catalog.ProductDetails {
	return catalog.ProductDetails{
		Code:                 r.Code,
		Name:                 r.Name,
		Description:          r.Description,
		Category:             catalog.Category(r.Category),
		UniformType:          catalog.UniformType(r.UniformType),
		BasePrice:            r.BasePrice,
		SpecialPrice:         r.SpecialPrice,
		BulkPricing:          tiers(r.BulkPricing),
		ReorderLevel:         r.ReorderLevel,
		Sizes:                r.Sizes,
		Colors:               r.Colors,
		CustomizationOptions: r.CustomizationOptions,
	}
}

// UpdateProductRequest is a partial product update. Stock is changed through
// the stock operation only.
type UpdateProductRequest struct {
	Code                 *string             `json:"code" binding:"omitempty,min=2,max=30"`
	Name                 *string             `json:"name" binding:"omitempty,min=1,max=200"`
	Description          *string             `json:"description" binding:"omitempty,max=2000"`
	Category             *string             `json:"category" binding:"omitempty,oneof=shirt trouser skirt blazer jacket sweater sportswear accessory other"`
	UniformType          *string             `json:"uniform_type" binding:"omitempty,oneof=school corporate hospital hotel industrial security sports other"`
	BasePrice            *decimal.Decimal    `json:"base_price" binding:"omitempty,decimal_gt0"`
	SpecialPrice         *decimal.Decimal    `json:"special_price" binding:"omitempty,decimal_gte0"`
	ClearSpecialPrice    bool                `json:"clear_special_price"`
	BulkPricing          *[]PriceTierRequest `json:"bulk_pricing"`
	ReorderLevel         *int                `json:"reorder_level" binding:"omitempty,min=0"`
	Sizes                *[]string           `json:"sizes"`
	Colors               *[]string           `json:"colors"`
	CustomizationOptions *[]string           `json:"customization_options"`
	IsActive             *bool               `json:"is_active"`
}

func (r UpdateProductRequest) apply(d catalog.ProductDetails) catalog.ProductDetails {
	if r.Code != nil {
		d.Code = *r.Code
	}
	if r.Name != nil {
		d.Name = *r.Name
	}
	if r.Description != nil {
		d.Description = *r.Description
	}
	if r.Category != nil {
		d.Category = catalog.Category(*r.Category)
	}
	if r.UniformType != nil {
		d.UniformType = catalog.UniformType(*r.UniformType)
	}
	if r.BasePrice != nil {
		d.BasePrice = *r.BasePrice
	}
	if r.SpecialPrice != nil {
		d.SpecialPrice = r.SpecialPrice
	}
	if r.ClearSpecialPrice {
		d.SpecialPrice = nil
	}
	if r.BulkPricing != nil {
		d.BulkPricing = tiers(*r.BulkPricing)
	}
	if r.ReorderLevel != nil {
		d.ReorderLevel = *r.ReorderLevel
	}
	if r.Sizes != nil {
		d.Sizes = *r.Sizes
	}
	if r.Colors != nil {
		d.Colors = *r.Colors
	}
	if r.CustomizationOptions != nil {
		d.CustomizationOptions = *r.CustomizationOptions
	}
	return d
}

func tiers(in []PriceTierRequest) []catalog.PriceTier {
	out := make([]catalog.PriceTier, len(in))
	for i, t := range in {
		out[i] = catalog.PriceTier{MinQuantity: t.MinQuantity, MaxQuantity: t.MaxQuantity, UnitPrice: t.UnitPrice}
	}
	return out
}

// StockUpdateRequest adjusts stock by quantity
type StockUpdateRequest struct {
	Quantity  int    `json:"quantity" binding:"min=0"`
	Operation string `json:"operation" binding:"required,oneof=increase decrease"`
	Reason    string `json:"reason" binding:"max=500"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search      string           `form:"search"`
	Category    string           `form:"category"`
	UniformType string           `form:"uniform_type"`
	StockStatus string           `form:"stock_status" binding:"omitempty,oneof=out_of_stock low_stock in_stock"`
	IsActive    *bool            `form:"is_active"`
	MinPrice    *decimal.Decimal `form:"min_price"`
	MaxPrice    *decimal.Decimal `form:"max_price"`
	Page        int              `form:"page" binding:"omitempty,min=1"`
	PageSize    int              `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string           `form:"order_by" binding:"omitempty,oneof=code name base_price stock_quantity total_sold created_at updated_at"`
	OrderDir    string           `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductImageResponse represents a product image in API responses
type ProductImageResponse struct {
	ID           uuid.UUID `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	AltText      string    `json:"alt_text,omitempty"`
	IsPrimary    bool      `json:"is_primary"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                   uuid.UUID              `json:"id"`
	Code                 string                 `json:"code"`
	Name                 string                 `json:"name"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	UniformType          string                 `json:"uniform_type"`
	BasePrice            decimal.Decimal        `json:"base_price"`
	SpecialPrice         *decimal.Decimal       `json:"special_price,omitempty"`
	EffectivePrice       decimal.Decimal        `json:"effective_price"`
	BulkPricing          []catalog.PriceTier    `json:"bulk_pricing"`
	StockQuantity        int                    `json:"stock_quantity"`
	ReorderLevel         int                    `json:"reorder_level"`
	StockStatus          string                 `json:"stock_status"`
	Sizes                []string               `json:"sizes"`
	Colors               []string               `json:"colors"`
	CustomizationOptions []string               `json:"customization_options"`
	Images               []ProductImageResponse `json:"images"`
	PrimaryImageURL      string                 `json:"primary_image_url,omitempty"`
	IsActive             bool                   `json:"is_active"`
	TotalSold            int                    `json:"total_sold"`
	TotalRevenue         decimal.Decimal        `json:"total_revenue"`
	Version              int                    `json:"version"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := make([]ProductImageResponse, len(p.Images))
	for i, img := range p.Images {
		images[i] = ProductImageResponse{
			ID:           img.ID,
			URL:          img.URL,
			ThumbnailURL: img.ThumbnailURL,
			AltText:      img.AltText,
			IsPrimary:    img.IsPrimary,
			SortOrder:    img.SortOrder,
			CreatedAt:    img.CreatedAt,
		}
	}
	resp := ProductResponse{
		ID:                   p.ID,
		Code:                 p.Code,
		Name:                 p.Name,
		Description:          p.Description,
		Category:             string(p.Category),
		UniformType:          string(p.UniformType),
		BasePrice:            p.BasePrice,
		SpecialPrice:         p.SpecialPrice,
		EffectivePrice:       p.EffectivePrice(),
		BulkPricing:          p.BulkPricing,
		StockQuantity:        p.StockQuantity,
		ReorderLevel:         p.ReorderLevel,
		StockStatus:          string(p.StockStatus()),
		Sizes:                p.Sizes,
		Colors:               p.Colors,
		CustomizationOptions: p.CustomizationOptions,
		Images:               images,
		IsActive:             p.IsActive,
		TotalSold:            p.TotalSold,
		TotalRevenue:         p.TotalRevenue,
		Version:              p.Version,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
	if primary, ok := p.PrimaryImage(); ok {
		resp.PrimaryImageURL = primary.URL
	}
	return resp
}
