package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity
type ProductModel struct {
	AggregateModel
	Code                 string              `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name                 string              `gorm:"type:varchar(200);not null;index"`
	Description          string              `gorm:"type:text"`
	Category             catalog.Category    `gorm:"type:varchar(20);not null;index"`
	UniformType          catalog.UniformType `gorm:"type:varchar(20);not null;index"`
	BasePrice            decimal.Decimal     `gorm:"type:decimal(18,2);not null;index"`
	SpecialPrice         *decimal.Decimal    `gorm:"type:decimal(18,2)"`
	BulkPricing          PriceTiers
	StockQuantity        int `gorm:"not null;default:0"`
	ReorderLevel         int `gorm:"not null;default:0"`
	Sizes                StringList
	Colors               StringList
	CustomizationOptions StringList
	IsActive             bool            `gorm:"not null;default:true;index"`
	TotalSold            int             `gorm:"not null;default:0"`
	TotalRevenue         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CreatedBy            *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity. Images are attached by the repository.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot:    m.AggregateRoot(),
		Code:                 m.Code,
		Name:                 m.Name,
		Description:          m.Description,
		Category:             m.Category,
		UniformType:          m.UniformType,
		BasePrice:            m.BasePrice,
		SpecialPrice:         m.SpecialPrice,
		BulkPricing:          []catalog.PriceTier(m.BulkPricing),
		StockQuantity:        m.StockQuantity,
		ReorderLevel:         m.ReorderLevel,
		Sizes:                []string(m.Sizes),
		Colors:               []string(m.Colors),
		CustomizationOptions: []string(m.CustomizationOptions),
		Images:               []catalog.ProductImage{},
		IsActive:             m.IsActive,
		TotalSold:            m.TotalSold,
		TotalRevenue:         m.TotalRevenue,
		CreatedBy:            m.CreatedBy,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product entity
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Code:                 p.Code,
		Name:                 p.Name,
		Description:          p.Description,
		Category:             p.Category,
		UniformType:          p.UniformType,
		BasePrice:            p.BasePrice,
		SpecialPrice:         p.SpecialPrice,
		BulkPricing:          PriceTiers(p.BulkPricing),
		StockQuantity:        p.StockQuantity,
		ReorderLevel:         p.ReorderLevel,
		Sizes:                StringList(p.Sizes),
		Colors:               StringList(p.Colors),
		CustomizationOptions: StringList(p.CustomizationOptions),
		IsActive:             p.IsActive,
		TotalSold:            p.TotalSold,
		TotalRevenue:         p.TotalRevenue,
		CreatedBy:            p.CreatedBy,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// ProductImageModel is one stored product image
type ProductImageModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index"`
	StorageKey   string    `gorm:"type:varchar(500);not null"`
	ThumbnailKey string    `gorm:"type:varchar(500)"`
	URL          string    `gorm:"type:varchar(1000);not null"`
	ThumbnailURL string    `gorm:"type:varchar(1000)"`
	AltText      string    `gorm:"type:varchar(200)"`
	IsPrimary    bool      `gorm:"not null;default:false"`
	SortOrder    int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductImageModel) TableName() string {
	return "product_images"
}

// ProductImageModelsFromDomain converts a product's images
func ProductImageModelsFromDomain(productID uuid.UUID, images []catalog.ProductImage) []ProductImageModel {
	out := make([]ProductImageModel, len(images))
	for i, img := range images {
		out[i] = ProductImageModel{
			ID:           img.ID,
			ProductID:    productID,
			StorageKey:   img.StorageKey,
			ThumbnailKey: img.ThumbnailKey,
			URL:          img.URL,
			ThumbnailURL: img.ThumbnailURL,
			AltText:      img.AltText,
			IsPrimary:    img.IsPrimary,
			SortOrder:    img.SortOrder,
			CreatedAt:    img.CreatedAt,
		}
	}
	return out
}

// ToDomain converts the persistence model to a domain image
func (m ProductImageModel) ToDomain() catalog.ProductImage {
	return catalog.ProductImage{
		ID:           m.ID,
		StorageKey:   m.StorageKey,
		ThumbnailKey: m.ThumbnailKey,
		URL:          m.URL,
		ThumbnailURL: m.ThumbnailURL,
		AltText:      m.AltText,
		IsPrimary:    m.IsPrimary,
		SortOrder:    m.SortOrder,
		CreatedAt:    m.CreatedAt,
	}
}
