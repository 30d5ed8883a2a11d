package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

func validProductDetails() ProductDetails {
	return ProductDetails{
		Code:         "shirt-wht-01",
		Name:         "White School Shirt",
		Category:     CategoryShirt,
		UniformType:  UniformSchool,
		BasePrice:    decimal.NewFromInt(450),
		ReorderLevel: 10,
		Sizes:        []string{"S", "M", "M", " L "},
	}
}

func newTestProduct(t *testing.T, stock int) *Product {
	t.Helper()
	p, err := NewProduct(validProductDetails(), stock, nil)
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	t.Run("normalizes code and lists", func(t *testing.T) {
		p := newTestProduct(t, 50)
		assert.Equal(t, "SHIRT-WHT-01", p.Code)
		assert.Equal(t, []string{"S", "M", "L"}, p.Sizes)
		assert.True(t, p.IsActive)
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("rejects non-positive base price", func(t *testing.T) {
		d := validProductDetails()
		d.BasePrice = decimal.Zero
		_, err := NewProduct(d, 0, nil)
		assert.Error(t, err)
	})

	t.Run("rejects negative opening stock", func(t *testing.T) {
		_, err := NewProduct(validProductDetails(), -1, nil)
		assert.Error(t, err)
	})

	t.Run("rejects bad code characters", func(t *testing.T) {
		d := validProductDetails()
		d.Code = "SHIRT 01"
		_, err := NewProduct(d, 0, nil)
		assert.Error(t, err)
	})

	t.Run("rejects overlapping tiers", func(t *testing.T) {
		d := validProductDetails()
		d.BulkPricing = []PriceTier{
			{MinQuantity: 50, MaxQuantity: 99, UnitPrice: decimal.NewFromInt(400)},
			{MinQuantity: 90, UnitPrice: decimal.NewFromInt(380)},
		}
		_, err := NewProduct(d, 0, nil)
		assert.Error(t, err)
	})
}

func TestProduct_Pricing(t *testing.T) {
	d := validProductDetails()
	d.BulkPricing = []PriceTier{
		{MinQuantity: 100, UnitPrice: decimal.NewFromInt(380)},
		{MinQuantity: 50, MaxQuantity: 99, UnitPrice: decimal.NewFromInt(410)},
	}
	p, err := NewProduct(d, 0, nil)
	require.NoError(t, err)

	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(450)))
	assert.True(t, p.PriceForQuantity(10).Equal(decimal.NewFromInt(450)))
	assert.True(t, p.PriceForQuantity(50).Equal(decimal.NewFromInt(410)))
	assert.True(t, p.PriceForQuantity(500).Equal(decimal.NewFromInt(380)))

	special := decimal.NewFromInt(420)
	p.SpecialPrice = &special
	assert.True(t, p.EffectivePrice().Equal(special))
	assert.True(t, p.PriceForQuantity(10).Equal(special))
}

func TestProduct_StockStatus(t *testing.T) {
	p := newTestProduct(t, 0)
	assert.Equal(t, StockOut, p.StockStatus())

	p.StockQuantity = 10
	assert.Equal(t, StockLow, p.StockStatus())

	p.StockQuantity = 11
	assert.Equal(t, StockIn, p.StockStatus())
	assert.False(t, p.NeedsReorder())
}

func TestProduct_UpdateStock(t *testing.T) {
	t.Run("increase adds", func(t *testing.T) {
		p := newTestProduct(t, 5)
		require.NoError(t, p.UpdateStock(7, StockIncrease))
		assert.Equal(t, 12, p.StockQuantity)
	})

	t.Run("decrease floors at zero", func(t *testing.T) {
		p := newTestProduct(t, 5)
		require.NoError(t, p.UpdateStock(8, StockDecrease))
		assert.Equal(t, 0, p.StockQuantity)
	})

	t.Run("unknown operation", func(t *testing.T) {
		p := newTestProduct(t, 5)
		err := p.UpdateStock(1, "set")
		require.Error(t, err)
		assert.Equal(t, 5, p.StockQuantity)
	})

	t.Run("negative quantity", func(t *testing.T) {
		p := newTestProduct(t, 5)
		assert.Error(t, p.UpdateStock(-1, StockIncrease))
	})
}

func TestProduct_RecordSale(t *testing.T) {
	p := newTestProduct(t, 5)
	p.RecordSale(3, decimal.NewFromInt(1350))
	p.RecordSale(0, decimal.NewFromInt(99))

	assert.Equal(t, 3, p.TotalSold)
	assert.True(t, p.TotalRevenue.Equal(decimal.NewFromInt(1350)))
}

func TestProduct_Images(t *testing.T) {
	p := newTestProduct(t, 5)
	mk := func(key string) ProductImage {
		img, err := NewProductImage(key, "https://cdn.example/"+key, "", "", "")
		require.NoError(t, err)
		return img
	}
	a, b, c := mk("a.jpg"), mk("b.jpg"), mk("c.jpg")
	require.NoError(t, p.AddImage(a))
	require.NoError(t, p.AddImage(b))
	require.NoError(t, p.AddImage(c))

	primaries := func() int {
		n := 0
		for _, img := range p.Images {
			if img.IsPrimary {
				n++
			}
		}
		return n
	}

	first, ok := p.PrimaryImage()
	require.True(t, ok)
	assert.Equal(t, a.ID, first.ID)
	assert.Equal(t, 1, primaries())

	require.NoError(t, p.SetPrimaryImage(c.ID))
	assert.Equal(t, 1, primaries())
	primary, _ := p.PrimaryImage()
	assert.Equal(t, c.ID, primary.ID)

	removed, err := p.RemoveImage(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "c.jpg", removed.StorageKey)
	assert.Equal(t, 1, primaries())
	primary, _ = p.PrimaryImage()
	assert.Equal(t, a.ID, primary.ID)

	_, err = p.RemoveImage(uuid.New())
	assert.True(t, shared.IsKind(err, shared.KindNotFound))
}

func TestProduct_ImageLimit(t *testing.T) {
	p := newTestProduct(t, 0)
	for i := 0; i < MaxProductImages; i++ {
		img, err := NewProductImage(uuid.NewString(), "https://cdn.example/x", "", "", "")
		require.NoError(t, err)
		require.NoError(t, p.AddImage(img))
	}
	img, _ := NewProductImage("extra", "https://cdn.example/extra", "", "", "")
	assert.Error(t, p.AddImage(img))
}
