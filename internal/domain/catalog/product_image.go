package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// MaxProductImages caps the gallery size per product
const MaxProductImages = 10

// ProductImage is a stored product picture. Keys point into object storage;
// URL is the public address of the processed image.
type ProductImage struct {
	ID           uuid.UUID
	StorageKey   string
	ThumbnailKey string
	URL          string
	ThumbnailURL string
	AltText      string
	IsPrimary    bool
	SortOrder    int
	CreatedAt    time.Time
}

// NewProductImage creates an image record for an already stored object
func NewProductImage(storageKey, url, thumbnailKey, thumbnailURL, altText string) (ProductImage, error) {
	storageKey = strings.TrimSpace(storageKey)
	if storageKey == "" {
		return ProductImage{}, shared.NewValidationError("storage_key", "REQUIRED", "Storage key cannot be empty")
	}
	if url == "" {
		return ProductImage{}, shared.NewValidationError("url", "REQUIRED", "Image URL cannot be empty")
	}
	if len(altText) > 200 {
		return ProductImage{}, shared.NewValidationError("alt_text", "TOO_LONG", "Alt text cannot exceed 200 characters")
	}
	return ProductImage{
		ID:           uuid.New(),
		StorageKey:   storageKey,
		ThumbnailKey: thumbnailKey,
		URL:          url,
		ThumbnailURL: thumbnailURL,
		AltText:      strings.TrimSpace(altText),
		CreatedAt:    time.Now(),
	}, nil
}

// AddImage appends an image. The first image of a product becomes primary.
func (p *Product) AddImage(img ProductImage) error {
	if len(p.Images) >= MaxProductImages {
		return shared.NewValidationError("images", "TOO_MANY_IMAGES", "A product can have at most 10 images")
	}
	img.IsPrimary = len(p.Images) == 0
	img.SortOrder = len(p.Images)
	p.Images = append(p.Images, img)
	p.Touch()
	return nil
}

// SetPrimaryImage marks one image as primary and demotes all others
func (p *Product) SetPrimaryImage(imageID uuid.UUID) error {
	idx := p.imageIndex(imageID)
	if idx < 0 {
		return shared.NewNotFoundError("IMAGE_NOT_FOUND", "Image not found")
	}
	for i := range p.Images {
		p.Images[i].IsPrimary = i == idx
	}
	p.Touch()
	return nil
}

// RemoveImage deletes an image and returns it so the caller can drop the stored objects.
// If the primary image is removed the next remaining image is promoted.
func (p *Product) RemoveImage(imageID uuid.UUID) (ProductImage, error) {
	idx := p.imageIndex(imageID)
	if idx < 0 {
		return ProductImage{}, shared.NewNotFoundError("IMAGE_NOT_FOUND", "Image not found")
	}
	removed := p.Images[idx]
	p.Images = append(p.Images[:idx], p.Images[idx+1:]...)
	for i := range p.Images {
		p.Images[i].SortOrder = i
	}
	if removed.IsPrimary && len(p.Images) > 0 {
		p.Images[0].IsPrimary = true
	}
	p.Touch()
	return removed, nil
}

// PrimaryImage returns the primary image, if any
func (p *Product) PrimaryImage() (ProductImage, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	return ProductImage{}, false
}

func (p *Product) imageIndex(id uuid.UUID) int {
	for i, img := range p.Images {
		if img.ID == id {
			return i
		}
	}
	return -1
}
