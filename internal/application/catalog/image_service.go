package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/domain/catalog"
	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/imaging"
	"github.com/uniformco/backoffice/internal/infrastructure/storage"
)

// MaxImageUploadSize caps the raw upload accepted by Upload
const MaxImageUploadSize = 10 << 20

// ImageProcessor turns raw upload bytes into the stored renditions
type ImageProcessor interface {
	Process(data []byte) (*imaging.Processed, error)
}

// UploadImageRequest carries one uploaded picture
type UploadImageRequest struct {
	Data    []byte
	AltText string
}

// ImageService manages the picture gallery of products
type ImageService struct {
	productRepo catalog.ProductRepository
	processor   ImageProcessor
	store       storage.ObjectStorage
	logger      *zap.Logger
}

// NewImageService creates a new ImageService
func NewImageService(
	productRepo catalog.ProductRepository,
	processor ImageProcessor,
	store storage.ObjectStorage,
	logger *zap.Logger,
) *ImageService {
	return &ImageService{
		productRepo: productRepo,
		processor:   processor,
		store:       store,
		logger:      logger,
	}
}

// Upload processes an image, stores the main rendition and its thumbnail and
// attaches both to the product. Storage failures surface as a dependency error.
func (s *ImageService) Upload(ctx context.Context, actor identity.Principal, productID uuid.UUID, req UploadImageRequest) (*ProductResponse, error) {
	product, err := s.load(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	if len(req.Data) == 0 {
		return nil, shared.NewValidationError("image", "REQUIRED", "Image file is required")
	}
	if len(req.Data) > MaxImageUploadSize {
		return nil, shared.NewValidationError("image", "FILE_TOO_LARGE", "Image cannot exceed 10 MB")
	}
	if len(product.Images) >= catalog.MaxProductImages {
		return nil, shared.NewValidationError("images", "TOO_MANY_IMAGES", "A product can have at most 10 images")
	}

	processed, err := s.processor.Process(req.Data)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedImage) {
			return nil, shared.NewValidationError("image", "INVALID_IMAGE", "File is not a supported image (jpeg, png, gif, webp)")
		}
		if errors.Is(err, imaging.ErrImageTooLarge) {
			return nil, shared.NewValidationError("image", "INVALID_IMAGE", "Image dimensions cannot exceed 40 megapixels")
		}
		return nil, fmt.Errorf("process image: %w", err)
	}

	mainKey, thumbKey := imageKeys(product.ID)
	mainURL, err := s.store.Put(ctx, mainKey, processed.Main, imaging.ContentType)
	if err != nil {
		s.logger.Error("Failed to store product image", zap.String("key", mainKey), zap.Error(err))
		return nil, errStorageUnavailable
	}
	thumbURL, err := s.store.Put(ctx, thumbKey, processed.Thumbnail, imaging.ContentType)
	if err != nil {
		s.logger.Error("Failed to store product thumbnail", zap.String("key", thumbKey), zap.Error(err))
		s.deleteKey(ctx, mainKey)
		return nil, errStorageUnavailable
	}

	img, err := catalog.NewProductImage(mainKey, mainURL, thumbKey, thumbURL, req.AltText)
	if err == nil {
		err = product.AddImage(img)
	}
	if err == nil {
		err = s.productRepo.Save(ctx, product)
	}
	if err != nil {
		s.deleteKey(ctx, mainKey)
		s.deleteKey(ctx, thumbKey)
		return nil, notFound(err)
	}

	s.logger.Info("Product image uploaded",
		zap.String("product_id", product.ID.String()),
		zap.String("image_id", img.ID.String()),
		zap.Int("width", processed.Width),
		zap.Int("height", processed.Height),
		zap.String("actor", actor.Username))

	resp := ToProductResponse(product)
	return &resp, nil
}

// SetPrimary promotes one image to primary
func (s *ImageService) SetPrimary(ctx context.Context, actor identity.Principal, productID, imageID uuid.UUID) (*ProductResponse, error) {
	product, err := s.load(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	if err := product.SetPrimaryImage(imageID); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, notFound(err)
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Remove detaches an image from the product and deletes its stored objects.
// The record is updated first; object deletion is best effort.
func (s *ImageService) Remove(ctx context.Context, actor identity.Principal, productID, imageID uuid.UUID) (*ProductResponse, error) {
	product, err := s.load(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	removed, err := product.RemoveImage(imageID)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, notFound(err)
	}
	deleteObjects(ctx, s.store, s.logger, removed)

	s.logger.Info("Product image removed",
		zap.String("product_id", product.ID.String()),
		zap.String("image_id", imageID.String()),
		zap.String("actor", actor.Username))

	resp := ToProductResponse(product)
	return &resp, nil
}

func (s *ImageService) load(ctx context.Context, actor identity.Principal, id uuid.UUID) (*catalog.Product, error) {
	if err := identity.Authorize(actor, identity.ResourceProducts, identity.ActionUpdate, nil); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return product, nil
}

func (s *ImageService) deleteKey(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored object", zap.String("key", key), zap.Error(err))
	}
}

var errStorageUnavailable = shared.NewDependencyError("STORAGE_UNAVAILABLE", "Image storage is unavailable, please try again later")

// imageKeys returns the object keys for a new image of productID
func imageKeys(productID uuid.UUID) (main, thumb string) {
	base := fmt.Sprintf("products/%s/%s", productID, uuid.New())
	return base + ".jpg", base + "_thumb.jpg"
}

// deleteObjects removes both renditions of img, logging failures
func deleteObjects(ctx context.Context, store storage.ObjectStorage, logger *zap.Logger, img catalog.ProductImage) {
	for _, key := range []string{img.StorageKey, img.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			logger.Warn("Failed to delete stored object", zap.String("key", key), zap.Error(err))
		}
	}
}
