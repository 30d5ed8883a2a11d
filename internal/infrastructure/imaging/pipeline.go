// Package imaging turns uploaded product pictures into a bounded main image
// and a thumbnail, both re-encoded as JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // decoder registration
	_ "image/jpeg" // decoder registration
	_ "image/png"  // decoder registration

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // decoder registration

	"github.com/uniformco/backoffice/internal/infrastructure/config"
)

// ContentType is the type of every processed image
const ContentType = "image/jpeg"

// MaxPixels caps the declared width times height of an upload. Decoders
// allocate the full canvas before reading pixel data.
const MaxPixels = 40_000_000

var (
	// ErrUnsupportedImage is returned for data no registered decoder accepts
	ErrUnsupportedImage = errors.New("unsupported image format")

	// ErrImageTooLarge is returned when the declared dimensions exceed MaxPixels
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// Processed holds the encoded outputs of the pipeline
type Processed struct {
	Main      []byte
	Thumbnail []byte
	Width     int
	Height    int
}

// Pipeline resizes and re-encodes images
type Pipeline struct {
	maxWidth       int
	thumbnailWidth int
	quality        int
}

// NewPipeline creates a pipeline from configuration
func NewPipeline(cfg config.ImageConfig) *Pipeline {
	p := &Pipeline{maxWidth: cfg.MaxWidth, thumbnailWidth: cfg.ThumbnailWidth, quality: cfg.Quality}
	if p.maxWidth <= 0 {
		p.maxWidth = 1200
	}
	if p.thumbnailWidth <= 0 {
		p.thumbnailWidth = 300
	}
	if p.quality <= 0 || p.quality > 100 {
		p.quality = 85
	}
	return p
}

// Process decodes data, applies EXIF orientation, and produces a main image no
// wider or taller than the max width and a thumbnail fitted into a square of
// the thumbnail width. Images are never upscaled.
func (p *Pipeline) Process(data []byte) (*Processed, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedImage
		}
		return nil, fmt.Errorf("read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, ErrImageTooLarge
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedImage
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}

	main := fit(src, p.maxWidth)
	thumb := fit(src, p.thumbnailWidth)

	mainBytes, err := p.encode(main)
	if err != nil {
		return nil, err
	}
	thumbBytes, err := p.encode(thumb)
	if err != nil {
		return nil, err
	}
	b := main.Bounds()
	return &Processed{Main: mainBytes, Thumbnail: thumbBytes, Width: b.Dx(), Height: b.Dy()}, nil
}

func fit(src image.Image, size int) image.Image {
	b := src.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		return src
	}
	return imaging.Fit(src, size, size, imaging.Lanczos)
}

func (p *Pipeline) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	// JPEG has no alpha; flatten onto white so transparent PNGs don't turn black
	flat := imaging.Overlay(imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), image.White.C), img, image.Pt(0, 0), 1)
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
