package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/infrastructure/config"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, h/2, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestPipeline_ResizesLargeImages(t *testing.T) {
	p := NewPipeline(config.ImageConfig{})

	out, err := p.Process(pngOf(t, 2400, 1200))
	require.NoError(t, err)

	assert.Equal(t, 1200, out.Width)
	assert.Equal(t, 600, out.Height)
	w, h := decodedSize(t, out.Main)
	assert.Equal(t, [2]int{1200, 600}, [2]int{w, h})
	w, h = decodedSize(t, out.Thumbnail)
	assert.Equal(t, [2]int{300, 150}, [2]int{w, h})
}

func TestPipeline_PortraitFitsHeight(t *testing.T) {
	p := NewPipeline(config.ImageConfig{MaxWidth: 800, ThumbnailWidth: 200})

	out, err := p.Process(pngOf(t, 1000, 2000))
	require.NoError(t, err)
	w, h := decodedSize(t, out.Main)
	assert.Equal(t, [2]int{400, 800}, [2]int{w, h})
	w, h = decodedSize(t, out.Thumbnail)
	assert.Equal(t, [2]int{100, 200}, [2]int{w, h})
}

func TestPipeline_NeverUpscales(t *testing.T) {
	p := NewPipeline(config.ImageConfig{})

	out, err := p.Process(pngOf(t, 120, 80))
	require.NoError(t, err)
	w, h := decodedSize(t, out.Main)
	assert.Equal(t, [2]int{120, 80}, [2]int{w, h})
	w, h = decodedSize(t, out.Thumbnail)
	assert.Equal(t, [2]int{120, 80}, [2]int{w, h})
}

func TestPipeline_RejectsNonImages(t *testing.T) {
	p := NewPipeline(config.ImageConfig{})
	_, err := p.Process([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

// pngHeader is a PNG signature and IHDR chunk declaring w x h with no pixel data
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 0, 17)
	ihdr = append(ihdr, "IHDR"...)
	ihdr = binary.BigEndian.AppendUint32(ihdr, w)
	ihdr = binary.BigEndian.AppendUint32(ihdr, h)
	ihdr = append(ihdr, 8, 6, 0, 0, 0)

	out := []byte("\x89PNG\r\n\x1a\n")
	out = binary.BigEndian.AppendUint32(out, 13)
	out = append(out, ihdr...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(ihdr))
}

// gifHeader is a GIF logical screen descriptor declaring w x h
func gifHeader(w, h uint16) []byte {
	out := []byte("GIF89a")
	out = binary.LittleEndian.AppendUint16(out, w)
	out = binary.LittleEndian.AppendUint16(out, h)
	return append(out, 0, 0, 0)
}

func TestPipeline_RejectsOversizedDimensions(t *testing.T) {
	p := NewPipeline(config.ImageConfig{})

	tests := []struct {
		name string
		data []byte
	}{
		{"png", pngHeader(60000, 60000)},
		{"gif", gifHeader(65000, 65000)},
		{"just over the cap", pngHeader(8000, 5001)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Process(tt.data)
			assert.ErrorIs(t, err, ErrImageTooLarge)
		})
	}
}
