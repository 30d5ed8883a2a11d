package handler

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/domain/catalog"
	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/interfaces/http/dto"
	"github.com/uniformco/backoffice/internal/testutil"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: 80, B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, path string, file []byte, altText string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "front.png")
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("alt_text", altText))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProductHandler_ImageLifecycle(t *testing.T) {
	s := newAPIServer(t)
	manager := s.tokenFor(testutil.CreateUser(t, s.db, "maria", identity.RoleManager))
	shirt := testutil.CreateProduct(t, s.db, "SHIRT-01", 10)
	base := "/api/v1/products/" + shirt.ID.String() + "/images"

	w := s.send(uploadRequest(t, base, pngBytes(t, 400, 300), "Front view"), manager)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	images := data(t, w)["images"].([]any)
	require.Len(t, images, 1)
	img := images[0].(map[string]any)
	assert.Equal(t, true, img["is_primary"])
	assert.Equal(t, "Front view", img["alt_text"])
	assert.True(t, strings.HasPrefix(img["url"].(string), "http://files.test/products/"))
	assert.True(t, strings.HasSuffix(img["thumbnail_url"].(string), "_thumb.jpg"))

	w = s.do(http.MethodDelete, base+"/"+img["id"].(string), manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, data(t, w)["images"])
}

func TestProductHandler_UploadRejections(t *testing.T) {
	s := newAPIServer(t)
	manager := s.tokenFor(testutil.CreateUser(t, s.db, "maria", identity.RoleManager))
	shirt := testutil.CreateProduct(t, s.db, "SHIRT-01", 10)
	base := "/api/v1/products/" + shirt.ID.String() + "/images"

	t.Run("not an image", func(t *testing.T) {
		w := s.send(uploadRequest(t, base, []byte("plain text, not pixels"), ""), manager)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_IMAGE", errCode(t, w))
	})

	t.Run("missing field", func(t *testing.T) {
		w := s.do(http.MethodPost, base, manager, map[string]any{"alt_text": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidInput, errCode(t, w))
	})

	t.Run("unknown product", func(t *testing.T) {
		path := "/api/v1/products/" + testutil.NewTestUUID("ghost").String() + "/images"
		w := s.send(uploadRequest(t, path, pngBytes(t, 20, 20), ""), manager)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProductHandler_StockAdjustment(t *testing.T) {
	s := newAPIServer(t)
	manager := s.tokenFor(testutil.CreateUser(t, s.db, "maria", identity.RoleManager))
	shirt := testutil.CreateProduct(t, s.db, "SHIRT-01", 10)
	path := "/api/v1/products/" + shirt.ID.String() + "/stock"

	w := s.do(http.MethodPatch, path, manager, map[string]any{"quantity": 4, "operation": "decrease"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(6), data(t, w)["stock_quantity"])
	assert.NotContains(t, s.events.Types(), catalog.EventTypeProductLowStock)

	w = s.do(http.MethodPatch, path, manager, map[string]any{"quantity": 7, "operation": "decrease"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(0), data(t, w)["stock_quantity"])
	assert.Contains(t, s.events.Types(), catalog.EventTypeProductLowStock)

	w = s.do(http.MethodPatch, path, manager, map[string]any{"quantity": 3, "operation": "restock"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, errCode(t, w))
}

func TestProductHandler_Import(t *testing.T) {
	s := newAPIServer(t)
	manager := s.tokenFor(testutil.CreateUser(t, s.db, "maria", identity.RoleManager))

	csv := "Code,Name,Category,Uniform Type,Base Price,Stock Quantity\n" +
		"POLO-01,Staff polo,shirt,corporate,14.50,120\n" +
		"POLO-02,Staff polo navy,shirt,corporate,not-a-price,10\n"
	importRequest := func() *http.Request {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "catalogue.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(csv))
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	w := s.send(importRequest(), manager)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := data(t, w)
	assert.Equal(t, []any{"POLO-01"}, result["created"])
	rowErrors := result["errors"].([]any)
	require.Len(t, rowErrors, 1)
	assert.Equal(t, float64(3), rowErrors[0].(map[string]any)["line"])

	w = s.send(importRequest(), manager)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"POLO-01"}, data(t, w)["skipped"])

	w = s.do(http.MethodPost, "/api/v1/products/import", manager, map[string]any{"file": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, errCode(t, w))
}
