package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/uniformco/backoffice/internal/application/catalog"
	"github.com/uniformco/backoffice/internal/interfaces/http/dto"
)

// ProductHandler handles product catalog HTTP requests
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	imageService   *catalogapp.ImageService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, imageService *catalogapp.ImageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		imageService:   imageService,
	}
}

// Create godoc
// @Summary      Create a new product
// @Tags         products
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID godoc
// @Summary      Get product by ID
// @Tags         products
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.productService.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Update godoc
// @Summary      Update a product
// @Tags         products
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product that no order references
// @Tags         products
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// UpdateStock godoc
// @Summary      Increase or decrease stock
// @Tags         products
// @Security     BearerAuth
// @Router       /products/{id}/stock [patch]
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req catalogapp.StockUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateStock(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Activate godoc
// @Summary      Activate a product
// @Tags         products
// @Security     BearerAuth
// @Router       /products/{id}/activate [post]
func (h *ProductHandler) Activate(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Activate(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Deactivate godoc
// @Summary      Deactivate a product
// @Tags         products
// @Security     BearerAuth
// @Router       /products/{id}/deactivate [post]
func (h *ProductHandler) Deactivate(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Deactivate(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// LowStock godoc
// @Summary      Active products at or under their reorder level
// @Tags         products
// @Security     BearerAuth
// @Router       /products/low-stock [get]
func (h *ProductHandler) LowStock(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	products, err := h.productService.LowStock(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// Import godoc
// @Summary      Import products from a CSV catalogue (multipart field "file")
// @Tags         products
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Router       /products/import [post]
func (h *ProductHandler) Import(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Multipart field 'file' is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable upload")
		return
	}
	defer f.Close()

	result, err := h.productService.Import(c.Request.Context(), p, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UploadImage godoc
// @Summary      Upload a product image (multipart field "image")
// @Tags         products
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Router       /products/{id}/images [post]
func (h *ProductHandler) UploadImage(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Multipart field 'image' is required")
		return
	}
	if fh.Size > catalogapp.MaxImageUploadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Image cannot exceed 10 MB")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable upload")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, catalogapp.MaxImageUploadSize+1))
	if err != nil {
		h.BadRequest(c, "Unreadable upload")
		return
	}

	product, err := h.imageService.Upload(c.Request.Context(), p, id, catalogapp.UploadImageRequest{
		Data:    data,
		AltText: c.PostForm("alt_text"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// SetPrimaryImage godoc
// @Summary      Make an image the product's primary picture
// @Tags         products
// @Security     BearerAuth
// @Router       /products/{id}/images/{image_id}/primary [put]
func (h *ProductHandler) SetPrimaryImage(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.pathID(c, "image_id")
	if !ok {
		return
	}

	product, err := h.imageService.SetPrimary(c.Request.Context(), p, id, imageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// RemoveImage godoc
// @Summary      Remove a product image
// @Tags         products
// @Security     BearerAuth
// @Router       /products/{id}/images/{image_id} [delete]
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.pathID(c, "image_id")
	if !ok {
		return
	}

	product, err := h.imageService.Remove(c.Request.Context(), p, id, imageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}
