package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	tradeapp "github.com/uniformco/backoffice/internal/application/trade"
	"github.com/uniformco/backoffice/internal/interfaces/http/dto"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Create godoc
// @Summary      Create an order
// @Description  Reserves stock for every line in one step; a short line rejects the whole order
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req tradeapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @Summary      Get order by ID
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List godoc
// @Summary      List orders
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filter tradeapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.orderService.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Update godoc
// @Summary      Update order amounts and delivery details
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req tradeapp.UpdateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// AddItem godoc
// @Summary      Add a line to a draft or pending order
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req tradeapp.OrderItemInput
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.AddItem(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// RemoveItem godoc
// @Summary      Remove a line and release its stock
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders/{id}/items/{item_id} [delete]
func (h *OrderHandler) RemoveItem(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "item_id")
	if !ok {
		return
	}

	order, err := h.orderService.RemoveItem(c.Request.Context(), p, id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateStatus godoc
// @Summary      Move the order through its lifecycle
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req tradeapp.OrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// RecordPayment godoc
// @Summary      Record a payment
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders/{id}/payments [post]
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req tradeapp.PaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.RecordPayment(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// RecordQualityCheck godoc
// @Summary      Record a quality check
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders/{id}/quality-checks [post]
func (h *OrderHandler) RecordQualityCheck(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req tradeapp.QualityCheckRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.RecordQualityCheck(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// AddNote godoc
// @Summary      Append a note
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders/{id}/notes [post]
func (h *OrderHandler) AddNote(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req tradeapp.NoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.AddNote(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// Assign godoc
// @Summary      Assign to a user
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders/{id}/assign [patch]
func (h *OrderHandler) Assign(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req tradeapp.AssignRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Assign(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete godoc
// @Summary      Delete a draft order and release its stock
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
