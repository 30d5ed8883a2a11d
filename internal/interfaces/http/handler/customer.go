package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	partnerapp "github.com/uniformco/backoffice/internal/application/partner"
	"github.com/uniformco/backoffice/internal/interfaces/http/dto"
)

// PageQuery holds plain pagination parameters
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// Create godoc
// @Summary      Create a new customer
// @Tags         customers
// @Security     BearerAuth
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req partnerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// GetByID godoc
// @Summary      Get customer by ID
// @Tags         customers
// @Security     BearerAuth
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// List godoc
// @Summary      List customers
// @Description  Staff only see customers assigned to them
// @Tags         customers
// @Security     BearerAuth
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filter partnerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.customerService.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Update godoc
// @Summary      Update a customer
// @Tags         customers
// @Security     BearerAuth
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req partnerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Delete godoc
// @Summary      Delete a customer without orders
// @Tags         customers
// @Security     BearerAuth
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddNote godoc
// @Summary      Append a note
// @Tags         customers
// @Security     BearerAuth
// @Router       /customers/{id}/notes [post]
func (h *CustomerHandler) AddNote(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req partnerapp.NoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.AddNote(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// AddCommunication godoc
// @Summary      Log a communication
// @Tags         customers
// @Security     BearerAuth
// @Router       /customers/{id}/communications [post]
func (h *CustomerHandler) AddCommunication(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req partnerapp.CommunicationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.AddCommunication(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// UpdateStatus godoc
// @Summary      Change the lifecycle status
// @Tags         customers
// @Security     BearerAuth
// @Router       /customers/{id}/status [patch]
func (h *CustomerHandler) UpdateStatus(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req partnerapp.CustomerStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.UpdateStatus(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Assign godoc
// @Summary      Assign to a user
// @Tags         customers
// @Security     BearerAuth
// @Router       /customers/{id}/assign [patch]
func (h *CustomerHandler) Assign(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req partnerapp.AssignRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Assign(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// UpdateTags godoc
// @Summary      Add and remove tags
// @Tags         customers
// @Security     BearerAuth
// @Router       /customers/{id}/tags [patch]
func (h *CustomerHandler) UpdateTags(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req partnerapp.TagsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.UpdateTags(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Orders godoc
// @Summary      Order history of a customer
// @Tags         customers
// @Security     BearerAuth
// @Router       /customers/{id}/orders [get]
func (h *CustomerHandler) Orders(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var query PageQuery
	if !h.bindQuery(c, &query) {
		return
	}

	page, err := h.customerService.Orders(c.Request.Context(), p, id, query.Page, query.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// CountByStatus godoc
// @Summary      Customer counts per status
// @Tags         customers
// @Security     BearerAuth
// @Router       /customers/stats/count [get]
func (h *CustomerHandler) CountByStatus(c *gin.Context) {
	counts, err := h.customerService.CountByStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, counts)
}
