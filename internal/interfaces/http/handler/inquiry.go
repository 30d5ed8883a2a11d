package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	partnerapp "github.com/uniformco/backoffice/internal/application/partner"
	salesapp "github.com/uniformco/backoffice/internal/application/sales"
	"github.com/uniformco/backoffice/internal/interfaces/http/dto"
)

// InquiryHandler handles inquiry HTTP requests, including the public
// submission form
type InquiryHandler struct {
	BaseHandler
	inquiryService *salesapp.InquiryService
}

// NewInquiryHandler creates a new InquiryHandler
func NewInquiryHandler(inquiryService *salesapp.InquiryService) *InquiryHandler {
	return &InquiryHandler{
		inquiryService: inquiryService,
	}
}

// Submit godoc
// @Summary      Submit an inquiry from the public website
// @Description  No authentication. Only the receipt is returned.
// @Tags         public
// @Router       /public/inquiries [post]
func (h *InquiryHandler) Submit(c *gin.Context) {
	var req salesapp.SubmitInquiryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	receipt, err := h.inquiryService.Submit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, receipt)
}

// Create godoc
// @Summary      Record an inquiry taken by staff
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries [post]
func (h *InquiryHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req salesapp.CreateInquiryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	inquiry, err := h.inquiryService.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, inquiry)
}

// GetByID godoc
// @Summary      Get inquiry by ID
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries/{id} [get]
func (h *InquiryHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	inquiry, err := h.inquiryService.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inquiry)
}

// List godoc
// @Summary      List inquiries
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries [get]
func (h *InquiryHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filter salesapp.InquiryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.inquiryService.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Update godoc
// @Summary      Update an inquiry
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries/{id} [put]
func (h *InquiryHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req salesapp.UpdateInquiryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	inquiry, err := h.inquiryService.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inquiry)
}

// AddNote godoc
// @Summary      Append a note
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries/{id}/notes [post]
func (h *InquiryHandler) AddNote(c *gin.Context) {
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

	inquiry, err := h.inquiryService.AddNote(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, inquiry)
}

// AddCommunication godoc
// @Summary      Log a communication
// @Description  The first outbound contact moves a new inquiry to contacted
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries/{id}/communications [post]
func (h *InquiryHandler) AddCommunication(c *gin.Context) {
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

	inquiry, err := h.inquiryService.AddCommunication(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, inquiry)
}

// UpdateStatus godoc
// @Summary      Change the inquiry status
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries/{id}/status [patch]
func (h *InquiryHandler) UpdateStatus(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req salesapp.InquiryStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	inquiry, err := h.inquiryService.UpdateStatus(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inquiry)
}

// Assign godoc
// @Summary      Assign to a user
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries/{id}/assign [patch]
func (h *InquiryHandler) Assign(c *gin.Context) {
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

	inquiry, err := h.inquiryService.Assign(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inquiry)
}

// ScheduleFollowUp godoc
// @Summary      Schedule the next follow-up
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries/{id}/follow-up [put]
func (h *InquiryHandler) ScheduleFollowUp(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req salesapp.FollowUpRequest
	if !h.bindJSON(c, &req) {
		return
	}

	inquiry, err := h.inquiryService.ScheduleFollowUp(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inquiry)
}

// Convert godoc
// @Summary      Convert an inquiry into a customer
// @Description  Merges into the customer with the same email or creates one
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries/{id}/convert [post]
func (h *InquiryHandler) Convert(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req salesapp.ConvertInquiryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.inquiryService.Convert(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.IsNewCustomer {
		h.Created(c, result)
		return
	}
	h.Success(c, result)
}

// LinkOrder godoc
// @Summary      Link an order to a converted inquiry
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries/{id}/orders [post]
func (h *InquiryHandler) LinkOrder(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req salesapp.LinkOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	inquiry, err := h.inquiryService.LinkOrder(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inquiry)
}

// DueFollowUps godoc
// @Summary      Open inquiries whose follow-up is due
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries/follow-ups/due [get]
func (h *InquiryHandler) DueFollowUps(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	inquiries, err := h.inquiryService.DueFollowUps(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inquiries)
}

// Delete godoc
// @Summary      Delete an inquiry
// @Tags         inquiries
// @Security     BearerAuth
// @Router       /inquiries/{id} [delete]
func (h *InquiryHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.inquiryService.Delete(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
