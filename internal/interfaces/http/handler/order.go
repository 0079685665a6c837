package handler

import (
	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles the customer's own orders
type OrderHandler struct {
	BaseHandler
	service *apporder.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service *apporder.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

// List godoc
// @Summary      List my orders
// @Description  Newest first, optionally filtered by status
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        status query string false "Order status" Enums(PENDING, PAID, SHIPPED, DELIVERED, CANCELLED)
// @Success      200 {object} dto.OrderListResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	filter, ok := bindListFilter(&h.BaseHandler, c)
	if !ok {
		return
	}

	orders, total, err := h.service.ListMyOrders(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.OrderListResponse{
		Orders: dto.NewOrderResponses(orders),
		Meta:   dto.NewListMeta(total, filter.Page, filter.PageSize),
	})
}

// Get godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.OrderResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	o, err := h.service.GetOrder(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.NewOrderResponse(o))
}

// Cancel godoc
// @Summary      Cancel an order
// @Description  Cancel within 24 hours of placement. Stock deducted at payment is restored.
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.OKResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.CancelOrder(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.NewOKResponse())
}

// bindListFilter reads paging and status query parameters
func bindListFilter(h *BaseHandler, c *gin.Context) (order.ListFilter, bool) {
	req := dto.DefaultListRequest()
	if !h.bindQuery(c, &req) {
		return order.ListFilter{}, false
	}
	return order.ListFilter{
		Status:   order.Status(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	}.Normalize(), true
}
