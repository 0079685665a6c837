package handler

import (
	"errors"
	"net/http"
	"time"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// AdminHandler handles back-office order operations. Routes are mounted
// behind the admin role check; the service checks the role again.
type AdminHandler struct {
	BaseHandler
	service *apporder.Service
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service *apporder.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListOrders godoc
// @Summary      List all orders
// @Tags         admin
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        status query string false "Order status" Enums(PENDING, PAID, SHIPPED, DELIVERED, CANCELLED)
// @Success      200 {object} dto.OrderListResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	filter, ok := bindListFilter(&h.BaseHandler, c)
	if !ok {
		return
	}

	orders, total, err := h.service.ListOrders(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.OrderListResponse{
		Orders: dto.NewOrderResponses(orders),
		Meta:   dto.NewListMeta(total, filter.Page, filter.PageSize),
	})
}

// Refund godoc
// @Summary      Refund an order
// @Description  Refund the captured payment in full through the gateway
// @Tags         admin
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.OrderResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/refund [post]
func (h *AdminHandler) Refund(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	o, err := h.service.RefundOrder(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.NewOrderResponse(o))
}

// CreateShipment godoc
// @Summary      Create a shipment
// @Description  Book a waybill for a paid order. On carrier failure the stored error is returned with the order.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateShipmentRequest true "Order to ship"
// @Success      200 {object} dto.ShipmentResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ShipmentErrorResponse
// @Security     BearerAuth
// @Router       /admin/shipping/create [post]
func (h *AdminHandler) CreateShipment(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req dto.CreateShipmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.service.CreateShipment(c.Request.Context(), p, uuid.MustParse(req.OrderID))
	if err != nil {
		if result != nil && errors.Is(err, apporder.ErrCarrier) {
			c.JSON(http.StatusBadGateway, dto.ShipmentErrorResponse{
				ErrorResponse: dto.NewErrorResponse(apporder.ErrCarrier.Code, err.Error()),
				Order:         dto.NewOrderResponse(result.Order),
			})
			return
		}
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.ShipmentResponse{
		Order:           dto.NewOrderResponse(result.Order),
		CarrierResponse: result.CarrierResponse,
	})
}

// RequestPickup godoc
// @Summary      Request a carrier pickup
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body dto.PickupRequest true "Pickup details"
// @Success      200 {object} dto.PickupResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/shipping/pickup [post]
func (h *AdminHandler) RequestPickup(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req dto.PickupRequest
	if !h.bindJSON(c, &req) {
		return
	}
	date, _ := time.Parse(dateLayout, req.Date)

	pickup, err := h.service.RequestPickup(c.Request.Context(), p, apporder.PickupRequest{
		Location:      req.Location,
		Date:          date,
		ExpectedCount: req.ExpectedCount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.PickupResponse{PickupID: pickup.ID, CarrierResponse: pickup.Raw})
}

// ExportGST godoc
// @Summary      Export the GST report
// @Description  Upload a CSV of paid orders in the inclusive date range and return a presigned link
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body dto.GSTReportRequest true "Report period"
// @Success      200 {object} dto.GSTReportResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/reports/gst [post]
func (h *AdminHandler) ExportGST(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req dto.GSTReportRequest
	if !h.bindJSON(c, &req) {
		return
	}
	from, _ := time.Parse(dateLayout, req.From)
	to, _ := time.Parse(dateLayout, req.To)

	report, err := h.service.ExportGST(c.Request.Context(), p, from, to.AddDate(0, 0, 1))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.GSTReportResponse{
		Key:        report.Key,
		URL:        report.URL,
		OrderCount: report.OrderCount,
		ExpiresAt:  report.ExpiresAt,
	})
}
