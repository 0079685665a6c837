package handler

import (
	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CheckoutHandler handles cart checkout
type CheckoutHandler struct {
	BaseHandler
	service *apporder.Service
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(service *apporder.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// Checkout godoc
// @Summary      Check out the cart
// @Description  Price the cart, place a PENDING order and open a payment intent for its total
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body dto.CheckoutRequest true "Cart and delivery address"
// @Success      201 {object} dto.CheckoutResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req dto.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	items := make([]apporder.CheckoutItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, apporder.CheckoutItem{
			ProductID: uuid.MustParse(it.ID),
			Quantity:  it.Quantity,
		})
	}

	result, err := h.service.Checkout(c.Request.Context(), p, apporder.CheckoutRequest{
		Address: req.Address.ToInput(),
		Items:   items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.CheckoutResponse{
		OrderID:         result.OrderID.String(),
		GatewayIntentID: result.GatewayIntentID,
		Amount:          result.AmountCents,
		Currency:        result.Currency,
	})
}
