package handler

import (
	"io"
	"net/http"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TrackingSecretHeader carries the shared secret configured with the carrier
const TrackingSecretHeader = "X-Webhook-Secret"

// ShippingWebhookHandler receives carrier tracking pushes
type ShippingWebhookHandler struct {
	BaseHandler
	service *apporder.Service
}

// NewShippingWebhookHandler creates a new ShippingWebhookHandler
func NewShippingWebhookHandler(service *apporder.Service) *ShippingWebhookHandler {
	return &ShippingWebhookHandler{service: service}
}

// Tracking godoc
// @Summary      Carrier tracking webhook
// @Description  Record a status update for every order with the waybill. Unknown waybills are acknowledged.
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        X-Webhook-Secret header string false "Shared webhook secret"
// @Success      200 {object} dto.TrackingWebhookResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Router       /shipping/webhook [post]
func (h *ShippingWebhookHandler) Tracking(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Request body could not be read")
		return
	}

	updated, err := h.service.HandleTrackingWebhook(c.Request.Context(), c.GetHeader(TrackingSecretHeader), body)
	if err != nil {
		h.handleWebhookError(c, err)
		return
	}
	h.OK(c, dto.TrackingWebhookResponse{OK: true, Updated: updated})
}
