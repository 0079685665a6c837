package handler

import (
	"errors"
	"io"
	"net/http"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Razorpay webhook headers
const (
	PaymentSignatureHeader = "X-Razorpay-Signature"
	PaymentEventIDHeader   = "X-Razorpay-Event-Id"
)

// PaymentHandler handles client payment confirmation and the gateway webhook
type PaymentHandler struct {
	BaseHandler
	service *apporder.Service
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *apporder.Service) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Verify godoc
// @Summary      Verify a payment
// @Description  Check the gateway signature, mark the order PAID and deduct stock once
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body dto.VerifyPaymentRequest true "Gateway callback fields"
// @Success      200 {object} dto.OKResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/verify [post]
func (h *PaymentHandler) Verify(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req dto.VerifyPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	err := h.service.VerifyPayment(c.Request.Context(), p, apporder.VerifyPaymentRequest{
		OrderID:   uuid.MustParse(req.OrderID),
		IntentID:  req.IntentID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.NewOKResponse())
}

// Webhook godoc
// @Summary      Payment gateway webhook
// @Description  Apply a signed gateway event. Redelivered events are acknowledged without effect.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Razorpay-Signature header string true "HMAC-SHA256 of the raw body"
// @Param        X-Razorpay-Event-Id header string false "Event id used for deduplication"
// @Success      200 {object} dto.OKResponse
// @Failure      401 {object} dto.ErrorResponse
// @Router       /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Request body could not be read")
		return
	}

	err = h.service.HandlePaymentWebhook(c.Request.Context(), body,
		c.GetHeader(PaymentSignatureHeader), c.GetHeader(PaymentEventIDHeader))
	if err != nil {
		h.handleWebhookError(c, err)
		return
	}
	h.OK(c, dto.NewOKResponse())
}

// handleWebhookError answers a bad webhook signature with 401
func (h *BaseHandler) handleWebhookError(c *gin.Context, err error) {
	if errors.Is(err, apporder.ErrInvalidSignature) {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeInvalidSig, apporder.ErrInvalidSignature.Message)
		return
	}
	h.HandleError(c, err)
}
