package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
)

// RazorpayAdapter implements the order workflow's PaymentGateway against Razorpay
type RazorpayAdapter struct {
	config     *RazorpayConfig
	httpClient *http.Client
}

// NewRazorpayAdapter creates a new Razorpay adapter
func NewRazorpayAdapter(config *RazorpayConfig) (*RazorpayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RazorpayAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the gateway name
func (a *RazorpayAdapter) Name() string {
	return "razorpay"
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayRefund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateIntent creates a gateway order for amountCents in currency
func (a *RazorpayAdapter) CreateIntent(ctx context.Context, receipt string, amountCents int64, currency string) (*apporder.PaymentIntent, error) {
	body, err := json.Marshal(map[string]any{
		"amount":          amountCents,
		"currency":        currency,
		"receipt":         truncate(receipt, 40),
		"payment_capture": 1,
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/orders", body)
	if err != nil {
		return nil, err
	}

	var out razorpayOrder
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("razorpay: failed to parse response: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("%w: response without order id", ErrGatewayRequestFailed)
	}
	return &apporder.PaymentIntent{ID: out.ID, AmountCents: out.Amount, Currency: out.Currency}, nil
}

// CreateRefund refunds amountCents of a captured payment, tagged with receipt
func (a *RazorpayAdapter) CreateRefund(ctx context.Context, paymentID, receipt string, amountCents int64) (*apporder.Refund, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("%w: missing payment id", ErrGatewayRequestFailed)
	}
	req := map[string]any{"amount": amountCents}
	if receipt != "" {
		req["receipt"] = receipt
		req["notes"] = map[string]string{"order_id": receipt}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/payments/"+url.PathEscape(paymentID)+"/refund", body)
	if err != nil {
		return nil, err
	}

	var out razorpayRefund
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("razorpay: failed to parse response: %w", err)
	}
	return &apporder.Refund{ID: out.ID, PaymentID: out.PaymentID, AmountCents: out.Amount, Status: out.Status}, nil
}

// VerifyPaymentSignature checks hex(HMAC-SHA256(keySecret, intentID|paymentID))
func (a *RazorpayAdapter) VerifyPaymentSignature(intentID, paymentID, signature string) bool {
	if intentID == "" || paymentID == "" || signature == "" {
		return false
	}
	return verifyHMAC(a.config.KeySecret, []byte(intentID+"|"+paymentID), signature)
}

// VerifyWebhookSignature checks hex(HMAC-SHA256(webhookSecret, body))
func (a *RazorpayAdapter) VerifyWebhookSignature(body []byte, signature string) bool {
	if a.config.WebhookSecret == "" || signature == "" {
		return false
	}
	return verifyHMAC(a.config.WebhookSecret, body, signature)
}

// ParseWebhookEvent classifies a webhook body
func (a *RazorpayAdapter) ParseWebhookEvent(body []byte) apporder.PaymentEvent {
	return ParseRazorpayWebhook(body)
}

// Sign returns the hex HMAC-SHA256 of message under secret
func Sign(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

func verifyHMAC(secret string, message []byte, signature string) bool {
	expected := Sign(secret, message)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

func (a *RazorpayAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.baseURL()+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(a.config.KeyID, a.config.KeySecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp razorpayErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return nil, fmt.Errorf("%w: %s - %s", ErrGatewayRequestFailed, errResp.Error.Code, errResp.Error.Description)
		}
		return nil, fmt.Errorf("%w: HTTP %d", ErrGatewayRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Ensure RazorpayAdapter implements PaymentGateway
var _ apporder.PaymentGateway = (*RazorpayAdapter)(nil)
