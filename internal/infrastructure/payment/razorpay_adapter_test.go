package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *RazorpayAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewRazorpayAdapter(&RazorpayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     "key_secret",
		WebhookSecret: "hook_secret",
		BaseURL:       server.URL,
	})
	require.NoError(t, err)
	return adapter
}

func TestRazorpayConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *RazorpayConfig
		wantErr error
	}{
		{"valid config", &RazorpayConfig{KeyID: "k", KeySecret: "s"}, nil},
		{"missing key id", &RazorpayConfig{KeySecret: "s"}, ErrRazorpayMissingKeyID},
		{"missing key secret", &RazorpayConfig{KeyID: "k"}, ErrRazorpayMissingKeySecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.config.Validate(), tt.wantErr)
		})
	}

	_, err := NewRazorpayAdapter(&RazorpayConfig{})
	assert.ErrorIs(t, err, ErrRazorpayMissingKeyID)
}

func TestRazorpayAdapter_CreateIntent(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "key_secret", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(21240), body["amount"])
		assert.Equal(t, "INR", body["currency"])
		assert.Len(t, body["receipt"], 36)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_Abc123","amount":21240,"currency":"INR","status":"created"}`))
	})

	intent, err := adapter.CreateIntent(context.Background(), "0d9f6c1e-6a3c-4d57-9bb5-2f0f1f6f8a11", 21240, "INR")
	require.NoError(t, err)
	assert.Equal(t, "order_Abc123", intent.ID)
	assert.Equal(t, int64(21240), intent.AmountCents)
}

func TestRazorpayAdapter_CreateIntent_Errors(t *testing.T) {
	t.Run("gateway error body", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
		})
		_, err := adapter.CreateIntent(context.Background(), "r", 1, "INR")
		assert.ErrorIs(t, err, ErrGatewayRequestFailed)
		assert.Contains(t, err.Error(), "amount too small")
	})

	t.Run("plain 5xx", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := adapter.CreateIntent(context.Background(), "r", 100, "INR")
		assert.ErrorIs(t, err, ErrGatewayRequestFailed)
		assert.Contains(t, err.Error(), "HTTP 502")
	})

	t.Run("unreachable", func(t *testing.T) {
		adapter, err := NewRazorpayAdapter(&RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: "http://127.0.0.1:1"})
		require.NoError(t, err)
		_, err = adapter.CreateIntent(context.Background(), "r", 100, "INR")
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
	})
}

func TestRazorpayAdapter_CreateRefund(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/pay_123/refund", r.URL.Path)
		var req struct {
			Amount  int64             `json:"amount"`
			Receipt string            `json:"receipt"`
			Notes   map[string]string `json:"notes"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(500), req.Amount)
		assert.Equal(t, "ord-42", req.Receipt)
		assert.Equal(t, "ord-42", req.Notes["order_id"])
		_, _ = w.Write([]byte(`{"id":"rfnd_1","payment_id":"pay_123","amount":500,"status":"processed"}`))
	})

	refund, err := adapter.CreateRefund(context.Background(), "pay_123", "ord-42", 500)
	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", refund.ID)
	assert.Equal(t, "processed", refund.Status)

	_, err = adapter.CreateRefund(context.Background(), "", "ord-42", 500)
	assert.ErrorIs(t, err, ErrGatewayRequestFailed)
}

func TestRazorpayAdapter_Signatures(t *testing.T) {
	adapter, err := NewRazorpayAdapter(&RazorpayConfig{KeyID: "k", KeySecret: "key_secret", WebhookSecret: "hook_secret"})
	require.NoError(t, err)

	t.Run("payment signature", func(t *testing.T) {
		sig := Sign("key_secret", []byte("order_1|pay_1"))
		assert.True(t, adapter.VerifyPaymentSignature("order_1", "pay_1", sig))
		assert.True(t, adapter.VerifyPaymentSignature("order_1", "pay_1", " "+sig+" "))
		assert.False(t, adapter.VerifyPaymentSignature("order_1", "pay_2", sig))
		assert.False(t, adapter.VerifyPaymentSignature("order_1", "pay_1", Sign("other", []byte("order_1|pay_1"))))
		assert.False(t, adapter.VerifyPaymentSignature("order_1", "pay_1", ""))
	})

	t.Run("webhook signature", func(t *testing.T) {
		body := []byte(`{"event":"payment.captured"}`)
		assert.True(t, adapter.VerifyWebhookSignature(body, Sign("hook_secret", body)))
		assert.False(t, adapter.VerifyWebhookSignature(append(body, ' '), Sign("hook_secret", body)))
		assert.False(t, adapter.VerifyWebhookSignature(body, Sign("key_secret", body)))
	})

	t.Run("webhook secret unset rejects everything", func(t *testing.T) {
		noHook, err := NewRazorpayAdapter(&RazorpayConfig{KeyID: "k", KeySecret: "s"})
		require.NoError(t, err)
		body := []byte(`{}`)
		assert.False(t, noHook.VerifyWebhookSignature(body, Sign("", body)))
	})
}

func TestParseRazorpayWebhook(t *testing.T) {
	tests := []struct {
		name string
		body string
		want apporder.PaymentEvent
	}{
		{
			name: "payment captured",
			body: `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`,
			want: apporder.PaymentEvent{Kind: apporder.PaymentEventCaptured, EventType: "payment.captured", IntentID: "order_1", PaymentID: "pay_1"},
		},
		{
			name: "order paid",
			body: `{"event":"order.paid","payload":{"order":{"entity":{"id":"order_2"}},"payment":{"entity":{"id":"pay_2"}}}}`,
			want: apporder.PaymentEvent{Kind: apporder.PaymentEventCaptured, EventType: "order.paid", IntentID: "order_2", PaymentID: "pay_2"},
		},
		{
			name: "refund processed",
			body: `{"event":"refund.processed","payload":{"refund":{"entity":{"id":"rfnd_1","payment_id":"pay_3"}}}}`,
			want: apporder.PaymentEvent{Kind: apporder.PaymentEventRefunded, EventType: "refund.processed", PaymentID: "pay_3", RefundID: "rfnd_1"},
		},
		{
			name: "captured without order id",
			body: `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1"}}}}`,
			want: apporder.PaymentEvent{Kind: apporder.PaymentEventUnrecognized, EventType: "payment.captured"},
		},
		{
			name: "other event",
			body: `{"event":"payment.authorized","payload":{}}`,
			want: apporder.PaymentEvent{Kind: apporder.PaymentEventUnrecognized, EventType: "payment.authorized"},
		},
		{
			name: "not json",
			body: `event=payment.captured`,
			want: apporder.PaymentEvent{Kind: apporder.PaymentEventUnrecognized},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRazorpayWebhook([]byte(tt.body)))
		})
	}
}
