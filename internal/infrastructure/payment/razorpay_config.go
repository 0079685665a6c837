package payment

import (
	"errors"
	"time"
)

const razorpayDefaultBaseURL = "https://api.razorpay.com/v1"

// RazorpayConfig contains credentials for the Razorpay REST API
type RazorpayConfig struct {
	// KeyID is the public API key, used as the basic-auth user
	KeyID string
	// KeySecret signs checkout callbacks and is the basic-auth password
	KeySecret string
	// WebhookSecret signs webhook bodies
	WebhookSecret string
	// BaseURL overrides the API endpoint (tests, proxies)
	BaseURL string
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrRazorpayMissingKeyID     = errors.New("razorpay: missing key ID")
	ErrRazorpayMissingKeySecret = errors.New("razorpay: missing key secret")
)

// Gateway errors
var (
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrGatewayRequestFailed = errors.New("payment gateway request failed")
)

// Validate validates the configuration. The webhook secret is optional;
// without it every webhook fails verification.
func (c *RazorpayConfig) Validate() error {
	if c.KeyID == "" {
		return ErrRazorpayMissingKeyID
	}
	if c.KeySecret == "" {
		return ErrRazorpayMissingKeySecret
	}
	return nil
}

func (c *RazorpayConfig) baseURL() string {
	if c.BaseURL == "" {
		return razorpayDefaultBaseURL
	}
	return c.BaseURL
}
