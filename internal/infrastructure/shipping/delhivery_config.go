package shipping

import (
	"errors"
	"time"
)

const (
	delhiveryDefaultBaseURL     = "https://track.delhivery.com"
	delhiveryDefaultTrackingURL = "https://www.delhivery.com/track/package/%s"
)

// DelhiveryConfig contains the settings for the Delhivery B2C API
type DelhiveryConfig struct {
	BaseURL  string
	APIToken string
	// PickupLocation is the registered warehouse name used for manifests and pickups
	PickupLocation string
	// TrackingURLFormat is a fmt format taking the waybill
	TrackingURLFormat string
	Timeout           time.Duration
}

// Errors for configuration validation
var (
	ErrDelhiveryMissingToken          = errors.New("delhivery: missing API token")
	ErrDelhiveryMissingPickupLocation = errors.New("delhivery: missing pickup location")
)

// Carrier errors
var (
	ErrCarrierUnavailable   = errors.New("carrier unavailable")
	ErrCarrierRequestFailed = errors.New("carrier request failed")
)

// Validate validates the configuration
func (c *DelhiveryConfig) Validate() error {
	if c.APIToken == "" {
		return ErrDelhiveryMissingToken
	}
	if c.PickupLocation == "" {
		return ErrDelhiveryMissingPickupLocation
	}
	return nil
}

func (c *DelhiveryConfig) baseURL() string {
	if c.BaseURL == "" {
		return delhiveryDefaultBaseURL
	}
	return c.BaseURL
}

func (c *DelhiveryConfig) trackingURLFormat() string {
	if c.TrackingURLFormat == "" {
		return delhiveryDefaultTrackingURL
	}
	return c.TrackingURLFormat
}
