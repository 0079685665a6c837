package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/shopspring/decimal"
)

// DelhiveryAdapter books prepaid surface shipments with Delhivery
type DelhiveryAdapter struct {
	config     *DelhiveryConfig
	httpClient *http.Client
}

// NewDelhiveryAdapter creates a new Delhivery adapter
func NewDelhiveryAdapter(config *DelhiveryConfig) (*DelhiveryAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DelhiveryAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the carrier name
func (a *DelhiveryAdapter) Name() string {
	return "delhivery"
}

type delhiveryShipment struct {
	Name          string `json:"name"`
	Add           string `json:"add"`
	Pin           string `json:"pin"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	Phone         string `json:"phone"`
	OrderID       string `json:"order"`
	PaymentMode   string `json:"payment_mode"`
	ProductsDesc  string `json:"products_desc"`
	Quantity      string `json:"quantity"`
	TotalAmount   string `json:"total_amount"`
	ShippingMode  string `json:"shipping_mode"`
	OrderDate     string `json:"order_date"`
	CODAmount     string `json:"cod_amount"`
	ReturnName    string `json:"return_name,omitempty"`
	SellerInvoice string `json:"seller_inv,omitempty"`
}

type delhiveryManifest struct {
	Shipments      []delhiveryShipment `json:"shipments"`
	PickupLocation struct {
		Name string `json:"name"`
	} `json:"pickup_location"`
}

type delhiveryCreateResponse struct {
	Success  bool   `json:"success"`
	Error    bool   `json:"error"`
	RMK      string `json:"rmk"`
	Packages []struct {
		Waybill string   `json:"waybill"`
		Status  string   `json:"status"`
		Remarks []string `json:"remarks"`
	} `json:"packages"`
}

// CreateShipment manifests the order and returns the allotted waybill
func (a *DelhiveryAdapter) CreateShipment(ctx context.Context, o *order.Order) (*apporder.Shipment, error) {
	manifest := delhiveryManifest{
		Shipments: []delhiveryShipment{buildShipment(o)},
	}
	manifest.PickupLocation.Name = a.config.PickupLocation

	data, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("delhivery: failed to marshal manifest: %w", err)
	}

	// The manifest API takes a form body with the JSON under "data"
	form := url.Values{}
	form.Set("format", "json")
	form.Set("data", string(data))

	respBody, err := a.doRequest(ctx, http.MethodPost, "/api/cmu/create.json",
		"application/x-www-form-urlencoded", []byte(form.Encode()))
	if err != nil {
		return nil, err
	}

	var out delhiveryCreateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("delhivery: failed to parse response: %w", err)
	}
	if len(out.Packages) == 0 || out.Packages[0].Waybill == "" {
		reason := out.RMK
		if len(out.Packages) > 0 && len(out.Packages[0].Remarks) > 0 {
			reason = strings.Join(out.Packages[0].Remarks, "; ")
		}
		if reason == "" {
			reason = "no waybill allotted"
		}
		return nil, fmt.Errorf("%w: %s", ErrCarrierRequestFailed, reason)
	}

	waybill := out.Packages[0].Waybill
	return &apporder.Shipment{
		Provider:    a.Name(),
		Waybill:     waybill,
		TrackingURL: fmt.Sprintf(a.config.trackingURLFormat(), waybill),
		Raw:         json.RawMessage(respBody),
	}, nil
}

type delhiveryPickupResponse struct {
	PickupID       json.Number `json:"pickup_id"`
	PickupLocation string      `json:"pickup_location_name"`
	PickupDate     string      `json:"pickup_date"`
}

// RequestPickup schedules a warehouse pickup
func (a *DelhiveryAdapter) RequestPickup(ctx context.Context, req apporder.PickupRequest) (*apporder.Pickup, error) {
	location := req.Location
	if location == "" {
		location = a.config.PickupLocation
	}
	body, err := json.Marshal(map[string]any{
		"pickup_location":        location,
		"pickup_date":            req.Date.Format("2006-01-02"),
		"pickup_time":            "10:00:00",
		"expected_package_count": req.ExpectedCount,
	})
	if err != nil {
		return nil, fmt.Errorf("delhivery: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/fm/request/new/", "application/json", body)
	if err != nil {
		return nil, err
	}

	var out delhiveryPickupResponse
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("delhivery: failed to parse response: %w", err)
	}
	if out.PickupID == "" {
		return nil, fmt.Errorf("%w: pickup not scheduled", ErrCarrierRequestFailed)
	}
	return &apporder.Pickup{ID: out.PickupID.String(), Raw: json.RawMessage(respBody)}, nil
}

// ParseTrackingUpdate matches a tracking push against the known payload shapes
func (a *DelhiveryAdapter) ParseTrackingUpdate(body []byte) (*apporder.TrackingUpdate, bool) {
	return ParseTrackingUpdate(body)
}

func buildShipment(o *order.Order) delhiveryShipment {
	names := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		names = append(names, fmt.Sprintf("%s x%d", item.ProductName, item.Quantity))
	}
	addr := o.Address
	line := addr.Line1
	if addr.Line2 != "" {
		line += ", " + addr.Line2
	}
	return delhiveryShipment{
		Name:         addr.Name,
		Add:          line,
		Pin:          addr.PostalCode,
		City:         addr.City,
		State:        addr.State,
		Country:      addr.Country,
		Phone:        addr.Phone,
		OrderID:      o.ID.String(),
		PaymentMode:  "Prepaid",
		ProductsDesc: strings.Join(names, ", "),
		Quantity:     fmt.Sprintf("%d", o.ItemCount()),
		TotalAmount:  decimal.New(o.TotalCents, -2).StringFixed(2),
		ShippingMode: "Surface",
		OrderDate:    o.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		CODAmount:    "0",
	}
}

func (a *DelhiveryAdapter) doRequest(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.config.baseURL()+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("delhivery: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Token "+a.config.APIToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("delhivery: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Detail string `json:"detail"`
			Error  string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			if msg := firstNonEmpty(errResp.Detail, errResp.Error); msg != "" {
				return nil, fmt.Errorf("%w: %s", ErrCarrierRequestFailed, msg)
			}
		}
		return nil, fmt.Errorf("%w: HTTP %d", ErrCarrierRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Ensure DelhiveryAdapter implements Carrier
var _ apporder.Carrier = (*DelhiveryAdapter)(nil)
