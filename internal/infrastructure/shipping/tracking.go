package shipping

import (
	"encoding/json"
	"strings"

	apporder "github.com/Taitilchheda/Taitil-Graphics-sub001/internal/application/order"
)

type trackingShape func(body []byte) (waybill, status string, ok bool)

// trackingShapes are tried in order; the first shape yielding both a
// waybill and a status wins
var trackingShapes = []trackingShape{
	delhiveryPushShape,
	flatWaybillShape,
	awbCurrentStatusShape,
}

// ParseTrackingUpdate recognises carrier tracking pushes. The raw body is
// kept on the update so it can be stored in the order's tracking history.
func ParseTrackingUpdate(body []byte) (*apporder.TrackingUpdate, bool) {
	if !json.Valid(body) {
		return nil, false
	}
	for _, shape := range trackingShapes {
		waybill, status, ok := shape(body)
		if !ok {
			continue
		}
		waybill = strings.TrimSpace(waybill)
		status = strings.TrimSpace(status)
		if waybill == "" || status == "" {
			continue
		}
		raw := make(json.RawMessage, len(body))
		copy(raw, body)
		return &apporder.TrackingUpdate{Waybill: waybill, Status: status, Raw: raw}, true
	}
	return nil, false
}

// {"Shipment":{"AWB":"...","Status":{"Status":"In Transit"}}}
func delhiveryPushShape(body []byte) (string, string, bool) {
	var p struct {
		Shipment *struct {
			AWB    string `json:"AWB"`
			Status struct {
				Status string `json:"Status"`
			} `json:"Status"`
		} `json:"Shipment"`
	}
	if err := json.Unmarshal(body, &p); err != nil || p.Shipment == nil {
		return "", "", false
	}
	return p.Shipment.AWB, p.Shipment.Status.Status, true
}

// {"waybill":"...","status":"..."}
func flatWaybillShape(body []byte) (string, string, bool) {
	var p struct {
		Waybill string `json:"waybill"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return "", "", false
	}
	return p.Waybill, p.Status, true
}

// {"awb":"...","current_status":"..."}
func awbCurrentStatusShape(body []byte) (string, string, bool) {
	var p struct {
		AWB           string `json:"awb"`
		CurrentStatus string `json:"current_status"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return "", "", false
	}
	return p.AWB, p.CurrentStatus, true
}
