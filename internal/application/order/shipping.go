package order

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShipmentResult is the order after a shipment attempt plus the raw carrier answer
type ShipmentResult struct {
	Order           *order.Order
	CarrierResponse json.RawMessage
}

// CreateShipment books a shipment for a paid order. A carrier failure is
// stored on the order and returned as ErrCarrier together with the order,
// so the caller can show it and retry.
func (s *Service) CreateShipment(ctx context.Context, p shared.Principal, orderID uuid.UUID) (*ShipmentResult, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return s.createShipment(ctx, orderID)
}

func (s *Service) createShipment(ctx context.Context, orderID uuid.UUID) (result *ShipmentResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create_shipment")
	defer func() { s.observe(span, "create_shipment", err) }()
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, orderID)

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.CheckShippable(); err != nil {
		return nil, err
	}

	shipment, carrierErr := s.carrier.CreateShipment(ctx, o)

	var updated *order.Order
	err = s.uow.Execute(ctx, func(repos order.TransactionalRepositories) error {
		locked, err := repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		now := s.clock()
		if carrierErr != nil {
			locked.RecordShippingError(s.carrier.Name(), carrierErr.Error(), now)
		} else if err := locked.RecordShipment(shipment.Provider, shipment.Waybill, shipment.TrackingURL, now); err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, locked); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		updated = locked
		return nil
	})
	if err != nil {
		if carrierErr == nil {
			s.logger.Error("Carrier issued a waybill that could not be stored",
				zap.String("order_id", orderID.String()),
				zap.String("waybill", shipment.Waybill),
				zap.Error(err))
		}
		return nil, err
	}

	if carrierErr != nil {
		s.logger.Warn("Carrier shipment request failed",
			zap.String("order_id", orderID.String()),
			zap.String("carrier", s.carrier.Name()),
			zap.Error(carrierErr))
		return &ShipmentResult{Order: updated}, shared.NewDomainError(ErrCarrier.Code, carrierErr.Error())
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrWaybill, updated.TrackingID)
	s.logger.Info("Shipment created",
		zap.String("order_id", orderID.String()),
		zap.String("waybill", updated.TrackingID))
	s.dispatch(ctx, updated)
	return &ShipmentResult{Order: updated, CarrierResponse: shipment.Raw}, nil
}

// RequestPickup asks the carrier to collect parcels
func (s *Service) RequestPickup(ctx context.Context, p shared.Principal, req PickupRequest) (result *Pickup, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "request_pickup")
	defer func() { s.observe(span, "request_pickup", err) }()

	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if req.ExpectedCount < 1 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Expected package count must be at least 1")
	}
	pickup, err := s.carrier.RequestPickup(ctx, req)
	if err != nil {
		s.logger.Warn("Carrier pickup request failed", zap.Error(err))
		return nil, shared.NewDomainError(ErrCarrier.Code, err.Error())
	}
	return pickup, nil
}

// HandleTrackingWebhook applies a carrier status push to every order with
// the waybill. Statuses only move the order forward. It returns the number
// of orders updated.
func (s *Service) HandleTrackingWebhook(ctx context.Context, secret string, body []byte) (updatedCount int, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "tracking_webhook")
	defer func() { s.observe(span, "tracking_webhook", err) }()

	if want := s.opts.TrackingWebhookSecret; want != "" {
		if subtle.ConstantTimeCompare([]byte(secret), []byte(want)) != 1 {
			s.logger.Warn("Tracking webhook secret mismatch")
			return 0, ErrInvalidSignature
		}
	}

	update, ok := s.carrier.ParseTrackingUpdate(body)
	if !ok {
		return 0, ErrUnrecognizedPayload
	}

	var touched []*order.Order
	err = s.uow.Execute(ctx, func(repos order.TransactionalRepositories) error {
		orders, err := repos.Orders().FindByTrackingIDForUpdate(ctx, update.Waybill)
		if err != nil {
			return err
		}
		now := s.clock()
		for _, o := range orders {
			o.ApplyTrackingUpdate(update.Status, update.Raw, now)
			if err := repos.Orders().Save(ctx, o); err != nil {
				return fmt.Errorf("save order %s: %w", o.ID, err)
			}
		}
		touched = orders
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Tracking update applied",
		zap.String("waybill", update.Waybill),
		zap.String("status", update.Status),
		zap.Int("orders", len(touched)))
	for _, o := range touched {
		s.dispatch(ctx, o)
	}
	return len(touched), nil
}
