package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items").Preload("Address")
}

// FindByID loads an order with its items and address
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.withAssociations(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the order row, then loads its items and address
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadAssociations(ctx, &model); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTrackingIDForUpdate locks and loads all orders carrying the tracking id
func (r *GormOrderRepository) FindByTrackingIDForUpdate(ctx context.Context, trackingID string) ([]*order.Order, error) {
	if trackingID == "" {
		return []*order.Order{}, nil
	}
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tracking_id = ?", trackingID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]*order.Order, 0, len(rows))
	for i := range rows {
		if err := r.loadAssociations(ctx, &rows[i]); err != nil {
			return nil, err
		}
		orders = append(orders, rows[i].ToDomain())
	}
	return orders, nil
}

// FindByIntentID loads all orders created with the gateway intent id
func (r *GormOrderRepository) FindByIntentID(ctx context.Context, intentID string) ([]*order.Order, error) {
	if intentID == "" {
		return []*order.Order{}, nil
	}
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("gateway_intent_id = ?", intentID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]*order.Order, 0, len(rows))
	for i := range rows {
		if err := r.loadAssociations(ctx, &rows[i]); err != nil {
			return nil, err
		}
		orders = append(orders, rows[i].ToDomain())
	}
	return orders, nil
}

func (r *GormOrderRepository) loadAssociations(ctx context.Context, model *models.OrderModel) error {
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", model.ID).
		Find(&model.Items).Error; err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	var addr models.AddressModel
	err := r.db.WithContext(ctx).First(&addr, "id = ?", model.AddressID).Error
	switch {
	case err == nil:
		model.Address = &addr
	case errors.Is(err, gorm.ErrRecordNotFound):
		model.Address = nil
	default:
		return fmt.Errorf("load order address: %w", err)
	}
	return nil
}

// FindByCustomer lists a customer's orders, newest first
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter order.ListFilter) ([]*order.Order, int64, error) {
	return r.list(ctx, filter, func(q *gorm.DB) *gorm.DB {
		return q.Where("customer_id = ?", customerID)
	})
}

// FindAll lists all orders, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context, filter order.ListFilter) ([]*order.Order, int64, error) {
	return r.list(ctx, filter, nil)
}

func (r *GormOrderRepository) list(ctx context.Context, filter order.ListFilter, scope func(*gorm.DB) *gorm.DB) ([]*order.Order, int64, error) {
	filter = filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if scope != nil {
		query = scope(query)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	if err := query.
		Preload("Items").
		Preload("Address").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]*order.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	return orders, total, nil
}

// FindSettledBetween returns orders whose payment landed in [from, to) and
// that were not cancelled or refunded
func (r *GormOrderRepository) FindSettledBetween(ctx context.Context, from, to time.Time) ([]*order.Order, error) {
	var rows []models.OrderModel
	if err := r.withAssociations(ctx).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Where("status IN ?", []string{string(order.StatusPaid), string(order.StatusShipped), string(order.StatusDelivered)}).
		Where("payment_status = ?", string(order.PaymentStatusPaid)).
		Order("paid_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]*order.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	return orders, nil
}

// Create inserts the address snapshot, the order row and its items
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model, err := models.OrderModelFromDomain(o)
	if err != nil {
		return fmt.Errorf("map order: %w", err)
	}
	db := r.db.WithContext(ctx)
	if err := db.Create(model.Address).Error; err != nil {
		return fmt.Errorf("create address: %w", err)
	}
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	if len(model.Items) > 0 {
		if err := db.Create(&model.Items).Error; err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
	}
	return nil
}

// Save updates the mutable order columns
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model, err := models.OrderModelFromDomain(o)
	if err != nil {
		return fmt.Errorf("map order: %w", err)
	}
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"status":              model.Status,
			"payment_status":      model.PaymentStatus,
			"gateway_intent_id":   model.GatewayIntentID,
			"gateway_payment_id":  model.GatewayPaymentID,
			"gateway_signature":   model.GatewaySignature,
			"inventory_adjusted":  model.InventoryAdjusted,
			"shipping_provider":   model.ShippingProvider,
			"shipping_status":     model.ShippingStatus,
			"tracking_id":         model.TrackingID,
			"tracking_url":        model.TrackingURL,
			"tracking_history":    model.TrackingHistory,
			"shipment_created_at": model.ShipmentCreatedAt,
			"shipping_updated_at": model.ShippingUpdatedAt,
			"shipping_error":      model.ShippingError,
			"shipping_error_at":   model.ShippingErrorAt,
			"paid_at":             model.PaidAt,
			"refunded_at":         model.RefundedAt,
			"refund_id":           model.RefundID,
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkPaidByIntentID moves every order with the intent id to PAID. Orders
// already past PENDING keep their status; refunded orders are left alone.
func (r *GormOrderRepository) MarkPaidByIntentID(ctx context.Context, intentID, paymentID string, at time.Time) (int64, error) {
	if intentID == "" {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("gateway_intent_id = ?", intentID).
		Where("payment_status <> ?", string(order.PaymentStatusRefunded)).
		Updates(map[string]any{
			"status":             gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", string(order.StatusPending), string(order.StatusPaid)),
			"payment_status":     string(order.PaymentStatusPaid),
			"gateway_payment_id": paymentID,
			"paid_at":            gorm.Expr("COALESCE(paid_at, ?)", at),
			"updated_at":         at,
		})
	return result.RowsAffected, result.Error
}

// MarkRefundedByPaymentID records a processed refund on every order with the payment id
func (r *GormOrderRepository) MarkRefundedByPaymentID(ctx context.Context, paymentID, refundID string, at time.Time) (int64, error) {
	if paymentID == "" {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("gateway_payment_id = ?", paymentID).
		Updates(map[string]any{
			"payment_status": string(order.PaymentStatusRefunded),
			"refund_id":      gorm.Expr("COALESCE(NULLIF(refund_id, ''), ?)", refundID),
			"refunded_at":    gorm.Expr("COALESCE(refunded_at, ?)", at),
			"updated_at":     at,
		})
	return result.RowsAffected, result.Error
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
