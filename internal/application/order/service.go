package order

import (
	"errors"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/catalog"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Options tunes workflow behaviour
type Options struct {
	Currency   string
	TaxPercent decimal.Decimal
	// AutoShip books the shipment right after a verified payment
	AutoShip bool
	// TrackingWebhookSecret, when set, must be echoed in the tracking webhook header
	TrackingWebhookSecret string
	WebhookDedupTTL       time.Duration
	ReportURLTTL          time.Duration
}

// ServiceConfig holds the collaborators of the order workflow service
type ServiceConfig struct {
	UnitOfWork   order.UnitOfWork
	Orders       order.Repository
	Products     catalog.ProductRepository
	Gateway      PaymentGateway
	Carrier      Carrier
	Notifier     Notifier
	Analytics    AnalyticsTracker
	Metrics      Metrics
	Reports      ReportStorage
	WebhookDedup shared.IdempotencyStore
	Options      Options
	Clock        func() time.Time
	Logger       *zap.Logger
}

// Service runs the order workflow: checkout, payment, cancellation,
// shipping and the inbound gateway and carrier webhooks.
type Service struct {
	uow       order.UnitOfWork
	orders    order.Repository
	products  catalog.ProductRepository
	gateway   PaymentGateway
	carrier   Carrier
	notifier  Notifier
	analytics AnalyticsTracker
	metrics   Metrics
	reports   ReportStorage
	dedup     shared.IdempotencyStore
	opts      Options
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates a new Service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	var notifier Notifier = nopNotifier{}
	if cfg.Notifier != nil {
		notifier = cfg.Notifier
	}
	var analytics AnalyticsTracker = nopTracker{}
	if cfg.Analytics != nil {
		analytics = cfg.Analytics
	}
	var metrics Metrics = nopMetrics{}
	if cfg.Metrics != nil {
		metrics = cfg.Metrics
	}

	opts := cfg.Options
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	if opts.WebhookDedupTTL <= 0 {
		opts.WebhookDedupTTL = shared.DefaultIdempotencyTTL
	}
	if opts.ReportURLTTL <= 0 {
		opts.ReportURLTTL = 15 * time.Minute
	}

	return &Service{
		uow:       cfg.UnitOfWork,
		orders:    cfg.Orders,
		products:  cfg.Products,
		gateway:   cfg.Gateway,
		carrier:   cfg.Carrier,
		notifier:  notifier,
		analytics: analytics,
		metrics:   metrics,
		reports:   cfg.Reports,
		dedup:     cfg.WebhookDedup,
		opts:      opts,
		now:       clock,
		logger:    logger,
	}
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// observe ends the workflow span and counts the outcome
func (s *Service) observe(span trace.Span, operation string, err error) {
	defer span.End()
	telemetry.RecordError(span, err)
	outcome := "success"
	if err != nil {
		outcome = "error"
		var de *shared.DomainError
		if errors.As(err, &de) {
			outcome = de.Code
		}
	}
	s.metrics.ObserveWorkflow(operation, outcome)
}

func requireAdmin(p shared.Principal) error {
	if !p.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}
