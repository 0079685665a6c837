package order

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/order"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/domain/shared"
	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GSTReport locates an uploaded GST export
type GSTReport struct {
	Key        string
	URL        string
	OrderCount int
	ExpiresAt  time.Time
}

var gstHeader = []string{"order_id", "paid_at", "currency", "taxable_value", "tax", "total"}

// ExportGST writes the settled orders of [from, to) as CSV to report
// storage and returns a presigned download link.
func (s *Service) ExportGST(ctx context.Context, p shared.Principal, from, to time.Time) (result *GSTReport, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "export_gst")
	defer func() { s.observe(span, "export_gst", err) }()

	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if s.reports == nil {
		return nil, ErrReportingUnavailable
	}
	if !from.Before(to) {
		return nil, ErrInvalidReportPeriod
	}

	orders, err := s.orders.FindSettledBetween(ctx, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("load settled orders: %w", err)
	}
	body, err := renderGSTCSV(orders)
	if err != nil {
		return nil, fmt.Errorf("render gst csv: %w", err)
	}

	now := s.clock()
	key := fmt.Sprintf("reports/gst/gst_%s_%s_%d.csv", from.UTC().Format("20060102"), to.UTC().Format("20060102"), now.Unix())
	if err := s.reports.Upload(ctx, key, "text/csv", body); err != nil {
		s.logger.Error("Failed to upload GST report", zap.String("key", key), zap.Error(err))
		return nil, ErrReportStorage
	}
	url, err := s.reports.PresignGet(ctx, key, s.opts.ReportURLTTL)
	if err != nil {
		s.logger.Error("Failed to presign GST report", zap.String("key", key), zap.Error(err))
		return nil, ErrReportStorage
	}

	s.logger.Info("GST report exported", zap.String("key", key), zap.Int("orders", len(orders)))
	return &GSTReport{
		Key:        key,
		URL:        url,
		OrderCount: len(orders),
		ExpiresAt:  now.Add(s.opts.ReportURLTTL),
	}, nil
}

func renderGSTCSV(orders []*order.Order) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(gstHeader); err != nil {
		return nil, err
	}
	for _, o := range orders {
		paidAt := ""
		if o.PaidAt != nil {
			paidAt = o.PaidAt.UTC().Format(time.RFC3339)
		}
		if err := w.Write([]string{
			o.ID.String(),
			paidAt,
			o.Currency,
			majorUnits(o.SubtotalCents),
			majorUnits(o.TaxCents),
			majorUnits(o.TotalCents),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func majorUnits(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
