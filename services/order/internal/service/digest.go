package service

import (
	"context"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/order/internal/period"
)

// DailyDigest summarises yesterday's sales.
func (s *OrderService) DailyDigest(ctx context.Context) (*Summary, error) {
	l := logging.FromContext(ctx).With("job", "sales_digest")

	sum, err := s.ListAll(ctx, period.Yesterday)
	if err != nil {
		l.Error("sales_digest_error", "error", err)
		return nil, err
	}

	r, _ := period.Window(period.Yesterday, s.now())
	total, _ := sum.TotalSales.Float64()
	l.Info("sales_digest", "day", r.Start.Format("2006-01-02"), "total_sales", sum.TotalSales.String(), "total_orders", sum.TotalOrders)
	events.Emit(ctx, s.Publisher, contracts.TopicOrders, r.Start.Format("2006-01-02"),
		contracts.NewEvent(contracts.EventSalesDigest, map[string]any{
			"day":          r.Start.Format("2006-01-02"),
			"total_sales":  total,
			"total_orders": sum.TotalOrders,
		}))
	return sum, nil
}
