package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JSBS07/gestor-finanzas/internal/core"
	"github.com/JSBS07/gestor-finanzas/internal/metrics"
)

// SumStore is the aggregation slice of the repository.
type SumStore interface {
	SumAmountByOwnerTypeStateMonth(ctx context.Context, ownerID int64, typ core.ActivityType, state core.ActivityState, year, month int) (decimal.Decimal, error)
	SumAmountByOwnerTypeStateRange(ctx context.Context, ownerID int64, typ core.ActivityType, state core.ActivityState, from, to time.Time) (decimal.Decimal, error)
}

// Balance is the current-month picture for one owner. Degraded is set
// when any side of the balance fell through both aggregation paths and
// was reported as zero.
type Balance struct {
	Income   decimal.Decimal
	Expense  decimal.Decimal
	Net      decimal.Decimal
	Degraded bool
}

// Aggregator computes monthly totals over COMPLETED activities only.
type Aggregator struct {
	store   SumStore
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewAggregator(store SumStore, m *metrics.Metrics) *Aggregator {
	return &Aggregator{store: store, metrics: m, now: time.Now}
}

// MonthlyTotal sums the owner's COMPLETED activities of one type in the
// current calendar month. The year/month extraction query is the primary
// path; on failure it retries over the month's time range. When both
// paths fail the total is zero and degraded is true.
func (a *Aggregator) MonthlyTotal(ctx context.Context, ownerID int64, typ core.ActivityType) (total decimal.Decimal, degraded bool, err error) {
	// Stored timestamps are UTC, so the month is derived in UTC too;
	// otherwise the two paths disagree near month boundaries.
	now := a.now().UTC()
	year, month := now.Year(), int(now.Month())

	total, err = a.store.SumAmountByOwnerTypeStateMonth(ctx, ownerID, typ, core.StateCompleted, year, month)
	if err == nil {
		return total, false, nil
	}

	slog.WarnContext(ctx, "Month aggregation failed, using range fallback",
		"owner_id", ownerID, "type", typ, "error", err)
	a.metrics.AggregationFallback()

	from, to := monthBounds(now)
	total, err = a.store.SumAmountByOwnerTypeStateRange(ctx, ownerID, typ, core.StateCompleted, from, to)
	if err == nil {
		return total, false, nil
	}

	slog.ErrorContext(ctx, "Range aggregation failed, reporting degraded zero",
		"owner_id", ownerID, "type", typ, "error", err)
	a.metrics.AggregationDegraded()
	return decimal.Zero, true, nil
}

// Balance is income minus expense for the current month.
func (a *Aggregator) Balance(ctx context.Context, ownerID int64) (Balance, error) {
	income, incomeDegraded, err := a.MonthlyTotal(ctx, ownerID, core.TypeIncome)
	if err != nil {
		return Balance{}, err
	}
	expense, expenseDegraded, err := a.MonthlyTotal(ctx, ownerID, core.TypeExpense)
	if err != nil {
		return Balance{}, err
	}

	return Balance{
		Income:   income,
		Expense:  expense,
		Net:      income.Sub(expense),
		Degraded: incomeDegraded || expenseDegraded,
	}, nil
}

// monthBounds returns the first and last representable instants of t's
// calendar month in t's location.
func monthBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Second)
	return from, to
}
