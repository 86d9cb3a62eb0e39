// Package worker rebuilds per-owner monthly CSV statements. Activity
// events from AMQP trigger targeted rebuilds; a periodic full rebuild
// catches anything a lost message missed.
package worker

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/JSBS07/gestor-finanzas/internal/amqp"
	"github.com/JSBS07/gestor-finanzas/internal/core"
	"github.com/JSBS07/gestor-finanzas/internal/metrics"
)

// StatementStore is the read-only slice of the repository the worker
// needs.
type StatementStore interface {
	FindActivitiesByOwner(ctx context.Context, ownerID int64) ([]core.Activity, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
}

type StatementWorker struct {
	store   StatementStore
	dir     string
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewStatementWorker(store StatementStore, dir string, m *metrics.Metrics) *StatementWorker {
	return &StatementWorker{
		store:   store,
		dir:     dir,
		metrics: m,
		now:     time.Now,
	}
}

// HandleEvent rebuilds the statement for the month the event touched.
// The rebuild is a full re-export, so replays and reordering are
// harmless.
func (w *StatementWorker) HandleEvent(ctx context.Context, event *amqp.ActivityEvent) error {
	slog.InfoContext(ctx, "Processing activity event",
		"activity_id", event.ActivityID,
		"owner_id", event.OwnerID,
		"action", event.Action,
		"year", event.Year,
		"month", event.Month)

	if err := w.Rebuild(ctx, event.OwnerID, event.Year, event.Month); err != nil {
		return fmt.Errorf("rebuild statement: %w", err)
	}
	return nil
}

// Rebuild exports one owner's activities for one month as CSV. The file
// is written to a temp path and renamed so readers never see a partial
// statement.
func (w *StatementWorker) Rebuild(ctx context.Context, ownerID int64, year, month int) error {
	activities, err := w.store.FindActivitiesByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("load activities: %w", err)
	}

	var selected []core.Activity
	for _, a := range activities {
		at := a.CreatedAt.UTC()
		if at.Year() == year && int(at.Month()) == month {
			selected = append(selected, a)
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		if selected[i].CreatedAt.Equal(selected[j].CreatedAt) {
			return selected[i].ID < selected[j].ID
		}
		return selected[i].CreatedAt.Before(selected[j].CreatedAt)
	})

	ownerDir := filepath.Join(w.dir, fmt.Sprintf("owner_%d", ownerID))
	if err := os.MkdirAll(ownerDir, 0755); err != nil {
		return fmt.Errorf("create statement directory: %w", err)
	}

	tmp, err := os.CreateTemp(ownerDir, "statement-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp statement: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeStatement(tmp, selected); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp statement: %w", err)
	}

	final := filepath.Join(ownerDir, fmt.Sprintf("%04d-%02d.csv", year, month))
	if err := os.Rename(tmp.Name(), final); err != nil {
		return fmt.Errorf("publish statement: %w", err)
	}

	w.metrics.StatementRebuilt()
	slog.InfoContext(ctx, "Statement rebuilt",
		"owner_id", ownerID,
		"file", final,
		"activities", len(selected))
	return nil
}

func writeStatement(f *os.File, activities []core.Activity) error {
	out := csv.NewWriter(f)

	if err := out.Write([]string{"date", "description", "type", "category", "state", "amount"}); err != nil {
		return fmt.Errorf("write statement header: %w", err)
	}

	income, expense := decimal.Zero, decimal.Zero
	for _, a := range activities {
		record := []string{
			a.CreatedAt.UTC().Format("2006-01-02"),
			a.Description,
			string(a.Type),
			string(a.Category),
			string(a.State),
			a.Amount.StringFixed(2),
		}
		if err := out.Write(record); err != nil {
			return fmt.Errorf("write statement row: %w", err)
		}

		// only COMPLETED activities count toward the totals
		if a.State == core.StateCompleted {
			switch a.Type {
			case core.TypeIncome:
				income = income.Add(a.Amount)
			case core.TypeExpense:
				expense = expense.Add(a.Amount)
			}
		}
	}

	totals := [][]string{
		{"", "total income", "", "", "", income.StringFixed(2)},
		{"", "total expense", "", "", "", expense.StringFixed(2)},
		{"", "balance", "", "", "", income.Sub(expense).StringFixed(2)},
	}
	for _, record := range totals {
		if err := out.Write(record); err != nil {
			return fmt.Errorf("write statement totals: %w", err)
		}
	}

	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("flush statement: %w", err)
	}
	return nil
}

// RebuildAll regenerates the current-month statement for every account.
// This is the catch-up path for missed events.
func (w *StatementWorker) RebuildAll(ctx context.Context) error {
	accounts, err := w.store.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	now := w.now()
	year, month := now.Year(), int(now.Month())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, acc := range accounts {
		g.Go(func() error {
			if err := w.Rebuild(ctx, acc.ID, year, month); err != nil {
				return fmt.Errorf("owner %d: %w", acc.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Run performs an initial full rebuild and then repeats it on every
// tick until ctx is cancelled.
func (w *StatementWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.RebuildAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial statement rebuild failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Statement worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.RebuildAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic statement rebuild failed", "error", err)
			}
		}
	}
}
