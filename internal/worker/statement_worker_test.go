package worker

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JSBS07/gestor-finanzas/internal/amqp"
	"github.com/JSBS07/gestor-finanzas/internal/core"
)

type fakeStatementStore struct {
	activities map[int64][]core.Activity
	accounts   []core.Account
}

func (f *fakeStatementStore) FindActivitiesByOwner(_ context.Context, ownerID int64) ([]core.Activity, error) {
	return f.activities[ownerID], nil
}

func (f *fakeStatementStore) ListAccounts(_ context.Context) ([]core.Account, error) {
	return f.accounts, nil
}

func marchActivities(ownerID int64) []core.Activity {
	march := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	return []core.Activity{
		{ID: 1, Description: "Pago de salario", Amount: decimal.NewFromInt(2_500_000), Type: core.TypeIncome, Category: core.CategorySalario, State: core.StateCompleted, CreatedAt: march, OwnerID: ownerID},
		{ID: 2, Description: "Supermercado", Amount: decimal.RequireFromString("150750.50"), Type: core.TypeExpense, Category: core.CategoryAlimentacion, State: core.StateCompleted, CreatedAt: march.Add(time.Hour), OwnerID: ownerID},
		// pending: listed but excluded from totals
		{ID: 3, Description: "Pago de arriendo", Amount: decimal.NewFromInt(800_000), Type: core.TypeExpense, Category: core.CategoryVivienda, State: core.StatePending, CreatedAt: march.Add(2 * time.Hour), OwnerID: ownerID},
		// different month: excluded entirely
		{ID: 4, Description: "Salario de abril", Amount: decimal.NewFromInt(2_500_000), Type: core.TypeIncome, Category: core.CategorySalario, State: core.StateCompleted, CreatedAt: time.Date(2026, 4, 5, 10, 0, 0, 0, time.UTC), OwnerID: ownerID},
	}
}

func readStatement(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open statement: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read statement: %v", err)
	}
	return records
}

func TestRebuildWritesStatement(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStatementStore{activities: map[int64][]core.Activity{7: marchActivities(7)}}
	w := NewStatementWorker(store, dir, nil)

	if err := w.Rebuild(context.Background(), 7, 2026, 3); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	records := readStatement(t, filepath.Join(dir, "owner_7", "2026-03.csv"))

	// header + 3 march rows + 3 totals rows
	if len(records) != 7 {
		t.Fatalf("records = %d, want 7", len(records))
	}
	if records[0][0] != "date" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][1] != "Pago de salario" || records[3][1] != "Pago de arriendo" {
		t.Errorf("rows out of order: %v", records)
	}

	assertTotal := func(row []string, label, amount string) {
		t.Helper()
		if row[1] != label || row[5] != amount {
			t.Errorf("total row = %v, want %s %s", row, label, amount)
		}
	}
	assertTotal(records[4], "total income", "2500000.00")
	assertTotal(records[5], "total expense", "150750.50")
	assertTotal(records[6], "balance", "2349249.50")
}

func TestRebuildEmptyMonth(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStatementStore{activities: map[int64][]core.Activity{}}
	w := NewStatementWorker(store, dir, nil)

	if err := w.Rebuild(context.Background(), 7, 2026, 3); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	records := readStatement(t, filepath.Join(dir, "owner_7", "2026-03.csv"))
	if len(records) != 4 {
		t.Fatalf("records = %d, want header plus totals", len(records))
	}
	if records[3][5] != "0.00" {
		t.Errorf("empty balance = %q, want 0.00", records[3][5])
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStatementStore{activities: map[int64][]core.Activity{7: marchActivities(7)}}
	w := NewStatementWorker(store, dir, nil)

	for i := 0; i < 3; i++ {
		if err := w.Rebuild(context.Background(), 7, 2026, 3); err != nil {
			t.Fatalf("Rebuild #%d: %v", i, err)
		}
	}

	records := readStatement(t, filepath.Join(dir, "owner_7", "2026-03.csv"))
	if len(records) != 7 {
		t.Errorf("records = %d after repeated rebuilds, want 7", len(records))
	}
}

func TestHandleEvent(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStatementStore{activities: map[int64][]core.Activity{7: marchActivities(7)}}
	w := NewStatementWorker(store, dir, nil)

	event := &amqp.ActivityEvent{ActivityID: 1, OwnerID: 7, Action: amqp.ActionCreated, Year: 2026, Month: 3}
	if err := w.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "owner_7", "2026-03.csv")); err != nil {
		t.Errorf("statement not written: %v", err)
	}
}

func TestRebuildAll(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStatementStore{
		activities: map[int64][]core.Activity{7: marchActivities(7)},
		accounts: []core.Account{
			{ID: 7, Email: "usuario@finanzas.com"},
			{ID: 8, Email: "otro@finanzas.com"},
		},
	}
	w := NewStatementWorker(store, dir, nil)
	w.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

	if err := w.RebuildAll(context.Background()); err != nil {
		t.Fatalf("RebuildAll: %v", err)
	}

	for _, owner := range []string{"owner_7", "owner_8"} {
		if _, err := os.Stat(filepath.Join(dir, owner, "2026-03.csv")); err != nil {
			t.Errorf("statement for %s not written: %v", owner, err)
		}
	}
}
