package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JSBS07/gestor-finanzas/internal/auth"
	"github.com/JSBS07/gestor-finanzas/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "finanzas.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedAccount(t *testing.T, repo *SQLiteRepository, email string) core.Account {
	t.Helper()
	acc, err := repo.SaveAccount(context.Background(), core.Account{
		Email:        email,
		PasswordHash: auth.StoredHash("$2a$10$fakehashfortests"),
		Name:         "Test",
		Role:         core.RoleUser,
		RegisteredAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	return acc
}

func TestSaveAndFindActivity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := seedAccount(t, repo, "owner@finanzas.com")

	in := core.Activity{
		Description: "Pago de arriendo",
		Amount:      decimal.RequireFromString("800000.50"),
		Type:        core.TypeExpense,
		Category:    core.CategoryVivienda,
		State:       core.StatePending,
		CreatedAt:   time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
		OwnerID:     owner.ID,
	}

	saved, err := repo.SaveActivity(ctx, in)
	if err != nil {
		t.Fatalf("SaveActivity: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected generated id")
	}

	got, err := repo.FindActivityByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("FindActivityByID: %v", err)
	}
	if !got.Amount.Equal(in.Amount) {
		t.Errorf("amount = %s, want %s", got.Amount, in.Amount)
	}
	if got.Description != in.Description || got.Type != in.Type || got.Category != in.Category || got.State != in.State {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, in.CreatedAt)
	}
	if got.OwnerID != owner.ID {
		t.Errorf("owner_id = %d, want %d", got.OwnerID, owner.ID)
	}
}

func TestUpdateActivityKeepsOwnerAndTimestamp(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := seedAccount(t, repo, "owner@finanzas.com")

	created := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	saved, err := repo.SaveActivity(ctx, core.Activity{
		Description: "Supermercado",
		Amount:      decimal.NewFromInt(150_750),
		Type:        core.TypeExpense,
		Category:    core.CategoryAlimentacion,
		State:       core.StatePending,
		CreatedAt:   created,
		OwnerID:     owner.ID,
	})
	if err != nil {
		t.Fatalf("SaveActivity: %v", err)
	}

	saved.Description = "Mercado del mes"
	saved.State = core.StateCompleted
	saved.CreatedAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	saved.OwnerID = owner.ID + 99
	if _, err := repo.SaveActivity(ctx, saved); err != nil {
		t.Fatalf("SaveActivity update: %v", err)
	}

	got, err := repo.FindActivityByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("FindActivityByID: %v", err)
	}
	if got.Description != "Mercado del mes" || got.State != core.StateCompleted {
		t.Errorf("update not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at changed on update: %v", got.CreatedAt)
	}
	if got.OwnerID != owner.ID {
		t.Errorf("owner_id changed on update: %d", got.OwnerID)
	}
}

func TestActivityNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.FindActivityByID(ctx, 42); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("FindActivityByID err = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteActivityByID(ctx, 42); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteActivityByID err = %v, want ErrNotFound", err)
	}
	if _, err := repo.SaveActivity(ctx, core.Activity{ID: 42, Amount: decimal.NewFromInt(5000)}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("SaveActivity update err = %v, want ErrNotFound", err)
	}
}

func TestDeleteActivity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := seedAccount(t, repo, "owner@finanzas.com")

	saved, err := repo.SaveActivity(ctx, core.Activity{
		Description: "Cine",
		Amount:      decimal.NewFromInt(25_000),
		Type:        core.TypeExpense,
		Category:    core.CategoryEntretenimiento,
		State:       core.StateCompleted,
		CreatedAt:   time.Now(),
		OwnerID:     owner.ID,
	})
	if err != nil {
		t.Fatalf("SaveActivity: %v", err)
	}
	if err := repo.DeleteActivityByID(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteActivityByID: %v", err)
	}
	if _, err := repo.FindActivityByID(ctx, saved.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSumAmountByMonthAndRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := seedAccount(t, repo, "owner@finanzas.com")
	other := seedAccount(t, repo, "other@finanzas.com")

	march := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

	fixtures := []core.Activity{
		{Description: "Salario", Amount: decimal.NewFromInt(2_500_000), Type: core.TypeIncome, Category: core.CategorySalario, State: core.StateCompleted, CreatedAt: march, OwnerID: owner.ID},
		{Description: "Bono", Amount: decimal.RequireFromString("500000.25"), Type: core.TypeIncome, Category: core.CategoryOtrosIngresos, State: core.StateCompleted, CreatedAt: march, OwnerID: owner.ID},
		// pending income must not count
		{Description: "Prestamo pendiente", Amount: decimal.NewFromInt(100_000), Type: core.TypeIncome, Category: core.CategoryOtrosIngresos, State: core.StatePending, CreatedAt: march, OwnerID: owner.ID},
		// wrong month
		{Description: "Salario abril", Amount: decimal.NewFromInt(2_500_000), Type: core.TypeIncome, Category: core.CategorySalario, State: core.StateCompleted, CreatedAt: april, OwnerID: owner.ID},
		// wrong owner
		{Description: "Salario ajeno", Amount: decimal.NewFromInt(9_000_000), Type: core.TypeIncome, Category: core.CategorySalario, State: core.StateCompleted, CreatedAt: march, OwnerID: other.ID},
		{Description: "Mercado", Amount: decimal.NewFromInt(150_750), Type: core.TypeExpense, Category: core.CategoryAlimentacion, State: core.StateCompleted, CreatedAt: march, OwnerID: owner.ID},
	}
	for _, a := range fixtures {
		if _, err := repo.SaveActivity(ctx, a); err != nil {
			t.Fatalf("SaveActivity %q: %v", a.Description, err)
		}
	}

	wantIncome := decimal.RequireFromString("3000000.25")

	income, err := repo.SumAmountByOwnerTypeStateMonth(ctx, owner.ID, core.TypeIncome, core.StateCompleted, 2026, 3)
	if err != nil {
		t.Fatalf("SumAmountByOwnerTypeStateMonth: %v", err)
	}
	if !income.Equal(wantIncome) {
		t.Errorf("month income = %s, want %s", income, wantIncome)
	}

	expense, err := repo.SumAmountByOwnerTypeStateMonth(ctx, owner.ID, core.TypeExpense, core.StateCompleted, 2026, 3)
	if err != nil {
		t.Fatalf("SumAmountByOwnerTypeStateMonth: %v", err)
	}
	if !expense.Equal(decimal.NewFromInt(150_750)) {
		t.Errorf("month expense = %s, want 150750", expense)
	}

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	ranged, err := repo.SumAmountByOwnerTypeStateRange(ctx, owner.ID, core.TypeIncome, core.StateCompleted, from, to)
	if err != nil {
		t.Fatalf("SumAmountByOwnerTypeStateRange: %v", err)
	}
	if !ranged.Equal(wantIncome) {
		t.Errorf("range income = %s, want %s", ranged, wantIncome)
	}

	// no matching rows sums to zero, not an error
	empty, err := repo.SumAmountByOwnerTypeStateMonth(ctx, owner.ID, core.TypeIncome, core.StateCompleted, 2019, 1)
	if err != nil {
		t.Fatalf("SumAmountByOwnerTypeStateMonth empty: %v", err)
	}
	if !empty.IsZero() {
		t.Errorf("empty month sum = %s, want 0", empty)
	}
}

func TestFindActivitiesByOwnerFiltered(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := seedAccount(t, repo, "owner@finanzas.com")

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	fixtures := []core.Activity{
		{Description: "Salario", Amount: decimal.NewFromInt(2_500_000), Type: core.TypeIncome, Category: core.CategorySalario, State: core.StateCompleted, CreatedAt: base, OwnerID: owner.ID},
		{Description: "Mercado", Amount: decimal.NewFromInt(150_750), Type: core.TypeExpense, Category: core.CategoryAlimentacion, State: core.StateCompleted, CreatedAt: base.Add(time.Hour), OwnerID: owner.ID},
		{Description: "Arriendo", Amount: decimal.NewFromInt(800_000), Type: core.TypeExpense, Category: core.CategoryVivienda, State: core.StatePending, CreatedAt: base.Add(2 * time.Hour), OwnerID: owner.ID},
	}
	for _, a := range fixtures {
		if _, err := repo.SaveActivity(ctx, a); err != nil {
			t.Fatalf("SaveActivity %q: %v", a.Description, err)
		}
	}

	typ := core.TypeExpense
	state := core.StateCompleted
	cases := []struct {
		name   string
		filter ActivityFilter
		want   int
	}{
		{"no filter", ActivityFilter{}, 3},
		{"by type", ActivityFilter{Type: &typ}, 2},
		{"by type and state", ActivityFilter{Type: &typ, State: &state}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.FindActivitiesByOwnerFiltered(ctx, owner.ID, tc.filter)
			if err != nil {
				t.Fatalf("FindActivitiesByOwnerFiltered: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("len = %d, want %d", len(got), tc.want)
			}
		})
	}

	// newest first
	all, err := repo.FindActivitiesByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("FindActivitiesByOwner: %v", err)
	}
	if len(all) != 3 || all[0].Description != "Arriendo" {
		t.Errorf("expected newest first, got %+v", all)
	}

	recent, err := repo.FindRecentActivitiesByOwner(ctx, owner.ID, 2)
	if err != nil {
		t.Fatalf("FindRecentActivitiesByOwner: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("recent len = %d, want 2", len(recent))
	}
}

func TestAccountRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.SaveAccount(ctx, core.Account{
		Email:        "admin@finanzas.com",
		PasswordHash: auth.StoredHash("$2a$10$fakehashfortests"),
		Name:         "Administrador",
		Role:         core.RoleAdmin,
		TempPassword: true,
		RegisteredAt: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}

	byEmail, err := repo.FindAccountByEmail(ctx, "admin@finanzas.com")
	if err != nil {
		t.Fatalf("FindAccountByEmail: %v", err)
	}
	if byEmail.ID != saved.ID || byEmail.Role != core.RoleAdmin || !byEmail.TempPassword {
		t.Errorf("round-trip mismatch: %+v", byEmail)
	}
	if byEmail.PasswordHash != saved.PasswordHash {
		t.Errorf("hash mismatch: %q", byEmail.PasswordHash)
	}

	exists, err := repo.ExistsAccountByEmail(ctx, "admin@finanzas.com")
	if err != nil || !exists {
		t.Errorf("ExistsAccountByEmail = %v, %v", exists, err)
	}
	exists, err = repo.ExistsAccountByEmail(ctx, "nobody@finanzas.com")
	if err != nil || exists {
		t.Errorf("ExistsAccountByEmail(nobody) = %v, %v", exists, err)
	}

	if _, err := repo.FindAccountByEmail(ctx, "nobody@finanzas.com"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("FindAccountByEmail err = %v, want ErrNotFound", err)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedAccount(t, repo, "dup@finanzas.com")

	_, err := repo.SaveAccount(ctx, core.Account{
		Email:        "dup@finanzas.com",
		PasswordHash: auth.StoredHash("$2a$10$fakehashfortests"),
		Name:         "Duplicado",
		Role:         core.RoleUser,
		RegisteredAt: time.Now(),
	})
	if err == nil {
		t.Fatal("expected unique constraint error")
	}
}

func TestDeleteAccountCascadesActivities(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := seedAccount(t, repo, "owner@finanzas.com")

	saved, err := repo.SaveActivity(ctx, core.Activity{
		Description: "Mercado",
		Amount:      decimal.NewFromInt(150_750),
		Type:        core.TypeExpense,
		Category:    core.CategoryAlimentacion,
		State:       core.StateCompleted,
		CreatedAt:   time.Now(),
		OwnerID:     owner.ID,
	})
	if err != nil {
		t.Fatalf("SaveActivity: %v", err)
	}

	if err := repo.DeleteAccountByID(ctx, owner.ID); err != nil {
		t.Fatalf("DeleteAccountByID: %v", err)
	}
	if _, err := repo.FindActivityByID(ctx, saved.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected activity cascade-deleted, got %v", err)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	creds := auth.NewManager()

	if err := repo.Seed(ctx, creds); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := repo.Seed(ctx, creds); err != nil {
		t.Fatalf("Seed twice: %v", err)
	}

	n, err := repo.CountAccounts(ctx)
	if err != nil {
		t.Fatalf("CountAccounts: %v", err)
	}
	if n != 2 {
		t.Errorf("accounts = %d, want 2", n)
	}

	user, err := repo.FindAccountByEmail(ctx, "usuario@finanzas.com")
	if err != nil {
		t.Fatalf("FindAccountByEmail: %v", err)
	}
	if !creds.Verify("123456", user.PasswordHash) {
		t.Error("seeded password does not verify")
	}

	completed, err := repo.FindActivitiesByOwnerAndState(ctx, user.ID, core.StateCompleted)
	if err != nil {
		t.Fatalf("FindActivitiesByOwnerAndState: %v", err)
	}
	if len(completed) != 2 {
		t.Errorf("completed activities = %d, want 2", len(completed))
	}
}
