package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JSBS07/gestor-finanzas/internal/auth"
	"github.com/JSBS07/gestor-finanzas/internal/core"
)

// Seed creates the demo admin and user accounts plus a handful of
// activities, but only when the accounts table is empty. Two of the
// seeded activities are COMPLETED (they count toward the balance) and
// two are PENDING (they do not).
func (r *SQLiteRepository) Seed(ctx context.Context, creds *auth.Manager) error {
	n, err := r.CountAccounts(ctx)
	if err != nil {
		return fmt.Errorf("seed precheck: %w", err)
	}
	if n > 0 {
		return nil
	}

	slog.InfoContext(ctx, "Seeding demo accounts and activities")

	hash, err := creds.Hash("123456")
	if err != nil {
		return fmt.Errorf("seed hash: %w", err)
	}

	now := time.Now()

	if _, err := r.SaveAccount(ctx, core.Account{
		Email:        "admin@finanzas.com",
		PasswordHash: hash,
		Name:         "Administrador",
		Role:         core.RoleAdmin,
		RegisteredAt: now,
	}); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	userHash, err := creds.Hash("123456")
	if err != nil {
		return fmt.Errorf("seed hash: %w", err)
	}
	user, err := r.SaveAccount(ctx, core.Account{
		Email:        "usuario@finanzas.com",
		PasswordHash: userHash,
		Name:         "Usuario Prueba",
		Role:         core.RoleUser,
		RegisteredAt: now,
	})
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	demo := []core.Activity{
		{
			Description: "Pago de salario",
			Amount:      decimal.NewFromInt(2_500_000),
			Type:        core.TypeIncome,
			Category:    core.CategorySalario,
			State:       core.StateCompleted,
		},
		{
			Description: "Supermercado",
			Amount:      decimal.NewFromInt(150_750),
			Type:        core.TypeExpense,
			Category:    core.CategoryAlimentacion,
			State:       core.StateCompleted,
		},
		{
			Description: "Pago de arriendo",
			Amount:      decimal.NewFromInt(800_000),
			Type:        core.TypeExpense,
			Category:    core.CategoryVivienda,
			State:       core.StatePending,
		},
		{
			Description: "Bono de rendimiento",
			Amount:      decimal.NewFromInt(500_000),
			Type:        core.TypeIncome,
			Category:    core.CategoryOtrosIngresos,
			State:       core.StatePending,
		},
	}
	for _, a := range demo {
		a.OwnerID = user.ID
		a.CreatedAt = now
		if _, err := r.SaveActivity(ctx, a); err != nil {
			return fmt.Errorf("seed activity %q: %w", a.Description, err)
		}
	}

	slog.InfoContext(ctx, "Demo data ready",
		"admin", "admin@finanzas.com",
		"user", "usuario@finanzas.com",
		"activities", len(demo))
	return nil
}
