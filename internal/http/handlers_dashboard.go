package http

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/JSBS07/gestor-finanzas/internal/core"
	"github.com/JSBS07/gestor-finanzas/internal/services"
)

const recentLimit = 5

type dashboardJSON struct {
	Income    string         `json:"income"`
	Expense   string         `json:"expense"`
	Balance   string         `json:"balance"`
	Degraded  bool           `json:"degraded"`
	Pending   []activityJSON `json:"pending"`
	Completed []activityJSON `json:"completed"`
	Recent    []activityJSON `json:"recent"`
}

// handleDashboard assembles the monthly picture. Totals and the three
// lists are independent reads, so they run concurrently.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	ownerID := claims.AccountID

	var (
		balance   services.Balance
		pending   []core.Activity
		completed []core.Activity
		recent    []core.Activity
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		balance, err = s.aggregator.Balance(ctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.activities.ListByState(ctx, ownerID, core.StatePending)
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = s.activities.ListByState(ctx, ownerID, core.StateCompleted)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.activities.Recent(ctx, ownerID, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardJSON{
		Income:    balance.Income.StringFixed(2),
		Expense:   balance.Expense.StringFixed(2),
		Balance:   balance.Net.StringFixed(2),
		Degraded:  balance.Degraded,
		Pending:   toActivityList(pending),
		Completed: toActivityList(completed),
		Recent:    toActivityList(recent),
	})
}
