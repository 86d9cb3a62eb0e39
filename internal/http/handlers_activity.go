package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/JSBS07/gestor-finanzas/internal/core"
	"github.com/JSBS07/gestor-finanzas/internal/services"
)

type activityJSON struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	State       string `json:"state"`
	CreatedAt   string `json:"created_at"`
}

func toActivityJSON(a core.Activity) activityJSON {
	return activityJSON{
		ID:          a.ID,
		Description: a.Description,
		Amount:      a.Amount.StringFixed(2),
		Type:        string(a.Type),
		Category:    string(a.Category),
		State:       string(a.State),
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toActivityList(activities []core.Activity) []activityJSON {
	out := make([]activityJSON, 0, len(activities))
	for _, a := range activities {
		out = append(out, toActivityJSON(a))
	}
	return out
}

type activityRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
}

func (req activityRequest) toInput() services.ActivityInput {
	return services.ActivityInput{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        core.ActivityType(req.Type),
		Category:    core.Category(req.Category),
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req activityRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Code: "BAD_REQUEST", Message: "invalid request body"},
		})
		return
	}

	created, err := s.activities.Create(r.Context(), claims.AccountID, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Activity activityJSON `json:"activity"`
	}{toActivityJSON(created)})
}

func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Code: "BAD_REQUEST", Message: "invalid activity id"},
		})
		return
	}

	var req activityRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Code: "BAD_REQUEST", Message: "invalid request body"},
		})
		return
	}

	updated, err := s.activities.Update(r.Context(), claims.AccountID, id, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Activity activityJSON `json:"activity"`
	}{toActivityJSON(updated)})
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Code: "BAD_REQUEST", Message: "invalid activity id"},
		})
		return
	}

	if err := s.activities.Delete(r.Context(), claims.AccountID, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangeActivityState(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Code: "BAD_REQUEST", Message: "invalid activity id"},
		})
		return
	}

	var req struct {
		State string `json:"state"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Code: "BAD_REQUEST", Message: "invalid request body"},
		})
		return
	}

	updated, err := s.activities.ChangeState(r.Context(), claims.AccountID, id, core.ActivityState(req.State))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Activity activityJSON `json:"activity"`
	}{toActivityJSON(updated)})
}

// handleListActivities returns the owner's activities, optionally
// filtered by ?state=PENDING|COMPLETED.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var (
		activities []core.Activity
		err        error
	)
	if state := r.URL.Query().Get("state"); state != "" {
		target := core.ActivityState(state)
		if target != core.StatePending && target != core.StateCompleted {
			writeError(w, r, core.ErrUnknownState)
			return
		}
		activities, err = s.activities.ListByState(r.Context(), claims.AccountID, target)
	} else {
		activities, err = s.activities.ListAll(r.Context(), claims.AccountID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Activities []activityJSON `json:"activities"`
	}{toActivityList(activities)})
}
