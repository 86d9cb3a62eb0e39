// Package services orchestrates accounts and activities across the
// SQLite store, the credential manager and AMQP.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JSBS07/gestor-finanzas/internal/amqp"
	"github.com/JSBS07/gestor-finanzas/internal/core"
	"github.com/JSBS07/gestor-finanzas/internal/metrics"
)

// ActivityStore is the slice of the repository the activity lifecycle
// needs.
type ActivityStore interface {
	SaveActivity(ctx context.Context, a core.Activity) (core.Activity, error)
	FindActivityByID(ctx context.Context, id int64) (core.Activity, error)
	DeleteActivityByID(ctx context.Context, id int64) error
	FindActivitiesByOwnerAndState(ctx context.Context, ownerID int64, state core.ActivityState) ([]core.Activity, error)
	FindActivitiesByOwner(ctx context.Context, ownerID int64) ([]core.Activity, error)
	FindRecentActivitiesByOwner(ctx context.Context, ownerID int64, limit int) ([]core.Activity, error)
}

// EventPublisher sends activity change events. A nil publisher disables
// eventing without changing the write path.
type EventPublisher interface {
	PublishActivityEvent(ctx context.Context, event *amqp.ActivityEvent) error
}

type ActivityService struct {
	store   ActivityStore
	events  EventPublisher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewActivityService(store ActivityStore, events EventPublisher, m *metrics.Metrics) *ActivityService {
	return &ActivityService{
		store:   store,
		events:  events,
		metrics: m,
		now:     time.Now,
	}
}

// ActivityInput carries user-entered activity fields. Amount is the raw
// Colombian-format string exactly as typed.
type ActivityInput struct {
	Description string
	Amount      string
	Type        core.ActivityType
	Category    core.Category
}

// Create records a new PENDING activity owned by ownerID.
func (s *ActivityService) Create(ctx context.Context, ownerID int64, in ActivityInput) (core.Activity, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		s.countValidationFailure(err)
		return core.Activity{}, err
	}

	a := core.Activity{
		Description: in.Description,
		Amount:      amount,
		Type:        in.Type,
		Category:    in.Category,
		State:       core.StatePending,
		CreatedAt:   s.now(),
		OwnerID:     ownerID,
	}
	if err := a.Validate(); err != nil {
		s.countValidationFailure(err)
		return core.Activity{}, err
	}

	saved, err := s.store.SaveActivity(ctx, a)
	if err != nil {
		return core.Activity{}, fmt.Errorf("create activity: %w", err)
	}

	s.metrics.ActivitySaved(string(saved.Type))
	s.publish(ctx, saved, amqp.ActionCreated)
	return saved, nil
}

// Update rewrites the editable fields of an activity the requester owns.
// State, creation time and ownership are not touched here.
func (s *ActivityService) Update(ctx context.Context, requesterID, id int64, in ActivityInput) (core.Activity, error) {
	existing, err := s.store.FindActivityByID(ctx, id)
	if err != nil {
		return core.Activity{}, err
	}
	if existing.OwnerID != requesterID {
		return core.Activity{}, core.ErrForbidden
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		s.countValidationFailure(err)
		return core.Activity{}, err
	}

	existing.Description = in.Description
	existing.Amount = amount
	existing.Type = in.Type
	existing.Category = in.Category
	if err := existing.Validate(); err != nil {
		s.countValidationFailure(err)
		return core.Activity{}, err
	}

	saved, err := s.store.SaveActivity(ctx, existing)
	if err != nil {
		return core.Activity{}, fmt.Errorf("update activity: %w", err)
	}

	s.metrics.ActivitySaved(string(saved.Type))
	s.publish(ctx, saved, amqp.ActionUpdated)
	return saved, nil
}

// ChangeState moves an owned activity to PENDING or COMPLETED. Setting
// the current state again is allowed.
func (s *ActivityService) ChangeState(ctx context.Context, requesterID, id int64, target core.ActivityState) (core.Activity, error) {
	if target != core.StatePending && target != core.StateCompleted {
		return core.Activity{}, core.ErrUnknownState
	}

	existing, err := s.store.FindActivityByID(ctx, id)
	if err != nil {
		return core.Activity{}, err
	}
	if existing.OwnerID != requesterID {
		return core.Activity{}, core.ErrForbidden
	}

	existing.State = target
	saved, err := s.store.SaveActivity(ctx, existing)
	if err != nil {
		return core.Activity{}, fmt.Errorf("change activity state: %w", err)
	}

	s.publish(ctx, saved, amqp.ActionUpdated)
	return saved, nil
}

// Delete removes an owned activity.
func (s *ActivityService) Delete(ctx context.Context, requesterID, id int64) error {
	existing, err := s.store.FindActivityByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != requesterID {
		return core.ErrForbidden
	}

	if err := s.store.DeleteActivityByID(ctx, id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}

	s.metrics.ActivityDeleted()
	s.publish(ctx, existing, amqp.ActionDeleted)
	return nil
}

func (s *ActivityService) ListByState(ctx context.Context, ownerID int64, state core.ActivityState) ([]core.Activity, error) {
	return s.store.FindActivitiesByOwnerAndState(ctx, ownerID, state)
}

func (s *ActivityService) ListAll(ctx context.Context, ownerID int64) ([]core.Activity, error) {
	return s.store.FindActivitiesByOwner(ctx, ownerID)
}

func (s *ActivityService) Recent(ctx context.Context, ownerID int64, limit int) ([]core.Activity, error) {
	return s.store.FindRecentActivitiesByOwner(ctx, ownerID, limit)
}

// publish is best-effort: a missing broker never fails the write that
// already happened.
func (s *ActivityService) publish(ctx context.Context, a core.Activity, action string) {
	if s.events == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping activity event",
			"activity_id", a.ID, "action", action)
		return
	}

	event := amqp.NewActivityEvent(a.ID, a.OwnerID, action, a.CreatedAt)
	if err := s.events.PublishActivityEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish activity event",
			"activity_id", a.ID, "action", action, "error", err)
	}
}

func (s *ActivityService) countValidationFailure(err error) {
	var derr *core.DescriptionError
	switch {
	case errors.As(err, &derr):
		s.metrics.ValidationFailure(string(derr.Code))
	case errors.Is(err, core.ErrMalformedAmount):
		s.metrics.ValidationFailure("MALFORMED_AMOUNT")
	case errors.Is(err, core.ErrAmountOutOfRange):
		s.metrics.ValidationFailure("AMOUNT_OUT_OF_RANGE")
	case errors.Is(err, core.ErrCategoryTypeMismatch):
		s.metrics.ValidationFailure("CATEGORY_TYPE_MISMATCH")
	default:
		s.metrics.ValidationFailure("INVALID")
	}
}
