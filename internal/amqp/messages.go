package amqp

import (
	"encoding/json"
	"time"
)

// Activity event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ActivityEvent is a lightweight notification that an activity changed.
// It carries only identifiers and the affected month; the worker fetches
// whatever data it needs from the database.
type ActivityEvent struct {
	ActivityID int64     `json:"activity_id"`
	OwnerID    int64     `json:"owner_id"`
	Action     string    `json:"action"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewActivityEvent(activityID, ownerID int64, action string, at time.Time) *ActivityEvent {
	// The worker buckets statements by UTC month, matching storage.
	at = at.UTC()
	return &ActivityEvent{
		ActivityID: activityID,
		OwnerID:    ownerID,
		Action:     action,
		Year:       at.Year(),
		Month:      int(at.Month()),
		Timestamp:  time.Now(),
	}
}

func (e *ActivityEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ActivityEventFromJSON(data []byte) (*ActivityEvent, error) {
	var e ActivityEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
