package models

import (
	"encoding/json"
	"time"
)

// Event is an immutable audit record. The contract exposes list and record
// only; update and delete do not exist anywhere in the core.
type Event struct {
	ID        string          `json:"id" db:"id"`
	GroupID   string          `json:"group_id" db:"group_id"`
	Type      string          `json:"type" db:"type"`
	ActorID   string          `json:"actor_id" db:"actor_id"`
	TargetID  *string         `json:"target_id,omitempty" db:"target_id"`
	Metadata  json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
}

// RecordEventRequest is the payload for recording an event.
type RecordEventRequest struct {
	GroupID  string         `json:"group_id,omitempty"`
	Type     string         `json:"type"`
	ActorID  string         `json:"actor_id,omitempty"`
	TargetID *string        `json:"target_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// EventFilter scopes event reads. Timeline queries order by timestamp within
// the group; no cross-group ordering exists.
type EventFilter struct {
	GroupID   string     `query:"group_id"`
	Type      string     `query:"type"`
	ActorID   string     `query:"actor_id"`
	TargetID  string     `query:"target_id"`
	StartTime *time.Time `query:"start_time"`
	EndTime   *time.Time `query:"end_time"`
	Page
}
