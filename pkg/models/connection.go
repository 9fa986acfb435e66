package models

import (
	"encoding/json"
	"time"
)

// Connection is a directed, typed relationship between two things in the same
// group. Connections are immutable once created; the only mutation is delete.
type Connection struct {
	ID          string          `json:"id" db:"id"`
	GroupID     string          `json:"group_id" db:"group_id"`
	Type        string          `json:"type" db:"type"`
	FromThingID string          `json:"from_thing_id" db:"from_thing_id"`
	ToThingID   string          `json:"to_thing_id" db:"to_thing_id"`
	Metadata    json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// CreateConnectionRequest is the payload for creating a connection.
type CreateConnectionRequest struct {
	GroupID     string         `json:"group_id,omitempty"`
	Type        string         `json:"type"`
	FromThingID string         `json:"from_thing_id"`
	ToThingID   string         `json:"to_thing_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// BatchCreateConnectionsRequest creates several connections at once. Duplicate
// (from, to, type) tuples, against existing rows or earlier batch items, are
// rejected as conflicts.
type BatchCreateConnectionsRequest struct {
	Connections []CreateConnectionRequest `json:"connections"`
}

// ConnectionFilter scopes connection reads.
type ConnectionFilter struct {
	GroupID     string `query:"group_id"`
	Type        string `query:"type"`
	FromThingID string `query:"from_thing_id"`
	ToThingID   string `query:"to_thing_id"`
	Page
}
