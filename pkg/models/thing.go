package models

import (
	"encoding/json"
	"time"
)

// Thing is the universal record for every domain object, people included. The
// type is drawn from the closed thing vocabulary and Properties carries the
// type-specific payload, intentionally untyped at this layer. Things are never
// physically removed: delete archives via status so connections, events and
// knowledge keep valid references.
type Thing struct {
	ID         string          `json:"id" db:"id"`
	GroupID    string          `json:"group_id" db:"group_id"`
	Type       string          `json:"type" db:"type"`
	Name       string          `json:"name" db:"name"`
	Properties json.RawMessage `json:"properties" db:"properties"`
	Status     string          `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// Property decodes the properties payload and returns the named value.
func (t *Thing) Property(name string) (any, bool) {
	if len(t.Properties) == 0 {
		return nil, false
	}
	var props map[string]any
	if err := json.Unmarshal(t.Properties, &props); err != nil {
		return nil, false
	}
	v, ok := props[name]
	return v, ok
}

// CreateThingRequest is the payload for creating a thing.
type CreateThingRequest struct {
	GroupID    string         `json:"group_id,omitempty"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	Status     string         `json:"status,omitempty"`
}

// UpdateThingRequest is the patch payload for a thing. Properties, when set,
// replaces the stored payload wholesale.
type UpdateThingRequest struct {
	Name       *string        `json:"name,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Status     *string        `json:"status,omitempty"`
}

// ThingFilter scopes thing reads. GroupID is filled from the caller's resolved
// tenant; it is never trusted from the query string alone.
type ThingFilter struct {
	GroupID string `query:"group_id"`
	Type    string `query:"type"`
	Status  string `query:"status"`
	Search  string `query:"search"`
	Page
}
