package models

import (
	"encoding/json"
	"time"
)

// Person is the people-dimension view over a thing whose type is one of the
// reserved person types. Role, email and permissions live in the thing's
// properties; this struct flattens them for the API surface.
type Person struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// personProperties is the properties payload shape for person things.
type personProperties struct {
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
}

// PersonFromThing builds the flattened person view from a thing record.
func PersonFromThing(t *Thing) *Person {
	var props personProperties
	if len(t.Properties) > 0 {
		_ = json.Unmarshal(t.Properties, &props)
	}
	return &Person{
		ID:          t.ID,
		GroupID:     t.GroupID,
		Type:        t.Type,
		Name:        t.Name,
		Email:       props.Email,
		Role:        props.Role,
		Permissions: props.Permissions,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// CreatePersonRequest is the payload for creating a person.
type CreatePersonRequest struct {
	GroupID     string   `json:"group_id,omitempty"`
	Type        string   `json:"type,omitempty"` // defaults to creator
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
}

// UpdatePersonRequest is the patch payload for a person. Role changes require
// the org_owner role.
type UpdatePersonRequest struct {
	Name        *string  `json:"name,omitempty"`
	Email       *string  `json:"email,omitempty"`
	Role        *string  `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// PersonFilter scopes people reads.
type PersonFilter struct {
	GroupID string `query:"group_id"`
	Role    string `query:"role"`
	Search  string `query:"search"`
	Page
}
