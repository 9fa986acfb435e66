package models

import "time"

// Group is the tenant container and the root of multi-tenant scoping. Groups
// may nest via ParentID. Groups are never hard-deleted; delete archives.
type Group struct {
	ID        string     `json:"id" db:"id"`
	Slug      string     `json:"slug" db:"slug"`
	Name      string     `json:"name" db:"name"`
	Type      string     `json:"type" db:"type"`
	ParentID  *string    `json:"parent_id,omitempty" db:"parent_id"`
	Status    string     `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateGroupRequest is the payload for creating a group.
type CreateGroupRequest struct {
	Slug     string  `json:"slug,omitempty"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	ParentID *string `json:"parent_id,omitempty"`
}

// UpdateGroupRequest is the patch payload for a group. Nil fields are left
// untouched.
type UpdateGroupRequest struct {
	Name   *string `json:"name,omitempty"`
	Type   *string `json:"type,omitempty"`
	Status *string `json:"status,omitempty"`
}

// GroupFilter scopes group reads.
type GroupFilter struct {
	ParentID *string `query:"parent_id"`
	Type     string  `query:"type"`
	Status   string  `query:"status"`
	Search   string  `query:"search"`
	Page
}
