package store

import (
	"context"
	"strings"

	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ontology"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/validation"
)

// ListGroups returns the caller's group and its direct children.
func (s *Store) ListGroups(ctx context.Context, filter models.GroupFilter) (*models.List[models.Group], error) {
	ctx, span := tracing.StartSpan(ctx, "store.ListGroups")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}

	return s.groups.List(ctx, tenantID, filter)
}

// GetGroup returns a visible group. A group outside the caller's scope is
// reported as not found, never as forbidden.
func (s *Store) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "store.GetGroup")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.groups.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperrors.NewNotFound("group", id)
	}
	return group, nil
}

// CreateGroup creates a group nested under the caller's tenant.
func (s *Store) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "store.CreateGroup")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgOwner, "create", "group"); err != nil {
		return nil, err
	}
	if err := validation.ValidateCreateGroup(req); err != nil {
		return nil, err
	}

	if req.ParentID == nil {
		req.ParentID = &tenantID
	} else if *req.ParentID != tenantID {
		parent, err := s.groups.Get(ctx, tenantID, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperrors.NewNotFound("group", *req.ParentID)
		}
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}

	group, err := s.groups.Create(ctx, slug, req)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, group.ID, actorID, ontology.EventTypeGroupCreated, group.ID, map[string]any{
		"slug": group.Slug,
		"type": group.Type,
	})
	return group, nil
}

// UpdateGroup patches a visible group. Archived groups reject all updates.
func (s *Store) UpdateGroup(ctx context.Context, id string, req models.UpdateGroupRequest) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "store.UpdateGroup")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgOwner, "update", "group"); err != nil {
		return nil, err
	}

	current, err := s.groups.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NewNotFound("group", id)
	}
	if current.Status == ontology.GroupStatusArchived {
		return nil, apperrors.NewConflict("group is archived")
	}

	if err := validation.ValidateUpdateGroup(current, req); err != nil {
		return nil, err
	}
	if req.Status != nil && !ontology.IsValidGroupStatus(*req.Status) {
		return nil, apperrors.NewInvalidVocabulary("status", *req.Status, ontology.GroupStatuses())
	}

	group, err := s.groups.Update(ctx, tenantID, id, req)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperrors.NewNotFound("group", id)
	}

	s.audit(ctx, tenantID, actorID, ontology.EventTypeGroupUpdated, group.ID, nil)
	return group, nil
}

// DeleteGroup archives a group. Archiving twice is a no-op success.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "store.DeleteGroup")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgOwner, "delete", "group"); err != nil {
		return err
	}

	current, err := s.groups.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if current == nil {
		return apperrors.NewNotFound("group", id)
	}
	if current.Status == ontology.GroupStatusArchived {
		return nil
	}

	if err := s.groups.Archive(ctx, tenantID, id); err != nil {
		return err
	}

	s.audit(ctx, tenantID, actorID, ontology.EventTypeGroupArchived, id, nil)
	return nil
}

// Slugify derives a URL-safe slug from a display name.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
