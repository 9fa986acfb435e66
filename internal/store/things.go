package store

import (
	"context"
	"encoding/json"

	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ontology"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/validation"
)

// ListThings returns things in the caller's group.
func (s *Store) ListThings(ctx context.Context, filter models.ThingFilter) (*models.List[models.Thing], error) {
	ctx, span := tracing.StartSpan(ctx, "store.ListThings")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}

	return s.things.List(ctx, tenantID, filter)
}

// GetThing returns a thing in the caller's group. Archived things stay
// readable so references from other dimensions keep working.
func (s *Store) GetThing(ctx context.Context, id string) (*models.Thing, error) {
	ctx, span := tracing.StartSpan(ctx, "store.GetThing")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}

	thing, err := s.things.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if thing == nil {
		return nil, apperrors.NewNotFound("thing", id)
	}
	return thing, nil
}

// CreateThing creates a thing in the caller's group.
func (s *Store) CreateThing(ctx context.Context, req models.CreateThingRequest) (*models.Thing, error) {
	ctx, span := tracing.StartSpan(ctx, "store.CreateThing")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgUser, "create", "thing"); err != nil {
		return nil, err
	}
	if err := validation.ValidateCreateThing(req); err != nil {
		return nil, err
	}

	thing, err := s.things.Create(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, tenantID, actorID, ontology.EventTypeThingCreated, thing.ID, map[string]any{
		"type": thing.Type,
		"name": thing.Name,
	})
	return thing, nil
}

// UpdateThing patches a thing in the caller's group. Status changes go
// through the status machine; properties replace wholesale when present.
func (s *Store) UpdateThing(ctx context.Context, id string, req models.UpdateThingRequest) (*models.Thing, error) {
	ctx, span := tracing.StartSpan(ctx, "store.UpdateThing")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgUser, "update", "thing"); err != nil {
		return nil, err
	}

	current, err := s.things.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NewNotFound("thing", id)
	}

	if err := validation.ValidateUpdateThing(current, req); err != nil {
		return nil, err
	}

	eventType := ontology.EventTypeThingUpdated
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Properties != nil {
		b, err := json.Marshal(req.Properties)
		if err != nil {
			return nil, apperrors.NewValidation("properties", "properties must be a JSON object")
		}
		current.Properties = b
	}
	if req.Status != nil && *req.Status != current.Status {
		current.Status = *req.Status
		if *req.Status == ontology.StatusPublished {
			eventType = ontology.EventTypeThingPublished
		}
	}

	if err := s.things.Update(ctx, current); err != nil {
		return nil, err
	}

	s.audit(ctx, tenantID, actorID, eventType, current.ID, map[string]any{
		"type": current.Type,
	})
	return current, nil
}

// DeleteThing archives a thing. Archiving twice is a no-op success.
func (s *Store) DeleteThing(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "store.DeleteThing")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgUser, "delete", "thing"); err != nil {
		return err
	}

	current, err := s.things.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if current == nil {
		return apperrors.NewNotFound("thing", id)
	}
	if current.Status == ontology.StatusArchived {
		return nil
	}

	if err := s.things.Archive(ctx, tenantID, id); err != nil {
		return err
	}

	s.audit(ctx, tenantID, actorID, ontology.EventTypeThingArchived, id, map[string]any{
		"type": current.Type,
	})
	return nil
}
