package store

import (
	"context"

	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ontology"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/validation"
)

// ListConnections returns connections in the caller's group.
func (s *Store) ListConnections(ctx context.Context, filter models.ConnectionFilter) (*models.List[models.Connection], error) {
	ctx, span := tracing.StartSpan(ctx, "store.ListConnections")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}

	return s.connections.List(ctx, tenantID, filter)
}

// GetConnection returns a connection in the caller's group.
func (s *Store) GetConnection(ctx context.Context, id string) (*models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "store.GetConnection")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := s.connections.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, apperrors.NewNotFound("connection", id)
	}
	return conn, nil
}

// CreateConnection creates a connection between two things in the caller's
// group. Both endpoints must exist in the group; an endpoint elsewhere is
// reported as not found.
func (s *Store) CreateConnection(ctx context.Context, req models.CreateConnectionRequest) (*models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "store.CreateConnection")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgUser, "create", "connection"); err != nil {
		return nil, err
	}
	if err := validation.ValidateCreateConnection(req); err != nil {
		return nil, err
	}
	if err := s.checkEndpoints(ctx, tenantID, req); err != nil {
		return nil, err
	}

	conn, err := s.connections.Create(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, tenantID, actorID, ontology.EventTypeConnectionCreated, conn.ID, map[string]any{
		"type":          conn.Type,
		"from_thing_id": conn.FromThingID,
		"to_thing_id":   conn.ToThingID,
	})
	return conn, nil
}

// BatchCreateConnections creates several connections atomically. Any invalid
// item or duplicate tuple fails the whole batch and nothing persists.
func (s *Store) BatchCreateConnections(ctx context.Context, req models.BatchCreateConnectionsRequest) ([]models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "store.BatchCreateConnections")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgUser, "create", "connection"); err != nil {
		return nil, err
	}
	if len(req.Connections) == 0 {
		return nil, apperrors.NewValidation("connections", "batch must contain at least one connection")
	}

	for _, item := range req.Connections {
		if err := validation.ValidateCreateConnection(item); err != nil {
			return nil, err
		}
		if err := s.checkEndpoints(ctx, tenantID, item); err != nil {
			return nil, err
		}
	}

	conns, err := s.connections.BatchCreate(ctx, tenantID, req.Connections)
	if err != nil {
		return nil, err
	}

	for _, conn := range conns {
		s.audit(ctx, tenantID, actorID, ontology.EventTypeConnectionCreated, conn.ID, map[string]any{
			"type":          conn.Type,
			"from_thing_id": conn.FromThingID,
			"to_thing_id":   conn.ToThingID,
		})
	}
	return conns, nil
}

// DeleteConnection removes a connection from the caller's group.
func (s *Store) DeleteConnection(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "store.DeleteConnection")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgUser, "delete", "connection"); err != nil {
		return err
	}

	if err := s.connections.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	s.audit(ctx, tenantID, actorID, ontology.EventTypeConnectionDeleted, id, nil)
	return nil
}

func (s *Store) checkEndpoints(ctx context.Context, tenantID string, req models.CreateConnectionRequest) error {
	from, err := s.things.Get(ctx, tenantID, req.FromThingID)
	if err != nil {
		return err
	}
	if from == nil {
		return apperrors.NewNotFound("thing", req.FromThingID)
	}

	to, err := s.things.Get(ctx, tenantID, req.ToThingID)
	if err != nil {
		return err
	}
	if to == nil {
		return apperrors.NewNotFound("thing", req.ToThingID)
	}
	return nil
}
