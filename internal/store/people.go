package store

import (
	"context"
	"encoding/json"

	appcontext "github.com/Ramsey-B/fern/pkg/context"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ontology"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/validation"
)

// People are things whose type is one of the reserved person types. The
// people operations are a view over the things table, never a second table.

// ListPeople returns people in the caller's group.
func (s *Store) ListPeople(ctx context.Context, filter models.PersonFilter) (*models.List[models.Person], error) {
	ctx, span := tracing.StartSpan(ctx, "store.ListPeople")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}

	things, err := s.things.ListPeople(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	people := make([]models.Person, 0, len(things.Items))
	for i := range things.Items {
		people = append(people, *models.PersonFromThing(&things.Items[i]))
	}

	return &models.List[models.Person]{
		Items:      people,
		TotalCount: things.TotalCount,
		Limit:      things.Limit,
		Offset:     things.Offset,
	}, nil
}

// GetPerson returns a person in the caller's group. A thing that exists but
// is not person-typed is reported as not found.
func (s *Store) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	ctx, span := tracing.StartSpan(ctx, "store.GetPerson")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}

	thing, err := s.things.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if thing == nil || !ontology.IsPersonType(thing.Type) {
		return nil, apperrors.NewNotFound("person", id)
	}

	return models.PersonFromThing(thing), nil
}

// CurrentPerson returns the person record of the authenticated caller.
func (s *Store) CurrentPerson(ctx context.Context) (*models.Person, error) {
	ctx, span := tracing.StartSpan(ctx, "store.CurrentPerson")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	userID := appcontext.GetUserID(ctx)
	if userID == "" {
		return nil, apperrors.NewUnauthorized("request has no user identity")
	}

	thing, err := s.things.GetByUserID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if thing == nil {
		return nil, apperrors.NewNotFound("person", userID)
	}

	return models.PersonFromThing(thing), nil
}

// CreatePerson creates a person-typed thing carrying the person fields in
// its properties.
func (s *Store) CreatePerson(ctx context.Context, req models.CreatePersonRequest) (*models.Person, error) {
	ctx, span := tracing.StartSpan(ctx, "store.CreatePerson")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgOwner, "create", "person"); err != nil {
		return nil, err
	}
	if err := validation.ValidateCreatePerson(req); err != nil {
		return nil, err
	}

	existing, err := s.things.GetByEmail(ctx, tenantID, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewDuplicate("email", req.Email)
	}

	personType := req.Type
	if personType == "" {
		personType = ontology.ThingTypeCreator
	}

	properties := map[string]any{
		"email": req.Email,
		"role":  req.Role,
	}
	if len(req.Permissions) > 0 {
		properties["permissions"] = req.Permissions
	}
	if req.UserID != "" {
		properties["user_id"] = req.UserID
	}

	thing, err := s.things.Create(ctx, tenantID, models.CreateThingRequest{
		Type:       personType,
		Name:       req.Name,
		Properties: properties,
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, tenantID, actorID, ontology.EventTypeUserJoined, thing.ID, map[string]any{
		"role": req.Role,
	})
	return models.PersonFromThing(thing), nil
}

// UpdatePerson patches a person's name, email, permissions or role. A role
// change raises the required caller role to org_owner.
func (s *Store) UpdatePerson(ctx context.Context, id string, req models.UpdatePersonRequest) (*models.Person, error) {
	ctx, span := tracing.StartSpan(ctx, "store.UpdatePerson")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	minRole := ontology.RoleOrgUser
	if req.Role != nil {
		minRole = ontology.RoleOrgOwner
	}
	if err := s.requireRole(ctx, tenantID, actorID, minRole, "update", "person"); err != nil {
		return nil, err
	}

	current, err := s.things.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if current == nil || !ontology.IsPersonType(current.Type) {
		return nil, apperrors.NewNotFound("person", id)
	}

	if err := validation.ValidateUpdatePerson(req); err != nil {
		return nil, err
	}

	properties := map[string]any{}
	if len(current.Properties) > 0 {
		_ = json.Unmarshal(current.Properties, &properties)
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Email != nil {
		properties["email"] = *req.Email
	}
	if req.Role != nil {
		properties["role"] = *req.Role
	}
	if req.Permissions != nil {
		properties["permissions"] = req.Permissions
	}

	b, err := json.Marshal(properties)
	if err != nil {
		return nil, apperrors.NewInternal("failed to encode person properties").WithCause(err)
	}
	current.Properties = b

	if err := s.things.Update(ctx, current); err != nil {
		return nil, err
	}

	meta := map[string]any{"type": current.Type}
	if req.Role != nil {
		meta["role"] = *req.Role
	}
	s.audit(ctx, tenantID, actorID, ontology.EventTypeThingUpdated, current.ID, meta)
	return models.PersonFromThing(current), nil
}

// DeletePerson archives a person's thing record.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "store.DeletePerson")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgOwner, "delete", "person"); err != nil {
		return err
	}

	current, err := s.things.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if current == nil || !ontology.IsPersonType(current.Type) {
		return apperrors.NewNotFound("person", id)
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
