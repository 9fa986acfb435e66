package validation

import (
	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
)

// The composite validators below run their checks in a fixed order and stop
// at the first violation. Order per entity: required fields first, then
// lengths, then vocabulary membership, then cross-field rules.

// ValidateCreateGroup checks a group create payload.
func ValidateCreateGroup(req models.CreateGroupRequest) error {
	if err := Required("name", req.Name); err != nil {
		return err
	}
	if err := Length("name", req.Name, 1, MaxNameLength); err != nil {
		return err
	}
	if req.Slug != "" {
		if err := Length("slug", req.Slug, 1, 100); err != nil {
			return err
		}
	}
	if err := Required("type", req.Type); err != nil {
		return err
	}
	return GroupType(req.Type)
}

// ValidateUpdateGroup checks a group patch payload against the current record.
func ValidateUpdateGroup(current *models.Group, req models.UpdateGroupRequest) error {
	if req.Name != nil {
		if err := Required("name", *req.Name); err != nil {
			return err
		}
		if err := Length("name", *req.Name, 1, MaxNameLength); err != nil {
			return err
		}
	}
	if req.Type != nil {
		if err := GroupType(*req.Type); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCreatePerson checks a person create payload. Type, when present,
// must be one of the reserved person types.
func ValidateCreatePerson(req models.CreatePersonRequest) error {
	if err := Required("name", req.Name); err != nil {
		return err
	}
	if err := Length("name", req.Name, 1, MaxNameLength); err != nil {
		return err
	}
	if err := Required("email", req.Email); err != nil {
		return err
	}
	if err := Email("email", req.Email); err != nil {
		return err
	}
	if err := Required("role", req.Role); err != nil {
		return err
	}
	if err := Role(req.Role); err != nil {
		return err
	}
	if req.Type != "" {
		return PersonType(req.Type)
	}
	return nil
}

// ValidateUpdatePerson checks a person patch payload.
func ValidateUpdatePerson(req models.UpdatePersonRequest) error {
	if req.Name != nil {
		if err := Required("name", *req.Name); err != nil {
			return err
		}
		if err := Length("name", *req.Name, 1, MaxNameLength); err != nil {
			return err
		}
	}
	if req.Email != nil {
		if err := Required("email", *req.Email); err != nil {
			return err
		}
		if err := Email("email", *req.Email); err != nil {
			return err
		}
	}
	if req.Role != nil {
		if err := Role(*req.Role); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCreateThing checks a thing create payload.
func ValidateCreateThing(req models.CreateThingRequest) error {
	if err := Required("type", req.Type); err != nil {
		return err
	}
	if err := ThingType(req.Type); err != nil {
		return err
	}
	if err := Required("name", req.Name); err != nil {
		return err
	}
	if err := Length("name", req.Name, 1, MaxNameLength); err != nil {
		return err
	}
	if req.Status != "" {
		return Status(req.Status)
	}
	return nil
}

// ValidateUpdateThing checks a thing patch payload against the current record.
func ValidateUpdateThing(current *models.Thing, req models.UpdateThingRequest) error {
	if req.Name != nil {
		if err := Required("name", *req.Name); err != nil {
			return err
		}
		if err := Length("name", *req.Name, 1, MaxNameLength); err != nil {
			return err
		}
	}
	if req.Status != nil {
		if err := StatusTransition(current.Status, *req.Status); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCreateConnection checks a connection create payload. Existence and
// same-group membership of the endpoints are storage concerns checked by the
// provider, not here.
func ValidateCreateConnection(req models.CreateConnectionRequest) error {
	if err := Required("type", req.Type); err != nil {
		return err
	}
	if err := ConnectionType(req.Type); err != nil {
		return err
	}
	if err := Required("from_thing_id", req.FromThingID); err != nil {
		return err
	}
	if err := Required("to_thing_id", req.ToThingID); err != nil {
		return err
	}
	if req.FromThingID == req.ToThingID {
		return errors.NewValidation("to_thing_id", "a thing cannot connect to itself")
	}
	return nil
}

// ValidateRecordEvent checks an event record payload.
func ValidateRecordEvent(req models.RecordEventRequest) error {
	if err := Required("type", req.Type); err != nil {
		return err
	}
	return EventType(req.Type)
}

// ValidateCreateKnowledge checks a knowledge create payload.
func ValidateCreateKnowledge(req models.CreateKnowledgeRequest) error {
	if err := Required("source_thing_id", req.SourceThingID); err != nil {
		return err
	}
	return Required("content", req.Content)
}

// ValidateUpdateKnowledge checks a knowledge patch payload.
func ValidateUpdateKnowledge(req models.UpdateKnowledgeRequest) error {
	if req.Content != nil {
		return Required("content", *req.Content)
	}
	return nil
}
