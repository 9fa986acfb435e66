package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ontology"
)

func TestRequired(t *testing.T) {
	assert.NoError(t, Required("name", "rose"))
	assert.Error(t, Required("name", ""))
	assert.Error(t, Required("name", "   "))
}

func TestLength(t *testing.T) {
	assert.NoError(t, Length("name", "rose", 1, 10))
	assert.Error(t, Length("name", "", 1, 10))
	assert.Error(t, Length("name", strings.Repeat("a", 11), 1, 10))
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("email", "rose@example.com"))
	assert.Error(t, Email("email", "not-an-email"))
	assert.Error(t, Email("email", ""))
}

func TestVocabularyMessagesEnumerateLegalSet(t *testing.T) {
	err := ThingType("bogus")
	require.Error(t, err)
	e, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidation, e.Code)
	for _, legal := range ontology.ThingTypes() {
		assert.Contains(t, e.Message, legal)
	}
}

func TestStatusTransition(t *testing.T) {
	assert.NoError(t, StatusTransition(ontology.StatusDraft, ontology.StatusActive))
	assert.NoError(t, StatusTransition(ontology.StatusActive, ontology.StatusActive))
	assert.Error(t, StatusTransition(ontology.StatusArchived, ontology.StatusActive))
	assert.Error(t, StatusTransition(ontology.StatusActive, "bogus"))
}

func TestValidateCreateGroupFailsFast(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateGroupRequest
		wantErr string
	}{
		{
			name: "valid",
			req:  models.CreateGroupRequest{Name: "Acme", Type: ontology.GroupTypeOrganization},
		},
		{
			name:    "missing name reported before missing type",
			req:     models.CreateGroupRequest{},
			wantErr: "name is required",
		},
		{
			name:    "bad type",
			req:     models.CreateGroupRequest{Name: "Acme", Type: "kingdom"},
			wantErr: "kingdom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreateGroup(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCreatePerson(t *testing.T) {
	valid := models.CreatePersonRequest{
		Name:  "Rose",
		Email: "rose@example.com",
		Role:  ontology.RoleOrgUser,
	}
	assert.NoError(t, ValidateCreatePerson(valid))

	tests := []struct {
		name   string
		mutate func(*models.CreatePersonRequest)
	}{
		{"missing name", func(r *models.CreatePersonRequest) { r.Name = "" }},
		{"bad email", func(r *models.CreatePersonRequest) { r.Email = "nope" }},
		{"bad role", func(r *models.CreatePersonRequest) { r.Role = "emperor" }},
		{"non-person type", func(r *models.CreatePersonRequest) { r.Type = "course" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := ValidateCreatePerson(req)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestValidateUpdatePerson(t *testing.T) {
	name := "Rose"
	email := "rose@example.com"
	role := ontology.RoleOrgUser
	assert.NoError(t, ValidateUpdatePerson(models.UpdatePersonRequest{
		Name:  &name,
		Email: &email,
		Role:  &role,
	}))

	badRole := "emperor"
	err := ValidateUpdatePerson(models.UpdatePersonRequest{Role: &badRole})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	badEmail := "nope"
	err = ValidateUpdatePerson(models.UpdatePersonRequest{Email: &badEmail})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestValidateCreateThing(t *testing.T) {
	assert.NoError(t, ValidateCreateThing(models.CreateThingRequest{
		Type: ontology.ThingTypeCreator,
		Name: "Rose",
	}))

	err := ValidateCreateThing(models.CreateThingRequest{Type: "spaceship", Name: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	err = ValidateCreateThing(models.CreateThingRequest{
		Type:   ontology.ThingTypeCreator,
		Name:   "Rose",
		Status: "bogus",
	})
	require.Error(t, err)
}

func TestValidateUpdateThingStatus(t *testing.T) {
	current := &models.Thing{Status: ontology.StatusArchived}
	active := ontology.StatusActive
	err := ValidateUpdateThing(current, models.UpdateThingRequest{Status: &active})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestValidateCreateConnection(t *testing.T) {
	assert.NoError(t, ValidateCreateConnection(models.CreateConnectionRequest{
		Type:        ontology.ConnectionTypeOwns,
		FromThingID: "a",
		ToThingID:   "b",
	}))

	tests := []struct {
		name string
		req  models.CreateConnectionRequest
	}{
		{"missing type", models.CreateConnectionRequest{FromThingID: "a", ToThingID: "b"}},
		{"bad type", models.CreateConnectionRequest{Type: "teleports", FromThingID: "a", ToThingID: "b"}},
		{"missing from", models.CreateConnectionRequest{Type: ontology.ConnectionTypeOwns, ToThingID: "b"}},
		{"self connection", models.CreateConnectionRequest{Type: ontology.ConnectionTypeOwns, FromThingID: "a", ToThingID: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreateConnection(tt.req)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestValidateCreateKnowledge(t *testing.T) {
	assert.NoError(t, ValidateCreateKnowledge(models.CreateKnowledgeRequest{
		SourceThingID: "a",
		Content:       "notes",
	}))
	assert.Error(t, ValidateCreateKnowledge(models.CreateKnowledgeRequest{Content: "notes"}))
	assert.Error(t, ValidateCreateKnowledge(models.CreateKnowledgeRequest{SourceThingID: "a"}))
}

// The fail-fast contract: a payload violating several rules reports exactly
// one violation, the first in check order.
func TestCompositeValidatorsFailFast(t *testing.T) {
	err := ValidateCreatePerson(models.CreatePersonRequest{})
	require.Error(t, err)
	e, ok := errors.As(err)
	require.True(t, ok)
	assert.Contains(t, e.Message, "name is required")
	assert.NotContains(t, e.Message, "email")
	assert.NotContains(t, e.Message, "role")
}
