// Package validation holds the pure domain validators. All validators are
// synchronous and fail fast: the first violation wins and is returned as a
// VALIDATION_ERROR from pkg/errors. Request-shape binding at the HTTP edge is
// a separate concern; these functions check domain semantics.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/ontology"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// MaxNameLength bounds display names across every dimension.
const MaxNameLength = 255

// Required fails when value is empty or whitespace only.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidation(field, fmt.Sprintf("%s is required", field))
	}
	return nil
}

// Length fails when the rune count of value is outside [min, max].
func Length(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return errors.NewValidation(field, fmt.Sprintf("%s must be between %d and %d characters, got %d", field, min, max, n))
	}
	return nil
}

// Email fails when value is not a syntactically valid email address.
func Email(field, value string) error {
	if err := validate.Var(value, "email"); err != nil {
		return errors.NewValidation(field, fmt.Sprintf("%s must be a valid email address", field))
	}
	return nil
}

// ThingType fails when value is outside the thing vocabulary. The message
// enumerates the legal set so callers never have to guess.
func ThingType(value string) error {
	if !ontology.IsValidThingType(value) {
		return errors.NewInvalidVocabulary("type", value, ontology.ThingTypes())
	}
	return nil
}

// PersonType fails when value is not one of the reserved person thing types.
func PersonType(value string) error {
	if !ontology.IsPersonType(value) {
		return errors.NewInvalidVocabulary("type", value, ontology.PersonTypes())
	}
	return nil
}

// ConnectionType fails when value is outside the connection vocabulary.
func ConnectionType(value string) error {
	if !ontology.IsValidConnectionType(value) {
		return errors.NewInvalidVocabulary("type", value, ontology.ConnectionTypes())
	}
	return nil
}

// EventType fails when value is outside the event vocabulary.
func EventType(value string) error {
	if !ontology.IsValidEventType(value) {
		return errors.NewInvalidVocabulary("type", value, ontology.EventTypes())
	}
	return nil
}

// GroupType fails when value is outside the group vocabulary.
func GroupType(value string) error {
	if !ontology.IsValidGroupType(value) {
		return errors.NewInvalidVocabulary("type", value, ontology.GroupTypes())
	}
	return nil
}

// Role fails when value is outside the role vocabulary.
func Role(value string) error {
	if !ontology.IsValidRole(value) {
		return errors.NewInvalidVocabulary("role", value, ontology.Roles())
	}
	return nil
}

// Status fails when value is outside the thing status vocabulary.
func Status(value string) error {
	if !ontology.IsValidStatus(value) {
		return errors.NewInvalidVocabulary("status", value, ontology.Statuses())
	}
	return nil
}

// StatusTransition fails when the status machine does not permit moving from
// one status to the other. Setting the current status again is allowed.
func StatusTransition(from, to string) error {
	if err := Status(to); err != nil {
		return err
	}
	if !ontology.CanTransitionStatus(from, to) {
		return errors.NewValidation("status", fmt.Sprintf("cannot transition status from %q to %q", from, to))
	}
	return nil
}

// Struct runs go-playground tag validation over a request struct, mapping the
// first field error into the taxonomy.
func Struct(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return errors.NewValidation(fe.Field(), fmt.Sprintf("failed %q validation on field %s", fe.Tag(), fe.Field()))
	}
	return errors.NewValidation("request", err.Error())
}
