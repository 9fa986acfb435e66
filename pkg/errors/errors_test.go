package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeDispatch(t *testing.T) {
	err := NewNotFound("thing", "abc-123")

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Contains(t, err.Message, "abc-123")
	assert.Equal(t, "thing", err.Meta["entity_type"])
	assert.Equal(t, "abc-123", err.Meta["id"])
}

func TestWrappedErrorsKeepCode(t *testing.T) {
	inner := NewDuplicate("email", "a@b.co")
	wrapped := fmt.Errorf("creating person: %w", inner)

	assert.True(t, IsDuplicate(wrapped))

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeDuplicate, e.Code)
}

func TestUntaggedErrorIsInternal(t *testing.T) {
	err := fmt.Errorf("connection refused")
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.False(t, IsProvider(err))
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeDuplicate, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeNotImplemented, http.StatusNotImplemented},
		{CodeProvider, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.code))
		})
	}
}

func TestFromHTTPStatus(t *testing.T) {
	assert.Equal(t, CodeValidation, FromHTTPStatus(400, "bad").Code)
	assert.Equal(t, CodeValidation, FromHTTPStatus(422, "bad").Code)
	assert.Equal(t, CodeUnauthorized, FromHTTPStatus(401, "no").Code)
	assert.Equal(t, CodeForbidden, FromHTTPStatus(403, "no").Code)
	assert.Equal(t, CodeNotFound, FromHTTPStatus(404, "gone").Code)
	assert.Equal(t, CodeConflict, FromHTTPStatus(409, "dup").Code)
	assert.Equal(t, CodeRateLimited, FromHTTPStatus(429, "slow down").Code)
	assert.Equal(t, CodeProvider, FromHTTPStatus(500, "boom").Code)
	assert.Equal(t, CodeProvider, FromHTTPStatus(503, "down").Code)
	assert.Equal(t, CodeProvider, FromHTTPStatus(418, "teapot").Code)
}

func TestFormatResponse(t *testing.T) {
	resp := FormatResponse(NewForbidden("delete", "group", "customer"))
	assert.Equal(t, "FORBIDDEN", resp.Type)
	assert.Equal(t, "delete", resp.Meta["action"])

	resp = FormatResponse(fmt.Errorf("pq: terrible things"))
	assert.Equal(t, "INTERNAL_ERROR", resp.Type)
	assert.Equal(t, "internal error", resp.Error, "backend details must not leak")
}

func TestVocabularyMessageEnumeratesLegalValues(t *testing.T) {
	err := NewInvalidVocabulary("role", "admin", []string{"customer", "org_owner", "org_user", "platform_owner"})
	assert.Contains(t, err.Message, "platform_owner")
	assert.Contains(t, err.Message, "customer")
	assert.Equal(t, "role", err.Meta["field"])
}

func TestToHTTPError(t *testing.T) {
	he := NewNotImplemented("things.create").ToHTTPError()
	assert.Equal(t, http.StatusNotImplemented, httperror.GetStatusCode(he))
	assert.Equal(t, "NOT_IMPLEMENTED", he.Meta["code"])
}
