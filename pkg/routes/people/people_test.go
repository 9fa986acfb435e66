package people

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/provider"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeProvider struct {
	provider.Provider

	getPerson     func(ctx context.Context, id string) (*models.Person, error)
	currentPerson func(ctx context.Context) (*models.Person, error)
	updatePerson  func(ctx context.Context, id string, req models.UpdatePersonRequest) (*models.Person, error)
}

func (f *fakeProvider) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	return f.getPerson(ctx, id)
}

func (f *fakeProvider) CurrentPerson(ctx context.Context) (*models.Person, error) {
	return f.currentPerson(ctx)
}

func (f *fakeProvider) UpdatePerson(ctx context.Context, id string, req models.UpdatePersonRequest) (*models.Person, error) {
	return f.updatePerson(ctx, id, req)
}

func newTestServer(p provider.Provider) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(testLogger())
	NewHandler(p, testLogger()).RegisterRoutes(e.Group("/people"))
	return e
}

func TestMeRouteDoesNotShadowID(t *testing.T) {
	var currentCalled, getID string
	e := newTestServer(&fakeProvider{
		currentPerson: func(ctx context.Context) (*models.Person, error) {
			currentCalled = "yes"
			return &models.Person{ID: "p-me"}, nil
		},
		getPerson: func(ctx context.Context, id string) (*models.Person, error) {
			getID = id
			return &models.Person{ID: id}, nil
		},
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/people/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "yes", currentCalled)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/people/p-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-1", getID)
}

func TestUpdateRolePatchesRoleOnly(t *testing.T) {
	var captured models.UpdatePersonRequest
	e := newTestServer(&fakeProvider{
		updatePerson: func(ctx context.Context, id string, req models.UpdatePersonRequest) (*models.Person, error) {
			captured = req
			return &models.Person{ID: id, Role: *req.Role}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/people/p-1/role", strings.NewReader(`{"role":"org_user"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, captured.Role)
	assert.Equal(t, "org_user", *captured.Role)
	assert.Nil(t, captured.Name)
	assert.Nil(t, captured.Email)
}

func TestUpdateRoleRequiresRole(t *testing.T) {
	e := newTestServer(&fakeProvider{})

	req := httptest.NewRequest(http.MethodPatch, "/people/p-1/role", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForbiddenRoleChangeEnvelope(t *testing.T) {
	e := newTestServer(&fakeProvider{
		updatePerson: func(ctx context.Context, id string, req models.UpdatePersonRequest) (*models.Person, error) {
			return nil, errors.NewForbidden("update", "person", "customer")
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/people/p-1/role", strings.NewReader(`{"role":"org_owner"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
}
