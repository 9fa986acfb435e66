package things

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

	listThings  func(ctx context.Context, filter models.ThingFilter) (*models.List[models.Thing], error)
	getThing    func(ctx context.Context, id string) (*models.Thing, error)
	createThing func(ctx context.Context, req models.CreateThingRequest) (*models.Thing, error)
	deleteThing func(ctx context.Context, id string) error
}

func (f *fakeProvider) ListThings(ctx context.Context, filter models.ThingFilter) (*models.List[models.Thing], error) {
	return f.listThings(ctx, filter)
}

func (f *fakeProvider) GetThing(ctx context.Context, id string) (*models.Thing, error) {
	return f.getThing(ctx, id)
}

func (f *fakeProvider) CreateThing(ctx context.Context, req models.CreateThingRequest) (*models.Thing, error) {
	return f.createThing(ctx, req)
}

func (f *fakeProvider) DeleteThing(ctx context.Context, id string) error {
	return f.deleteThing(ctx, id)
}

func newTestServer(p provider.Provider) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(testLogger())
	NewHandler(p, testLogger()).RegisterRoutes(e.Group("/things"))
	return e
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.Response {
	t.Helper()
	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestListThingsBindsFilter(t *testing.T) {
	var captured models.ThingFilter
	e := newTestServer(&fakeProvider{
		listThings: func(ctx context.Context, filter models.ThingFilter) (*models.List[models.Thing], error) {
			captured = filter
			return &models.List[models.Thing]{Items: []models.Thing{{ID: "t-1"}}, TotalCount: 1}, nil
		},
	})

	rec := doRequest(e, http.MethodGet, "/things?type=course&status=published&limit=10&offset=20", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "course", captured.Type)
	assert.Equal(t, "published", captured.Status)
	assert.Equal(t, 10, captured.Limit)
	assert.Equal(t, 20, captured.Offset)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestGetThingNotFoundEnvelope(t *testing.T) {
	e := newTestServer(&fakeProvider{
		getThing: func(ctx context.Context, id string) (*models.Thing, error) {
			return nil, errors.NewNotFound("thing", id)
		},
	})

	rec := doRequest(e, http.MethodGet, "/things/t-404", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "t-404")
}

func TestCreateThingReturnsCreated(t *testing.T) {
	e := newTestServer(&fakeProvider{
		createThing: func(ctx context.Context, req models.CreateThingRequest) (*models.Thing, error) {
			return &models.Thing{ID: "t-1", Type: req.Type, Name: req.Name}, nil
		},
	})

	rec := doRequest(e, http.MethodPost, "/things", `{"type":"course","name":"Gardening"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var thing models.Thing
	require.NoError(t, json.Unmarshal(data, &thing))
	assert.Equal(t, "t-1", thing.ID)
	assert.Equal(t, "Gardening", thing.Name)
}

func TestCreateThingValidationEnvelope(t *testing.T) {
	e := newTestServer(&fakeProvider{
		createThing: func(ctx context.Context, req models.CreateThingRequest) (*models.Thing, error) {
			return nil, errors.NewValidation("name", "name is required")
		},
	})

	rec := doRequest(e, http.MethodPost, "/things", `{"type":"course"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestDeleteThing(t *testing.T) {
	var deleted string
	e := newTestServer(&fakeProvider{
		deleteThing: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	})

	rec := doRequest(e, http.MethodDelete, "/things/t-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t-1", deleted)
}
