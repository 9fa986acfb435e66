package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/provider"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeProvider struct {
	provider.Provider

	listEvents  func(ctx context.Context, filter models.EventFilter) (*models.List[models.Event], error)
	recordEvent func(ctx context.Context, req models.RecordEventRequest) (*models.Event, error)
}

func (f *fakeProvider) ListEvents(ctx context.Context, filter models.EventFilter) (*models.List[models.Event], error) {
	return f.listEvents(ctx, filter)
}

func (f *fakeProvider) RecordEvent(ctx context.Context, req models.RecordEventRequest) (*models.Event, error) {
	return f.recordEvent(ctx, req)
}

func newTestServer(p provider.Provider) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(testLogger())
	NewHandler(p, testLogger()).RegisterRoutes(e.Group("/events"))
	return e
}

func TestListEventsBindsTimeWindow(t *testing.T) {
	var captured models.EventFilter
	e := newTestServer(&fakeProvider{
		listEvents: func(ctx context.Context, filter models.EventFilter) (*models.List[models.Event], error) {
			captured = filter
			return &models.List[models.Event]{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet,
		"/events?type=lesson_completed&actor_id=p-1&start_time=2026-08-01T00:00:00Z&end_time=2026-08-31T00:00:00Z&limit=5", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "lesson_completed", captured.Type)
	assert.Equal(t, "p-1", captured.ActorID)
	assert.Equal(t, 5, captured.Limit)
	require.NotNil(t, captured.StartTime)
	require.NotNil(t, captured.EndTime)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), captured.StartTime.UTC())
}

func TestListEventsRejectsBadTimestamp(t *testing.T) {
	e := newTestServer(&fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/events?start_time=yesterday", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestTimelineForcesTimestampOrder(t *testing.T) {
	var captured models.EventFilter
	e := newTestServer(&fakeProvider{
		listEvents: func(ctx context.Context, filter models.EventFilter) (*models.List[models.Event], error) {
			captured = filter
			return &models.List[models.Event]{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/events/timeline?target_id=t-1&sort=type&order=asc", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "t-1", captured.TargetID)
	assert.Equal(t, "timestamp", captured.Sort)
	assert.Equal(t, "desc", captured.Order)
}

func TestRecordEvent(t *testing.T) {
	e := newTestServer(&fakeProvider{
		recordEvent: func(ctx context.Context, req models.RecordEventRequest) (*models.Event, error) {
			return &models.Event{ID: "e-1", Type: req.Type, ActorID: req.ActorID}, nil
		},
	})

	body := `{"type":"lesson_completed","actor_id":"p-1","metadata":{"lesson":"l-1"}}`
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}
