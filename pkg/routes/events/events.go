// Package events exposes the event dimension over HTTP. Events are
// append-only: list, timeline and record, nothing else.
package events

import (
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/provider"
)

// Handler serves event routes.
type Handler struct {
	provider provider.Provider
	logger   ectologger.Logger
}

// NewHandler creates an event handler.
func NewHandler(p provider.Provider, logger ectologger.Logger) *Handler {
	return &Handler{provider: p, logger: logger}
}

// RegisterRoutes registers event routes.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListEvents)
	g.GET("/timeline", h.Timeline)
	g.POST("", h.RecordEvent)
}

func bindEventFilter(c echo.Context) (models.EventFilter, error) {
	var filter models.EventFilter
	filter.Type = c.QueryParam("type")
	filter.ActorID = c.QueryParam("actor_id")
	filter.TargetID = c.QueryParam("target_id")

	if raw := c.QueryParam("start_time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.NewValidation("start_time", "must be RFC 3339")
		}
		filter.StartTime = &t
	}
	if raw := c.QueryParam("end_time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.NewValidation("end_time", "must be RFC 3339")
		}
		filter.EndTime = &t
	}

	if err := c.Bind(&filter.Page); err != nil {
		return filter, errors.NewValidation("query", "invalid query parameters")
	}
	return filter, nil
}

// ListEvents lists events in the caller's tenant.
func (h *Handler) ListEvents(c echo.Context) error {
	filter, err := bindEventFilter(c)
	if err != nil {
		return err
	}

	result, err := h.provider.ListEvents(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(result))
}

// Timeline is the event list ordered by timestamp, newest first. An actor_id
// or target_id narrows it to one record's history.
func (h *Handler) Timeline(c echo.Context) error {
	filter, err := bindEventFilter(c)
	if err != nil {
		return err
	}
	filter.Sort = "timestamp"
	filter.Order = "desc"

	result, err := h.provider.ListEvents(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(result))
}

// RecordEvent appends an event.
func (h *Handler) RecordEvent(c echo.Context) error {
	var req models.RecordEventRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	event, err := h.provider.RecordEvent(c.Request().Context(), req)
	if err != nil {
		return err
	}
	metrics.EventsRecordedTotal.WithLabelValues(event.Type).Inc()
	return c.JSON(http.StatusCreated, models.OK(event))
}
