// Package things exposes the thing dimension over HTTP.
package things

import (
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/provider"
)

// Handler serves thing routes.
type Handler struct {
	provider provider.Provider
	logger   ectologger.Logger
}

// NewHandler creates a thing handler.
func NewHandler(p provider.Provider, logger ectologger.Logger) *Handler {
	return &Handler{provider: p, logger: logger}
}

// RegisterRoutes registers thing routes.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListThings)
	g.POST("", h.CreateThing)
	g.GET("/:id", h.GetThing)
	g.PATCH("/:id", h.UpdateThing)
	g.DELETE("/:id", h.DeleteThing)
}

// ListThings lists things in the caller's tenant.
func (h *Handler) ListThings(c echo.Context) error {
	var filter models.ThingFilter
	if err := c.Bind(&filter); err != nil {
		return errors.NewValidation("query", "invalid query parameters")
	}

	result, err := h.provider.ListThings(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(result))
}

// GetThing gets a thing by id.
func (h *Handler) GetThing(c echo.Context) error {
	thing, err := h.provider.GetThing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(thing))
}

// CreateThing creates a thing.
func (h *Handler) CreateThing(c echo.Context) error {
	var req models.CreateThingRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	thing, err := h.provider.CreateThing(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.OK(thing))
}

// UpdateThing patches a thing.
func (h *Handler) UpdateThing(c echo.Context) error {
	var req models.UpdateThingRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	thing, err := h.provider.UpdateThing(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(thing))
}

// DeleteThing archives a thing.
func (h *Handler) DeleteThing(c echo.Context) error {
	if err := h.provider.DeleteThing(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(nil))
}
