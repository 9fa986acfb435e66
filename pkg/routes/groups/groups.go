// Package groups exposes the group dimension over HTTP.
package groups

import (
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/provider"
)

// Handler serves group routes.
type Handler struct {
	provider provider.Provider
	logger   ectologger.Logger
}

// NewHandler creates a group handler.
func NewHandler(p provider.Provider, logger ectologger.Logger) *Handler {
	return &Handler{provider: p, logger: logger}
}

// RegisterRoutes registers group routes.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListGroups)
	g.POST("", h.CreateGroup)
	g.GET("/:id", h.GetGroup)
	g.PATCH("/:id", h.UpdateGroup)
	g.DELETE("/:id", h.DeleteGroup)
}

// ListGroups lists groups visible to the caller's tenant.
func (h *Handler) ListGroups(c echo.Context) error {
	ctx := c.Request().Context()

	var filter models.GroupFilter
	if err := c.Bind(&filter); err != nil {
		return errors.NewValidation("query", "invalid query parameters")
	}

	result, err := h.provider.ListGroups(ctx, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(result))
}

// GetGroup gets a group by id.
func (h *Handler) GetGroup(c echo.Context) error {
	group, err := h.provider.GetGroup(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(group))
}

// CreateGroup creates a group.
func (h *Handler) CreateGroup(c echo.Context) error {
	var req models.CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	group, err := h.provider.CreateGroup(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.OK(group))
}

// UpdateGroup patches a group.
func (h *Handler) UpdateGroup(c echo.Context) error {
	var req models.UpdateGroupRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	group, err := h.provider.UpdateGroup(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(group))
}

// DeleteGroup archives a group.
func (h *Handler) DeleteGroup(c echo.Context) error {
	if err := h.provider.DeleteGroup(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(nil))
}
