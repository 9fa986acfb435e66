// Package connections exposes the connection dimension over HTTP.
package connections

import (
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/provider"
)

// Handler serves connection routes.
type Handler struct {
	provider provider.Provider
	logger   ectologger.Logger
}

// NewHandler creates a connection handler.
func NewHandler(p provider.Provider, logger ectologger.Logger) *Handler {
	return &Handler{provider: p, logger: logger}
}

// RegisterRoutes registers connection routes.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListConnections)
	g.POST("", h.CreateConnection)
	g.POST("/batch", h.BatchCreateConnections)
	g.GET("/:id", h.GetConnection)
	g.DELETE("/:id", h.DeleteConnection)
}

// ListConnections lists connections in the caller's tenant.
func (h *Handler) ListConnections(c echo.Context) error {
	var filter models.ConnectionFilter
	if err := c.Bind(&filter); err != nil {
		return errors.NewValidation("query", "invalid query parameters")
	}

	result, err := h.provider.ListConnections(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(result))
}

// GetConnection gets a connection by id.
func (h *Handler) GetConnection(c echo.Context) error {
	connection, err := h.provider.GetConnection(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(connection))
}

// CreateConnection creates a connection.
func (h *Handler) CreateConnection(c echo.Context) error {
	var req models.CreateConnectionRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	connection, err := h.provider.CreateConnection(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.OK(connection))
}

// BatchCreateConnections creates several connections atomically.
func (h *Handler) BatchCreateConnections(c echo.Context) error {
	var req models.BatchCreateConnectionsRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	connections, err := h.provider.BatchCreateConnections(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.OK(connections))
}

// DeleteConnection deletes a connection.
func (h *Handler) DeleteConnection(c echo.Context) error {
	if err := h.provider.DeleteConnection(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(nil))
}
