package middleware

import (
	"github.com/labstack/echo/v4"

	ferncontext "github.com/Ramsey-B/fern/pkg/context"
)

// TestAuth extracts tenant_id and user_id from headers when auth is disabled.
// This allows exercising the API without a real OIDC setup.
// Headers:
//   - X-Tenant-ID: The caller's group ID
//   - X-User-ID: The caller's person ID
//
// WARNING: Only use this when AUTH_ENABLED=false. Do not enable in production.
func TestAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			tenantID := c.Request().Header.Get(HeaderTenantID)
			if tenantID != "" {
				ctx = ferncontext.SetTenantID(ctx, tenantID)
			}

			userID := c.Request().Header.Get(HeaderUserID)
			if userID != "" {
				ctx = ferncontext.SetUserID(ctx, userID)
			}

			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
