package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the authenticated
// user's role is in the allowed set. Roles correspond to the users.role
// column (user, manager, admin). It assumes Authenticate already ran and
// stored the session snapshot; a missing or unknown role yields 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    // Build a set of allowed roles for constant-time lookups.
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            snap, ok := CurrentUser(c)
            if !ok || !allowed[snap.Role] {
                return c.JSON(http.StatusForbidden, map[string]any{
                    "success": false,
                    "message": "You are not allowed to access this resource",
                })
            }
            return next(c)
        }
    }
}
