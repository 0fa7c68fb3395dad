package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/smarthostel/backend/internal/apperr"
    "github.com/smarthostel/backend/internal/middleware"
)

// Me returns the authenticated user's session snapshot. The snapshot was
// loaded from the session cache by the Authenticate middleware, so no
// database round trip happens here.
func Me(c echo.Context) error {
    snap, ok := middleware.CurrentUser(c)
    if !ok {
        return apperr.ErrUnauthorized
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success": true,
        "user":    snap,
    })
}
