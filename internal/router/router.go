package router // package router defines how HTTP routes are registered for the API

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/smarthostel/backend/internal/apperr"
	"github.com/smarthostel/backend/internal/handler"
	"github.com/smarthostel/backend/internal/middleware"
	"github.com/smarthostel/backend/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this to verify the service
	// is up.
	e.GET("/healthz", handler.Health)
	e.GET("/api", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "API working"})
	})
}

// RegisterAuth wires all account and session endpoints.  The limiter runs
// only on the anonymous credential-facing routes; endpoints behind a
// session get the Authenticate middleware instead, which validates the
// access token and loads the live session record.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, accessSecret string, sessions middleware.SessionReader, limiter echo.MiddlewareFunc) {
	// Registration and login are the brute-force targets.
	e.POST("/registration", a.Registration, limiter)
	e.POST("/login", a.Login, limiter)

	// Activation is bounded by the 5-minute token window; social-auth and
	// refresh carry their own credentials.
	e.POST("/activate-user", a.ActivateUser)
	e.POST("/social-auth", a.SocialAuth)
	e.POST("/refresh", a.RefreshToken)

	// Authenticated surface.  All roles may hit these; manager/admin-only
	// features live outside this service's scope.
	auth := e.Group("")
	auth.Use(middleware.Authenticate(accessSecret, sessions))
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleManager, model.RoleAdmin))
	auth.POST("/logout", a.Logout)
	auth.GET("/me", handler.Me)
}

// HTTPErrorHandler converts every error into the uniform
// {success:false, message} envelope.  Domain errors carry their own status;
// unmatched routes produce the "Route <path> not found" message; anything
// unrecognized is logged and reported as a 500 without leaking detail.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if ae := apperr.From(err); ae != nil {
		if ae.Status >= http.StatusInternalServerError {
			c.Logger().Error(err)
		}
		_ = c.JSON(ae.Status, echo.Map{"success": false, "message": ae.Message})
		return
	}
	if he, ok := err.(*echo.HTTPError); ok {
		if he.Code == http.StatusNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{
				"success": false,
				"message": fmt.Sprintf("Route %s not found", c.Request().URL.Path),
			})
			return
		}
		_ = c.JSON(he.Code, echo.Map{"success": false, "message": fmt.Sprint(he.Message)})
		return
	}
	c.Logger().Error(err)
	_ = c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Internal server error"})
}
