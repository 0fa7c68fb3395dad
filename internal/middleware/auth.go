package middleware // middleware provides shared request processing for handlers

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/smarthostel/backend/internal/apperr"
    "github.com/smarthostel/backend/internal/model"
    "github.com/smarthostel/backend/internal/session"
    "github.com/smarthostel/backend/internal/utils"
)

// SessionReader is the slice of the session store the auth middleware
// needs: lookups only.
type SessionReader interface {
    Get(ctx context.Context, userID uint64) (model.Snapshot, error)
}

// Context keys populated by Authenticate for downstream handlers.
const (
    CtxUserID = "user_id"
    CtxUser   = "user"
)

// Authenticate returns an Echo middleware that validates the access token
// and loads the caller's live session record into the request context.
// The token is read from the access_token cookie first, then from a
// Bearer Authorization header, so both browser and API clients work.
// A valid token whose session record is gone is rejected: logout and TTL
// expiry end access immediately regardless of token expiry.
func Authenticate(accessSecret string, sessions SessionReader) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := accessTokenFrom(c)
            if raw == "" {
                return apperr.ErrUnauthorized
            }
            uid, err := utils.ParseSessionToken(accessSecret, raw)
            if err != nil {
                return apperr.New(http.StatusUnauthorized, "Access token is invalid or expired")
            }
            snap, err := sessions.Get(c.Request().Context(), uid)
            if err != nil {
                if err == session.ErrNoSession || err == session.ErrCorrupt {
                    return apperr.ErrUnauthorized
                }
                return apperr.Infrastructure(err)
            }
            c.Set(CtxUserID, uid)
            c.Set(CtxUser, snap)
            return next(c)
        }
    }
}

// accessTokenFrom pulls the raw access token from the cookie or the
// Authorization header.
func accessTokenFrom(c echo.Context) string {
    if ck, err := c.Cookie("access_token"); err == nil && ck.Value != "" {
        return ck.Value
    }
    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimPrefix(auth, "Bearer ")
    }
    return ""
}

// CurrentUserID returns the authenticated user's id, or zero when the
// request did not pass through Authenticate.
func CurrentUserID(c echo.Context) uint64 {
    if v, ok := c.Get(CtxUserID).(uint64); ok {
        return v
    }
    return 0
}

// CurrentUser returns the session snapshot stored by Authenticate.
func CurrentUser(c echo.Context) (model.Snapshot, bool) {
    snap, ok := c.Get(CtxUser).(model.Snapshot)
    return snap, ok
}
