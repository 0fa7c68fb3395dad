package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smarthostel/backend/internal/apperr"
	"github.com/smarthostel/backend/internal/middleware"
	"github.com/smarthostel/backend/internal/service"
	"github.com/smarthostel/backend/internal/utils"
)

// AuthOperations is the slice of the service layer the auth endpoints
// consume. *service.AuthService implements it.
type AuthOperations interface {
	Register(ctx context.Context, in service.RegisterInput) (service.RegisterResult, error)
	Activate(ctx context.Context, token, code string) error
	Login(ctx context.Context, email, password string) (service.SessionResult, error)
	SocialAuth(ctx context.Context, name, email, avatarURL string) (service.SessionResult, error)
	Logout(ctx context.Context, userID uint64) error
	Refresh(ctx context.Context, refreshToken string) (service.SessionResult, error)
}

// AuthHandler adapts the auth operations to HTTP: DTO binding, the cookie
// contract, and the uniform response envelope. Domain errors pass through
// to the central error handler untouched.
type AuthHandler struct {
	Auth AuthOperations
}

func NewAuthHandler(auth AuthOperations) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type registrationReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}
type activationReq struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type socialAuthReq struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// Registration stores a pending identity and hands the activation token to
// the client; the paired code arrives by mail.
func (h *AuthHandler) Registration(c echo.Context) error {
	var req registrationReq
	if err := c.Bind(&req); err != nil {
		return apperr.ErrInvalidRequest
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	res, err := h.Auth.Register(ctx, service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		AvatarURL: req.Avatar,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":         true,
		"message":         fmt.Sprintf("Please check %s to activate your account", res.Email),
		"activationToken": res.ActivationToken,
	})
}

// ActivateUser consumes the activation token and code pair.
func (h *AuthHandler) ActivateUser(c echo.Context) error {
	var req activationReq
	if err := c.Bind(&req); err != nil {
		return apperr.ErrInvalidRequest
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	if err := h.Auth.Activate(ctx, req.ActivationToken, req.ActivationCode); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Account activated successfully",
	})
}

// Login exchanges credentials for a session and sets both token cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperr.ErrInvalidRequest
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	setSessionCookies(c, res)
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"user":        res.User,
		"accessToken": res.Access.Token,
	})
}

// SocialAuth signs a provider-verified user in, creating the identity on
// first contact.
func (h *AuthHandler) SocialAuth(c echo.Context) error {
	var req socialAuthReq
	if err := c.Bind(&req); err != nil {
		return apperr.ErrInvalidRequest
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	res, err := h.Auth.SocialAuth(ctx, req.Name, req.Email, req.Avatar)
	if err != nil {
		return err
	}
	setSessionCookies(c, res)
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"user":        res.User,
		"accessToken": res.Access.Token,
	})
}

// Logout clears both cookies and drops the session record. Runs behind
// Authenticate, so a user id is always present.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, middleware.CurrentUserID(c)); err != nil {
		return err
	}
	clearSessionCookies(c)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

// RefreshToken rotates the token pair using the refresh_token cookie.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	raw := ""
	if ck, err := c.Cookie("refresh_token"); err == nil {
		raw = ck.Value
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	res, err := h.Auth.Refresh(ctx, raw)
	if err != nil {
		return err
	}
	setSessionCookies(c, res)
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"status":      "Success",
		"accessToken": res.Access.Token,
	})
}

// opCtx bounds the duration of the store calls behind each operation.
func opCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// setSessionCookies writes the access/refresh pair as httpOnly cookies
// expiring together with the tokens they carry.
func setSessionCookies(c echo.Context, res service.SessionResult) {
	c.SetCookie(sessionCookie("access_token", res.Access))
	c.SetCookie(sessionCookie("refresh_token", res.Refresh))
}

func sessionCookie(name string, tok utils.SignedToken) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    tok.Token,
		Expires:  tok.Exp,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// clearSessionCookies expires both cookies immediately.
func clearSessionCookies(c echo.Context) {
	for _, name := range []string{"access_token", "refresh_token"} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
