package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarthostel/backend/internal/apperr"
	"github.com/smarthostel/backend/internal/handler"
	"github.com/smarthostel/backend/internal/middleware"
	"github.com/smarthostel/backend/internal/model"
	"github.com/smarthostel/backend/internal/router"
	"github.com/smarthostel/backend/internal/service"
	"github.com/smarthostel/backend/internal/utils"
)

// fakeOps lets each test script the service layer per operation.
type fakeOps struct {
	register   func(service.RegisterInput) (service.RegisterResult, error)
	activate   func(token, code string) error
	login      func(email, password string) (service.SessionResult, error)
	socialAuth func(name, email, avatar string) (service.SessionResult, error)
	logout     func(userID uint64) error
	refresh    func(token string) (service.SessionResult, error)
}

func (f *fakeOps) Register(_ context.Context, in service.RegisterInput) (service.RegisterResult, error) {
	return f.register(in)
}
func (f *fakeOps) Activate(_ context.Context, token, code string) error {
	return f.activate(token, code)
}
func (f *fakeOps) Login(_ context.Context, email, password string) (service.SessionResult, error) {
	return f.login(email, password)
}
func (f *fakeOps) SocialAuth(_ context.Context, name, email, avatar string) (service.SessionResult, error) {
	return f.socialAuth(name, email, avatar)
}
func (f *fakeOps) Logout(_ context.Context, userID uint64) error {
	return f.logout(userID)
}
func (f *fakeOps) Refresh(_ context.Context, token string) (service.SessionResult, error) {
	return f.refresh(token)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = router.HTTPErrorHandler
	return e
}

func sessionResult(t *testing.T, userID uint64) service.SessionResult {
	t.Helper()
	access, err := utils.SignSessionToken("access-secret", userID, time.Hour)
	require.NoError(t, err)
	refresh, err := utils.SignSessionToken("refresh-secret", userID, 2*time.Hour)
	require.NoError(t, err)
	return service.SessionResult{
		User:    model.Snapshot{ID: userID, Name: "Ana", Email: "ana@x.com", Role: model.RoleUser, IsActive: true},
		Access:  access,
		Refresh: refresh,
	}
}

func doJSON(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegistrationResponse(t *testing.T) {
	ops := &fakeOps{
		register: func(in service.RegisterInput) (service.RegisterResult, error) {
			assert.Equal(t, "Ana", in.Name)
			return service.RegisterResult{Email: "ana@x.com", ActivationToken: "the-token"}, nil
		},
	}
	e := newEcho()
	e.POST("/registration", handler.NewAuthHandler(ops).Registration)

	rec := doJSON(e, http.MethodPost, "/registration",
		`{"name":"Ana","email":"Ana@x.com","phone":"1234567890","password":"secret1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Please check ana@x.com to activate your account", body["message"])
	assert.Equal(t, "the-token", body["activationToken"])
}

func TestRegistrationDuplicateEmailEnvelope(t *testing.T) {
	ops := &fakeOps{
		register: func(service.RegisterInput) (service.RegisterResult, error) {
			return service.RegisterResult{}, apperr.ErrDuplicateEmail
		},
	}
	e := newEcho()
	e.POST("/registration", handler.NewAuthHandler(ops).Registration)

	rec := doJSON(e, http.MethodPost, "/registration", `{"email":"ana@x.com"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Email already exists", body["message"])
}

func TestActivateUserResponse(t *testing.T) {
	ops := &fakeOps{
		activate: func(token, code string) error {
			assert.Equal(t, "tok", token)
			assert.Equal(t, "1234", code)
			return nil
		},
	}
	e := newEcho()
	e.POST("/activate-user", handler.NewAuthHandler(ops).ActivateUser)

	rec := doJSON(e, http.MethodPost, "/activate-user",
		`{"activation_token":"tok","activation_code":"1234"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Account activated successfully", body["message"])
}

func TestLoginSetsSessionCookies(t *testing.T) {
	res := sessionResult(t, 7)
	ops := &fakeOps{
		login: func(email, password string) (service.SessionResult, error) {
			return res, nil
		},
	}
	e := newEcho()
	e.POST("/login", handler.NewAuthHandler(ops).Login)

	rec := doJSON(e, http.MethodPost, "/login", `{"email":"ana@x.com","password":"secret1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, res.Access.Token, body["accessToken"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ana@x.com", user["email"])
	assert.NotContains(t, rec.Body.String(), "password")

	cookies := rec.Result().Cookies()
	byName := map[string]*http.Cookie{}
	for _, ck := range cookies {
		byName[ck.Name] = ck
	}
	require.Contains(t, byName, "access_token")
	require.Contains(t, byName, "refresh_token")
	assert.Equal(t, res.Access.Token, byName["access_token"].Value)
	assert.Equal(t, res.Refresh.Token, byName["refresh_token"].Value)
	assert.True(t, byName["access_token"].HttpOnly)
	assert.True(t, byName["refresh_token"].HttpOnly)
}

func TestLoginFailureEnvelope(t *testing.T) {
	ops := &fakeOps{
		login: func(string, string) (service.SessionResult, error) {
			return service.SessionResult{}, apperr.ErrInvalidCredentials
		},
	}
	e := newEcho()
	e.POST("/login", handler.NewAuthHandler(ops).Login)

	rec := doJSON(e, http.MethodPost, "/login", `{"email":"ana@x.com","password":"nope"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid email or password", body["message"])
	assert.Empty(t, rec.Result().Cookies())
}

func TestRefreshReadsCookieAndRotates(t *testing.T) {
	res := sessionResult(t, 9)
	var seen string
	ops := &fakeOps{
		refresh: func(token string) (service.SessionResult, error) {
			seen = token
			return res, nil
		},
	}
	e := newEcho()
	e.POST("/refresh", handler.NewAuthHandler(ops).RefreshToken)

	rec := doJSON(e, http.MethodPost, "/refresh", "",
		&http.Cookie{Name: "refresh_token", Value: "old-refresh"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "old-refresh", seen)
	body := decodeBody(t, rec)
	assert.Equal(t, "Success", body["status"])
	assert.Equal(t, res.Access.Token, body["accessToken"])

	// Both cookies are rewritten with the rotated pair.
	names := map[string]string{}
	for _, ck := range rec.Result().Cookies() {
		names[ck.Name] = ck.Value
	}
	assert.Equal(t, res.Access.Token, names["access_token"])
	assert.Equal(t, res.Refresh.Token, names["refresh_token"])
}

func TestRefreshWithoutCookie(t *testing.T) {
	ops := &fakeOps{
		refresh: func(token string) (service.SessionResult, error) {
			require.Empty(t, token)
			return service.SessionResult{}, apperr.ErrMissingToken
		},
	}
	e := newEcho()
	e.POST("/refresh", handler.NewAuthHandler(ops).RefreshToken)

	rec := doJSON(e, http.MethodPost, "/refresh", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Please login to access this resource", body["message"])
}

func TestLogoutClearsCookies(t *testing.T) {
	var loggedOut uint64
	ops := &fakeOps{
		logout: func(userID uint64) error {
			loggedOut = userID
			return nil
		},
	}
	e := newEcho()
	h := handler.NewAuthHandler(ops)
	// Stand in for the Authenticate middleware.
	e.POST("/logout", func(c echo.Context) error {
		c.Set(middleware.CtxUserID, uint64(7))
		return h.Logout(c)
	})

	rec := doJSON(e, http.MethodPost, "/logout", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), loggedOut)
	body := decodeBody(t, rec)
	assert.Equal(t, "Logged out successfully", body["message"])

	cleared := 0
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "access_token" || ck.Name == "refresh_token" {
			assert.Empty(t, ck.Value)
			assert.True(t, ck.MaxAge < 0 || ck.Expires.Before(time.Now()))
			cleared++
		}
	}
	assert.Equal(t, 2, cleared)
}

func TestUnmatchedRoute(t *testing.T) {
	e := newEcho()
	router.RegisterRoutes(e)

	rec := doJSON(e, http.MethodPost, "/no-such-route", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Route /no-such-route not found", body["message"])
}
