package httpserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/emberwatch/emberwatch/internal/core/ports"
	"github.com/emberwatch/emberwatch/internal/infrastructure/httpserver/helpers"
	"github.com/emberwatch/emberwatch/internal/infrastructure/httpserver/middleware"
	tmocks "github.com/emberwatch/emberwatch/test/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware_MissingTokenReturns401(t *testing.T) {
	e := echo.New()
	m := middleware.NewAuthMiddleware(testJWTSecret, logrus.New())
	handler := m.RequireToken()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := handler(c)
	require.Error(t, err)
	htErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, htErr.Code)
}

func TestAuthMiddleware_InvalidTokenReturns401(t *testing.T) {
	e := echo.New()
	m := middleware.NewAuthMiddleware(testJWTSecret, logrus.New())
	handler := m.RequireToken()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := handler(c)
	require.Error(t, err)
	htErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, htErr.Code)
}

func TestAuthMiddleware_WrongSecretReturns401(t *testing.T) {
	e := echo.New()
	m := middleware.NewAuthMiddleware("a-different-secret", logrus.New())
	handler := m.RequireToken()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New(), uuid.New()))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := handler(c)
	require.Error(t, err)
	htErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, htErr.Code)
}

func TestAuthMiddleware_ValidTokenSetsCallerContext(t *testing.T) {
	e := echo.New()
	userID := uuid.New()
	orgID := uuid.New()
	m := middleware.NewAuthMiddleware(testJWTSecret, logrus.New())
	handler := m.RequireToken()(func(c echo.Context) error {
		gotUser, ok := helpers.GetUserIDRaw(c)
		require.True(t, ok)
		require.Equal(t, userID, gotUser)
		gotOrg, ok := helpers.GetOrgIDRaw(c)
		require.True(t, ok)
		require.Equal(t, orgID, gotOrg)
		return c.NoContent(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID, orgID))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_SetsHeadersAndPasses(t *testing.T) {
	e := echo.New()
	reset := time.Now().Add(time.Second)
	limiter := &tmocks.RateLimiterMock{AllowFn: func(ctx context.Context, d ports.RateLimitDescriptor) (bool, int, int, time.Time, error) {
		return true, 3, 5, reset, nil
	}}
	m := middleware.NewRateLimitMiddleware(limiter, logrus.New())
	handler := m.Handler()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, handler(c))
	require.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "3", rec.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimitMiddleware_BlockedReturns429(t *testing.T) {
	e := echo.New()
	limiter := &tmocks.RateLimiterMock{AllowFn: func(ctx context.Context, d ports.RateLimitDescriptor) (bool, int, int, time.Time, error) {
		return false, 0, 5, time.Now().Add(time.Second), nil
	}}
	m := middleware.NewRateLimitMiddleware(limiter, logrus.New())
	handler := m.Handler()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := handler(c)
	require.Error(t, err)
	htErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusTooManyRequests, htErr.Code)
}

func TestRateLimitMiddleware_FailsOpenOnLimiterError(t *testing.T) {
	e := echo.New()
	limiter := &tmocks.RateLimiterMock{AllowFn: func(ctx context.Context, d ports.RateLimitDescriptor) (bool, int, int, time.Time, error) {
		return true, 5, 5, time.Now().Add(time.Second), errors.New("redis down")
	}}
	m := middleware.NewRateLimitMiddleware(limiter, logrus.New())
	handler := m.Handler()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_UsesCallerIdentityWhenPresent(t *testing.T) {
	e := echo.New()
	userID := uuid.New()
	orgID := uuid.New()
	var got ports.RateLimitDescriptor
	limiter := &tmocks.RateLimiterMock{AllowFn: func(ctx context.Context, d ports.RateLimitDescriptor) (bool, int, int, time.Time, error) {
		got = d
		return true, 4, 5, time.Now().Add(time.Second), nil
	}}
	m := middleware.NewRateLimitMiddleware(limiter, logrus.New())
	handler := m.Handler()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	helpers.SetUserID(c, userID)
	helpers.SetOrgID(c, orgID)
	require.NoError(t, handler(c))
	require.Equal(t, userID.String(), got.UserID)
	require.Equal(t, orgID.String(), got.OrgID)
	require.NotEmpty(t, got.IP)
}
