package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/auth"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/config"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/dto"
)

const testShop = "acme.myshopify.com"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars!",
		Issuer:     "igfeed-test",
		Expiration: time.Hour,
	})
}

type failingRevoker struct{}

func (failingRevoker) RevokeShop(context.Context, string, time.Duration) error { return nil }

func (failingRevoker) IsRevoked(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("redis down")
}

func newAuthRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), AdminAuth(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetShop(c))
	})
	return router
}

func serveWithToken(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, resp.Error.RequestID)
	return resp.Error.Code
}

func TestAdminAuth_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	token, _, err := svc.GenerateToken(testShop)
	require.NoError(t, err)

	w := serveWithToken(newAuthRouter(JWTMiddlewareConfig{Validator: svc}), token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testShop, w.Body.String())
}

func TestAdminAuth_Rejections(t *testing.T) {
	svc := newTestJWTService()
	other := auth.NewJWTService(config.JWTConfig{
		Secret:     "another-secret-key-at-least-32-chars",
		Issuer:     "igfeed-test",
		Expiration: time.Hour,
	})
	foreign, _, err := other.GenerateToken(testShop)
	require.NoError(t, err)

	expiredSvc := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars!",
		Issuer:     "igfeed-test",
		Expiration: -time.Minute,
	})
	expired, _, err := expiredSvc.GenerateToken(testShop)
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		wantCode string
	}{
		{name: "missing header", token: "", wantCode: dto.ErrCodeUnauthorized},
		{name: "garbage", token: "not-a-jwt", wantCode: dto.ErrCodeTokenInvalid},
		{name: "wrong secret", token: foreign, wantCode: dto.ErrCodeTokenInvalid},
		{name: "expired", token: expired, wantCode: dto.ErrCodeTokenExpired},
	}

	router := newAuthRouter(JWTMiddlewareConfig{Validator: svc})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWithToken(router, tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestAdminAuth_RevokedShop(t *testing.T) {
	svc := newTestJWTService()
	token, _, err := svc.GenerateToken(testShop)
	require.NoError(t, err)

	revoker := auth.NewInMemoryTokenRevoker()
	require.NoError(t, revoker.RevokeShop(context.Background(), testShop, time.Hour))

	w := serveWithToken(newAuthRouter(JWTMiddlewareConfig{Validator: svc, Revoker: revoker}), token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, w))
}

func TestAdminAuth_RevokerFailureFailsOpen(t *testing.T) {
	svc := newTestJWTService()
	token, _, err := svc.GenerateToken(testShop)
	require.NoError(t, err)

	w := serveWithToken(newAuthRouter(JWTMiddlewareConfig{Validator: svc, Revoker: failingRevoker{}}), token)

	assert.Equal(t, http.StatusOK, w.Code)
}
