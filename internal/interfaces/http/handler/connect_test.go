package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	appintegration "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/dto"
)

func connectRoutes(h *ConnectHandler) func(*gin.Engine) {
	return func(r *gin.Engine) {
		r.GET("/auth/instagram/callback", h.Callback)
		admin := r.Group("/api/v1", withShop(testShop))
		admin.GET("/instagram/connect", h.Connect)
		admin.GET("/instagram/account", h.GetAccount)
		admin.DELETE("/instagram/account", h.Disconnect)
	}
}

func TestConnectHandler_Connect(t *testing.T) {
	connector := new(MockConnector)
	connector.On("AuthorizeURL", testShop).Return("https://provider.example/authorize?state=abc", nil)
	h := NewConnectHandler(connector)

	w := serve(connectRoutes(h), http.MethodGet, "/api/v1/instagram/connect", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeData[ConnectResponse](t, w)
	assert.Equal(t, "https://provider.example/authorize?state=abc", resp.AuthorizeURL)
	connector.AssertExpectations(t)
}

func TestConnectHandler_ConnectMissingConfig(t *testing.T) {
	connector := new(MockConnector)
	connector.On("AuthorizeURL", testShop).Return("", integration.ErrConfigMissing)
	h := NewConnectHandler(connector)

	w := serve(connectRoutes(h), http.MethodGet, "/api/v1/instagram/connect", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
}

func TestConnectHandler_Callback(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		code          string
		state         string
		providerError string
	}{
		{
			name:  "success",
			query: "?code=abc&state=signed",
			code:  "abc",
			state: "signed",
		},
		{
			name:          "provider error description wins",
			query:         "?state=signed&error=access_denied&error_description=User+denied",
			state:         "signed",
			providerError: "User denied",
		},
		{
			name:          "bare provider error",
			query:         "?state=signed&error=access_denied",
			state:         "signed",
			providerError: "access_denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connector := new(MockConnector)
			connector.On("HandleCallback", mock.Anything, tt.code, tt.state, tt.providerError).
				Return("https://admin.example/app?ig_connect=done")
			h := NewConnectHandler(connector)

			w := serve(connectRoutes(h), http.MethodGet, "/auth/instagram/callback"+tt.query, nil)

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "https://admin.example/app?ig_connect=done", w.Header().Get("Location"))
			connector.AssertExpectations(t)
		})
	}
}

func TestConnectHandler_GetAccount(t *testing.T) {
	t.Run("connected", func(t *testing.T) {
		expires := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
		connector := new(MockConnector)
		connector.On("GetAccount", mock.Anything, testShop).Return(&integration.Account{
			TenantKey:    testShop,
			RemoteUserID: "17841400000",
			DisplayName:  "acme",
			Credential:   integration.Credential{Token: "secret", ExpiresAt: &expires},
		}, nil)
		h := NewConnectHandler(connector)

		w := serve(connectRoutes(h), http.MethodGet, "/api/v1/instagram/account", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeData[appintegration.AccountResponse](t, w)
		assert.Equal(t, "acme", resp.DisplayName)
		assert.Equal(t, "17841400000", resp.RemoteUserID)
		assert.NotContains(t, w.Body.String(), "secret")
	})

	t.Run("not connected", func(t *testing.T) {
		connector := new(MockConnector)
		connector.On("GetAccount", mock.Anything, testShop).Return(nil, integration.ErrAccountNotFound)
		h := NewConnectHandler(connector)

		w := serve(connectRoutes(h), http.MethodGet, "/api/v1/instagram/account", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotConnected, decodeResponse(t, w).Error.Code)
	})
}

func TestConnectHandler_Disconnect(t *testing.T) {
	connector := new(MockConnector)
	connector.On("Disconnect", mock.Anything, testShop).Return(nil)
	h := NewConnectHandler(connector)

	w := serve(connectRoutes(h), http.MethodDelete, "/api/v1/instagram/account", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeData[map[string]bool](t, w)
	assert.True(t, resp["disconnected"])
	connector.AssertExpectations(t)
}

func TestConnectHandler_RequiresShop(t *testing.T) {
	h := NewConnectHandler(new(MockConnector))
	register := func(r *gin.Engine) {
		r.GET("/api/v1/instagram/connect", h.Connect)
	}

	w := serve(register, http.MethodGet, "/api/v1/instagram/connect", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
