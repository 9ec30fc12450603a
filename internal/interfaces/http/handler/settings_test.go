package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/dto"
)

func settingsRoutes(h *SettingsHandler) func(*gin.Engine) {
	return func(r *gin.Engine) {
		g := r.Group("/api/v1/settings", withShop(testShop))
		g.GET("", h.Get)
		g.PUT("", h.Update)
		g.DELETE("", h.Reset)
	}
}

func TestSettingsHandler_Get(t *testing.T) {
	settings := new(MockSettingsEditor)
	settings.On("GetSettings", mock.Anything, testShop).Return(integration.DefaultFeedSettings(), nil)
	h := NewSettingsHandler(settings)

	w := serve(settingsRoutes(h), http.MethodGet, "/api/v1/settings", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeData[SettingsResponse](t, w)
	assert.Equal(t, integration.DefaultFeedSettings(), resp.Settings)
	assert.Equal(t, integration.DefaultWidgetID, resp.Widget.ID)
	assert.Equal(t, resp.Settings.PostLimit, resp.Widget.PostLimit)
}

func TestSettingsHandler_Update(t *testing.T) {
	t.Run("passes the raw document through", func(t *testing.T) {
		raw := `{"layout":"carousel","postsLimit":6}`
		updated := integration.DefaultFeedSettings()
		updated.Layout = integration.LayoutCarousel
		updated.PostLimit = 6

		settings := new(MockSettingsEditor)
		settings.On("UpdateSettings", mock.Anything, testShop, []byte(raw)).Return(updated, nil)
		h := NewSettingsHandler(settings)

		w := serve(settingsRoutes(h), http.MethodPut, "/api/v1/settings", jsonBody(raw),
			"Content-Type", contentTypeJSON)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeData[SettingsResponse](t, w)
		assert.Equal(t, integration.LayoutCarousel, resp.Widget.Layout)
		assert.Equal(t, 6, resp.Settings.PostLimit)
		settings.AssertExpectations(t)
	})

	t.Run("empty body", func(t *testing.T) {
		settings := new(MockSettingsEditor)
		h := NewSettingsHandler(settings)

		w := serve(settingsRoutes(h), http.MethodPut, "/api/v1/settings", jsonBody(""),
			"Content-Type", contentTypeJSON)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		settings.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejected by schema", func(t *testing.T) {
		settings := new(MockSettingsEditor)
		settings.On("UpdateSettings", mock.Anything, testShop, mock.Anything).
			Return(integration.FeedSettings{}, integration.ErrSettingsInvalid)
		h := NewSettingsHandler(settings)

		w := serve(settingsRoutes(h), http.MethodPut, "/api/v1/settings", jsonBody(`{"layout":"spiral"}`),
			"Content-Type", contentTypeJSON)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})
}

func TestSettingsHandler_Reset(t *testing.T) {
	settings := new(MockSettingsEditor)
	settings.On("ResetSettings", mock.Anything, testShop).Return(nil)
	h := NewSettingsHandler(settings)

	w := serve(settingsRoutes(h), http.MethodDelete, "/api/v1/settings", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeData[SettingsResponse](t, w)
	assert.Equal(t, integration.DefaultFeedSettings(), resp.Settings)
	settings.AssertExpectations(t)
}
