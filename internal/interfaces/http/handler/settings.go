package handler

import (
	"context"
	"io"

	appintegration "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/gin-gonic/gin"
)

// SettingsEditor reads and replaces feed display settings
type SettingsEditor interface {
	GetSettings(ctx context.Context, tenantKey string) (integration.FeedSettings, error)
	UpdateSettings(ctx context.Context, tenantKey string, raw []byte) (integration.FeedSettings, error)
	ResetSettings(ctx context.Context, tenantKey string) error
}

var _ SettingsEditor = (*appintegration.SettingsService)(nil)

// SettingsHandler serves the display settings screen
type SettingsHandler struct {
	BaseHandler
	settings SettingsEditor
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings SettingsEditor) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// SettingsResponse is the effective settings and the widget derived from them
type SettingsResponse struct {
	Settings integration.FeedSettings `json:"settings"`
	Widget   integration.WidgetConfig `json:"widget_config"`
}

func newSettingsResponse(s integration.FeedSettings) SettingsResponse {
	return SettingsResponse{Settings: s, Widget: s.Widget()}
}

// Get returns the effective settings.
// GET /api/v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	settings, err := h.settings.GetSettings(c.Request.Context(), shop)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newSettingsResponse(settings))
}

// Update replaces the settings. The raw document is passed through so schema
// validation and legacy normalization see exactly what the client sent.
// PUT /api/v1/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Request body could not be read")
		return
	}
	if len(raw) == 0 {
		h.BadRequest(c, "Request body is required")
		return
	}

	settings, err := h.settings.UpdateSettings(c.Request.Context(), shop, raw)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newSettingsResponse(settings))
}

// Reset drops stored settings so the defaults apply.
// DELETE /api/v1/settings
func (h *SettingsHandler) Reset(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	if err := h.settings.ResetSettings(c.Request.Context(), shop); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newSettingsResponse(integration.DefaultFeedSettings()))
}
