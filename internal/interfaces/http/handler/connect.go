package handler

import (
	"context"
	"net/http"

	appintegration "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/gin-gonic/gin"
)

// Connector runs the account handshake and manages the connected account
type Connector interface {
	AuthorizeURL(tenantKey string) (string, error)
	HandleCallback(ctx context.Context, code, state, providerError string) string
	GetAccount(ctx context.Context, tenantKey string) (*integration.Account, error)
	Disconnect(ctx context.Context, tenantKey string) error
}

var _ Connector = (*appintegration.ConnectService)(nil)

// ConnectHandler serves the handshake endpoints and the connected account
type ConnectHandler struct {
	BaseHandler
	connector Connector
}

// NewConnectHandler creates a new ConnectHandler
func NewConnectHandler(connector Connector) *ConnectHandler {
	return &ConnectHandler{connector: connector}
}

// ConnectResponse carries the provider URL the admin UI navigates to
type ConnectResponse struct {
	AuthorizeURL string `json:"authorize_url"`
}

// Connect returns the provider authorize URL for the authenticated shop.
// GET /api/v1/instagram/connect
func (h *ConnectHandler) Connect(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	authorizeURL, err := h.connector.AuthorizeURL(shop)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ConnectResponse{AuthorizeURL: authorizeURL})
}

// Callback completes the handshake. It always redirects, never renders an error page.
// GET /auth/instagram/callback
func (h *ConnectHandler) Callback(c *gin.Context) {
	providerError := c.Query("error_description")
	if providerError == "" {
		providerError = c.Query("error")
	}

	target := h.connector.HandleCallback(c.Request.Context(), c.Query("code"), c.Query("state"), providerError)
	c.Redirect(http.StatusFound, target)
}

// GetAccount returns the connected account of the authenticated shop.
// GET /api/v1/instagram/account
func (h *ConnectHandler) GetAccount(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	account, err := h.connector.GetAccount(c.Request.Context(), shop)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appintegration.ToAccountResponse(account))
}

// Disconnect removes the connected account and the published feed.
// DELETE /api/v1/instagram/account
func (h *ConnectHandler) Disconnect(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	if err := h.connector.Disconnect(c.Request.Context(), shop); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"disconnected": true})
}
