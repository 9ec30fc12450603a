package handler

import (
	"context"
	"strconv"

	appintegration "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/gin-gonic/gin"
)

// Syncer publishes a tenant's feed now or in the background
type Syncer interface {
	Sync(ctx context.Context, tenantKey string) (*integration.SyncResult, error)
	SyncAsync(tenantKey, reason string) error
}

var _ Syncer = (*appintegration.SyncService)(nil)

// SyncHandler serves the manual sync button
type SyncHandler struct {
	BaseHandler
	syncer Syncer
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncer Syncer) *SyncHandler {
	return &SyncHandler{syncer: syncer}
}

// Sync fetches, merges and publishes the shop's feed.
// With ?async=true the run is queued and 202 is returned immediately.
// POST /api/v1/instagram/sync
func (h *SyncHandler) Sync(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	if async, _ := strconv.ParseBool(c.Query("async")); async {
		if err := h.syncer.SyncAsync(shop, integration.SyncReasonManual); err != nil {
			h.HandleError(c, err)
			return
		}
		h.Accepted(c, appintegration.SyncResponse{TenantKey: shop, Queued: true})
		return
	}

	result, err := h.syncer.Sync(c.Request.Context(), shop)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appintegration.ToSyncResponse(result))
}
