package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	appintegration "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/shared"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/auth"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// Lifecycle reacts to platform lifecycle webhooks
type Lifecycle interface {
	Handle(ctx context.Context, topic, tenantKey string) error
}

var _ Lifecycle = (*appintegration.LifecycleService)(nil)

// WebhookHandler receives signed lifecycle webhooks.
// Signature verification happens in middleware.WebhookSignature.
type WebhookHandler struct {
	BaseHandler
	lifecycle   Lifecycle
	idempotency shared.IdempotencyStore
	revoker     auth.TokenRevoker
	revokeTTL   time.Duration
	logger      *zap.Logger
}

// WebhookOption configures a WebhookHandler
type WebhookOption func(*WebhookHandler)

// WithIdempotency drops repeated deliveries of the same webhook id
func WithIdempotency(store shared.IdempotencyStore) WebhookOption {
	return func(h *WebhookHandler) {
		h.idempotency = store
	}
}

// WithRevoker revokes admin sessions of a shop once it uninstalls.
// ttl should cover the lifetime of the longest issued token.
func WithRevoker(revoker auth.TokenRevoker, ttl time.Duration) WebhookOption {
	return func(h *WebhookHandler) {
		h.revoker = revoker
		h.revokeTTL = ttl
	}
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(lifecycle Lifecycle, logger *zap.Logger, opts ...WebhookOption) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &WebhookHandler{lifecycle: lifecycle, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// webhookShop carries the shop fields of lifecycle payloads
type webhookShop struct {
	ShopDomain      string `json:"shop_domain"`
	MyshopifyDomain string `json:"myshopify_domain"`
}

// Receive dispatches a lifecycle webhook.
// POST /webhooks/:topic
func (h *WebhookHandler) Receive(c *gin.Context) {
	ctx := c.Request.Context()
	topic := webhookTopic(c)
	shop := webhookShopDomain(c)
	log := h.logger.With(zap.String("topic", topic), zap.String("tenant", shop))

	if shop == "" {
		h.BadRequest(c, "Missing shop domain")
		return
	}

	deliveryID := c.GetHeader(middleware.WebhookIDHeader)
	if h.idempotency != nil && deliveryID != "" {
		fresh, err := h.idempotency.MarkProcessed(ctx, "webhook:"+deliveryID, shared.DefaultIdempotencyTTL)
		if err != nil {
			log.Warn("Idempotency check failed, processing anyway", zap.Error(err))
		} else if !fresh {
			log.Info("Duplicate webhook delivery ignored", zap.String("webhook_id", deliveryID))
			h.Success(c, gin.H{"handled": false, "duplicate": true})
			return
		}
	}

	err := h.lifecycle.Handle(ctx, topic, shop)
	switch {
	case errors.Is(err, appintegration.ErrUnknownTopic):
		log.Info("Webhook topic has no handler")
		h.Success(c, gin.H{"handled": false})
		return
	case err != nil:
		if h.idempotency != nil && deliveryID != "" {
			if ferr := h.idempotency.Forget(ctx, "webhook:"+deliveryID); ferr != nil {
				log.Warn("Failed to release webhook delivery id", zap.Error(ferr))
			}
		}
		h.HandleError(c, err)
		return
	}

	if topic == appintegration.TopicAppUninstalled && h.revoker != nil {
		if err := h.revoker.RevokeShop(ctx, shop, h.revokeTTL); err != nil {
			log.Warn("Failed to revoke admin sessions", zap.Error(err))
		}
	}

	log.Info("Webhook handled")
	h.Success(c, gin.H{"handled": true})
}

// webhookTopic prefers the topic header; the path form replaces the first
// dash, so /webhooks/app-uninstalled means app/uninstalled
func webhookTopic(c *gin.Context) string {
	if topic := strings.TrimSpace(c.GetHeader(middleware.WebhookTopicHeader)); topic != "" {
		return topic
	}
	return strings.Replace(c.Param("topic"), "-", "/", 1)
}

// webhookShopDomain prefers the shop header and falls back to the payload
func webhookShopDomain(c *gin.Context) string {
	if shop := strings.TrimSpace(c.GetHeader(middleware.WebhookShopHeader)); shop != "" {
		return shop
	}

	body, ok := c.Get(middleware.WebhookBodyKey)
	if !ok {
		return ""
	}
	raw, ok := body.([]byte)
	if !ok || len(raw) == 0 {
		return ""
	}
	var payload webhookShop
	if err := binding.JSON.BindBody(raw, &payload); err != nil {
		return ""
	}
	if payload.ShopDomain != "" {
		return payload.ShopDomain
	}
	return payload.MyshopifyDomain
}
