package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Webhook request headers
const (
	WebhookHMACHeader  = "X-Shopify-Hmac-Sha256"
	WebhookShopHeader  = "X-Shopify-Shop-Domain"
	WebhookTopicHeader = "X-Shopify-Topic"
	WebhookIDHeader    = "X-Shopify-Webhook-Id"
)

// WebhookBodyKey holds the verified raw body in the gin context
const WebhookBodyKey = "webhook_body"

// WebhookSignature verifies the base64 HMAC-SHA256 of the raw body against the app secret.
// The body is buffered, so the handler can still read it from the request or WebhookBodyKey.
func WebhookSignature(secret string, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	key := []byte(secret)

	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Request body could not be read", GetRequestID(c)))
			return
		}

		if !ValidWebhookSignature(key, body, c.GetHeader(WebhookHMACHeader)) {
			log.Warn("Webhook signature rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("shop", c.GetHeader(WebhookShopHeader)),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeSignature, "Invalid webhook signature", GetRequestID(c)))
			return
		}

		c.Set(WebhookBodyKey, body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

// ValidWebhookSignature reports whether signature is the base64 HMAC-SHA256 of body under key
func ValidWebhookSignature(key, body []byte, signature string) bool {
	if len(key) == 0 || signature == "" {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, SignWebhook(key, body))
}

// SignWebhook returns the raw HMAC-SHA256 of body under key
func SignWebhook(key, body []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return mac.Sum(nil)
}
