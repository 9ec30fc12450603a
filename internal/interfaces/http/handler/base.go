package handler

import (
	"net/http"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/logger"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/dto"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID assigned by the RequestID middleware,
// falling back to the inbound header
func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 response for work that continues in the background
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// HandleError converts a service error to an HTTP response.
// Server-side failures are logged with the full error; the client only sees a safe message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code, message := dto.ResolveError(err)
	status := dto.GetHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("Request failed",
			zap.String("code", code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	h.Error(c, status, code, message)
}

// requireShop returns the authenticated shop, writing a 401 when there is none
func (h *BaseHandler) requireShop(c *gin.Context) (string, bool) {
	shop := middleware.GetShop(c)
	if shop == "" {
		h.Unauthorized(c, "Authentication required")
		return "", false
	}
	return shop, true
}
