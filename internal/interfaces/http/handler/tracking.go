package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	appanalytics "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/logger"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// Tracker records storefront interactions
type Tracker interface {
	Track(ctx context.Context, req appanalytics.TrackRequest) error
}

var _ Tracker = (*appanalytics.Recorder)(nil)

// TrackingHandler serves the public tracking endpoint.
// Responses are always {success:true} or {success:false,error:"..."}.
type TrackingHandler struct {
	tracker Tracker
}

// NewTrackingHandler creates a new TrackingHandler
func NewTrackingHandler(tracker Tracker) *TrackingHandler {
	return &TrackingHandler{tracker: tracker}
}

// trackPayload accepts the beacon's field names from query, form or JSON
type trackPayload struct {
	Shop      string `json:"shop" form:"shop"`
	Type      string `json:"type" form:"type"`
	MediaID   string `json:"mediaId" form:"mediaId"`
	MediaURL  string `json:"mediaUrl" form:"mediaUrl"`
	Permalink string `json:"permalink" form:"permalink"`
}

// Track records one view or click.
// GET /api/track?shop=...&type=view
// POST /api/track with a JSON or form body
func (h *TrackingHandler) Track(c *gin.Context) {
	var p trackPayload
	if err := bindTrackPayload(c, &p); err != nil {
		trackFailure(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(p.Shop) == "" {
		trackFailure(c, http.StatusBadRequest, "Missing shop")
		return
	}
	if strings.TrimSpace(p.Type) == "" {
		trackFailure(c, http.StatusBadRequest, "Missing type")
		return
	}

	err := h.tracker.Track(c.Request.Context(), appanalytics.TrackRequest{
		Shop:      p.Shop,
		Type:      p.Type,
		MediaID:   p.MediaID,
		MediaURL:  p.MediaURL,
		Permalink: p.Permalink,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.TrackResponse{Success: true})
	case errors.Is(err, analytics.ErrInvalidTenantKey):
		trackFailure(c, http.StatusBadRequest, "Invalid shop")
	case errors.Is(err, analytics.ErrInvalidEventType):
		trackFailure(c, http.StatusBadRequest, "Invalid type")
	case errors.Is(err, analytics.ErrInvalidMediaID):
		trackFailure(c, http.StatusBadRequest, "Invalid mediaId")
	default:
		logger.L(c.Request.Context()).Error("Failed to record tracking event",
			zap.String("shop", p.Shop),
			zap.String("type", p.Type),
			zap.Error(err),
		)
		trackFailure(c, http.StatusInternalServerError, "Failed to record event")
	}
}

// bindTrackPayload reads the query for GET and the body for POST.
// The beacon script posts application/json; any body that is not form encoded
// is decoded as JSON whatever its content type.
func bindTrackPayload(c *gin.Context, p *trackPayload) error {
	if c.Request.Method != http.MethodPost {
		return c.ShouldBindQuery(p)
	}

	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		return c.ShouldBindWith(p, binding.Form)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return c.ShouldBindQuery(p)
	}
	return binding.JSON.BindBody(body, p)
}

func trackFailure(c *gin.Context, status int, message string) {
	c.JSON(status, dto.TrackResponse{Success: false, Error: message})
}
