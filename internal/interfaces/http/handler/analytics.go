package handler

import (
	"context"
	"strconv"
	"time"

	appanalytics "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
	"github.com/gin-gonic/gin"
)

// Reporting reads aggregated analytics
type Reporting interface {
	Summary(ctx context.Context, tenantKey string, windowDays int) (*analytics.Summary, error)
	TopPosts(ctx context.Context, tenantKey string, limit int) ([]analytics.PostCounter, error)
}

var _ Reporting = (*appanalytics.Aggregator)(nil)

const (
	defaultTopPostsLimit = 10
	maxTopPostsLimit     = 100
)

// AnalyticsHandler serves the analytics dashboard
type AnalyticsHandler struct {
	BaseHandler
	reporting Reporting
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(reporting Reporting) *AnalyticsHandler {
	return &AnalyticsHandler{reporting: reporting}
}

// DailyPointResponse is one day of the summary series
type DailyPointResponse struct {
	Day    string `json:"day"`
	Views  int64  `json:"views"`
	Clicks int64  `json:"clicks"`
}

// TotalsResponse is the sum over the requested window
type TotalsResponse struct {
	Views  int64   `json:"views"`
	Clicks int64   `json:"clicks"`
	CTR    float64 `json:"ctr"`
}

// WeekOverWeekResponse compares the last 7 days with the 7 days before
type WeekOverWeekResponse struct {
	CurrentViews     int64   `json:"current_views"`
	PreviousViews    int64   `json:"previous_views"`
	CurrentClicks    int64   `json:"current_clicks"`
	PreviousClicks   int64   `json:"previous_clicks"`
	ViewsChange      float64 `json:"views_change"`
	ClicksChange     float64 `json:"clicks_change"`
	CTRChange        float64 `json:"ctr_change"`
	EngagementChange float64 `json:"engagement_change"`
}

// SummaryResponse is the analytics summary as returned to the dashboard
type SummaryResponse struct {
	WindowDays   int                  `json:"window_days"`
	Daily        []DailyPointResponse `json:"daily"`
	Totals       TotalsResponse       `json:"totals"`
	WeekOverWeek WeekOverWeekResponse `json:"week_over_week"`
}

// ToSummaryResponse converts a domain summary, formatting days as YYYY-MM-DD
func ToSummaryResponse(s *analytics.Summary) SummaryResponse {
	daily := make([]DailyPointResponse, 0, len(s.Daily))
	for _, p := range s.Daily {
		daily = append(daily, DailyPointResponse{
			Day:    p.Day.UTC().Format(time.DateOnly),
			Views:  p.Views,
			Clicks: p.Clicks,
		})
	}
	wow := s.WeekOverWeek
	return SummaryResponse{
		WindowDays: s.WindowDays,
		Daily:      daily,
		Totals: TotalsResponse{
			Views:  s.Totals.Views,
			Clicks: s.Totals.Clicks,
			CTR:    s.Totals.CTR.InexactFloat64(),
		},
		WeekOverWeek: WeekOverWeekResponse{
			CurrentViews:     wow.CurrentViews,
			PreviousViews:    wow.PreviousViews,
			CurrentClicks:    wow.CurrentClicks,
			PreviousClicks:   wow.PreviousClicks,
			ViewsChange:      wow.ViewsChange.InexactFloat64(),
			ClicksChange:     wow.ClicksChange.InexactFloat64(),
			CTRChange:        wow.CTRChange.InexactFloat64(),
			EngagementChange: wow.EngagementChange.InexactFloat64(),
		},
	}
}

// PostStatsResponse is one media item's counters
type PostStatsResponse struct {
	MediaID   string    `json:"media_id"`
	Views     int64     `json:"views"`
	Clicks    int64     `json:"clicks"`
	MediaURL  string    `json:"media_url,omitempty"`
	Permalink string    `json:"permalink,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary returns the windowed rollup.
// GET /api/v1/analytics/summary?days=N
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	days := analytics.DefaultWindowDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "days must be an integer")
			return
		}
		days = n
	}

	summary, err := h.reporting.Summary(c.Request.Context(), shop, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToSummaryResponse(summary))
}

// TopPosts returns the best performing media items.
// GET /api/v1/analytics/posts?limit=N
func (h *AnalyticsHandler) TopPosts(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	limit := defaultTopPostsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, maxTopPostsLimit)
	}

	posts, err := h.reporting.TopPosts(c.Request.Context(), shop, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]PostStatsResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, PostStatsResponse{
			MediaID:   p.MediaID,
			Views:     p.Views,
			Clicks:    p.Clicks,
			MediaURL:  p.MediaURL,
			Permalink: p.Permalink,
			UpdatedAt: p.UpdatedAt,
		})
	}
	h.Success(c, resp)
}
