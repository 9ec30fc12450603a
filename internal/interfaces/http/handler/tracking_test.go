package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appanalytics "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/dto"
)

func trackingRoutes(h *TrackingHandler) func(*gin.Engine) {
	return func(r *gin.Engine) {
		r.GET("/api/track", h.Track)
		r.POST("/api/track", h.Track)
	}
}

func decodeTrack(t *testing.T, w *httptest.ResponseRecorder) dto.TrackResponse {
	t.Helper()
	var resp dto.TrackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestTrackingHandler_Accepts(t *testing.T) {
	want := appanalytics.TrackRequest{
		Shop:      testShop,
		Type:      "click",
		MediaID:   "m1",
		MediaURL:  "https://cdn.example/m1.jpg",
		Permalink: "https://instagram.com/p/m1",
	}
	form := url.Values{
		"shop":      {want.Shop},
		"type":      {want.Type},
		"mediaId":   {want.MediaID},
		"mediaUrl":  {want.MediaURL},
		"permalink": {want.Permalink},
	}
	jsonPayload := `{"shop":"acme.myshopify.com","type":"click","mediaId":"m1",` +
		`"mediaUrl":"https://cdn.example/m1.jpg","permalink":"https://instagram.com/p/m1"}`

	tests := []struct {
		name        string
		method      string
		target      string
		body        string
		contentType string
	}{
		{"query string", http.MethodGet, "/api/track?" + form.Encode(), "", ""},
		{"json body", http.MethodPost, "/api/track", jsonPayload, contentTypeJSON},
		{"plain text body", http.MethodPost, "/api/track", jsonPayload, "text/plain;charset=UTF-8"},
		{"form body", http.MethodPost, "/api/track", form.Encode(), "application/x-www-form-urlencoded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := new(MockTracker)
			tracker.On("Track", mock.Anything, want).Return(nil)
			h := NewTrackingHandler(tracker)

			var headers []string
			if tt.contentType != "" {
				headers = []string{"Content-Type", tt.contentType}
			}
			w := serve(trackingRoutes(h), tt.method, tt.target, strings.NewReader(tt.body), headers...)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"success":true}`, w.Body.String())
			tracker.AssertExpectations(t)
		})
	}
}

func TestTrackingHandler_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		trackErr   error
		wantStatus int
		wantError  string
	}{
		{"missing shop", "/api/track?type=view", nil, http.StatusBadRequest, "Missing shop"},
		{"missing type", "/api/track?shop=acme.myshopify.com", nil, http.StatusBadRequest, "Missing type"},
		{"invalid shop", "/api/track?shop=bad&type=view", analytics.ErrInvalidTenantKey, http.StatusBadRequest, "Invalid shop"},
		{"invalid type", "/api/track?shop=acme.myshopify.com&type=hover", analytics.ErrInvalidEventType, http.StatusBadRequest, "Invalid type"},
		{"invalid media id", "/api/track?shop=acme.myshopify.com&type=click&mediaId=%3Cp%3E", analytics.ErrInvalidMediaID, http.StatusBadRequest, "Invalid mediaId"},
		{"store failure", "/api/track?shop=acme.myshopify.com&type=view", errors.New("db down"), http.StatusInternalServerError, "Failed to record event"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := new(MockTracker)
			if tt.trackErr != nil {
				tracker.On("Track", mock.Anything, mock.Anything).Return(tt.trackErr)
			}
			h := NewTrackingHandler(tracker)

			w := serve(trackingRoutes(h), http.MethodGet, tt.target, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeTrack(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
			if tt.trackErr == nil {
				tracker.AssertNotCalled(t, "Track", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestTrackingHandler_MalformedJSON(t *testing.T) {
	tracker := new(MockTracker)
	h := NewTrackingHandler(tracker)

	w := serve(trackingRoutes(h), http.MethodPost, "/api/track", strings.NewReader(`{"shop":`),
		"Content-Type", contentTypeJSON)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decodeTrack(t, w).Success)
	tracker.AssertNotCalled(t, "Track", mock.Anything, mock.Anything)
}

// countingRepository records increments so tests can assert nothing was written
type countingRepository struct {
	analytics.CounterRepository
	increments int
}

func (r *countingRepository) IncrementDaily(context.Context, string, time.Time, analytics.EventType) error {
	r.increments++
	return nil
}

func (r *countingRepository) IncrementPost(context.Context, string, string, analytics.EventType, analytics.PostDisplay) error {
	r.increments++
	return nil
}

func TestTrackingHandler_InvalidShopDoesNotCount(t *testing.T) {
	repo := &countingRepository{}
	h := NewTrackingHandler(appanalytics.NewRecorder(repo, zap.NewNop()))

	w := serve(trackingRoutes(h), http.MethodGet, "/api/track?shop=bad&type=view", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, repo.increments)

	w = serve(trackingRoutes(h), http.MethodGet, "/api/track?shop=acme.myshopify.com&type=click&mediaId=m1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, repo.increments)
}

func TestTrackingHandler_OversizedMediaIDDoesNotCount(t *testing.T) {
	repo := &countingRepository{}
	h := NewTrackingHandler(appanalytics.NewRecorder(repo, zap.NewNop()))

	body := jsonBody(`{"shop":"acme.myshopify.com","type":"click","mediaId":"` +
		strings.Repeat("7", analytics.MaxMediaIDLength+1) + `"}`)
	w := serve(trackingRoutes(h), http.MethodPost, "/api/track", body, "Content-Type", contentTypeJSON)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid mediaId", decodeTrack(t, w).Error)
	assert.Zero(t, repo.increments)
}
