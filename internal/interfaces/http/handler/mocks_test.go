package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	appanalytics "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/analytics"
	appintegration "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
)

// serve runs one request through a router with routes registered by register
func serve(register func(r *gin.Engine), method, target string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	r := gin.New()
	register(r)
	req := httptest.NewRequest(method, target, body)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

const contentTypeJSON = "application/json"

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type MockConnector struct {
	mock.Mock
}

func (m *MockConnector) AuthorizeURL(tenantKey string) (string, error) {
	args := m.Called(tenantKey)
	return args.String(0), args.Error(1)
}

func (m *MockConnector) HandleCallback(ctx context.Context, code, state, providerError string) string {
	args := m.Called(ctx, code, state, providerError)
	return args.String(0)
}

func (m *MockConnector) GetAccount(ctx context.Context, tenantKey string) (*integration.Account, error) {
	args := m.Called(ctx, tenantKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Account), args.Error(1)
}

func (m *MockConnector) Disconnect(ctx context.Context, tenantKey string) error {
	args := m.Called(ctx, tenantKey)
	return args.Error(0)
}

type MockSyncer struct {
	mock.Mock
}

func (m *MockSyncer) Sync(ctx context.Context, tenantKey string) (*integration.SyncResult, error) {
	args := m.Called(ctx, tenantKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.SyncResult), args.Error(1)
}

func (m *MockSyncer) SyncAsync(tenantKey, reason string) error {
	args := m.Called(tenantKey, reason)
	return args.Error(0)
}

type MockPostEditor struct {
	mock.Mock
}

func (m *MockPostEditor) Posts(ctx context.Context, tenantKey string) ([]integration.MergedFeedItem, error) {
	args := m.Called(ctx, tenantKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.MergedFeedItem), args.Error(1)
}

func (m *MockPostEditor) Get(ctx context.Context, tenantKey, mediaID string) (*integration.PostMeta, error) {
	args := m.Called(ctx, tenantKey, mediaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.PostMeta), args.Error(1)
}

func (m *MockPostEditor) Update(ctx context.Context, tenantKey, mediaID string, req appintegration.UpdatePostMetaRequest) (*integration.PostMeta, error) {
	args := m.Called(ctx, tenantKey, mediaID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.PostMeta), args.Error(1)
}

type MockSettingsEditor struct {
	mock.Mock
}

func (m *MockSettingsEditor) GetSettings(ctx context.Context, tenantKey string) (integration.FeedSettings, error) {
	args := m.Called(ctx, tenantKey)
	return args.Get(0).(integration.FeedSettings), args.Error(1)
}

func (m *MockSettingsEditor) UpdateSettings(ctx context.Context, tenantKey string, raw []byte) (integration.FeedSettings, error) {
	args := m.Called(ctx, tenantKey, raw)
	return args.Get(0).(integration.FeedSettings), args.Error(1)
}

func (m *MockSettingsEditor) ResetSettings(ctx context.Context, tenantKey string) error {
	args := m.Called(ctx, tenantKey)
	return args.Error(0)
}

type MockReporting struct {
	mock.Mock
}

func (m *MockReporting) Summary(ctx context.Context, tenantKey string, windowDays int) (*analytics.Summary, error) {
	args := m.Called(ctx, tenantKey, windowDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.Summary), args.Error(1)
}

func (m *MockReporting) TopPosts(ctx context.Context, tenantKey string, limit int) ([]analytics.PostCounter, error) {
	args := m.Called(ctx, tenantKey, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.PostCounter), args.Error(1)
}

type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Track(ctx context.Context, req appanalytics.TrackRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) Handle(ctx context.Context, topic, tenantKey string) error {
	args := m.Called(ctx, topic, tenantKey)
	return args.Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Forget(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return nil
}
