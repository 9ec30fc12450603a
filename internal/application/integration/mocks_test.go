package integration

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByTenant(ctx context.Context, tenantKey string) (*integration.Account, error) {
	args := m.Called(ctx, tenantKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAll(ctx context.Context) ([]integration.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Account), args.Error(1)
}

func (m *MockAccountRepository) FindExpiringBefore(ctx context.Context, t time.Time) ([]integration.Account, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Account), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *integration.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) DeleteByTenant(ctx context.Context, tenantKey string) error {
	return m.Called(ctx, tenantKey).Error(0)
}

// MockPostMetaRepository is a mock implementation of PostMetaRepository
type MockPostMetaRepository struct {
	mock.Mock
}

func (m *MockPostMetaRepository) FindByTenant(ctx context.Context, tenantKey string) ([]integration.PostMeta, error) {
	args := m.Called(ctx, tenantKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.PostMeta), args.Error(1)
}

func (m *MockPostMetaRepository) FindOne(ctx context.Context, tenantKey, mediaID string) (*integration.PostMeta, error) {
	args := m.Called(ctx, tenantKey, mediaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.PostMeta), args.Error(1)
}

func (m *MockPostMetaRepository) Save(ctx context.Context, meta *integration.PostMeta) error {
	return m.Called(ctx, meta).Error(0)
}

func (m *MockPostMetaRepository) Patch(ctx context.Context, meta *integration.PostMeta, fields []integration.PostMetaField) error {
	return m.Called(ctx, meta, fields).Error(0)
}

func (m *MockPostMetaRepository) DeleteByTenant(ctx context.Context, tenantKey string) error {
	return m.Called(ctx, tenantKey).Error(0)
}

// MockFeedSettingsRepository is a mock implementation of FeedSettingsRepository
type MockFeedSettingsRepository struct {
	mock.Mock
}

func (m *MockFeedSettingsRepository) FindByTenant(ctx context.Context, tenantKey string) (*integration.StoredFeedSettings, error) {
	args := m.Called(ctx, tenantKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.StoredFeedSettings), args.Error(1)
}

func (m *MockFeedSettingsRepository) Save(ctx context.Context, settings *integration.StoredFeedSettings) error {
	return m.Called(ctx, settings).Error(0)
}

func (m *MockFeedSettingsRepository) DeleteByTenant(ctx context.Context, tenantKey string) error {
	return m.Called(ctx, tenantKey).Error(0)
}

// MockCounterRepository is a mock implementation of CounterRepository
type MockCounterRepository struct {
	mock.Mock
}

func (m *MockCounterRepository) IncrementDaily(ctx context.Context, tenantKey string, day time.Time, event analytics.EventType) error {
	return m.Called(ctx, tenantKey, day, event).Error(0)
}

func (m *MockCounterRepository) IncrementPost(ctx context.Context, tenantKey, mediaID string, event analytics.EventType, display analytics.PostDisplay) error {
	return m.Called(ctx, tenantKey, mediaID, event, display).Error(0)
}

func (m *MockCounterRepository) FindDailySince(ctx context.Context, tenantKey string, since time.Time) ([]analytics.DailyCounter, error) {
	args := m.Called(ctx, tenantKey, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.DailyCounter), args.Error(1)
}

func (m *MockCounterRepository) TopPosts(ctx context.Context, tenantKey string, limit int) ([]analytics.PostCounter, error) {
	args := m.Called(ctx, tenantKey, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.PostCounter), args.Error(1)
}

func (m *MockCounterRepository) DeleteByTenant(ctx context.Context, tenantKey string) error {
	return m.Called(ctx, tenantKey).Error(0)
}

// MockSocialPlatform is a mock implementation of SocialPlatform
type MockSocialPlatform struct {
	mock.Mock
}

func (m *MockSocialPlatform) ExchangeCode(ctx context.Context, code string) (integration.Credential, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(integration.Credential), args.Error(1)
}

func (m *MockSocialPlatform) Upgrade(ctx context.Context, shortLived integration.Credential) (integration.Credential, error) {
	args := m.Called(ctx, shortLived)
	return args.Get(0).(integration.Credential), args.Error(1)
}

func (m *MockSocialPlatform) Refresh(ctx context.Context, longLived integration.Credential) (integration.Credential, error) {
	args := m.Called(ctx, longLived)
	return args.Get(0).(integration.Credential), args.Error(1)
}

func (m *MockSocialPlatform) FetchProfile(ctx context.Context, token string) (*integration.Profile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Profile), args.Error(1)
}

func (m *MockSocialPlatform) FetchMedia(ctx context.Context, remoteUserID, token string, limit int) ([]integration.RawMediaItem, error) {
	args := m.Called(ctx, remoteUserID, token, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.RawMediaItem), args.Error(1)
}

func (m *MockSocialPlatform) AuthorizeURL(state string) string {
	return m.Called(state).String(0)
}

// MockSyncQueue is a mock implementation of SyncQueue
type MockSyncQueue struct {
	mock.Mock
}

func (m *MockSyncQueue) ScheduleSync(tenantKey, reason string) error {
	return m.Called(tenantKey, reason).Error(0)
}
