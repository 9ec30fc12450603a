package models

import (
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/google/uuid"
)

// AccountModel is the persistence model for the Account domain entity.
type AccountModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantKey      string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_accounts_tenant_key"`
	AccessToken    string     `gorm:"type:text;not null"`
	TokenExpiresAt *time.Time `gorm:"index:idx_accounts_token_expires_at"`
	TokenDegraded  bool       `gorm:"not null;default:false"`
	RemoteUserID   string     `gorm:"type:varchar(64);not null"`
	DisplayName    string     `gorm:"type:varchar(255)"`
	AvatarURL      string     `gorm:"type:text"`
	ConnectedAt    time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account entity.
func (m *AccountModel) ToDomain() *integration.Account {
	var expiresAt *time.Time
	if m.TokenExpiresAt != nil {
		t := m.TokenExpiresAt.UTC()
		expiresAt = &t
	}
	return &integration.Account{
		ID:        m.ID,
		TenantKey: m.TenantKey,
		Credential: integration.Credential{
			Token:     m.AccessToken,
			ExpiresAt: expiresAt,
			Degraded:  m.TokenDegraded,
		},
		RemoteUserID: m.RemoteUserID,
		DisplayName:  m.DisplayName,
		AvatarURL:    m.AvatarURL,
		ConnectedAt:  m.ConnectedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// AccountModelFromDomain creates a new persistence model from a domain Account entity.
func AccountModelFromDomain(a *integration.Account) *AccountModel {
	return &AccountModel{
		ID:             a.ID,
		TenantKey:      a.TenantKey,
		AccessToken:    a.Credential.Token,
		TokenExpiresAt: a.Credential.ExpiresAt,
		TokenDegraded:  a.Credential.Degraded,
		RemoteUserID:   a.RemoteUserID,
		DisplayName:    a.DisplayName,
		AvatarURL:      a.AvatarURL,
		ConnectedAt:    a.ConnectedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// PostMetaModel is the persistence model for per-post merchant metadata.
type PostMetaModel struct {
	TenantKey string                   `gorm:"type:varchar(255);primaryKey"`
	MediaID   string                   `gorm:"type:varchar(64);primaryKey"`
	Pinned    bool                     `gorm:"not null;default:false"`
	Hidden    bool                     `gorm:"not null;default:false"`
	Products  []integration.ProductRef `gorm:"serializer:json;type:jsonb;not null"`
	UpdatedAt time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PostMetaModel) TableName() string {
	return "post_meta"
}

// ToDomain converts the persistence model to a domain PostMeta.
func (m *PostMetaModel) ToDomain() *integration.PostMeta {
	products := m.Products
	if products == nil {
		products = []integration.ProductRef{}
	}
	return &integration.PostMeta{
		TenantKey: m.TenantKey,
		MediaID:   m.MediaID,
		Pinned:    m.Pinned,
		Hidden:    m.Hidden,
		Products:  products,
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// PostMetaModelFromDomain creates a new persistence model from a domain PostMeta.
func PostMetaModelFromDomain(p *integration.PostMeta) *PostMetaModel {
	products := p.Products
	if products == nil {
		products = []integration.ProductRef{}
	}
	return &PostMetaModel{
		TenantKey: p.TenantKey,
		MediaID:   p.MediaID,
		Pinned:    p.Pinned,
		Hidden:    p.Hidden,
		Products:  products,
		UpdatedAt: p.UpdatedAt,
	}
}

// FeedSettingsModel is the persistence model for a tenant's widget settings.
type FeedSettingsModel struct {
	TenantKey string                   `gorm:"type:varchar(255);primaryKey"`
	Settings  integration.FeedSettings `gorm:"serializer:json;type:jsonb;not null"`
	UpdatedAt time.Time                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FeedSettingsModel) TableName() string {
	return "feed_settings"
}

// ToDomain converts the persistence model to domain StoredFeedSettings.
func (m *FeedSettingsModel) ToDomain() *integration.StoredFeedSettings {
	return &integration.StoredFeedSettings{
		TenantKey: m.TenantKey,
		Settings:  m.Settings,
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// FeedSettingsModelFromDomain creates a new persistence model from domain StoredFeedSettings.
func FeedSettingsModelFromDomain(s *integration.StoredFeedSettings) *FeedSettingsModel {
	return &FeedSettingsModel{
		TenantKey: s.TenantKey,
		Settings:  s.Settings,
		UpdatedAt: s.UpdatedAt,
	}
}
