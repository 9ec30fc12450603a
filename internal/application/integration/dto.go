package integration

import (
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Account DTOs
// ---------------------------------------------------------------------------

// AccountResponse is the connected account as shown to the operator.
// The credential itself is never exposed.
type AccountResponse struct {
	TenantKey    string     `json:"tenant_key"`
	RemoteUserID string     `json:"remote_user_id"`
	DisplayName  string     `json:"display_name"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	Degraded     bool       `json:"degraded"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	ConnectedAt  time.Time  `json:"connected_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToAccountResponse converts a domain Account
func ToAccountResponse(a *integration.Account) AccountResponse {
	return AccountResponse{
		TenantKey:    a.TenantKey,
		RemoteUserID: a.RemoteUserID,
		DisplayName:  a.DisplayName,
		AvatarURL:    a.AvatarURL,
		Degraded:     a.Credential.Degraded,
		ExpiresAt:    a.Credential.ExpiresAt,
		ConnectedAt:  a.ConnectedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// Post DTOs
// ---------------------------------------------------------------------------

// UpdatePostMetaRequest is a partial update of one media item's metadata.
// Nil fields are left unchanged.
type UpdatePostMetaRequest struct {
	Pinned   *bool                     `json:"pinned"`
	Hidden   *bool                     `json:"hidden"`
	Products *[]integration.ProductRef `json:"products" binding:"omitempty,max=20,dive"`
}

// IsEmpty returns true when the request changes nothing
func (r UpdatePostMetaRequest) IsEmpty() bool {
	return r.Pinned == nil && r.Hidden == nil && r.Products == nil
}

// PostMetaResponse is stored metadata of one media item
type PostMetaResponse struct {
	MediaID   string                   `json:"media_id"`
	Pinned    bool                     `json:"pinned"`
	Hidden    bool                     `json:"hidden"`
	Products  []integration.ProductRef `json:"products"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// ToPostMetaResponse converts a domain PostMeta
func ToPostMetaResponse(m *integration.PostMeta) PostMetaResponse {
	products := m.Products
	if products == nil {
		products = []integration.ProductRef{}
	}
	return PostMetaResponse{
		MediaID:   m.MediaID,
		Pinned:    m.Pinned,
		Hidden:    m.Hidden,
		Products:  products,
		UpdatedAt: m.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// Sync DTOs
// ---------------------------------------------------------------------------

// SyncResponse reports a finished or queued sync
type SyncResponse struct {
	TenantKey  string `json:"tenant_key"`
	Queued     bool   `json:"queued"`
	Published  bool   `json:"published"`
	MediaCount int    `json:"media_count"`
	Degraded   bool   `json:"degraded"`
	DurationMS int64  `json:"duration_ms"`
}

// ToSyncResponse converts a SyncResult
func ToSyncResponse(r *integration.SyncResult) SyncResponse {
	return SyncResponse{
		TenantKey:  r.TenantKey,
		Published:  r.Published,
		MediaCount: r.MediaCount,
		Degraded:   r.Degraded,
		DurationMS: r.Duration.Milliseconds(),
	}
}
