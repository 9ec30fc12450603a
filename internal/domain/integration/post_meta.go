package integration

import (
	"context"
	"strings"
	"time"
)

// MaxProductsPerPost bounds the product references attached to one media item
const MaxProductsPerPost = 20

// ProductRef is a storefront product attached to a media item
type ProductRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
	Image  string `json:"image,omitempty"`
}

// Validate checks the reference has an id
func (p ProductRef) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrInvalidProductRef
	}
	return nil
}

// ---------------------------------------------------------------------------
// PostMeta Entity
// ---------------------------------------------------------------------------

// PostMetaField names one independently mutable field of PostMeta
type PostMetaField string

const (
	PostMetaPinned   PostMetaField = "pinned"
	PostMetaHidden   PostMetaField = "hidden"
	PostMetaProducts PostMetaField = "products"
)

// PostMeta is locally owned metadata for one remote media item.
// It is keyed by (TenantKey, MediaID) and only created on first mutation.
type PostMeta struct {
	TenantKey string
	MediaID   string
	Pinned    bool
	Hidden    bool
	Products  []ProductRef
	UpdatedAt time.Time
}

// NewPostMeta creates empty metadata for a media item
func NewPostMeta(tenantKey, mediaID string) (*PostMeta, error) {
	if err := ValidateTenantKey(tenantKey); err != nil {
		return nil, err
	}
	if strings.TrimSpace(mediaID) == "" {
		return nil, ErrPostMetaInvalidMedia
	}
	return &PostMeta{
		TenantKey: tenantKey,
		MediaID:   mediaID,
		Products:  make([]ProductRef, 0),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// SetPinned sets the pinned flag
func (m *PostMeta) SetPinned(pinned bool) {
	m.Pinned = pinned
	m.UpdatedAt = time.Now().UTC()
}

// SetHidden sets the hidden flag
func (m *PostMeta) SetHidden(hidden bool) {
	m.Hidden = hidden
	m.UpdatedAt = time.Now().UTC()
}

// SetProducts replaces the attached products, keeping the first occurrence of each id
func (m *PostMeta) SetProducts(products []ProductRef) error {
	if len(products) > MaxProductsPerPost {
		return ErrInvalidProductRef
	}

	seen := make(map[string]struct{}, len(products))
	result := make([]ProductRef, 0, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		result = append(result, p)
	}

	m.Products = result
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// PostMetaRepository persists PostMeta rows
type PostMetaRepository interface {
	// FindByTenant returns all metadata rows of a tenant
	FindByTenant(ctx context.Context, tenantKey string) ([]PostMeta, error)

	// FindOne returns ErrPostMetaNotFound when no row exists
	FindOne(ctx context.Context, tenantKey, mediaID string) (*PostMeta, error)

	// Save upserts by (tenant, media id)
	Save(ctx context.Context, meta *PostMeta) error

	// Patch upserts by (tenant, media id); an existing row only takes the named fields
	Patch(ctx context.Context, meta *PostMeta, fields []PostMetaField) error

	// DeleteByTenant removes all rows of a tenant
	DeleteByTenant(ctx context.Context, tenantKey string) error
}
