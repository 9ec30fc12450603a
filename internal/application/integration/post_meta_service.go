package integration

import (
	"context"
	"errors"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"go.uber.org/zap"
)

// PostMetaService manages pin, hide and product metadata of media items.
// Every successful mutation queues a sync; a failing sync never rolls the mutation back.
type PostMetaService struct {
	metas    integration.PostMetaRepository
	accounts integration.AccountRepository
	fetcher  integration.MediaFetcher
	sync     *SyncService
	logger   *zap.Logger
}

// NewPostMetaService creates a new PostMetaService
func NewPostMetaService(
	metas integration.PostMetaRepository,
	accounts integration.AccountRepository,
	fetcher integration.MediaFetcher,
	sync *SyncService,
	logger *zap.Logger,
) *PostMetaService {
	return &PostMetaService{
		metas:    metas,
		accounts: accounts,
		fetcher:  fetcher,
		sync:     sync,
		logger:   logger,
	}
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// List returns every stored metadata row of the tenant
func (s *PostMetaService) List(ctx context.Context, tenantKey string) ([]integration.PostMeta, error) {
	return s.metas.FindByTenant(ctx, tenantKey)
}

// Get returns the metadata of one media item.
// An item never mutated reports default values without being stored.
func (s *PostMetaService) Get(ctx context.Context, tenantKey, mediaID string) (*integration.PostMeta, error) {
	meta, err := s.metas.FindOne(ctx, tenantKey, mediaID)
	if errors.Is(err, integration.ErrPostMetaNotFound) {
		return integration.NewPostMeta(tenantKey, mediaID)
	}
	return meta, err
}

// Posts returns the tenant's remote media annotated with local metadata, hidden items included
func (s *PostMetaService) Posts(ctx context.Context, tenantKey string) ([]integration.MergedFeedItem, error) {
	account, err := s.accounts.FindByTenant(ctx, tenantKey)
	if err != nil {
		return nil, err
	}
	items, err := s.fetcher.FetchMedia(ctx, account.RemoteUserID, account.Credential.Token, integration.MaxPostLimit)
	if err != nil {
		return nil, err
	}
	metas, err := s.metas.FindByTenant(ctx, tenantKey)
	if err != nil {
		return nil, err
	}
	return integration.Annotate(items, metas, account.DisplayName), nil
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// SetPinned pins or unpins a media item
func (s *PostMetaService) SetPinned(ctx context.Context, tenantKey, mediaID string, pinned bool) (*integration.PostMeta, error) {
	return s.Update(ctx, tenantKey, mediaID, UpdatePostMetaRequest{Pinned: &pinned})
}

// SetHidden hides or shows a media item
func (s *PostMetaService) SetHidden(ctx context.Context, tenantKey, mediaID string, hidden bool) (*integration.PostMeta, error) {
	return s.Update(ctx, tenantKey, mediaID, UpdatePostMetaRequest{Hidden: &hidden})
}

// SetProducts replaces the products attached to a media item
func (s *PostMetaService) SetProducts(ctx context.Context, tenantKey, mediaID string, products []integration.ProductRef) (*integration.PostMeta, error) {
	return s.Update(ctx, tenantKey, mediaID, UpdatePostMetaRequest{Products: &products})
}

// Update applies a partial change and queues one sync.
// Only the fields named by req are written, so concurrent updates of other fields survive.
func (s *PostMetaService) Update(ctx context.Context, tenantKey, mediaID string, req UpdatePostMetaRequest) (*integration.PostMeta, error) {
	if req.IsEmpty() {
		return s.Get(ctx, tenantKey, mediaID)
	}

	patch, err := integration.NewPostMeta(tenantKey, mediaID)
	if err != nil {
		return nil, err
	}
	fields := make([]integration.PostMetaField, 0, 3)
	if req.Pinned != nil {
		patch.SetPinned(*req.Pinned)
		fields = append(fields, integration.PostMetaPinned)
	}
	if req.Hidden != nil {
		patch.SetHidden(*req.Hidden)
		fields = append(fields, integration.PostMetaHidden)
	}
	if req.Products != nil {
		if err := patch.SetProducts(*req.Products); err != nil {
			return nil, err
		}
		fields = append(fields, integration.PostMetaProducts)
	}

	if err := s.metas.Patch(ctx, patch, fields); err != nil {
		return nil, err
	}
	s.sync.requestSync(tenantKey, integration.SyncReasonMetadata)

	meta, err := s.metas.FindOne(ctx, tenantKey, mediaID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Post metadata updated",
		zap.String("tenant", tenantKey),
		zap.String("media_id", mediaID),
		zap.Bool("pinned", meta.Pinned),
		zap.Bool("hidden", meta.Hidden),
		zap.Int("products", len(meta.Products)),
	)
	return meta, nil
}
