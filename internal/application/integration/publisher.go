package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
)

// Publisher writes feed snapshots to the external metafield store.
// Every call replaces the whole tenant namespace.
type Publisher struct {
	store       integration.MetafieldStore
	namespace   string
	trackingURL string
}

// NewPublisher creates a new Publisher
func NewPublisher(store integration.MetafieldStore, namespace, trackingURL string) *Publisher {
	return &Publisher{
		store:       store,
		namespace:   namespace,
		trackingURL: trackingURL,
	}
}

// Publish encodes items, the account avatar and settings into records and writes them.
// The first invalid record aborts the call before anything is written.
func (p *Publisher) Publish(
	ctx context.Context,
	account *integration.Account,
	items []integration.MergedFeedItem,
	settings integration.FeedSettings,
) error {
	snapshot := integration.FeedSnapshot{
		Items:             items,
		ProfilePictureURL: account.AvatarURL,
		TrackingURL:       p.trackingURL,
		Settings:          settings,
	}

	records, err := snapshot.Records()
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPublishFailed, err)
	}
	if err := integration.ValidateRecords(records); err != nil {
		return err
	}

	if err := p.store.Put(ctx, account.TenantKey, p.namespace, records); err != nil {
		if errors.Is(err, integration.ErrPublishFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", integration.ErrPublishFailed, err)
	}
	return nil
}

// Published returns the records currently live for a tenant
func (p *Publisher) Published(ctx context.Context, tenantKey string) ([]integration.PublishRecord, error) {
	return p.store.Get(ctx, tenantKey, p.namespace)
}

// Clear removes every published record of a tenant
func (p *Publisher) Clear(ctx context.Context, tenantKey string) error {
	return p.store.Delete(ctx, tenantKey, p.namespace)
}
