// Package integration contains the Integration bounded context.
// This context connects a storefront tenant to an external social-media account and
// keeps an enriched, published copy of its media feed.
//
// Key concepts:
//   - Account: the connected remote identity and its access credential (one per tenant)
//   - PostMeta: locally owned pin/hide/product metadata for a remote media item
//   - FeedSettings: versioned display configuration published alongside the feed
//   - Merge: pure enrichment of remote media with PostMeta
//   - SocialPlatform: port for token exchange, profile and media retrieval
//   - MetafieldStore: port for the external key-addressed publish target
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
