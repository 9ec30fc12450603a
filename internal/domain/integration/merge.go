package integration

// MergeOptions controls how the feed is filtered and shaped
type MergeOptions struct {
	// DisplayName replaces a missing author handle
	DisplayName string
	// PinnedOnly drops unpinned items after the hidden filter
	PinnedOnly bool
}

// Merge joins remote media with local PostMeta and returns the publishable feed.
// Hidden items are always dropped. Pinned items precede the rest and the provider
// order is otherwise preserved. metas must belong to a single tenant.
func Merge(items []RawMediaItem, metas []PostMeta, opts MergeOptions) []MergedFeedItem {
	byMedia := make(map[string]*PostMeta, len(metas))
	for i := range metas {
		byMedia[metas[i].MediaID] = &metas[i]
	}

	pinned := make([]MergedFeedItem, 0)
	rest := make([]MergedFeedItem, 0, len(items))

	for _, item := range items {
		var meta PostMeta
		if m, ok := byMedia[item.ID]; ok {
			meta = *m
		}

		if meta.Hidden {
			continue
		}
		if opts.PinnedOnly && !meta.Pinned {
			continue
		}

		shaped := shapeItem(item, meta, opts.DisplayName)
		if meta.Pinned {
			pinned = append(pinned, shaped)
		} else {
			rest = append(rest, shaped)
		}
	}

	return append(pinned, rest...)
}

func shapeItem(item RawMediaItem, meta PostMeta, displayName string) MergedFeedItem {
	username := item.Username
	if username == "" {
		username = displayName
	}

	children := item.Children
	if children == nil {
		children = []ChildMedia{}
	}
	products := meta.Products
	if products == nil {
		products = []ProductRef{}
	}

	return MergedFeedItem{
		ID:           item.ID,
		MediaURL:     item.DisplayURL(),
		ThumbnailURL: item.ThumbnailURL,
		Permalink:    item.Permalink,
		Caption:      item.Caption,
		MediaType:    item.MediaType,
		Username:     username,
		Timestamp:    item.Timestamp,
		Children:     children,
		Pinned:       meta.Pinned,
		Hidden:       meta.Hidden,
		Products:     products,
	}
}

// Annotate shapes every item with its metadata without filtering or reordering.
// It backs the admin post list, where hidden items must stay visible.
func Annotate(items []RawMediaItem, metas []PostMeta, displayName string) []MergedFeedItem {
	byMedia := make(map[string]PostMeta, len(metas))
	for _, m := range metas {
		byMedia[m.MediaID] = m
	}

	result := make([]MergedFeedItem, 0, len(items))
	for _, item := range items {
		result = append(result, shapeItem(item, byMedia[item.ID], displayName))
	}
	return result
}
