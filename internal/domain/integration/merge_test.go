package integration

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawItems(ids ...string) []RawMediaItem {
	items := make([]RawMediaItem, len(ids))
	for i, id := range ids {
		items[i] = RawMediaItem{
			ID:        id,
			MediaType: MediaTypeImage,
			MediaURL:  "https://cdn.example.com/" + id + ".jpg",
			Permalink: "https://instagram.com/p/" + id,
			Username:  "acme",
			Timestamp: time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC),
		}
	}
	return items
}

func ids(items []MergedFeedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestMerge_DefaultsWithoutMeta(t *testing.T) {
	out := Merge(rawItems("a", "b", "c"), nil, MergeOptions{DisplayName: "acme"})

	require.Len(t, out, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(out))
	for _, it := range out {
		assert.False(t, it.Pinned)
		assert.False(t, it.Hidden)
		assert.NotNil(t, it.Products)
		assert.Empty(t, it.Products)
		assert.NotNil(t, it.Children)
	}
}

func TestMerge_DropsHiddenAndPartitionsPinned(t *testing.T) {
	metas := []PostMeta{
		{MediaID: "b", Hidden: true},
		{MediaID: "c", Pinned: true},
		{MediaID: "e", Pinned: true, Products: []ProductRef{{ID: "p1", Title: "Mug"}}},
	}

	out := Merge(rawItems("a", "b", "c", "d", "e"), metas, MergeOptions{})

	assert.Equal(t, []string{"c", "e", "a", "d"}, ids(out))
	assert.Equal(t, "p1", out[1].Products[0].ID)
}

func TestMerge_PinnedOnlyAppliesAfterHidden(t *testing.T) {
	metas := []PostMeta{
		{MediaID: "a", Pinned: true, Hidden: true},
		{MediaID: "c", Pinned: true},
	}

	out := Merge(rawItems("a", "b", "c"), metas, MergeOptions{PinnedOnly: true})

	assert.Equal(t, []string{"c"}, ids(out))
}

func TestMerge_SubstitutesDisplayName(t *testing.T) {
	items := rawItems("a", "b")
	items[0].Username = ""

	out := Merge(items, nil, MergeOptions{DisplayName: "Acme Store"})

	assert.Equal(t, "Acme Store", out[0].Username)
	assert.Equal(t, "acme", out[1].Username)
}

func TestMerge_VideoUsesThumbnail(t *testing.T) {
	items := []RawMediaItem{{ID: "v", MediaType: MediaTypeVideo, MediaURL: "https://x/v.mp4", ThumbnailURL: "https://x/v.jpg"}}

	out := Merge(items, nil, MergeOptions{})

	require.Len(t, out, 1)
	assert.Equal(t, "https://x/v.jpg", out[0].MediaURL)
	assert.Equal(t, "https://x/v.jpg", out[0].ThumbnailURL)
}

func TestMerge_RandomizedInvariants(t *testing.T) {
	faker := gofakeit.New(42)

	for round := 0; round < 200; round++ {
		n := faker.IntRange(0, 30)
		items := make([]RawMediaItem, n)
		position := make(map[string]int, n)
		var metas []PostMeta
		hidden := make(map[string]bool)
		pinned := make(map[string]bool)

		for i := 0; i < n; i++ {
			id := faker.UUID()
			items[i] = RawMediaItem{ID: id, MediaType: MediaTypeImage, Caption: faker.Username()}
			position[id] = i
			if faker.Bool() {
				m := PostMeta{MediaID: id, Pinned: faker.Bool(), Hidden: faker.Bool()}
				hidden[id] = m.Hidden
				pinned[id] = m.Pinned
				metas = append(metas, m)
			}
		}
		pinnedOnly := faker.Bool()

		out := Merge(items, metas, MergeOptions{PinnedOnly: pinnedOnly})

		seenUnpinned := false
		lastPinned, lastUnpinned := -1, -1
		for _, it := range out {
			assert.False(t, hidden[it.ID], "hidden item published")
			assert.False(t, it.Hidden)
			if pinnedOnly {
				assert.True(t, pinned[it.ID], "unpinned item published in pinned-only mode")
			}
			if it.Pinned {
				assert.False(t, seenUnpinned, "pinned item after unpinned item")
				assert.Greater(t, position[it.ID], lastPinned)
				lastPinned = position[it.ID]
			} else {
				seenUnpinned = true
				assert.Greater(t, position[it.ID], lastUnpinned)
				lastUnpinned = position[it.ID]
			}
		}

		expected := 0
		for _, it := range items {
			if hidden[it.ID] || (pinnedOnly && !pinned[it.ID]) {
				continue
			}
			expected++
		}
		assert.Len(t, out, expected)
	}
}

func TestAnnotate_KeepsHiddenAndOrder(t *testing.T) {
	metas := []PostMeta{
		{MediaID: "b", Hidden: true},
		{MediaID: "c", Pinned: true},
	}

	out := Annotate(rawItems("a", "b", "c"), metas, "acme")

	assert.Equal(t, []string{"a", "b", "c"}, ids(out))
	assert.True(t, out[1].Hidden)
	assert.True(t, out[2].Pinned)
}
