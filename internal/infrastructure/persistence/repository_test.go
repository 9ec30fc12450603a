package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testShop  = "acme.myshopify.com"
	otherShop = "other.myshopify.com"
)

func newTestAccount(t *testing.T, tenant, remoteID string, expiresAt *time.Time) *integration.Account {
	t.Helper()
	account, err := integration.NewAccount(tenant,
		integration.Credential{Token: "token-" + remoteID, ExpiresAt: expiresAt},
		integration.Profile{ID: remoteID, Username: "user_" + remoteID, ProfilePictureURL: "https://cdn/" + remoteID + ".jpg"},
	)
	require.NoError(t, err)
	return account
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

func TestGormAccountRepository(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	soon := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	later := time.Now().UTC().Add(40 * 24 * time.Hour).Truncate(time.Second)

	t.Run("find missing account", func(t *testing.T) {
		_, err := repo.FindByTenant(ctx, testShop)
		assert.ErrorIs(t, err, integration.ErrAccountNotFound)
	})

	t.Run("save and find", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, newTestAccount(t, testShop, "111", &soon)))

		got, err := repo.FindByTenant(ctx, testShop)
		require.NoError(t, err)
		assert.Equal(t, "111", got.RemoteUserID)
		assert.Equal(t, "token-111", got.Credential.Token)
		assert.Equal(t, "user_111", got.DisplayName)
		require.NotNil(t, got.Credential.ExpiresAt)
		assert.True(t, soon.Equal(*got.Credential.ExpiresAt))
	})

	t.Run("save replaces the tenant's account", func(t *testing.T) {
		existing, err := repo.FindByTenant(ctx, testShop)
		require.NoError(t, err)
		require.NoError(t, existing.Reconnect(
			integration.Credential{Token: "short", Degraded: true},
			integration.Profile{ID: "222", Name: "Second"},
		))
		require.NoError(t, repo.Save(ctx, existing))

		got, err := repo.FindByTenant(ctx, testShop)
		require.NoError(t, err)
		assert.Equal(t, "222", got.RemoteUserID)
		assert.True(t, got.Credential.Degraded)
		assert.Nil(t, got.Credential.ExpiresAt)
		assert.Equal(t, "Second", got.DisplayName)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("find expiring accounts", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, newTestAccount(t, otherShop, "333", &soon)))
		require.NoError(t, repo.Save(ctx, newTestAccount(t, "late.myshopify.com", "444", &later)))

		expiring, err := repo.FindExpiringBefore(ctx, time.Now().Add(7*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, expiring, 1)
		assert.Equal(t, otherShop, expiring[0].TenantKey)
	})

	t.Run("delete by tenant", func(t *testing.T) {
		require.NoError(t, repo.DeleteByTenant(ctx, testShop))
		_, err := repo.FindByTenant(ctx, testShop)
		assert.ErrorIs(t, err, integration.ErrAccountNotFound)

		// deleting again is not an error
		assert.NoError(t, repo.DeleteByTenant(ctx, testShop))

		_, err = repo.FindByTenant(ctx, otherShop)
		assert.NoError(t, err)
	})
}

// ---------------------------------------------------------------------------
// Post metadata
// ---------------------------------------------------------------------------

func TestGormPostMetaRepository(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormPostMetaRepository(db)
	ctx := context.Background()

	t.Run("find one missing", func(t *testing.T) {
		_, err := repo.FindOne(ctx, testShop, "m1")
		assert.ErrorIs(t, err, integration.ErrPostMetaNotFound)
	})

	t.Run("upsert keeps a single row per media", func(t *testing.T) {
		meta, err := integration.NewPostMeta(testShop, "m1")
		require.NoError(t, err)
		meta.SetPinned(true)
		require.NoError(t, repo.Save(ctx, meta))

		require.NoError(t, meta.SetProducts([]integration.ProductRef{
			{ID: "gid://shopify/Product/1", Title: "Mug", Handle: "mug"},
		}))
		meta.SetHidden(true)
		require.NoError(t, repo.Save(ctx, meta))

		got, err := repo.FindOne(ctx, testShop, "m1")
		require.NoError(t, err)
		assert.True(t, got.Pinned)
		assert.True(t, got.Hidden)
		require.Len(t, got.Products, 1)
		assert.Equal(t, "mug", got.Products[0].Handle)

		all, err := repo.FindByTenant(ctx, testShop)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("patches of different fields both survive", func(t *testing.T) {
		pin, err := integration.NewPostMeta(testShop, "m3")
		require.NoError(t, err)
		pin.SetPinned(true)
		hide, err := integration.NewPostMeta(testShop, "m3")
		require.NoError(t, err)
		hide.SetHidden(true)

		require.NoError(t, repo.Patch(ctx, pin, []integration.PostMetaField{integration.PostMetaPinned}))
		require.NoError(t, repo.Patch(ctx, hide, []integration.PostMetaField{integration.PostMetaHidden}))

		got, err := repo.FindOne(ctx, testShop, "m3")
		require.NoError(t, err)
		assert.True(t, got.Pinned)
		assert.True(t, got.Hidden)
	})

	t.Run("concurrent patches keep every field", func(t *testing.T) {
		require.NoError(t, repo.Patch(ctx, mustPostMeta(t, "m4"), []integration.PostMetaField{integration.PostMetaPinned}))
		pin := mustPostMeta(t, "m4")
		pin.SetPinned(true)
		hide := mustPostMeta(t, "m4")
		hide.SetHidden(true)
		tag := mustPostMeta(t, "m4")
		require.NoError(t, tag.SetProducts([]integration.ProductRef{{ID: "p1", Title: "Mug"}}))
		patches := map[integration.PostMetaField]*integration.PostMeta{
			integration.PostMetaPinned:   pin,
			integration.PostMetaHidden:   hide,
			integration.PostMetaProducts: tag,
		}

		var wg sync.WaitGroup
		for field, meta := range patches {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, repo.Patch(ctx, meta, []integration.PostMetaField{field}))
			}()
		}
		wg.Wait()

		got, err := repo.FindOne(ctx, testShop, "m4")
		require.NoError(t, err)
		assert.True(t, got.Pinned)
		assert.True(t, got.Hidden)
		assert.Len(t, got.Products, 1)
	})

	t.Run("empty products round trip as empty list", func(t *testing.T) {
		meta, err := integration.NewPostMeta(testShop, "m2")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, meta))

		got, err := repo.FindOne(ctx, testShop, "m2")
		require.NoError(t, err)
		assert.NotNil(t, got.Products)
		assert.Empty(t, got.Products)
	})

	t.Run("tenants are isolated", func(t *testing.T) {
		other, err := integration.NewPostMeta(otherShop, "m1")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, other))

		require.NoError(t, repo.DeleteByTenant(ctx, testShop))
		mine, err := repo.FindByTenant(ctx, testShop)
		require.NoError(t, err)
		assert.Empty(t, mine)

		theirs, err := repo.FindByTenant(ctx, otherShop)
		require.NoError(t, err)
		assert.Len(t, theirs, 1)
	})
}

func mustPostMeta(t *testing.T, mediaID string) *integration.PostMeta {
	t.Helper()
	meta, err := integration.NewPostMeta(testShop, mediaID)
	require.NoError(t, err)
	return meta
}

func TestGormPostMetaRepository_DeleteByTenantSQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectExec(`DELETE FROM "post_meta" WHERE tenant_key = \$1`).
		WithArgs(testShop).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewGormPostMetaRepository(db.DB)
	require.NoError(t, repo.DeleteByTenant(context.Background(), testShop))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Feed settings
// ---------------------------------------------------------------------------

func TestGormFeedSettingsRepository(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormFeedSettingsRepository(db)
	ctx := context.Background()

	_, err := repo.FindByTenant(ctx, testShop)
	assert.ErrorIs(t, err, integration.ErrSettingsNotFound)

	settings := integration.DefaultFeedSettings()
	settings.Layout = integration.LayoutCarousel
	settings.PostLimit = 9
	require.NoError(t, repo.Save(ctx, &integration.StoredFeedSettings{
		TenantKey: testShop,
		Settings:  settings,
		UpdatedAt: time.Now().UTC(),
	}))

	settings.Title = "Shop the feed"
	require.NoError(t, repo.Save(ctx, &integration.StoredFeedSettings{
		TenantKey: testShop,
		Settings:  settings,
		UpdatedAt: time.Now().UTC(),
	}))

	got, err := repo.FindByTenant(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, settings, got.Settings)

	require.NoError(t, repo.DeleteByTenant(ctx, testShop))
	_, err = repo.FindByTenant(ctx, testShop)
	assert.ErrorIs(t, err, integration.ErrSettingsNotFound)
}

// ---------------------------------------------------------------------------
// Counters
// ---------------------------------------------------------------------------

func TestGormCounterRepository_IncrementDaily(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormCounterRepository(db)
	ctx := context.Background()

	today := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	yesterday := today.Add(-24 * time.Hour)

	require.NoError(t, repo.IncrementDaily(ctx, testShop, yesterday, analytics.EventView))
	require.NoError(t, repo.IncrementDaily(ctx, testShop, today, analytics.EventView))
	require.NoError(t, repo.IncrementDaily(ctx, testShop, today.Add(time.Hour), analytics.EventView))
	require.NoError(t, repo.IncrementDaily(ctx, testShop, today, analytics.EventClick))
	require.NoError(t, repo.IncrementDaily(ctx, otherShop, today, analytics.EventClick))

	rows, err := repo.FindDailySince(ctx, testShop, yesterday)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, analytics.DayOf(yesterday), rows[0].Day)
	assert.Equal(t, int64(1), rows[0].Views)
	assert.Equal(t, int64(0), rows[0].Clicks)
	assert.Equal(t, analytics.DayOf(today), rows[1].Day)
	assert.Equal(t, int64(2), rows[1].Views)
	assert.Equal(t, int64(1), rows[1].Clicks)

	rows, err = repo.FindDailySince(ctx, testShop, today)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGormCounterRepository_ConcurrentIncrements(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormCounterRepository(db)
	ctx := context.Background()

	const n = 50
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.IncrementDaily(ctx, testShop, day, analytics.EventView)
			errs <- repo.IncrementPost(ctx, testShop, "m1", analytics.EventClick, analytics.PostDisplay{})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rows, err := repo.FindDailySince(ctx, testShop, day)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(n), rows[0].Views)

	posts, err := repo.TopPosts(ctx, testShop, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(n), posts[0].Clicks)
}

func TestGormCounterRepository_IncrementPost(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormCounterRepository(db)
	ctx := context.Background()

	first := analytics.PostDisplay{MediaURL: "https://cdn/a.jpg", Permalink: "https://instagram.com/p/a"}
	require.NoError(t, repo.IncrementPost(ctx, testShop, "a", analytics.EventView, first))
	require.NoError(t, repo.IncrementPost(ctx, testShop, "a", analytics.EventClick, analytics.PostDisplay{}))
	require.NoError(t, repo.IncrementPost(ctx, testShop, "a", analytics.EventView, analytics.PostDisplay{MediaURL: "https://cdn/a2.jpg"}))

	require.NoError(t, repo.IncrementPost(ctx, testShop, "b", analytics.EventView, analytics.PostDisplay{}))
	require.NoError(t, repo.IncrementPost(ctx, testShop, "b", analytics.EventView, analytics.PostDisplay{}))
	require.NoError(t, repo.IncrementPost(ctx, testShop, "b", analytics.EventView, analytics.PostDisplay{}))

	require.NoError(t, repo.IncrementPost(ctx, testShop, "c", analytics.EventClick, analytics.PostDisplay{}))
	require.NoError(t, repo.IncrementPost(ctx, testShop, "c", analytics.EventClick, analytics.PostDisplay{}))

	posts, err := repo.TopPosts(ctx, testShop, 10)
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, "c", posts[0].MediaID)
	assert.Equal(t, "a", posts[1].MediaID)
	assert.Equal(t, "b", posts[2].MediaID)

	a := posts[1]
	assert.Equal(t, int64(2), a.Views)
	assert.Equal(t, int64(1), a.Clicks)
	assert.Equal(t, "https://cdn/a2.jpg", a.MediaURL)
	assert.Equal(t, "https://instagram.com/p/a", a.Permalink)

	limited, err := repo.TopPosts(ctx, testShop, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGormCounterRepository_DeleteByTenant(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormCounterRepository(db)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, shop := range []string{testShop, otherShop} {
		require.NoError(t, repo.IncrementDaily(ctx, shop, day, analytics.EventView))
		require.NoError(t, repo.IncrementPost(ctx, shop, "m", analytics.EventView, analytics.PostDisplay{}))
	}

	require.NoError(t, repo.DeleteByTenant(ctx, testShop))

	rows, err := repo.FindDailySince(ctx, testShop, day)
	require.NoError(t, err)
	assert.Empty(t, rows)
	posts, err := repo.TopPosts(ctx, testShop, 10)
	require.NoError(t, err)
	assert.Empty(t, posts)

	rows, err = repo.FindDailySince(ctx, otherShop, day)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
