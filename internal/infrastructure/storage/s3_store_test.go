package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/config"
)

// fakeS3 is a minimal path-style object server
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.puts++
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestS3Store(t *testing.T) (*S3MetafieldStore, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string][]byte)}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	store, err := NewS3MetafieldStore(&config.S3Config{
		Endpoint:     server.URL,
		Region:       "us-east-1",
		Bucket:       "feeds-bucket",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
		Prefix:       "/feeds/",
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return store, fake
}

func TestNewS3MetafieldStore_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3MetafieldStore(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3MetafieldStore(&config.S3Config{AccessKey: "k", SecretKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("half a key pair returns error", func(t *testing.T) {
		_, err := NewS3MetafieldStore(&config.S3Config{Bucket: "b", AccessKey: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be set together")
	})

	t.Run("valid config creates store", func(t *testing.T) {
		store, err := NewS3MetafieldStore(&config.S3Config{
			Bucket:    "b",
			AccessKey: "k",
			SecretKey: "s",
			Prefix:    "feeds",
		})
		require.NoError(t, err)
		assert.Equal(t, "b", store.Bucket())
		assert.Equal(t, "feeds/acme.myshopify.com/instagram_feed.json", store.objectKey("acme.myshopify.com", "instagram_feed"))
	})
}

func TestS3MetafieldStore_PutGetDelete(t *testing.T) {
	store, fake := newTestS3Store(t)
	ctx := context.Background()

	got, err := store.Get(ctx, "acme.myshopify.com", "instagram_feed")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.Put(ctx, "acme.myshopify.com", "instagram_feed", sampleRecords()))
	assert.Equal(t, 1, fake.puts)

	fake.mu.Lock()
	body, ok := fake.objects["/feeds-bucket/feeds/acme.myshopify.com/instagram_feed.json"]
	fake.mu.Unlock()
	require.True(t, ok)
	assert.True(t, strings.Contains(string(body), `"tenant":"acme.myshopify.com"`))

	got, err = store.Get(ctx, "acme.myshopify.com", "instagram_feed")
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)

	require.NoError(t, store.Delete(ctx, "acme.myshopify.com", "instagram_feed"))
	got, err = store.Get(ctx, "acme.myshopify.com", "instagram_feed")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestS3MetafieldStore_InvalidRecordsNeverUploaded(t *testing.T) {
	store, fake := newTestS3Store(t)

	err := store.Put(context.Background(), "acme.myshopify.com", "instagram_feed", []integration.PublishRecord{
		{Key: integration.RecordProfilePictureURL, Type: integration.RecordTypeURL, Value: "not a url"},
	})
	require.ErrorIs(t, err, integration.ErrPublishFailed)
	assert.Equal(t, 0, fake.puts)
}
