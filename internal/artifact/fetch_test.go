package artifact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(StoreConfig{
		CacheDir:      t.TempDir(),
		Timeout:       5 * time.Second,
		MaxRetries:    2,
		RetryInterval: time.Millisecond,
	})
}

func TestStoreFetch_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o600))

	data, err := testStore(t).Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestStoreFetch_LocalFileMissing(t *testing.T) {
	_, err := testStore(t).Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestStoreFetch_DownloadCachesOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("model-bytes"))
	}))
	defer srv.Close()

	store := testStore(t)
	uri := srv.URL + "/artifacts/model.json?signature=abc"

	first, err := store.Fetch(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, []byte("model-bytes"), first)

	second, err := store.Fetch(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, int32(1), hits.Load(), "second fetch must come from the cache")

	// Cached under the URL's file name, query string stripped.
	cached, err := os.ReadFile(filepath.Join(store.cacheDir, "model.json"))
	require.NoError(t, err)
	assert.Equal(t, first, cached)
}

func TestStoreFetch_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := testStore(t).Fetch(context.Background(), srv.URL+"/scaler.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, int32(3), hits.Load())
}

func TestStoreFetch_NoRetryOnNotFound(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testStore(t).Fetch(context.Background(), srv.URL+"/missing.json")
	assert.ErrorContains(t, err, "status 404")
	assert.Equal(t, int32(1), hits.Load(), "4xx responses must not be retried")
}

func TestStoreFetch_GivesUpAfterRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testStore(t).Fetch(context.Background(), srv.URL+"/broken.json")
	assert.Error(t, err)
	assert.Equal(t, int32(3), hits.Load(), "initial try plus two retries")
}

func TestResolveRef(t *testing.T) {
	cases := []struct {
		name     string
		manifest string
		ref      string
		want     string
	}{
		{"relative against url", "https://cdn.test/bundles/v2/manifest.json", "model.json", "https://cdn.test/bundles/v2/model.json"},
		{"relative against url with query", "https://cdn.test/bundles/manifest.json?sig=1", "scaler.json", "https://cdn.test/bundles/scaler.json"},
		{"relative against local path", "models/manifest.json", "encoder.json", filepath.Join("models", "encoder.json")},
		{"absolute ref untouched", "models/manifest.json", "/srv/model.json", "/srv/model.json"},
		{"remote ref untouched", "models/manifest.json", "https://cdn.test/m.json", "https://cdn.test/m.json"},
		{"empty ref", "models/manifest.json", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveRef(tc.manifest, tc.ref))
		})
	}
}
