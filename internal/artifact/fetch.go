package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// Fetcher retrieves one artifact's raw bytes by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// StoreConfig tunes the artifact store.
type StoreConfig struct {
	CacheDir      string
	Timeout       time.Duration
	MaxRetries    uint64
	RetryInterval time.Duration
}

// Store reads local artifact files directly and downloads http(s) URIs into
// the cache directory, reusing a cached copy on later startups. Transient
// download failures retry with exponential backoff; 4xx responses do not.
type Store struct {
	client        *http.Client
	cacheDir      string
	maxRetries    uint64
	retryInterval time.Duration
}

func NewStore(cfg StoreConfig) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = 3
	}
	interval := cfg.RetryInterval
	if interval == 0 {
		interval = 500 * time.Millisecond
	}
	return &Store{
		client:        &http.Client{Timeout: timeout},
		cacheDir:      cfg.CacheDir,
		maxRetries:    retries,
		retryInterval: interval,
	}
}

func (s *Store) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if !isRemote(uri) {
		data, err := os.ReadFile(uri)
		if err != nil {
			return nil, fmt.Errorf("read artifact %s: %w", uri, err)
		}
		return data, nil
	}

	cached, err := s.cachePath(uri)
	if err != nil {
		return nil, err
	}
	if data, err := os.ReadFile(cached); err == nil {
		log.WithField("artifact", cached).Debug("using cached artifact")
		return data, nil
	}

	data, err := s.download(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact cache dir: %w", err)
	}
	if err := os.WriteFile(cached, data, 0o600); err != nil {
		return nil, fmt.Errorf("cache artifact %s: %w", cached, err)
	}
	return data, nil
}

func (s *Store) download(ctx context.Context, uri string) ([]byte, error) {
	var data []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("download %s: status %d", uri, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("download %s: status %d", uri, resp.StatusCode))
		}
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("download %s: %w", uri, err)
		}
		return nil
	}

	pol := backoff.NewExponentialBackOff()
	pol.InitialInterval = s.retryInterval
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(pol, s.maxRetries), ctx))
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"uri": uri, "bytes": len(data)}).Info("artifact downloaded")
	return data, nil
}

func (s *Store) cachePath(uri string) (string, error) {
	name := path.Base(strings.SplitN(uri, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("artifact uri %q has no file name", uri)
	}
	return filepath.Join(s.cacheDir, name), nil
}

func isRemote(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

// ResolveRef turns an artifact file reference from the manifest into a full
// URI, resolving relative names against the manifest's own location.
func ResolveRef(manifestURI, ref string) string {
	if ref == "" || isRemote(ref) || filepath.IsAbs(ref) {
		return ref
	}
	if isRemote(manifestURI) {
		base := strings.SplitN(manifestURI, "?", 2)[0]
		if i := strings.LastIndex(base, "/"); i >= 0 {
			return base[:i+1] + ref
		}
		return ref
	}
	return filepath.Join(filepath.Dir(manifestURI), ref)
}
