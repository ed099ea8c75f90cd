package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedScheme is returned for URLs other than http and https
var ErrUnsupportedScheme = errors.New("unsupported url scheme")

// Cache resolves asset references to local files. Plain paths pass through;
// http(s) URLs are downloaded once into the cache directory.
type Cache struct {
	cacheDir   string
	client     *http.Client
	userAgent  string
	inFlight   map[string]chan struct{}
	inFlightMu sync.Mutex
}

// NewCache creates a cache storing downloads under cacheDir
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		userAgent: "MeshViewer/1.0",
		inFlight:  make(map[string]chan struct{}),
	}, nil
}

// IsRemote reports whether ref is a URL rather than a file path
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// cachePath returns the file a URL is stored in. The extension is kept so
// loaders can still pick a format from the name.
func (c *Cache) cachePath(u *url.URL) string {
	sum := sha256.Sum256([]byte(u.String()))
	return filepath.Join(c.cacheDir, hex.EncodeToString(sum[:8])+strings.ToLower(path.Ext(u.Path)))
}

// Resolve returns a local path for ref, downloading it if needed
func (c *Cache) Resolve(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if !IsRemote(ref) {
		if strings.Contains(ref, "://") {
			return "", fmt.Errorf("%s: %w", ref, ErrUnsupportedScheme)
		}
		if _, err := os.Stat(ref); err != nil {
			return "", err
		}
		return ref, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid asset url: %w", err)
	}
	p := c.cachePath(u)

	// Check cache first
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}

	if err := c.fetch(ctx, u, p); err != nil {
		return "", err
	}
	return p, nil
}

// IsCached checks whether a URL has already been downloaded
func (c *Cache) IsCached(ref string) bool {
	if !IsRemote(ref) {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	_, err = os.Stat(c.cachePath(u))
	return err == nil
}

// fetch downloads u into p. Concurrent fetches of the same URL share one
// request.
func (c *Cache) fetch(ctx context.Context, u *url.URL, p string) error {
	key := u.String()

	// Check if fetch is already in progress. A finished fetch renames its file
	// into place before leaving inFlight, so the stat under the lock is exact.
	c.inFlightMu.Lock()
	if _, err := os.Stat(p); err == nil {
		c.inFlightMu.Unlock()
		return nil
	}
	if ch, exists := c.inFlight[key]; exists {
		c.inFlightMu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("download of %s failed", key)
		}
		return nil
	}

	// Mark as in-flight
	ch := make(chan struct{})
	c.inFlight[key] = ch
	c.inFlightMu.Unlock()

	defer func() {
		c.inFlightMu.Lock()
		delete(c.inFlight, key)
		close(ch)
		c.inFlightMu.Unlock()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("asset server returned status %d for %s", resp.StatusCode, key)
	}

	// Write to a temp file first so a half-written download is never mistaken
	// for a cached one
	tmp, err := os.CreateTemp(c.cacheDir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to read asset data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store asset: %w", err)
	}
	return nil
}

// LoadAll resolves every ref concurrently and fails on the first error. The
// result has one path per ref, in order; empty refs stay empty.
func (c *Cache) LoadAll(ctx context.Context, refs ...string) ([]string, error) {
	paths := make([]string, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			p, err := c.Resolve(ctx, ref)
			if err != nil {
				return err
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
