package preview

import (
	"context"
	"fmt"
	"image"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	// Register decoders for the formats scene media arrives in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/bobarin/reelcut/internal/models"
	"golang.org/x/sync/errgroup"
)

// ImageCache maps media references (URLs or local paths) to decoded images.
// It is append-only for a project's lifetime except on Destroy. A failed
// load is dropped silently — the renderer falls back to a placeholder and
// playback is never interrupted; the next Preload retries.
type ImageCache struct {
	mu      sync.RWMutex
	images  map[string]image.Image
	baseDir string // resolved against relative local paths
	client  *http.Client
}

func NewImageCache(baseDir string) *ImageCache {
	return &ImageCache{
		images:  make(map[string]image.Image),
		baseDir: baseDir,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Get returns the decoded image for ref if it has loaded.
func (c *ImageCache) Get(ref string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[ref]
	return img, ok
}

// Put stores a decoded image directly (used by tests and pre-decoded assets).
func (c *ImageCache) Put(ref string, img image.Image) {
	c.mu.Lock()
	c.images[ref] = img
	c.mu.Unlock()
}

// Preload fetches and decodes every media reference in scenes concurrently.
// Individual failures are logged and skipped so one broken asset never
// blocks the rest; the render loop picks up whatever resolved on its next
// frame.
func (c *ImageCache) Preload(ctx context.Context, scenes []models.Scene) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i := range scenes {
		ref := scenes[i].MediaRef()
		if ref == "" || scenes[i].Type.IsTextual() {
			continue
		}
		if _, ok := c.Get(ref); ok {
			continue
		}
		g.Go(func() error {
			img, err := c.load(ctx, ref)
			if err != nil {
				log.Printf("[Preview] asset load failed for %s: %v", ref, err)
				return nil
			}
			c.Put(ref, img)
			return nil
		})
	}

	_ = g.Wait()
}

// LoadBackground fetches a single named asset (text-scene backdrops) under a
// stable key.
func (c *ImageCache) LoadBackground(ctx context.Context, key, ref string) {
	if ref == "" {
		return
	}
	img, err := c.load(ctx, ref)
	if err != nil {
		log.Printf("[Preview] background load failed for %s: %v", ref, err)
		return
	}
	c.Put(key, img)
}

func (c *ImageCache) load(ctx context.Context, ref string) (image.Image, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		img, _, err := image.Decode(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("decode failed: %w", err)
		}
		return img, nil
	}

	path := ref
	if c.baseDir != "" && !strings.HasPrefix(ref, "/") {
		path = c.baseDir + "/" + ref
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return img, nil
}

// Len reports the number of cached entries.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Destroy clears the cache. Must run before a project is unloaded so held
// image memory is released.
func (c *ImageCache) Destroy() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}
