// Package assets keeps an in-memory mirror of uploaded asset metadata,
// read through from the repository at startup and written through on every
// mutation. The cache is updated before the caller is acknowledged; a
// persistence failure is logged but never rolled back, favoring overlay
// availability over strict durability.
package assets

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/dom/broadcast-overlay/internal/repository"
)

type Cache struct {
	repo     repository.AssetRepository
	maxBytes int64
	mu       sync.RWMutex
	metadata map[string]domain.AssetMetadata
}

func NewCache(repo repository.AssetRepository, maxBytes int64) *Cache {
	return &Cache{
		repo:     repo,
		maxBytes: maxBytes,
		metadata: make(map[string]domain.AssetMetadata),
	}
}

// Load populates the cache from the repository. Called once at startup;
// a load failure leaves the cache empty rather than failing the process.
func (c *Cache) Load(ctx context.Context) {
	stored, err := c.repo.GetAll(ctx)
	if err != nil {
		log.Printf("assets: failed to load asset metadata: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range stored {
		c.metadata[a.Slot] = a.Metadata()
	}
}

func (c *Cache) Get(slot string) (domain.AssetMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	meta, ok := c.metadata[slot]
	return meta, ok
}

func (c *Cache) List() []domain.AssetMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.AssetMetadata, 0, len(c.metadata))
	for _, meta := range c.metadata {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

// Put stores an upload, overwriting any prior asset in the same slot. The
// upload timestamp is wall-clock millis and doubles as the cache-busting
// token handed to display clients.
func (c *Cache) Put(ctx context.Context, slot, fileName, contentType string, data []byte) (domain.AssetMetadata, error) {
	if slot == "" {
		return domain.AssetMetadata{}, domain.ErrEmptySlot
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return domain.AssetMetadata{}, domain.ErrAssetTooLarge
	}

	asset := &domain.Asset{
		Slot:        slot,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		UploadedAt:  time.Now().UnixMilli(),
		Data:        data,
	}

	c.mu.Lock()
	c.metadata[slot] = asset.Metadata()
	c.mu.Unlock()

	if err := c.repo.Put(ctx, asset); err != nil {
		log.Printf("assets: failed to persist asset %q: %v", slot, err)
	}

	return asset.Metadata(), nil
}

func (c *Cache) Delete(ctx context.Context, slot string) {
	c.mu.Lock()
	delete(c.metadata, slot)
	c.mu.Unlock()

	if err := c.repo.Delete(ctx, slot); err != nil {
		log.Printf("assets: failed to delete asset %q: %v", slot, err)
	}
}

// Content fetches the binary payload for serving. Reads go straight to the
// repository; only metadata is cached.
func (c *Cache) Content(ctx context.Context, slot string) (*domain.Asset, error) {
	return c.repo.Get(ctx, slot)
}

// URL builds the content URL for a slot, keyed by its upload token so a
// re-uploaded asset defeats any client-side cache.
func (c *Cache) URL(slot string, uploadedAt int64) string {
	return fmt.Sprintf("/api/v1/assets/%s/content?v=%d", slot, uploadedAt)
}
