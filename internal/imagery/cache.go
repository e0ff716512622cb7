package imagery

import (
	"context"
	"image"
	"image/color"
	"sync"
)

// ThumbnailSize is the edge length of cached thumbnails.
const ThumbnailSize = 128

// Entry is the cached rendering data of one image reference.
type Entry struct {
	Ref       string
	Thumbnail *image.NRGBA // nil when the image failed to load
	Average   color.NRGBA
	Err       error
}

// Color returns the average color, or a placeholder when the image is missing.
func (e *Entry) Color() color.NRGBA {
	if e == nil || e.Thumbnail == nil {
		ref := ""
		if e != nil {
			ref = e.Ref
		}
		return Placeholder(ref)
	}
	return e.Average
}

// Cache loads each image reference once and keeps its thumbnail.
type Cache struct {
	mu      sync.RWMutex
	loader  *Loader
	entries map[string]*Entry
}

// NewCache creates a cache backed by loader.
func NewCache(loader *Loader) *Cache {
	if loader == nil {
		loader = NewLoader()
	}
	return &Cache{
		loader:  loader,
		entries: make(map[string]*Entry),
	}
}

// Lookup returns the cached entry for ref without loading it.
func (c *Cache) Lookup(ref string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[ref]
	return e, ok
}

// Get returns the entry for ref, loading it on first use. Failed loads are
// cached too so a broken reference is only tried once.
func (c *Cache) Get(ctx context.Context, ref string) *Entry {
	if e, ok := c.Lookup(ref); ok {
		return e
	}

	e := &Entry{Ref: ref}
	img, err := c.loader.Load(ctx, ref)
	if err != nil {
		e.Err = err
	} else {
		e.Thumbnail = Cover(img, ThumbnailSize, ThumbnailSize)
		e.Average = AverageColor(e.Thumbnail)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[ref]; ok {
		return existing
	}
	c.entries[ref] = e
	return e
}

// Preload loads every distinct reference, returning how many failed.
func (c *Cache) Preload(ctx context.Context, refs []string) int {
	failed := 0
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		if ctx.Err() != nil {
			break
		}
		if c.Get(ctx, ref).Err != nil {
			failed++
		}
	}
	return failed
}

// Len returns the number of cached references.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
