package slideshow

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultPreloadCacheSize = 64

// PreloadCache remembers which image URLs the surface has already been asked
// to warm so the next photo is never requested twice.
type PreloadCache struct {
	renderer Renderer
	cache    *lru.Cache[string, int]
}

func NewPreloadCache(renderer Renderer, size int) (*PreloadCache, error) {
	if size <= 0 {
		size = defaultPreloadCacheSize
	}
	cache, err := lru.New[string, int](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create preload cache: %w", err)
	}
	return &PreloadCache{renderer: renderer, cache: cache}, nil
}

// Preload asks the surface to fetch url unless it already has. It returns
// whether a preload was issued.
func (p *PreloadCache) Preload(index int, url string) bool {
	if url == "" || p.cache.Contains(url) {
		return false
	}
	p.cache.Add(url, index)
	p.renderer.Preload(url)
	slog.Debug("preloading image", "index", index, "url", url)
	return true
}

// Purge forgets every preloaded URL.
func (p *PreloadCache) Purge() {
	p.cache.Purge()
}

func (p *PreloadCache) Len() int {
	return p.cache.Len()
}
