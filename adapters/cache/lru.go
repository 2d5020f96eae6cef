package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/darijacast/server/domain/repositories"
)

const defaultCacheSize = 4096

// LRUTranslationCache is a bounded, process-lifetime memo of conversion
// results. Entries are never invalidated; the LRU bound replaces the
// unbounded-growth behavior of a plain map.
type LRUTranslationCache struct {
	entries *lru.Cache[string, string]
	logger  *zap.Logger
}

// Ensure LRUTranslationCache implements the TranslationCache interface
var _ repositories.TranslationCache = (*LRUTranslationCache)(nil)

// NewLRUTranslationCache creates a translation cache bounded to size entries.
// A non-positive size selects the default bound.
func NewLRUTranslationCache(size int, logger *zap.Logger) (*LRUTranslationCache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}

	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation cache: %w", err)
	}

	return &LRUTranslationCache{
		entries: entries,
		logger:  logger,
	}, nil
}

// Get returns the cached conversion for the cleaned input text.
func (c *LRUTranslationCache) Get(key string) (string, bool) {
	value, ok := c.entries.Get(key)
	if ok {
		c.logger.Debug("Translation cache hit", zap.String("key", key))
	}
	return value, ok
}

// Set stores a successful conversion result.
func (c *LRUTranslationCache) Set(key, value string) {
	evicted := c.entries.Add(key, value)
	if evicted {
		c.logger.Debug("Translation cache evicted oldest entry",
			zap.Int("size", c.entries.Len()))
	}
}

// Len returns the number of cached conversions.
func (c *LRUTranslationCache) Len() int {
	return c.entries.Len()
}
