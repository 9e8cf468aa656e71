// Package cache provides the layered lookup cache that keeps repeated
// geocoding and enrichment calls off the network.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/fundops/dealfill/internal/model"
)

// Cache is the storage contract shared by the memory, disk and layered
// implementations.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from an arbitrary lookup input. The
// version prefix lets a format change invalidate old entries wholesale.
func Key(input string) string {
	hash := sha256.Sum256([]byte(input))
	return "dealfill:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg: layered memory+disk when a
// directory is configured, memory-only otherwise, nil when disabled.
// Callers treat a nil Cache as "no caching".
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return NewMemory(cfg.MemoryTTL)
	}
	return NewLayered(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}
