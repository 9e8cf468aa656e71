package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Disk is the persistent cache layer. Each entry is one JSON file under
// the cache directory; expiry is checked on read and lazily reaped.
type Disk struct {
	dir        string
	defaultTTL time.Duration
}

// NewDisk creates a disk cache rooted at dir. The directory is created on
// first write.
func NewDisk(dir string, defaultTTL time.Duration) *Disk {
	return &Disk{dir: dir, defaultTTL: defaultTTL}
}

type diskEntry struct {
	Payload   []byte    `json:"payload"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get returns the stored value when present and unexpired. Expired and
// unreadable entries are removed.
func (d *Disk) Get(key string) ([]byte, bool) {
	path := d.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Payload, true
}

// Set stores value under key. A zero ttl uses the cache default.
func (d *Disk) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = d.defaultTTL
	}

	now := time.Now()
	data, err := json.Marshal(diskEntry{
		Payload:   value,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	if err := os.WriteFile(d.path(key), data, 0644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Delete removes key's entry file.
func (d *Disk) Delete(key string) error {
	return os.Remove(d.path(key))
}

// Clear removes the whole cache directory.
func (d *Disk) Clear() error {
	return os.RemoveAll(d.dir)
}

func (d *Disk) path(key string) string {
	return filepath.Join(d.dir, key+".json")
}
