package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/fundops/dealfill/internal/model"
)

func TestKey_StableAndVersioned(t *testing.T) {
	a := Key("548 market st, san francisco")
	b := Key("548 market st, san francisco")
	if a != b {
		t.Errorf("Expected identical inputs to share a key, got %q and %q", a, b)
	}
	if !strings.HasPrefix(a, "dealfill:v1:") {
		t.Errorf("Expected version prefix, got %q", a)
	}
	if a == Key("different input") {
		t.Error("Expected different inputs to produce different keys")
	}
}

func TestDisk_RoundTripAndExpiry(t *testing.T) {
	d := NewDisk(t.TempDir(), time.Hour)

	key := Key("lookup")
	if err := d.Set(key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := d.Get(key)
	if !found || string(got) != "payload" {
		t.Fatalf("Expected payload, got %q (found=%v)", got, found)
	}

	if err := d.Set(key, []byte("stale"), -time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := d.Get(key); found {
		t.Error("Expected expired entry to miss")
	}
}

func TestLayered_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	seed := NewDisk(dir, time.Hour)
	key := Key("promoted")
	if err := seed.Set(key, []byte("value"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	l := NewLayered(time.Hour, dir, time.Hour)

	got, found := l.Get(key)
	if !found || string(got) != "value" {
		t.Fatalf("Expected disk hit through the layered cache, got %q (found=%v)", got, found)
	}

	// Remove the disk entry; the promoted copy must still serve reads.
	if err := seed.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := l.Get(key); !found {
		t.Error("Expected promoted entry to serve from memory")
	}
}

func TestNew_FollowsConfig(t *testing.T) {
	if c := New(model.CacheConfig{Enabled: false}); c != nil {
		t.Error("Expected nil cache when disabled")
	}

	c := New(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute})
	if _, ok := c.(*Memory); !ok {
		t.Errorf("Expected memory-only cache without a directory, got %T", c)
	}

	c = New(model.CacheConfig{
		Enabled: true, Dir: t.TempDir(), MemoryTTL: time.Minute, DiskTTL: time.Hour,
	})
	if _, ok := c.(*Layered); !ok {
		t.Errorf("Expected layered cache with a directory, got %T", c)
	}
}
