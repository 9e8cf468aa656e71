package worker

import (
	"context"
	"testing"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://api.mapbox.com/geocoding"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// A different host has its own bucket
	if err := limiter.Wait(ctx, "http://acme.example.com"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_ExhaustsBurst(t *testing.T) {
	limiter := NewLimiter(1, 1)
	url := "http://acme.example.com"

	if !limiter.Allow(url) {
		t.Error("expected first request to pass")
	}
	if limiter.Allow(url) {
		t.Error("expected second request to fail (exhausted tokens)")
	}

	// Other hosts are unaffected
	if !limiter.Allow("http://other.example.com") {
		t.Error("expected allow for other host")
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	host := "slow.example.com"

	limiter.SetHostRate(host, 0.1, 1)

	if !limiter.Allow("http://" + host) {
		t.Error("expected first request to pass")
	}
	if limiter.Allow("http://" + host) {
		t.Error("expected second request to fail")
	}

	if !limiter.Allow("http://fast.example.com") {
		t.Error("expected other host to keep the default rate")
	}
}

func TestHostOf(t *testing.T) {
	host, err := hostOf("http://acme.example.com/about")
	if err != nil {
		t.Fatalf("hostOf failed: %v", err)
	}
	if host != "acme.example.com" {
		t.Errorf("expected acme.example.com, got %s", host)
	}

	if _, err := hostOf("::invalid"); err == nil {
		t.Error("expected error for invalid URL")
	}
}
