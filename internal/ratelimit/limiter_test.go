// internal/ratelimit/limiter_test.go
package ratelimit

import (
	"context"
	"testing"
)

func TestAllowEnforcesPerHostBudget(t *testing.T) {
	dl := NewDomainLimiter(0.01, 1)

	if !dl.Allow("https://a.example/x.png") {
		t.Fatal("first request should pass")
	}
	if dl.Allow("https://a.example/y.png") {
		t.Error("second request should be throttled before refill")
	}
	// Hosts are limited independently.
	if !dl.Allow("https://b.example/z.png") {
		t.Error("different host should have its own budget")
	}
}

func TestWaitPassesUnparseableURLs(t *testing.T) {
	dl := NewDomainLimiter(0.01, 1)
	if err := dl.Wait(context.Background(), "::not-a-url::"); err != nil {
		t.Errorf("Wait on unparseable URL = %v, want nil", err)
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	dl := NewDomainLimiter(0.01, 1)
	dl.Allow("https://a.example/x.png") // drain the bucket

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := dl.Wait(ctx, "https://a.example/y.png"); err == nil {
		t.Error("Wait should fail when the context is cancelled")
	}
}

func TestDefaultsApplied(t *testing.T) {
	dl := NewDomainLimiter(0, 0)
	for i := 0; i < 5; i++ {
		if !dl.Allow("https://a.example/") {
			t.Fatalf("default burst should admit request %d", i+1)
		}
	}
}
