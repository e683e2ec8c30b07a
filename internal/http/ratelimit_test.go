package http

import (
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.allow("a") || !rl.allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("a") {
		t.Fatal("third request in the window should be rejected")
	}
	if !rl.allow("b") {
		t.Fatal("other clients have their own window")
	}

	now = now.Add(61 * time.Second)
	if !rl.allow("a") {
		t.Fatal("a new window should reset the counter")
	}

	now = now.Add(5 * time.Minute)
	rl.allow("a")
	now = now.Add(6 * time.Minute)
	if removed := rl.CleanExpired(); removed != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", removed)
	}
	if rl.activeClients() != 1 {
		t.Fatalf("activeClients = %d, want 1", rl.activeClients())
	}
}
