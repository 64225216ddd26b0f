package ratelimit

import (
	"testing"
	"time"
)

func TestAllow_ExhaustsBucket(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("user-1", "resend_verification")
		if !allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	allowed, wait := rl.Allow("user-1", "resend_verification")
	if allowed {
		t.Fatalf("fourth attempt should be limited")
	}
	if wait <= 0 || wait > 5*time.Minute {
		t.Fatalf("unexpected wait: %v", wait)
	}
}

func TestAllow_CallersAndActionsAreIndependent(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 3; i++ {
		rl.Allow("user-1", "resend_verification")
	}

	if allowed, _ := rl.Allow("user-2", "resend_verification"); !allowed {
		t.Fatalf("another caller must have its own bucket")
	}
	if allowed, _ := rl.Allow("user-1", "send_message"); !allowed {
		t.Fatalf("another action must have its own bucket")
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	tb := NewTokenBucket(1, 1, 10*time.Millisecond)

	if allowed, _ := tb.Allow(); !allowed {
		t.Fatalf("first call should pass")
	}
	if allowed, _ := tb.Allow(); allowed {
		t.Fatalf("bucket should be empty")
	}

	time.Sleep(15 * time.Millisecond)

	if allowed, _ := tb.Allow(); !allowed {
		t.Fatalf("bucket should have refilled")
	}
}
