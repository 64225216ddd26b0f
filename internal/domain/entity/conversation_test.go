package entity

import (
	"testing"
)

func TestPairKey_Directionless(t *testing.T) {
	if PairKey("u1", "u2") != PairKey("u2", "u1") {
		t.Fatalf("pair key must not depend on argument order")
	}
	if PairKey("u1", "u2") != "u1:u2" {
		t.Fatalf("unexpected key: %q", PairKey("u1", "u2"))
	}
}

func TestNewConversation_CanonicalOrder(t *testing.T) {
	c := NewConversation("zeta", "alpha")
	if c.UserAID != "alpha" || c.UserBID != "zeta" {
		t.Fatalf("participants not canonicalized: %q, %q", c.UserAID, c.UserBID)
	}
	if c.PairKey != "alpha:zeta" {
		t.Fatalf("unexpected pair key: %q", c.PairKey)
	}
}

func TestOtherParticipantID(t *testing.T) {
	c := NewConversation("a", "b")
	if got := c.OtherParticipantID("a"); got != "b" {
		t.Fatalf("got %q", got)
	}
	if got := c.OtherParticipantID("b"); got != "a" {
		t.Fatalf("got %q", got)
	}
	if got := c.OtherParticipantID("stranger"); got != "" {
		t.Fatalf("non-participant should get empty id, got %q", got)
	}
	if c.HasParticipant("stranger") {
		t.Fatalf("stranger is not a participant")
	}
}
