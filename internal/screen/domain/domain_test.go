package domain

import (
	"testing"
	"time"

	"github.com/haukened/callgate/internal/screen/common/phone"
)

var recordNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestNewBlockedNumber(t *testing.T) {
	n, err := NewBlockedNumber(phone.NormalizedID{Digits: "18005551234", International: true}, recordNow)
	if err != nil {
		t.Fatalf("NewBlockedNumber error: %v", err)
	}
	if n.Digits != "18005551234" || !n.International {
		t.Errorf("unexpected record: %+v", n)
	}
	if n.ID().String() != "+18005551234" {
		t.Errorf("ID().String() = %q", n.ID().String())
	}

	if _, err := NewBlockedNumber(phone.NormalizedID{Digits: "18a0"}, recordNow); err == nil {
		t.Error("expected error for non-digit sequence")
	}
	if _, err := NewBlockedNumber(phone.NormalizedID{Digits: "1800"}, time.Time{}); err == nil {
		t.Error("expected error for zero createdAt")
	}
}

func TestNewBlockedCountry(t *testing.T) {
	c, err := NewBlockedCountry("91", recordNow)
	if err != nil {
		t.Fatalf("NewBlockedCountry error: %v", err)
	}
	if c.Region != "IN" || c.Name != "India" {
		t.Errorf("static table not applied: %+v", c)
	}

	// Unlisted prefixes are still valid rules, just without display data.
	c, err = NewBlockedCountry("999", recordNow)
	if err != nil {
		t.Fatalf("NewBlockedCountry error: %v", err)
	}
	if c.Region != "" || c.Name != "" {
		t.Errorf("unlisted prefix should have empty display data: %+v", c)
	}

	if _, err := NewBlockedCountry("", recordNow); err == nil {
		t.Error("expected error for empty prefix")
	}
	if _, err := NewBlockedCountry("+91", recordNow); err == nil {
		t.Error("expected error for non-digit prefix")
	}
}

func TestBlockedCountry_MatchesPrefix(t *testing.T) {
	c, err := NewBlockedCountry("91", recordNow)
	if err != nil {
		t.Fatalf("NewBlockedCountry error: %v", err)
	}
	if !c.MatchesPrefix("919876543210") {
		t.Error("91 should prefix-match 919876543210")
	}
	if c.MatchesPrefix("9") {
		t.Error("91 should not match a shorter sequence")
	}
	if c.MatchesPrefix("819876543210") {
		t.Error("91 should not match 81...")
	}
}

func TestNewWhitelistContact(t *testing.T) {
	c, err := NewWhitelistContact("  Mom ", phone.NormalizedID{Digits: "18005551234"}, recordNow)
	if err != nil {
		t.Fatalf("NewWhitelistContact error: %v", err)
	}
	if c.Name != "Mom" {
		t.Errorf("Name = %q, want trimmed", c.Name)
	}
	if !c.Covers("18005551234") {
		t.Error("contact should cover its own digits")
	}
	if !c.Covers("180055512349") {
		t.Error("contact should cover sequences it prefixes")
	}
	if c.Covers("1800555123") {
		t.Error("contact should not cover shorter sequences")
	}

	if _, err := NewWhitelistContact("x", phone.NormalizedID{}, recordNow); err == nil {
		t.Error("expected error for empty digits")
	}
}

func TestBlockEvent_Validate(t *testing.T) {
	ev := BlockEvent{At: recordNow, Reason: ReasonNumber, Digits: "1800"}
	if err := ev.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := (BlockEvent{At: recordNow, Reason: ReasonNone, Digits: "1800"}).Validate(); err == nil {
		t.Error("expected error for ReasonNone")
	}
	if err := (BlockEvent{Reason: ReasonNumber, Digits: "1800"}).Validate(); err == nil {
		t.Error("expected error for zero timestamp")
	}
}

func TestEnumStrings(t *testing.T) {
	if ReasonPattern.String() != "pattern" {
		t.Errorf("ReasonPattern = %q", ReasonPattern.String())
	}
	if SyncInFlight.String() != "syncing" {
		t.Errorf("SyncInFlight = %q", SyncInFlight.String())
	}
	if SyncPendingRetry.String() != "pending_retry" {
		t.Errorf("SyncPendingRetry = %q", SyncPendingRetry.String())
	}
	if ExtensionDisabled.String() != "disabled" {
		t.Errorf("ExtensionDisabled = %q", ExtensionDisabled.String())
	}
	if BlockReason(99).String() == "" {
		t.Error("unknown reason should still render")
	}
}

func TestDecisionHelpers(t *testing.T) {
	if AllowDecision().IsBlocked() {
		t.Error("AllowDecision should not be blocked")
	}
	d := BlockDecision(ReasonCountry, "91")
	if !d.IsBlocked() || d.Reason != ReasonCountry || d.MatchedRule != "91" {
		t.Errorf("unexpected decision: %+v", d)
	}
	tr := TrustedDecision("1800")
	if tr.IsBlocked() || !tr.Trusted {
		t.Errorf("unexpected trusted decision: %+v", tr)
	}
}
