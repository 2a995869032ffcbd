// Package ledgertest provides fixed identities and helpers for
// exercising contract validation in tests.
package ledgertest

import (
	"crypto/sha256"
	"testing"
	"time"

	"github.com/louisbranch/commercialpaper/internal/ledger"
)

// Fixed test identities shared across contract tests.
var (
	// MegaCorp issues commercial paper.
	MegaCorp = ledger.Party{Name: "megacorp", Key: "megacorp-key"}
	// Bank is the issuing authority for test currency.
	Bank = ledger.Party{Name: "bank", Key: "bank-key"}
	// Alice and Bob trade paper.
	Alice = ledger.Party{Name: "alice", Key: "alice-key"}
	Bob   = ledger.Party{Name: "bob", Key: "bob-key"}
	// Coordinator finalizes transitions.
	Coordinator = ledger.Party{Name: "coordinator", Key: "coordinator-key"}
)

// T0 is the instant test scenarios are anchored to.
var T0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Days offsets T0 by whole days.
func Days(n int) time.Time {
	return T0.AddDate(0, 0, n)
}

// Ref derives a deterministic state reference from a label, so tests
// can wire inputs without running a ledger.
func Ref(label string, index int) ledger.StateRef {
	return ledger.StateRef{TxHash: sha256.Sum256([]byte(label)), Index: index}
}

// MustAmount parses a decimal amount or fails the test.
func MustAmount(t *testing.T, value, currency string, issuer ledger.Party) ledger.Amount {
	t.Helper()
	amount, err := ledger.ParseAmount(value, currency, issuer)
	if err != nil {
		t.Fatalf("parse amount %s %s: %v", value, currency, err)
	}
	return amount
}
