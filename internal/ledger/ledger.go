// Package ledger models transition proposals for a shared multi-party
// ledger: immutable state records, the commands declared over them, and
// the machinery to group, build and validate proposals contract by
// contract.
package ledger

import (
	"encoding/hex"
	"fmt"
)

// State is a single ledger record. Implementations declare the contract
// that governs their lifecycle via ContractID.
type State interface {
	ContractID() string
}

// TxHash is the content hash of the proposal that produced a state.
type TxHash [32]byte

// String returns the hash as lowercase hex.
func (h TxHash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseTxHash decodes the hex form produced by TxHash.String.
func ParseTxHash(s string) (TxHash, error) {
	var h TxHash
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return TxHash{}, fmt.Errorf("decode tx hash: %w", err)
	}
	if len(decoded) != len(h) {
		return TxHash{}, fmt.Errorf("tx hash must be %d bytes, got %d", len(h), len(decoded))
	}
	copy(h[:], decoded)
	return h, nil
}

// StateRef points at one output of a prior proposal.
type StateRef struct {
	TxHash TxHash
	Index  int
}

// String formats the reference as hash:index.
func (r StateRef) String() string {
	return fmt.Sprintf("%s:%d", r.TxHash, r.Index)
}

// StateAndRef carries a state together with the reference it was resolved
// from.
type StateAndRef struct {
	Ref   StateRef
	State State
}
