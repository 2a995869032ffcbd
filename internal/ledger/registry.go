package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/commercialpaper/internal/platform/errors"
)

var (
	// ErrContractIDRequired indicates a missing contract identifier.
	ErrContractIDRequired = errors.New("contract id is required")
	// ErrContractRequired indicates a nil contract implementation.
	ErrContractRequired = errors.New("contract is required")
)

// Contract validates transition proposals for the states it governs. A
// contract sees the whole proposal, not just its own states, so it can
// reason about cross-contract obligations such as payment outputs.
type Contract interface {
	Verify(p Proposal) error
}

// Registry maps contract identifiers to their implementations and
// dispatches proposal verification. Register all contracts at wiring
// time; the registry is read-only afterwards.
type Registry struct {
	contracts map[string]Contract
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{contracts: make(map[string]Contract)}
}

// Register adds a contract under its identifier.
func (r *Registry) Register(id string, c Contract) error {
	if r == nil {
		return errors.New("registry is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrContractIDRequired
	}
	if c == nil {
		return ErrContractRequired
	}
	if r.contracts == nil {
		r.contracts = make(map[string]Contract)
	}
	if _, exists := r.contracts[id]; exists {
		return fmt.Errorf("contract already registered: %s", id)
	}
	r.contracts[id] = c
	return nil
}

// Contract returns the registered implementation for a contract id.
func (r *Registry) Contract(id string) (Contract, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.contracts[id]
	return c, ok
}

// ContractIDs returns a stable, sorted snapshot of registered ids.
func (r *Registry) ContractIDs() []string {
	if r == nil || len(r.contracts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(r.contracts))
	for id := range r.contracts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Verify runs every contract the proposal touches, in the order their
// states first appear, scanning inputs before outputs. The first failure
// stops verification; a state whose contract has no registration fails
// with a contract-unknown error.
func (r *Registry) Verify(p Proposal) error {
	if r == nil {
		return errors.New("registry is required")
	}

	var ids []string
	seen := make(map[string]bool)
	record := func(s State) {
		if s == nil {
			return
		}
		id := s.ContractID()
		if seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, in := range p.Inputs {
		record(in.State)
	}
	for _, out := range p.Outputs {
		record(out)
	}

	for _, id := range ids {
		c, ok := r.contracts[id]
		if !ok {
			return apperrors.WithMetadata(
				apperrors.CodeContractUnknown,
				fmt.Sprintf("no contract registered for %s", id),
				map[string]string{"Contract": id},
			)
		}
		if err := c.Verify(p); err != nil {
			return err
		}
	}
	return nil
}
