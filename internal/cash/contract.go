package cash

import (
	"fmt"

	"github.com/louisbranch/commercialpaper/internal/ledger"
	apperrors "github.com/louisbranch/commercialpaper/internal/platform/errors"
)

// Intent declares which cash transition a proposal performs.
type Intent string

const (
	// IntentIssue mints new notes signed by their issuing authority.
	IntentIssue Intent = "issue"
	// IntentSpend redistributes existing notes among owners.
	IntentSpend Intent = "spend"
)

// Contract enforces conservation of cash: notes are minted only by
// their issuing authority, and spends balance exactly within each
// currency and issuer.
type Contract struct{}

// Verify implements ledger.Contract.
func (Contract) Verify(p ledger.Proposal) error {
	cmd, err := ledger.SingleCommand[Intent](p.Commands)
	if err != nil {
		return err
	}

	for _, group := range ledger.GroupStates(p, State.groupToken) {
		if err := verifyGroup(cmd, group); err != nil {
			return err
		}
	}
	return nil
}

func verifyGroup(cmd ledger.ResolvedCommand[Intent], group ledger.Group[State, token]) error {
	switch cmd.Value {
	case IntentIssue:
		return verifyIssue(cmd, group)
	case IntentSpend:
		return verifySpend(cmd, group)
	default:
		return apperrors.WithMetadata(
			apperrors.CodeIntentUnrecognized,
			fmt.Sprintf("intent %q is not a cash transition", string(cmd.Value)),
			map[string]string{"Intent": string(cmd.Value)},
		)
	}
}

func verifyIssue(cmd ledger.ResolvedCommand[Intent], group ledger.Group[State, token]) error {
	if len(group.Inputs) != 0 {
		return violation("existing notes cannot be reissued")
	}
	total, err := sumNotes(group.Outputs)
	if err != nil {
		return err
	}
	if total.Quantity <= 0 {
		return violation("the issued amount is positive")
	}
	if !cmd.SignedBy(group.Key.Issuer.Key) {
		return violation("the transaction is signed by the issuing authority")
	}
	return nil
}

func verifySpend(cmd ledger.ResolvedCommand[Intent], group ledger.Group[State, token]) error {
	in, err := sumNotes(group.Inputs)
	if err != nil {
		return err
	}
	out, err := sumNotes(group.Outputs)
	if err != nil {
		return err
	}
	if in.Quantity != out.Quantity {
		return violation("the amounts balance")
	}
	for _, note := range group.Inputs {
		if !cmd.SignedBy(note.Owner.Key) {
			return violation("the transaction is signed by the owners of the spent notes")
		}
	}
	return nil
}

// sumNotes totals notes that grouping already guarantees share one
// currency and issuer.
func sumNotes(notes []State) (ledger.Amount, error) {
	var (
		total ledger.Amount
		found bool
	)
	for _, note := range notes {
		if !found {
			total = note.Amount
			found = true
			continue
		}
		sum, err := total.Add(note.Amount)
		if err != nil {
			return ledger.Amount{}, err
		}
		total = sum
	}
	return total, nil
}

// violation reports a failed cash predicate by name.
func violation(rule string) error {
	return apperrors.WithMetadata(
		apperrors.CodeRuleViolation,
		rule,
		map[string]string{"Rule": rule},
	)
}
