package paper

import (
	"fmt"

	"github.com/louisbranch/commercialpaper/internal/cash"
	"github.com/louisbranch/commercialpaper/internal/ledger"
	apperrors "github.com/louisbranch/commercialpaper/internal/platform/errors"
)

// Contract enforces the commercial paper lifecycle over transition
// proposals. Validation is pure: the verdict depends only on the
// proposal's contents, never on the clock or other ambient state, so
// every participant evaluating the same proposal reaches the same
// verdict.
type Contract struct{}

// Verify implements ledger.Contract. The proposal must declare exactly
// one paper intent; every lineage group is then checked against the
// rules for that intent, failing fast on the first violated predicate.
func (Contract) Verify(p ledger.Proposal) error {
	cmd, err := ledger.SingleCommand[Intent](p.Commands)
	if err != nil {
		return err
	}

	for _, group := range ledger.GroupStates(p, Record.GroupKey) {
		if err := verifyGroup(p, cmd, group); err != nil {
			return err
		}
	}
	return nil
}

func verifyGroup(p ledger.Proposal, cmd ledger.ResolvedCommand[Intent], group ledger.Group[Record, string]) error {
	switch cmd.Value {
	case IntentIssue:
		return verifyIssue(p, cmd, group)
	case IntentMove:
		return verifyMove(cmd, group)
	case IntentRedeem:
		return verifyRedeem(p, cmd, group)
	default:
		// Unreachable through the builders, which only ever attach the
		// closed intent set. Rejected anyway.
		return apperrors.WithMetadata(
			apperrors.CodeIntentUnrecognized,
			fmt.Sprintf("intent %q is not a commercial paper transition", string(cmd.Value)),
			map[string]string{"Intent": string(cmd.Value)},
		)
	}
}

// verifyIssue admits proposals that create exactly one new paper signed
// by its own issuer, with a positive face value, maturing strictly after
// the proposal's validity window closes.
func verifyIssue(p ledger.Proposal, cmd ledger.ResolvedCommand[Intent], group ledger.Group[Record, string]) error {
	if countPaperOutputs(p) != 1 {
		return violation("there is exactly one output paper")
	}
	for _, output := range group.Outputs {
		if !cmd.SignedBy(output.Issuance.Party.Key) {
			return violation("the paper is issued by a command signer")
		}
		if output.FaceValue.Quantity <= 0 {
			return violation("the face value must be positive")
		}
		if p.Window == nil || p.Window.NotAfter == nil {
			return missingWindow(IntentIssue)
		}
		if !p.Window.NotAfter.Before(output.MaturityAt) {
			return violation("the maturity date is not in the past")
		}
	}
	if len(group.Inputs) != 0 {
		return violation("can't reissue an existing state")
	}
	return nil
}

// verifyMove admits proposals that hand one paper to a new owner with
// the current owner's signature. Grouping already guarantees the output
// matches the input in everything but ownership.
func verifyMove(cmd ledger.ResolvedCommand[Intent], group ledger.Group[Record, string]) error {
	if len(group.Inputs) != 1 {
		return violation("there is exactly one input paper")
	}
	input := group.Inputs[0]
	if !cmd.SignedBy(input.Owner.Key) {
		return violation("the transaction is signed by the owner of the paper")
	}
	if len(group.Outputs) != 1 {
		return violation("the state is propagated")
	}
	return nil
}

// verifyRedeem admits proposals that destroy one matured paper in
// exchange for monetary outputs, anywhere in the proposal, paying the
// owner exactly the face value. The issuing authority annotation on the
// payment currency is disregarded for the comparison.
func verifyRedeem(p ledger.Proposal, cmd ledger.ResolvedCommand[Intent], group ledger.Group[Record, string]) error {
	if len(group.Inputs) != 1 {
		return violation("there is exactly one input paper")
	}
	input := group.Inputs[0]

	if p.Window == nil || p.Window.NotBefore == nil {
		return missingWindow(IntentRedeem)
	}
	if p.Window.NotBefore.Before(input.MaturityAt) {
		return violation("the paper must have matured")
	}

	received, err := cash.SumPayableTo(p.Outputs, input.Owner)
	if err != nil || !received.EqualIgnoringIssuer(input.FaceValue) {
		return violation("the received amount equals the face value")
	}
	if len(group.Outputs) != 0 {
		return violation("the paper must be destroyed")
	}
	if !cmd.SignedBy(input.Owner.Key) {
		return violation("the transaction is signed by the owner of the paper")
	}
	return nil
}

func countPaperOutputs(p ledger.Proposal) int {
	count := 0
	for _, out := range p.Outputs {
		if _, ok := out.(Record); ok {
			count++
		}
	}
	return count
}

// violation reports a failed lifecycle predicate by name.
func violation(rule string) error {
	return apperrors.WithMetadata(
		apperrors.CodeRuleViolation,
		rule,
		map[string]string{"Rule": rule},
	)
}

// missingWindow reports an absent validity window, which is a distinct
// failure from a window that is present but out of range.
func missingWindow(intent Intent) error {
	return apperrors.WithMetadata(
		apperrors.CodeWindowMissing,
		fmt.Sprintf("a validity window is required to %s commercial paper", string(intent)),
		map[string]string{"Intent": string(intent)},
	)
}
