package paper

import (
	"fmt"
	"time"

	"github.com/louisbranch/commercialpaper/internal/ledger"
	apperrors "github.com/louisbranch/commercialpaper/internal/platform/errors"
)

// FundsSelector sources monetary outputs for a redemption payment. It
// appends the inputs, outputs and commands of the payment to the
// builder, paying amount to payee, and reports an insufficient funds
// error on shortfall.
type FundsSelector interface {
	SelectAndSpend(b *ledger.Builder, amount ledger.Amount, payee ledger.Party) error
}

// BuildIssue starts a proposal that places new paper on the ledger,
// owned by its issuer. The caller attaches the validity window before
// validation; builders never validate.
func BuildIssue(issuance Issuance, faceValue ledger.Amount, maturityAt time.Time, coordinator ledger.Party) *ledger.Builder {
	b := ledger.NewBuilder(coordinator)
	b.AddOutput(Record{
		Issuance:   issuance,
		Owner:      issuance.Party,
		FaceValue:  faceValue,
		MaturityAt: maturityAt,
	})
	b.AddCommand(IntentIssue, issuance.Party.Key)
	return b
}

// BuildMove extends a proposal to hand the given paper to a new owner:
// the paper is consumed, an identical record owned by newOwner is
// created, and the current owner signs.
func BuildMove(b *ledger.Builder, current ledger.StateAndRef, newOwner ledger.Party) error {
	record, err := recordOf(current)
	if err != nil {
		return err
	}
	b.AddInput(current)
	b.AddOutput(record.WithOwner(newOwner))
	b.AddCommand(IntentMove, record.Owner.Key)
	return nil
}

// BuildRedeem extends a proposal to extinguish the given paper against
// payment: the funds selector appends monetary outputs covering the
// face value payable to the current owner, the paper is consumed with
// no replacement, and the owner signs. A shortfall reported by the
// selector aborts construction and is returned unchanged.
func BuildRedeem(b *ledger.Builder, current ledger.StateAndRef, funds FundsSelector) error {
	record, err := recordOf(current)
	if err != nil {
		return err
	}
	if err := funds.SelectAndSpend(b, record.FaceValue, record.Owner); err != nil {
		return err
	}
	b.AddInput(current)
	b.AddCommand(IntentRedeem, record.Owner.Key)
	return nil
}

func recordOf(current ledger.StateAndRef) (Record, error) {
	record, ok := current.State.(Record)
	if !ok {
		return Record{}, apperrors.WithMetadata(
			apperrors.CodeStateTypeMismatch,
			fmt.Sprintf("state at %s is not commercial paper", current.Ref),
			map[string]string{
				"Want": ContractID,
				"Got":  fmt.Sprintf("%T", current.State),
			},
		)
	}
	return record, nil
}
