// Package cash provides the monetary states used to settle commercial
// paper redemptions, the contract governing their issue and spend, and
// a reference wallet for selecting payment funds.
package cash

import (
	"fmt"

	"github.com/louisbranch/commercialpaper/internal/ledger"
)

// ContractID is the registry identifier for the cash contract.
const ContractID = "commercialpaper/cash"

// State is an amount of issued currency held by a party.
type State struct {
	Amount ledger.Amount
	Owner  ledger.Party
}

// ContractID implements ledger.State.
func (s State) ContractID() string { return ContractID }

// String renders the note for logs and demo output.
func (s State) String() string {
	return fmt.Sprintf("%s held by %s", s.Amount, s.Owner.Name)
}

// token is the grouping key for cash. Notes of one currency from one
// issuing authority are fungible with each other and nothing else.
type token struct {
	Currency string
	Issuer   ledger.Party
}

func (s State) groupToken() token {
	return token{Currency: s.Amount.Currency, Issuer: s.Amount.Issuer}
}

// SumPayableTo totals the cash outputs payable to payee, matched by
// key. The issuing authority annotation is disregarded, so the total
// carries no issuer; all payments must share one currency. No payments
// at all sum to the zero amount.
func SumPayableTo(outputs []ledger.State, payee ledger.Party) (ledger.Amount, error) {
	var (
		total ledger.Amount
		found bool
	)
	for _, out := range outputs {
		note, ok := out.(State)
		if !ok || note.Owner.Key != payee.Key {
			continue
		}
		payment := ledger.Amount{Quantity: note.Amount.Quantity, Currency: note.Amount.Currency}
		if !found {
			total = payment
			found = true
			continue
		}
		sum, err := total.Add(payment)
		if err != nil {
			return ledger.Amount{}, err
		}
		total = sum
	}
	return total, nil
}
