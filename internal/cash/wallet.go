package cash

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/louisbranch/commercialpaper/internal/ledger"
	apperrors "github.com/louisbranch/commercialpaper/internal/platform/errors"
)

var (
	// ErrNotOwned indicates a note offered to a wallet held by someone else.
	ErrNotOwned = errors.New("note is not held by the wallet owner")
)

// Wallet tracks the unspent notes a party holds and selects funds for
// payments. It is the reference funds-selection collaborator for the
// redemption builder; access is serialized internally, so one wallet
// may serve concurrent builders.
type Wallet struct {
	mu       sync.Mutex
	owner    ledger.Party
	holdings []ledger.StateAndRef
}

// NewWallet creates an empty wallet for owner.
func NewWallet(owner ledger.Party) *Wallet {
	return &Wallet{owner: owner}
}

// Owner returns the party the wallet selects funds for.
func (w *Wallet) Owner() ledger.Party {
	return w.owner
}

// Add registers unspent notes with the wallet. Every note must be a
// cash state held by the wallet's owner.
func (w *Wallet) Add(notes ...ledger.StateAndRef) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, note := range notes {
		state, ok := note.State.(State)
		if !ok {
			return apperrors.WithMetadata(
				apperrors.CodeStateTypeMismatch,
				fmt.Sprintf("state at %s is not cash", note.Ref),
				map[string]string{"Want": ContractID, "Got": fmt.Sprintf("%T", note.State)},
			)
		}
		if state.Owner.Key != w.owner.Key {
			return ErrNotOwned
		}
		w.holdings = append(w.holdings, note)
	}
	return nil
}

// Balance totals the wallet's unspent notes in one currency across all
// issuing authorities.
func (w *Wallet) Balance(currency string) ledger.Amount {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balanceLocked(currency)
}

func (w *Wallet) balanceLocked(currency string) ledger.Amount {
	total := ledger.Amount{Currency: currency}
	for _, note := range w.holdings {
		amount := note.State.(State).Amount
		if amount.Currency == currency {
			total.Quantity += amount.Quantity
		}
	}
	return total
}

// SelectAndSpend sources a redemption payment from the wallet: it
// consumes enough notes to cover amount, appending them as inputs
// alongside a payment output to payee, a change output back to the
// owner when the notes overshoot, and the spend command. Notes from a
// single issuing authority settle a payment, so the resulting spend
// balances within its currency group. A shortfall leaves the builder
// unchanged and reports insufficient funds.
func (w *Wallet) SelectAndSpend(b *ledger.Builder, amount ledger.Amount, payee ledger.Party) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	pools := make(map[token][]int)
	for i, note := range w.holdings {
		state := note.State.(State)
		if state.Amount.Currency != amount.Currency {
			continue
		}
		pools[state.groupToken()] = append(pools[state.groupToken()], i)
	}

	// Try issuing authorities in a stable order so selection is
	// deterministic for a given wallet state.
	tokens := make([]token, 0, len(pools))
	for key := range pools {
		tokens = append(tokens, key)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].Issuer.Name != tokens[j].Issuer.Name {
			return tokens[i].Issuer.Name < tokens[j].Issuer.Name
		}
		return tokens[i].Issuer.Key < tokens[j].Issuer.Key
	})

	for _, key := range tokens {
		var (
			selected []int
			covered  int64
		)
		for _, i := range pools[key] {
			if covered >= amount.Quantity {
				break
			}
			selected = append(selected, i)
			covered += w.holdings[i].State.(State).Amount.Quantity
		}
		if covered < amount.Quantity {
			continue
		}

		for _, i := range selected {
			b.AddInput(w.holdings[i])
		}
		b.AddOutput(State{
			Amount: ledger.Amount{Quantity: amount.Quantity, Currency: amount.Currency, Issuer: key.Issuer},
			Owner:  payee,
		})
		if change := covered - amount.Quantity; change > 0 {
			b.AddOutput(State{
				Amount: ledger.Amount{Quantity: change, Currency: amount.Currency, Issuer: key.Issuer},
				Owner:  w.owner,
			})
		}
		b.AddCommand(IntentSpend, w.owner.Key)

		w.removeLocked(selected)
		return nil
	}

	return apperrors.WithMetadata(
		apperrors.CodeInsufficientFunds,
		fmt.Sprintf("cannot cover %s from the wallet of %s", amount, w.owner.Name),
		map[string]string{
			"Requested": amount.String(),
			"Available": w.balanceLocked(amount.Currency).String(),
		},
	)
}

func (w *Wallet) removeLocked(indexes []int) {
	drop := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		drop[i] = true
	}
	kept := w.holdings[:0]
	for i, note := range w.holdings {
		if !drop[i] {
			kept = append(kept, note)
		}
	}
	w.holdings = kept
}
