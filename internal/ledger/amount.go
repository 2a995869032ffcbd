package ledger

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	apperrors "github.com/louisbranch/commercialpaper/internal/platform/errors"
)

// Amount is a non-negative quantity of a currency, counted in the
// currency's smallest unit, annotated with the party that issued it.
type Amount struct {
	Quantity int64
	Currency string
	Issuer   Party
}

// currencyExponents maps ISO 4217 codes to their minor unit exponent.
// Codes not listed here default to two decimal places.
var currencyExponents = map[string]int32{
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"BRL": 2,
	"JPY": 0,
}

func currencyExponent(currency string) int32 {
	if exp, ok := currencyExponents[currency]; ok {
		return exp
	}
	return 2
}

// NewAmount builds an amount from a quantity already expressed in the
// currency's smallest unit. Negative quantities are rejected.
func NewAmount(quantity int64, currency string, issuer Party) (Amount, error) {
	if quantity < 0 {
		return Amount{}, apperrors.WithMetadata(
			apperrors.CodeAmountInvalid,
			fmt.Sprintf("amount quantity must not be negative, got %d", quantity),
			map[string]string{"Value": fmt.Sprintf("%d", quantity)},
		)
	}
	return Amount{Quantity: quantity, Currency: currency, Issuer: issuer}, nil
}

// ParseAmount builds an amount from a decimal string such as "1000.00".
// The value must be non-negative and must not carry more precision than
// the currency's smallest unit.
func ParseAmount(value, currency string, issuer Party) (Amount, error) {
	invalid := func() error {
		return apperrors.WithMetadata(
			apperrors.CodeAmountInvalid,
			fmt.Sprintf("value %q is not a valid %s amount", value, currency),
			map[string]string{"Value": value},
		)
	}

	dec, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, invalid()
	}
	if dec.IsNegative() {
		return Amount{}, invalid()
	}
	shifted := dec.Shift(currencyExponent(currency))
	if !shifted.IsInteger() {
		return Amount{}, invalid()
	}
	units := shifted.BigInt()
	if !units.IsInt64() {
		return Amount{}, invalid()
	}
	return Amount{Quantity: units.Int64(), Currency: currency, Issuer: issuer}, nil
}

// Add returns the sum of two amounts. The currencies and issuers must
// match exactly; the sum must not overflow.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency || a.Issuer != b.Issuer {
		return Amount{}, apperrors.WithMetadata(
			apperrors.CodeAmountCurrencyMismatch,
			fmt.Sprintf("cannot add %s issued by %s to %s issued by %s",
				a.Currency, a.Issuer.Name, b.Currency, b.Issuer.Name),
			map[string]string{"Left": a.Currency, "Right": b.Currency},
		)
	}
	if b.Quantity > math.MaxInt64-a.Quantity {
		return Amount{}, apperrors.WithMetadata(
			apperrors.CodeAmountInvalid,
			fmt.Sprintf("amount sum overflows: %d + %d", a.Quantity, b.Quantity),
			map[string]string{"Value": fmt.Sprintf("%d+%d", a.Quantity, b.Quantity)},
		)
	}
	return Amount{Quantity: a.Quantity + b.Quantity, Currency: a.Currency, Issuer: a.Issuer}, nil
}

// Equal reports whether the two amounts match in quantity, currency and
// issuer.
func (a Amount) Equal(b Amount) bool {
	return a == b
}

// EqualIgnoringIssuer reports whether the two amounts match in quantity
// and currency, disregarding who issued them.
func (a Amount) EqualIgnoringIssuer(b Amount) bool {
	return a.Quantity == b.Quantity && a.Currency == b.Currency
}

// IsZero reports whether the amount carries no quantity.
func (a Amount) IsZero() bool {
	return a.Quantity == 0
}

// String renders the amount in major units, such as "1000.00 USD".
func (a Amount) String() string {
	exp := currencyExponent(a.Currency)
	return fmt.Sprintf("%s %s", decimal.New(a.Quantity, -exp).StringFixed(exp), a.Currency)
}
