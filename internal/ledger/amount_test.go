package ledger

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/commercialpaper/internal/platform/errors"
)

func assertCode(t *testing.T, err error, want apperrors.Code) *apperrors.Error {
	t.Helper()
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not a domain error", err)
	}
	if appErr.Code != want {
		t.Fatalf("error code = %s, want %s", appErr.Code, want)
	}
	return appErr
}

func TestParseAmount(t *testing.T) {
	issuer := Party{Name: "central-bank", Key: "cb-key"}

	tests := []struct {
		name     string
		value    string
		currency string
		want     int64
		wantErr  bool
	}{
		{name: "dollars and cents", value: "1000.00", currency: "USD", want: 100000},
		{name: "no decimal places", value: "1000", currency: "USD", want: 100000},
		{name: "single decimal place", value: "7.5", currency: "USD", want: 750},
		{name: "zero", value: "0", currency: "USD", want: 0},
		{name: "yen has no minor unit", value: "1500", currency: "JPY", want: 1500},
		{name: "fractional yen rejected", value: "1500.5", currency: "JPY", wantErr: true},
		{name: "sub-cent precision rejected", value: "0.005", currency: "USD", wantErr: true},
		{name: "negative rejected", value: "-1", currency: "USD", wantErr: true},
		{name: "not a number", value: "one hundred", currency: "USD", wantErr: true},
		{name: "overflows smallest unit", value: "100000000000000000000", currency: "USD", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmount(tc.value, tc.currency, issuer)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) succeeded, want error", tc.value)
				}
				assertCode(t, err, apperrors.CodeAmountInvalid)
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q): %v", tc.value, err)
			}
			if got.Quantity != tc.want {
				t.Fatalf("quantity = %d, want %d", got.Quantity, tc.want)
			}
			if got.Currency != tc.currency {
				t.Fatalf("currency = %s, want %s", got.Currency, tc.currency)
			}
			if got.Issuer != issuer {
				t.Fatalf("issuer = %+v, want %+v", got.Issuer, issuer)
			}
		})
	}
}

func TestNewAmountRejectsNegative(t *testing.T) {
	_, err := NewAmount(-1, "USD", Party{Name: "bank"})
	if err == nil {
		t.Fatal("expected error for negative quantity")
	}
	assertCode(t, err, apperrors.CodeAmountInvalid)
}

func TestAmountAdd(t *testing.T) {
	bank := Party{Name: "bank", Key: "bank-key"}
	mint := Party{Name: "mint", Key: "mint-key"}

	a := Amount{Quantity: 100, Currency: "USD", Issuer: bank}
	b := Amount{Quantity: 220, Currency: "USD", Issuer: bank}

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sum.Quantity != 320 || sum.Currency != "USD" || sum.Issuer != bank {
		t.Fatalf("sum = %+v", sum)
	}

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := a.Add(Amount{Quantity: 1, Currency: "EUR", Issuer: bank})
		assertCode(t, err, apperrors.CodeAmountCurrencyMismatch)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		_, err := a.Add(Amount{Quantity: 1, Currency: "USD", Issuer: mint})
		assertCode(t, err, apperrors.CodeAmountCurrencyMismatch)
	})

	t.Run("overflow", func(t *testing.T) {
		huge := Amount{Quantity: 1<<63 - 1, Currency: "USD", Issuer: bank}
		_, err := huge.Add(Amount{Quantity: 1, Currency: "USD", Issuer: bank})
		assertCode(t, err, apperrors.CodeAmountInvalid)
	})
}

func TestAmountEqualIgnoringIssuer(t *testing.T) {
	bank := Party{Name: "bank", Key: "bank-key"}
	mint := Party{Name: "mint", Key: "mint-key"}

	a := Amount{Quantity: 100000, Currency: "USD", Issuer: bank}
	b := Amount{Quantity: 100000, Currency: "USD", Issuer: mint}

	if a.Equal(b) {
		t.Fatal("amounts with different issuers must not be strictly equal")
	}
	if !a.EqualIgnoringIssuer(b) {
		t.Fatal("amounts should match when the issuer is disregarded")
	}
	if a.EqualIgnoringIssuer(Amount{Quantity: 100000, Currency: "EUR", Issuer: bank}) {
		t.Fatal("different currencies must never match")
	}
}

func TestAmountString(t *testing.T) {
	tests := []struct {
		amount Amount
		want   string
	}{
		{Amount{Quantity: 150000, Currency: "USD"}, "1500.00 USD"},
		{Amount{Quantity: 1, Currency: "USD"}, "0.01 USD"},
		{Amount{Quantity: 1500, Currency: "JPY"}, "1500 JPY"},
		{Amount{Quantity: 0, Currency: "EUR"}, "0.00 EUR"},
	}
	for _, tc := range tests {
		if got := tc.amount.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
	}
}
