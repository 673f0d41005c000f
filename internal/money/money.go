package money

import (
	"errors"
	"fmt"
)

var ErrCurrencyMismatch = errors.New("currency mismatch")

// Amount is a monetary value in minor units (cents, paise) with its
// ISO 4217 currency code. Arithmetic across currencies is an error,
// never a silent sum.
type Amount struct {
	Value    int64
	Currency string
}

func New(value int64, currency string) Amount {
	return Amount{Value: value, Currency: currency}
}

func (a Amount) IsZero() bool {
	return a.Value == 0
}

func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.Currency, b.Currency)
	}

	return Amount{Value: a.Value + b.Value, Currency: a.Currency}, nil
}

func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.Currency, b.Currency)
	}

	return Amount{Value: a.Value - b.Value, Currency: a.Currency}, nil
}

// Equal reports whether both value and currency match.
func (a Amount) Equal(b Amount) bool {
	return a.Value == b.Value && a.Currency == b.Currency
}

// String formats the amount with two decimal places, e.g. "INR 500.00".
// Display only; never parse this back.
func (a Amount) String() string {
	sign := ""
	v := a.Value

	if v < 0 {
		sign = "-"
		v = -v
	}

	return fmt.Sprintf("%s %s%d.%02d", a.Currency, sign, v/100, v%100)
}
