package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightfold/portal/internal/money"
)

func TestAmount_Add(t *testing.T) {
	a := money.New(50000, "INR")
	b := money.New(25000, "INR")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equal(money.New(75000, "INR")))

	_, err = a.Add(money.New(100, "USD"))
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestAmount_Sub(t *testing.T) {
	a := money.New(50000, "INR")

	diff, err := a.Sub(money.New(60000, "INR"))
	require.NoError(t, err)
	assert.Equal(t, int64(-10000), diff.Value)

	_, err = a.Sub(money.New(100, "EUR"))
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "INR 500.00", money.New(50000, "INR").String())
	assert.Equal(t, "USD 0.05", money.New(5, "USD").String())
	assert.Equal(t, "INR -12.34", money.New(-1234, "INR").String())
}
