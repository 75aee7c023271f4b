package bigmath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubChecksUnderflow(t *testing.T) {
	got, err := Sub(big.NewInt(10), big.NewInt(4))
	require.NoError(t, err)
	assert.Zero(t, got.Cmp(big.NewInt(6)))

	got, err = Sub(big.NewInt(10), big.NewInt(10))
	require.NoError(t, err)
	assert.Zero(t, got.Sign())

	_, err = Sub(big.NewInt(4), big.NewInt(10))
	assert.ErrorIs(t, err, ErrNegativeResult)
}

func TestDivChecksZero(t *testing.T) {
	got, err := Div(big.NewInt(7), big.NewInt(2))
	require.NoError(t, err)
	assert.Zero(t, got.Cmp(big.NewInt(3)))

	_, err = Div(big.NewInt(7), big.NewInt(0))
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestMulDivRounding(t *testing.T) {
	down, err := MulDiv(big.NewInt(7), big.NewInt(3), big.NewInt(4), RoundingDown)
	require.NoError(t, err)
	assert.Zero(t, down.Cmp(big.NewInt(5)))

	up, err := MulDiv(big.NewInt(7), big.NewInt(3), big.NewInt(4), RoundingUp)
	require.NoError(t, err)
	assert.Zero(t, up.Cmp(big.NewInt(6)))

	exact, err := MulDiv(big.NewInt(6), big.NewInt(2), big.NewInt(4), RoundingUp)
	require.NoError(t, err)
	assert.Zero(t, exact.Cmp(big.NewInt(3)), "exact division must not round up")

	_, err = MulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(0), RoundingDown)
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestAddMulDoNotAliasInputs(t *testing.T) {
	a, b := big.NewInt(2), big.NewInt(3)
	Add(a, b)
	Mul(a, b)
	assert.Zero(t, a.Cmp(big.NewInt(2)))
	assert.Zero(t, b.Cmp(big.NewInt(3)))
}

func TestMin(t *testing.T) {
	a, b := big.NewInt(5), big.NewInt(9)
	got := Min(a, b)
	assert.Zero(t, got.Cmp(a))

	got.SetInt64(0)
	assert.Zero(t, a.Cmp(big.NewInt(5)), "Min must return a fresh value")
}
