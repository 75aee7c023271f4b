// Package bigmath provides checked big.Int arithmetic for the pricing and
// vesting engines. All quantities are unsigned fixed-point integers scaled to
// the ledger's smallest units; any operation that would go negative or divide
// by zero returns an error instead of producing a wrapped value.
package bigmath

import (
	"errors"
	"math/big"
)

// Rounding selects the direction of truncation for MulDiv.
type Rounding int

const (
	RoundingDown Rounding = iota
	RoundingUp
)

var (
	ErrNegativeResult = errors.New("bigmath: subtraction underflow")
	ErrDivideByZero   = errors.New("bigmath: division by zero")
)

func Add(a, b *big.Int) *big.Int {
	return new(big.Int).Add(a, b)
}

// Sub returns a-b, failing when the result would be negative.
func Sub(a, b *big.Int) (*big.Int, error) {
	if b.Cmp(a) > 0 {
		return nil, ErrNegativeResult
	}
	return new(big.Int).Sub(a, b), nil
}

func Mul(a, b *big.Int) *big.Int {
	return new(big.Int).Mul(a, b)
}

func Div(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrDivideByZero
	}
	return new(big.Int).Div(a, b), nil
}

// MulDiv computes a*b/denominator with the requested rounding.
func MulDiv(a, b, denominator *big.Int, round Rounding) (*big.Int, error) {
	if denominator.Sign() == 0 {
		return nil, ErrDivideByZero
	}
	prod := new(big.Int).Mul(a, b)
	if round == RoundingUp {
		num := new(big.Int).Add(prod, new(big.Int).Sub(denominator, big.NewInt(1)))
		return new(big.Int).Div(num, denominator), nil
	}
	return new(big.Int).Div(prod, denominator), nil
}

// Min returns the smaller of a and b as a fresh value.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
