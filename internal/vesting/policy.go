package vesting

import (
	"errors"
	"math/big"
	"time"

	"github.com/mintcurve/launchpad/internal/bigmath"
)

var hundred = big.NewInt(100)

// Policy evaluates how much of an initial balance has been released after a
// given elapsed time. Implementations are pure: integer division truncates
// (no partial-interval credit) and results never exceed the initial balance.
type Policy interface {
	released(initial *big.Int, elapsed time.Duration) *big.Int
	validate() error
}

// LockThenDrip releases an immediate fraction up front and drips the locked
// remainder in fixed intervals after a lock period. This is the creator-vault
// policy.
type LockThenDrip struct {
	// LockedFraction is the percent of the initial balance subject to the
	// lock; the remainder is available immediately.
	LockedFraction uint64
	LockDuration   time.Duration
	DripInterval   time.Duration
	// DripFraction is the percent of the locked portion released per elapsed
	// interval.
	DripFraction uint64
}

func (p LockThenDrip) validate() error {
	if p.LockedFraction > 100 || p.DripFraction > 100 {
		return errors.New("vesting: fraction above 100 percent")
	}
	if p.DripInterval <= 0 {
		return errors.New("vesting: non-positive drip interval")
	}
	return nil
}

func (p LockThenDrip) released(initial *big.Int, elapsed time.Duration) *big.Int {
	locked := new(big.Int).Mul(initial, new(big.Int).SetUint64(p.LockedFraction))
	locked.Div(locked, hundred)
	immediate := new(big.Int).Sub(initial, locked)

	if elapsed <= p.LockDuration {
		return immediate
	}

	intervals := int64((elapsed - p.LockDuration) / p.DripInterval)
	perInterval := new(big.Int).Mul(locked, new(big.Int).SetUint64(p.DripFraction))
	perInterval.Div(perInterval, hundred)

	vested := new(big.Int).Mul(perInterval, big.NewInt(intervals))
	vested = bigmath.Min(vested, locked)

	return bigmath.Min(new(big.Int).Add(immediate, vested), initial)
}

// FixedDrip releases a fixed amount per elapsed interval, capped at
// TotalIntervals worth and at the pool itself. This is the time-distribution
// pool policy.
type FixedDrip struct {
	DripAmount     *big.Int
	DripInterval   time.Duration
	TotalIntervals uint64
}

func (p FixedDrip) validate() error {
	if p.DripAmount == nil || p.DripAmount.Sign() <= 0 {
		return errors.New("vesting: non-positive drip amount")
	}
	if p.DripInterval <= 0 {
		return errors.New("vesting: non-positive drip interval")
	}
	if p.TotalIntervals == 0 {
		return errors.New("vesting: zero total intervals")
	}
	return nil
}

func (p FixedDrip) released(initial *big.Int, elapsed time.Duration) *big.Int {
	if elapsed < 0 {
		return new(big.Int)
	}
	intervals := uint64(elapsed / p.DripInterval)
	if intervals > p.TotalIntervals {
		intervals = p.TotalIntervals
	}
	accrued := new(big.Int).Mul(p.DripAmount, new(big.Int).SetUint64(intervals))
	return bigmath.Min(accrued, initial)
}
