// Package vesting implements time-indexed release schedules over a fixed
// initial balance. The same evaluator serves both the creator vault
// (lock-then-drip) and the time-distribution pool (fixed drip); the policies
// share the numeric edge-case rules: truncating integer division, a
// monotonically non-decreasing withdrawn counter that never exceeds the
// capped entitlement, and zero availability before initialization.
package vesting

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/mintcurve/launchpad/internal/ledger"
)

var (
	ErrUnauthorized       = errors.New("vesting: unauthorized")
	ErrNothingAvailable   = errors.New("vesting: nothing available")
	ErrAlreadyInitialized = errors.New("vesting: already initialized")
	ErrTransferFailed     = errors.New("vesting: transfer failed")
)

// Schedule evaluates a release policy against a balance snapshotted at
// Initialize. The snapshot happens at an explicit step rather than at
// construction because the funding transfer lands after the schedule account
// exists in some launch flows.
type Schedule struct {
	mu sync.Mutex

	owner   solana.PublicKey
	account solana.PublicKey
	token   ledger.Ledger
	policy  Policy
	clock   Clock
	logger  *zap.Logger

	initialized    bool
	startTime      time.Time
	initialBalance *big.Int
	withdrawn      *big.Int
}

func New(owner, account solana.PublicKey, token ledger.Ledger, policy Policy, clock Clock, logger *zap.Logger) (*Schedule, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Schedule{
		owner:          owner,
		account:        account,
		token:          token,
		policy:         policy,
		clock:          clock,
		logger:         logger.With(zap.String("vesting_account", account.String())),
		initialBalance: new(big.Int),
		withdrawn:      new(big.Int),
	}, nil
}

// Initialize snapshots the schedule account's token balance as the vesting
// pool and starts the clock. Exactly once; the snapshot is immutable after.
func (s *Schedule) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return ErrAlreadyInitialized
	}
	bal, err := s.token.Balance(ctx, s.account)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	s.initialBalance = new(big.Int).Set(bal)
	s.startTime = s.clock.Now()
	s.initialized = true
	s.logger.Info("vesting initialized",
		zap.String("initial_balance", bal.String()),
		zap.Time("start_time", s.startTime))
	return nil
}

// InitialBalance returns the snapshotted pool, zero before Initialize.
func (s *Schedule) InitialBalance() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.initialBalance)
}

// Withdrawn returns the total already paid out.
func (s *Schedule) Withdrawn() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.withdrawn)
}

// StartTime returns the vesting start; zero time before Initialize.
func (s *Schedule) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

// AvailableForWithdrawal evaluates the policy at the current instant and
// subtracts what was already withdrawn, floored at zero. Defined as zero
// before Initialize.
func (s *Schedule) AvailableForWithdrawal() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableLocked()
}

func (s *Schedule) availableLocked() *big.Int {
	if !s.initialized {
		return new(big.Int)
	}
	released := s.policy.released(s.initialBalance, s.clock.Now().Sub(s.startTime))
	avail := new(big.Int).Sub(released, s.withdrawn)
	if avail.Sign() < 0 {
		return new(big.Int)
	}
	return avail
}

// Withdraw pays the caller's full current entitlement. Owner only; fails with
// ErrNothingAvailable at zero entitlement, including an immediate second call
// with no elapsed time. Returns the amount paid.
func (s *Schedule) Withdraw(ctx context.Context, caller solana.PublicKey) (*big.Int, error) {
	if caller != s.owner {
		return nil, ErrUnauthorized
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	amount := s.availableLocked()
	if amount.Sign() == 0 {
		return nil, ErrNothingAvailable
	}

	s.withdrawn.Add(s.withdrawn, amount)
	if err := s.token.Transfer(ctx, s.account, s.owner, amount); err != nil {
		s.withdrawn.Sub(s.withdrawn, amount)
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	s.logger.Info("vesting withdrawal",
		zap.String("amount", amount.String()),
		zap.String("withdrawn_total", s.withdrawn.String()))
	return amount, nil
}
