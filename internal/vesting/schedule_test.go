package vesting

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintcurve/launchpad/internal/ledger"
)

const day = 24 * time.Hour

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// vaultPolicy mirrors the reference vault shape: 80% locked for 180 days,
// then 10% of the locked portion every 30 days.
func vaultPolicy() LockThenDrip {
	return LockThenDrip{
		LockedFraction: 80,
		LockDuration:   180 * day,
		DripInterval:   30 * day,
		DripFraction:   10,
	}
}

func newVault(t *testing.T, balance int64) (*Schedule, *ledger.Memory, solana.PublicKey, *fakeClock) {
	t.Helper()
	token := ledger.NewMemory()
	owner := solana.NewWallet().PublicKey()
	account := solana.NewWallet().PublicKey()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}

	s, err := New(owner, account, token, vaultPolicy(), clock, nil)
	require.NoError(t, err)
	token.Mint(account, big.NewInt(balance))
	return s, token, owner, clock
}

func TestAvailableZeroBeforeInitialize(t *testing.T) {
	s, _, _, _ := newVault(t, 1_000_000)
	assert.Zero(t, s.AvailableForWithdrawal().Sign())
}

func TestInitializeSnapshotsOnce(t *testing.T) {
	s, token, _, _ := newVault(t, 1_000_000)
	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, big.NewInt(1_000_000), s.InitialBalance())

	// Later deposits must not change the snapshot.
	token.Mint(solana.NewWallet().PublicKey(), big.NewInt(1))
	assert.ErrorIs(t, s.Initialize(context.Background()), ErrAlreadyInitialized)
	assert.Equal(t, big.NewInt(1_000_000), s.InitialBalance())
}

func TestImmediateFractionAvailableAtStart(t *testing.T) {
	s, _, _, _ := newVault(t, 1_000_000)
	require.NoError(t, s.Initialize(context.Background()))

	// 20% of the pool is unlocked from the start.
	assert.Zero(t, s.AvailableForWithdrawal().Cmp(big.NewInt(200_000)))
}

func TestNothingDripsDuringLock(t *testing.T) {
	s, _, _, clock := newVault(t, 1_000_000)
	require.NoError(t, s.Initialize(context.Background()))

	clock.advance(180 * day)
	assert.Zero(t, s.AvailableForWithdrawal().Cmp(big.NewInt(200_000)),
		"lock boundary itself releases nothing")
}

func TestDripAfterThreeIntervals(t *testing.T) {
	s, _, _, clock := newVault(t, 1_000_000)
	require.NoError(t, s.Initialize(context.Background()))

	clock.advance(180*day + 90*day)
	// immediate 200_000 plus 3 * 10% of the 800_000 locked portion.
	assert.Zero(t, s.AvailableForWithdrawal().Cmp(big.NewInt(440_000)))
}

func TestPartialIntervalGetsNoCredit(t *testing.T) {
	s, _, _, clock := newVault(t, 1_000_000)
	require.NoError(t, s.Initialize(context.Background()))

	clock.advance(180*day + 89*day)
	assert.Zero(t, s.AvailableForWithdrawal().Cmp(big.NewInt(360_000)),
		"29 leftover days must not credit a fourth interval")
}

func TestDripCapsAtLockedAmount(t *testing.T) {
	s, _, _, clock := newVault(t, 1_000_000)
	require.NoError(t, s.Initialize(context.Background()))

	clock.advance(180*day + 3650*day)
	assert.Zero(t, s.AvailableForWithdrawal().Cmp(big.NewInt(1_000_000)))
}

func TestWithdrawTransfersAndGuardsRepeat(t *testing.T) {
	ctx := context.Background()
	s, token, owner, clock := newVault(t, 1_000_000)
	require.NoError(t, s.Initialize(ctx))

	paid, err := s.Withdraw(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, paid.Cmp(big.NewInt(200_000)))

	bal, err := token.Balance(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, bal.Cmp(big.NewInt(200_000)))

	// No time has passed, so a second call has zero entitlement.
	_, err = s.Withdraw(ctx, owner)
	assert.ErrorIs(t, err, ErrNothingAvailable)

	clock.advance(180*day + 30*day)
	paid, err = s.Withdraw(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, paid.Cmp(big.NewInt(80_000)), "only the newly dripped interval pays out")
	assert.Zero(t, s.Withdrawn().Cmp(big.NewInt(280_000)))
}

func TestWithdrawRejectsNonOwner(t *testing.T) {
	s, _, _, _ := newVault(t, 1_000_000)
	require.NoError(t, s.Initialize(context.Background()))
	_, err := s.Withdraw(context.Background(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFixedDripAccrual(t *testing.T) {
	token := ledger.NewMemory()
	owner := solana.NewWallet().PublicKey()
	account := solana.NewWallet().PublicKey()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}

	s, err := New(owner, account, token, FixedDrip{
		DripAmount:     big.NewInt(1000),
		DripInterval:   day,
		TotalIntervals: 10,
	}, clock, nil)
	require.NoError(t, err)
	token.Mint(account, big.NewInt(9500))
	require.NoError(t, s.Initialize(context.Background()))

	assert.Zero(t, s.AvailableForWithdrawal().Sign(), "nothing accrues before the first interval")

	clock.advance(3 * day)
	assert.Zero(t, s.AvailableForWithdrawal().Cmp(big.NewInt(3000)))

	// Accrual caps at the interval count and at the actual pool.
	clock.advance(365 * day)
	assert.Zero(t, s.AvailableForWithdrawal().Cmp(big.NewInt(9500)),
		"accrual must cap at the pool when intervals*amount exceeds it")
}

func TestFixedDripWithdrawalAccounting(t *testing.T) {
	ctx := context.Background()
	token := ledger.NewMemory()
	owner := solana.NewWallet().PublicKey()
	account := solana.NewWallet().PublicKey()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}

	s, err := New(owner, account, token, FixedDrip{
		DripAmount:     big.NewInt(1000),
		DripInterval:   day,
		TotalIntervals: 10,
	}, clock, nil)
	require.NoError(t, err)
	token.Mint(account, big.NewInt(10_000))
	require.NoError(t, s.Initialize(ctx))

	clock.advance(4 * day)
	paid, err := s.Withdraw(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, paid.Cmp(big.NewInt(4000)))

	clock.advance(day)
	paid, err = s.Withdraw(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, paid.Cmp(big.NewInt(1000)), "withdrawn amounts must never double count")
}

func TestPolicyValidation(t *testing.T) {
	token := ledger.NewMemory()
	owner := solana.NewWallet().PublicKey()

	_, err := New(owner, owner, token, LockThenDrip{LockedFraction: 101, DripInterval: day}, nil, nil)
	assert.Error(t, err)

	_, err = New(owner, owner, token, FixedDrip{DripAmount: big.NewInt(0), DripInterval: day, TotalIntervals: 1}, nil, nil)
	assert.Error(t, err)
}
