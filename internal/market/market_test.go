package market

import (
	"context"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyRejectsZeroAmount(t *testing.T) {
	f := newFixture(t, tokens(1000))
	_, err := f.m.Buy(context.Background(), solana.NewWallet().PublicKey(), big.NewInt(0), tokens(1))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestBuyRejectsUnderfundedMarket(t *testing.T) {
	f := newFixture(t, tokens(10))
	buyer := solana.NewWallet().PublicKey()
	f.native.Mint(buyer, pow10(24))
	_, err := f.m.Buy(context.Background(), buyer, tokens(11), pow10(24))
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestBuyRejectsShortPayment(t *testing.T) {
	f := newFixture(t, tokens(1000))
	buyer := solana.NewWallet().PublicKey()
	amount := tokens(100)
	cost := f.m.BuyPriceWithFee(amount)
	short := new(big.Int).Sub(cost, big.NewInt(1))
	f.native.Mint(buyer, short)
	_, err := f.m.Buy(context.Background(), buyer, amount, short)
	assert.ErrorIs(t, err, ErrInsufficientPayment)
	assert.Zero(t, f.m.EffectiveSupply().Sign(), "failed buy must not move supply")
}

func TestBuyChargesCostAndRefundsExcess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, tokens(1000))
	buyer := solana.NewWallet().PublicKey()
	amount := tokens(100)

	cost := f.m.BuyPriceWithFee(amount)
	overpay := new(big.Int).Add(cost, pow10(9))
	f.native.Mint(buyer, overpay)

	charged, err := f.m.Buy(ctx, buyer, amount, overpay)
	require.NoError(t, err)
	assert.Equal(t, cost, charged)

	tokenBal, err := f.token.Balance(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, amount, tokenBal)

	nativeBal, err := f.native.Balance(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, pow10(9), nativeBal, "excess payment must be refunded")

	assert.Equal(t, amount, f.m.EffectiveSupply())
}

func TestRoundTripConservation(t *testing.T) {
	// Buy 100 tokens then sell them straight back at the reference
	// constants; fees must make the round trip strictly lossy.
	ctx := context.Background()
	f := newFixture(t, tokens(1000))
	trader := solana.NewWallet().PublicKey()
	amount := tokens(100)

	buyCost := f.m.BuyPriceWithFee(amount)
	f.native.Mint(trader, buyCost)

	_, err := f.m.Buy(ctx, trader, amount, buyCost)
	require.NoError(t, err)

	proceeds, err := f.m.Sell(ctx, trader, amount)
	require.NoError(t, err)

	assert.Equal(t, -1, proceeds.Cmp(buyCost), "sell proceeds must be below buy cost")
	assert.Zero(t, f.m.EffectiveSupply().Sign(), "supply must return to zero after the round trip")

	buyBps, sellBps := f.m.FeeRates()
	assert.EqualValues(t, 50, buyBps)
	assert.EqualValues(t, 100, sellBps)
	assert.Positive(t, f.m.LifetimeFees().Sign(), "both legs must accrue fees")
}

func TestSupplyTracksTradeLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, tokens(10_000))
	trader := solana.NewWallet().PublicKey()
	f.native.Mint(trader, pow10(30))

	expected := new(big.Int)
	for _, step := range []struct {
		buy    bool
		amount *big.Int
	}{
		{true, tokens(500)},
		{true, tokens(120)},
		{false, tokens(80)},
		{true, tokens(7)},
		{false, tokens(547)},
	} {
		if step.buy {
			cost := f.m.BuyPriceWithFee(step.amount)
			_, err := f.m.Buy(ctx, trader, step.amount, cost)
			require.NoError(t, err)
			expected.Add(expected, step.amount)
		} else {
			_, err := f.m.Sell(ctx, trader, step.amount)
			require.NoError(t, err)
			expected.Sub(expected, step.amount)
		}
		assert.Zero(t, expected.Cmp(f.m.EffectiveSupply()),
			"effective supply must equal buys minus sells")
	}
}

func TestSellBeyondEffectiveSupplyFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, tokens(1000))
	trader := solana.NewWallet().PublicKey()

	amount := tokens(10)
	cost := f.m.BuyPriceWithFee(amount)
	f.native.Mint(trader, cost)
	_, err := f.m.Buy(ctx, trader, amount, cost)
	require.NoError(t, err)

	// Hand the trader extra tokens outside the curve so only the supply
	// check can reject the oversell.
	over := new(big.Int).Add(amount, big.NewInt(1))
	f.token.Mint(trader, big.NewInt(1))

	before, err := f.token.Balance(ctx, trader)
	require.NoError(t, err)

	_, err = f.m.Sell(ctx, trader, over)
	assert.ErrorIs(t, err, ErrInsufficientSupply)

	after, err := f.token.Balance(ctx, trader)
	require.NoError(t, err)
	assert.Equal(t, before, after, "rejected sell must return the pulled tokens")
	assert.Equal(t, amount, f.m.EffectiveSupply())
}

func TestSellRequiresCurveLiquidity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, tokens(1000))
	trader := solana.NewWallet().PublicKey()

	amount := tokens(100)
	cost := f.m.BuyPriceWithFee(amount)
	f.native.Mint(trader, cost)
	_, err := f.m.Buy(ctx, trader, amount, cost)
	require.NoError(t, err)

	// Drain the market's native balance through the fee recipient, then a
	// sell has nothing to pay out of.
	_, err = f.m.WithdrawFees(ctx, f.feeRecipient)
	require.NoError(t, err)

	_, err = f.m.Sell(ctx, trader, amount)
	assert.ErrorIs(t, err, ErrInsufficientCurveLiquidity)
	assert.Equal(t, amount, f.m.EffectiveSupply(), "failed sell must not move supply")
}

func TestProvideLiquidityLeavesPriceAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	provider := solana.NewWallet().PublicKey()
	f.token.Mint(provider, tokens(500))

	quoteBefore := f.m.BuyPriceWithFee(tokens(10))
	require.NoError(t, f.m.ProvideLiquidity(ctx, provider, tokens(500)))
	quoteAfter := f.m.BuyPriceWithFee(tokens(10))

	assert.Equal(t, quoteBefore, quoteAfter)
	assert.Zero(t, f.m.EffectiveSupply().Sign())

	held, err := f.token.Balance(ctx, f.m.Address())
	require.NoError(t, err)
	assert.Equal(t, tokens(500), held)
}

func TestWithdrawFeesAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, tokens(1000))
	trader := solana.NewWallet().PublicKey()

	amount := tokens(50)
	cost := f.m.BuyPriceWithFee(amount)
	f.native.Mint(trader, cost)
	_, err := f.m.Buy(ctx, trader, amount, cost)
	require.NoError(t, err)

	_, err = f.m.WithdrawFees(ctx, solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrUnauthorized)

	marketBal, err := f.native.Balance(ctx, f.m.Address())
	require.NoError(t, err)
	require.Positive(t, marketBal.Sign())

	paid, err := f.m.WithdrawFees(ctx, f.feeRecipient)
	require.NoError(t, err)
	assert.Equal(t, marketBal, paid, "withdrawal must drain the full native balance")

	left, err := f.native.Balance(ctx, f.m.Address())
	require.NoError(t, err)
	assert.Zero(t, left.Sign())
	assert.Zero(t, f.m.LifetimeFees().Sign())

	_, err = f.m.WithdrawFees(ctx, f.feeRecipient)
	assert.ErrorIs(t, err, ErrNoFeesAvailable)
}
