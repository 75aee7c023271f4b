// Package router composes two bonding-curve markets into a token-to-token
// swap: sell into the source market, buy out of the destination market with
// the native proceeds. The router never custodies funds; proceeds of the sell
// leg are paid straight to the trader, so a rejected or failed buy leg leaves
// the trader holding native currency rather than stranding value in the
// router.
package router

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/mintcurve/launchpad/internal/market"
	"github.com/mintcurve/launchpad/internal/vesting"
)

var (
	ErrDeadlineExpired = errors.New("router: deadline expired")
	ErrInvalidToken    = errors.New("router: both legs trade the same token")
)

// SlippageError reports a buy leg that would deliver less than the trader's
// minimum. The trader keeps the sell-leg proceeds when this is returned.
type SlippageError struct {
	MinOut *big.Int
	Got    *big.Int
}

func (e *SlippageError) Error() string {
	return fmt.Sprintf("router: excessive slippage: minimum out %s, obtainable %s", e.MinOut, e.Got)
}

// Router routes between bonding-curve markets sharing a native ledger.
type Router struct {
	clock  vesting.Clock
	logger *zap.Logger
}

func New(clock vesting.Clock, logger *zap.Logger) *Router {
	if clock == nil {
		clock = vesting.SystemClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{clock: clock, logger: logger}
}

// SwapResult reports both legs of a completed swap.
type SwapResult struct {
	Proceeds  *big.Int // native proceeds of the sell leg
	TokensOut *big.Int // tokens delivered by the buy leg
	Cost      *big.Int // native spent on the buy leg (refund already returned)
}

// Swap sells amountIn into src and buys out of dst with the proceeds, sizing
// the buy leg with dst's payment inversion. minOut bounds slippage; deadline
// bounds staleness. Once the sell leg lands, a failing buy leg returns an
// error with the proceeds already in the trader's native account.
func (r *Router) Swap(ctx context.Context, trader solana.PublicKey, src, dst *market.Market, amountIn, minOut *big.Int, deadline time.Time) (*SwapResult, error) {
	if !deadline.IsZero() && r.clock.Now().After(deadline) {
		return nil, ErrDeadlineExpired
	}
	if src.ReserveMint() == dst.ReserveMint() {
		return nil, ErrInvalidToken
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, market.ErrInvalidAmount
	}

	proceeds, err := src.Sell(ctx, trader, amountIn)
	if err != nil {
		return nil, fmt.Errorf("sell leg: %w", err)
	}

	tokensOut := dst.TokensForPayment(proceeds)
	if minOut != nil && tokensOut.Cmp(minOut) < 0 {
		r.logger.Warn("swap rejected on slippage, proceeds retained by trader",
			zap.String("trader", trader.String()),
			zap.String("proceeds", proceeds.String()),
			zap.String("min_out", minOut.String()),
			zap.String("obtainable", tokensOut.String()))
		return nil, &SlippageError{MinOut: new(big.Int).Set(minOut), Got: tokensOut}
	}
	if tokensOut.Sign() == 0 {
		return nil, &SlippageError{MinOut: big.NewInt(1), Got: tokensOut}
	}

	cost, err := dst.Buy(ctx, trader, tokensOut, proceeds)
	if err != nil {
		r.logger.Warn("buy leg failed, proceeds retained by trader",
			zap.String("trader", trader.String()),
			zap.String("proceeds", proceeds.String()),
			zap.Error(err))
		return nil, fmt.Errorf("buy leg: %w", err)
	}

	r.logger.Info("swap executed",
		zap.String("trader", trader.String()),
		zap.String("amount_in", amountIn.String()),
		zap.String("proceeds", proceeds.String()),
		zap.String("tokens_out", tokensOut.String()))
	return &SwapResult{Proceeds: proceeds, TokensOut: tokensOut, Cost: cost}, nil
}
