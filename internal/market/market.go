// Package market implements the bonding-curve market: closed-form integral
// pricing over a tracked effective supply, a fee overlay, the
// tokens-for-payment inversion, and the buy/sell state transitions.
//
// The effective supply is the pricing supply, not the literal token balance
// held by the market. The two diverge on purpose: liquidity provisioning and
// the sell path's pull-before-price ordering change the balance without
// touching the curve. Pricing is always a function of effective supply.
package market

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/mintcurve/launchpad/internal/events"
	"github.com/mintcurve/launchpad/internal/ledger"
)

// Config carries the immutable identities and rates injected at construction.
type Config struct {
	// Address is the market's own account on both ledgers.
	Address solana.PublicKey
	// ReserveMint identifies the fungible token traded by this market.
	ReserveMint solana.PublicKey
	// FeeRecipient is the only identity allowed to withdraw fees.
	FeeRecipient solana.PublicKey
	// BuyFeeBps and SellFeeBps are basis-point rates against FeePrecision.
	BuyFeeBps  uint64
	SellFeeBps uint64
	Curve      CurveParams
	// Events is optional; settled trades and fee withdrawals are published
	// on it when set.
	Events *events.Bus
}

// Market owns the effective-supply counter and the fee accumulator. Every
// mutating entry point runs under the market mutex from first check to last
// transfer, which serializes trades and doubles as the re-entrancy guard.
type Market struct {
	mu sync.Mutex

	address      solana.PublicKey
	reserveMint  solana.PublicKey
	feeRecipient solana.PublicKey
	buyFeeBps    uint64
	sellFeeBps   uint64
	curve        CurveParams

	effectiveSupply *big.Int
	lifetimeFees    *big.Int

	token  ledger.Ledger
	native ledger.Ledger
	events *events.Bus
	logger *zap.Logger
}

func New(cfg Config, token, native ledger.Ledger, logger *zap.Logger) (*Market, error) {
	if err := cfg.Curve.validate(); err != nil {
		return nil, fmt.Errorf("invalid curve params: %w", err)
	}
	if cfg.BuyFeeBps > FeePrecision || cfg.SellFeeBps > FeePrecision {
		return nil, fmt.Errorf("fee rate above precision %d", FeePrecision)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Market{
		address:         cfg.Address,
		reserveMint:     cfg.ReserveMint,
		feeRecipient:    cfg.FeeRecipient,
		buyFeeBps:       cfg.BuyFeeBps,
		sellFeeBps:      cfg.SellFeeBps,
		curve:           cfg.Curve,
		effectiveSupply: new(big.Int),
		lifetimeFees:    new(big.Int),
		token:           token,
		native:          native,
		events:          cfg.Events,
		logger:          logger.With(zap.String("market", cfg.Address.String())),
	}, nil
}

// Address returns the market's account handle.
func (m *Market) Address() solana.PublicKey { return m.address }

// ReserveMint returns the traded token's identity.
func (m *Market) ReserveMint() solana.PublicKey { return m.reserveMint }

// EffectiveSupply returns the current pricing supply.
func (m *Market) EffectiveSupply() *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.effectiveSupply)
}

// LifetimeFees returns the accumulated fee counter.
func (m *Market) LifetimeFees() *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.lifetimeFees)
}

// FeeRates returns the buy and sell rates in basis points.
func (m *Market) FeeRates() (buyBps, sellBps uint64) {
	return m.buyFeeBps, m.sellFeeBps
}

// Buy fills amount tokens for the buyer at the fee-inclusive cost, pulling
// payment from the buyer and refunding any excess. The whole operation is
// atomic: a failed transfer after internal counters moved is compensated in
// reverse order before the error is returned. Returns the cost charged.
func (m *Market) Buy(ctx context.Context, buyer solana.PublicKey, amount, payment *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	held, err := m.token.Balance(ctx, m.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if held.Cmp(amount) < 0 {
		return nil, ErrInsufficientLiquidity
	}

	raw := m.curve.Price(m.effectiveSupply, amount)
	fee := feeOn(raw, m.buyFeeBps)
	cost := new(big.Int).Add(raw, fee)
	if payment == nil || payment.Cmp(cost) < 0 {
		return nil, ErrInsufficientPayment
	}

	if err := m.native.Transfer(ctx, buyer, m.address, payment); err != nil {
		return nil, fmt.Errorf("%w: pulling payment: %v", ErrTransferFailed, err)
	}

	// Effects before interactions: counters reach their post-condition
	// values before any outbound transfer.
	m.lifetimeFees.Add(m.lifetimeFees, fee)
	m.effectiveSupply.Add(m.effectiveSupply, amount)

	if err := m.token.Transfer(ctx, m.address, buyer, amount); err != nil {
		m.effectiveSupply.Sub(m.effectiveSupply, amount)
		m.lifetimeFees.Sub(m.lifetimeFees, fee)
		_ = m.native.Transfer(ctx, m.address, buyer, payment)
		return nil, fmt.Errorf("%w: sending tokens: %v", ErrTransferFailed, err)
	}

	if refund := new(big.Int).Sub(payment, cost); refund.Sign() > 0 {
		if err := m.native.Transfer(ctx, m.address, buyer, refund); err != nil {
			m.effectiveSupply.Sub(m.effectiveSupply, amount)
			m.lifetimeFees.Sub(m.lifetimeFees, fee)
			_ = m.token.Transfer(ctx, buyer, m.address, amount)
			_ = m.native.Transfer(ctx, m.address, buyer, payment)
			return nil, fmt.Errorf("%w: refunding excess: %v", ErrTransferFailed, err)
		}
	}

	m.logger.Debug("buy executed",
		zap.String("buyer", buyer.String()),
		zap.String("amount", amount.String()),
		zap.String("cost", cost.String()),
		zap.String("fee", fee.String()),
		zap.String("effective_supply", m.effectiveSupply.String()))
	m.publishTrade(buyer, events.SideBuy, amount, cost)
	return cost, nil
}

// Sell pulls amount tokens from the seller and pays out the fee-exclusive
// proceeds. The tokens land in the market's balance before the price is
// computed; the price base is the effective supply, never the balance, so the
// inbound transfer cannot feed back into the quote. Returns the net payout.
func (m *Market) Sell(ctx context.Context, seller solana.PublicKey, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.token.Transfer(ctx, seller, m.address, amount); err != nil {
		return nil, fmt.Errorf("%w: pulling tokens: %v", ErrTransferFailed, err)
	}

	raw, err := m.sellPriceLocked(amount)
	if err != nil {
		_ = m.token.Transfer(ctx, m.address, seller, amount)
		return nil, err
	}
	fee := feeOn(raw, m.sellFeeBps)
	net := new(big.Int).Sub(raw, fee)

	held, err := m.native.Balance(ctx, m.address)
	if err != nil {
		_ = m.token.Transfer(ctx, m.address, seller, amount)
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if held.Cmp(net) < 0 {
		_ = m.token.Transfer(ctx, m.address, seller, amount)
		return nil, ErrInsufficientCurveLiquidity
	}

	// sellPriceLocked already proved amount <= effectiveSupply.
	m.effectiveSupply.Sub(m.effectiveSupply, amount)
	m.lifetimeFees.Add(m.lifetimeFees, fee)

	if err := m.native.Transfer(ctx, m.address, seller, net); err != nil {
		m.effectiveSupply.Add(m.effectiveSupply, amount)
		m.lifetimeFees.Sub(m.lifetimeFees, fee)
		_ = m.token.Transfer(ctx, m.address, seller, amount)
		return nil, fmt.Errorf("%w: paying seller: %v", ErrTransferFailed, err)
	}

	m.logger.Debug("sell executed",
		zap.String("seller", seller.String()),
		zap.String("amount", amount.String()),
		zap.String("net_payout", net.String()),
		zap.String("fee", fee.String()),
		zap.String("effective_supply", m.effectiveSupply.String()))
	m.publishTrade(seller, events.SideSell, amount, net)
	return net, nil
}

// publishTrade emits a settled trade on the bus. Called with the mutex held;
// Publish is non-blocking so the trade path never waits on subscribers.
func (m *Market) publishTrade(trader solana.PublicKey, side events.Side, amount, payment *big.Int) {
	if m.events == nil {
		return
	}
	_ = m.events.Publish(events.TradeEvent{
		BaseEvent: events.BaseEvent{EventTime: time.Now().UTC()},
		Market:    m.address,
		Mint:      m.reserveMint,
		Trader:    trader,
		Side:      side,
		Amount:    new(big.Int).Set(amount),
		Payment:   new(big.Int).Set(payment),
		Supply:    new(big.Int).Set(m.effectiveSupply),
	})
}

// ProvideLiquidity deposits reserve tokens into the market. Anyone may call
// it; it changes only the balance available to fill buys, never the price.
func (m *Market) ProvideLiquidity(ctx context.Context, from solana.PublicKey, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := m.token.Transfer(ctx, from, m.address, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	m.logger.Debug("liquidity provided",
		zap.String("from", from.String()),
		zap.String("amount", amount.String()))
	return nil
}

// WithdrawFees drains the market's entire native balance to the fee
// recipient. The balance may exceed the fee counter when native currency was
// sent alongside liquidity; the full-balance payout is the contract here, not
// a fee-only ledger. Resets the lifetime counter to zero.
func (m *Market) WithdrawFees(ctx context.Context, caller solana.PublicKey) (*big.Int, error) {
	if caller != m.feeRecipient {
		return nil, ErrUnauthorized
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	held, err := m.native.Balance(ctx, m.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if held.Sign() == 0 {
		return nil, ErrNoFeesAvailable
	}

	collected := new(big.Int).Set(m.lifetimeFees)
	m.lifetimeFees.SetInt64(0)
	if err := m.native.Transfer(ctx, m.address, m.feeRecipient, held); err != nil {
		m.lifetimeFees.Set(collected)
		return nil, fmt.Errorf("%w: paying fee recipient: %v", ErrTransferFailed, err)
	}

	m.logger.Info("fees withdrawn",
		zap.String("recipient", m.feeRecipient.String()),
		zap.String("amount", held.String()))
	if m.events != nil {
		_ = m.events.Publish(events.FeeWithdrawalEvent{
			BaseEvent: events.BaseEvent{EventTime: time.Now().UTC()},
			Market:    m.address,
			Recipient: m.feeRecipient,
			Amount:    new(big.Int).Set(held),
		})
	}
	return held, nil
}
