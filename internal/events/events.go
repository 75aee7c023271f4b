// Package events carries launch activity to interested subscribers over an
// in-memory bus. Trades, fee withdrawals and distribution rounds are
// published as they settle; subscribers run off the trading path.
package events

import (
	"context"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
)

type EventType string

const (
	TradeExecuted         EventType = "trade.executed"
	FeesWithdrawn         EventType = "fees.withdrawn"
	DistributionCompleted EventType = "distribution.completed"
)

// Side marks the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Event is the base interface for everything published on the bus.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

type BaseEvent struct {
	EventTime time.Time
}

func (e BaseEvent) Timestamp() time.Time { return e.EventTime }

// TradeEvent is published after a buy or sell settles on a market.
type TradeEvent struct {
	BaseEvent
	Market solana.PublicKey
	Mint   solana.PublicKey
	Trader solana.PublicKey
	Side   Side
	// Amount is the token quantity traded; Payment is the native amount
	// charged (buy) or paid out net of fees (sell).
	Amount  *big.Int
	Payment *big.Int
	// Supply is the market's effective supply after the trade.
	Supply *big.Int
}

func (e TradeEvent) Type() EventType { return TradeExecuted }

// FeeWithdrawalEvent is published when the fee recipient drains a market.
type FeeWithdrawalEvent struct {
	BaseEvent
	Market    solana.PublicKey
	Recipient solana.PublicKey
	Amount    *big.Int
}

func (e FeeWithdrawalEvent) Type() EventType { return FeesWithdrawn }

// DistributionEvent is published after a distributor batch lands.
type DistributionEvent struct {
	BaseEvent
	Mint       solana.PublicKey
	Recipients int
	Total      *big.Int
}

func (e DistributionEvent) Type() EventType { return DistributionCompleted }

// Handler processes events of one type. It should not block.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Subscription is a registered handler; Unsubscribe removes it.
type Subscription interface {
	Unsubscribe()
}
