package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/mintcurve/launchpad/internal/events"
	"github.com/mintcurve/launchpad/internal/storage/models"
)

// Recorder subscribes a Storage to the event bus and journals everything it
// hears. Failed writes are logged and dropped; persistence never fails a
// trade.
type Recorder struct {
	store  Storage
	logger *zap.Logger
	subs   []events.Subscription
}

func NewRecorder(store Storage, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger.Named("recorder")}
}

func (r *Recorder) Attach(bus *events.Bus) {
	r.subs = append(r.subs,
		bus.SubscribeFunc(events.TradeExecuted, r.onTrade),
		bus.SubscribeFunc(events.FeesWithdrawn, r.onFeeWithdrawal),
		bus.SubscribeFunc(events.DistributionCompleted, r.onDistribution),
	)
}

func (r *Recorder) Detach() {
	for _, sub := range r.subs {
		sub.Unsubscribe()
	}
	r.subs = nil
}

func (r *Recorder) onTrade(ctx context.Context, event events.Event) error {
	e, ok := event.(events.TradeEvent)
	if !ok {
		return nil
	}
	return r.store.SaveTrade(ctx, &models.Trade{
		Market:   e.Market.String(),
		Mint:     e.Mint.String(),
		Trader:   e.Trader.String(),
		Side:     string(e.Side),
		Amount:   e.Amount.String(),
		Payment:  e.Payment.String(),
		Supply:   e.Supply.String(),
		TradedAt: e.Timestamp(),
	})
}

func (r *Recorder) onFeeWithdrawal(ctx context.Context, event events.Event) error {
	e, ok := event.(events.FeeWithdrawalEvent)
	if !ok {
		return nil
	}
	return r.store.SaveFeeWithdrawal(ctx, &models.FeeWithdrawal{
		Market:      e.Market.String(),
		Recipient:   e.Recipient.String(),
		Amount:      e.Amount.String(),
		WithdrawnAt: e.Timestamp(),
	})
}

func (r *Recorder) onDistribution(ctx context.Context, event events.Event) error {
	e, ok := event.(events.DistributionEvent)
	if !ok {
		return nil
	}
	return r.store.SaveDistribution(ctx, &models.Distribution{
		Mint:          e.Mint.String(),
		Recipients:    e.Recipients,
		Total:         e.Total.String(),
		DistributedAt: e.Timestamp(),
	})
}
