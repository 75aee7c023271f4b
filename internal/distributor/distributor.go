// Package distributor drives the time-distribution pool: a fixed-drip vesting
// schedule decides how much is distributable, and an external bulk-transfer
// collaborator performs the recipient payouts. The distributor only sizes and
// records the withdrawal; batch execution, signing and delivery belong to the
// collaborator.
package distributor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mintcurve/launchpad/internal/events"
	"github.com/mintcurve/launchpad/internal/vesting"
)

var (
	ErrUnauthorized  = errors.New("distributor: unauthorized")
	ErrBatchMismatch = errors.New("distributor: recipients and amounts differ in length")
	ErrBatchTooLarge = errors.New("distributor: batch total exceeds distributable amount")
)

// BulkTransfer is the external batch-payout service. It receives the full
// recipient/amount list plus the pre-computed total and performs the
// transfers; it must be atomic per call.
type BulkTransfer interface {
	BulkTransfer(ctx context.Context, token solana.PublicKey, recipients []solana.PublicKey, amounts []*big.Int, total *big.Int) error
}

// Config tunes batch dispatch.
type Config struct {
	// BatchSize caps recipients per BulkTransfer call.
	BatchSize int
	// MaxRetries bounds backoff retries per batch.
	MaxRetries uint
	// RetryInterval seeds the exponential backoff.
	RetryInterval time.Duration
	// Events is optional; completed rounds are published on it when set.
	Events *events.Bus
}

func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 500 * time.Millisecond
	}
}

// Distributor couples the drip schedule with the payout collaborator.
type Distributor struct {
	agent    solana.PublicKey
	mint     solana.PublicKey
	schedule *vesting.Schedule
	bulk     BulkTransfer
	cfg      Config
	logger   *zap.Logger
}

func New(agent, mint solana.PublicKey, schedule *vesting.Schedule, bulk BulkTransfer, cfg Config, logger *zap.Logger) *Distributor {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Distributor{
		agent:    agent,
		mint:     mint,
		schedule: schedule,
		bulk:     bulk,
		cfg:      cfg,
		logger:   logger.With(zap.String("distributor_mint", mint.String())),
	}
}

// Schedule exposes the underlying drip schedule for read-only queries.
func (d *Distributor) Schedule() *vesting.Schedule { return d.schedule }

// Distributable reports how much the schedule currently releases.
func (d *Distributor) Distributable() *big.Int {
	return d.schedule.AvailableForWithdrawal()
}

// Distribute withdraws the batch total from the schedule and fans the
// recipient list out to the bulk-transfer service in bounded batches. Each
// batch is retried with exponential backoff; batches run concurrently under
// an errgroup. Only the authorized agent may call.
func (d *Distributor) Distribute(ctx context.Context, caller solana.PublicKey, recipients []solana.PublicKey, amounts []*big.Int) error {
	if caller != d.agent {
		return ErrUnauthorized
	}
	if len(recipients) != len(amounts) {
		return ErrBatchMismatch
	}
	if len(recipients) == 0 {
		return nil
	}

	total := new(big.Int)
	for _, a := range amounts {
		if a == nil || a.Sign() <= 0 {
			return fmt.Errorf("distributor: %w", vesting.ErrNothingAvailable)
		}
		total.Add(total, a)
	}
	if total.Cmp(d.schedule.AvailableForWithdrawal()) > 0 {
		return ErrBatchTooLarge
	}

	// Record the withdrawal first so the drip accounting can never double
	// count, then dispatch the payouts.
	if _, err := d.withdrawExactly(ctx, total); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(recipients); start += d.cfg.BatchSize {
		end := start + d.cfg.BatchSize
		if end > len(recipients) {
			end = len(recipients)
		}
		recBatch := recipients[start:end]
		amtBatch := amounts[start:end]
		g.Go(func() error {
			return d.dispatchBatch(gctx, recBatch, amtBatch)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	d.logger.Info("distribution completed",
		zap.Int("recipients", len(recipients)),
		zap.String("total", total.String()))
	if d.cfg.Events != nil {
		_ = d.cfg.Events.Publish(events.DistributionEvent{
			BaseEvent:  events.BaseEvent{EventTime: time.Now().UTC()},
			Mint:       d.mint,
			Recipients: len(recipients),
			Total:      new(big.Int).Set(total),
		})
	}
	return nil
}

// withdrawExactly pulls total out of the schedule. The schedule pays the full
// entitlement, so any excess over the batch total stays with the agent for
// later batches.
func (d *Distributor) withdrawExactly(ctx context.Context, total *big.Int) (*big.Int, error) {
	paid, err := d.schedule.Withdraw(ctx, d.agent)
	if err != nil {
		return nil, err
	}
	if paid.Cmp(total) < 0 {
		return nil, ErrBatchTooLarge
	}
	return paid, nil
}

func (d *Distributor) dispatchBatch(ctx context.Context, recipients []solana.PublicKey, amounts []*big.Int) error {
	total := new(big.Int)
	for _, a := range amounts {
		total.Add(total, a)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.cfg.RetryInterval
	policy.MaxInterval = d.cfg.RetryInterval * 10

	notify := func(err error, wait time.Duration) {
		d.logger.Warn("bulk transfer retry",
			zap.Int("recipients", len(recipients)),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	operation := func() (struct{}, error) {
		return struct{}{}, d.bulk.BulkTransfer(ctx, d.mint, recipients, amounts, total)
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(d.cfg.MaxRetries),
		backoff.WithNotify(notify))
	if err != nil {
		return fmt.Errorf("bulk transfer failed after retries: %w", err)
	}
	return nil
}
