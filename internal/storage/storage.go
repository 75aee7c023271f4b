// Package storage persists launch activity for later inspection. Trades and
// distribution rounds arrive via the event bus, so a slow or absent database
// never sits on the trading path.
package storage

import (
	"context"

	"github.com/mintcurve/launchpad/internal/storage/models"
)

type Storage interface {
	SaveTrade(ctx context.Context, trade *models.Trade) error
	ListTrades(ctx context.Context, market string, limit, offset int) ([]*models.Trade, error)

	SaveFeeWithdrawal(ctx context.Context, w *models.FeeWithdrawal) error

	SaveDistribution(ctx context.Context, d *models.Distribution) error
	ListDistributions(ctx context.Context, mint string, limit, offset int) ([]*models.Distribution, error)

	RunMigrations() error
	Close() error
}
