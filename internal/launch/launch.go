// Package launch is the issuing process: it splits a fixed token supply
// across the bonding-curve market, the creator vault and the time-locked
// distributor, and wires the three components up in explicit construction
// order. Registry records and token minting itself stay outside; the launch
// consumes a supply already credited to the issuer.
package launch

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/mintcurve/launchpad/internal/distributor"
	"github.com/mintcurve/launchpad/internal/events"
	"github.com/mintcurve/launchpad/internal/ledger"
	"github.com/mintcurve/launchpad/internal/market"
	"github.com/mintcurve/launchpad/internal/vesting"
)

var ErrBadSplit = errors.New("launch: split percentages must sum to 100")

// Params describes one token launch.
type Params struct {
	Creator solana.PublicKey
	Mint    solana.PublicKey
	// TotalSupply is split across the three destinations.
	TotalSupply *big.Int

	MarketPercent      uint64
	VaultPercent       uint64
	DistributorPercent uint64

	FeeRecipient solana.PublicKey
	BuyFeeBps    uint64
	SellFeeBps   uint64
	Curve        market.CurveParams

	VaultPolicy       vesting.LockThenDrip
	DistributorPolicy vesting.FixedDrip
	DistributorConfig distributor.Config
	// Agent is the identity driving distributor payouts.
	Agent solana.PublicKey
}

// Deps are the external collaborators a launch runs against.
type Deps struct {
	Token  ledger.Ledger
	Native ledger.Ledger
	Bulk   distributor.BulkTransfer
	Clock  vesting.Clock
	// Events is optional; market and distributor activity is published on
	// it when set.
	Events *events.Bus
	Logger *zap.Logger
}

// Launch is the deployed component set for one token.
type Launch struct {
	Market      *market.Market
	Vault       *vesting.Schedule
	Distributor *distributor.Distributor
}

// Execute splits the issuer's supply and constructs market, vault and
// distributor in that order, initializing each vesting schedule only after
// its share has landed so the snapshot captures the funded balance.
func Execute(ctx context.Context, issuer solana.PublicKey, p Params, d Deps) (*Launch, error) {
	if p.MarketPercent+p.VaultPercent+p.DistributorPercent != 100 {
		return nil, ErrBadSplit
	}
	if p.TotalSupply == nil || p.TotalSupply.Sign() <= 0 {
		return nil, market.ErrInvalidAmount
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	marketShare := percentOf(p.TotalSupply, p.MarketPercent)
	vaultShare := percentOf(p.TotalSupply, p.VaultPercent)
	// The distributor takes the remainder so rounding never strands supply
	// at the issuer.
	distShare := new(big.Int).Sub(p.TotalSupply, new(big.Int).Add(marketShare, vaultShare))

	marketAccount := solana.NewWallet().PublicKey()
	vaultAccount := solana.NewWallet().PublicKey()
	distAccount := solana.NewWallet().PublicKey()

	mkt, err := market.New(market.Config{
		Address:      marketAccount,
		ReserveMint:  p.Mint,
		FeeRecipient: p.FeeRecipient,
		BuyFeeBps:    p.BuyFeeBps,
		SellFeeBps:   p.SellFeeBps,
		Curve:        p.Curve,
		Events:       d.Events,
	}, d.Token, d.Native, d.Logger)
	if err != nil {
		return nil, fmt.Errorf("constructing market: %w", err)
	}
	if err := d.Token.Transfer(ctx, issuer, marketAccount, marketShare); err != nil {
		return nil, fmt.Errorf("funding market: %w", err)
	}

	vault, err := vesting.New(p.Creator, vaultAccount, d.Token, p.VaultPolicy, d.Clock, d.Logger)
	if err != nil {
		return nil, fmt.Errorf("constructing vault: %w", err)
	}
	if err := d.Token.Transfer(ctx, issuer, vaultAccount, vaultShare); err != nil {
		return nil, fmt.Errorf("funding vault: %w", err)
	}
	if err := vault.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initializing vault: %w", err)
	}

	distSchedule, err := vesting.New(p.Agent, distAccount, d.Token, p.DistributorPolicy, d.Clock, d.Logger)
	if err != nil {
		return nil, fmt.Errorf("constructing distributor schedule: %w", err)
	}
	if err := d.Token.Transfer(ctx, issuer, distAccount, distShare); err != nil {
		return nil, fmt.Errorf("funding distributor: %w", err)
	}
	if err := distSchedule.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initializing distributor schedule: %w", err)
	}
	distCfg := p.DistributorConfig
	distCfg.Events = d.Events
	dist := distributor.New(p.Agent, p.Mint, distSchedule, d.Bulk, distCfg, d.Logger)

	d.Logger.Info("launch executed",
		zap.String("mint", p.Mint.String()),
		zap.String("market_share", marketShare.String()),
		zap.String("vault_share", vaultShare.String()),
		zap.String("distributor_share", distShare.String()))
	return &Launch{Market: mkt, Vault: vault, Distributor: dist}, nil
}

func percentOf(total *big.Int, pct uint64) *big.Int {
	out := new(big.Int).Mul(total, new(big.Int).SetUint64(pct))
	return out.Div(out, big.NewInt(100))
}
