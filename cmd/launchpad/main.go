// Command launchpad runs a token launch against in-memory ledgers and prints
// the resulting market quotes and vesting preview. It exercises the full
// engine end to end without any chain runtime.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mintcurve/launchpad/internal/config"
	"github.com/mintcurve/launchpad/internal/distributor"
	"github.com/mintcurve/launchpad/internal/events"
	"github.com/mintcurve/launchpad/internal/launch"
	"github.com/mintcurve/launchpad/internal/ledger"
	"github.com/mintcurve/launchpad/internal/logger"
	"github.com/mintcurve/launchpad/internal/market"
	"github.com/mintcurve/launchpad/internal/storage"
	"github.com/mintcurve/launchpad/internal/storage/postgres"
	"github.com/mintcurve/launchpad/internal/vesting"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(28)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
)

func main() {
	configPath := flag.String("config", "configs/launch.yaml", "launch configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Fatal("launch simulation failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	token := ledger.NewMemory()
	native := ledger.NewMemory()

	bus := events.NewBus(log, 64)
	defer func() { _ = bus.Shutdown(ctx) }()

	// With a DSN configured every trade and distribution round lands in the
	// journal; without one the bus only feeds logging.
	if cfg.DatabaseDSN != "" {
		store, err := postgres.NewStorage(cfg.DatabaseDSN, log)
		if err != nil {
			return fmt.Errorf("opening trade journal: %w", err)
		}
		defer store.Close()
		if err := store.RunMigrations(); err != nil {
			return fmt.Errorf("migrating trade journal: %w", err)
		}
		recorder := storage.NewRecorder(store, log)
		recorder.Attach(bus)
		defer recorder.Detach()
	}
	bus.SubscribeFunc(events.TradeExecuted, func(_ context.Context, e events.Event) error {
		trade, ok := e.(events.TradeEvent)
		if !ok {
			return nil
		}
		log.Info("trade settled",
			zap.String("side", string(trade.Side)),
			zap.String("amount", trade.Amount.String()),
			zap.String("payment", trade.Payment.String()))
		return nil
	})

	issuer := solana.NewWallet().PublicKey()
	creator := solana.NewWallet().PublicKey()
	agent := solana.NewWallet().PublicKey()
	feeRecipient := solana.NewWallet().PublicKey()
	trader := solana.NewWallet().PublicKey()

	supply, err := cfg.Supply()
	if err != nil {
		return err
	}
	curve, err := cfg.Curve()
	if err != nil {
		return err
	}
	distShare := new(big.Int).Mul(supply, new(big.Int).SetUint64(cfg.DistributorPercent))
	distShare.Div(distShare, big.NewInt(100))
	dripPolicy, err := cfg.DistributorPolicy(distShare)
	if err != nil {
		return err
	}

	token.Mint(issuer, supply)

	result, err := launch.Execute(ctx, issuer, launch.Params{
		Creator:            creator,
		Mint:               solana.NewWallet().PublicKey(),
		TotalSupply:        supply,
		MarketPercent:      cfg.MarketPercent,
		VaultPercent:       cfg.VaultPercent,
		DistributorPercent: cfg.DistributorPercent,
		FeeRecipient:       feeRecipient,
		BuyFeeBps:          cfg.BuyFeeBps,
		SellFeeBps:         cfg.SellFeeBps,
		Curve:              curve,
		VaultPolicy:        cfg.VaultPolicy(),
		DistributorPolicy:  dripPolicy,
		DistributorConfig: distributor.Config{
			BatchSize:     cfg.BatchSize,
			MaxRetries:    cfg.Retries,
			RetryInterval: time.Duration(cfg.RetryDelayMs) * time.Millisecond,
		},
		Agent: agent,
	}, launch.Deps{
		Token:  token,
		Native: native,
		Bulk:   distributor.NewLedgerBulk(token, agent),
		Clock:  vesting.SystemClock,
		Events: bus,
		Logger: log,
	})
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Launch"))
	printRow("total supply", formatTokens(supply, curve))
	printRow("market address", result.Market.Address().String())
	printRow("vault initial balance", formatTokens(result.Vault.InitialBalance(), curve))
	printRow("distributable today", formatTokens(result.Distributor.Distributable(), curve))

	// Quote ladder before any trading.
	fmt.Println(titleStyle.Render("Quotes"))
	for _, units := range []int64{1, 10, 100, 1000} {
		amount := new(big.Int).Mul(big.NewInt(units), curve.Normalizer)
		cost := result.Market.BuyPriceWithFee(amount)
		printRow(fmt.Sprintf("buy %d units", units), formatNative(cost))
	}

	// Round trip: fund a trader, buy, then sell the same amount back.
	tradeAmount := new(big.Int).Mul(big.NewInt(100), curve.Normalizer)
	budget := result.Market.BuyPriceWithFee(tradeAmount)
	native.Mint(trader, budget)

	cost, err := result.Market.Buy(ctx, trader, tradeAmount, budget)
	if err != nil {
		return fmt.Errorf("simulated buy: %w", err)
	}
	proceeds, err := result.Market.Sell(ctx, trader, tradeAmount)
	if err != nil {
		return fmt.Errorf("simulated sell: %w", err)
	}

	fmt.Println(titleStyle.Render("Round trip"))
	printRow("buy cost", formatNative(cost))
	printRow("sell proceeds", formatNative(proceeds))
	printRow("fees collected", formatNative(result.Market.LifetimeFees()))
	printRow("effective supply", result.Market.EffectiveSupply().String())

	fmt.Println(titleStyle.Render("Vesting"))
	printRow("creator available now", formatTokens(result.Vault.AvailableForWithdrawal(), curve))
	printRow("withdrawn to date", formatTokens(result.Vault.Withdrawn(), curve))
	return nil
}

func printRow(label, value string) {
	fmt.Println(labelStyle.Render(label) + valueStyle.Render(value))
}

// formatNative renders a base-unit amount as a decimal with 18 places.
func formatNative(v *big.Int) string {
	return decimal.NewFromBigInt(v, -18).String()
}

// formatTokens renders a token amount in whole-token units.
func formatTokens(v *big.Int, curve market.CurveParams) string {
	return decimal.NewFromBigInt(v, -18).String() + " tokens"
}
