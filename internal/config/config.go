// Package config loads launch parameters from a viper-backed file with
// environment overrides. Curve constants and supply figures are decimal
// strings so they survive values beyond uint64.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mintcurve/launchpad/internal/market"
	"github.com/mintcurve/launchpad/internal/vesting"
)

type Config struct {
	LogFile      string `mapstructure:"log_file"`
	DebugLogging bool   `mapstructure:"debug_logging"`

	// DatabaseDSN enables the trade journal when set.
	DatabaseDSN string `mapstructure:"database_dsn"`

	TotalSupply        string `mapstructure:"total_supply"`
	MarketPercent      uint64 `mapstructure:"market_percent"`
	VaultPercent       uint64 `mapstructure:"vault_percent"`
	DistributorPercent uint64 `mapstructure:"distributor_percent"`

	BuyFeeBps  uint64 `mapstructure:"buy_fee_bps"`
	SellFeeBps uint64 `mapstructure:"sell_fee_bps"`

	BasePrice     string `mapstructure:"base_price"`
	Slope         string `mapstructure:"slope"`
	Normalizer    string `mapstructure:"normalizer"`
	ScalingFactor string `mapstructure:"scaling_factor"`
	UnitScale     string `mapstructure:"unit_scale"`

	LockedFraction   uint64 `mapstructure:"locked_fraction"`
	LockDurationDays uint64 `mapstructure:"lock_duration_days"`
	DripIntervalDays uint64 `mapstructure:"drip_interval_days"`
	DripFraction     uint64 `mapstructure:"drip_fraction"`

	DailyDripAmount string `mapstructure:"daily_drip_amount"`
	TotalDays       uint64 `mapstructure:"total_days"`

	BatchSize    int  `mapstructure:"batch_size"`
	Retries      uint `mapstructure:"retries"`
	RetryDelayMs int  `mapstructure:"retry_delay_ms"`
}

const (
	DefaultMarketPercent      = 50
	DefaultVaultPercent       = 30
	DefaultDistributorPercent = 20
	DefaultBuyFeeBps          = 50
	DefaultSellFeeBps         = 100
	DefaultLockedFraction     = 80
	DefaultLockDurationDays   = 180
	DefaultDripIntervalDays   = 30
	DefaultDripFraction       = 10
	DefaultTotalDays          = 365
	DefaultBatchSize          = 100
	DefaultRetries            = 3
	DefaultRetryDelayMs       = 500
)

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := map[string]interface{}{
		"log_file":            "launchpad.log",
		"market_percent":      DefaultMarketPercent,
		"vault_percent":       DefaultVaultPercent,
		"distributor_percent": DefaultDistributorPercent,
		"buy_fee_bps":         DefaultBuyFeeBps,
		"sell_fee_bps":        DefaultSellFeeBps,
		"base_price":          "100",
		"slope":               "1000",
		"normalizer":          "1000000000000",
		"scaling_factor":      "10000000000000000000000000000",
		"unit_scale":          "1000000000000000000",
		"locked_fraction":     DefaultLockedFraction,
		"lock_duration_days":  DefaultLockDurationDays,
		"drip_interval_days":  DefaultDripIntervalDays,
		"drip_fraction":       DefaultDripFraction,
		"total_days":          DefaultTotalDays,
		"batch_size":          DefaultBatchSize,
		"retries":             DefaultRetries,
		"retry_delay_ms":      DefaultRetryDelayMs,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MarketPercent+c.VaultPercent+c.DistributorPercent != 100 {
		return errors.New("split percentages must sum to 100")
	}
	if c.BuyFeeBps > market.FeePrecision || c.SellFeeBps > market.FeePrecision {
		return fmt.Errorf("fee rate above precision %d", market.FeePrecision)
	}
	if c.LockedFraction > 100 || c.DripFraction > 100 {
		return errors.New("vesting fraction above 100 percent")
	}
	if c.TotalSupply == "" {
		return errors.New("missing total_supply")
	}
	for name, s := range map[string]string{
		"total_supply":   c.TotalSupply,
		"base_price":     c.BasePrice,
		"slope":          c.Slope,
		"normalizer":     c.Normalizer,
		"scaling_factor": c.ScalingFactor,
		"unit_scale":     c.UnitScale,
	} {
		if _, err := parseBig(s); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

// Curve assembles the market curve constants.
func (c *Config) Curve() (market.CurveParams, error) {
	basePrice, err := parseBig(c.BasePrice)
	if err != nil {
		return market.CurveParams{}, err
	}
	slope, err := parseBig(c.Slope)
	if err != nil {
		return market.CurveParams{}, err
	}
	normalizer, err := parseBig(c.Normalizer)
	if err != nil {
		return market.CurveParams{}, err
	}
	scaling, err := parseBig(c.ScalingFactor)
	if err != nil {
		return market.CurveParams{}, err
	}
	unit, err := parseBig(c.UnitScale)
	if err != nil {
		return market.CurveParams{}, err
	}
	return market.CurveParams{
		BasePrice:     basePrice,
		Slope:         slope,
		Normalizer:    normalizer,
		ScalingFactor: scaling,
		UnitScale:     unit,
	}, nil
}

// Supply parses the launch total supply.
func (c *Config) Supply() (*big.Int, error) {
	return parseBig(c.TotalSupply)
}

// VaultPolicy assembles the creator-vault schedule.
func (c *Config) VaultPolicy() vesting.LockThenDrip {
	day := 24 * time.Hour
	return vesting.LockThenDrip{
		LockedFraction: c.LockedFraction,
		LockDuration:   time.Duration(c.LockDurationDays) * day,
		DripInterval:   time.Duration(c.DripIntervalDays) * day,
		DripFraction:   c.DripFraction,
	}
}

// DistributorPolicy assembles the fixed daily drip. The per-interval amount
// defaults to an even split of the distributor pool when unset.
func (c *Config) DistributorPolicy(poolSize *big.Int) (vesting.FixedDrip, error) {
	drip := new(big.Int)
	if c.DailyDripAmount != "" {
		parsed, err := parseBig(c.DailyDripAmount)
		if err != nil {
			return vesting.FixedDrip{}, err
		}
		drip = parsed
	} else if c.TotalDays > 0 {
		drip.Div(poolSize, new(big.Int).SetUint64(c.TotalDays))
	}
	return vesting.FixedDrip{
		DripAmount:     drip,
		DripInterval:   24 * time.Hour,
		TotalIntervals: c.TotalDays,
	}, nil
}

func parseBig(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("not an unsigned decimal: %q", s)
	}
	return v, nil
}
