// Package models defines the persisted records. Token quantities are stored
// as decimal strings because base-unit amounts overflow every SQL integer
// type.
package models

import "time"

// Trade is one settled buy or sell on a bonding-curve market.
type Trade struct {
	ID      uint   `gorm:"primaryKey"`
	Market  string `gorm:"size:64;not null;index"`
	Mint    string `gorm:"size:64;not null;index"`
	Trader  string `gorm:"size:64;not null;index"`
	Side    string `gorm:"size:4;not null"`
	Amount  string `gorm:"type:numeric(40,0);not null"`
	Payment string `gorm:"type:numeric(40,0);not null"`
	// Supply is the market's effective supply after this trade.
	Supply    string    `gorm:"type:numeric(40,0);not null"`
	TradedAt  time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

func (Trade) TableName() string { return "trades" }

// FeeWithdrawal is one drain of a market's accrued fees.
type FeeWithdrawal struct {
	ID          uint      `gorm:"primaryKey"`
	Market      string    `gorm:"size:64;not null;index"`
	Recipient   string    `gorm:"size:64;not null"`
	Amount      string    `gorm:"type:numeric(40,0);not null"`
	WithdrawnAt time.Time `gorm:"index;not null"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

func (FeeWithdrawal) TableName() string { return "fee_withdrawals" }

// Distribution is one completed distributor batch.
type Distribution struct {
	ID            uint      `gorm:"primaryKey"`
	Mint          string    `gorm:"size:64;not null;index"`
	Recipients    int       `gorm:"not null"`
	Total         string    `gorm:"type:numeric(40,0);not null"`
	DistributedAt time.Time `gorm:"index;not null"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

func (Distribution) TableName() string { return "distributions" }
