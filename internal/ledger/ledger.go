// Package ledger defines the external collaborator boundary for balance
// movement. The engine never mints or burns; it only moves pre-existing
// balances between accounts identified by opaque public-key handles. A
// deployment wires two instances: the reserve-token ledger and the
// native-currency ledger.
package ledger

import (
	"context"
	"errors"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

var ErrInsufficientBalance = errors.New("ledger: insufficient balance")

// Ledger is the minimal transfer surface the engine depends on. A chain-backed
// implementation would translate these calls into token-program instructions;
// the in-memory implementation below serves tests and simulation.
type Ledger interface {
	// Balance reports the current balance of an account. Accounts that were
	// never credited report zero.
	Balance(ctx context.Context, account solana.PublicKey) (*big.Int, error)

	// Transfer moves amount from one account to another. It fails with
	// ErrInsufficientBalance when the source cannot cover the amount, and
	// must leave both balances untouched on failure.
	Transfer(ctx context.Context, from, to solana.PublicKey, amount *big.Int) error
}
