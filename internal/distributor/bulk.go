package distributor

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/mintcurve/launchpad/internal/ledger"
)

// LedgerBulk executes batch payouts directly against a ledger, funded from a
// fixed source account. It serves tests and local simulation; a production
// deployment plugs the signed off-chain distribution service into the
// BulkTransfer seam instead.
type LedgerBulk struct {
	ledger ledger.Ledger
	source solana.PublicKey
}

func NewLedgerBulk(l ledger.Ledger, source solana.PublicKey) *LedgerBulk {
	return &LedgerBulk{ledger: l, source: source}
}

func (b *LedgerBulk) BulkTransfer(ctx context.Context, _ solana.PublicKey, recipients []solana.PublicKey, amounts []*big.Int, total *big.Int) error {
	if len(recipients) != len(amounts) {
		return ErrBatchMismatch
	}
	sum := new(big.Int)
	for _, a := range amounts {
		sum.Add(sum, a)
	}
	if sum.Cmp(total) != 0 {
		return errors.New("distributor: declared total does not match amounts")
	}
	for i, rec := range recipients {
		if err := b.ledger.Transfer(ctx, b.source, rec, amounts[i]); err != nil {
			return fmt.Errorf("paying recipient %s: %w", rec, err)
		}
	}
	return nil
}
