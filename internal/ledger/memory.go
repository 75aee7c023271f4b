package ledger

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Memory is a mutex-guarded in-process ledger. The issuing process uses Mint
// to create the launch supply; everything else goes through Transfer.
type Memory struct {
	mu       sync.Mutex
	balances map[solana.PublicKey]*big.Int
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[solana.PublicKey]*big.Int)}
}

func (m *Memory) Balance(_ context.Context, account solana.PublicKey) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bal, ok := m.balances[account]; ok {
		return new(big.Int).Set(bal), nil
	}
	return new(big.Int), nil
}

func (m *Memory) Transfer(_ context.Context, from, to solana.PublicKey, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("ledger: negative transfer amount")
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.balances[from]
	if !ok || src.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	src.Sub(src, amount)
	dst, ok := m.balances[to]
	if !ok {
		dst = new(big.Int)
		m.balances[to] = dst
	}
	dst.Add(dst, amount)
	return nil
}

// Mint credits an account out of thin air. Only the issuing process and tests
// call this; the engine itself never does.
func (m *Memory) Mint(account solana.PublicKey, amount *big.Int) {
	if amount.Sign() <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[account]
	if !ok {
		bal = new(big.Int)
		m.balances[account] = bal
	}
	bal.Add(bal, amount)
}
