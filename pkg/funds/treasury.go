package funds

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/quorail/turnstile/pkg/account"
)

// ErrWithdrawalFailed is returned when the payout transfer fails; the
// treasury balance is left untouched.
var ErrWithdrawalFailed = errors.New("funds: withdrawal failed")

// Transferer moves native-currency value from the engine to an account.
// Implementations are external and untrusted: a transfer may fail, and it
// may hand control to arbitrary code before returning.
type Transferer interface {
	Transfer(ctx context.Context, to account.ID, amount *big.Int) error
}

// TransferFunc adapts a function to the Transferer interface.
type TransferFunc func(ctx context.Context, to account.ID, amount *big.Int) error

// Transfer implements Transferer.
func (f TransferFunc) Transfer(ctx context.Context, to account.ID, amount *big.Int) error {
	return f(ctx, to, amount)
}

// Treasury holds the engine's collected balance. All mutation goes through
// Credit and WithdrawAll; there is no partial debit.
type Treasury struct {
	mu      sync.Mutex
	balance big.Int
}

// NewTreasury returns an empty treasury.
func NewTreasury() *Treasury {
	return &Treasury{}
}

// Credit adds a settled amount to the held balance.
func (t *Treasury) Credit(amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balance.Add(&t.balance, amount)
}

// Balance returns a copy of the held balance.
func (t *Treasury) Balance() *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(&t.balance)
}

// WithdrawAll transfers the entire held balance to the given account and
// returns the amount moved. The operation is all-or-nothing: on transfer
// failure the balance is untouched and ErrWithdrawalFailed is returned.
// An empty treasury withdraws zero without invoking the transferer.
func (t *Treasury) WithdrawAll(ctx context.Context, to account.ID, via Transferer) (*big.Int, error) {
	t.mu.Lock()
	amount := new(big.Int).Set(&t.balance)
	t.mu.Unlock()

	if amount.Sign() == 0 {
		return amount, nil
	}

	// The transfer runs without the lock held; concurrent credits keep
	// accumulating and survive the debit below.
	if err := via.Transfer(ctx, to, amount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWithdrawalFailed, err)
	}

	t.mu.Lock()
	t.balance.Sub(&t.balance, amount)
	t.mu.Unlock()
	return amount, nil
}
