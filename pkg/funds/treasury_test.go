package funds

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorail/turnstile/pkg/account"
)

func TestTreasuryCreditAccumulates(t *testing.T) {
	tr := NewTreasury()
	tr.Credit(big.NewInt(100))
	tr.Credit(big.NewInt(250))

	assert.Equal(t, 0, tr.Balance().Cmp(big.NewInt(350)))
}

func TestTreasuryBalanceIsACopy(t *testing.T) {
	tr := NewTreasury()
	tr.Credit(big.NewInt(100))

	tr.Balance().SetInt64(0)
	assert.Equal(t, 0, tr.Balance().Cmp(big.NewInt(100)))
}

func TestWithdrawAllMovesEntireBalance(t *testing.T) {
	tr := NewTreasury()
	tr.Credit(big.NewInt(777))

	var gotTo account.ID
	var gotAmount *big.Int
	via := TransferFunc(func(ctx context.Context, to account.ID, amount *big.Int) error {
		gotTo = to
		gotAmount = new(big.Int).Set(amount)
		return nil
	})

	amount, err := tr.WithdrawAll(context.Background(), "owner", via)
	require.NoError(t, err)
	assert.Equal(t, 0, amount.Cmp(big.NewInt(777)))
	assert.Equal(t, account.ID("owner"), gotTo)
	assert.Equal(t, 0, gotAmount.Cmp(big.NewInt(777)))
	assert.Equal(t, 0, tr.Balance().Sign())
}

func TestWithdrawAllFailureLeavesBalanceUntouched(t *testing.T) {
	tr := NewTreasury()
	tr.Credit(big.NewInt(500))

	via := TransferFunc(func(ctx context.Context, to account.ID, amount *big.Int) error {
		return errors.New("receiver rejected payment")
	})

	_, err := tr.WithdrawAll(context.Background(), "owner", via)
	assert.ErrorIs(t, err, ErrWithdrawalFailed)
	assert.Equal(t, 0, tr.Balance().Cmp(big.NewInt(500)))
}

func TestWithdrawAllEmptyTreasurySkipsTransfer(t *testing.T) {
	tr := NewTreasury()

	called := false
	via := TransferFunc(func(ctx context.Context, to account.ID, amount *big.Int) error {
		called = true
		return nil
	})

	amount, err := tr.WithdrawAll(context.Background(), "owner", via)
	require.NoError(t, err)
	assert.Equal(t, 0, amount.Sign())
	assert.False(t, called)
}
