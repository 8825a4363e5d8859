package payment

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorail/turnstile/pkg/account"
	"github.com/quorail/turnstile/pkg/funds"
	"github.com/quorail/turnstile/pkg/oracle"
)

const payer = account.ID("payer")

// feedPrice is $4923.00 at 8 decimals; requiredFor10USD is the exact
// native amount owed for a $10 base at that price.
var (
	feedPrice        = big.NewInt(492300000000)
	requiredFor10USD = mustBig("2031281738777169")
)

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad big literal: " + s)
	}
	return v
}

type transferLog struct {
	calls []struct {
		to     account.ID
		amount *big.Int
	}
	fail error
}

func (l *transferLog) Transfer(ctx context.Context, to account.ID, amount *big.Int) error {
	if l.fail != nil {
		return l.fail
	}
	l.calls = append(l.calls, struct {
		to     account.ID
		amount *big.Int
	}{to, new(big.Int).Set(amount)})
	return nil
}

func newTestEngine(t *testing.T, feed oracle.PriceFeed, transfer funds.Transferer, opts ...Option) *Engine {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	e, err := NewEngine(feed, funds.NewTreasury(), transfer, append([]Option{WithLogger(log)}, opts...)...)
	require.NoError(t, err)
	return e
}

func TestNewEngineValidation(t *testing.T) {
	feed := oracle.NewSimulator(8, feedPrice)
	tr := funds.NewTreasury()
	via := &transferLog{}

	_, err := NewEngine(nil, tr, via)
	assert.Error(t, err)
	_, err = NewEngine(feed, nil, via)
	assert.Error(t, err)
	_, err = NewEngine(feed, tr, nil)
	assert.Error(t, err)
}

func TestSettleExactTender(t *testing.T) {
	feed := oracle.NewSimulator(8, feedPrice)
	via := &transferLog{}
	e := newTestEngine(t, feed, via)

	consumed, err := e.Settle(context.Background(), payer, 10, new(big.Int).Set(requiredFor10USD))
	require.NoError(t, err)
	assert.Equal(t, 0, consumed.Cmp(requiredFor10USD))
	assert.Empty(t, via.calls, "exact tender needs no refund")
	assert.Equal(t, 0, e.Treasury().Balance().Cmp(requiredFor10USD))
}

func TestSettleOneUnitShortFails(t *testing.T) {
	feed := oracle.NewSimulator(8, feedPrice)
	via := &transferLog{}
	e := newTestEngine(t, feed, via)

	short := new(big.Int).Sub(requiredFor10USD, big.NewInt(1))
	_, err := e.Settle(context.Background(), payer, 10, short)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 0, e.Treasury().Balance().Sign(), "nothing collected on failure")
}

func TestSettleRefundsExcessExactly(t *testing.T) {
	feed := oracle.NewSimulator(8, feedPrice)
	via := &transferLog{}
	e := newTestEngine(t, feed, via)

	excess := big.NewInt(12345)
	tendered := new(big.Int).Add(requiredFor10USD, excess)
	consumed, err := e.Settle(context.Background(), payer, 10, tendered)
	require.NoError(t, err)

	assert.Equal(t, 0, consumed.Cmp(requiredFor10USD))
	require.Len(t, via.calls, 1)
	assert.Equal(t, payer, via.calls[0].to)
	assert.Equal(t, 0, via.calls[0].amount.Cmp(excess))
	assert.Equal(t, 0, e.Treasury().Balance().Cmp(requiredFor10USD))
}

func TestSettleRefundFailureRollsBack(t *testing.T) {
	feed := oracle.NewSimulator(8, feedPrice)
	via := &transferLog{fail: errors.New("payer rejects refund")}
	e := newTestEngine(t, feed, via)

	tendered := new(big.Int).Add(requiredFor10USD, big.NewInt(1))
	_, err := e.Settle(context.Background(), payer, 10, tendered)
	assert.ErrorIs(t, err, ErrRefundFailed)
	assert.Equal(t, 0, e.Treasury().Balance().Sign(), "no funds retained after failed refund")
}

func TestSettleOracleValidationOrder(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name    string
		mutate  func(*oracle.Simulator)
		wantErr error
	}{
		{
			"non-positive price",
			func(s *oracle.Simulator) { s.SetPrice(big.NewInt(0)); s.SetUpdatedAt(now) },
			ErrInvalidOraclePrice,
		},
		{
			"negative price",
			func(s *oracle.Simulator) { s.SetPrice(big.NewInt(-5)); s.SetUpdatedAt(now) },
			ErrInvalidOraclePrice,
		},
		{
			"zero update time",
			func(s *oracle.Simulator) { s.SetUpdatedAt(time.Time{}) },
			ErrInvalidOracleUpdate,
		},
		{
			"lagging answer round",
			func(s *oracle.Simulator) { s.SetRounds(9, 4) },
			ErrInvalidOracleRound,
		},
		{
			"stale reading",
			func(s *oracle.Simulator) { s.SetUpdatedAt(now.Add(-DefaultMaxStale - time.Second)) },
			ErrOracleTimeout,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			feed := oracle.NewSimulator(8, feedPrice)
			tc.mutate(feed)
			e := newTestEngine(t, feed, &transferLog{}, WithClock(func() time.Time { return now }))

			_, err := e.Settle(context.Background(), payer, 10, new(big.Int).Set(requiredFor10USD))
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, 0, e.Treasury().Balance().Sign())
		})
	}
}

func TestSettleStalenessBoundary(t *testing.T) {
	now := time.Now()
	feed := oracle.NewSimulator(8, feedPrice)
	e := newTestEngine(t, feed, &transferLog{}, WithClock(func() time.Time { return now }))

	// Exactly at the bound passes.
	feed.SetUpdatedAt(now.Add(-DefaultMaxStale))
	_, err := e.Settle(context.Background(), payer, 10, new(big.Int).Set(requiredFor10USD))
	assert.NoError(t, err)

	// One second past the bound fails.
	feed.SetUpdatedAt(now.Add(-DefaultMaxStale - time.Second))
	_, err = e.Settle(context.Background(), payer, 10, new(big.Int).Set(requiredFor10USD))
	assert.ErrorIs(t, err, ErrOracleTimeout)
}

func TestSettleRejectedMidTransfer(t *testing.T) {
	feed := oracle.NewSimulator(8, feedPrice)
	e := newTestEngine(t, feed, funds.TransferFunc(func(ctx context.Context, to account.ID, amount *big.Int) error {
		return nil
	}))

	// Re-entry from inside the refund hop must be rejected.
	var reentrant error
	via := funds.TransferFunc(func(ctx context.Context, to account.ID, amount *big.Int) error {
		_, reentrant = e.Settle(ctx, payer, 10, new(big.Int).Set(requiredFor10USD))
		return nil
	})
	e2, err := NewEngine(feed, e.Treasury(), via, WithGuard(e.Guard()))
	require.NoError(t, err)

	tendered := new(big.Int).Add(requiredFor10USD, big.NewInt(1))
	_, err = e2.Settle(context.Background(), payer, 10, tendered)
	require.NoError(t, err)
	assert.ErrorIs(t, reentrant, ErrReentrantCall)
}

func TestQuoteDoesNotMoveFunds(t *testing.T) {
	feed := oracle.NewSimulator(8, feedPrice)
	via := &transferLog{}
	e := newTestEngine(t, feed, via)

	quote, err := e.Quote(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, quote.Cmp(requiredFor10USD))
	assert.Equal(t, 0, e.Treasury().Balance().Sign())
	assert.Empty(t, via.calls)
}

func TestPayoutMovesEntireBalance(t *testing.T) {
	feed := oracle.NewSimulator(8, feedPrice)
	via := &transferLog{}
	e := newTestEngine(t, feed, via)

	e.Treasury().Credit(big.NewInt(900))
	amount, err := e.Payout(context.Background(), "owner")
	require.NoError(t, err)
	assert.Equal(t, 0, amount.Cmp(big.NewInt(900)))
	assert.Equal(t, 0, e.Treasury().Balance().Sign())
}

func TestPayoutFailureKeepsBalance(t *testing.T) {
	feed := oracle.NewSimulator(8, feedPrice)
	via := &transferLog{fail: errors.New("owner wallet offline")}
	e := newTestEngine(t, feed, via)

	e.Treasury().Credit(big.NewInt(900))
	_, err := e.Payout(context.Background(), "owner")
	assert.ErrorIs(t, err, funds.ErrWithdrawalFailed)
	assert.Equal(t, 0, e.Treasury().Balance().Cmp(big.NewInt(900)))
}

func TestSetFeed(t *testing.T) {
	feed := oracle.NewSimulator(8, feedPrice)
	e := newTestEngine(t, feed, &transferLog{})

	assert.Error(t, e.SetFeed(nil))

	cheaper := oracle.NewSimulator(8, new(big.Int).Mul(feedPrice, big.NewInt(2)))
	require.NoError(t, e.SetFeed(cheaper))

	quote, err := e.Quote(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, -1, quote.Cmp(requiredFor10USD), "doubled price halves the required amount")
}
