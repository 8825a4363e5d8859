package payment

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/quorail/turnstile/pkg/account"
	"github.com/quorail/turnstile/pkg/funds"
	"github.com/quorail/turnstile/pkg/observability"
	"github.com/quorail/turnstile/pkg/oracle"
)

// DefaultMaxStale is the staleness bound applied to oracle readings when
// none is configured.
const DefaultMaxStale = time.Hour

var tracer = otel.Tracer("github.com/quorail/turnstile/pkg/payment")

// Engine validates oracle readings, converts USD base amounts to native
// units, and settles funds with exact-or-refund semantics.
type Engine struct {
	mu       sync.RWMutex
	feed     oracle.PriceFeed
	treasury *funds.Treasury
	transfer funds.Transferer
	guard    *Guard
	maxStale time.Duration
	now      func() time.Time
	log      *logrus.Logger
	metrics  *observability.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxStale overrides the staleness bound.
func WithMaxStale(d time.Duration) Option {
	return func(e *Engine) { e.maxStale = d }
}

// WithClock overrides the time source. Tests use this to walk the clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithGuard shares an existing in-flight guard, letting the registry and
// the engine reject each other's reentrant calls.
func WithGuard(g *Guard) Option {
	return func(e *Engine) { e.guard = g }
}

// NewEngine creates a settlement engine over the given feed, treasury and
// outbound transferer.
func NewEngine(feed oracle.PriceFeed, treasury *funds.Treasury, transfer funds.Transferer, opts ...Option) (*Engine, error) {
	if feed == nil {
		return nil, fmt.Errorf("payment: price feed is required")
	}
	if treasury == nil {
		return nil, fmt.Errorf("payment: treasury is required")
	}
	if transfer == nil {
		return nil, fmt.Errorf("payment: transferer is required")
	}

	e := &Engine{
		feed:     feed,
		treasury: treasury,
		transfer: transfer,
		maxStale: DefaultMaxStale,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.guard == nil {
		e.guard = NewGuard()
	}
	if e.log == nil {
		e.log = logrus.New()
	}
	if e.metrics == nil {
		e.metrics = observability.NewMetrics(nil)
	}
	return e, nil
}

// Guard returns the engine's in-flight guard.
func (e *Engine) Guard() *Guard { return e.guard }

// Treasury returns the engine's treasury.
func (e *Engine) Treasury() *funds.Treasury { return e.treasury }

// SetFeed replaces the active price feed.
func (e *Engine) SetFeed(feed oracle.PriceFeed) error {
	if feed == nil {
		return fmt.Errorf("payment: price feed is required")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.feed = feed
	return nil
}

// Decimals returns the active feed's decimal scale.
func (e *Engine) Decimals(ctx context.Context) (uint8, error) {
	e.mu.RLock()
	feed := e.feed
	e.mu.RUnlock()
	return feed.Decimals(ctx)
}

// Settle collects exactly the native-currency amount owed for usdBase
// against the tendered amount, refunding any excess to the payer. It
// returns the consumed amount. On any failure nothing is collected and no
// state changes.
func (e *Engine) Settle(ctx context.Context, payer account.ID, usdBase uint64, tendered *big.Int) (*big.Int, error) {
	ctx, span := tracer.Start(ctx, "payment.Settle")
	defer span.End()
	span.SetAttributes(attribute.Int64("usd_base", int64(usdBase)))

	if err := e.guard.Check(); err != nil {
		return nil, err
	}
	start := e.now()

	required, err := e.quote(ctx, usdBase)
	if err != nil {
		return nil, err
	}

	if tendered == nil {
		tendered = new(big.Int)
	}
	if tendered.Cmp(required) < 0 {
		return nil, fmt.Errorf("%w: required %s, tendered %s",
			ErrInsufficientFunds, required, tendered)
	}

	// Refund before the treasury credit: a failed refund aborts the whole
	// settlement with no funds retained.
	excess := new(big.Int).Sub(tendered, required)
	if excess.Sign() > 0 {
		if err := e.guard.Arm(); err != nil {
			return nil, err
		}
		err := e.transfer.Transfer(ctx, payer, excess)
		e.guard.Disarm()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
		}
		e.metrics.RefundsTotal.Inc()
	}

	e.treasury.Credit(required)
	e.metrics.SettlementDuration.WithLabelValues("settle").Observe(e.now().Sub(start).Seconds())

	e.log.WithFields(logrus.Fields{
		"payer":    payer,
		"usd_base": usdBase,
		"required": required.String(),
		"refunded": excess.String(),
	}).Debug("settlement collected")

	return required, nil
}

// Quote returns the native-currency amount currently required for usdBase,
// running the full oracle validation path without moving funds.
func (e *Engine) Quote(ctx context.Context, usdBase uint64) (*big.Int, error) {
	return e.quote(ctx, usdBase)
}

// Payout transfers the entire treasury balance to the given account under
// the reentrancy guard and returns the amount moved.
func (e *Engine) Payout(ctx context.Context, to account.ID) (*big.Int, error) {
	if err := e.guard.Check(); err != nil {
		return nil, err
	}
	if err := e.guard.Arm(); err != nil {
		return nil, err
	}
	defer e.guard.Disarm()

	amount, err := e.treasury.WithdrawAll(ctx, to, e.transfer)
	if err != nil {
		return nil, err
	}
	e.metrics.WithdrawalsTotal.Inc()
	return amount, nil
}

func (e *Engine) quote(ctx context.Context, usdBase uint64) (*big.Int, error) {
	e.mu.RLock()
	feed := e.feed
	e.mu.RUnlock()

	round, err := feed.LatestRound(ctx)
	if err != nil {
		return nil, fmt.Errorf("payment: oracle read failed: %w", err)
	}
	if err := e.validateRound(round); err != nil {
		return nil, err
	}
	decimals, err := feed.Decimals(ctx)
	if err != nil {
		return nil, fmt.Errorf("payment: oracle read failed: %w", err)
	}
	return RequiredAmount(usdBase, decimals, round.Price), nil
}

// validateRound applies the four oracle checks in order, failing fast on
// the first violation.
func (e *Engine) validateRound(round oracle.Round) error {
	if round.Price == nil || round.Price.Sign() <= 0 {
		e.metrics.OracleRejectionsTotal.WithLabelValues("invalid_price").Inc()
		return ErrInvalidOraclePrice
	}
	if round.UpdatedAt.IsZero() {
		e.metrics.OracleRejectionsTotal.WithLabelValues("no_update").Inc()
		return ErrInvalidOracleUpdate
	}
	if round.AnsweredInRound < round.RoundID {
		e.metrics.OracleRejectionsTotal.WithLabelValues("lagging_round").Inc()
		return ErrInvalidOracleRound
	}
	if e.now().Sub(round.UpdatedAt) > e.maxStale {
		e.metrics.OracleRejectionsTotal.WithLabelValues("stale").Inc()
		return ErrOracleTimeout
	}
	return nil
}
