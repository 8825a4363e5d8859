package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/quorail/turnstile/pkg/account"
	"github.com/quorail/turnstile/pkg/authz"
	"github.com/quorail/turnstile/pkg/events"
	"github.com/quorail/turnstile/pkg/funds"
	"github.com/quorail/turnstile/pkg/observability"
	"github.com/quorail/turnstile/pkg/oracle"
	"github.com/quorail/turnstile/pkg/payment"
)

var tracer = otel.Tracer("github.com/quorail/turnstile/pkg/registry")

// Service is the engine's single entry point: the account registry, the
// tier state machine, and the gated configuration singleton.
type Service struct {
	mu       sync.RWMutex
	accounts map[account.ID]*Account
	nextSeq  uint64
	cfg      Config

	payments   *payment.Engine
	auth       *authz.Authorizer
	guard      *payment.Guard
	dispatcher *events.Dispatcher
	sinks      []events.Sink
	now        func() time.Time
	log        *logrus.Logger
	metrics    *observability.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for expiry arithmetic and
// staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSinks registers event sinks on the service dispatcher.
func WithSinks(sinks ...events.Sink) Option {
	return func(s *Service) { s.sinks = append(s.sinks, sinks...) }
}

// New constructs the engine: registry, payment engine, authorization
// overlay and event dispatcher, wired over one shared reentrancy guard.
// Construction fails if the owner or feed is absent, either fee is zero,
// the plus period is non-positive, or the period bound is zero.
func New(cfg Config, owner account.ID, feed oracle.PriceFeed, transfer funds.Transferer, opts ...Option) (*Service, error) {
	if owner.IsZero() {
		return nil, ErrInvalidAddress
	}
	if feed == nil {
		return nil, ErrInvalidAddress
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		accounts: make(map[account.ID]*Account),
		nextSeq:  1,
		cfg:      cfg,
		guard:    payment.NewGuard(),
		now:      time.Now,
	}
	s.log = logrus.New()
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics(nil)
	}
	s.dispatcher = events.NewDispatcher(s.log, s.sinks...)

	engineOpts := []payment.Option{
		payment.WithGuard(s.guard),
		payment.WithClock(func() time.Time { return s.now() }),
		payment.WithLogger(s.log),
		payment.WithMetrics(s.metrics),
	}
	if cfg.MaxStale > 0 {
		engineOpts = append(engineOpts, payment.WithMaxStale(cfg.MaxStale))
	}
	engine, err := payment.NewEngine(feed, funds.NewTreasury(), transfer, engineOpts...)
	if err != nil {
		return nil, err
	}
	s.payments = engine

	// Admin grants are restricted to registered accounts.
	auth, err := authz.New(owner, authz.WithRegistrationCheck(s.isRegistered))
	if err != nil {
		return nil, err
	}
	s.auth = auth

	return s, nil
}

// Register creates the caller's account at the FREEMIUM tier, assigning
// the next sequence id. Sequence ids are never reused.
func (s *Service) Register(ctx context.Context, caller account.ID, fid int64) error {
	if err := s.guard.Check(); err != nil {
		return err
	}
	if caller.IsZero() {
		return ErrInvalidAddress
	}
	if fid < 1 {
		return ErrInvalidFID
	}

	s.mu.Lock()
	if _, ok := s.accounts[caller]; ok {
		s.mu.Unlock()
		return ErrAlreadyExists
	}
	seq := s.nextSeq
	s.nextSeq++
	s.accounts[caller] = &Account{Seq: seq, FID: fid, Tier: TierFreemium}
	s.mu.Unlock()

	s.metrics.AccountsRegistered.Inc()
	s.metrics.TierTransitions.WithLabelValues(TierFreemium.String()).Inc()
	s.log.WithFields(logrus.Fields{"account": caller, "fid": fid, "seq": seq}).Info("user registered")

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypeUserRegistered,
		Account: caller,
		Data:    map[string]any{"fid": fid, "seq": seq},
	})
	return nil
}

// UpdateFID replaces the caller's external identifier. Tier and expiry
// are untouched.
func (s *Service) UpdateFID(ctx context.Context, caller account.ID, fid int64) error {
	if err := s.guard.Check(); err != nil {
		return err
	}

	s.mu.Lock()
	rec, ok := s.accounts[caller]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if fid < 1 {
		s.mu.Unlock()
		return ErrInvalidFID
	}
	previous := rec.FID
	rec.FID = fid
	s.mu.Unlock()

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypeUserUpdated,
		Account: caller,
		Data:    map[string]any{"fid": fid, "previous_fid": previous},
	})
	return nil
}

// Delete resets the caller's account to the unregistered state, clearing
// every field, and returns the previous external identifier. A deleted
// account is indistinguishable from one that never existed; a subsequent
// registration assigns a fresh sequence id.
func (s *Service) Delete(ctx context.Context, caller account.ID) (int64, error) {
	if err := s.guard.Check(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	rec, ok := s.accounts[caller]
	if !ok {
		s.mu.Unlock()
		return 0, ErrNotFound
	}
	fid := rec.FID
	delete(s.accounts, caller)
	s.mu.Unlock()

	s.metrics.AccountsRegistered.Dec()
	s.log.WithFields(logrus.Fields{"account": caller, "fid": fid}).Info("user deleted")

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypeUserDeleted,
		Account: caller,
		Data:    map[string]any{"fid": fid},
	})
	return fid, nil
}

// isRegistered backs the authorization overlay's registration check.
func (s *Service) isRegistered(id account.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[id]
	return ok
}

// effectiveTier applies the lazy PLUS-expiry rule to a record. Callers
// hold at least the read lock.
func (s *Service) effectiveTier(rec *Account) Tier {
	if rec.Tier == TierPlus && s.now().After(rec.ExpiresAt) {
		return TierPremium
	}
	return rec.Tier
}

// plusActive reports whether a record holds an unexpired PLUS
// subscription; expiry is exclusive. Callers hold at least the read lock.
func (s *Service) plusActive(rec *Account) bool {
	return rec.Tier == TierPlus && s.now().Before(rec.ExpiresAt)
}

// extendPlus applies the uniform expiry-extension rule: a lapsed window
// (or a tier that never had one) starts fresh from now, an active window
// stacks. Callers hold the write lock.
func (s *Service) extendPlus(rec *Account, periods uint32) time.Time {
	extension := s.cfg.PlusPeriod * time.Duration(periods)
	now := s.now()
	if now.After(rec.ExpiresAt) {
		rec.ExpiresAt = now.Add(extension)
	} else {
		rec.ExpiresAt = rec.ExpiresAt.Add(extension)
	}
	rec.Tier = TierPlus
	return rec.ExpiresAt
}

func validPeriods(periods, max uint32) error {
	if periods == 0 {
		return ErrInvalidPeriod
	}
	if periods > max {
		return fmt.Errorf("%w: %d > %d", ErrMaxPeriodExceeded, periods, max)
	}
	return nil
}
