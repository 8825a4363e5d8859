package registry

import (
	"context"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/quorail/turnstile/pkg/account"
	"github.com/quorail/turnstile/pkg/events"
)

// PayForPremium settles the premium fee against the tendered amount and
// upgrades the caller to PREMIUM, returning the consumed amount. A PLUS
// holder may buy premium; the stored tier is overwritten while the stale
// expiry field is left as-is (it is meaningless outside TierPlus).
func (s *Service) PayForPremium(ctx context.Context, caller account.ID, tendered *big.Int) (*big.Int, error) {
	ctx, span := tracer.Start(ctx, "registry.PayForPremium")
	defer span.End()
	span.SetAttributes(attribute.String("account", caller.String()))

	if err := s.guard.Check(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	rec, ok := s.accounts[caller]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if rec.Tier == TierPremium {
		s.mu.Unlock()
		return nil, ErrAlreadyPremium
	}

	consumed, err := s.payments.Settle(ctx, caller, s.cfg.PremiumFeeUSD, tendered)
	if err != nil {
		s.mu.Unlock()
		s.metrics.SettlementsTotal.WithLabelValues("premium", "rejected").Inc()
		return nil, err
	}

	rec.Tier = TierPremium
	s.mu.Unlock()

	s.metrics.SettlementsTotal.WithLabelValues("premium", "ok").Inc()
	s.metrics.TierTransitions.WithLabelValues(TierPremium.String()).Inc()
	s.log.WithFields(logrus.Fields{"account": caller, "amount": consumed.String()}).Info("premium paid")

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypePremiumPaid,
		Account: caller,
		Data:    map[string]any{"amount": consumed.String()},
	})
	return consumed, nil
}

// SubscribePlus settles periods times the plus fee and extends the
// caller's PLUS window, returning the consumed amount and the new expiry.
// A lapsed window restarts from now; an active one stacks.
func (s *Service) SubscribePlus(ctx context.Context, caller account.ID, periods uint32, tendered *big.Int) (*big.Int, time.Time, error) {
	ctx, span := tracer.Start(ctx, "registry.SubscribePlus")
	defer span.End()
	span.SetAttributes(
		attribute.String("account", caller.String()),
		attribute.Int64("periods", int64(periods)),
	)

	if err := s.guard.Check(); err != nil {
		return nil, time.Time{}, err
	}

	s.mu.Lock()
	rec, ok := s.accounts[caller]
	if !ok {
		s.mu.Unlock()
		return nil, time.Time{}, ErrNotFound
	}
	if err := validPeriods(periods, s.cfg.MaxPeriods); err != nil {
		s.mu.Unlock()
		return nil, time.Time{}, err
	}

	consumed, err := s.payments.Settle(ctx, caller, s.cfg.PlusFeeUSD*uint64(periods), tendered)
	if err != nil {
		s.mu.Unlock()
		s.metrics.SettlementsTotal.WithLabelValues("plus", "rejected").Inc()
		return nil, time.Time{}, err
	}

	expiresAt := s.extendPlus(rec, periods)
	s.mu.Unlock()

	s.metrics.SettlementsTotal.WithLabelValues("plus", "ok").Inc()
	s.metrics.TierTransitions.WithLabelValues(TierPlus.String()).Inc()
	s.log.WithFields(logrus.Fields{
		"account":    caller,
		"periods":    periods,
		"amount":     consumed.String(),
		"expires_at": expiresAt,
	}).Info("plus subscribed")

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypePlusSubscribed,
		Account: caller,
		Data: map[string]any{
			"amount":     consumed.String(),
			"periods":    periods,
			"expires_at": expiresAt,
		},
	})
	return consumed, expiresAt, nil
}

// GrantPremium upgrades an account to PREMIUM without moving funds.
// Privileged. Fails on an unexpired PLUS holder; an expired one is
// silently overwritten, expiry field left as-is.
func (s *Service) GrantPremium(ctx context.Context, caller, target account.ID) error {
	if err := s.auth.RequireOwnerOrAdmin(caller); err != nil {
		return err
	}
	if err := s.guard.Check(); err != nil {
		return err
	}

	s.mu.Lock()
	rec, ok := s.accounts[target]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if s.plusActive(rec) {
		s.mu.Unlock()
		return ErrUserIsPlus
	}
	if rec.Tier == TierPremium {
		s.mu.Unlock()
		return ErrAlreadyPremium
	}
	rec.Tier = TierPremium
	s.mu.Unlock()

	s.metrics.TierTransitions.WithLabelValues(TierPremium.String()).Inc()
	s.log.WithFields(logrus.Fields{"account": target, "granted_by": caller}).Info("premium granted")

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypePremiumPaid,
		Account: target,
		Data:    map[string]any{"amount": "0", "granted_by": caller.String()},
	})
	return nil
}

// GrantPlus extends an account's PLUS window without moving funds.
// Privileged. Period bounds and expiry extension follow SubscribePlus
// exactly.
func (s *Service) GrantPlus(ctx context.Context, caller, target account.ID, periods uint32) error {
	if err := s.auth.RequireOwnerOrAdmin(caller); err != nil {
		return err
	}
	if err := s.guard.Check(); err != nil {
		return err
	}

	s.mu.Lock()
	rec, ok := s.accounts[target]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if err := validPeriods(periods, s.cfg.MaxPeriods); err != nil {
		s.mu.Unlock()
		return err
	}
	expiresAt := s.extendPlus(rec, periods)
	s.mu.Unlock()

	s.metrics.TierTransitions.WithLabelValues(TierPlus.String()).Inc()
	s.log.WithFields(logrus.Fields{
		"account":    target,
		"granted_by": caller,
		"periods":    periods,
		"expires_at": expiresAt,
	}).Info("plus granted")

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypePlusSubscribed,
		Account: target,
		Data: map[string]any{
			"amount":     "0",
			"periods":    periods,
			"expires_at": expiresAt,
			"granted_by": caller.String(),
		},
	})
	return nil
}
