package registry

import (
	"context"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quorail/turnstile/pkg/account"
	"github.com/quorail/turnstile/pkg/events"
	"github.com/quorail/turnstile/pkg/oracle"
)

// SetPremiumFeeUSD updates the premium fee. Owner or admin.
func (s *Service) SetPremiumFeeUSD(ctx context.Context, caller account.ID, fee uint64) error {
	if err := s.auth.RequireOwnerOrAdmin(caller); err != nil {
		return err
	}
	if err := s.guard.Check(); err != nil {
		return err
	}
	if fee == 0 {
		return ErrInvalidPrice
	}

	s.mu.Lock()
	s.cfg.PremiumFeeUSD = fee
	s.mu.Unlock()

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypePremiumPriceUpdated,
		Account: caller,
		Data:    map[string]any{"fee_usd": fee},
	})
	return nil
}

// SetPlusFeeUSD updates the per-period plus fee. Owner or admin.
func (s *Service) SetPlusFeeUSD(ctx context.Context, caller account.ID, fee uint64) error {
	if err := s.auth.RequireOwnerOrAdmin(caller); err != nil {
		return err
	}
	if err := s.guard.Check(); err != nil {
		return err
	}
	if fee == 0 {
		return ErrInvalidPrice
	}

	s.mu.Lock()
	s.cfg.PlusFeeUSD = fee
	s.mu.Unlock()

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypePlusPriceUpdated,
		Account: caller,
		Data:    map[string]any{"fee_usd": fee},
	})
	return nil
}

// SetPlusPeriod updates the duration added per renewal period. Owner or
// admin.
func (s *Service) SetPlusPeriod(ctx context.Context, caller account.ID, period time.Duration) error {
	if err := s.auth.RequireOwnerOrAdmin(caller); err != nil {
		return err
	}
	if err := s.guard.Check(); err != nil {
		return err
	}
	if period <= 0 {
		return ErrInvalidDuration
	}

	s.mu.Lock()
	s.cfg.PlusPeriod = period
	s.mu.Unlock()

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypePlusDurationUpdated,
		Account: caller,
		Data:    map[string]any{"period": period.String()},
	})
	return nil
}

// SetMaxPeriods updates the per-call renewal bound. Owner or admin.
func (s *Service) SetMaxPeriods(ctx context.Context, caller account.ID, max uint32) error {
	if err := s.auth.RequireOwnerOrAdmin(caller); err != nil {
		return err
	}
	if err := s.guard.Check(); err != nil {
		return err
	}
	if max == 0 {
		return ErrInvalidPeriod
	}

	s.mu.Lock()
	s.cfg.MaxPeriods = max
	s.mu.Unlock()

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypeMaxPeriodUpdated,
		Account: caller,
		Data:    map[string]any{"max_periods": max},
	})
	return nil
}

// SetPriceFeed replaces the active price oracle. Owner only.
func (s *Service) SetPriceFeed(ctx context.Context, caller account.ID, feed oracle.PriceFeed) error {
	if err := s.auth.RequireOwner(caller); err != nil {
		return err
	}
	if err := s.guard.Check(); err != nil {
		return err
	}
	if feed == nil {
		return ErrInvalidAddress
	}
	if err := s.payments.SetFeed(feed); err != nil {
		return err
	}

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypePriceFeedUpdated,
		Account: caller,
	})
	return nil
}

// GrantAdmin adds a registered account to the admin set. Owner only.
func (s *Service) GrantAdmin(ctx context.Context, caller, id account.ID) error {
	if err := s.guard.Check(); err != nil {
		return err
	}
	if err := s.auth.GrantAdmin(caller, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"account": id}).Info("admin granted")
	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypeAdminGranted,
		Account: id,
	})
	return nil
}

// RevokeAdmin removes an account from the admin set. Owner only.
func (s *Service) RevokeAdmin(ctx context.Context, caller, id account.ID) error {
	if err := s.guard.Check(); err != nil {
		return err
	}
	if err := s.auth.RevokeAdmin(caller, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"account": id}).Info("admin revoked")
	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypeAdminRevoked,
		Account: id,
	})
	return nil
}

// TransferOwnership hands the owner role to a new identity. Owner only.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner account.ID) error {
	if err := s.guard.Check(); err != nil {
		return err
	}
	if err := s.auth.TransferOwnership(caller, newOwner); err != nil {
		return err
	}

	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypeOwnershipTransferred,
		Account: newOwner,
		Data:    map[string]any{"previous_owner": caller.String()},
	})
	return nil
}

// Withdraw transfers the engine's entire held balance to the owner and
// returns the amount moved. Owner only; all-or-nothing.
func (s *Service) Withdraw(ctx context.Context, caller account.ID) (*big.Int, error) {
	if err := s.auth.RequireOwner(caller); err != nil {
		return nil, err
	}
	if err := s.guard.Check(); err != nil {
		return nil, err
	}

	amount, err := s.payments.Payout(ctx, s.auth.Owner())
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"amount": amount.String()}).Info("funds withdrawn")
	s.dispatcher.Dispatch(ctx, events.Event{
		Type:    events.TypeFundsWithdrawn,
		Account: caller,
		Data:    map[string]any{"amount": amount.String()},
	})
	return amount, nil
}
