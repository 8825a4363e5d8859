package registry

import (
	"context"
	"math/big"
	"time"

	"github.com/quorail/turnstile/pkg/account"
)

// Queries take the read lock, which a callback running inside a
// settlement can never acquire. Each one checks the reentrancy guard
// first so such a caller fails fast instead of deadlocking; queries
// without an error return report the zero value in that case.

// IsRegistered reports whether the account currently exists.
func (s *Service) IsRegistered(id account.ID) bool {
	if err := s.guard.Check(); err != nil {
		return false
	}
	return s.isRegistered(id)
}

// FID returns the account's external identifier.
func (s *Service) FID(id account.ID) (int64, error) {
	if err := s.guard.Check(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.accounts[id]
	if !ok {
		return 0, ErrNotFound
	}
	return rec.FID, nil
}

// EffectiveTier returns the account's tier with PLUS expiry applied
// lazily: an expired PLUS account reads as PREMIUM while its stored tier
// stays PLUS until a mutating call changes it. Unregistered accounts read
// as TierUnregistered.
func (s *Service) EffectiveTier(id account.ID) Tier {
	if err := s.guard.Check(); err != nil {
		return TierUnregistered
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.accounts[id]
	if !ok {
		return TierUnregistered
	}
	return s.effectiveTier(rec)
}

// StoredTier returns the tier exactly as recorded, without expiry applied.
func (s *Service) StoredTier(id account.ID) Tier {
	if err := s.guard.Check(); err != nil {
		return TierUnregistered
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.accounts[id]
	if !ok {
		return TierUnregistered
	}
	return rec.Tier
}

// IsPlusActive reports whether the account holds an unexpired PLUS
// subscription. The expiry instant itself counts as expired.
func (s *Service) IsPlusActive(id account.ID) bool {
	if err := s.guard.Check(); err != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.accounts[id]
	if !ok {
		return false
	}
	return s.plusActive(rec)
}

// PlusExpiry returns the account's stored expiry timestamp; the zero time
// means no expiry.
func (s *Service) PlusExpiry(id account.ID) (time.Time, error) {
	if err := s.guard.Check(); err != nil {
		return time.Time{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.accounts[id]
	if !ok {
		return time.Time{}, ErrNotFound
	}
	return rec.ExpiresAt, nil
}

// RemainingPlus returns the time left on an active PLUS subscription, or
// zero for anything else.
func (s *Service) RemainingPlus(id account.ID) time.Duration {
	if err := s.guard.Check(); err != nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.accounts[id]
	if !ok || !s.plusActive(rec) {
		return 0
	}
	return rec.ExpiresAt.Sub(s.now())
}

// AccountStatus returns the full external view of one account.
func (s *Service) AccountStatus(id account.ID) Status {
	if err := s.guard.Check(); err != nil {
		return Status{Account: id}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.accounts[id]
	if !ok {
		return Status{Account: id}
	}
	return Status{
		Account:       id,
		Registered:    true,
		FID:           rec.FID,
		Tier:          rec.Tier,
		EffectiveTier: s.effectiveTier(rec),
		PlusActive:    s.plusActive(rec),
		ExpiresAt:     rec.ExpiresAt,
	}
}

// NextSeq returns the sequence id the next registration will receive.
func (s *Service) NextSeq() uint64 {
	if err := s.guard.Check(); err != nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextSeq
}

// Owner returns the current owner identity.
func (s *Service) Owner() account.ID { return s.auth.Owner() }

// IsAdmin reports admin-set membership.
func (s *Service) IsAdmin(id account.ID) bool { return s.auth.IsAdmin(id) }

// PremiumFeeUSD returns the configured premium fee.
func (s *Service) PremiumFeeUSD() uint64 {
	if err := s.guard.Check(); err != nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.PremiumFeeUSD
}

// PlusFeeUSD returns the configured per-period plus fee.
func (s *Service) PlusFeeUSD() uint64 {
	if err := s.guard.Check(); err != nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.PlusFeeUSD
}

// PlusPeriod returns the configured renewal period duration.
func (s *Service) PlusPeriod() time.Duration {
	if err := s.guard.Check(); err != nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.PlusPeriod
}

// MaxPeriods returns the per-call renewal bound.
func (s *Service) MaxPeriods() uint32 {
	if err := s.guard.Check(); err != nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.MaxPeriods
}

// TreasuryBalance returns the engine's held balance.
func (s *Service) TreasuryBalance() *big.Int {
	return s.payments.Treasury().Balance()
}

// RequiredForPremium quotes the native-currency amount currently required
// for a premium upgrade, applying the full oracle validation path.
func (s *Service) RequiredForPremium(ctx context.Context) (*big.Int, error) {
	if err := s.guard.Check(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	fee := s.cfg.PremiumFeeUSD
	s.mu.RUnlock()
	return s.payments.Quote(ctx, fee)
}

// RequiredForPlusPeriod quotes the native-currency amount currently
// required for one plus renewal period.
func (s *Service) RequiredForPlusPeriod(ctx context.Context) (*big.Int, error) {
	if err := s.guard.Check(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	fee := s.cfg.PlusFeeUSD
	s.mu.RUnlock()
	return s.payments.Quote(ctx, fee)
}

// FeedDecimals returns the active price feed's decimal scale.
func (s *Service) FeedDecimals(ctx context.Context) (uint8, error) {
	return s.payments.Decimals(ctx)
}
