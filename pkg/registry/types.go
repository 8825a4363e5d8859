package registry

import (
	"time"

	"github.com/quorail/turnstile/pkg/account"
)

// Tier is an account's membership level.
type Tier int

const (
	// TierUnregistered is the implicit level of any account never
	// registered or since deleted.
	TierUnregistered Tier = iota
	TierFreemium
	TierPremium
	TierPlus
)

// String returns the tier's wire name.
func (t Tier) String() string {
	switch t {
	case TierFreemium:
		return "freemium"
	case TierPremium:
		return "premium"
	case TierPlus:
		return "plus"
	default:
		return "unregistered"
	}
}

// Account is one registered account record.
type Account struct {
	// Seq is the monotonically assigned internal sequence number. It is
	// never reused, even after deletion.
	Seq uint64

	// FID is the caller-supplied external identifier, always >= 1.
	FID int64

	// Tier is the stored membership level. Expired PLUS accounts keep
	// TierPlus here; effective-tier queries apply expiry lazily.
	Tier Tier

	// ExpiresAt bounds a PLUS subscription. The zero time means no
	// expiry and is the stored value for every other tier.
	ExpiresAt time.Time
}

// Config is the engine's singleton configuration record, validated at
// construction and mutated only through owner/admin entry points.
type Config struct {
	// PremiumFeeUSD and PlusFeeUSD are whole-USD prices, interpreted in
	// the price feed's decimal scale at conversion time.
	PremiumFeeUSD uint64
	PlusFeeUSD    uint64

	// PlusPeriod is the duration added per renewal period.
	PlusPeriod time.Duration

	// MaxPeriods bounds the periods payable in one subscribe call.
	MaxPeriods uint32

	// MaxStale overrides the payment engine's staleness bound when
	// positive.
	MaxStale time.Duration
}

// Validate checks the construction-time invariants.
func (c Config) Validate() error {
	if c.PremiumFeeUSD == 0 || c.PlusFeeUSD == 0 {
		return ErrInvalidPrice
	}
	if c.PlusPeriod <= 0 {
		return ErrInvalidDuration
	}
	if c.MaxPeriods == 0 {
		return ErrInvalidPeriod
	}
	return nil
}

// MarshalText renders the tier by wire name in JSON payloads.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Status is the externally visible view of one account.
type Status struct {
	Account       account.ID `json:"account"`
	Registered    bool       `json:"registered"`
	FID           int64      `json:"fid,omitempty"`
	Tier          Tier       `json:"tier"`
	EffectiveTier Tier       `json:"effective_tier"`
	PlusActive    bool       `json:"plus_active"`
	ExpiresAt     time.Time  `json:"expires_at,omitzero"`
}
