package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/quorail/turnstile/pkg/account"
)

// Type identifies a domain event.
type Type string

const (
	TypeUserRegistered       Type = "user.registered"
	TypeUserUpdated          Type = "user.updated"
	TypeUserDeleted          Type = "user.deleted"
	TypePremiumPaid          Type = "premium.paid"
	TypePremiumPriceUpdated  Type = "premium.price_updated"
	TypePlusSubscribed       Type = "plus.subscribed"
	TypePlusPriceUpdated     Type = "plus.price_updated"
	TypePlusDurationUpdated  Type = "plus.duration_updated"
	TypeMaxPeriodUpdated     Type = "plus.max_period_updated"
	TypePriceFeedUpdated     Type = "pricefeed.updated"
	TypeAdminGranted         Type = "admin.granted"
	TypeAdminRevoked         Type = "admin.revoked"
	TypeOwnershipTransferred Type = "ownership.transferred"
	TypeFundsWithdrawn       Type = "funds.withdrawn"
)

// Event is one domain event. The Data payload is event-type specific;
// native-currency amounts are carried as decimal strings to stay exact.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Type      Type           `json:"type"`
	Account   account.ID     `json:"account,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}
