package oracle

import (
	"context"
	"math/big"
	"time"
)

// Round is one price reading together with the metadata needed to judge
// whether it can be trusted.
type Round struct {
	// RoundID is the feed's identifier for this reading.
	RoundID uint64

	// Price is the native-currency price of one USD, expressed in the
	// feed's own decimal scale. May be zero or negative on a broken feed;
	// consumers must validate before use.
	Price *big.Int

	// UpdatedAt is when the feed last refreshed this reading. A zero time
	// marks an incomplete round.
	UpdatedAt time.Time

	// AnsweredInRound is the round the answer was actually computed in.
	// A value behind RoundID indicates a stale carry-over.
	AnsweredInRound uint64
}

// PriceFeed is the capability consumed by the payment engine. Both calls
// are read-only against the external price source.
type PriceFeed interface {
	// LatestRound returns the most recent price reading.
	LatestRound(ctx context.Context) (Round, error)

	// Decimals returns the decimal scale Price is expressed in.
	Decimals(ctx context.Context) (uint8, error)
}
