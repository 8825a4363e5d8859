package oracle

import (
	"context"
	"math/big"
	"sync"
	"time"
)

// Simulator is a settable in-memory PriceFeed. It exists to validate the
// payment engine's defensive checks: every anomaly class the engine
// rejects (non-positive price, zero update time, lagging answer round,
// stale reading) can be produced through its setters.
type Simulator struct {
	mu              sync.RWMutex
	roundID         uint64
	price           *big.Int
	updatedAt       time.Time
	answeredInRound uint64
	decimals        uint8

	// Optional fault injection: when set, both capability calls fail
	// with this error.
	failure error
}

// NewSimulator returns a simulator reporting the given price at the given
// decimal scale, updated now, with a healthy round sequence.
func NewSimulator(decimals uint8, price *big.Int) *Simulator {
	return &Simulator{
		roundID:         1,
		price:           new(big.Int).Set(price),
		updatedAt:       time.Now(),
		answeredInRound: 1,
		decimals:        decimals,
	}
}

// LatestRound implements PriceFeed.
func (s *Simulator) LatestRound(ctx context.Context) (Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failure != nil {
		return Round{}, s.failure
	}
	return Round{
		RoundID:         s.roundID,
		Price:           new(big.Int).Set(s.price),
		UpdatedAt:       s.updatedAt,
		AnsweredInRound: s.answeredInRound,
	}, nil
}

// Decimals implements PriceFeed.
func (s *Simulator) Decimals(ctx context.Context) (uint8, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failure != nil {
		return 0, s.failure
	}
	return s.decimals, nil
}

// SetPrice replaces the reported price and advances the round, keeping the
// answer round in lockstep.
func (s *Simulator) SetPrice(price *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = new(big.Int).Set(price)
	s.roundID++
	s.answeredInRound = s.roundID
	s.updatedAt = time.Now()
}

// SetUpdatedAt overrides the reading's update time without advancing the
// round. Passing the zero time produces an incomplete round.
func (s *Simulator) SetUpdatedAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = t
}

// SetRounds overrides round ordering directly. Setting answeredInRound
// behind roundID produces a stale carry-over.
func (s *Simulator) SetRounds(roundID, answeredInRound uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roundID = roundID
	s.answeredInRound = answeredInRound
}

// SetDecimals overrides the reported decimal scale.
func (s *Simulator) SetDecimals(decimals uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decimals = decimals
}

// Fail makes both capability calls return err until cleared with nil.
func (s *Simulator) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}
