// Package oracle defines the price-feed capability the payment engine
// consumes, plus an in-memory simulator used to exercise the engine's
// defensive checks.
//
// A feed reports the current native-currency price of one USD-pegged unit
// along with round metadata. The engine treats every reading as untrusted
// input: the payment package validates price sign, update timestamp, round
// ordering and staleness before any value from the feed is used.
//
// # Usage Example
//
// Wire a simulator for tests:
//
//	feed := oracle.NewSimulator(8, big.NewInt(492300000000))
//	feed.SetUpdatedAt(time.Now())
//
// Production deployments inject their own PriceFeed implementation.
package oracle
