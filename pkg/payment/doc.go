// Package payment implements the settlement engine: oracle validation,
// USD to native-currency conversion, exact-or-refund collection, and the
// reentrancy guard around outbound transfers.
//
// # Settlement
//
// Settle runs the fixed order validate -> compute -> collect/verify ->
// refund-or-fail -> credit. The oracle reading is checked before any funds
// are evaluated: price must be positive, the update timestamp non-zero,
// the answer round at least the reported round, and the reading no older
// than the staleness bound. The required amount uses ceiling division so
// a payer never underpays through truncation:
//
//	required = ceil(usd * 10^decimals * 10^18 / price)
//
// The 10^18 factor is the native currency's smallest-unit scale: tendered
// and consumed amounts are denominated in it.
//
// # Reentrancy
//
// Refunds and payouts hand control to untrusted code. A single in-flight
// guard per engine instance is armed around every outbound transfer; any
// engine entry point observed mid-transfer fails ErrReentrantCall instead
// of seeing half-applied state. The guard is coarse: the registry mutex
// serializes well-behaved concurrent callers, the guard only has to stop
// reentrant re-entry on the calling goroutine.
package payment
