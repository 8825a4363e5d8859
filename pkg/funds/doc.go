// Package funds models the engine's custody of native-currency value: a
// single treasury balance plus the outbound transfer hop used for refunds
// and owner payouts.
//
// The Transferer is the only point where control leaves the engine, so
// callers treat it as untrusted and order it before their final state
// commit. The treasury itself is integer-only; amounts are denominated in
// the native currency's smallest unit.
package funds
