// Package registry owns the account registry and the membership tier
// state machine, and is the single entry point into the engine.
//
// # Tiers
//
// Accounts move UNREGISTERED -> FREEMIUM on registration, FREEMIUM ->
// PREMIUM through a paid or granted upgrade, and FREEMIUM/PREMIUM -> PLUS
// through time-boxed subscription periods. An expired PLUS account is
// reported as PREMIUM by effective-tier queries without any stored
// mutation: expiry is evaluated lazily at read time, never by a
// background sweep.
//
// # Payments
//
// Payment-bearing operations delegate to the payment engine, which
// validates the price oracle, converts the configured USD fee to native
// units, and collects exactly the required amount with overpayment
// refunded. The tier transition commits only after settlement succeeds.
//
// # Authorization
//
// Privileged operations take the caller identity explicitly and consult
// the authorization overlay before any other precondition. Configuration
// (fees, plus duration, max periods, price feed) is a singleton owned
// here and mutated only through gated entry points.
//
// Every successful mutating call emits exactly one domain event.
package registry
