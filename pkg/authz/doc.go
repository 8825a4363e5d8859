// Package authz implements the engine's two-level authorization overlay:
// one owner plus an owner-managed admin set.
//
// The owner gates price-feed replacement, fund withdrawal, admin
// membership and ownership transfer. Owner-or-admin gates fee, duration
// and period updates and privileged tier grants. Callers present their
// identity explicitly on every privileged call — there is no ambient
// identity — so tests can simulate arbitrary callers directly.
//
// Authorization is always the first precondition evaluated: a caller that
// fails the check never reaches any other validation of the same call.
package authz
