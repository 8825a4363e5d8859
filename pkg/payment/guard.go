package payment

import "sync/atomic"

// Guard is the engine-wide in-flight flag armed around outbound transfers.
// One instance is shared by every component of an engine; it is not
// per-account.
type Guard struct {
	busy atomic.Bool
}

// NewGuard returns a disarmed guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Check fails with ErrReentrantCall if a transfer is in flight. Every
// engine entry point calls this before touching state.
func (g *Guard) Check() error {
	if g.busy.Load() {
		return ErrReentrantCall
	}
	return nil
}

// Arm marks a transfer as in flight. It fails if one already is, which
// can only happen on a reentrant path.
func (g *Guard) Arm() error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

// Disarm clears the in-flight flag.
func (g *Guard) Disarm() {
	g.busy.Store(false)
}
