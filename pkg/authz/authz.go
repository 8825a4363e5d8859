package authz

import (
	"errors"
	"sync"

	"github.com/quorail/turnstile/pkg/account"
)

var (
	// ErrInvalidAddress rejects zero-value identities.
	ErrInvalidAddress = errors.New("authz: invalid account identity")
	// ErrNotOwner is returned when an owner-only call is made by anyone else.
	ErrNotOwner = errors.New("authz: caller is not the owner")
	// ErrNotPermitted is returned when a call requires owner or admin.
	ErrNotPermitted = errors.New("authz: caller is neither owner nor admin")
	// ErrAlreadyAdmin rejects duplicate admin grants.
	ErrAlreadyAdmin = errors.New("authz: account is already an admin")
	// ErrNotAdmin rejects revocation of a non-admin.
	ErrNotAdmin = errors.New("authz: account is not an admin")
	// ErrNotFound rejects admin grants to unregistered accounts when a
	// registration check is wired in.
	ErrNotFound = errors.New("authz: account is not registered")
)

// RegistrationCheck reports whether an account is currently registered.
// When wired in, admin grants are restricted to registered accounts.
type RegistrationCheck func(account.ID) bool

// Authorizer holds the owner identity and the admin set.
type Authorizer struct {
	mu         sync.RWMutex
	owner      account.ID
	admins     map[account.ID]struct{}
	registered RegistrationCheck
}

// Option configures an Authorizer.
type Option func(*Authorizer)

// WithRegistrationCheck couples admin grants to the registry: grants to
// accounts the check rejects fail with ErrNotFound.
func WithRegistrationCheck(check RegistrationCheck) Option {
	return func(a *Authorizer) { a.registered = check }
}

// New creates an authorizer owned by the given account.
func New(owner account.ID, opts ...Option) (*Authorizer, error) {
	if owner.IsZero() {
		return nil, ErrInvalidAddress
	}
	a := &Authorizer{
		owner:  owner,
		admins: make(map[account.ID]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Owner returns the current owner identity.
func (a *Authorizer) Owner() account.ID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.owner
}

// IsAdmin reports whether the account is in the admin set.
func (a *Authorizer) IsAdmin(id account.ID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.admins[id]
	return ok
}

// RequireOwner fails unless the caller is the owner.
func (a *Authorizer) RequireOwner(caller account.ID) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if caller != a.owner {
		return ErrNotOwner
	}
	return nil
}

// RequireOwnerOrAdmin fails unless the caller is the owner or an admin.
func (a *Authorizer) RequireOwnerOrAdmin(caller account.ID) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if caller == a.owner {
		return nil
	}
	if _, ok := a.admins[caller]; ok {
		return nil
	}
	return ErrNotPermitted
}

// GrantAdmin adds an account to the admin set. Owner-only.
func (a *Authorizer) GrantAdmin(caller, id account.ID) error {
	if err := a.RequireOwner(caller); err != nil {
		return err
	}
	if id.IsZero() {
		return ErrInvalidAddress
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.admins[id]; ok {
		return ErrAlreadyAdmin
	}
	if a.registered != nil && !a.registered(id) {
		return ErrNotFound
	}
	a.admins[id] = struct{}{}
	return nil
}

// RevokeAdmin removes an account from the admin set. Owner-only.
func (a *Authorizer) RevokeAdmin(caller, id account.ID) error {
	if err := a.RequireOwner(caller); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.admins[id]; !ok {
		return ErrNotAdmin
	}
	delete(a.admins, id)
	return nil
}

// TransferOwnership hands the owner role to a new non-zero identity.
// Owner-only.
func (a *Authorizer) TransferOwnership(caller, newOwner account.ID) error {
	if err := a.RequireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return ErrInvalidAddress
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.owner = newOwner
	return nil
}
