// Package account defines the opaque caller identity shared by every
// engine component. Identities are supplied by the surrounding runtime;
// the engine never mints or interprets them beyond zero-value checks.
package account

// ID identifies an account. The zero value is invalid everywhere an ID
// is accepted.
type ID string

// IsZero reports whether the ID is the invalid zero identity.
func (id ID) IsZero() bool { return id == "" }

// String returns the raw identity string.
func (id ID) String() string { return string(id) }
