package registry

import "errors"

var (
	// ErrInvalidAddress rejects zero-value caller or target identities.
	ErrInvalidAddress = errors.New("registry: invalid account identity")
	// ErrInvalidFID rejects external identifiers below 1.
	ErrInvalidFID = errors.New("registry: fid must be >= 1")
	// ErrInvalidPrice rejects zero fee amounts.
	ErrInvalidPrice = errors.New("registry: fee must be positive")
	// ErrInvalidDuration rejects a non-positive plus period.
	ErrInvalidDuration = errors.New("registry: plus period must be positive")
	// ErrInvalidPeriod rejects a zero period count or bound.
	ErrInvalidPeriod = errors.New("registry: period count must be >= 1")
	// ErrMaxPeriodExceeded rejects a period count above the configured bound.
	ErrMaxPeriodExceeded = errors.New("registry: period count exceeds maximum")
	// ErrAlreadyExists rejects registration of a registered account.
	ErrAlreadyExists = errors.New("registry: account already registered")
	// ErrNotFound rejects operations on unregistered accounts.
	ErrNotFound = errors.New("registry: account not registered")
	// ErrAlreadyPremium rejects a premium upgrade of a premium account.
	ErrAlreadyPremium = errors.New("registry: account is already premium")
	// ErrUserIsPlus rejects a premium grant over an unexpired plus account.
	ErrUserIsPlus = errors.New("registry: account holds an active plus subscription")
)
