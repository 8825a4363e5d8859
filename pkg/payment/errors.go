package payment

import "errors"

var (
	// ErrInvalidOraclePrice rejects a non-positive oracle price.
	ErrInvalidOraclePrice = errors.New("payment: oracle price is not positive")
	// ErrInvalidOracleUpdate rejects a reading with a zero update time.
	ErrInvalidOracleUpdate = errors.New("payment: oracle round has no update time")
	// ErrInvalidOracleRound rejects an answer computed in an earlier round.
	ErrInvalidOracleRound = errors.New("payment: oracle answer lags its round")
	// ErrOracleTimeout rejects a reading older than the staleness bound.
	ErrOracleTimeout = errors.New("payment: oracle reading is stale")
	// ErrInsufficientFunds rejects a tender below the required amount.
	ErrInsufficientFunds = errors.New("payment: tendered amount below required")
	// ErrRefundFailed aborts a settlement whose overpayment refund failed.
	ErrRefundFailed = errors.New("payment: refund transfer failed")
	// ErrReentrantCall rejects engine entry while a transfer is in flight.
	ErrReentrantCall = errors.New("payment: reentrant call during outbound transfer")
)
