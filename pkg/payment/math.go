package payment

import "math/big"

// nativeUnitScale is 10^18, the native currency's smallest-unit scale.
// Tendered and consumed amounts are denominated in it.
var nativeUnitScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

var bigOne = big.NewInt(1)

// ceilDiv returns ceil(a/b) for non-negative a and positive b, with
// ceilDiv(0, b) == 0.
func ceilDiv(a, b *big.Int) *big.Int {
	if a.Sign() == 0 {
		return new(big.Int)
	}
	// 1 + (a-1)/b
	q := new(big.Int).Sub(a, bigOne)
	q.Quo(q, b)
	return q.Add(q, bigOne)
}

// RequiredAmount converts a whole-USD base amount into native smallest
// units at the given feed price and decimal scale. Rounding is always up,
// so the payer can never underpay through truncation. price must be
// positive; callers validate the oracle reading first.
func RequiredAmount(usdBase uint64, decimals uint8, price *big.Int) *big.Int {
	scaled := new(big.Int).SetUint64(usdBase)
	scaled.Mul(scaled, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	scaled.Mul(scaled, nativeUnitScale)
	return ceilDiv(scaled, price)
}
