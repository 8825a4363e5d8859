package payment

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCeilDiv(t *testing.T) {
	cases := []struct {
		name string
		a, b int64
		want int64
	}{
		{"zero numerator", 0, 7, 0},
		{"exact", 21, 7, 3},
		{"rounds up", 22, 7, 4},
		{"one short of exact", 20, 7, 3},
		{"unit divisor", 13, 1, 13},
		{"numerator below divisor", 1, 1000, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ceilDiv(big.NewInt(tc.a), big.NewInt(tc.b))
			assert.Equal(t, 0, got.Cmp(big.NewInt(tc.want)))
		})
	}
}

func TestRequiredAmountKnownVector(t *testing.T) {
	// $10 premium at $4923.00 per native token, 8 feed decimals.
	price, _ := new(big.Int).SetString("492300000000", 10)
	got := RequiredAmount(10, 8, price)

	want, _ := new(big.Int).SetString("2031281738777169", 10)
	assert.Equal(t, 0, got.Cmp(want))
}

func TestRequiredAmountExactDivision(t *testing.T) {
	// usd * 10^decimals * 10^18 divisible by price: no rounding.
	got := RequiredAmount(2, 8, big.NewInt(200000000)) // $2.00 price
	want := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	assert.Equal(t, 0, got.Cmp(want))
}

func TestRequiredAmountZeroUSD(t *testing.T) {
	got := RequiredAmount(0, 8, big.NewInt(492300000000))
	assert.Equal(t, 0, got.Sign())
}

func TestCeilDivProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := new(big.Int).SetUint64(rapid.Uint64().Draw(t, "a"))
		b := new(big.Int).SetUint64(rapid.Uint64Range(1, 1<<62).Draw(t, "b"))

		q := ceilDiv(a, b)

		// q*b >= a: the payer never underpays.
		prod := new(big.Int).Mul(q, b)
		if prod.Cmp(a) < 0 {
			t.Fatalf("ceilDiv(%s, %s) = %s undershoots", a, b, q)
		}
		// (q-1)*b < a unless a == 0: the payer never overpays a full unit.
		if a.Sign() > 0 {
			prev := new(big.Int).Sub(q, big.NewInt(1))
			prev.Mul(prev, b)
			if prev.Cmp(a) >= 0 {
				t.Fatalf("ceilDiv(%s, %s) = %s overshoots", a, b, q)
			}
		}
	})
}

func TestRequiredAmountMonotoneInPrice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		usd := rapid.Uint64Range(1, 1_000_000).Draw(t, "usd")
		decimals := uint8(rapid.IntRange(0, 18).Draw(t, "decimals"))
		lo := rapid.Int64Range(1, 1<<50).Draw(t, "lo")
		hi := rapid.Int64Range(lo, 1<<51).Draw(t, "hi")

		atLo := RequiredAmount(usd, decimals, big.NewInt(lo))
		atHi := RequiredAmount(usd, decimals, big.NewInt(hi))

		// A higher native price means fewer native units owed.
		if atHi.Cmp(atLo) > 0 {
			t.Fatalf("required grew with price: %s at %d vs %s at %d", atLo, lo, atHi, hi)
		}
	})
}
