package ammcore

import (
	"math/big"

	cosmosmath "cosmossdk.io/math"
)

// All reserve-scale arithmetic is routed through math/big.Int internally so
// that every division floors and every downcast back to uint64 is checked
// explicitly, rather than trusting a wrapping 64-bit multiply.

func bigFromU64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// checkedU64 downcasts a big.Int that is expected to be non-negative and to
// fit in 64 bits, returning Underflow/Overflow when it does not.
func checkedU64(v *big.Int) (uint64, error) {
	if v.Sign() < 0 {
		return 0, ErrUnderflow
	}
	if !v.IsUint64() {
		return 0, ErrOverflow
	}
	return v.Uint64(), nil
}

// MulDivFloor returns floor(a*b/c) using 128-bit-class intermediates.
func MulDivFloor(a, b, c uint64) uint64 {
	num := new(big.Int).Mul(bigFromU64(a), bigFromU64(b))
	return new(big.Int).Quo(num, bigFromU64(c)).Uint64()
}

// mustUint wraps a known-non-negative big.Int as a cosmossdk.io/math.Uint,
// for values (such as k) that can legitimately exceed 64 bits.
func mustUint(v *big.Int) cosmosmath.Uint {
	return cosmosmath.NewUintFromBigInt(v)
}
