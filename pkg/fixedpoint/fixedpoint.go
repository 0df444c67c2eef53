// Package fixedpoint implements a signed 80.48 fixed-point number, used for
// the pool's monotonically non-decreasing reward factor accumulator.
//
// The type mirrors a 128-bit signed integer with 48 fractional bits: adding,
// subtracting and multiplying two values is done on the raw 128-bit
// representation, exactly as a hardware-backed fixed-point library would,
// so that results are bit-for-bit reproducible across implementations.
package fixedpoint

import (
	"encoding/binary"
	"math/big"

	cosmosmath "cosmossdk.io/math"
	bin "github.com/gagliardetto/binary"
)

// FracBits is the number of fractional bits carried by a Fixed value.
const FracBits = 48

var fracScale = new(big.Int).Lsh(big.NewInt(1), FracBits)
var wordMod = new(big.Int).Lsh(big.NewInt(1), 128)
var signBit = new(big.Int).Lsh(big.NewInt(1), 127)

// Fixed is a signed 80.48 fixed-point value, stored as value * 2^48 in a
// 128-bit signed integer.
type Fixed struct {
	raw cosmosmath.Int
}

// Zero is the additive identity.
var Zero = Fixed{raw: cosmosmath.ZeroInt()}

// FromInteger builds a Fixed representing the whole number v.
func FromInteger(v uint64) Fixed {
	raw := new(big.Int).Lsh(new(big.Int).SetUint64(v), FracBits)
	return Fixed{raw: cosmosmath.NewIntFromBigInt(raw)}
}

// FromFraction builds a Fixed representing numerator/denominator, truncated
// towards negative infinity at the 48th fractional bit. denominator must be
// non-zero; callers only ever reach this with a positive total share count.
func FromFraction(numerator, denominator uint64) Fixed {
	n := new(big.Int).Lsh(new(big.Int).SetUint64(numerator), FracBits)
	d := new(big.Int).SetUint64(denominator)
	q, m := new(big.Int), new(big.Int)
	q.DivMod(n, d, m)
	return Fixed{raw: cosmosmath.NewIntFromBigInt(q)}
}

// FromBits reconstructs a Fixed from its raw 128-bit signed representation.
func FromBits(bits *big.Int) Fixed {
	return Fixed{raw: cosmosmath.NewIntFromBigInt(new(big.Int).Set(bits))}
}

// Bits returns the raw 128-bit signed representation.
func (f Fixed) Bits() *big.Int {
	return new(big.Int).Set(f.raw.BigInt())
}

// Floor truncates towards negative infinity and returns the integer part.
// The pool's reward factor is never negative in practice, so this is only
// ever exercised on non-negative values.
func (f Fixed) Floor() uint64 {
	raw := f.raw.BigInt()
	q, m := new(big.Int), new(big.Int)
	q.DivMod(raw, fracScale, m)
	return q.Uint64()
}

// Add returns f + g.
func (f Fixed) Add(g Fixed) Fixed {
	return Fixed{raw: cosmosmath.NewIntFromBigInt(new(big.Int).Add(f.raw.BigInt(), g.raw.BigInt()))}
}

// Sub returns f - g.
func (f Fixed) Sub(g Fixed) Fixed {
	return Fixed{raw: cosmosmath.NewIntFromBigInt(new(big.Int).Sub(f.raw.BigInt(), g.raw.BigInt()))}
}

// Mul returns f * g, truncated towards negative infinity at the 48th
// fractional bit.
func (f Fixed) Mul(g Fixed) Fixed {
	prod := new(big.Int).Mul(f.raw.BigInt(), g.raw.BigInt())
	prod.Rsh(prod, FracBits)
	return Fixed{raw: cosmosmath.NewIntFromBigInt(prod)}
}

// Cmp returns -1, 0 or 1 as f is less than, equal to, or greater than g.
func (f Fixed) Cmp(g Fixed) int {
	return f.raw.BigInt().Cmp(g.raw.BigInt())
}

// GT reports whether f > g.
func (f Fixed) GT(g Fixed) bool { return f.Cmp(g) > 0 }

// LT reports whether f < g.
func (f Fixed) LT(g Fixed) bool { return f.Cmp(g) < 0 }

// Equal reports whether f == g.
func (f Fixed) Equal(g Fixed) bool { return f.Cmp(g) == 0 }

// Bytes encodes f as 16 little-endian bytes, two's complement.
func (f Fixed) Bytes() [16]byte {
	var out [16]byte
	v := new(big.Int).Mod(f.raw.BigInt(), wordMod)
	be := v.Bytes()
	for i := 0; i < len(be) && i < 16; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}

// FromBytes decodes f from 16 little-endian bytes, two's complement.
func FromBytes(b [16]byte) Fixed {
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[i] = b[15-i]
	}
	v := new(big.Int).SetBytes(be)
	if v.Cmp(signBit) >= 0 {
		v.Sub(v, wordMod)
	}
	return Fixed{raw: cosmosmath.NewIntFromBigInt(v)}
}

// MarshalWithEncoder implements gagliardetto/binary's custom encoder hook so
// Fixed can be embedded directly in a packed pool layout.
func (f Fixed) MarshalWithEncoder(encoder *bin.Encoder) error {
	b := f.Bytes()
	lo := binary.LittleEndian.Uint64(b[0:8])
	hi := binary.LittleEndian.Uint64(b[8:16])
	if err := encoder.WriteUint64(lo, binary.LittleEndian); err != nil {
		return err
	}
	return encoder.WriteUint64(hi, binary.LittleEndian)
}

// UnmarshalWithDecoder implements gagliardetto/binary's custom decoder hook.
func (f *Fixed) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	lo, err := decoder.ReadUint64(binary.LittleEndian)
	if err != nil {
		return err
	}
	hi, err := decoder.ReadUint64(binary.LittleEndian)
	if err != nil {
		return err
	}
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], lo)
	binary.LittleEndian.PutUint64(b[8:16], hi)
	*f = FromBytes(b)
	return nil
}
