package ammcore

import "math/big"

// limitOrderConfig is the size of the virtual limit order standing at the
// snapshot price, in both denominations.
type limitOrderConfig struct {
	sizeInBase  *big.Int
	sizeInQuote *big.Int
}

// limitOrderSize computes the resting size of the ask (SideBuy) or bid
// (SideSell) virtual limit order implied by the snapshot reserves versus the
// current reserves. It is zero once the current price has moved back past
// the snapshot price.
func (p *Pool) limitOrderSize(side Side) limitOrderConfig {
	qs := bigFromU64(p.QuoteReservesSnapshot)
	bs := bigFromU64(p.BaseReservesSnapshot)
	qr := bigFromU64(p.QuoteReserves)
	br := bigFromU64(p.BaseReserves)

	switch side {
	case SideBuy:
		lhs := new(big.Int).Mul(qs, br)
		rhs := new(big.Int).Mul(bs, qr)
		if lhs.Cmp(rhs) <= 0 {
			return limitOrderConfig{big.NewInt(0), big.NewInt(0)}
		}
		diff := new(big.Int).Sub(lhs, rhs)
		sizeInQuote := new(big.Int).Quo(diff, new(big.Int).Mul(big.NewInt(2), bs))
		sizeInBase := new(big.Int).Quo(new(big.Int).Mul(sizeInQuote, bs), qs)
		return limitOrderConfig{sizeInBase, sizeInQuote}

	default: // SideSell
		lhs := new(big.Int).Mul(bs, qr)
		rhs := new(big.Int).Mul(qs, br)
		if lhs.Cmp(rhs) <= 0 {
			return limitOrderConfig{big.NewInt(0), big.NewInt(0)}
		}
		diff := new(big.Int).Sub(lhs, rhs)
		sizeInBase := new(big.Int).Quo(diff, new(big.Int).Mul(big.NewInt(2), qs))
		sizeInQuote := new(big.Int).Quo(new(big.Int).Mul(sizeInBase, qs), bs)
		return limitOrderConfig{sizeInBase, sizeInQuote}
	}
}

// complementaryLimitOrderSize converts an amount already known in one
// denomination into the other, at the snapshot price, rounding in the pool's
// favour (up when the pool is receiving, down when the pool is paying out).
func (p *Pool) complementaryLimitOrderSize(amount *big.Int, side Side, tokenType TokenType) *big.Int {
	if amount.Sign() == 0 {
		return big.NewInt(0)
	}
	qs := bigFromU64(p.QuoteReservesSnapshot)
	bs := bigFromU64(p.BaseReservesSnapshot)

	ceilDiv := func(num, denom *big.Int) *big.Int {
		n := new(big.Int).Sub(num, big.NewInt(1))
		q := new(big.Int).Quo(n, denom)
		return q.Add(q, big.NewInt(1))
	}
	floorDiv := func(num, denom *big.Int) *big.Int {
		return new(big.Int).Quo(num, denom)
	}

	switch side {
	case SideBuy:
		if tokenType == TokenBase {
			return ceilDiv(new(big.Int).Mul(amount, qs), bs)
		}
		return floorDiv(new(big.Int).Mul(amount, bs), qs)
	default: // SideSell
		if tokenType == TokenBase {
			return floorDiv(new(big.Int).Mul(amount, qs), bs)
		}
		return ceilDiv(new(big.Int).Mul(amount, bs), qs)
	}
}
