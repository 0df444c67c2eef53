package ammcore

import "math/big"

// The curve is the constant-product invariant base*quote = k, with k taken
// one below the literal product (k = base*quote - 1) so that every quote
// leaves both reserves strictly positive.

func (p *Pool) curveK() *big.Int {
	return new(big.Int).Sub(new(big.Int).Mul(bigFromU64(p.BaseReserves), bigFromU64(p.QuoteReserves)), big.NewInt(1))
}

// baseOutFromQuoteIn prices a curve-leg buy: how much base leaves the pool
// for quoteIn entering it.
func (p *Pool) baseOutFromQuoteIn(quoteIn *big.Int) *big.Int {
	k := p.curveK()
	denom := new(big.Int).Add(bigFromU64(p.QuoteReserves), quoteIn)
	div := new(big.Int).Quo(k, denom)
	out := new(big.Int).Sub(bigFromU64(p.BaseReserves), div)
	out.Sub(out, big.NewInt(1))
	return out
}

// quoteInFromBaseOut prices a curve-leg buy the other way: how much quote
// must enter the pool for baseOut to leave it.
func (p *Pool) quoteInFromBaseOut(baseOut *big.Int) (*big.Int, error) {
	if baseOut.Cmp(bigFromU64(p.BaseReserves)) >= 0 {
		reqU64, err := checkedU64(baseOut)
		if err != nil {
			return nil, err
		}
		return nil, &SwapOutputGreaterThanOrEqualToReservesError{Requested: reqU64, Reserves: p.BaseReserves}
	}
	k := p.curveK()
	denom := new(big.Int).Sub(bigFromU64(p.BaseReserves), baseOut)
	div := new(big.Int).Quo(k, denom)
	div.Add(div, big.NewInt(1))
	return new(big.Int).Sub(div, bigFromU64(p.QuoteReserves)), nil
}

// quoteOutFromBaseIn prices a curve-leg sell: how much quote leaves the pool
// for baseIn entering it.
func (p *Pool) quoteOutFromBaseIn(baseIn *big.Int) *big.Int {
	k := p.curveK()
	denom := new(big.Int).Add(bigFromU64(p.BaseReserves), baseIn)
	div := new(big.Int).Quo(k, denom)
	out := new(big.Int).Sub(bigFromU64(p.QuoteReserves), div)
	out.Sub(out, big.NewInt(1))
	return out
}

// baseInFromQuoteOut prices a curve-leg sell the other way: how much base
// must enter the pool for quoteOut to leave it.
func (p *Pool) baseInFromQuoteOut(quoteOut *big.Int) (*big.Int, error) {
	if quoteOut.Cmp(bigFromU64(p.QuoteReserves)) >= 0 {
		reqU64, err := checkedU64(quoteOut)
		if err != nil {
			return nil, err
		}
		return nil, &SwapOutputGreaterThanOrEqualToReservesError{Requested: reqU64, Reserves: p.QuoteReserves}
	}
	k := p.curveK()
	denom := new(big.Int).Sub(bigFromU64(p.QuoteReserves), quoteOut)
	div := new(big.Int).Quo(k, denom)
	div.Add(div, big.NewInt(1))
	return new(big.Int).Sub(div, bigFromU64(p.BaseReserves)), nil
}
