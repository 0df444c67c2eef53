package ammcore

import "math/big"

// Mint deposits liquidity and returns the base and quote actually taken and
// the lp shares issued for it. For the very first deposit, initialShares
// must be supplied and must equal floor(sqrt(baseDesired*quoteDesired));
// for every later deposit,
// initialShares must be nil and the optimal amount at the current ratio is
// taken instead.
func (p *Pool) Mint(slot uint64, baseDesired, quoteDesired uint64, initialShares *uint64) (baseDeposited, quoteDeposited, shares uint64, err error) {
	p.MaybeUpdateSnapshot(slot)

	if p.TotalLpShares == 0 {
		if initialShares == nil {
			return 0, 0, 0, ErrMissingExpectedArgument
		}
		s := *initialShares
		sBig := bigFromU64(s)
		initialK := new(big.Int).Mul(bigFromU64(baseDesired), bigFromU64(quoteDesired))
		sSquared := new(big.Int).Mul(sBig, sBig)
		upper := new(big.Int).Add(sSquared, new(big.Int).Mul(big.NewInt(2), sBig))
		upper.Add(upper, big.NewInt(1))

		if sSquared.Cmp(initialK) > 0 || upper.Cmp(initialK) <= 0 {
			return 0, 0, 0, ErrUnexpectedArgument
		}

		p.BaseReservesSnapshot = baseDesired
		p.QuoteReservesSnapshot = quoteDesired
		p.BaseReserves = baseDesired
		p.QuoteReserves = quoteDesired
		baseDeposited, quoteDeposited, shares = baseDesired, quoteDesired, s
	} else {
		if initialShares != nil {
			return 0, 0, 0, ErrUnexpectedArgument
		}

		totalShares := bigFromU64(p.TotalLpShares)
		totalBase := bigFromU64(p.BaseReserves)
		totalQuote := bigFromU64(p.QuoteReserves)

		baseOptimal, err := p.DepositAmountBase(quoteDesired)
		if err != nil {
			return 0, 0, 0, err
		}
		quoteOptimal, err := p.DepositAmountQuote(baseDesired)
		if err != nil {
			return 0, 0, 0, err
		}

		baseDesiredBig := bigFromU64(baseDesired)
		quoteDesiredBig := bigFromU64(quoteDesired)

		var baseDepBig, quoteDepBig *big.Int
		if quoteDesiredBig.Cmp(quoteOptimal.BigInt()) >= 0 {
			baseDepBig, quoteDepBig = baseDesiredBig, quoteOptimal.BigInt()
		} else {
			baseDepBig, quoteDepBig = baseOptimal.BigInt(), quoteDesiredBig
		}

		baseDep, err := checkedU64(baseDepBig)
		if err != nil {
			return 0, 0, 0, err
		}
		quoteDep, err := checkedU64(quoteDepBig)
		if err != nil {
			return 0, 0, 0, err
		}

		p.BaseReserves += baseDep
		p.QuoteReserves += quoteDep

		sharesFromQuote := new(big.Int).Quo(new(big.Int).Mul(quoteDepBig, totalShares), totalQuote)
		sharesFromBase := new(big.Int).Quo(new(big.Int).Mul(baseDepBig, totalShares), totalBase)
		lpSharesBig := sharesFromQuote
		if sharesFromBase.Cmp(lpSharesBig) < 0 {
			lpSharesBig = sharesFromBase
		}

		lpShares, err := checkedU64(lpSharesBig)
		if err != nil {
			return 0, 0, 0, err
		}
		baseDeposited, quoteDeposited, shares = baseDep, quoteDep, lpShares
	}

	if shares == 0 {
		return 0, 0, 0, ErrBelowMinimumLpSharesRequired
	}
	p.TotalLpShares += shares
	return baseDeposited, quoteDeposited, shares, nil
}

// Burn withdraws lpShares worth of liquidity and returns the base and quote
// released.
func (p *Pool) Burn(slot uint64, lpShares uint64) (baseOut, quoteOut uint64, err error) {
	p.MaybeUpdateSnapshot(slot)

	totalShares := bigFromU64(p.TotalLpShares)
	baseWithdrawnBig := new(big.Int).Quo(new(big.Int).Mul(bigFromU64(p.BaseReserves), bigFromU64(lpShares)), totalShares)
	quoteWithdrawnBig := new(big.Int).Quo(new(big.Int).Mul(bigFromU64(p.QuoteReserves), bigFromU64(lpShares)), totalShares)

	if baseWithdrawnBig.Sign() == 0 || quoteWithdrawnBig.Sign() == 0 {
		return 0, 0, ErrBelowMinimumWithdrawalRequired
	}

	baseWithdrawn, err := checkedU64(baseWithdrawnBig)
	if err != nil {
		return 0, 0, err
	}
	quoteWithdrawn, err := checkedU64(quoteWithdrawnBig)
	if err != nil {
		return 0, 0, err
	}

	p.BaseReserves -= baseWithdrawn
	p.QuoteReserves -= quoteWithdrawn
	p.TotalLpShares -= lpShares
	return baseWithdrawn, quoteWithdrawn, nil
}
