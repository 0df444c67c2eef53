package ammcore

import "math/big"

// BuyExactIn spends exactly quoteIn to buy as much base as the limit-order
// and curve legs yield.
func (p *Pool) BuyExactIn(slot uint64, quoteIn uint64) (SwapResult, error) {
	if p.TotalLpShares == 0 {
		return SwapResult{}, ErrUninitializedPool
	}
	p.MaybeUpdateSnapshot(slot)
	if quoteIn == 0 {
		return newEmptySwapResult(SideBuy), nil
	}

	kStart := p.curveK()
	kStart.Add(kStart, big.NewInt(1)) // undo the -1 bias for the invariant check below

	quoteFee := p.feeRoundedDown(bigFromU64(quoteIn))
	quoteInPostFee := new(big.Int).Sub(bigFromU64(quoteIn), quoteFee)

	loCfg := p.limitOrderSize(SideBuy)

	var baseAsk, quoteAsk, basePool, quotePool *big.Int
	if loCfg.sizeInQuote.Cmp(quoteInPostFee) >= 0 {
		quoteAsk = quoteInPostFee
		baseAsk = p.complementaryLimitOrderSize(quoteAsk, SideBuy, TokenQuote)
		if err := p.updateReservesAfterBuy(quoteAsk, baseAsk); err != nil {
			return SwapResult{}, err
		}
		basePool, quotePool = big.NewInt(0), big.NewInt(0)
	} else {
		baseAsk, quoteAsk = loCfg.sizeInBase, loCfg.sizeInQuote
		if err := p.updateReservesAfterBuy(quoteAsk, baseAsk); err != nil {
			return SwapResult{}, err
		}
		quotePool = new(big.Int).Sub(quoteInPostFee, loCfg.sizeInQuote)
		basePool = p.baseOutFromQuoteIn(quotePool)
		if err := p.updateReservesAfterBuy(quotePool, basePool); err != nil {
			return SwapResult{}, err
		}
	}

	result, err := buildSwapResult(SideBuy, new(big.Int).Add(baseAsk, basePool), bigFromU64(quoteIn), baseAsk, quoteAsk, basePool, quotePool, quoteFee)
	if err != nil {
		return SwapResult{}, err
	}
	if err := p.checkInvariant(kStart); err != nil {
		return SwapResult{}, err
	}
	if result.BaseAmountToTransfer != result.BaseMatchedAsLimitOrder+result.BaseMatchedAsSwap {
		return SwapResult{}, ErrSwapAmountMismatch
	}
	if result.QuoteAmountToTransfer != result.QuoteMatchedAsLimitOrder+result.QuoteMatchedAsSwap+result.FeeInQuote {
		return SwapResult{}, ErrSwapAmountMismatch
	}
	if err := p.applyFees(quoteFee); err != nil {
		return SwapResult{}, err
	}
	return result, nil
}

// BuyExactOut buys exactly baseOut, spending whatever quote the limit-order
// and curve legs require plus fee.
func (p *Pool) BuyExactOut(slot uint64, baseOut uint64) (SwapResult, error) {
	if p.TotalLpShares == 0 {
		return SwapResult{}, ErrUninitializedPool
	}
	if baseOut > p.BaseReserves {
		return SwapResult{}, ErrSwapExactOutTooLarge
	}
	p.MaybeUpdateSnapshot(slot)
	if baseOut == 0 {
		return newEmptySwapResult(SideBuy), nil
	}

	kStart := p.curveK()
	kStart.Add(kStart, big.NewInt(1))

	baseOutBig := bigFromU64(baseOut)
	loCfg := p.limitOrderSize(SideBuy)

	var baseAsk, quoteAsk, basePool, quotePool *big.Int
	if loCfg.sizeInBase.Cmp(baseOutBig) >= 0 {
		baseAsk = baseOutBig
		quoteAsk = new(big.Int).Add(p.complementaryLimitOrderSize(baseAsk, SideBuy, TokenBase), big.NewInt(1))
		if err := p.updateReservesAfterBuy(quoteAsk, baseAsk); err != nil {
			return SwapResult{}, err
		}
		basePool, quotePool = big.NewInt(0), big.NewInt(0)
	} else {
		baseAsk, quoteAsk = loCfg.sizeInBase, loCfg.sizeInQuote
		if err := p.updateReservesAfterBuy(quoteAsk, baseAsk); err != nil {
			return SwapResult{}, err
		}
		basePool = new(big.Int).Sub(baseOutBig, loCfg.sizeInBase)
		qp, err := p.quoteInFromBaseOut(basePool)
		if err != nil {
			return SwapResult{}, err
		}
		quotePool = qp
		if err := p.updateReservesAfterBuy(quotePool, basePool); err != nil {
			return SwapResult{}, err
		}
	}

	quotePostFee := new(big.Int).Add(quoteAsk, quotePool)
	quoteIn := p.preFeeAdjustRoundedDown(quotePostFee)
	quoteFee := new(big.Int).Sub(quoteIn, quotePostFee)

	result, err := buildSwapResult(SideBuy, baseOutBig, quoteIn, baseAsk, quoteAsk, basePool, quotePool, quoteFee)
	if err != nil {
		return SwapResult{}, err
	}
	if err := p.checkInvariant(kStart); err != nil {
		return SwapResult{}, err
	}
	if result.BaseAmountToTransfer != result.BaseMatchedAsLimitOrder+result.BaseMatchedAsSwap {
		return SwapResult{}, ErrSwapAmountMismatch
	}
	if result.QuoteAmountToTransfer != result.QuoteMatchedAsLimitOrder+result.QuoteMatchedAsSwap+result.FeeInQuote {
		return SwapResult{}, ErrSwapAmountMismatch
	}
	if err := p.applyFees(quoteFee); err != nil {
		return SwapResult{}, err
	}
	return result, nil
}

// SellExactIn sells exactly baseIn, returning whatever quote the limit-order
// and curve legs yield after fee.
func (p *Pool) SellExactIn(slot uint64, baseIn uint64) (SwapResult, error) {
	if p.TotalLpShares == 0 {
		return SwapResult{}, ErrUninitializedPool
	}
	p.MaybeUpdateSnapshot(slot)
	if baseIn == 0 {
		return newEmptySwapResult(SideSell), nil
	}

	baseInBig := bigFromU64(baseIn)
	if sum := new(big.Int).Add(baseInBig, bigFromU64(p.BaseReserves)); !sum.IsUint64() {
		return SwapResult{}, ErrSwapExactInTooLarge
	}

	kStart := p.curveK()
	kStart.Add(kStart, big.NewInt(1))

	loCfg := p.limitOrderSize(SideSell)
	quoteFeeTotal := big.NewInt(0)

	var baseBid, quoteBid, basePool, quotePool *big.Int
	if loCfg.sizeInBase.Cmp(baseInBig) >= 0 {
		baseBid = baseInBig
		quoteBidGross := p.complementaryLimitOrderSize(baseBid, SideSell, TokenBase)
		fee := p.feeRoundedDown(quoteBidGross)
		quoteFeeTotal.Add(quoteFeeTotal, fee)
		if err := p.updateReservesAfterSell(baseBid, quoteBidGross); err != nil {
			return SwapResult{}, err
		}
		quoteBid = new(big.Int).Sub(quoteBidGross, fee)
		basePool, quotePool = big.NewInt(0), big.NewInt(0)
	} else {
		baseBid, quoteBid = loCfg.sizeInBase, loCfg.sizeInQuote
		quoteBidGross := quoteBid
		fee := p.feeRoundedDown(quoteBidGross)
		quoteFeeTotal.Add(quoteFeeTotal, fee)
		if err := p.updateReservesAfterSell(baseBid, quoteBidGross); err != nil {
			return SwapResult{}, err
		}
		quoteBid = new(big.Int).Sub(quoteBidGross, fee)

		basePool = new(big.Int).Sub(baseInBig, loCfg.sizeInBase)
		quotePoolGross := p.quoteOutFromBaseIn(basePool)
		if err := p.updateReservesAfterSell(basePool, quotePoolGross); err != nil {
			return SwapResult{}, err
		}
		swapFee := p.feeRoundedDown(quotePoolGross)
		quoteFeeTotal.Add(quoteFeeTotal, swapFee)
		quotePool = new(big.Int).Sub(quotePoolGross, swapFee)
	}

	quoteOut := new(big.Int).Add(quoteBid, quotePool)
	result, err := buildSwapResult(SideSell, baseInBig, quoteOut, baseBid, quoteBid, basePool, quotePool, quoteFeeTotal)
	if err != nil {
		return SwapResult{}, err
	}
	if err := p.checkInvariant(kStart); err != nil {
		return SwapResult{}, err
	}
	if result.BaseAmountToTransfer != result.BaseMatchedAsLimitOrder+result.BaseMatchedAsSwap {
		return SwapResult{}, ErrSwapAmountMismatch
	}
	if result.QuoteAmountToTransfer != result.QuoteMatchedAsLimitOrder+result.QuoteMatchedAsSwap {
		return SwapResult{}, ErrSwapAmountMismatch
	}
	if err := p.applyFees(quoteFeeTotal); err != nil {
		return SwapResult{}, err
	}
	return result, nil
}

// SellExactOut sells whatever base the limit-order and curve legs require to
// deliver exactly quoteOut after fee.
func (p *Pool) SellExactOut(slot uint64, quoteOut uint64) (SwapResult, error) {
	if p.TotalLpShares == 0 {
		return SwapResult{}, ErrUninitializedPool
	}
	p.MaybeUpdateSnapshot(slot)
	if quoteOut == 0 {
		return newEmptySwapResult(SideSell), nil
	}

	quoteOutBig := bigFromU64(quoteOut)
	quoteOutPreFee := p.preFeeAdjustRoundedDown(quoteOutBig)
	quoteFee := new(big.Int).Sub(quoteOutPreFee, quoteOutBig)

	if quoteOut > p.QuoteReserves {
		return SwapResult{}, ErrSwapExactOutTooLarge
	}

	kStart := p.curveK()
	kStart.Add(kStart, big.NewInt(1))

	loCfg := p.limitOrderSize(SideSell)

	var baseBid, quoteBid, basePool, quotePool *big.Int
	if loCfg.sizeInQuote.Cmp(quoteOutBig) >= 0 {
		quoteBid = quoteOutPreFee
		baseBid = p.complementaryLimitOrderSize(quoteBid, SideSell, TokenQuote)
		if err := p.updateReservesAfterSell(baseBid, quoteBid); err != nil {
			return SwapResult{}, err
		}
		basePool, quotePool = big.NewInt(0), big.NewInt(0)
	} else {
		baseBid, quoteBid = loCfg.sizeInBase, loCfg.sizeInQuote
		if err := p.updateReservesAfterSell(baseBid, quoteBid); err != nil {
			return SwapResult{}, err
		}
		quotePool = new(big.Int).Sub(quoteOutPreFee, quoteBid)
		bp, err := p.baseInFromQuoteOut(quotePool)
		if err != nil {
			return SwapResult{}, err
		}
		basePool = bp
		if err := p.updateReservesAfterSell(basePool, quotePool); err != nil {
			return SwapResult{}, err
		}
	}

	baseIn := new(big.Int).Add(baseBid, basePool)
	result, err := buildSwapResult(SideSell, baseIn, quoteOutBig, baseBid, quoteBid, basePool, quotePool, quoteFee)
	if err != nil {
		return SwapResult{}, err
	}
	if err := p.checkInvariant(kStart); err != nil {
		return SwapResult{}, err
	}
	if result.BaseAmountToTransfer != result.BaseMatchedAsLimitOrder+result.BaseMatchedAsSwap {
		return SwapResult{}, ErrSwapAmountMismatch
	}
	if result.QuoteAmountToTransfer+result.FeeInQuote != result.QuoteMatchedAsLimitOrder+result.QuoteMatchedAsSwap {
		return SwapResult{}, ErrSwapAmountMismatch
	}
	if err := p.applyFees(quoteFee); err != nil {
		return SwapResult{}, err
	}
	return result, nil
}

// SimulateBuyExactIn previews BuyExactIn without mutating the pool.
func (p *Pool) SimulateBuyExactIn(quoteIn uint64) (SwapResult, error) {
	clone := *p
	return clone.BuyExactIn(clone.SlotSnapshot, quoteIn)
}

// SimulateSellExactIn previews SellExactIn without mutating the pool.
func (p *Pool) SimulateSellExactIn(baseIn uint64) (SwapResult, error) {
	clone := *p
	return clone.SellExactIn(clone.SlotSnapshot, baseIn)
}

func (p *Pool) checkInvariant(kStart *big.Int) error {
	kEnd := new(big.Int).Mul(bigFromU64(p.BaseReserves), bigFromU64(p.QuoteReserves))
	if kStart.Cmp(kEnd) > 0 {
		return &InvariantViolationError{
			KStart: mustUint(kStart),
			KEnd:   mustUint(kEnd),
		}
	}
	return nil
}

// buildSwapResult downcasts every leg of a swap to uint64 and assembles the
// reported result. baseTransfer/quoteTransfer are the total amounts moved
// across the pool boundary. It does not check the legs against them: each
// caller checks that the base legs sum to baseTransfer and that the quote
// legs reconcile with quoteTransfer once the fee is accounted for.
func buildSwapResult(side Side, baseTransfer, quoteTransfer, baseLimit, quoteLimit, baseSwap, quoteSwap, fee *big.Int) (SwapResult, error) {
	baseTransferU64, err := checkedU64(baseTransfer)
	if err != nil {
		return SwapResult{}, err
	}
	quoteTransferU64, err := checkedU64(quoteTransfer)
	if err != nil {
		return SwapResult{}, err
	}
	baseLimitU64, err := checkedU64(baseLimit)
	if err != nil {
		return SwapResult{}, err
	}
	quoteLimitU64, err := checkedU64(quoteLimit)
	if err != nil {
		return SwapResult{}, err
	}
	baseSwapU64, err := checkedU64(baseSwap)
	if err != nil {
		return SwapResult{}, err
	}
	quoteSwapU64, err := checkedU64(quoteSwap)
	if err != nil {
		return SwapResult{}, err
	}
	feeU64, err := checkedU64(fee)
	if err != nil {
		return SwapResult{}, err
	}

	return SwapResult{
		Side:                     side,
		BaseAmountToTransfer:     baseTransferU64,
		QuoteAmountToTransfer:    quoteTransferU64,
		BaseMatchedAsLimitOrder:  baseLimitU64,
		QuoteMatchedAsLimitOrder: quoteLimitU64,
		BaseMatchedAsSwap:        baseSwapU64,
		QuoteMatchedAsSwap:       quoteSwapU64,
		FeeInQuote:               feeU64,
	}, nil
}
