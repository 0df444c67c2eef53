package ammcore

import (
	"math/big"

	"github.com/solana-zh/ammengine/pkg/fixedpoint"
)

// FeeAdjustMultiplier is the largest multiple of 10000 that fits in a u64; it
// is the numerator used to gross a post-fee amount back up to its pre-fee
// value without ever rounding pre_fee(post_fee(x)) below x.
const FeeAdjustMultiplier uint64 = 18446744073709550000

// FeeAdjustedBasisPoint is FeeAdjustMultiplier divided evenly by 10000.
const FeeAdjustedBasisPoint uint64 = FeeAdjustMultiplier / 10000

// feeRoundedDown returns floor(amount * feeInBps / 10000).
func (p *Pool) feeRoundedDown(amount *big.Int) *big.Int {
	num := new(big.Int).Mul(amount, big.NewInt(int64(p.FeeInBps)))
	return new(big.Int).Quo(num, big.NewInt(10000))
}

// preFeeAdjustRoundedDown grosses a post-fee amount up to the pre-fee amount
// that would produce it, such that amount == pre - feeRoundedDown(pre) for
// the returned pre, rounded down.
func (p *Pool) preFeeAdjustRoundedDown(amount *big.Int) *big.Int {
	m := new(big.Int).SetUint64(FeeAdjustMultiplier)
	b := new(big.Int).SetUint64(FeeAdjustedBasisPoint)
	numerator := new(big.Int).Mul(amount, m)
	denominator := new(big.Int).Sub(m, new(big.Int).Mul(b, big.NewInt(int64(p.FeeInBps))))
	return new(big.Int).Quo(numerator, denominator)
}

// feeSplits divides a total fee between liquidity providers and the
// protocol, per ProtocolAllocationInPct.
func (p *Pool) feeSplits(totalFees uint64) (lpFees, protocolFees uint64) {
	tf := bigFromU64(totalFees)
	pct := big.NewInt(int64(p.ProtocolAllocationInPct))
	protocolBig := new(big.Int).Quo(new(big.Int).Mul(tf, pct), big.NewInt(100))
	lpBig := new(big.Int).Sub(tf, protocolBig)
	return lpBig.Uint64(), protocolBig.Uint64()
}

// applyFees splits and books a total quote fee, and folds the lp share into
// the pool's reward factor.
func (p *Pool) applyFees(quoteFee *big.Int) error {
	totalFees, err := checkedU64(quoteFee)
	if err != nil {
		return err
	}
	lpFees, protocolFees := p.feeSplits(totalFees)
	if lpFees+protocolFees != totalFees {
		return &MismatchedFeesError{Expected: totalFees, Actual: lpFees + protocolFees}
	}
	p.CumulativeQuoteLpFees += lpFees
	p.CumulativeQuoteProtocolFees += protocolFees
	p.RewardFactor = p.RewardFactor.Add(fixedpoint.FromFraction(lpFees, p.TotalLpShares))
	return nil
}
