// Package ammcore implements a constant-product AMM pool whose price is
// pinned, at the start of every slot window, by a pair of virtual limit
// orders sized off the previous window's reserve snapshot. Every swap fills
// its limit-order leg before any remainder is priced off the x*y curve.
//
// The package is pure value semantics: Pool carries no clock, no storage and
// no network handle, so callers own when a slot advances and how state is
// persisted (see the layout package for a packed on-disk representation).
package ammcore

import (
	"math/big"

	cosmosmath "cosmossdk.io/math"

	"github.com/solana-zh/ammengine/pkg/fixedpoint"
)

// Pool is a single constant-product pair plus its virtual-limit-order
// snapshot and accrued-fee accounting.
type Pool struct {
	FeeInBps                uint32
	ProtocolAllocationInPct uint32
	LpVestingWindow         uint64

	RewardFactor  fixedpoint.Fixed
	TotalLpShares uint64

	SlotSnapshot         uint64
	BaseReservesSnapshot uint64
	QuoteReservesSnapshot uint64

	BaseReserves  uint64
	QuoteReserves uint64

	CumulativeQuoteLpFees       uint64
	CumulativeQuoteProtocolFees uint64
}

// NewPool returns an empty pool ready to receive its first deposit.
// protocolAllocationInPct is the percentage of every swap fee routed to the
// protocol rather than to liquidity providers.
func NewPool(feeInBps, protocolAllocationInPct uint32, lpVestingWindow, slotSnapshot uint64) *Pool {
	return &Pool{
		FeeInBps:                feeInBps,
		ProtocolAllocationInPct: protocolAllocationInPct,
		LpVestingWindow:         lpVestingWindow,
		RewardFactor:            fixedpoint.Zero,
		SlotSnapshot:            slotSnapshot,
	}
}

// MaybeUpdateSnapshot refreshes the virtual-limit-order anchor reserves once
// per slot window. It reports whether the snapshot moved.
func (p *Pool) MaybeUpdateSnapshot(slot uint64) bool {
	if slot <= p.SlotSnapshot {
		return false
	}
	p.SlotSnapshot = slot
	p.BaseReservesSnapshot = p.BaseReserves
	p.QuoteReservesSnapshot = p.QuoteReserves
	return true
}

// DepositAmountBase previews how much base a deposit of amountQuote would be
// paired with at the current reserve ratio.
func (p *Pool) DepositAmountBase(amountQuote uint64) (cosmosmath.Uint, error) {
	if p.BaseReserves == 0 || p.QuoteReserves == 0 {
		return cosmosmath.ZeroUint(), ErrUninitializedPool
	}
	num := new(big.Int).Mul(bigFromU64(amountQuote), bigFromU64(p.BaseReserves))
	q := new(big.Int).Quo(num, bigFromU64(p.QuoteReserves))
	return cosmosmath.NewUintFromBigInt(q), nil
}

// DepositAmountQuote previews how much quote a deposit of amountBase would be
// paired with at the current reserve ratio.
func (p *Pool) DepositAmountQuote(amountBase uint64) (cosmosmath.Uint, error) {
	if p.BaseReserves == 0 || p.QuoteReserves == 0 {
		return cosmosmath.ZeroUint(), ErrUninitializedPool
	}
	num := new(big.Int).Mul(bigFromU64(amountBase), bigFromU64(p.QuoteReserves))
	q := new(big.Int).Quo(num, bigFromU64(p.BaseReserves))
	return cosmosmath.NewUintFromBigInt(q), nil
}

func (p *Pool) updateReservesAfterBuy(quoteIn, baseOut *big.Int) error {
	baseOutU64, err := checkedU64(baseOut)
	if err != nil {
		return err
	}
	if baseOutU64 > p.BaseReserves {
		return ErrUnderflow
	}
	quoteInU64, err := checkedU64(quoteIn)
	if err != nil {
		return err
	}
	newQuote := p.QuoteReserves + quoteInU64
	if newQuote < p.QuoteReserves {
		return ErrOverflow
	}
	p.BaseReserves -= baseOutU64
	p.QuoteReserves = newQuote
	return nil
}

func (p *Pool) updateReservesAfterSell(baseIn, quoteOut *big.Int) error {
	baseInU64, err := checkedU64(baseIn)
	if err != nil {
		return err
	}
	newBase := p.BaseReserves + baseInU64
	if newBase < p.BaseReserves {
		return ErrOverflow
	}
	quoteOutU64, err := checkedU64(quoteOut)
	if err != nil {
		return err
	}
	if quoteOutU64 > p.QuoteReserves {
		return ErrUnderflow
	}
	p.BaseReserves = newBase
	p.QuoteReserves -= quoteOutU64
	return nil
}
