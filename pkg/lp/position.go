// Package lp tracks a single liquidity provider's position against a pool:
// their share balance, the vesting of newly minted shares, and the lazy
// accrual of their share of swap fees via the pool's reward factor.
package lp

import (
	"github.com/solana-zh/ammengine/pkg/ammcore"
	"github.com/solana-zh/ammengine/pkg/fixedpoint"
)

// PendingVest tracks at most one outstanding deposit waiting to vest.
type PendingVest struct {
	DepositSlot uint64
	Shares      uint64
}

// Set records a newly minted deposit as pending vest. It fails if a previous
// deposit has not yet vested.
func (pv *PendingVest) Set(slot uint64, shares uint64) error {
	if pv.DepositSlot != 0 {
		return ammcore.ErrVestingPeriodNotOver
	}
	pv.DepositSlot = slot
	pv.Shares = shares
	return nil
}

// MaybeVest releases the pending deposit once its vesting window has
// elapsed, returning the shares that became withdrawable.
func (pv *PendingVest) MaybeVest(slot uint64, vestingWindow uint64) uint64 {
	if pv.DepositSlot == 0 {
		return 0
	}
	if pv.DepositSlot+vestingWindow > slot {
		return 0
	}
	shares := pv.Shares
	pv.DepositSlot = 0
	pv.Shares = 0
	return shares
}

// Position is one liquidity provider's stake in a pool.
type Position struct {
	RewardFactorSnapshot fixedpoint.Fixed

	LpShares             uint64
	WithdrawableLpShares uint64

	UncollectedFees uint64
	CollectedFees   uint64

	PendingSharesToVest PendingVest
}

// NewPosition returns a position starting from the pool's current reward
// factor, so the position owes nothing for fees accrued before it existed.
func NewPosition(pool *ammcore.Pool) *Position {
	return &Position{RewardFactorSnapshot: pool.RewardFactor}
}

// preprocess vests any due deposit and accrues fees owed since the last
// snapshot, before a mutating operation runs. It returns the shares that
// vested and the fee accrued this call.
func (pos *Position) preprocess(slot uint64, pool *ammcore.Pool) (vested uint64, accrued uint64, err error) {
	vested = pos.PendingSharesToVest.MaybeVest(slot, pool.LpVestingWindow)
	pos.WithdrawableLpShares += vested

	current := pool.RewardFactor
	if current.GT(fixedpoint.Zero) && pool.TotalLpShares > 0 {
		delta := current.Sub(pos.RewardFactorSnapshot)
		if delta.LT(fixedpoint.Zero) {
			return vested, 0, ammcore.ErrOverflow
		}
		accrued = delta.Mul(fixedpoint.FromInteger(pos.LpShares)).Floor()
	}
	pos.RewardFactorSnapshot = current
	pos.UncollectedFees += accrued
	return vested, accrued, nil
}

// WithdrawableBaseAndQuoteAmounts reports what WithdrawableLpShares is
// currently worth, at the pool's current reserves.
func (pos *Position) WithdrawableBaseAndQuoteAmounts(pool *ammcore.Pool) (base, quote uint64) {
	base = ammcore.MulDivFloor(pos.WithdrawableLpShares, pool.BaseReserves, pool.TotalLpShares)
	quote = ammcore.MulDivFloor(pos.WithdrawableLpShares, pool.QuoteReserves, pool.TotalLpShares)
	return base, quote
}

// AddLiquidityResult reports the outcome of a deposit.
type AddLiquidityResult struct {
	BaseAmountDeposited  uint64
	QuoteAmountDeposited uint64
	LpSharesReceived     uint64
	LpSharesVested       uint64
	QuoteFeesAccumulated uint64
}

// AddLiquidity deposits into the pool on behalf of this position. The newly
// minted shares are not withdrawable until they vest.
func (pos *Position) AddLiquidity(slot uint64, pool *ammcore.Pool, baseDesired, quoteDesired uint64, initialShares *uint64) (AddLiquidityResult, error) {
	vested, accrued, err := pos.preprocess(slot, pool)
	if err != nil {
		return AddLiquidityResult{}, err
	}

	baseDep, quoteDep, shares, err := pool.Mint(slot, baseDesired, quoteDesired, initialShares)
	if err != nil {
		return AddLiquidityResult{}, err
	}

	if err := pos.PendingSharesToVest.Set(slot, shares); err != nil {
		return AddLiquidityResult{}, err
	}
	pos.LpShares += shares

	return AddLiquidityResult{
		BaseAmountDeposited:  baseDep,
		QuoteAmountDeposited: quoteDep,
		LpSharesReceived:     shares,
		LpSharesVested:       vested,
		QuoteFeesAccumulated: accrued,
	}, nil
}

// RemoveLiquidityResult reports the outcome of a withdrawal.
type RemoveLiquidityResult struct {
	BaseAmountWithdrawn  uint64
	QuoteAmountWithdrawn uint64
	LpSharesBurned       uint64
	LpSharesVested       uint64
	QuoteFeesAccumulated uint64
}

// RemoveLiquidity burns shares and withdraws the corresponding base and
// quote. Requesting more than WithdrawableLpShares has no effect beyond
// vesting and fee accrual: it is not an error, it simply burns nothing.
func (pos *Position) RemoveLiquidity(slot uint64, pool *ammcore.Pool, shares uint64) (RemoveLiquidityResult, error) {
	vested, accrued, err := pos.preprocess(slot, pool)
	if err != nil {
		return RemoveLiquidityResult{}, err
	}

	if shares > pos.WithdrawableLpShares {
		return RemoveLiquidityResult{LpSharesVested: vested, QuoteFeesAccumulated: accrued}, nil
	}

	baseOut, quoteOut, err := pool.Burn(slot, shares)
	if err != nil {
		return RemoveLiquidityResult{}, err
	}

	pos.WithdrawableLpShares -= shares
	pos.LpShares -= shares

	return RemoveLiquidityResult{
		BaseAmountWithdrawn:  baseOut,
		QuoteAmountWithdrawn: quoteOut,
		LpSharesBurned:       shares,
		LpSharesVested:       vested,
		QuoteFeesAccumulated: accrued,
	}, nil
}

// CollectFees sweeps accrued, uncollected fees to CollectedFees and returns
// the amount collected.
func (pos *Position) CollectFees(slot uint64, pool *ammcore.Pool) (uint64, error) {
	if _, _, err := pos.preprocess(slot, pool); err != nil {
		return 0, err
	}
	fees := pos.UncollectedFees
	pos.CollectedFees += fees
	pos.UncollectedFees = 0
	return fees, nil
}
