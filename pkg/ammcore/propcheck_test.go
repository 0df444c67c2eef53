package ammcore_test

import (
	"errors"
	"math/big"
	"testing"

	"pgregory.net/rapid"

	"github.com/solana-zh/ammengine/pkg/ammcore"
)

// This file reimplements the reference fuzz harness's action stream as a
// rapid property test: a sequence of randomly drawn pool actions is applied
// to a freshly seeded pool, and invariants are checked after each step:
// conservation of base and quote, fee routing, fee ratio and k-monotonicity
// on every swap, simulate fidelity on the exact-out swaps, fee totals
// unchanged by a mint, and snapshot advance on a tick. The share-sqrt law,
// fee-math round trip, reward-factor monotonicity and vesting are not
// checked here; the stream drives the pool directly and holds no LP
// position. Recoverable errors (the ones the reference harness rolls back
// on) restore the pool to its pre-action snapshot rather than failing the
// property, matching the "no partial mutation visible" contract of
// SPEC_FULL.md's concurrency model.
const (
	totalBaseSupply  = uint64(1_073_000_000_000_000)
	totalQuoteSupply = uint64(500_000_000_000_000_000)
)

func saturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

func seedPropPool(t *rapid.T) *ammcore.Pool {
	const base, quote = uint64(279_900_000_000_000), uint64(100_000_000_000)
	shares := isqrtU64(base, quote)
	p := ammcore.NewPool(5, 5, 4, 0)
	if _, _, _, err := p.Mint(0, base, quote, &shares); err != nil {
		t.Fatalf("seed mint failed: %v", err)
	}
	return p
}

func isqrtU64(a, b uint64) uint64 {
	v := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	return new(big.Int).Sqrt(v).Uint64()
}

// isRecoverableSwapError reports whether err is one of the kinds the
// reference harness rolls back on rather than treating as a hard failure:
// the caller asked for more than the pool can quote, or a downcast failed.
func isRecoverableSwapError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ammcore.ErrSwapExactInTooLarge) ||
		errors.Is(err, ammcore.ErrSwapExactOutTooLarge) ||
		errors.Is(err, ammcore.ErrOverflow) ||
		errors.Is(err, ammcore.ErrUnderflow) {
		return true
	}
	var outputErr *ammcore.SwapOutputGreaterThanOrEqualToReservesError
	return errors.As(err, &outputErr)
}

func kOf(p *ammcore.Pool) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(p.BaseReserves), new(big.Int).SetUint64(p.QuoteReserves))
}

func assertFeeRatio(t *rapid.T, quoteTransfer, fee uint64, feeInBps uint32, sellSide bool) {
	if quoteTransfer <= 1_000_000 {
		return
	}
	denom := float64(quoteTransfer)
	if sellSide {
		denom = float64(quoteTransfer) + float64(fee)
	}
	ratio := float64(fee) / denom
	want := float64(feeInBps) / 10000.0
	if diff := ratio - want; diff > 1e-5 || diff < -1e-5 {
		t.Fatalf("fee ratio %v diverges from configured %v (fee=%d transfer=%d)", ratio, want, fee, quoteTransfer)
	}
}

// actionSlot is the slot every non-Tick action is invoked with: the pool's
// own snapshot slot, mirroring the reference harness's amm.get_slot(). That
// makes every such call's MaybeUpdateSnapshot a no-op, so only the explicit
// Tick action ever moves the snapshot — exactly what lets the live price
// drift away from the snapshot price and the virtual limit order fill.
func actionSlot(p *ammcore.Pool) uint64 {
	return p.SlotSnapshot
}

func TestPropertyActionStream(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := seedPropPool(t)
		steps := rapid.IntRange(1, 48).Draw(t, "steps")

		for i := 0; i < steps; i++ {
			action := rapid.IntRange(0, 6).Draw(t, "action")
			r := rapid.Uint8().Draw(t, "r")
			slot := actionSlot(p)

			switch action {
			case 0: // AddLiquidity
				pct := (float64(r)) / 255.0
				maxPctOfSupply := 0.3
				baseSupplyMax := float64(saturatingSub(totalBaseSupply, p.BaseReserves)) * maxPctOfSupply
				quoteSupplyMax := float64(saturatingSub(totalQuoteSupply, p.QuoteReserves)) * maxPctOfSupply
				baseAmount := minU64(uint64(float64(p.BaseReserves)*pct), uint64(baseSupplyMax))
				quoteAmount := minU64(uint64(float64(p.QuoteReserves)*pct), uint64(quoteSupplyMax))

				before := *p
				prevTotal := p.CumulativeQuoteLpFees + p.CumulativeQuoteProtocolFees
				_, _, shares, err := p.Mint(slot, baseAmount, quoteAmount, nil)
				if errors.Is(err, ammcore.ErrBelowMinimumLpSharesRequired) {
					*p = before
					continue
				}
				if err != nil {
					t.Fatalf("unexpected mint error: %v", err)
				}
				if shares == 0 {
					t.Fatalf("mint succeeded but issued zero shares")
				}
				if p.CumulativeQuoteLpFees+p.CumulativeQuoteProtocolFees != prevTotal {
					t.Fatalf("mint must not move fee totals")
				}

			case 1: // RemoveLiquidity
				pct := float64(r) / (2.0 * 255.0)
				lpShares := uint64(float64(p.TotalLpShares) * pct)

				before := *p
				_, _, err := p.Burn(slot, lpShares)
				if errors.Is(err, ammcore.ErrBelowMinimumWithdrawalRequired) {
					*p = before
					continue
				}
				if err != nil {
					*p = before
					continue
				}

			case 2: // BuyExactIn
				pct := (float64(r) + 1) / (10.0 * 255.0)
				quoteRemaining := saturatingSub(totalQuoteSupply, p.QuoteReserves)
				if quoteRemaining == 0 {
					continue
				}
				quoteAmount := uint64(pct * float64(quoteRemaining))

				before := *p
				kStart := kOf(p)
				res, err := p.BuyExactIn(slot, quoteAmount)
				if isRecoverableSwapError(err) {
					*p = before
					continue
				}
				if err != nil {
					t.Fatalf("unexpected buy_exact_in error: %v", err)
				}
				if before.BaseReserves-res.BaseAmountToTransfer != p.BaseReserves {
					t.Fatalf("base conservation violated on buy_exact_in")
				}
				if before.QuoteReserves+res.QuoteAmountToTransfer-res.FeeInQuote != p.QuoteReserves {
					t.Fatalf("quote conservation violated on buy_exact_in")
				}
				if before.CumulativeQuoteLpFees+before.CumulativeQuoteProtocolFees+res.FeeInQuote !=
					p.CumulativeQuoteLpFees+p.CumulativeQuoteProtocolFees {
					t.Fatalf("fee routing mismatch on buy_exact_in")
				}
				if kOf(p).Cmp(kStart) < 0 {
					t.Fatalf("k decreased on buy_exact_in")
				}
				assertFeeRatio(t, res.QuoteAmountToTransfer, res.FeeInQuote, p.FeeInBps, false)

			case 3: // SellExactIn
				pct := (float64(r) + 1) / (10.0 * 255.0)
				baseRemaining := totalBaseSupply - p.BaseReserves
				baseAmount := uint64(pct * float64(baseRemaining))

				before := *p
				kStart := kOf(p)
				res, err := p.SellExactIn(slot, baseAmount)
				if isRecoverableSwapError(err) {
					*p = before
					continue
				}
				if err != nil {
					t.Fatalf("unexpected sell_exact_in error: %v", err)
				}
				if before.BaseReserves+res.BaseAmountToTransfer != p.BaseReserves {
					t.Fatalf("base conservation violated on sell_exact_in")
				}
				if before.QuoteReserves-res.QuoteAmountToTransfer-res.FeeInQuote != p.QuoteReserves {
					t.Fatalf("quote conservation violated on sell_exact_in")
				}
				if before.CumulativeQuoteLpFees+before.CumulativeQuoteProtocolFees+res.FeeInQuote !=
					p.CumulativeQuoteLpFees+p.CumulativeQuoteProtocolFees {
					t.Fatalf("fee routing mismatch on sell_exact_in")
				}
				if kOf(p).Cmp(kStart) < 0 {
					t.Fatalf("k decreased on sell_exact_in")
				}
				assertFeeRatio(t, res.QuoteAmountToTransfer, res.FeeInQuote, p.FeeInBps, true)

			case 4: // BuyExactOut, driven by a simulate_buy_exact_in preview
				pct := (float64(r) + 1) / (10.0 * 255.0)
				quoteAmount := uint64(pct * float64(p.QuoteReserves))

				sim, err := p.SimulateBuyExactIn(quoteAmount)
				if err != nil {
					continue
				}

				before := *p
				kStart := kOf(p)
				res, err := p.BuyExactOut(slot, sim.BaseAmountToTransfer)
				if isRecoverableSwapError(err) {
					*p = before
					continue
				}
				if err != nil {
					t.Fatalf("unexpected buy_exact_out error: %v", err)
				}
				if sim.BaseAmountToTransfer != res.BaseAmountToTransfer {
					t.Fatalf("simulate fidelity violated: sim=%d actual=%d", sim.BaseAmountToTransfer, res.BaseAmountToTransfer)
				}
				if before.BaseReserves-res.BaseAmountToTransfer != p.BaseReserves {
					t.Fatalf("base conservation violated on buy_exact_out")
				}
				if before.QuoteReserves+(res.QuoteAmountToTransfer-res.FeeInQuote) != p.QuoteReserves {
					t.Fatalf("quote conservation violated on buy_exact_out")
				}
				if before.CumulativeQuoteLpFees+before.CumulativeQuoteProtocolFees+res.FeeInQuote !=
					p.CumulativeQuoteLpFees+p.CumulativeQuoteProtocolFees {
					t.Fatalf("fee routing mismatch on buy_exact_out")
				}
				if kOf(p).Cmp(kStart) < 0 {
					t.Fatalf("k decreased on buy_exact_out")
				}
				assertFeeRatio(t, res.QuoteAmountToTransfer, res.FeeInQuote, p.FeeInBps, false)

			case 5: // SellExactOut, driven by a simulate_sell_exact_in preview
				pct := (float64(r) + 1) / (10.0 * 256.0)
				baseRemaining := totalBaseSupply - p.BaseReserves
				baseAmount := uint64(pct * float64(baseRemaining))

				sim, err := p.SimulateSellExactIn(baseAmount)
				if err != nil {
					continue
				}
				if sim.QuoteAmountToTransfer >= p.QuoteReserves {
					continue
				}

				before := *p
				kStart := kOf(p)
				res, err := p.SellExactOut(slot, sim.QuoteAmountToTransfer)
				if isRecoverableSwapError(err) {
					*p = before
					continue
				}
				if err != nil {
					t.Fatalf("unexpected sell_exact_out error: %v", err)
				}
				if sim.QuoteAmountToTransfer != res.QuoteAmountToTransfer {
					t.Fatalf("simulate fidelity violated: sim=%d actual=%d", sim.QuoteAmountToTransfer, res.QuoteAmountToTransfer)
				}
				if before.BaseReserves+res.BaseAmountToTransfer != p.BaseReserves {
					t.Fatalf("base conservation violated on sell_exact_out")
				}
				if before.QuoteReserves-res.QuoteAmountToTransfer-res.FeeInQuote != p.QuoteReserves {
					t.Fatalf("quote conservation violated on sell_exact_out")
				}
				if before.CumulativeQuoteLpFees+before.CumulativeQuoteProtocolFees+res.FeeInQuote !=
					p.CumulativeQuoteLpFees+p.CumulativeQuoteProtocolFees {
					t.Fatalf("fee routing mismatch on sell_exact_out")
				}
				if kOf(p).Cmp(kStart) < 0 {
					t.Fatalf("k decreased on sell_exact_out")
				}
				assertFeeRatio(t, res.QuoteAmountToTransfer, res.FeeInQuote, p.FeeInBps, true)

			case 6: // Tick
				if !p.MaybeUpdateSnapshot(slot + 1) {
					t.Fatalf("tick onto a strictly larger slot must always advance the snapshot")
				}
				if p.BaseReservesSnapshot != p.BaseReserves || p.QuoteReservesSnapshot != p.QuoteReserves {
					t.Fatalf("snapshot reserves must equal reserves at the moment of the advance")
				}
			}
		}
	})
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
