// Command ammsim drives a single pool through an initial mint, a buy, a
// second mint at the end of the vesting window and a fee collection, logging
// reserves and fees along the way, and finally encodes the pool. It is a
// demo harness for the ammcore/lp packages, not a production entrypoint: the
// core is a pure library with no custody, transport or persistence wired in
// by itself.
package main

import (
	"flag"
	"log"
	"math/big"

	"github.com/solana-zh/ammengine/pkg/ammcore"
	"github.com/solana-zh/ammengine/pkg/layout"
	"github.com/solana-zh/ammengine/pkg/lp"
)

func main() {
	var (
		feeInBps      = flag.Uint("fee-bps", 30, "swap fee in basis points")
		protocolPct   = flag.Uint("protocol-pct", 5, "percent of every fee routed to the protocol")
		vestingWindow = flag.Uint64("vesting-window", 4, "slots a freshly minted lp share must wait before it is withdrawable")
		baseDesired   = flag.Uint64("base", 279_900_000_000_000, "base reserves for the first mint")
		quoteDesired  = flag.Uint64("quote", 100_000_000_000, "quote reserves for the first mint")
		buyQuoteIn    = flag.Uint64("buy-quote-in", 10_000_000_000, "quote amount spent on the demo buy_exact_in")
	)
	flag.Parse()

	pool := ammcore.NewPool(uint32(*feeInBps), uint32(*protocolPct), *vestingWindow, 0)
	position := lp.NewPosition(pool)

	initialShares := isqrt(*baseDesired, *quoteDesired)
	addRes, err := position.AddLiquidity(0, pool, *baseDesired, *quoteDesired, &initialShares)
	if err != nil {
		log.Fatalf("initial mint failed: %v", err)
	}
	log.Printf("minted %d shares for (%d base, %d quote); reserves now (%d, %d)",
		addRes.LpSharesReceived, addRes.BaseAmountDeposited, addRes.QuoteAmountDeposited,
		pool.BaseReserves, pool.QuoteReserves)

	buyRes, err := pool.BuyExactIn(0, *buyQuoteIn)
	if err != nil {
		log.Fatalf("buy_exact_in failed: %v", err)
	}
	log.Printf("buy_exact_in(%d): base_out=%d quote_in=%d fee=%d (limit leg base=%d quote=%d, curve leg base=%d quote=%d)",
		*buyQuoteIn, buyRes.BaseAmountToTransfer, buyRes.QuoteAmountToTransfer, buyRes.FeeInQuote,
		buyRes.BaseMatchedAsLimitOrder, buyRes.QuoteMatchedAsLimitOrder,
		buyRes.BaseMatchedAsSwap, buyRes.QuoteMatchedAsSwap)
	log.Printf("reserves now (%d, %d); cumulative lp fees=%d protocol fees=%d",
		pool.BaseReserves, pool.QuoteReserves, pool.CumulativeQuoteLpFees, pool.CumulativeQuoteProtocolFees)

	vestSlot := *vestingWindow
	vestAdd, err := position.AddLiquidity(vestSlot, pool, pool.BaseReserves/20, pool.QuoteReserves/20, nil)
	if err != nil {
		log.Fatalf("second mint failed: %v", err)
	}
	log.Printf("minted %d more shares at slot %d; %d prior shares vested", vestAdd.LpSharesReceived, vestSlot, vestAdd.LpSharesVested)

	fees, err := position.CollectFees(vestSlot, pool)
	if err != nil {
		log.Fatalf("collect_fees failed: %v", err)
	}
	log.Printf("collected %d quote in lp fees; reward_factor floor=%d", fees, pool.RewardFactor.Floor())

	packed, err := layout.EncodePool(pool)
	if err != nil {
		log.Fatalf("encode pool failed: %v", err)
	}
	log.Printf("packed pool layout: %d bytes", len(packed))
}

// isqrt returns floor(sqrt(a*b)), the initial share count Mint requires on a
// pool's first deposit.
func isqrt(a, b uint64) uint64 {
	v := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	return new(big.Int).Sqrt(v).Uint64()
}
