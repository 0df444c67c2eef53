// Package layout defines the fixed-size, packed little-endian encoding of a
// pool used to persist it in a host runtime's account storage.
package layout

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/solana-zh/ammengine/pkg/ammcore"
	"github.com/solana-zh/ammengine/pkg/fixedpoint"
)

// PackedPool is the on-disk field layout of a Pool, in declaration order with
// no padding between scalar fields.
type PackedPool struct {
	FeeInBps                uint32
	ProtocolAllocationInPct uint32
	LpVestingWindow         uint64

	RewardFactor  fixedpoint.Fixed
	TotalLpShares uint64

	SlotSnapshot          uint64
	BaseReservesSnapshot  uint64
	QuoteReservesSnapshot uint64

	BaseReserves  uint64
	QuoteReserves uint64

	CumulativeQuoteLpFees       uint64
	CumulativeQuoteProtocolFees uint64
}

// Span is the encoded size of a PackedPool in bytes.
const Span = 4 + 4 + 8 + 16 + 8 + 8 + 8 + 8 + 8 + 8 + 8 + 8

// EncodePool packs a Pool into its persisted byte representation.
func EncodePool(p *ammcore.Pool) ([]byte, error) {
	packed := PackedPool{
		FeeInBps:                    p.FeeInBps,
		ProtocolAllocationInPct:     p.ProtocolAllocationInPct,
		LpVestingWindow:             p.LpVestingWindow,
		RewardFactor:                p.RewardFactor,
		TotalLpShares:               p.TotalLpShares,
		SlotSnapshot:                p.SlotSnapshot,
		BaseReservesSnapshot:        p.BaseReservesSnapshot,
		QuoteReservesSnapshot:       p.QuoteReservesSnapshot,
		BaseReserves:                p.BaseReserves,
		QuoteReserves:               p.QuoteReserves,
		CumulativeQuoteLpFees:       p.CumulativeQuoteLpFees,
		CumulativeQuoteProtocolFees: p.CumulativeQuoteProtocolFees,
	}
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(&packed); err != nil {
		return nil, fmt.Errorf("layout: encode pool: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePool unpacks a Pool from its persisted byte representation.
func DecodePool(data []byte) (*ammcore.Pool, error) {
	var packed PackedPool
	if err := bin.NewBorshDecoder(data).Decode(&packed); err != nil {
		return nil, fmt.Errorf("layout: decode pool: %w", err)
	}
	return &ammcore.Pool{
		FeeInBps:                    packed.FeeInBps,
		ProtocolAllocationInPct:     packed.ProtocolAllocationInPct,
		LpVestingWindow:             packed.LpVestingWindow,
		RewardFactor:                packed.RewardFactor,
		TotalLpShares:               packed.TotalLpShares,
		SlotSnapshot:                packed.SlotSnapshot,
		BaseReservesSnapshot:        packed.BaseReservesSnapshot,
		QuoteReservesSnapshot:       packed.QuoteReservesSnapshot,
		BaseReserves:                packed.BaseReserves,
		QuoteReserves:               packed.QuoteReserves,
		CumulativeQuoteLpFees:       packed.CumulativeQuoteLpFees,
		CumulativeQuoteProtocolFees: packed.CumulativeQuoteProtocolFees,
	}, nil
}
