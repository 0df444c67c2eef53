package ammcore

import (
	"errors"
	"fmt"

	cosmosmath "cosmossdk.io/math"
)

// Sentinel errors covering the taxonomy members that carry no extra data.
var (
	ErrSwapAmountMismatch             = errors.New("ammcore: swap leg amounts do not reconcile with the transfer amount")
	ErrOverflow                       = errors.New("ammcore: arithmetic overflow")
	ErrUnderflow                      = errors.New("ammcore: arithmetic underflow")
	ErrUninitializedPool              = errors.New("ammcore: pool has no liquidity")
	ErrMissingExpectedArgument        = errors.New("ammcore: missing required argument")
	ErrUnexpectedArgument             = errors.New("ammcore: unexpected argument supplied")
	ErrBelowMinimumLpSharesRequired   = errors.New("ammcore: deposit would mint zero lp shares")
	ErrBelowMinimumWithdrawalRequired = errors.New("ammcore: withdrawal would return zero base or quote")
	ErrVestingPeriodNotOver           = errors.New("ammcore: a previous deposit has not finished vesting")
	ErrSwapExactInTooLarge            = errors.New("ammcore: exact-in amount too large for the pool to quote")
	ErrSwapExactOutTooLarge           = errors.New("ammcore: exact-out amount too large for the pool to quote")
)

// InvariantViolationError reports that a swap left k smaller than it started,
// which signals a bug in the engine rather than a bad caller input.
type InvariantViolationError struct {
	KStart cosmosmath.Uint
	KEnd   cosmosmath.Uint
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("ammcore: invariant violation: k went from %s to %s", e.KStart.String(), e.KEnd.String())
}

// MismatchedFeesError reports that the lp/protocol fee split did not sum back
// to the total fee it was derived from.
type MismatchedFeesError struct {
	Expected uint64
	Actual   uint64
}

func (e *MismatchedFeesError) Error() string {
	return fmt.Sprintf("ammcore: mismatched fees: expected %d, got %d", e.Expected, e.Actual)
}

// SwapOutputGreaterThanOrEqualToReservesError reports a request for an output
// amount that would drain the curve-priced side of the pool entirely.
type SwapOutputGreaterThanOrEqualToReservesError struct {
	Requested uint64
	Reserves  uint64
}

func (e *SwapOutputGreaterThanOrEqualToReservesError) Error() string {
	return fmt.Sprintf("ammcore: requested output %d is greater than or equal to reserves %d", e.Requested, e.Reserves)
}
