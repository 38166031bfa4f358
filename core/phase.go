package core

import "fmt"

// Phase is a stage in the auction lifecycle. Every externally invoked
// operation is gated on the current phase before it touches any state, which
// is the engine's only mutual-exclusion mechanism: once the phase advances,
// operations gated on the prior phase are permanently closed.
type Phase int

const (
	// PhaseSetup is the initial phase; the auction is configured but the
	// bidding window has not opened.
	PhaseSetup Phase = iota

	// PhaseBidding accepts new and increased bids until the window closes.
	PhaseBidding

	// PhaseRevealing starts once the winner has been determined; the winning
	// amount is still sealed and awaiting the decryption protocol.
	PhaseRevealing

	// PhaseSettled is reached when the winning amount has been revealed.
	// Settled is absorbing: no phase-mutating call succeeds afterwards.
	PhaseSettled

	// PhaseCancelled is the explicit exit, reachable only from Setup, from
	// Bidding with zero bids, or through an emergency refund. Absorbing.
	PhaseCancelled
)

// String returns the lowercase phase name used in logs and wire responses.
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseBidding:
		return "bidding"
	case PhaseRevealing:
		return "revealing"
	case PhaseSettled:
		return "settled"
	case PhaseCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// terminal reports whether the phase is absorbing.
func (p Phase) terminal() bool {
	return p == PhaseSettled || p == PhaseCancelled
}
