package core

import (
	"fmt"
	"log"
)

// determineWinner runs the branch-blind linear scan over the ledger in
// participant insertion order. The running maximum is carried as a sealed
// handle: each step computes an encrypted comparison and a branch-blind
// select in which both operands are always evaluated, so the scan's
// data flow never depends on bid magnitudes.
//
// Winner identity is a public output of the auction, so each pairwise
// comparison bit is resolved to plaintext through the substrate's restricted
// resolution primitive. That is the single point where plaintext leaves the
// confidential domain before the reveal phase, and it is limited to one
// greater/not bit per comparison. A strict greater-than keeps ties with the
// earliest-inserted maximal bidder.
func (a *Auction) determineWinner() (*WinnerRecord, error) {
	if len(a.participants) == 0 {
		return nil, ErrNoBidsToEvaluate
	}

	winner := a.participants[0]
	winningAmount := a.bids[winner].Amount

	for _, candidate := range a.participants[1:] {
		candidateAmount := a.bids[candidate].Amount

		isHigher, err := a.substrate.CompareGt(candidateAmount, winningAmount)
		if err != nil {
			return nil, fmt.Errorf("compare for %s failed: %w", candidate, err)
		}

		// Branch-blind: both operands are computed and handed to the
		// substrate regardless of the comparison outcome.
		selected, err := a.substrate.Select(isHigher, candidateAmount, winningAmount)
		if err != nil {
			return nil, fmt.Errorf("select for %s failed: %w", candidate, err)
		}

		// The select produced a fresh handle; re-authorize before it becomes
		// the stored running maximum.
		if err := a.substrate.GrantSelfAccess(selected); err != nil {
			return nil, fmt.Errorf("failed to re-authorize running maximum: %w", err)
		}
		winningAmount = selected

		// Public identity resolution: one greater/not bit per comparison.
		higher, err := a.substrate.ResolveBool(isHigher)
		if err != nil {
			return nil, fmt.Errorf("identity resolution for %s failed: %w", candidate, err)
		}
		if higher {
			winner = candidate
		}
	}

	log.Printf("INFO: auction %s: winner determination scanned %d participants", a.id, len(a.participants))
	return &WinnerRecord{
		Winner:        winner,
		WinningAmount: winningAmount,
	}, nil
}
