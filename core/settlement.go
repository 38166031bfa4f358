package core

import (
	"fmt"
	"log"
)

// WithdrawDeposit refunds a non-winning bidder's deposit. Permitted once the
// winner has been determined (Revealing or later) or the auction was
// cancelled. The transfer is checked: on failure the bid stays unrefunded
// and the call can be retried.
func (a *Auction) WithdrawDeposit(bidder string) error {
	switch a.phase {
	case PhaseRevealing, PhaseSettled, PhaseCancelled:
	default:
		return fmt.Errorf("withdraw deposit: %w (phase=%s)", ErrInvalidPhase, a.phase)
	}
	bid, exists := a.bids[bidder]
	if !exists {
		return ErrNoBid
	}
	if a.winner != nil && a.winner.Winner == bidder {
		return ErrWinnerCannotWithdraw
	}
	if bid.Refunded {
		return ErrAlreadyRefunded
	}

	if err := a.funds.Transfer(bidder, bid.Deposit); err != nil {
		return fmt.Errorf("refund transfer to %s failed: %w", bidder, err)
	}
	bid.Refunded = true

	log.Printf("INFO: auction %s: deposit %d refunded to %s", a.id, bid.Deposit, bidder)
	return nil
}

// WithdrawWinnings transfers the winner's deposit to the operator. Operator
// only, Settled phase only, after the winning amount has been revealed. The
// deposit is assumed by auction design to cover the winning payment; this
// engine does not compare the two.
func (a *Auction) WithdrawWinnings(caller string) error {
	if err := a.requireOperator(caller); err != nil {
		return err
	}
	if a.phase != PhaseSettled {
		return fmt.Errorf("withdraw winnings: %w (phase=%s)", ErrInvalidPhase, a.phase)
	}
	if a.winner == nil || !a.winner.Revealed {
		return ErrNotRevealed
	}
	if a.winningsWithdrawn {
		return ErrAlreadyRefunded
	}

	bid := a.bids[a.winner.Winner]
	if err := a.funds.Transfer(a.operator, bid.Deposit); err != nil {
		return fmt.Errorf("winnings transfer to operator failed: %w", err)
	}
	a.winningsWithdrawn = true
	bid.Refunded = true

	log.Printf("INFO: auction %s: winner deposit %d transferred to operator (revealed amount %d)",
		a.id, bid.Deposit, a.winner.RevealedAmount)
	return nil
}

// EmergencyRefundAll force-cancels the auction and refunds every unrefunded
// participant best-effort. Operator only, any phase except Settled.
// Individual transfer failures are tolerated: the affected bid is simply not
// marked refunded and the participant can retry through WithdrawDeposit.
// Returns the number of deposits refunded by this call.
func (a *Auction) EmergencyRefundAll(caller string) (int, error) {
	if err := a.requireOperator(caller); err != nil {
		return 0, err
	}
	if a.phase == PhaseSettled {
		return 0, fmt.Errorf("emergency refund: %w (phase=%s)", ErrInvalidPhase, a.phase)
	}

	if a.phase != PhaseCancelled {
		a.advancePhase(PhaseCancelled)
	}

	refunded := 0
	for _, bidder := range a.participants {
		bid := a.bids[bidder]
		if bid.Refunded {
			continue
		}
		if err := a.funds.Transfer(bidder, bid.Deposit); err != nil {
			log.Printf("WARNING: auction %s: emergency refund to %s failed: %v (retryable)", a.id, bidder, err)
			continue
		}
		bid.Refunded = true
		refunded++
	}

	log.Printf("INFO: auction %s: emergency refund complete, %d of %d participants refunded",
		a.id, refunded, len(a.participants))
	return refunded, nil
}
