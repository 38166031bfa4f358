package core

import (
	"fmt"
	"log"
)

// SubmitBid records a participant's first sealed bid. The attached deposit
// must equal the configured requirement exactly. Admission requires the
// sealed amount to meet the public minimum bid; that comparison is computed
// homomorphically and resolved to a single plaintext bit, which leaks nothing
// beyond the externally observable accept/reject outcome.
func (a *Auction) SubmitBid(bidder string, amount Handle, deposit uint64) error {
	if a.phase != PhaseBidding {
		return fmt.Errorf("submit bid: %w (phase=%s)", ErrInvalidPhase, a.phase)
	}
	if !a.clock.Now().Before(a.windowEnd) {
		return ErrBiddingClosed
	}
	if deposit != a.depositRequired {
		return fmt.Errorf("%w: got %d, required %d", ErrDepositMismatch, deposit, a.depositRequired)
	}
	if _, exists := a.bids[bidder]; exists {
		return ErrAlreadyBid
	}

	meetsMinimum, err := a.amountMeetsMinimum(amount)
	if err != nil {
		return fmt.Errorf("minimum bid check failed: %w", err)
	}
	if !meetsMinimum {
		return ErrBelowMinimum
	}

	// All checks passed; the storeBid helper performs the writes and the
	// mandatory re-authorization in one place.
	if err := a.storeBid(bidder, amount, deposit); err != nil {
		return err
	}
	a.participants = append(a.participants, bidder)

	log.Printf("INFO: auction %s: bid recorded for %s (deposit=%d, participants=%d)",
		a.id, bidder, deposit, len(a.participants))
	return nil
}

// IncreaseBid homomorphically adds to an existing sealed bid and accumulates
// the attached deposit. The add produces a fresh handle, so the stored entry
// is fully re-authorized for both the engine and the bidder.
func (a *Auction) IncreaseBid(bidder string, additional Handle, additionalDeposit uint64) error {
	if a.phase != PhaseBidding {
		return fmt.Errorf("increase bid: %w (phase=%s)", ErrInvalidPhase, a.phase)
	}
	if !a.clock.Now().Before(a.windowEnd) {
		return ErrBiddingClosed
	}
	bid, exists := a.bids[bidder]
	if !exists {
		return ErrNoExistingBid
	}

	increased, err := a.substrate.Add(bid.Amount, additional)
	if err != nil {
		return fmt.Errorf("homomorphic add failed: %w", err)
	}

	if err := a.storeBid(bidder, increased, bid.Deposit+additionalDeposit); err != nil {
		return err
	}

	log.Printf("INFO: auction %s: bid increased for %s (deposit=%d)", a.id, bidder, bid.Deposit)
	return nil
}

// GetBid releases the sealed handle to the bidder themself or the operator,
// granting the caller the substrate-level right to decrypt it first.
func (a *Auction) GetBid(caller, bidder string) (Handle, error) {
	if caller != bidder && caller != a.operator {
		return "", fmt.Errorf("get bid for %q: %w", bidder, ErrUnauthorized)
	}
	bid, exists := a.bids[bidder]
	if !exists {
		return "", ErrNoBid
	}
	if err := a.substrate.GrantAccess(bid.Amount, caller); err != nil {
		return "", fmt.Errorf("failed to grant access to %q: %w", caller, err)
	}
	return bid.Amount, nil
}

// storeBid is the single write point for ledger entries. It re-grants the
// engine's own access and the bidder's access on every store, so the
// "re-authorize after write" invariant holds structurally rather than by
// per-call discipline. Losing self-access to a stored handle would be a
// permanent loss of the sealed amount, not a recoverable error.
func (a *Auction) storeBid(bidder string, amount Handle, deposit uint64) error {
	if err := a.substrate.GrantSelfAccess(amount); err != nil {
		return fmt.Errorf("failed to re-authorize engine access: %w", err)
	}
	if err := a.substrate.GrantAccess(amount, bidder); err != nil {
		return fmt.Errorf("failed to grant bidder access: %w", err)
	}

	if bid, exists := a.bids[bidder]; exists {
		bid.Amount = amount
		bid.Deposit = deposit
		bid.HasDecryptionAccess = true
		return nil
	}
	a.bids[bidder] = &Bid{
		Amount:              amount,
		Deposit:             deposit,
		HasDecryptionAccess: true,
	}
	return nil
}

// amountMeetsMinimum computes amount >= minimum homomorphically and resolves
// the single admission bit.
func (a *Auction) amountMeetsMinimum(amount Handle) (bool, error) {
	if a.minimumBid == 0 {
		return true, nil
	}
	cond, err := a.substrate.CompareGte(amount, a.minimumHandle)
	if err != nil {
		return false, fmt.Errorf("homomorphic compare failed: %w", err)
	}
	return a.substrate.ResolveBool(cond)
}

// DepositOf returns the recorded public deposit for a bidder.
func (a *Auction) DepositOf(bidder string) (uint64, error) {
	bid, exists := a.bids[bidder]
	if !exists {
		return 0, ErrNoBid
	}
	return bid.Deposit, nil
}
