package core

import "errors"

// Every rejection carries a named condition so callers can build programmatic
// retry logic instead of matching on message strings. All checks precede all
// writes: a failed operation never leaves partial state behind.
var (
	// Phase violations. Recoverable by retrying once the correct phase is
	// reached.
	ErrInvalidPhase       = errors.New("operation not permitted in current phase")
	ErrInvalidDuration    = errors.New("bidding duration must be positive")
	ErrAuctionStillActive = errors.New("bidding window has not closed yet")
	ErrBiddingClosed      = errors.New("bidding window is closed")

	// Authorization violations. Recoverable by routing through the correct
	// principal.
	ErrUnauthorized = errors.New("caller is not authorized for this operation")

	// State-precondition violations.
	ErrNoBids               = errors.New("no bids were recorded")
	ErrCannotCancelWithBids = errors.New("cannot cancel an auction that has recorded bids")
	ErrDepositMismatch      = errors.New("deposit does not match the required amount")
	ErrAlreadyBid           = errors.New("participant has already placed a bid")
	ErrBelowMinimum         = errors.New("bid amount is below the minimum bid")
	ErrNoExistingBid        = errors.New("participant has no existing bid")
	ErrNoBidsToEvaluate     = errors.New("no bids to evaluate for winner determination")
	ErrNoWinner             = errors.New("no winner has been determined")
	ErrAlreadyRevealed      = errors.New("winning amount has already been revealed")
	ErrRevealPending        = errors.New("a decryption request is already outstanding")
	ErrUnknownCorrelation   = errors.New("correlation id does not match the outstanding decryption request")
	ErrBadDecryptionProof   = errors.New("decryption certificate verification failed")
	ErrAlreadyRefunded      = errors.New("deposit has already been refunded")
	ErrWinnerCannotWithdraw = errors.New("the winning bidder cannot withdraw their deposit")
	ErrNoBid                = errors.New("participant never placed a bid")
	ErrNotRevealed          = errors.New("winning amount has not been revealed yet")
)
