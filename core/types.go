package core

import "time"

// Bid is the ledger's per-participant record. Amount is sealed; Deposit is
// public. Refunded moves false to true exactly once.
type Bid struct {
	// Amount refers to the sealed bid amount. Replaced by a fresh handle on
	// every increase.
	Amount Handle

	// Deposit is the public deposit held for this participant, accumulated
	// across submit and increase calls.
	Deposit uint64

	// HasDecryptionAccess records that the bidder was granted the
	// substrate-level right to decrypt their own entry.
	HasDecryptionAccess bool

	// Refunded is set once the deposit has been pushed back out (or, for the
	// winner, consumed by the operator's withdrawal).
	Refunded bool
}

// WinnerRecord is produced once by winner determination. RevealedAmount is
// write-once and only meaningful after Revealed is true.
type WinnerRecord struct {
	Winner         string
	WinningAmount  Handle
	Revealed       bool
	RevealedAmount uint64
}

// DecryptionRequest binds an outstanding asynchronous decryption to a
// correlation id so a later plaintext submission can be matched to it.
// Abandoning the flow needs no cleanup: an unmatched correlation id is simply
// never honored.
type DecryptionRequest struct {
	CorrelationID string
	Requester     string
	Handle        Handle
	RequestedAt   time.Time

	// PendingID is the substrate's own id for the queued decryption.
	PendingID string
}

// Config carries the construction parameters for one auction instance.
type Config struct {
	// AuctionID identifies this auction instance in logs, correlation ids
	// and wire responses.
	AuctionID string

	// Operator is the principal allowed to start, cancel, reveal and settle.
	Operator string

	// Item is the opaque reference to the auctioned item.
	Item string

	// MinimumBid is the public minimum bid amount, in base units.
	MinimumBid uint64

	// DepositRequired is the public deposit every bidder must attach, in
	// base units. Submit calls with any other deposit are rejected.
	DepositRequired uint64

	// Substrate and Funds are the external collaborators. Both required.
	Substrate Substrate
	Funds     FundsLedger

	// Verifier checks decryption certificates during reveal. Optional: when
	// nil the engine enforces only the correlation-id binding and trusts the
	// operator-submitted plaintext.
	Verifier RevealVerifier

	// Clock defaults to the system clock when nil.
	Clock Clock
}
