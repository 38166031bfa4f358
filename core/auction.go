package core

import (
	"fmt"
	"log"
	"time"
)

// Auction is one confidential sealed-bid auction instance. All state lives on
// the instance; there are no package-level singletons. The engine executes
// each operation to completion, so the phase gate at the top of every
// operation is the only coordination mechanism required.
type Auction struct {
	id              string
	operator        string
	item            string
	minimumBid      uint64
	depositRequired uint64

	substrate Substrate
	funds     FundsLedger
	verifier  RevealVerifier
	clock     Clock

	phase       Phase
	windowStart time.Time
	windowEnd   time.Time

	// minimumHandle is the trivially encrypted minimum bid, created once at
	// construction so admission checks never re-encrypt the public constant.
	minimumHandle Handle

	bids         map[string]*Bid
	participants []string

	winner  *WinnerRecord
	pending *DecryptionRequest

	// winningsWithdrawn guards the operator's single withdrawal of the
	// winner's deposit.
	winningsWithdrawn bool
}

// NewAuction constructs an auction in the Setup phase.
func NewAuction(cfg Config) (*Auction, error) {
	if cfg.AuctionID == "" {
		return nil, fmt.Errorf("auction id is required")
	}
	if cfg.Operator == "" {
		return nil, fmt.Errorf("operator is required")
	}
	if cfg.Substrate == nil {
		return nil, fmt.Errorf("substrate collaborator is required")
	}
	if cfg.Funds == nil {
		return nil, fmt.Errorf("funds ledger collaborator is required")
	}

	clock := cfg.Clock
	if clock == nil {
		clock = systemClock{}
	}

	minHandle, err := cfg.Substrate.EncryptTrivial(cfg.MinimumBid)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt minimum bid: %w", err)
	}
	if err := cfg.Substrate.GrantSelfAccess(minHandle); err != nil {
		return nil, fmt.Errorf("failed to authorize minimum bid handle: %w", err)
	}

	if cfg.Verifier == nil {
		log.Printf("WARNING: auction %s constructed without a reveal verifier; operator-submitted plaintext will be trusted", cfg.AuctionID)
	}

	return &Auction{
		id:              cfg.AuctionID,
		operator:        cfg.Operator,
		item:            cfg.Item,
		minimumBid:      cfg.MinimumBid,
		depositRequired: cfg.DepositRequired,
		substrate:       cfg.Substrate,
		funds:           cfg.Funds,
		verifier:        cfg.Verifier,
		clock:           clock,
		phase:           PhaseSetup,
		minimumHandle:   minHandle,
		bids:            make(map[string]*Bid),
	}, nil
}

// Phase returns the current lifecycle phase.
func (a *Auction) Phase() Phase { return a.phase }

// Operator returns the operator principal.
func (a *Auction) Operator() string { return a.operator }

// Item returns the opaque auctioned item reference.
func (a *Auction) Item() string { return a.item }

// WindowEnd returns the end of the bidding window. Zero before Start.
func (a *Auction) WindowEnd() time.Time { return a.windowEnd }

// Participants returns the bidders in insertion order.
func (a *Auction) Participants() []string {
	out := make([]string, len(a.participants))
	copy(out, a.participants)
	return out
}

// Start opens the bidding window. Operator only, Setup phase only.
func (a *Auction) Start(caller string, duration time.Duration) error {
	if err := a.requireOperator(caller); err != nil {
		return err
	}
	if a.phase != PhaseSetup {
		return fmt.Errorf("start: %w (phase=%s)", ErrInvalidPhase, a.phase)
	}
	if duration <= 0 {
		return ErrInvalidDuration
	}

	a.windowStart = a.clock.Now()
	a.windowEnd = a.windowStart.Add(duration)
	a.advancePhase(PhaseBidding)

	log.Printf("INFO: auction %s: bidding open for item %s until %s (minimum=%d, deposit=%d)",
		a.id, a.item, a.windowEnd.Format(time.RFC3339), a.minimumBid, a.depositRequired)
	return nil
}

// EndBidding closes the window and determines the winner. Callable by anyone
// once the window has elapsed and at least one bid exists; winner
// determination runs synchronously within the same operation. Returns the
// public winner identity; the winning amount stays sealed.
func (a *Auction) EndBidding() (string, error) {
	if a.phase != PhaseBidding {
		return "", fmt.Errorf("end bidding: %w (phase=%s)", ErrInvalidPhase, a.phase)
	}
	if a.clock.Now().Before(a.windowEnd) {
		return "", ErrAuctionStillActive
	}
	if len(a.participants) == 0 {
		return "", ErrNoBids
	}

	record, err := a.determineWinner()
	if err != nil {
		return "", fmt.Errorf("winner determination failed: %w", err)
	}

	a.winner = record
	a.advancePhase(PhaseRevealing)

	log.Printf("INFO: auction %s ended: winner=%s determined over %d bids, amount still sealed",
		a.id, record.Winner, len(a.participants))
	return record.Winner, nil
}

// Cancel aborts the auction before any bid has been recorded. Operator only.
func (a *Auction) Cancel(caller string) error {
	if err := a.requireOperator(caller); err != nil {
		return err
	}
	switch a.phase {
	case PhaseSetup:
		// Nothing recorded yet.
	case PhaseBidding:
		if len(a.participants) > 0 {
			return ErrCannotCancelWithBids
		}
	default:
		return fmt.Errorf("cancel: %w (phase=%s)", ErrInvalidPhase, a.phase)
	}

	a.advancePhase(PhaseCancelled)
	log.Printf("INFO: auction %s cancelled by operator", a.id)
	return nil
}

// Winner returns the winner record, or ErrNoWinner before determination. The
// returned copy keeps RevealedAmount zeroed until the reveal has happened.
func (a *Auction) Winner() (WinnerRecord, error) {
	if a.winner == nil {
		return WinnerRecord{}, ErrNoWinner
	}
	return *a.winner, nil
}

// advancePhase is the single phase write point. Phase moves forward only;
// terminal phases are absorbing by construction because every transition site
// checks the current phase first.
func (a *Auction) advancePhase(next Phase) {
	if a.phase.terminal() {
		// Transition sites gate on phase before calling; reaching here is a
		// programming error, not an input error.
		panic(fmt.Sprintf("auction %s: phase transition %s -> %s after terminal phase", a.id, a.phase, next))
	}
	log.Printf("INFO: auction %s: phase %s -> %s", a.id, a.phase, next)
	a.phase = next
}

func (a *Auction) requireOperator(caller string) error {
	if caller != a.operator {
		return fmt.Errorf("caller %q: %w", caller, ErrUnauthorized)
	}
	return nil
}
