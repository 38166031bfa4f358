package core_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/cloudx-io/sealedbid/core"
	"github.com/cloudx-io/sealedbid/substrate"
	"github.com/cloudx-io/sealedbid/validation"
)

const (
	testOperator = "operator-1"
	testDeposit  = uint64(100_000) // 10.0000 in base units
	testMinimum  = uint64(1_000_000)
)

// mockClock implements core.Clock with manual advancement for deterministic
// window tests.
type mockClock struct {
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time { return c.now }

func (c *mockClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// mockFunds implements core.FundsLedger, recording transfers and allowing
// per-call failure injection.
type mockFunds struct {
	transfers    map[string]uint64
	transferFunc func(to string, amount uint64) error
}

func newMockFunds() *mockFunds {
	return &mockFunds{transfers: make(map[string]uint64)}
}

func (f *mockFunds) Transfer(to string, amount uint64) error {
	if f.transferFunc != nil {
		if err := f.transferFunc(to, amount); err != nil {
			return err
		}
	}
	f.transfers[to] += amount
	return nil
}

// fixture wires an auction to a simulated substrate, a recording funds
// ledger and a manual clock.
type fixture struct {
	t       *testing.T
	auction *core.Auction
	sub     *substrate.Simulated
	funds   *mockFunds
	clock   *mockClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sub, err := substrate.NewSimulated()
	if err != nil {
		t.Fatalf("failed to create substrate: %v", err)
	}
	funds := newMockFunds()
	clock := newMockClock()

	auction, err := core.NewAuction(core.Config{
		AuctionID:       "auction-1",
		Operator:        testOperator,
		Item:            "item-42",
		MinimumBid:      testMinimum,
		DepositRequired: testDeposit,
		Substrate:       sub,
		Funds:           funds,
		Verifier:        &validation.Verifier{PublicKey: sub.PublicKey()},
		Clock:           clock,
	})
	if err != nil {
		t.Fatalf("failed to create auction: %v", err)
	}

	return &fixture{t: t, auction: auction, sub: sub, funds: funds, clock: clock}
}

// startBidding opens a one-hour bidding window.
func (f *fixture) startBidding() {
	f.t.Helper()
	if err := f.auction.Start(testOperator, time.Hour); err != nil {
		f.t.Fatalf("failed to start auction: %v", err)
	}
}

// seal encrypts a plaintext amount on the bidder's behalf.
func (f *fixture) seal(bidder string, amount uint64) core.Handle {
	f.t.Helper()
	h, err := f.sub.Encrypt(amount, bidder)
	if err != nil {
		f.t.Fatalf("failed to encrypt bid for %s: %v", bidder, err)
	}
	return h
}

// bid submits a sealed bid with the required deposit.
func (f *fixture) bid(bidder string, amount uint64) {
	f.t.Helper()
	if err := f.auction.SubmitBid(bidder, f.seal(bidder, amount), testDeposit); err != nil {
		f.t.Fatalf("failed to submit bid for %s: %v", bidder, err)
	}
}

// closeWindow advances the clock past the end of the bidding window.
func (f *fixture) closeWindow() {
	f.clock.Advance(2 * time.Hour)
}

// endBidding closes the window and returns the determined winner.
func (f *fixture) endBidding() string {
	f.t.Helper()
	f.closeWindow()
	winner, err := f.auction.EndBidding()
	if err != nil {
		f.t.Fatalf("failed to end bidding: %v", err)
	}
	return winner
}

// reveal drives the full asynchronous reveal: request, out-of-band
// fulfillment by the substrate, then the operator's submission of the
// certified plaintext.
func (f *fixture) reveal() uint64 {
	f.t.Helper()

	correlationID, err := f.auction.RequestWinningAmountDecryption(testOperator)
	if err != nil {
		f.t.Fatalf("failed to request decryption: %v", err)
	}
	pending, err := f.auction.PendingDecryption()
	if err != nil {
		f.t.Fatalf("no pending decryption request: %v", err)
	}
	plaintext, cert, err := f.sub.Fulfill(pending.PendingID, correlationID)
	if err != nil {
		f.t.Fatalf("substrate fulfillment failed: %v", err)
	}
	if err := f.auction.RevealWinningAmount(testOperator, plaintext, correlationID, cert); err != nil {
		f.t.Fatalf("failed to reveal winning amount: %v", err)
	}
	return plaintext
}

// bidders generates distinct bidder names.
func bidders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("bidder-%c", 'a'+i)
	}
	return out
}
