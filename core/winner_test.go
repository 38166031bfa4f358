package core_test

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/sealedbid/core"
)

func TestWinnerDetermination_MaximumWins(t *testing.T) {
	tests := []struct {
		name    string
		amounts []uint64
		winner  string
	}{
		{"single bid", []uint64{1_500_000}, "bidder-a"},
		{"maximum first", []uint64{3_000_000, 2_000_000, 1_500_000}, "bidder-a"},
		{"maximum in middle", []uint64{1_500_000, 3_000_000, 2_000_000}, "bidder-b"},
		{"maximum last", []uint64{1_500_000, 2_000_000, 3_000_000}, "bidder-c"},
		{"two bidders", []uint64{1_200_000, 1_100_000}, "bidder-a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.startBidding()
			names := bidders(len(tt.amounts))
			for i, amount := range tt.amounts {
				f.bid(names[i], amount)
			}

			winner := f.endBidding()
			check.Equal(t, tt.winner, winner)
		})
	}
}

func TestWinnerDetermination_TiesResolveToEarliestBidder(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)
	f.bid("bidder-b", 2_000_000)
	f.bid("bidder-c", 2_000_000)
	f.bid("bidder-d", 1_800_000)

	winner := f.endBidding()
	check.Equal(t, "bidder-b", winner)
}

func TestWinnerDetermination_AccountsForIncreases(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)
	f.bid("bidder-b", 2_000_000)

	// bidder-a tops up past bidder-b before the window closes.
	check.Nil(t, f.auction.IncreaseBid("bidder-a", f.seal("bidder-a", 600_000), 0))

	winner := f.endBidding()
	check.Equal(t, "bidder-a", winner)

	check.Equal(t, uint64(2_100_000), f.reveal())
}

func TestWinnerDetermination_WinningAmountStaysSealedAndAccessible(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)
	f.bid("bidder-b", 2_000_000)
	f.endBidding()

	record, err := f.auction.Winner()
	check.Nil(t, err)
	check.False(t, record.Revealed)
	check.Equal(t, uint64(0), record.RevealedAmount)

	// The running maximum came out of branch-blind selects; the engine must
	// have re-authorized itself on the final handle.
	check.True(t, f.sub.SelfAccessible(record.WinningAmount))

	// Nobody else has been granted access before the reveal protocol runs.
	check.False(t, f.sub.HasAccess(record.WinningAmount, testOperator))
	check.False(t, f.sub.HasAccess(record.WinningAmount, "bidder-a"))
	check.False(t, f.sub.HasAccess(record.WinningAmount, "bidder-b"))
}

func TestWinner_BeforeDetermination(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)

	_, err := f.auction.Winner()
	check.True(t, errors.Is(err, core.ErrNoWinner))
}

// TestLedgerHandlesStaySelfAccessible checks the re-authorize-after-write
// discipline across a mixed mutation sequence: every stored handle, for every
// bidder, stays decryptable by the engine itself.
func TestLedgerHandlesStaySelfAccessible(t *testing.T) {
	f := newFixture(t)
	f.startBidding()

	names := bidders(3)
	for i, name := range names {
		f.bid(name, testMinimum+uint64(i)*100_000)
	}
	check.Nil(t, f.auction.IncreaseBid(names[0], f.seal(names[0], 50_000), 0))
	check.Nil(t, f.auction.IncreaseBid(names[2], f.seal(names[2], 75_000), 0))
	check.Nil(t, f.auction.IncreaseBid(names[0], f.seal(names[0], 25_000), 0))

	for _, name := range names {
		handle, err := f.auction.GetBid(testOperator, name)
		check.Nil(t, err)
		check.True(t, f.sub.SelfAccessible(handle))
	}
}
