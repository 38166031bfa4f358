package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/sealedbid/core"
)

func TestWithdrawDeposit_BeforeWinnerDetermined(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)

	err := f.auction.WithdrawDeposit("bidder-a")
	check.True(t, errors.Is(err, core.ErrInvalidPhase))
}

func TestWithdrawDeposit_LoserGetsExactDeposit(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)
	f.bid("bidder-b", 2_000_000)
	f.endBidding()

	check.Nil(t, f.auction.WithdrawDeposit("bidder-a"))
	check.Equal(t, testDeposit, f.funds.transfers["bidder-a"])
}

func TestWithdrawDeposit_WinnerRejected(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)
	f.bid("bidder-b", 2_000_000)
	f.endBidding()

	err := f.auction.WithdrawDeposit("bidder-b")
	check.True(t, errors.Is(err, core.ErrWinnerCannotWithdraw))
}

func TestWithdrawDeposit_DoubleRefundRejected(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)
	f.bid("bidder-b", 2_000_000)
	f.endBidding()

	check.Nil(t, f.auction.WithdrawDeposit("bidder-a"))
	err := f.auction.WithdrawDeposit("bidder-a")
	check.True(t, errors.Is(err, core.ErrAlreadyRefunded))
	check.Equal(t, testDeposit, f.funds.transfers["bidder-a"])
}

func TestWithdrawDeposit_NoBid(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)
	f.bid("bidder-b", 2_000_000)
	f.endBidding()

	err := f.auction.WithdrawDeposit("stranger")
	check.True(t, errors.Is(err, core.ErrNoBid))
}

func TestWithdrawDeposit_TransferFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)
	f.bid("bidder-b", 2_000_000)
	f.endBidding()

	f.funds.transferFunc = func(to string, amount uint64) error {
		return fmt.Errorf("payment rail unavailable")
	}
	err := f.auction.WithdrawDeposit("bidder-a")
	check.NotNil(t, err)
	check.Equal(t, uint64(0), f.funds.transfers["bidder-a"])

	// The bid was not marked refunded, so the retry succeeds.
	f.funds.transferFunc = nil
	check.Nil(t, f.auction.WithdrawDeposit("bidder-a"))
	check.Equal(t, testDeposit, f.funds.transfers["bidder-a"])
}

func TestWithdrawWinnings_RequiresSettledPhase(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 2_000_000)
	f.endBidding()

	err := f.auction.WithdrawWinnings(testOperator)
	check.True(t, errors.Is(err, core.ErrInvalidPhase))
}

func TestWithdrawWinnings_OperatorOnly(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 2_000_000)
	f.endBidding()
	f.reveal()

	err := f.auction.WithdrawWinnings("bidder-a")
	check.True(t, errors.Is(err, core.ErrUnauthorized))
}

func TestWithdrawWinnings_TransfersWinnerDeposit(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)
	f.bid("bidder-b", 2_000_000)
	f.endBidding()
	f.reveal()

	check.Nil(t, f.auction.WithdrawWinnings(testOperator))
	check.Equal(t, testDeposit, f.funds.transfers[testOperator])

	// Only once.
	err := f.auction.WithdrawWinnings(testOperator)
	check.True(t, errors.Is(err, core.ErrAlreadyRefunded))
	check.Equal(t, testDeposit, f.funds.transfers[testOperator])
}

func TestEmergencyRefundAll_MidBidding(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)
	f.bid("bidder-b", 2_000_000)

	refunded, err := f.auction.EmergencyRefundAll(testOperator)
	check.Nil(t, err)
	check.Equal(t, 2, refunded)
	check.Equal(t, core.PhaseCancelled, f.auction.Phase())
	check.Equal(t, testDeposit, f.funds.transfers["bidder-a"])
	check.Equal(t, testDeposit, f.funds.transfers["bidder-b"])

	// The auction is closed to further bids.
	err = f.auction.SubmitBid("bidder-c", f.seal("bidder-c", 2_000_000), testDeposit)
	check.True(t, errors.Is(err, core.ErrInvalidPhase))
}

func TestEmergencyRefundAll_OperatorOnly(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)

	_, err := f.auction.EmergencyRefundAll("bidder-a")
	check.True(t, errors.Is(err, core.ErrUnauthorized))
	check.Equal(t, core.PhaseBidding, f.auction.Phase())
}

func TestEmergencyRefundAll_ToleratesTransferFailures(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)
	f.bid("bidder-b", 2_000_000)

	// bidder-a's rail is down; the batch continues.
	f.funds.transferFunc = func(to string, amount uint64) error {
		if to == "bidder-a" {
			return fmt.Errorf("payment rail unavailable")
		}
		return nil
	}

	refunded, err := f.auction.EmergencyRefundAll(testOperator)
	check.Nil(t, err)
	check.Equal(t, 1, refunded)
	check.Equal(t, core.PhaseCancelled, f.auction.Phase())
	check.Equal(t, uint64(0), f.funds.transfers["bidder-a"])
	check.Equal(t, testDeposit, f.funds.transfers["bidder-b"])

	// The failed participant retries individually once the rail recovers.
	f.funds.transferFunc = nil
	check.Nil(t, f.auction.WithdrawDeposit("bidder-a"))
	check.Equal(t, testDeposit, f.funds.transfers["bidder-a"])
}

func TestEmergencyRefundAll_SkipsAlreadyRefunded(t *testing.T) {
	f := newFixture(t)
	f.startBidding()
	f.bid("bidder-a", 1_500_000)
	f.bid("bidder-b", 2_000_000)
	f.endBidding()

	check.Nil(t, f.auction.WithdrawDeposit("bidder-a"))

	refunded, err := f.auction.EmergencyRefundAll(testOperator)
	check.Nil(t, err)
	check.Equal(t, 1, refunded)
	check.Equal(t, testDeposit, f.funds.transfers["bidder-a"])
}
