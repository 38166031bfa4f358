package core

import (
	"crypto/sha256"
	"fmt"
	"log"
	"time"
)

// ComputeCorrelationID derives the correlation id binding a decryption
// request to this auction, the winner, the sealed handle and the request
// time.
//
// Formula: SHA256(auction_id + "|" + winner + "|" + handle + "|" + unix_nanos)
func ComputeCorrelationID(auctionID, winner string, h Handle, requestedAt time.Time) string {
	data := fmt.Sprintf("%s|%s|%s|%d", auctionID, winner, h, requestedAt.UnixNano())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// RequestWinningAmountDecryption starts the asynchronous reveal of the
// winning amount. Operator only; requires a determined, unrevealed winner and
// no outstanding request. The plaintext never arrives in the same operation:
// the substrate resolves the decryption out-of-band and the operator submits
// the result through RevealWinningAmount with the returned correlation id.
// Abandoning the flow is an acceptable terminal state; the correlation id is
// simply never honored.
func (a *Auction) RequestWinningAmountDecryption(caller string) (string, error) {
	if err := a.requireOperator(caller); err != nil {
		return "", err
	}
	if a.phase != PhaseRevealing {
		return "", fmt.Errorf("request decryption: %w (phase=%s)", ErrInvalidPhase, a.phase)
	}
	if a.winner == nil {
		return "", ErrNoWinner
	}
	if a.winner.Revealed {
		return "", ErrAlreadyRevealed
	}
	if a.pending != nil {
		return "", ErrRevealPending
	}

	if err := a.substrate.GrantAccess(a.winner.WinningAmount, a.operator); err != nil {
		return "", fmt.Errorf("failed to grant operator decryption access: %w", err)
	}

	pendingID, err := a.substrate.RequestDecrypt(a.winner.WinningAmount)
	if err != nil {
		return "", fmt.Errorf("failed to request decryption: %w", err)
	}

	now := a.clock.Now()
	correlationID := ComputeCorrelationID(a.id, a.winner.Winner, a.winner.WinningAmount, now)
	a.pending = &DecryptionRequest{
		CorrelationID: correlationID,
		Requester:     caller,
		Handle:        a.winner.WinningAmount,
		RequestedAt:   now,
		PendingID:     pendingID,
	}

	log.Printf("INFO: auction %s: decryption requested for winning amount (correlation=%s, pending=%s)",
		a.id, correlationID, pendingID)
	return correlationID, nil
}

// PendingDecryption returns a copy of the outstanding decryption request, so
// the operator can match the substrate's out-of-band fulfillment to the
// correlation id. Fails with ErrUnknownCorrelation when nothing is pending.
func (a *Auction) PendingDecryption() (DecryptionRequest, error) {
	if a.pending == nil {
		return DecryptionRequest{}, ErrUnknownCorrelation
	}
	return *a.pending, nil
}

// RevealWinningAmount records the decrypted winning amount. Operator only;
// the correlation id must match the outstanding request. When a reveal
// verifier is configured, the substrate's decryption certificate must verify
// over the plaintext, the correlation id and the original handle; otherwise
// only the correlation binding is enforced and the plaintext is trusted.
// Advances the phase to Settled and invalidates the request.
func (a *Auction) RevealWinningAmount(caller string, plaintext uint64, correlationID string, certificate []byte) error {
	if err := a.requireOperator(caller); err != nil {
		return err
	}
	if a.phase != PhaseRevealing {
		return fmt.Errorf("reveal: %w (phase=%s)", ErrInvalidPhase, a.phase)
	}
	if a.winner == nil {
		return ErrNoWinner
	}
	if a.winner.Revealed {
		return ErrAlreadyRevealed
	}
	if a.pending == nil || a.pending.CorrelationID != correlationID {
		return ErrUnknownCorrelation
	}

	if a.verifier != nil {
		if err := a.verifier.VerifyDecryption(certificate, plaintext, correlationID, a.pending.Handle); err != nil {
			return fmt.Errorf("%w: %v", ErrBadDecryptionProof, err)
		}
	}

	a.winner.RevealedAmount = plaintext
	a.winner.Revealed = true
	a.pending = nil
	a.advancePhase(PhaseSettled)

	log.Printf("INFO: auction %s: winning amount revealed as %d for winner %s", a.id, plaintext, a.winner.Winner)
	return nil
}
