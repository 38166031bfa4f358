// Package auctionapi defines the wire types shared by the auction engine
// server, the simulated substrate and external validators.
package auctionapi

// DecryptionCertificateClaims is the CBOR payload of a COSE_Sign1 decryption
// certificate issued by the substrate when it fulfills an asynchronous
// decryption. It binds the produced plaintext to the handle that was
// decrypted and to the engine's correlation id, so the engine (and any third
// party) can check that a revealed amount really came from the winning
// handle.
type DecryptionCertificateClaims struct {
	Handle        string `cbor:"handle"`
	CorrelationID string `cbor:"correlation_id"`
	Amount        uint64 `cbor:"amount"`
	IssuedAt      int64  `cbor:"issued_at"` // unix seconds
}

// Request is the base envelope for engine requests; Type selects the
// operation and the full body is decoded by the matching handler.
type Request struct {
	Type string `json:"type"`

	// Caller is the principal invoking the operation. Authentication of the
	// principal is the transport front-end's job; the engine enforces
	// authorization only.
	Caller string `json:"caller,omitempty"`
}

// SubmitBidRequest places or increases a sealed bid.
type SubmitBidRequest struct {
	Request
	Bidder          string `json:"bidder"`
	EncryptedAmount string `json:"encrypted_amount"` // substrate handle
	Deposit         string `json:"deposit"`          // decimal money string
}

// StartRequest opens the bidding window.
type StartRequest struct {
	Request
	DurationSeconds int64 `json:"duration_seconds"`
}

// RevealRequest submits the decrypted winning amount with its correlation id
// and the substrate's decryption certificate.
type RevealRequest struct {
	Request
	Amount                string `json:"amount"` // decimal money string
	CorrelationID         string `json:"correlation_id"`
	CertificateCBORBase64 string `json:"certificate_cbor_base64,omitempty"`
}

// GetBidRequest asks for the sealed handle of a bidder's entry.
type GetBidRequest struct {
	Request
	Bidder string `json:"bidder"`
}

// WithdrawRequest withdraws the caller's deposit (losers) or the winner's
// deposit (operator, via type "withdraw_winnings").
type WithdrawRequest struct {
	Request
}

// Response is the uniform engine reply.
type Response struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	Phase                 string `json:"phase,omitempty"`
	Winner                string `json:"winner,omitempty"`
	Handle                string `json:"handle,omitempty"`
	CorrelationID         string `json:"correlation_id,omitempty"`
	Amount                string `json:"amount,omitempty"` // decimal money string
	CertificateCBORBase64 string `json:"certificate_cbor_base64,omitempty"`
	Refunded              int    `json:"refunded,omitempty"`
}
