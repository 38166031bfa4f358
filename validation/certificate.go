// Package validation verifies decryption certificates outside the engine.
// Losing bidders and auditors use it to check that the amount the operator
// revealed is the one the substrate actually decrypted from the winning
// handle; the engine itself uses the Verifier during reveal.
package validation

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"

	"github.com/cloudx-io/sealedbid/auctionapi"
	"github.com/cloudx-io/sealedbid/core"
)

// CertifiedDecryption is the verified content of a decryption certificate.
type CertifiedDecryption struct {
	Handle        core.Handle
	CorrelationID string
	Amount        uint64
	IssuedAt      time.Time
}

// ParseCertificate verifies the COSE_Sign1 signature on a decryption
// certificate against the substrate's public key and returns the certified
// claims.
func ParseCertificate(certCBOR []byte, publicKey *ecdsa.PublicKey) (*CertifiedDecryption, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(certCBOR); err != nil {
		return nil, fmt.Errorf("parse COSE_Sign1: %w", err)
	}

	verifier, err := cose.NewVerifier(cose.AlgorithmES256, publicKey)
	if err != nil {
		return nil, fmt.Errorf("create verifier: %w", err)
	}
	if err := msg.Verify(nil, verifier); err != nil {
		return nil, fmt.Errorf("COSE signature verification failed: %w", err)
	}

	var claims auctionapi.DecryptionCertificateClaims
	if err := cbor.Unmarshal(msg.Payload, &claims); err != nil {
		return nil, fmt.Errorf("parse certificate claims: %w", err)
	}

	return &CertifiedDecryption{
		Handle:        core.Handle(claims.Handle),
		CorrelationID: claims.CorrelationID,
		Amount:        claims.Amount,
		IssuedAt:      time.Unix(claims.IssuedAt, 0),
	}, nil
}

// Verifier implements core.RevealVerifier over a substrate public key.
type Verifier struct {
	PublicKey *ecdsa.PublicKey
}

// VerifyDecryption checks that the certificate is authentic and that its
// claims match the plaintext, correlation id and handle the engine is about
// to record.
func (v *Verifier) VerifyDecryption(certificate []byte, plaintext uint64, correlationID string, h core.Handle) error {
	if len(certificate) == 0 {
		return fmt.Errorf("missing decryption certificate")
	}
	cert, err := ParseCertificate(certificate, v.PublicKey)
	if err != nil {
		return err
	}
	if cert.Handle != h {
		return fmt.Errorf("certificate handle %s does not match winning handle %s", cert.Handle, h)
	}
	if cert.CorrelationID != correlationID {
		return fmt.Errorf("certificate correlation id does not match request")
	}
	if cert.Amount != plaintext {
		return fmt.Errorf("certificate amount %d does not match submitted amount %d", cert.Amount, plaintext)
	}
	return nil
}
