package substrate

import (
	"crypto/rand"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"

	"github.com/cloudx-io/sealedbid/auctionapi"
	"github.com/cloudx-io/sealedbid/core"
)

// signCertificate issues the COSE_Sign1 decryption certificate for a
// fulfilled decryption. The payload is the CBOR-encoded claims binding the
// plaintext to the decrypted handle and the engine's correlation id.
// Callers hold s.mu.
func (s *Simulated) signCertificate(h core.Handle, correlationID string, value uint64) ([]byte, error) {
	claims := auctionapi.DecryptionCertificateClaims{
		Handle:        string(h),
		CorrelationID: correlationID,
		Amount:        value,
		IssuedAt:      s.clock.Now().Unix(),
	}
	payload, err := cbor.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("marshal certificate claims: %w", err)
	}

	signer, err := cose.NewSigner(cose.AlgorithmES256, s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("create COSE signer: %w", err)
	}

	msg := cose.NewSign1Message()
	msg.Headers.Protected[cose.HeaderLabelAlgorithm] = cose.AlgorithmES256
	msg.Payload = payload

	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, fmt.Errorf("sign certificate: %w", err)
	}

	raw, err := msg.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("marshal COSE message: %w", err)
	}
	return raw, nil
}
