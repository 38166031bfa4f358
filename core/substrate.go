package core

import "time"

// Handle is an opaque reference to an encrypted value held by the
// confidential-computation substrate. The engine can route handles through
// the substrate's homomorphic operations but can never observe plaintext.
// Handle deliberately has no arithmetic of its own; all computation goes
// through the Substrate collaborator.
type Handle string

// BoolHandle is an opaque reference to an encrypted boolean, produced by the
// substrate's homomorphic comparisons and consumed by branch-blind selection.
type BoolHandle string

// Substrate is the collaborator contract for the confidential-computation
// substrate. All operations are homomorphic and produce fresh handles; a
// fresh handle carries no access grants, so every mutation path in the engine
// must re-authorize the handles it stores (see Auction.storeBid).
type Substrate interface {
	// EncryptTrivial encrypts a public plaintext into a handle. Used for
	// public constants (the minimum bid) that must participate in
	// homomorphic comparisons.
	EncryptTrivial(value uint64) (Handle, error)

	// Add returns a handle whose plaintext is the sum of the operands.
	Add(a, b Handle) (Handle, error)

	// Sub returns a handle whose plaintext is a minus b.
	Sub(a, b Handle) (Handle, error)

	// CompareGt returns an encrypted boolean for a > b.
	CompareGt(a, b Handle) (BoolHandle, error)

	// CompareGte returns an encrypted boolean for a >= b.
	CompareGte(a, b Handle) (BoolHandle, error)

	// CompareEq returns an encrypted boolean for a == b.
	CompareEq(a, b Handle) (BoolHandle, error)

	// Select returns ifTrue when cond holds and ifFalse otherwise. Both
	// operands are always evaluated; the selection does not reveal the
	// condition through control flow.
	Select(cond BoolHandle, ifTrue, ifFalse Handle) (Handle, error)

	// GrantAccess authorizes a principal to eventually decrypt the handle.
	// Grants are persistent until revoked.
	GrantAccess(h Handle, principal string) error

	// GrantSelfAccess authorizes the engine itself to keep operating on the
	// handle. Losing self-access to a stored handle is a fatal,
	// unrecoverable fault, so the engine re-grants after every mutation.
	GrantSelfAccess(h Handle) error

	// RequestDecrypt asks the substrate to decrypt the handle out-of-band.
	// It never blocks for the plaintext: the result arrives through a later,
	// separate interaction. Returns the substrate's pending-request id.
	RequestDecrypt(h Handle) (string, error)

	// ResolveBool resolves an encrypted boolean to plaintext. This is the
	// one sanctioned exit of plaintext from the confidential domain before
	// the reveal phase, restricted to single comparison bits: winner
	// identity (a public output) and minimum-bid admission (whose outcome
	// is externally observable anyway).
	ResolveBool(b BoolHandle) (bool, error)
}

// FundsLedger is the custody collaborator. Deposits arrive attached to the
// submit/increase calls; Transfer pushes funds back out and can fail, so
// callers must check it rather than assume success.
type FundsLedger interface {
	Transfer(to string, amount uint64) error
}

// RevealVerifier checks a decryption certificate produced by the substrate
// against the plaintext the operator submits during reveal. It ties the
// submitted plaintext back to the original encrypted handle, closing the gap
// left by trusting operator input alone.
type RevealVerifier interface {
	VerifyDecryption(certificate []byte, plaintext uint64, correlationID string, h Handle) error
}

// Clock supplies the current time for window checks. Injected so phase-window
// behavior is deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
