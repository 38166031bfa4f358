// Package substrate provides an in-process simulation of the confidential
// computation substrate the auction engine runs against. It stores plaintext
// behind opaque handles, evaluates homomorphic arithmetic, comparison and
// branch-blind selection on them, tracks access grants, and fulfills
// decryption requests asynchronously with signed decryption certificates.
//
// A production deployment replaces this package with a client for a real FHE
// coprocessor; the engine only ever sees the core.Substrate contract.
package substrate

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cloudx-io/sealedbid/core"
)

// selfPrincipal is the grant entry representing the engine itself.
const selfPrincipal = "__engine__"

// Simulated implements core.Substrate with an in-memory plaintext store.
type Simulated struct {
	mu sync.Mutex

	values map[core.Handle]uint64
	bools  map[core.BoolHandle]bool

	// grants maps a handle to the set of principals allowed to decrypt it.
	grants map[core.Handle]map[string]bool

	// pending maps a pending-decryption id to the handle awaiting
	// out-of-band fulfillment.
	pending map[string]core.Handle

	signingKey *ecdsa.PrivateKey
	clock      core.Clock
}

// NewSimulated creates a substrate with a fresh ECDSA P-256 certificate
// signing key.
func NewSimulated() (*Simulated, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return &Simulated{
		values:     make(map[core.Handle]uint64),
		bools:      make(map[core.BoolHandle]bool),
		grants:     make(map[core.Handle]map[string]bool),
		pending:    make(map[string]core.Handle),
		signingKey: key,
		clock:      systemClock{},
	}, nil
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// PublicKey returns the certificate verification key. Validators use it to
// check decryption certificates issued by Fulfill.
func (s *Simulated) PublicKey() *ecdsa.PublicKey {
	return &s.signingKey.PublicKey
}

// Encrypt seals a plaintext into a fresh handle on behalf of an external
// party, granting that party access to its own value. The engine never calls
// this; bidders do, before submitting.
func (s *Simulated) Encrypt(value uint64, principal string) (core.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.newHandle(value)
	s.grants[h][principal] = true
	return h, nil
}

// EncryptTrivial seals a public constant for use in homomorphic comparisons.
func (s *Simulated) EncryptTrivial(value uint64) (core.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newHandle(value), nil
}

// Add implements homomorphic addition.
func (s *Simulated) Add(a, b core.Handle) (core.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	av, bv, err := s.operands(a, b)
	if err != nil {
		return "", err
	}
	return s.newHandle(av + bv), nil
}

// Sub implements homomorphic subtraction (wrapping, as substrate integers
// do).
func (s *Simulated) Sub(a, b core.Handle) (core.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	av, bv, err := s.operands(a, b)
	if err != nil {
		return "", err
	}
	return s.newHandle(av - bv), nil
}

// CompareGt implements encrypted a > b.
func (s *Simulated) CompareGt(a, b core.Handle) (core.BoolHandle, error) {
	return s.compare(a, b, func(av, bv uint64) bool { return av > bv })
}

// CompareGte implements encrypted a >= b.
func (s *Simulated) CompareGte(a, b core.Handle) (core.BoolHandle, error) {
	return s.compare(a, b, func(av, bv uint64) bool { return av >= bv })
}

// CompareEq implements encrypted a == b.
func (s *Simulated) CompareEq(a, b core.Handle) (core.BoolHandle, error) {
	return s.compare(a, b, func(av, bv uint64) bool { return av == bv })
}

func (s *Simulated) compare(a, b core.Handle, op func(uint64, uint64) bool) (core.BoolHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	av, bv, err := s.operands(a, b)
	if err != nil {
		return "", err
	}
	bh := core.BoolHandle(uuid.NewString())
	s.bools[bh] = op(av, bv)
	return bh, nil
}

// Select returns ifTrue or ifFalse by the encrypted condition. Both operands
// are read unconditionally; the result is a fresh handle carrying no grants.
func (s *Simulated) Select(cond core.BoolHandle, ifTrue, ifFalse core.Handle) (core.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.bools[cond]
	if !ok {
		return "", fmt.Errorf("unknown bool handle %s", cond)
	}
	tv, fv, err := s.operands(ifTrue, ifFalse)
	if err != nil {
		return "", err
	}

	// Constant-shape selection: both branch values are materialized above
	// regardless of the condition.
	result := fv
	if c {
		result = tv
	}
	return s.newHandle(result), nil
}

// GrantAccess records a persistent decryption grant for a principal.
func (s *Simulated) GrantAccess(h core.Handle, principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[h]; !ok {
		return fmt.Errorf("unknown handle %s", h)
	}
	s.grants[h][principal] = true
	return nil
}

// GrantSelfAccess records the engine's own durable access to a handle.
func (s *Simulated) GrantSelfAccess(h core.Handle) error {
	return s.GrantAccess(h, selfPrincipal)
}

// ResolveBool resolves an encrypted boolean to plaintext. Restricted by the
// engine to single comparison bits whose outcome is public.
func (s *Simulated) ResolveBool(b core.BoolHandle) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.bools[b]
	if !ok {
		return false, fmt.Errorf("unknown bool handle %s", b)
	}
	return v, nil
}

// RequestDecrypt queues an asynchronous decryption of the handle and returns
// the pending-request id. The plaintext is produced later by Fulfill; this
// call never returns it.
func (s *Simulated) RequestDecrypt(h core.Handle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[h]; !ok {
		return "", fmt.Errorf("unknown handle %s", h)
	}
	pendingID := uuid.NewString()
	s.pending[pendingID] = h
	return pendingID, nil
}

// Fulfill resolves a queued decryption, producing the plaintext and a
// COSE_Sign1 decryption certificate binding it to the handle and the
// caller-supplied correlation id. Each pending id is honored at most once.
func (s *Simulated) Fulfill(pendingID, correlationID string) (uint64, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.pending[pendingID]
	if !ok {
		return 0, nil, fmt.Errorf("unknown or already fulfilled pending id %s", pendingID)
	}
	delete(s.pending, pendingID)

	value := s.values[h]
	cert, err := s.signCertificate(h, correlationID, value)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to sign decryption certificate: %w", err)
	}
	return value, cert, nil
}

// Decrypt synchronously decrypts a handle for a granted external principal.
// The engine never uses this path; it exists for parties exercising the
// access the engine granted them (a bidder reading back their own entry).
func (s *Simulated) Decrypt(h core.Handle, principal string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[h]
	if !ok {
		return 0, fmt.Errorf("unknown handle %s", h)
	}
	if !s.grants[h][principal] {
		return 0, fmt.Errorf("principal %q has no access to handle %s", principal, h)
	}
	return v, nil
}

// SelfAccessible probes whether the engine still holds access to a handle.
func (s *Simulated) SelfAccessible(h core.Handle) bool {
	return s.HasAccess(h, selfPrincipal)
}

// HasAccess probes an access grant.
func (s *Simulated) HasAccess(h core.Handle, principal string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grants[h][principal]
}

// newHandle stores a value under a fresh opaque handle with an empty grant
// set. Callers hold s.mu.
func (s *Simulated) newHandle(value uint64) core.Handle {
	h := core.Handle(uuid.NewString())
	s.values[h] = value
	s.grants[h] = make(map[string]bool)
	return h
}

// operands reads two handles. Callers hold s.mu.
func (s *Simulated) operands(a, b core.Handle) (uint64, uint64, error) {
	av, ok := s.values[a]
	if !ok {
		return 0, 0, fmt.Errorf("unknown handle %s", a)
	}
	bv, ok := s.values[b]
	if !ok {
		return 0, 0, fmt.Errorf("unknown handle %s", b)
	}
	return av, bv, nil
}
