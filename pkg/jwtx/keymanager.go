package jwtx

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
)

// KeyManager owns the signing keys of this instance and the KeySet that
// verifies and publishes them.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	signers []Signer
	mu      sync.RWMutex
}

type KeyManagerOptions struct {
	// Issuer is the iss claim written and required on tokens.
	Issuer string

	// NumKeys is how many signing keys to generate. Defaults to 1, capped at 10.
	NumKeys int
}

// NewEphemeralKeyManager generates EdDSA keys that only live in memory, so
// every session is invalidated when the process restarts.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	n := min(max(opts.NumKeys, 1), 10)

	keyset := NewKeySet()
	signers := make([]Signer, 0, n)
	for i := range n {
		signer, err := generateSigner()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add signer %d to keyset: %w", i+1, err)
		}
		signers = append(signers, signer)
	}

	return &KeyManager{
		Verifier: NewVerifierEdDSA(keyset, opts.Issuer),
		KeySet:   keyset,
		signers:  signers,
	}, nil
}

func generateSigner() (Signer, error) {
	kid, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key id: %w", err)
	}

	pemBytes, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	return NewSignerEdDSA("ehr-"+kid, pemBytes)
}

func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

// GetSigner picks one of the signing keys at random.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// Sign signs claims with one of the active keys.
func (km *KeyManager) Sign(claims Claims) (string, error) {
	signer := km.GetSigner()
	if signer == nil {
		return "", fmt.Errorf("jwtx: no signing keys")
	}
	return signer.Sign(claims)
}
