package go_akrypt

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/go-i2p/common/base32"
	"go.step.sm/crypto/x25519"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// AGREEMENT_KEY_SIZE is the length of X25519 scalars, points and derived session keys.
const AGREEMENT_KEY_SIZE = 32

// AgreementKey is an X25519 key pair held under ENGINE_KEY.
type AgreementKey struct {
	privateKey []byte
	publicKey  [AGREEMENT_KEY_SIZE]byte
}

// NewAgreementKey draws a private scalar from keys. A nil generator means OS entropy.
func NewAgreementKey(keys Generator) (*AgreementKey, error) {
	var privateKey [AGREEMENT_KEY_SIZE]byte
	defer secureZero(privateKey[:])

	var err error
	if keys == nil {
		err = osEntropy(privateKey[:])
	} else {
		err = GeneratorRandom(keys, privateKey[:])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate X25519 private key: %w", err)
	}
	return NewAgreementKeyFromPrivate(privateKey)
}

// NewAgreementKeyFromPrivate builds a key pair from a private scalar; the public key is
// derived from it.
func NewAgreementKeyFromPrivate(privateKey [AGREEMENT_KEY_SIZE]byte) (*AgreementKey, error) {
	k := &AgreementKey{privateKey: make([]byte, AGREEMENT_KEY_SIZE)}
	copy(k.privateKey, privateKey[:])

	pubKey, ok := x25519.PrivateKey(k.privateKey).Public().(x25519.PublicKey)
	if !ok || len(pubKey) != AGREEMENT_KEY_SIZE {
		secureZero(k.privateKey)
		return nil, fmt.Errorf("failed to derive public key from private key")
	}
	copy(k.publicKey[:], pubKey)
	return k, nil
}

// PublicKey returns the X25519 public key.
func (k *AgreementKey) PublicKey() [AGREEMENT_KEY_SIZE]byte {
	return k.publicKey
}

// SharedSecret performs X25519 with the peer's public key. Low-order peer points are
// rejected.
func (k *AgreementKey) SharedSecret(peerPublicKey [AGREEMENT_KEY_SIZE]byte) ([]byte, error) {
	if k.privateKey == nil {
		return nil, fmt.Errorf("%w: agreement key released", ErrUnexpectedState)
	}
	secret, err := curve25519.X25519(k.privateKey, peerPublicKey[:])
	if err != nil {
		return nil, fmt.Errorf("X25519 failed: %w", err)
	}
	return secret, nil
}

// SessionKey derives a 32-byte key from the shared secret with HKDF-SHA256.
func (k *AgreementKey) SessionKey(peerPublicKey [AGREEMENT_KEY_SIZE]byte, salt, info []byte) ([AGREEMENT_KEY_SIZE]byte, error) {
	var key [AGREEMENT_KEY_SIZE]byte
	secret, err := k.SharedSecret(peerPublicKey)
	if err != nil {
		return key, err
	}
	defer secureZero(secret)

	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), key[:]); err != nil {
		return key, fmt.Errorf("HKDF derivation failed: %w", err)
	}
	return key, nil
}

// Fingerprint returns the base32 SHA-256 of the public key.
func (k *AgreementKey) Fingerprint() string {
	sum := sha256.Sum256(k.publicKey[:])
	return base32.EncodeToString(sum[:])
}

// Free wipes the private scalar.
func (k *AgreementKey) Free() error {
	if k.privateKey == nil {
		return fmt.Errorf("%w: agreement key released twice", ErrUnexpectedState)
	}
	secureZero(k.privateKey)
	k.privateKey = nil
	return nil
}
