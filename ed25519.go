package go_akrypt

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	"github.com/go-i2p/common/base32"
	cryptoed25519 "github.com/go-i2p/crypto/ed25519"
)

// SigningKey is an Ed25519 key pair held under ENGINE_KEY. Messages are pre-hashed with
// SHA-512 and the digest is signed through the go-i2p/crypto Signer interface.
type SigningKey struct {
	privateKey cryptoed25519.Ed25519PrivateKey
	publicKey  cryptoed25519.Ed25519PublicKey
}

// NewSigningKey derives a key pair from a 32-byte seed drawn from seeds. A nil generator
// means OS entropy.
func NewSigningKey(seeds Generator) (*SigningKey, error) {
	seed := make([]byte, ed25519.SeedSize)
	defer secureZero(seed)

	var err error
	if seeds == nil {
		err = osEntropy(seed)
	} else {
		err = GeneratorRandom(seeds, seed)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate Ed25519 seed: %w", err)
	}
	return NewSigningKeyFromSeed(seed)
}

// NewSigningKeyFromSeed derives a key pair from a 32-byte seed.
func NewSigningKeyFromSeed(seed []byte) (*SigningKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: Ed25519 seed of %d bytes", ErrWrongLength, len(seed))
	}
	expanded := ed25519.NewKeyFromSeed(seed)
	defer secureZero(expanded)

	// The go-i2p constructors keep the slices they are given, so each key gets its own
	// copy before expanded is wiped.
	privKey, err := cryptoed25519.CreateEd25519PrivateKeyFromBytes(append([]byte(nil), expanded...))
	if err != nil {
		return nil, fmt.Errorf("failed to create private key: %w", err)
	}
	pubKey, err := cryptoed25519.CreateEd25519PublicKeyFromBytes(append([]byte(nil), expanded[ed25519.SeedSize:]...))
	if err != nil {
		return nil, fmt.Errorf("failed to create public key: %w", err)
	}
	return &SigningKey{
		privateKey: privKey,
		publicKey:  pubKey,
	}, nil
}

// Sign signs the SHA-512 digest of message.
func (k *SigningKey) Sign(message []byte) ([]byte, error) {
	if k.privateKey == nil {
		return nil, fmt.Errorf("%w: signing key released", ErrUnexpectedState)
	}
	signer, err := k.privateKey.NewSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}
	digest := sha512.Sum512(message)
	signature, err := signer.SignHash(digest[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return signature, nil
}

// Verify reports whether signature is valid for message.
func (k *SigningKey) Verify(message, signature []byte) bool {
	if k.publicKey == nil {
		return false
	}
	verifier, err := k.publicKey.NewVerifier()
	if err != nil {
		return false
	}
	digest := sha512.Sum512(message)
	return verifier.VerifyHash(digest[:], signature) == nil
}

// PublicKey returns the public key as stdlib ed25519.PublicKey.
func (k *SigningKey) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(k.publicKey.Bytes())
}

// Fingerprint returns the base32 SHA-256 of the public key.
func (k *SigningKey) Fingerprint() string {
	sum := sha256.Sum256(k.publicKey.Bytes())
	return base32.EncodeToString(sum[:])
}

// Free wipes the private key.
func (k *SigningKey) Free() error {
	if k.privateKey == nil {
		return fmt.Errorf("%w: signing key released twice", ErrUnexpectedState)
	}
	secureZero(k.privateKey)
	k.privateKey = nil
	return nil
}
