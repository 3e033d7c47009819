package go_akrypt

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ChaCha20Poly1305Cipher is the block cipher engine: ChaCha20-Poly1305 AEAD with a
// random nonce prepended to every ciphertext.
type ChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
	key  [chacha20poly1305.KeySize]byte
}

// NewChaCha20Poly1305Cipher creates a cipher whose key is drawn from keys. A nil
// generator means OS entropy.
func NewChaCha20Poly1305Cipher(keys Generator) (*ChaCha20Poly1305Cipher, error) {
	var key [chacha20poly1305.KeySize]byte
	defer secureZero(key[:])

	var err error
	if keys == nil {
		err = osEntropy(key[:])
	} else {
		err = GeneratorRandom(keys, key[:])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate ChaCha20-Poly1305 key: %w", err)
	}
	return NewChaCha20Poly1305CipherWithKey(key)
}

// NewChaCha20Poly1305CipherWithKey creates a cipher with the provided key.
func NewChaCha20Poly1305CipherWithKey(key [chacha20poly1305.KeySize]byte) (*ChaCha20Poly1305Cipher, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 AEAD: %w", err)
	}
	return &ChaCha20Poly1305Cipher{
		aead: aead,
		key:  key,
	}, nil
}

// Encrypt seals plaintext with optional associated data. The result is nonce || ciphertext.
func (c *ChaCha20Poly1305Cipher) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	if c.aead == nil {
		return nil, fmt.Errorf("%w: cipher released", ErrUnexpectedState)
	}

	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if err := osEntropy(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Decrypt opens nonce || ciphertext as produced by Encrypt.
func (c *ChaCha20Poly1305Cipher) Decrypt(ciphertext, additionalData []byte) ([]byte, error) {
	if c.aead == nil {
		return nil, fmt.Errorf("%w: cipher released", ErrUnexpectedState)
	}

	nonceSize := c.aead.NonceSize()
	if len(ciphertext) < nonceSize+c.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext of %d bytes is shorter than nonce and tag", ErrWrongLength, len(ciphertext))
	}
	plaintext, err := c.aead.Open(nil, ciphertext[:nonceSize], ciphertext[nonceSize:], additionalData)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// NonceSize returns the nonce size used by the cipher
func (c *ChaCha20Poly1305Cipher) NonceSize() int {
	return chacha20poly1305.NonceSize
}

// Overhead returns the authentication tag overhead
func (c *ChaCha20Poly1305Cipher) Overhead() int {
	return chacha20poly1305.Overhead
}

// Free wipes the key. The cipher cannot be used afterwards.
func (c *ChaCha20Poly1305Cipher) Free() error {
	if c.aead == nil {
		return fmt.Errorf("%w: cipher released twice", ErrUnexpectedState)
	}
	secureZero(c.key[:])
	c.aead = nil
	return nil
}
