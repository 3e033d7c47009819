package go_akrypt

import (
	"crypto/hmac"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// MACContext is a keyed message authentication object held under ENGINE_MAC_FUNCTION.
// It is HMAC over a registered hash function, except for blake2b-512 which uses the
// native keyed mode of BLAKE2b.
type MACContext struct {
	fn  *HashFunction
	key []byte
	mac hash.Hash
}

// NewMACContext creates a MAC over fn keyed with key. The key is copied.
func NewMACContext(fn *HashFunction, key []byte) (*MACContext, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: using a nil hash function", ErrNullArgument)
	}
	if key == nil {
		return nil, fmt.Errorf("%w: using a nil MAC key", ErrNullArgument)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: empty MAC key", ErrZeroLength)
	}

	c := &MACContext{fn: fn, key: append([]byte(nil), key...)}
	if fn == blake2b512HashFunction {
		if len(key) > blake2b.Size {
			secureZero(c.key)
			return nil, fmt.Errorf("%w: BLAKE2b key of %d bytes", ErrWrongLength, len(key))
		}
		mac, err := blake2b.New512(c.key)
		if err != nil {
			secureZero(c.key)
			return nil, fmt.Errorf("failed to create keyed BLAKE2b: %w", err)
		}
		c.mac = mac
	} else {
		c.mac = hmac.New(fn.New, c.key)
	}
	return c, nil
}

// Function returns the underlying hash function.
func (c *MACContext) Function() *HashFunction {
	return c.fn
}

// Update feeds p into the MAC.
func (c *MACContext) Update(p []byte) error {
	if c.mac == nil {
		return fmt.Errorf("%w: MAC context released", ErrUnexpectedState)
	}
	c.mac.Write(p)
	return nil
}

// Finalize returns the tag over everything written so far and resets the context.
func (c *MACContext) Finalize() ([]byte, error) {
	if c.mac == nil {
		return nil, fmt.Errorf("%w: MAC context released", ErrUnexpectedState)
	}
	tag := c.mac.Sum(nil)
	c.mac.Reset()
	return tag, nil
}

// Verify reports whether tag authenticates message under this key. Accumulated input is
// discarded.
func (c *MACContext) Verify(message, tag []byte) (bool, error) {
	if c.mac == nil {
		return false, fmt.Errorf("%w: MAC context released", ErrUnexpectedState)
	}
	c.mac.Reset()
	c.mac.Write(message)
	expected := c.mac.Sum(nil)
	c.mac.Reset()
	return hmac.Equal(expected, tag), nil
}

// Free wipes the key.
func (c *MACContext) Free() error {
	if c.mac == nil {
		return fmt.Errorf("%w: MAC context released twice", ErrUnexpectedState)
	}
	c.mac.Reset()
	c.mac = nil
	secureZero(c.key)
	c.key = nil
	return nil
}
