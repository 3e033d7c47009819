package go_akrypt

import (
	"encoding/binary"
	"math/bits"
)

// mpzn512 is a 512-bit unsigned integer stored as little-endian 64-bit words.
type mpzn512 [HASHRNG_COUNTER_WORDS]uint64

var mpzn512One = mpzn512{1}

// mpznAdd sets r = a + b mod 2^512. r may alias a or b.
func mpznAdd(r, a, b *mpzn512) {
	var carry uint64
	for i := range r {
		r[i], carry = bits.Add64(a[i], b[i], carry)
	}
}

// putBytes writes z into dst as 64 little-endian bytes, the form that gets hashed.
func (z *mpzn512) putBytes(dst []byte) {
	for i, w := range z {
		binary.LittleEndian.PutUint64(dst[i*8:], w)
	}
}

// setBytes loads z from 64 little-endian bytes.
func (z *mpzn512) setBytes(src []byte) {
	for i := range z {
		z[i] = binary.LittleEndian.Uint64(src[i*8:])
	}
}

// isZero reports whether every word is zero.
func (z *mpzn512) isZero() bool {
	for _, w := range z {
		if w != 0 {
			return false
		}
	}
	return true
}
