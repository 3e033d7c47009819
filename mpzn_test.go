package go_akrypt

import (
	"bytes"
	"math"
	"testing"
)

func TestMpznAdd(t *testing.T) {
	tests := []struct {
		name string
		a, b mpzn512
		want mpzn512
	}{
		{
			name: "zero plus one",
			a:    mpzn512{},
			b:    mpzn512One,
			want: mpzn512{1},
		},
		{
			name: "carry into second word",
			a:    mpzn512{math.MaxUint64},
			b:    mpzn512One,
			want: mpzn512{0, 1},
		},
		{
			name: "carry chain across words",
			a:    mpzn512{math.MaxUint64, math.MaxUint64, math.MaxUint64, 7},
			b:    mpzn512One,
			want: mpzn512{0, 0, 0, 8},
		},
		{
			name: "wraps at 2^512",
			a: mpzn512{math.MaxUint64, math.MaxUint64, math.MaxUint64, math.MaxUint64,
				math.MaxUint64, math.MaxUint64, math.MaxUint64, math.MaxUint64},
			b:    mpzn512One,
			want: mpzn512{},
		},
		{
			name: "word-wise sum",
			a:    mpzn512{1, 2, 3, 4, 5, 6, 7, 8},
			b:    mpzn512{8, 7, 6, 5, 4, 3, 2, 1},
			want: mpzn512{9, 9, 9, 9, 9, 9, 9, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got mpzn512
			mpznAdd(&got, &tt.a, &tt.b)
			if got != tt.want {
				t.Errorf("mpznAdd() = %v, want %v", got, tt.want)
			}

			// In place, as the generator uses it.
			a := tt.a
			mpznAdd(&a, &a, &tt.b)
			if a != tt.want {
				t.Errorf("in-place mpznAdd() = %v, want %v", a, tt.want)
			}
		})
	}
}

func TestMpzn512_Bytes(t *testing.T) {
	z := mpzn512{0x0807060504030201, 0, 0, 0, 0, 0, 0, 0xff00000000000000}
	buf := make([]byte, 64)
	z.putBytes(buf)

	if !bytes.Equal(buf[:8], []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("low word bytes = %x, want little-endian 0102030405060708", buf[:8])
	}
	if buf[63] != 0xff {
		t.Errorf("top byte = %#x, want 0xff", buf[63])
	}

	var back mpzn512
	back.setBytes(buf)
	if back != z {
		t.Errorf("setBytes(putBytes(z)) = %v, want %v", back, z)
	}
	if back.isZero() || !(&mpzn512{}).isZero() {
		t.Error("isZero() misreports")
	}
}
