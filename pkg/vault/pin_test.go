package vault

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestGeneratePINDigitsInRange(t *testing.T) {
	counts := make(map[byte]int)
	for b0 := 0; b0 < 256; b0++ {
		for _, b1 := range []byte{0x00, 0x7f, 0xfe, byte(b0)} {
			pin, err := GeneratePIN(bytes.NewReader([]byte{byte(b0), b1}))
			require.NoError(t, err)
			require.Truef(t, pin.IsValid(), "raw %02x %02x gives %v", b0, b1, pin)
			require.Equal(t, byte(b0)%4+1, pin[0])
			require.Equal(t, b1%4+1, pin[1])
		}
		pin, err := GeneratePIN(bytes.NewReader([]byte{byte(b0), 0}))
		require.NoError(t, err)
		counts[pin[0]]++
	}
	require.Equal(t, map[byte]int{1: 64, 2: 64, 3: 64, 4: 64}, counts)
}

func TestGeneratePINConsumesTwoBytes(t *testing.T) {
	r := bytes.NewReader([]byte{0, 1, 2, 3})
	pin, err := GeneratePIN(r)
	require.NoError(t, err)
	require.Equal(t, PIN{1, 2}, pin)
	pin, err = GeneratePIN(r)
	require.NoError(t, err)
	require.Equal(t, PIN{3, 4}, pin)
	require.Equal(t, 0, r.Len())
}

func TestGeneratePINSourceFailure(t *testing.T) {
	testCases := []struct {
		name   string
		rng    io.Reader
		expect error
	}{
		{"read error", &failingReader{err: errors.New("trng fault")}, nil},
		{"empty", bytes.NewReader(nil), io.EOF},
		{"short read", bytes.NewReader([]byte{1}), io.ErrUnexpectedEOF},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pin, err := GeneratePIN(tc.rng)
			require.Error(t, err)
			require.Equal(t, PIN{}, pin)
			var srcErr *RandomSourceError
			require.True(t, errors.As(err, &srcErr))
			if tc.expect != nil {
				require.True(t, errors.Is(err, tc.expect))
			}
		})
	}
}

func TestPINString(t *testing.T) {
	require.Equal(t, "14", PIN{1, 4}.String())
	require.Equal(t, "?2", PIN{0xff, 2}.String())
	require.False(t, PIN{0, 2}.IsValid())
	require.False(t, PIN{5, 2}.IsValid())
}
