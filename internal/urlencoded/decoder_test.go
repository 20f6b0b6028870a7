package urlencoded

import (
	"strings"
	"testing"

	"github.com/hornet-web/hornet/http/status"
	"github.com/indigo-web/utils/uf"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("no escaping", func(t *testing.T) {
		decoded, _, err := Decode([]byte("/hello"), []byte{})
		require.NoError(t, err)
		require.Equal(t, "/hello", string(decoded))
	})

	t.Run("corners", func(t *testing.T) {
		decoded, _, err := Decode([]byte("%2fhello%2f"), []byte{})
		require.NoError(t, err)
		require.Equal(t, "/hello/", string(decoded))
	})

	t.Run("multiple consecutive", func(t *testing.T) {
		decoded, _, err := Decode([]byte("%2f%20hello"), []byte{})
		require.NoError(t, err)
		require.Equal(t, "/ hello", string(decoded))
	})

	t.Run("plus as space", func(t *testing.T) {
		decoded, _, err := Decode([]byte("John+Doe%2B"), []byte{})
		require.NoError(t, err)
		require.Equal(t, "John Doe+", string(decoded))
	})

	t.Run("incomplete sequence", func(t *testing.T) {
		_, _, err := Decode([]byte("%2"), []byte{})
		require.ErrorIs(t, err, status.ErrURLDecoding)
	})

	t.Run("invalid code", func(t *testing.T) {
		_, _, err := Decode([]byte("%2j"), []byte{})
		require.ErrorIs(t, err, status.ErrURLDecoding)
	})

	t.Run("4kb slightly escaped", func(t *testing.T) {
		str := []byte("/" + disperse("%5f", "a", 10, 4095))
		decoded, _, err := Decode(str, make([]byte, 0, 4096))
		require.NoError(t, err)
		want := "/" + strings.Repeat("_"+strings.Repeat("a", 10), 4095/len("%5f"+strings.Repeat("a", 10)))
		require.Equal(t, want, string(decoded))
	})

	t.Run("decode into itself", func(t *testing.T) {
		for _, tc := range []struct {
			Encoded []byte
			Want    string
		}{
			{[]byte("%2a"), "*"},
			{[]byte("he%6c%6Co"), "hello"},
			{[]byte("nothing here"), "nothing here"},
		} {
			decoded, _, err := Decode(tc.Encoded, tc.Encoded[:0])
			require.NoError(t, err)
			require.Equal(t, tc.Want, string(decoded))
		}
	})

	t.Run("shared buffer", func(t *testing.T) {
		first, buff, err := Decode([]byte("a%20b"), nil)
		require.NoError(t, err)
		second, _, err := Decode([]byte("c%20d"), buff)
		require.NoError(t, err)
		require.Equal(t, "a b", string(first))
		require.Equal(t, "c d", string(second))
	})
}

func TestDecodeString(t *testing.T) {
	decoded, err := DecodeString("caf%C3%A9+au+lait")
	require.NoError(t, err)
	require.Equal(t, "café au lait", decoded)

	_, err = DecodeString("100%")
	require.ErrorIs(t, err, status.ErrURLDecoding)
}

func BenchmarkDecode(b *testing.B) {
	values := map[string]string{
		"plain":     strings.Repeat("value", 800),
		"spaces":    strings.Repeat("first+second+", 300),
		"escaped":   disperse("%D0%B9", "x", 4, 4096),
		"all-coded": strings.Repeat("%2a", 1365),
	}
	buff := make([]byte, 0, 4096)

	for name, value := range values {
		b.Run(name, func(b *testing.B) {
			src := uf.S2B(value)
			b.ReportAllocs()
			b.SetBytes(int64(len(src)))
			b.ResetTimer()

			for range b.N {
				_, _, _ = Decode(src, buff)
			}
		})
	}
}

// disperse returns a string of length `length` or more without breaking the sequences,
// consisting of a and b in proportion 1:proportion.
func disperse(a, b string, proportion, length int) string {
	return strings.Repeat(
		a+strings.Repeat(b, proportion),
		length/(len(a)+len(b)*proportion),
	)
}
