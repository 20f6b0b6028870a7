package dummy

import (
	"testing"

	"github.com/hornet-web/hornet/transport"
	"github.com/stretchr/testify/require"
)

func TestMockClient(t *testing.T) {
	t.Run("no looping", func(t *testing.T) {
		slices := [][]byte{
			[]byte("Hello"), []byte("world!"),
		}
		client := NewMockClient(slices...)
		require.Equal(t, 6, client.BufferSize())

		for _, slice := range slices {
			got, err := client.Read()
			require.NoError(t, err)
			require.Equal(t, string(slice), string(got))
		}

		_, err := client.Read()
		require.ErrorIs(t, err, transport.ErrBrokenPipe)
	})

	t.Run("looped slices", func(t *testing.T) {
		slices := [][]byte{
			[]byte("Hello"), []byte("world"), []byte("!"),
		}
		client := NewMockClient(slices...).LoopReads()
		for i := range len(slices) * 2 {
			data, err := client.Read()
			require.NoError(t, err)
			require.Equal(t, string(slices[i%len(slices)]), string(data))
		}
	})

	t.Run("pushback", func(t *testing.T) {
		client := NewMockClient([]byte("Hello"), []byte("world"))
		data, err := client.Read()
		require.NoError(t, err)
		client.Pushback(data[2:])
		require.Equal(t, 3, client.Pending())

		data, err = client.Read()
		require.NoError(t, err)
		require.Equal(t, "llo", string(data))
		require.Zero(t, client.Pending())

		data, err = client.Read()
		require.NoError(t, err)
		require.Equal(t, "world", string(data))
		require.Equal(t, 2, client.Reads())
	})

	t.Run("journaling", func(t *testing.T) {
		client := NewMockClient()
		require.NoError(t, client.Write([]byte("Hello, ")))
		require.NoError(t, client.Write([]byte("world!")))
		require.Equal(t, "Hello, world!", client.Written())

		require.NoError(t, client.Close())
		require.True(t, client.Closed())
		require.ErrorIs(t, client.Write([]byte("late")), transport.ErrBrokenPipe)
	})
}

func TestDisperse(t *testing.T) {
	data := []byte("Hello, world!")

	for _, n := range []int{1, 2, 5, 13, 100} {
		parts := Disperse(data, n)
		var joined []byte
		for _, part := range parts {
			require.LessOrEqual(t, len(part), n)
			require.NotEmpty(t, part)
			joined = append(joined, part...)
		}

		require.Equal(t, string(data), string(joined))
	}

	client := NewChunkedClient(data, 4)
	require.Equal(t, 4, client.BufferSize())
	chunk, err := client.Read()
	require.NoError(t, err)
	require.Equal(t, "Hell", string(chunk))
}
