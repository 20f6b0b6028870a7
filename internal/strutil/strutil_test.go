package strutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type pair struct {
	Key, Value string
}

func collect(params string) (pairs []pair) {
	for key, value := range WalkParams(params) {
		pairs = append(pairs, pair{key, value})
	}

	return pairs
}

func TestWalkParams(t *testing.T) {
	t.Run("content disposition", func(t *testing.T) {
		require.Equal(t, []pair{{"name", "file"}, {"filename", "a b;c.txt"}},
			collect(`name="file"; filename="a b;c.txt"`))
	})

	t.Run("colon and space separators", func(t *testing.T) {
		require.Equal(t, []pair{{"name", "file"}, {"filename", "a.txt"}},
			collect(`name="file": filename="a.txt"`))
		require.Equal(t, []pair{{"name", "file"}, {"filename", "a.txt"}},
			collect(`name="file" filename="a.txt"`))
	})

	t.Run("unquoted and case", func(t *testing.T) {
		require.Equal(t, []pair{{"charset", "utf-8"}, {"boundary", "B"}},
			collect(`Charset=utf-8 ;boundary=B`))
	})

	t.Run("flags are skipped", func(t *testing.T) {
		require.Equal(t, []pair{{"name", "x"}}, collect(`form-data; name="x"`))
	})

	t.Run("empty values", func(t *testing.T) {
		require.Equal(t, []pair{{"name", ""}, {"filename", ""}}, collect(`name=""; filename=`))
	})

	t.Run("unterminated quote", func(t *testing.T) {
		require.Equal(t, []pair{{"name", "abc"}}, collect(`name="abc`))
	})

	t.Run("Param", func(t *testing.T) {
		value, found := Param(`boundary="----x"`, "boundary")
		require.True(t, found)
		require.Equal(t, "----x", value)

		_, found = Param(`charset=utf8`, "boundary")
		require.False(t, found)
	})
}

func TestHelpers(t *testing.T) {
	value, params := CutHeader(" multipart/form-data ;  boundary=B")
	require.Equal(t, "multipart/form-data", value)
	require.Equal(t, "boundary=B", params)

	value, params = CutHeader("text/plain")
	require.Equal(t, "text/plain", value)
	require.Empty(t, params)

	require.Equal(t, "abc", Unquote(`"abc"`))
	require.Equal(t, "", Unquote(`"`))
	require.Equal(t, "abc", Unquote(`"abc`))
	require.Equal(t, "abc", Unquote("abc"))
	require.Equal(t, "a ", LStripWS(" \ta "))
	require.Equal(t, " a", RStripWS(" a\t "))
}
