package constraints

import (
	"testing"

	"github.com/hornet-web/hornet/config"
	"github.com/stretchr/testify/require"
)

func newConstraints() *Constraints {
	cfg := config.Default()
	cfg.Headers.MaxSpace = 100
	cfg.Body.MaxSize = 200
	cfg.Body.Form.MaxHeaderSize = 30
	cfg.Body.Form.MaxFileSize = 500
	cfg.Body.Form.MaxValueSize = 50
	cfg.Body.Form.FieldLimits["avatar"] = 1000
	cfg.Body.Form.FieldLimits["bio"] = 10

	return New(cfg)
}

func TestConstraints(t *testing.T) {
	c := newConstraints()

	t.Run("configured ceilings above buffer size", func(t *testing.T) {
		require.Equal(t, 100, c.MaxRequestHeaderSize(8))
		require.Equal(t, 200, c.MaxBodySize(8))
		require.Equal(t, 30, c.MaxHeaderSize(8))
		require.Equal(t, 50, c.MaxValueSize(8))
		require.Equal(t, 50, c.MaxSizeForField("name", 8))
		require.Equal(t, 500, c.MaxSizeForFile("upload", 8))
	})

	t.Run("per-field overrides", func(t *testing.T) {
		require.Equal(t, 10, c.MaxSizeForField("bio", 8))
		require.Equal(t, 1000, c.MaxSizeForFile("avatar", 8))
	})

	// a ceiling below the chunk size is silently widened to the chunk size. This is
	// the intended headroom: a single read is never rejected on its own.
	t.Run("buffer size floor", func(t *testing.T) {
		require.Equal(t, 4096, c.MaxRequestHeaderSize(4096))
		require.Equal(t, 4096, c.MaxBodySize(4096))
		require.Equal(t, 4096, c.MaxHeaderSize(4096))
		require.Equal(t, 4096, c.MaxSizeForField("bio", 4096))
		require.Equal(t, 4096, c.MaxSizeForField("name", 4096))
		require.Equal(t, 4096, c.MaxSizeForFile("upload", 4096))
	})

	t.Run("header number is not floored", func(t *testing.T) {
		require.Equal(t, config.Default().Headers.MaxNumber, c.MaxHeaderNumber())
	})

	t.Run("config mutation after construction", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.Form.FieldLimits["bio"] = 10
		cons := New(cfg)
		cfg.Body.Form.FieldLimits["bio"] = 99999
		require.Equal(t, 10, cons.MaxSizeForField("bio", 1))
	})
}
