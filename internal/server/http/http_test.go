package http

import (
	"io"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/hornet-web/hornet/config"
	"github.com/hornet-web/hornet/http"
	"github.com/hornet-web/hornet/http/headers"
	"github.com/hornet-web/hornet/internal/requestgen"
	"github.com/hornet-web/hornet/transport/dummy"
	"github.com/stretchr/testify/require"
)

func newServer(handler http.Handler, modify ...func(*config.Config)) *Server {
	cfg := config.Default()
	for _, fn := range modify {
		fn(cfg)
	}

	return NewServer(handler, cfg, log.New(io.Discard, "", 0))
}

func TestServer(t *testing.T) {
	const N = 10

	t.Run("simple get", func(t *testing.T) {
		var path, accept string
		server := newServer(func(request *http.Request) *http.Response {
			path, accept = request.Path, request.Headers.Value("Accept-Encoding")
			return http.String(request, "ok")
		})
		client := dummy.NewMockClient([]byte("GET /index HTTP/1.1\r\nAccept-Encoding: identity\r\n\r\n")).LoopReads()

		for i := 0; i < N; i++ {
			require.True(t, server.HandleRequest(client))
		}

		require.Equal(t, "/index", path)
		require.Equal(t, "identity", accept)
		require.Equal(t, N, strings.Count(client.Written(), "HTTP/1.1 200 OK\r\n"))
		require.NotContains(t, client.Written(), "Connection: close")
	})

	t.Run("many headers", func(t *testing.T) {
		want := requestgen.Headers(50)
		var got *headers.Headers
		server := newServer(func(request *http.Request) *http.Response {
			got = request.Headers
			return http.Respond(request)
		})
		raw := requestgen.Generate("/", want)
		client := dummy.NewMockClient(dummy.Disperse(raw, 64)...).LoopReads()

		for i := 0; i < N; i++ {
			require.True(t, server.HandleRequest(client))
			require.Equal(t, want, got)
		}
	})

	t.Run("query", func(t *testing.T) {
		var q string
		server := newServer(func(request *http.Request) *http.Response {
			q = request.Query.Value("q")
			return http.Respond(request)
		})
		client := dummy.NewMockClient([]byte("GET /search?q=hello%20world&x HTTP/1.1\r\n\r\n"))
		require.True(t, server.HandleRequest(client))
		require.Equal(t, "hello world", q)
	})

	t.Run("nil response", func(t *testing.T) {
		server := newServer(func(*http.Request) *http.Response {
			return nil
		})
		client := dummy.NewMockClient([]byte("GET / HTTP/1.1\r\n\r\n"))
		require.True(t, server.HandleRequest(client))
		require.True(t, strings.HasPrefix(client.Written(), "HTTP/1.1 200 OK\r\n"))
	})

	t.Run("run closes the client", func(t *testing.T) {
		server := newServer(http.Respond)
		client := dummy.NewMockClient([]byte("GET / HTTP/1.1\r\n\r\n"), []byte("GET / HTTP/1.1\r\n\r\n"))
		server.Run(client)
		require.True(t, client.Closed())
		require.Equal(t, 2, strings.Count(client.Written(), "HTTP/1.1 200 OK\r\n"))
	})
}

func TestKeepAlive(t *testing.T) {
	tcs := []struct {
		Name      string
		Request   string
		KeepAlive bool
	}{
		{"HTTP/1.1 default", "GET / HTTP/1.1\r\n\r\n", true},
		{"HTTP/1.0 default", "GET / HTTP/1.0\r\n\r\n", false},
		{"HTTP/1.0 keep-alive", "GET / HTTP/1.0\r\nConnection: Keep-Alive\r\n\r\n", true},
		{"HTTP/1.1 close", "GET / HTTP/1.1\r\nConnection: close\r\n\r\n", false},
		{"HTTP/1.1 unknown token", "GET / HTTP/1.1\r\nConnection: upgrade\r\n\r\n", false},
		{"GET with trailing data", "GET / HTTP/1.1\r\n\r\nGARBAGE", false},
		{"POST with unread body", "POST / HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello", false},
		{"POST with empty body", "POST / HTTP/1.1\r\nContent-Length: 0\r\n\r\n", true},
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			client := dummy.NewMockClient([]byte(tc.Request))
			require.Equal(t, tc.KeepAlive, newServer(http.Respond).HandleRequest(client))
			require.Equal(t, !tc.KeepAlive, strings.Contains(client.Written(), "Connection: close\r\n"))
		})
	}

	t.Run("transfer-encoding with content-length", func(t *testing.T) {
		var paths []string
		server := newServer(func(request *http.Request) *http.Response {
			paths = append(paths, request.Path)
			_, _, err := request.ParseForm()
			require.NoError(t, err)

			return http.Respond(request)
		})

		raw := "POST / HTTP/1.1\r\n" +
			"Content-Type: application/x-www-form-urlencoded\r\n" +
			"Transfer-Encoding: chunked\r\n" +
			"Content-Length: 3\r\n\r\n" +
			"a=b\r\n" +
			"GET /smuggled HTTP/1.1\r\n\r\n"
		client := dummy.NewMockClient([]byte(raw))

		require.False(t, server.HandleRequest(client))
		require.Equal(t, []string{"/"}, paths)
		require.Contains(t, client.Written(), "Connection: close\r\n")
	})

	t.Run("closed by handler", func(t *testing.T) {
		server := newServer(func(request *http.Request) *http.Response {
			return request.Respond().Close()
		})
		client := dummy.NewMockClient([]byte("GET / HTTP/1.1\r\n\r\n"))
		require.False(t, server.HandleRequest(client))
		require.Contains(t, client.Written(), "Connection: close\r\n")
	})

	t.Run("hijacked", func(t *testing.T) {
		server := newServer(func(request *http.Request) *http.Response {
			_ = request.Hijack().Write([]byte("raw"))
			return request.Respond()
		})
		client := dummy.NewMockClient([]byte("GET / HTTP/1.1\r\n\r\n"))
		require.False(t, server.HandleRequest(client))
		require.Equal(t, "raw", client.Written())
	})
}

func TestForms(t *testing.T) {
	t.Run("pipelined urlencoded", func(t *testing.T) {
		var names []string
		server := newServer(func(request *http.Request) *http.Response {
			fields, _, err := request.ParseForm()
			if err != nil {
				return request.Respond().Error(err)
			}

			names = append(names, fields.Value("name"))
			return http.Respond(request)
		})

		raw := "POST / HTTP/1.1\r\n" +
			"Content-Type: application/x-www-form-urlencoded\r\n" +
			"Content-Length: 10\r\n\r\n" +
			"name=first" +
			"GET / HTTP/1.1\r\n\r\n"

		for chunkSize := 1; chunkSize <= len(raw); chunkSize++ {
			names = names[:0]
			client := dummy.NewChunkedClient([]byte(raw), chunkSize)
			require.True(t, server.HandleRequest(client))
			require.True(t, server.HandleRequest(client))
			require.Equal(t, []string{"first", ""}, names)
			require.Equal(t, 2, strings.Count(client.Written(), "HTTP/1.1 200 OK\r\n"))
		}
	})

	t.Run("multipart files are removed", func(t *testing.T) {
		tempDir := t.TempDir()
		var path string
		server := newServer(func(request *http.Request) *http.Response {
			_, files, err := request.ParseForm()
			require.NoError(t, err)
			file, found := files.First("doc")
			require.True(t, found)
			path = file.Path

			_, err = os.Stat(path)
			require.NoError(t, err)

			return http.Respond(request)
		}, func(cfg *config.Config) {
			cfg.Body.Form.TempDir = tempDir
		})

		body := "--B\r\n" +
			"Content-Disposition: form-data; name=\"doc\"; filename=\"a.txt\"\r\n\r\n" +
			"contents\r\n" +
			"--B--\r\n"
		raw := "POST / HTTP/1.1\r\nContent-Type: multipart/form-data; boundary=B\r\n\r\n" + body

		client := dummy.NewChunkedClient([]byte(raw), 16)
		require.True(t, server.HandleRequest(client))
		_, err := os.Stat(path)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("form error", func(t *testing.T) {
		server := newServer(func(request *http.Request) *http.Response {
			_, _, err := request.ParseForm()
			return request.Respond().Error(err)
		}, func(cfg *config.Config) {
			cfg.Body.MaxSize = 1
		})

		raw := "POST / HTTP/1.1\r\n" +
			"Content-Type: application/x-www-form-urlencoded\r\n" +
			"Content-Length: 100000\r\n\r\n"
		client := dummy.NewMockClient([]byte(raw))
		require.False(t, server.HandleRequest(client))
		require.True(t, strings.HasPrefix(client.Written(), "HTTP/1.1 413 "))
	})
}

func TestErrors(t *testing.T) {
	t.Run("header too large", func(t *testing.T) {
		server := newServer(http.Respond, func(cfg *config.Config) {
			cfg.Headers.MaxSpace = 64
		})
		raw := "GET / HTTP/1.1\r\nX-Long: " + strings.Repeat("a", 100) + "\r\n\r\n"
		client := dummy.NewChunkedClient([]byte(raw), 16)

		require.False(t, server.HandleRequest(client))
		written := client.Written()
		require.True(t, strings.HasPrefix(written, "HTTP/1.1 431 Request Header Fields Too Large\r\n"))
		require.True(t, strings.HasSuffix(written, "\r\n\r\nRequest header too large."))
		require.Contains(t, written, "Connection: close\r\n")
	})

	t.Run("unsupported protocol", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("GET / HTTP/2.0\r\n\r\n"))
		require.False(t, newServer(http.Respond).HandleRequest(client))
		require.True(t, strings.HasPrefix(client.Written(), "HTTP/1.1 505 "))
	})

	t.Run("unusable request", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("GET /\r\n\r\n"))
		require.False(t, newServer(http.Respond).HandleRequest(client))
		require.Empty(t, client.Written())
	})

	t.Run("connection lost", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("GET / HTTP/1.1\r\n"))
		require.False(t, newServer(http.Respond).HandleRequest(client))
		require.Empty(t, client.Written())
	})
}

func BenchmarkServer(b *testing.B) {
	server := newServer(http.Respond)

	b.Run("simple get", func(b *testing.B) {
		raw := []byte("GET / HTTP/1.1\r\nAccept-Encoding: identity\r\nHost: localhost\r\n\r\n")
		client := dummy.NewMockClient(raw).LoopReads().Journaling(false)
		b.SetBytes(int64(len(raw)))
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			server.HandleRequest(client)
		}
	})

	b.Run("urlencoded post", func(b *testing.B) {
		raw := []byte("POST / HTTP/1.1\r\n" +
			"Content-Type: application/x-www-form-urlencoded\r\n" +
			"Content-Length: 22\r\n\r\n" +
			"name=John&location=ktm")
		server := newServer(func(request *http.Request) *http.Response {
			_, _, _ = request.ParseForm()
			return http.Respond(request)
		})
		client := dummy.NewMockClient(raw).LoopReads().Journaling(false)
		b.SetBytes(int64(len(raw)))
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			server.HandleRequest(client)
		}
	})
}
