package transport

import (
	"crypto/tls"
	"log"
	"net"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/crypto/acme/autocert"
)

type TLS struct {
	cfg *tls.Config
	acceptor
}

func NewTLS(certs []tls.Certificate) *TLS {
	return &TLS{
		cfg:      &tls.Config{Certificates: certs},
		acceptor: newAcceptor(nil),
	}
}

// NewTLSFromFiles loads a single certificate from the PEM-encoded pair of files.
func NewTLSFromFiles(cert, key string) (*TLS, error) {
	certificate, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		return nil, err
	}

	return NewTLS([]tls.Certificate{certificate}), nil
}

// NewAutoTLS obtains certificates via ACME (Let's Encrypt by default). If domains are
// passed, certificates are issued only for them. Certificates are cached in the user's
// cache directory when possible.
func NewAutoTLS(logger *log.Logger, domains ...string) *TLS {
	m := &autocert.Manager{
		Prompt: autocert.AcceptTOS,
	}

	if len(domains) > 0 {
		m.HostPolicy = autocert.HostWhitelist(domains...)
	}

	cache := cacheDir()
	if err := os.MkdirAll(cache, 0o700); err != nil {
		logger.Printf("WARNING: auto TLS: not using a cache: %s", err)
	} else {
		m.Cache = autocert.DirCache(cache)
	}

	return &TLS{
		cfg:      m.TLSConfig(),
		acceptor: newAcceptor(nil),
	}
}

func (t *TLS) Bind(addr string) error {
	tcp, err := bindTCP(addr)
	if err != nil {
		return err
	}

	t.acceptor = newAcceptor(tlsAdapter{tcp, tls.NewListener(tcp, t.cfg)})
	return nil
}

type tlsAdapter struct {
	*net.TCPListener
	tls net.Listener
}

func (t tlsAdapter) Accept() (net.Conn, error) {
	return t.tls.Accept()
}

func cacheDir() string {
	const base = "hornet-autocert"

	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, base)
	}

	if runtime.GOOS == "windows" {
		return filepath.Join(os.TempDir(), base)
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", base)
	}

	return filepath.Join(os.TempDir(), base)
}
