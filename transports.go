package hornet

import (
	"crypto/tls"
	"errors"
	"log"
	"net"

	"github.com/hornet-web/hornet/transport"
)

var (
	ErrBadCertificate = errors.New("one or more passed certificates are empty")
	ErrNoCertificates = errors.New("no certificates were passed")
)

// Transport describes how to listen on an address. It's passed to App.Listen.
type Transport struct {
	addr string // must be left intact. Used by App entity only
	// spawn constructs the inner transport. It's deferred till the App is served, so
	// the logger set by then is used.
	spawn func(logger *log.Logger) transport.Transport
	error error
	auto  bool
}

// TCP is plain-text HTTP over TCP.
func TCP() Transport {
	return Transport{
		spawn: func(*log.Logger) transport.Transport {
			return transport.NewTCP()
		},
	}
}

// TLS loads the certificate and the key from files.
func TLS(cert, key string) Transport {
	c, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		// if any error occurred, there's no way to report it at this point.
		// Save it in the transport, the App will catch and return it when
		// will bind listeners.
		return Transport{error: err}
	}

	return HTTPS(c)
}

func HTTPS(certs ...tls.Certificate) Transport {
	switch {
	case len(certs) == 0:
		return Transport{error: ErrNoCertificates}
	case !noEmptyCerts(certs):
		return Transport{error: ErrBadCertificate}
	}

	return Transport{
		spawn: func(*log.Logger) transport.Transport {
			return transport.NewTLS(certs)
		},
	}
}

// AutoTLS obtains certificates automatically via ACME. On localhost, where no certificate
// can be issued, a self-signed one is generated instead.
func AutoTLS(domains ...string) Transport {
	return Transport{
		spawn: func(logger *log.Logger) transport.Transport {
			return transport.NewAutoTLS(logger, domains...)
		},
		auto: true,
	}
}

// Unix listens on a unix domain socket. The address passed to App.Listen is the path to
// the socket file.
func Unix() Transport {
	return Transport{
		spawn: func(*log.Logger) transport.Transport {
			return transport.NewUnix()
		},
	}
}

// Cert loads a certificate for HTTPS. In case of an error an empty certificate is returned,
// which is reported on starting the application.
func Cert(cert, key string) tls.Certificate {
	c, _ := tls.LoadX509KeyPair(cert, key)
	return c
}

func noEmptyCerts(certs []tls.Certificate) bool {
	for _, c := range certs {
		if c.Certificate == nil {
			return false
		}
	}

	return true
}

func isLocalhost(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}

	if host == "localhost" {
		return true
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// selfSigned replaces auto TLS on localhost.
func selfSigned(logger *log.Logger) Transport {
	cert, key, err := transport.SelfSignedCert("")
	if err != nil {
		logger.Printf("WARNING: auto TLS: can't generate self-signed certificate: %s", err)
		return Transport{error: err}
	}

	return TLS(cert, key)
}
