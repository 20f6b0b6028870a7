package transport

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// SelfSignedCert returns paths to a certificate and its key valid for localhost. They're
// generated into the directory unless already present there. An empty dir stands for the
// cache directory used for auto TLS.
func SelfSignedCert(dir string) (cert, key string, err error) {
	if len(dir) == 0 {
		dir = cacheDir()
	}

	cert, key = filepath.Join(dir, "localhost.crt"), filepath.Join(dir, "localhost.key")
	if fileExists(cert) && fileExists(key) {
		return cert, key, nil
	}

	if err = os.MkdirAll(dir, 0o700); err != nil {
		return "", "", err
	}

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return "", "", err
	}

	notBefore := time.Now()
	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"Localhost"}},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(10 * 365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return "", "", err
	}

	privBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", "", err
	}

	if err = writePEM(cert, "CERTIFICATE", certDER); err != nil {
		return "", "", err
	}

	if err = writePEM(key, "PRIVATE KEY", privBytes); err != nil {
		return "", "", err
	}

	return cert, key, nil
}

func writePEM(filename, blockType string, data []byte) error {
	fd, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	if err = pem.Encode(fd, &pem.Block{Type: blockType, Bytes: data}); err != nil {
		_ = fd.Close()
		return err
	}

	return fd.Close()
}

func fileExists(filename string) bool {
	stat, err := os.Stat(filename)
	return err == nil && !stat.IsDir()
}
