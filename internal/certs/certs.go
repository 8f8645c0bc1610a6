// Package certs keeps a self-signed certificate for serving the API over
// HTTPS on a local machine.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	certFileName = "server.crt"
	keyFileName  = "server.key"

	validity = 365 * 24 * time.Hour
	// Certificates closer than this to expiry are replaced.
	renewBefore = 30 * 24 * time.Hour
)

// DefaultHosts are the names a local certificate is issued for.
var DefaultHosts = []string{"localhost", "127.0.0.1", "::1"}

// Manager creates and reuses a certificate stored in one directory.
type Manager struct {
	now      func() time.Time
	dir      string
	certFile string
	keyFile  string
	hosts    []string
}

// NewManager stores the certificate in dir. Without hosts the certificate
// covers DefaultHosts.
func NewManager(dir string, hosts ...string) *Manager {
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	return &Manager{
		dir:      dir,
		certFile: filepath.Join(dir, certFileName),
		keyFile:  filepath.Join(dir, keyFileName),
		hosts:    hosts,
		now:      time.Now,
	}
}

// Ensure returns the certificate and key file paths, creating a new pair when
// none exists or the stored one no longer fits.
func (m *Manager) Ensure() (certFile, keyFile string, err error) {
	cert, err := tls.LoadX509KeyPair(m.certFile, m.keyFile)
	switch {
	case err == nil:
		reason := m.check(cert)
		if reason == nil {
			return m.certFile, m.keyFile, nil
		}
		slog.Info("Replacing server certificate", "reason", reason, "dir", m.dir)
	case errors.Is(err, fs.ErrNotExist):
	default:
		slog.Warn("Replacing unreadable server certificate", "error", err, "dir", m.dir)
	}

	if err := m.generate(); err != nil {
		return "", "", err
	}
	return m.certFile, m.keyFile, nil
}

// Certificate returns the loaded certificate, creating it when needed.
func (m *Manager) Certificate() (tls.Certificate, error) {
	certFile, keyFile, err := m.Ensure()
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.LoadX509KeyPair(certFile, keyFile)
}

// check reports why a stored certificate cannot be reused, or nil.
func (m *Manager) check(cert tls.Certificate) error {
	if len(cert.Certificate) == 0 {
		return errors.New("no certificate in file")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	now := m.now()
	if now.Before(leaf.NotBefore) {
		return errors.New("certificate not yet valid")
	}
	if now.Add(renewBefore).After(leaf.NotAfter) {
		return errors.New("certificate expires soon")
	}
	for _, host := range m.hosts {
		if err := leaf.VerifyHostname(host); err != nil {
			return fmt.Errorf("certificate does not cover %s", host)
		}
	}
	return nil
}

func (m *Manager) generate() error {
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create certificate directory: %w", err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := m.now()
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"finsight"}, CommonName: m.hosts[0]},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, host := range m.hosts {
		if ip := net.ParseIP(host); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, host)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("failed to encode private key: %w", err)
	}

	if err := writePEM(m.certFile, "CERTIFICATE", der); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}
	if err := writePEM(m.keyFile, "PRIVATE KEY", keyDER); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}

	slog.Info("Created self-signed server certificate", "dir", m.dir, "hosts", m.hosts)
	return nil
}

func writePEM(path, blockType string, der []byte) error {
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	return os.WriteFile(path, data, 0o600)
}
