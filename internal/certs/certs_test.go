package certs

import (
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(t *testing.T, m *Manager) *x509.Certificate {
	t.Helper()

	cert, err := m.Certificate()
	require.NoError(t, err)
	require.Len(t, cert.Certificate, 1)

	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return parsed
}

func TestManagerCreatesCertificate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	m := NewManager(dir)

	certFile, keyFile, err := m.Ensure()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, certFileName), certFile)
	assert.Equal(t, filepath.Join(dir, keyFileName), keyFile)

	info, err := os.Stat(keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cert := leaf(t, m)
	assert.Equal(t, "finsight", cert.Subject.Organization[0])
	assert.Contains(t, cert.DNSNames, "localhost")
	assert.Len(t, cert.IPAddresses, 2)
	for _, host := range DefaultHosts {
		assert.NoError(t, cert.VerifyHostname(host), host)
	}
	assert.True(t, cert.NotAfter.After(time.Now().Add(364*24*time.Hour)))
}

func TestManagerReusesValidCertificate(t *testing.T) {
	dir := t.TempDir()

	first := leaf(t, NewManager(dir))
	second := leaf(t, NewManager(dir))

	assert.Equal(t, first.SerialNumber, second.SerialNumber)
}

func TestManagerReplacesCertificate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, dir string) *Manager
	}{
		{
			name: "expiring soon",
			mutate: func(_ *testing.T, dir string) *Manager {
				m := NewManager(dir)
				m.now = func() time.Time { return time.Now().Add(validity - 10*24*time.Hour) }
				return m
			},
		},
		{
			name: "new host",
			mutate: func(_ *testing.T, dir string) *Manager {
				return NewManager(dir, "finsight.local")
			},
		},
		{
			name: "corrupt files",
			mutate: func(t *testing.T, dir string) *Manager {
				t.Helper()
				require.NoError(t, os.WriteFile(filepath.Join(dir, certFileName), []byte("garbage"), 0o600))
				return NewManager(dir)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			original := leaf(t, NewManager(dir))

			replacement := leaf(t, tt.mutate(t, dir))
			assert.NotEqual(t, original.SerialNumber, replacement.SerialNumber)
		})
	}
}

func TestManagerCustomHosts(t *testing.T) {
	cert := leaf(t, NewManager(t.TempDir(), "finsight.local", "192.168.1.10"))

	assert.Equal(t, "finsight.local", cert.Subject.CommonName)
	assert.Equal(t, []string{"finsight.local"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	assert.Equal(t, "192.168.1.10", cert.IPAddresses[0].String())
}

func TestManagerUnwritableDirectory(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, _, err := NewManager(filepath.Join(blocker, "certs")).Ensure()
	require.Error(t, err)
}
