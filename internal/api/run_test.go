package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/certs"
)

func TestRun_ServesUntilCanceled(t *testing.T) {
	tests := []struct {
		name string
		tls  bool
	}{
		{name: "http"},
		{name: "https", tls: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Address: "127.0.0.1:0"}
			client := &http.Client{Timeout: 5 * time.Second}
			scheme := "http"

			if tt.tls {
				certFile, keyFile, err := certs.NewManager(t.TempDir()).Ensure()
				require.NoError(t, err)
				opts.TLSCertFile = certFile
				opts.TLSKeyFile = keyFile

				pemData, err := os.ReadFile(certFile)
				require.NoError(t, err)
				pool := x509.NewCertPool()
				require.True(t, pool.AppendCertsFromPEM(pemData))
				client.Transport = &http.Transport{TLSClientConfig: &tls.Config{
					RootCAs:    pool,
					MinVersion: tls.VersionTLS12,
				}}
				scheme = "https"
			}

			srv := newTestServer(t, nil, opts)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- srv.Run(ctx) }()

			var addr net.Addr
			require.Eventually(t, func() bool {
				if tt.tls {
					addr = srv.echo.TLSListenerAddr()
				} else {
					addr = srv.echo.ListenerAddr()
				}
				return addr != nil
			}, 5*time.Second, 10*time.Millisecond)

			_, port, err := net.SplitHostPort(addr.String())
			require.NoError(t, err)

			resp, err := client.Get(scheme + "://localhost:" + port + "/health")
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(shutdownTimeout + time.Second):
				t.Fatal("server did not shut down")
			}
		})
	}
}
