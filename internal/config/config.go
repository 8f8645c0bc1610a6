package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/plaid"
)

// Keys read from viper.
const (
	KeyLogLevel         = "logging.level"
	KeyLogFormat        = "logging.format"
	KeyDatabasePath     = "database.path"
	KeyCacheTTL         = "cache.ttl"
	KeyServerAddress    = "server.address"
	KeyServerRateLimit  = "server.rate_limit"
	KeyServerBurst      = "server.burst"
	KeyServerTLS        = "server.tls"
	KeyServerCertDir    = "server.cert_dir"
	KeyPlaidClientID    = "plaid.client_id"
	KeyPlaidSecret      = "plaid.secret"
	KeyPlaidEnvironment = "plaid.environment"
	KeyPlaidAccessToken = "plaid.access_token"
	KeySimpleFINToken   = "simplefin.token"
	KeySimpleFINState   = "simplefin.state_dir"
)

// Config is the resolved application configuration.
type Config struct {
	Logging   LoggingConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Plaid     plaid.Config
	SimpleFIN SimpleFINConfig
	Cache     CacheConfig
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=console json"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `validate:"required"`
}

// CacheConfig controls the report cache.
type CacheConfig struct {
	TTL time.Duration `validate:"gte=0"`
}

// ServerConfig controls the HTTP API. With TLS enabled a self-signed
// localhost certificate is kept in CertDir.
type ServerConfig struct {
	Address   string  `validate:"required,hostname_port"`
	CertDir   string  `validate:"required_if=TLS true"`
	RateLimit float64 `validate:"gt=0"`
	Burst     int     `validate:"gte=1"`
	TLS       bool
}

// SimpleFINConfig holds the setup token and where the claimed access URL is
// saved. The token is only needed until the first successful claim.
type SimpleFINConfig struct {
	Token    string
	StateDir string `validate:"required"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath())
	v.SetDefault(KeyCacheTTL, 15*time.Minute)
	v.SetDefault(KeyServerAddress, "127.0.0.1:8080")
	v.SetDefault(KeyServerRateLimit, 10.0)
	v.SetDefault(KeyServerBurst, 20)
	v.SetDefault(KeyServerTLS, false)
	v.SetDefault(KeyServerCertDir, filepath.Join(DataDir(), "certs"))
	v.SetDefault(KeyPlaidEnvironment, "sandbox")
	v.SetDefault(KeySimpleFINState, DataDir())
}

// Load reads the configuration from v and validates it. Bank credentials
// fall back to the PLAID_* and SIMPLEFIN_TOKEN environment variables and are
// only checked by the commands that use them.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Logging: LoggingConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString(KeyDatabasePath)),
		},
		Cache: CacheConfig{
			TTL: v.GetDuration(KeyCacheTTL),
		},
		Server: ServerConfig{
			Address:   v.GetString(KeyServerAddress),
			RateLimit: v.GetFloat64(KeyServerRateLimit),
			Burst:     v.GetInt(KeyServerBurst),
			TLS:       v.GetBool(KeyServerTLS),
			CertDir:   ExpandPath(v.GetString(KeyServerCertDir)),
		},
		SimpleFIN: SimpleFINConfig{
			Token:    v.GetString(KeySimpleFINToken),
			StateDir: ExpandPath(v.GetString(KeySimpleFINState)),
		},
		Plaid: plaid.Config{
			ClientID:    v.GetString(KeyPlaidClientID),
			Secret:      v.GetString(KeyPlaidSecret),
			Environment: v.GetString(KeyPlaidEnvironment),
			AccessToken: v.GetString(KeyPlaidAccessToken),
		},
	}

	if cfg.Plaid.ClientID == "" {
		cfg.Plaid.ClientID = os.Getenv("PLAID_CLIENT_ID")
	}
	if cfg.Plaid.Secret == "" {
		cfg.Plaid.Secret = os.Getenv("PLAID_SECRET")
	}
	if cfg.Plaid.AccessToken == "" {
		cfg.Plaid.AccessToken = os.Getenv("PLAID_ACCESS_TOKEN")
	}
	if cfg.SimpleFIN.Token == "" {
		cfg.SimpleFIN.Token = os.Getenv("SIMPLEFIN_TOKEN")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	return cfg, nil
}
