package simplefin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/finsight/internal/common"
)

const authFileName = "simplefin_auth.json"

// AuthState is the saved result of claiming a setup token.
type AuthState struct {
	ClaimedAt time.Time `json:"claimed_at"`
	AccessURL string    `json:"access_url"`
	TokenHint string    `json:"token_hint"`
}

// AuthStore persists the access URL so a setup token is claimed only once.
type AuthStore struct {
	httpClient *http.Client
	now        func() time.Time
	path       string
}

// NewAuthStore keeps the auth state in dir.
func NewAuthStore(dir string, httpClient *http.Client) *AuthStore {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &AuthStore{
		path:       filepath.Join(dir, authFileName),
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Path returns the location of the state file.
func (s *AuthStore) Path() string {
	return s.path
}

// LoadOrClaim returns the saved access URL, claiming token when nothing is
// saved yet.
func (s *AuthStore) LoadOrClaim(ctx context.Context, token string) (*AuthState, error) {
	auth, err := s.load()
	if err == nil && auth.AccessURL != "" {
		slog.Info("Using saved SimpleFIN access URL",
			"claimed_at", auth.ClaimedAt.Format(dateLayout),
			"state_file", s.path)
		return auth, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Ignoring unreadable SimpleFIN state", "state_file", s.path, "error", err)
	}

	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: simplefin setup token is required", common.ErrMissingConfig)
	}

	slog.Info("No saved auth found, claiming SimpleFIN token")
	accessURL, err := s.claim(ctx, token)
	if err != nil {
		return nil, err
	}

	auth = &AuthState{
		AccessURL: accessURL,
		ClaimedAt: s.now(),
		TokenHint: tokenHint(token),
	}
	if err := s.save(auth); err != nil {
		return nil, fmt.Errorf("failed to save auth state: %w", err)
	}

	slog.Info("Claimed and saved SimpleFIN access URL", "state_file", s.path)
	return auth, nil
}

// claim exchanges a base64 setup token for an access URL.
func (s *AuthStore) claim(ctx context.Context, token string) (string, error) {
	claimURL, err := decodeToken(token)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claimURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create claim request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrSimpleFINConnection, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read claim response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: claim returned %d - %s",
			common.ErrSimpleFINAuth, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	accessURL := strings.TrimSpace(string(body))
	if !isHTTPURL(accessURL) {
		return "", fmt.Errorf("%w: invalid access URL received", common.ErrSimpleFINAuth)
	}
	return accessURL, nil
}

func (s *AuthStore) load() (*AuthState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var auth AuthState
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, fmt.Errorf("failed to decode auth state: %w", err)
	}
	return &auth, nil
}

func (s *AuthStore) save(auth *AuthState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(auth, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func decodeToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(token)
		if err != nil {
			return "", fmt.Errorf("%w: failed to decode setup token: %w", common.ErrInvalidConfig, err)
		}
	}

	claimURL := string(decoded)
	if !isHTTPURL(claimURL) {
		return "", fmt.Errorf("%w: setup token does not contain a claim URL", common.ErrInvalidConfig)
	}
	return claimURL, nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// tokenHint keeps enough of a token to recognize it in the state file.
func tokenHint(token string) string {
	if len(token) > 16 {
		return token[:8] + "..." + token[len(token)-8:]
	}
	return "short_token"
}
