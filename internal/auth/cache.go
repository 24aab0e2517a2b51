package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsubs/internal/shared"
	"golang.org/x/oauth2"
)

// LoadToken reads a cached token. A missing file yields [shared.ErrNoCachedToken].
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, shared.ErrNoCachedToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token cache: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token cache %s: %w", path, err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, shared.ErrNoCachedToken
	}
	return &tok, nil
}

// SaveToken writes tok to path with owner-only permissions, replacing the previous
// cache atomically.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokencache-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set token cache permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close token cache: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}

// cachingTokenSource persists every newly issued access token.
type cachingTokenSource struct {
	base   oauth2.TokenSource
	path   string
	logger *log.Logger

	mu   sync.Mutex
	last string
}

func (c *cachingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := c.base.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tok.AccessToken != c.last {
		if err := SaveToken(c.path, tok); err != nil {
			c.logger.Warn("failed to persist refreshed token", "path", c.path, "error", err)
		} else {
			c.logger.Debug("token cache updated", "path", c.path, "expiry", tok.Expiry)
		}
		c.last = tok.AccessToken
	}
	return tok, nil
}
