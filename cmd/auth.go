package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/ytsubs/internal/auth"
	"github.com/desertthunder/ytsubs/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthStatusReport describes the cached token.
type AuthStatusReport struct {
	CachePath       string    `json:"cache_path"`
	Authorized      bool      `json:"authorized"`
	Valid           bool      `json:"valid"`
	Expiry          time.Time `json:"expiry,omitzero"`
	HasRefreshToken bool      `json:"has_refresh_token"`
}

// configOrDefault loads the config file, falling back to defaults when none exists.
// Authorization only needs the YouTube settings.
func (r *Runner) configOrDefault() (*shared.Config, error) {
	config, err := r.loadConfig()
	if errors.Is(err, shared.ErrMissingConfig) {
		r.logger.Debug("no config file, using defaults", "dir", r.configDir)
		return shared.DefaultConfig(), nil
	}
	return config, err
}

// AuthLogin runs the browser authorization flow and caches the resulting token,
// replacing any cached token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configOrDefault()
	if err != nil {
		return err
	}

	flow := r.flow(config)
	conf, err := flow.OAuthConfig()
	if err != nil {
		return err
	}

	tok, err := flow.Authorize(ctx, conf)
	if err != nil {
		return err
	}
	if err := auth.SaveToken(flow.CachePath, tok); err != nil {
		return fmt.Errorf("failed to save token cache: %w", err)
	}

	r.logger.Info("authorization complete", "expiry", tok.Expiry)
	return r.writePlain("✓ Authorization complete\nToken cached at: %s\n", flow.CachePath)
}

// AuthStatus reports whether a token is cached and whether it is still valid.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configOrDefault()
	if err != nil {
		return err
	}

	flow := r.flow(config)
	report := AuthStatusReport{CachePath: flow.CachePath}

	tok, err := flow.CachedToken()
	switch {
	case errors.Is(err, shared.ErrNoCachedToken):
	case err != nil:
		return err
	default:
		report.Authorized = true
		report.Valid = tok.Valid()
		report.Expiry = tok.Expiry
		report.HasRefreshToken = tok.RefreshToken != ""
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	if !report.Authorized {
		return r.writePlain("✗ Not authorized\nRun 'ytsubs auth login' to authorize read-only access\n")
	}

	var b strings.Builder
	b.WriteString("✓ Authorized\n")
	fmt.Fprintf(&b, "Token cache: %s\n", report.CachePath)
	if report.Valid {
		fmt.Fprintf(&b, "Access token: valid until %s\n", report.Expiry.Local().Format(time.RFC1123))
	} else {
		b.WriteString("Access token: expired\n")
	}
	if report.HasRefreshToken {
		b.WriteString("Refresh token: present\n")
	} else {
		b.WriteString("Refresh token: missing (run 'ytsubs auth login' again)\n")
	}
	return r.writePlain("%s", b.String())
}

// AuthLogout deletes the cached token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configOrDefault()
	if err != nil {
		return err
	}

	path := r.flow(config).CachePath
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return r.writePlain("No cached token at %s\n", path)
		}
		return fmt.Errorf("failed to remove token cache: %w", err)
	}

	r.logger.Info("token cache removed", "path", path)
	return r.writePlain("✓ Token cache removed\n")
}
