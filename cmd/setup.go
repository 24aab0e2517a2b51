package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/ytsubs/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config directory and a config file from the template, then
// checks that the OAuth client secret is in place.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath, err := shared.FindConfig(r.configDir)
	switch {
	case err == nil:
		r.logger.Info("config file already exists", "path", configPath)
	case errors.Is(err, shared.ErrMissingConfig):
		configPath = filepath.Join(r.configDir, "config.toml")
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
	default:
		return err
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}

	secretPath := shared.ResolvePath(r.configDir, config.YouTube.ClientSecret)
	_, statErr := os.Stat(secretPath)
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return fmt.Errorf("failed to check client secret: %w", statErr)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✓ Config file: %s\n", configPath)
	if statErr == nil {
		fmt.Fprintf(&b, "✓ Client secret: %s\n", secretPath)
	} else {
		fmt.Fprintf(&b, "✗ Client secret missing: %s\n", secretPath)
	}

	b.WriteString("\nNext steps:\n")
	step := 1
	if statErr != nil {
		fmt.Fprintf(&b, "%d. Create an OAuth client (Desktop app) in the Google Cloud console and save its JSON as %s\n", step, secretPath)
		step++
	}
	fmt.Fprintf(&b, "%d. Fill in the Tiny Tiny RSS url, username and password in %s\n", step, configPath)
	fmt.Fprintf(&b, "%d. Run 'ytsubs auth login' to authorize read-only access\n", step+1)
	fmt.Fprintf(&b, "%d. Run 'ytsubs sync'\n", step+2)
	return r.writePlain("%s", b.String())
}
