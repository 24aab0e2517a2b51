// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const version = "0.3.0"

// newApp builds the root command. Running without a subcommand performs a sync.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:           "ytsubs",
		Usage:          "Sync YouTube subscriptions into Tiny Tiny RSS",
		Version:        version,
		DefaultCommand: "sync",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Aliases: []string{"C"},
				Usage:   "Directory holding config.yml, client_secret.json and the token cache (default: ~/.ytsubs)",
				Sources: cli.EnvVars("YTSUBS_CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}

// syncCommand runs the full pipeline
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Fetch subscriptions and import them into Tiny Tiny RSS",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "schedule",
				Usage: "Keep running and sync on a cron schedule (e.g. \"0 */6 * * *\" or \"@daily\")",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Override the category subscriptions are imported into",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Log progress instead of drawing the terminal UI",
			},
		},
		Action: r.Sync,
	}
}

// exportCommand writes the OPML document without importing it
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write subscriptions as OPML",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Override the category name",
			},
		},
		Action: r.Export,
	}
}

// subscriptionsCommand lists subscriptions
func subscriptionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "subscriptions",
		Aliases: []string{"subs", "ls"},
		Usage:   "List YouTube subscriptions",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Output an aligned plain-text listing",
			},
			&cli.BoolFlag{
				Name:    "browse",
				Aliases: []string{"b"},
				Usage:   "Browse interactively and open channels in a browser",
			},
		},
		Action: r.Subscriptions,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage YouTube authorization",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize read-only access in the browser and cache the token",
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the cached token state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Delete the cached token",
				Action: r.AuthLogout,
			},
		},
	}
}

// setupCommand creates the config directory and file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create a config file and check for the client secret",
		Action: r.Setup,
	}
}
