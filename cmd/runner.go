package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsubs/internal/auth"
	"github.com/desertthunder/ytsubs/internal/services"
	"github.com/desertthunder/ytsubs/internal/shared"
	"github.com/desertthunder/ytsubs/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	configDir   string
	config      *shared.Config
	httpClient  *http.Client
	tokens      oauth2.TokenSource
	logger      *log.Logger
	input       io.Reader
	output      io.Writer
	interactive bool
	openURL     func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	ConfigDir   string
	Config      *shared.Config     // Skips loading from ConfigDir when set
	HTTPClient  *http.Client       // Used for the feed reader
	TokenSource oauth2.TokenSource // Skips the OAuth flow when set
	Logger      *log.Logger
	Input       io.Reader
	Output      io.Writer
	Interactive bool // Render progress with the terminal UI
	OpenURL     func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		configDir:   opts.ConfigDir,
		config:      opts.Config,
		httpClient:  opts.HTTPClient,
		tokens:      opts.TokenSource,
		logger:      opts.Logger,
		input:       opts.Input,
		output:      opts.Output,
		interactive: opts.Interactive,
		openURL:     opts.OpenURL,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, exportCommand, subscriptionsCommand, authCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before applies the global flags.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if dir := cmd.String("config-dir"); dir != "" {
		r.configDir = dir
	}
	if r.configDir == "" {
		dir, err := shared.DefaultConfigDir()
		if err != nil {
			return ctx, err
		}
		r.configDir = dir
	}
	return ctx, nil
}

// loadConfig reads the config file in the config directory once, then applies
// environment overrides.
func (r *Runner) loadConfig() (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	path, err := shared.FindConfig(r.configDir)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'ytsubs setup' to create one)", err)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(os.LookupEnv)

	r.logger.Debug("config loaded", "path", path)
	r.config = config
	return config, nil
}

func (r *Runner) flow(config *shared.Config) *auth.InstalledFlow {
	flow := auth.NewInstalledFlow(r.configDir, config, r.logger)
	flow.Output = os.Stderr
	flow.OpenURL = r.openURL
	return flow
}

func (r *Runner) tokenSource(ctx context.Context, config *shared.Config) (oauth2.TokenSource, error) {
	if r.tokens != nil {
		return r.tokens, nil
	}
	return r.flow(config).TokenSource(ctx)
}

func (r *Runner) youtube(config *shared.Config, ts oauth2.TokenSource) *services.YouTubeService {
	svc := services.NewYouTubeService(config.YouTube.APIURL, ts, shared.WithLogger(r.logger, "service", "youtube"))
	svc.SetRateLimit(config.YouTube.RequestsPerSecond)
	return svc
}

func (r *Runner) ttrss(config *shared.Config) *services.TTRSSService {
	return services.NewTTRSSService(config.App.TTRSS, r.httpClient, shared.WithLogger(r.logger, "service", "ttrss"))
}

// engine wires the pipeline from config. The importer is only built when withImport is set.
func (r *Runner) engine(ctx context.Context, config *shared.Config, category string, withImport bool) (*tasks.SubscriptionEngine, error) {
	ts, err := r.tokenSource(ctx, config)
	if err != nil {
		return nil, err
	}

	var importer services.Importer
	if withImport {
		importer = r.ttrss(config)
	}
	return tasks.NewSubscriptionEngine(ts, r.youtube(config, ts), importer, category, r.logger), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
