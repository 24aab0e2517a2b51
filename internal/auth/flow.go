package auth

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsubs/internal/server"
	"github.com/desertthunder/ytsubs/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// YouTubeReadOnlyScope grants read access to the user's YouTube account.
const YouTubeReadOnlyScope = "https://www.googleapis.com/auth/youtube.readonly"

// InstalledFlow obtains tokens using the OAuth installed-application flow.
type InstalledFlow struct {
	SecretPath string        // Path to client_secret.json
	CachePath  string        // Path to the token cache
	Scopes     []string      // Defaults to [YouTubeReadOnlyScope]
	Timeout    time.Duration // Bound on the interactive browser flow
	ListenAddr string        // Redirect listener address, defaults to [server.LoopbackAddr]
	Output     io.Writer     // Receives the consent prompt
	OpenURL    func(string) error
	Logger     *log.Logger
}

// NewInstalledFlow builds a flow from the application config and its directory.
func NewInstalledFlow(configDir string, config *shared.Config, logger *log.Logger) *InstalledFlow {
	return &InstalledFlow{
		SecretPath: shared.ResolvePath(configDir, config.YouTube.ClientSecret),
		CachePath:  shared.ResolvePath(configDir, config.YouTube.TokenCache),
		Scopes:     []string{YouTubeReadOnlyScope},
		Timeout:    config.AuthTimeout(),
		OpenURL:    shared.OpenBrowser,
		Logger:     logger,
	}
}

// GetToken returns a bearer token for scopes using the secret and cache in configDir,
// running the interactive flow if nothing usable is cached.
func GetToken(ctx context.Context, configDir string, scopes ...string) (*oauth2.Token, error) {
	config := shared.DefaultConfig()
	flow := NewInstalledFlow(configDir, config, shared.NewLogger(nil))
	if len(scopes) > 0 {
		flow.Scopes = scopes
	}

	ts, err := flow.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return ts.Token()
}

// OAuthConfig reads the application secret.
func (f *InstalledFlow) OAuthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(f.SecretPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMissingSecret, err)
	}

	conf, err := google.ConfigFromJSON(data, f.scopes()...)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid client secret %s: %v", shared.ErrAuthFailed, f.SecretPath, err)
	}
	return conf, nil
}

// TokenSource returns a source of valid tokens, authorizing interactively when needed.
//
// The returned source refreshes expired tokens and writes them back to the cache.
func (f *InstalledFlow) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	logger := f.logger()

	conf, err := f.OAuthConfig()
	if err != nil {
		return nil, err
	}

	tok, err := f.cachedToken(ctx, conf)
	if err != nil {
		logger.Info("no usable cached token, starting authorization", "reason", err)

		if tok, err = f.Authorize(ctx, conf); err != nil {
			return nil, err
		}
		if err := SaveToken(f.CachePath, tok); err != nil {
			return nil, fmt.Errorf("failed to save token cache: %w", err)
		}
		logger.Info("token cached", "path", f.CachePath)
	}

	cached := &cachingTokenSource{
		base:   conf.TokenSource(ctx, tok),
		path:   f.CachePath,
		logger: logger,
		last:   tok.AccessToken,
	}
	return oauth2.ReuseTokenSource(tok, cached), nil
}

// CachedToken returns the token stored in the cache without validating it.
func (f *InstalledFlow) CachedToken() (*oauth2.Token, error) {
	return LoadToken(f.CachePath)
}

// cachedToken loads the cache and refreshes it if expired. Refreshed tokens are saved.
func (f *InstalledFlow) cachedToken(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	tok, err := LoadToken(f.CachePath)
	if err != nil {
		return nil, err
	}
	if tok.Valid() {
		return tok, nil
	}
	if tok.RefreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	fresh, err := conf.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	if err := SaveToken(f.CachePath, fresh); err != nil {
		f.logger().Warn("failed to persist refreshed token", "error", err)
	}
	return fresh, nil
}

// Authorize runs the authorization code flow with a loopback redirect and PKCE.
func (f *InstalledFlow) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	logger := f.logger()
	state := shared.GenerateID()
	verifier := oauth2.GenerateVerifier()

	handler := server.NewOAuthHandler(conf, state, verifier)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(logger))
	router.Handler(handler)

	addr := f.ListenAddr
	if addr == "" {
		addr = server.LoopbackAddr
	}
	srv, err := server.Listen(addr, router)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	conf.RedirectURL = srv.URL(server.CallbackPath)
	srv.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error shutting down redirect listener", "error", err)
		}
	}()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	logger.Debug("waiting for authorization", "redirect", conf.RedirectURL)

	out := f.Output
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "→ Please authorize read-only access to your subscriptions:\n%s\n\n", authURL)

	if f.OpenURL != nil {
		if err := f.OpenURL(authURL); err != nil {
			logger.Warn("failed to open browser automatically", "error", err)
		}
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = time.Duration(shared.DefaultAuthTimeoutSeconds) * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-srv.Errors():
		return nil, fmt.Errorf("%w: redirect listener: %v", shared.ErrAuthFailed, err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization not completed within %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := result.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}

func (f *InstalledFlow) scopes() []string {
	if len(f.Scopes) == 0 {
		return []string{YouTubeReadOnlyScope}
	}
	return f.Scopes
}

func (f *InstalledFlow) logger() *log.Logger {
	if f.Logger == nil {
		f.Logger = shared.NewLogger(nil)
	}
	return f.Logger
}
