package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	DefaultAPIURL             = "https://youtube.googleapis.com/youtube/v3"
	DefaultClientSecret       = "client_secret.json"
	DefaultTokenCache         = "tokencache.json"
	DefaultRequestsPerSecond  = 5.0
	DefaultAuthTimeoutSeconds = 120
	DefaultImportTimeout      = 60
)

// ConfigFileNames lists the file names looked up in the config directory, in order.
var ConfigFileNames = []string{"config.yml", "config.yaml", "config.toml"}

// Config represents the application configuration loaded from a YAML or TOML file.
type Config struct {
	App     AppConfig     `toml:"app" yaml:"app"`
	YouTube YouTubeConfig `toml:"youtube" yaml:"youtube"`
}

// AppConfig contains the category subscriptions are imported into and the target reader.
type AppConfig struct {
	CategoryName string      `toml:"category_name" yaml:"categoryName"`
	TTRSS        TTRSSConfig `toml:"ttrss" yaml:"ttrss"`
}

// TTRSSConfig contains Tiny Tiny RSS API credentials.
type TTRSSConfig struct {
	URL                  string `toml:"url" yaml:"url"`
	Username             string `toml:"username" yaml:"username"`
	Password             string `toml:"password" yaml:"password"`
	ImportTimeoutSeconds int    `toml:"import_timeout_seconds" yaml:"importTimeoutSeconds"`
}

// YouTubeConfig contains YouTube Data API settings.
//
// ClientSecret and TokenCache are resolved relative to the config directory.
// An unset RequestsPerSecond uses the default; a negative one disables pacing.
type YouTubeConfig struct {
	APIURL             string  `toml:"api_url" yaml:"apiUrl"`
	ClientSecret       string  `toml:"client_secret" yaml:"clientSecret"`
	TokenCache         string  `toml:"token_cache" yaml:"tokenCache"`
	RequestsPerSecond  float64 `toml:"requests_per_second" yaml:"requestsPerSecond"`
	AuthTimeoutSeconds int     `toml:"auth_timeout_seconds" yaml:"authTimeoutSeconds"`
}

// DefaultConfigDir returns ~/.ytsubs.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ytsubs"), nil
}

// FindConfig returns the path of the first config file present in dir.
func FindConfig(dir string) (string, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %s in %s", ErrMissingConfig, strings.Join(ConfigFileNames, ", "), dir)
}

// LoadConfig reads and parses a configuration file from the specified path.
//
// Files ending in .yml or .yaml are decoded as YAML, everything else as TOML.
// Missing optional settings are filled with defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = toml.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyDefaults()
	return &config
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides target service settings with YTSUBS_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for key, field := range map[string]*string{
		"YTSUBS_CATEGORY":       &c.App.CategoryName,
		"YTSUBS_TTRSS_URL":      &c.App.TTRSS.URL,
		"YTSUBS_TTRSS_USERNAME": &c.App.TTRSS.Username,
		"YTSUBS_TTRSS_PASSWORD": &c.App.TTRSS.Password,
	} {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}
}

// Validate checks that everything needed for a sync is present.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.App.CategoryName) == "" {
		errs = append(errs, fmt.Errorf("%w: app category name is empty", ErrInvalidConfig))
	}

	if c.App.TTRSS.URL == "" {
		errs = append(errs, fmt.Errorf("%w: ttrss url is empty", ErrInvalidConfig))
	} else if u, err := url.Parse(c.App.TTRSS.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: ttrss url %q is not an http(s) url", ErrInvalidConfig, c.App.TTRSS.URL))
	}

	if c.App.TTRSS.Username == "" || c.App.TTRSS.Password == "" {
		errs = append(errs, fmt.Errorf("%w: ttrss username and password must be set", ErrMissingCredentials))
	}

	return errors.Join(errs...)
}

// ImportTimeout returns the bound applied to the OPML import request, falling
// back to the default when unset.
func (c TTRSSConfig) ImportTimeout() time.Duration {
	if c.ImportTimeoutSeconds <= 0 {
		return time.Duration(DefaultImportTimeout) * time.Second
	}
	return time.Duration(c.ImportTimeoutSeconds) * time.Second
}

// AuthTimeout returns how long the browser authorization flow may take.
func (c *Config) AuthTimeout() time.Duration {
	return time.Duration(c.YouTube.AuthTimeoutSeconds) * time.Second
}

// ResolvePath joins p onto dir unless p is already absolute.
func ResolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func (c *Config) applyDefaults() {
	if c.YouTube.APIURL == "" {
		c.YouTube.APIURL = DefaultAPIURL
	}
	if c.YouTube.ClientSecret == "" {
		c.YouTube.ClientSecret = DefaultClientSecret
	}
	if c.YouTube.TokenCache == "" {
		c.YouTube.TokenCache = DefaultTokenCache
	}
	if c.YouTube.RequestsPerSecond == 0 {
		c.YouTube.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.YouTube.AuthTimeoutSeconds <= 0 {
		c.YouTube.AuthTimeoutSeconds = DefaultAuthTimeoutSeconds
	}
	if c.App.TTRSS.ImportTimeoutSeconds <= 0 {
		c.App.TTRSS.ImportTimeoutSeconds = DefaultImportTimeout
	}
}
