// Package config loads server and integration settings.
//
// Values are layered with the following precedence, highest first:
//
//	environment variables
//	./application.properties
//	~/.sdlc-tools/application.properties
//	$XDG_CONFIG_HOME/sdlc-tools/config.yaml
//
// Only non-empty values override a lower layer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joeshaw/envdecode"
	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"github.com/sdlc-tools/mcp-server/pkg/logging"
)

const (
	appName            = "sdlc-tools"
	propertiesFileName = "application.properties"
	yamlFileName       = "config.yaml"
)

// Property keys used in application.properties
const (
	KeyJiraURL            = "jira.url"
	KeyJiraEmail          = "jira.email"
	KeyJiraAPIToken       = "jira.api.token"
	KeyConfluenceURL      = "confluence.url"
	KeyConfluenceEmail    = "confluence.email"
	KeyConfluenceAPIToken = "confluence.api.token"
)

// Credentials holds the connection settings of one Atlassian product
type Credentials struct {
	URL      string `yaml:"url"`
	Email    string `yaml:"email"`
	APIToken string `yaml:"apiToken"`
}

// Complete reports whether every field is set
func (c Credentials) Complete() bool {
	return c.URL != "" && c.Email != "" && c.APIToken != ""
}

// ServerConfig holds process settings. They come from the environment only.
type ServerConfig struct {
	CacheBackend  string        `env:"SDLC_CACHE_BACKEND,default=memory"`
	RedisAddr     string        `env:"SDLC_REDIS_ADDR,default=localhost:6379"`
	CacheMaxAge   time.Duration `env:"SDLC_CACHE_MAX_AGE,default=60m"`
	MetricsAddr   string        `env:"SDLC_METRICS_ADDR"`
	TraceExporter string        `env:"SDLC_TRACE_EXPORTER,default=none"`
	TraceEndpoint string        `env:"SDLC_TRACE_ENDPOINT"`
	MavenBin      string        `env:"SDLC_MAVEN_BIN,default=mvn"`

	// AtlassianRequestsPerMinute throttles each Jira or Confluence site; 0 disables
	AtlassianRequestsPerMinute int `env:"SDLC_ATLASSIAN_RPM,default=300"`
}

// Config is the resolved configuration
type Config struct {
	Jira       Credentials  `yaml:"jira"`
	Confluence Credentials  `yaml:"confluence"`
	Server     ServerConfig `yaml:"-"`

	// Sources lists the files that contributed values, lowest precedence first
	Sources []string `yaml:"-"`
}

// environment mirrors the variables read by envdecode
type environment struct {
	JiraURL            string `env:"JIRA_URL"`
	JiraEmail          string `env:"JIRA_EMAIL"`
	JiraAPIToken       string `env:"JIRA_API_TOKEN"`
	ConfluenceURL      string `env:"CONFLUENCE_URL"`
	ConfluenceEmail    string `env:"CONFLUENCE_EMAIL"`
	ConfluenceAPIToken string `env:"CONFLUENCE_API_TOKEN"`

	Server ServerConfig
}

type loadOptions struct {
	workingDir string
	homeDir    string
	configHome string
	logger     logging.Logger
}

// Option customises Load
type Option func(*loadOptions)

// WithWorkingDir sets the directory searched for application.properties
func WithWorkingDir(dir string) Option {
	return func(o *loadOptions) { o.workingDir = dir }
}

// WithHomeDir sets the directory containing .sdlc-tools/
func WithHomeDir(dir string) Option {
	return func(o *loadOptions) { o.homeDir = dir }
}

// WithConfigHome sets the XDG config directory
func WithConfigHome(dir string) Option {
	return func(o *loadOptions) { o.configHome = dir }
}

// WithLogger logs which sources were loaded
func WithLogger(logger logging.Logger) Option {
	return func(o *loadOptions) { o.logger = logger }
}

// Load resolves the configuration from every layer
func Load(opts ...Option) (*Config, error) {
	o := &loadOptions{
		workingDir: ".",
		homeDir:    xdg.Home,
		configHome: xdg.ConfigHome,
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	cfg := &Config{}

	yamlPath := filepath.Join(o.configHome, appName, yamlFileName)
	loaded, err := cfg.mergeYAML(yamlPath)
	if err != nil {
		return nil, err
	}
	if loaded {
		cfg.Sources = append(cfg.Sources, yamlPath)
	}

	propertyFiles := []string{
		filepath.Join(o.homeDir, "."+appName, propertiesFileName),
		filepath.Join(o.workingDir, propertiesFileName),
	}
	for _, path := range propertyFiles {
		loaded, err := cfg.mergeProperties(path)
		if err != nil {
			return nil, err
		}
		if loaded {
			cfg.Sources = append(cfg.Sources, path)
		}
	}

	if err := cfg.mergeEnvironment(); err != nil {
		return nil, err
	}

	cfg.Jira.URL = trimBaseURL(cfg.Jira.URL)
	cfg.Confluence.URL = trimBaseURL(cfg.Confluence.URL)

	o.logger.Info("Configuration loaded",
		logging.Int("sources", len(cfg.Sources)),
		logging.Bool("jira", cfg.IsJiraConfigured()),
		logging.Bool("confluence", cfg.IsConfluenceConfigured()),
	)
	return cfg, nil
}

func (c *Config) mergeYAML(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	var layer Config
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	c.Jira.merge(layer.Jira)
	c.Confluence.merge(layer.Confluence)
	return true, nil
}

func (c *Config) mergeProperties(path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", path, err)
	}

	c.Jira.merge(Credentials{
		URL:      p.GetString(KeyJiraURL, ""),
		Email:    p.GetString(KeyJiraEmail, ""),
		APIToken: p.GetString(KeyJiraAPIToken, ""),
	})
	c.Confluence.merge(Credentials{
		URL:      p.GetString(KeyConfluenceURL, ""),
		Email:    p.GetString(KeyConfluenceEmail, ""),
		APIToken: p.GetString(KeyConfluenceAPIToken, ""),
	})
	return true, nil
}

func (c *Config) mergeEnvironment() error {
	var env environment
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("decode environment: %w", err)
	}

	c.Jira.merge(Credentials{URL: env.JiraURL, Email: env.JiraEmail, APIToken: env.JiraAPIToken})
	c.Confluence.merge(Credentials{URL: env.ConfluenceURL, Email: env.ConfluenceEmail, APIToken: env.ConfluenceAPIToken})
	c.Server = env.Server
	return nil
}

func (c *Credentials) merge(layer Credentials) {
	if v := strings.TrimSpace(layer.URL); v != "" {
		c.URL = v
	}
	if v := strings.TrimSpace(layer.Email); v != "" {
		c.Email = v
	}
	if v := strings.TrimSpace(layer.APIToken); v != "" {
		c.APIToken = v
	}
}

func trimBaseURL(url string) string {
	return strings.TrimRight(url, "/")
}

// IsJiraConfigured reports whether Jira url, email and token are all set
func (c *Config) IsJiraConfigured() bool {
	return c.Jira.Complete()
}

// IsConfluenceConfigured reports whether Confluence url, email and token are all set
func (c *Config) IsConfluenceConfigured() bool {
	return c.Confluence.Complete()
}

func orDefault(override, configured, missing string) (string, error) {
	if override != "" {
		return override, nil
	}
	if configured == "" {
		return "", errors.New(missing)
	}
	return configured, nil
}

// JiraURLOrDefault returns override when set, else the configured Jira URL
func (c *Config) JiraURLOrDefault(override string) (string, error) {
	return orDefault(trimBaseURL(override), c.Jira.URL,
		"JIRA URL not configured. Please set JIRA_URL environment variable, add jira.url to application.properties, or provide jiraUrl parameter.")
}

// JiraEmailOrDefault returns override when set, else the configured Jira email
func (c *Config) JiraEmailOrDefault(override string) (string, error) {
	return orDefault(override, c.Jira.Email,
		"JIRA email not configured. Please set JIRA_EMAIL environment variable, add jira.email to application.properties, or provide email parameter.")
}

// JiraAPITokenOrDefault returns override when set, else the configured Jira token
func (c *Config) JiraAPITokenOrDefault(override string) (string, error) {
	return orDefault(override, c.Jira.APIToken,
		"JIRA API token not configured. Please set JIRA_API_TOKEN environment variable, add jira.api.token to application.properties, or provide apiToken parameter.")
}

// ConfluenceURLOrDefault returns override when set, else the configured Confluence URL
func (c *Config) ConfluenceURLOrDefault(override string) (string, error) {
	return orDefault(trimBaseURL(override), c.Confluence.URL,
		"Confluence URL not configured. Please set CONFLUENCE_URL environment variable, add confluence.url to application.properties, or provide confluenceUrl parameter.")
}

// ConfluenceEmailOrDefault returns override when set, else the configured Confluence email
func (c *Config) ConfluenceEmailOrDefault(override string) (string, error) {
	return orDefault(override, c.Confluence.Email,
		"Confluence email not configured. Please set CONFLUENCE_EMAIL environment variable, add confluence.email to application.properties, or provide email parameter.")
}

// ConfluenceAPITokenOrDefault returns override when set, else the configured Confluence token
func (c *Config) ConfluenceAPITokenOrDefault(override string) (string, error) {
	return orDefault(override, c.Confluence.APIToken,
		"Confluence API token not configured. Please set CONFLUENCE_API_TOKEN environment variable, add confluence.api.token to application.properties, or provide apiToken parameter.")
}

// JiraCredentials resolves all three Jira settings, applying overrides
func (c *Config) JiraCredentials(url, email, token string) (Credentials, error) {
	var (
		creds Credentials
		err   error
	)
	if creds.URL, err = c.JiraURLOrDefault(url); err != nil {
		return Credentials{}, err
	}
	if creds.Email, err = c.JiraEmailOrDefault(email); err != nil {
		return Credentials{}, err
	}
	if creds.APIToken, err = c.JiraAPITokenOrDefault(token); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// ConfluenceCredentials resolves all three Confluence settings, applying overrides
func (c *Config) ConfluenceCredentials(url, email, token string) (Credentials, error) {
	var (
		creds Credentials
		err   error
	)
	if creds.URL, err = c.ConfluenceURLOrDefault(url); err != nil {
		return Credentials{}, err
	}
	if creds.Email, err = c.ConfluenceEmailOrDefault(email); err != nil {
		return Credentials{}, err
	}
	if creds.APIToken, err = c.ConfluenceAPITokenOrDefault(token); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}
