// Package config provides configuration for the aiorg binary.
// Loads from: CLI flags > env vars > config.toml > built-in defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

// Backend defaults. The function URL points at the hosted quick-add edge
// function; the anon key has no default and must be supplied.
const (
	DefaultFunctionURL = "https://trzowsfwurgtcdxjwevi.supabase.co/functions/v1/quick-add"
	DefaultAuthServer  = "https://trzowsfwurgtcdxjwevi.supabase.co"
	DefaultDocsURL     = "https://ai-organiser.app/docs/chatgpt"
	DefaultTimeout     = 10 * time.Second
)

// IntegrationTokenEnv is the environment variable holding the single-tenant
// fallback integration token.
const IntegrationTokenEnv = "AI_ORGANISER_INTEGRATION_TOKEN"

// Override is the config file path given on the command line (--config).
var Override string

// Config holds all aiorg configuration, loaded from TOML + env + flags.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Backend BackendConfig `toml:"backend"`
	Auth    AuthConfig    `toml:"auth"`
	Intent  IntentConfig  `toml:"intent"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host      string `toml:"host" env:"MCP_HOST"`
	Port      int    `toml:"port" env:"MCP_PORT"`
	Path      string `toml:"path" env:"MCP_PATH"`
	PublicURL string `toml:"public_url" env:"AIORG_PUBLIC_URL"` // advertised resource URL; derived from the request if empty
}

// BackendConfig holds the note-storage backend settings.
type BackendConfig struct {
	FunctionURL string        `toml:"function_url" env:"AI_ORGANISER_FUNCTION_URL"`
	AnonKey     string        `toml:"anon_key" env:"AI_ORGANISER_ANON_KEY"`
	Timeout     time.Duration `toml:"timeout" env:"AI_ORGANISER_TIMEOUT"`
}

// AuthConfig holds credential fallback and OAuth metadata settings.
type AuthConfig struct {
	IntegrationToken     string   `toml:"integration_token" env:"AI_ORGANISER_INTEGRATION_TOKEN"`
	IntegrationTokenFile string   `toml:"integration_token_file" env:"AI_ORGANISER_INTEGRATION_TOKEN_FILE"`
	AuthorizationServers []string `toml:"authorization_servers" env:"AIORG_AUTHORIZATION_SERVERS" env-separator:","`
	Scopes               []string `toml:"scopes"`
	DocumentationURL     string   `toml:"documentation_url"`
}

// IntentConfig controls the save-trigger vocabulary.
type IntentConfig struct {
	Triggers []TriggerConfig `toml:"triggers"`
	Guard    bool            `toml:"guard" env:"AIORG_INTENT_GUARD"`
}

// TriggerConfig is one save keyword and the preposition that introduces a
// destination after it.
type TriggerConfig struct {
	Keyword     string `toml:"keyword"`
	Preposition string `toml:"preposition"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `toml:"level" env:"AIORG_LOG_LEVEL"`   // debug, info, warn, error
	Format string `toml:"format" env:"AIORG_LOG_FORMAT"` // text, json
}

// DefaultConfig returns a Config with all built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
			Path: "/mcp",
		},
		Backend: BackendConfig{
			FunctionURL: DefaultFunctionURL,
			Timeout:     DefaultTimeout,
		},
		Auth: AuthConfig{
			AuthorizationServers: []string{DefaultAuthServer},
			Scopes:               []string{"notes:write"},
			DocumentationURL:     DefaultDocsURL,
		},
		Intent: IntentConfig{
			Triggers: []TriggerConfig{
				{Keyword: "сохрани", Preposition: "в"},
				{Keyword: "save", Preposition: "to"},
			},
			Guard: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load merges all configuration sources: defaults < TOML file < env vars.
// CLI flags are applied by the caller on the returned Config.
func Load() (*Config, error) {
	return LoadFrom(FilePath())
}

// LoadFrom loads configuration from a specific file path. A missing file is
// not an error unless the path was given explicitly via Override or AIORG_CONFIG.
func LoadFrom(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			meta, err := toml.DecodeFile(configPath, cfg)
			if err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
			warnUnknownKeys(meta, configPath)
		} else if explicitPath() {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	cfg.Server.Path = normalizePath(cfg.Server.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FilePath returns the config file to read: --config, then AIORG_CONFIG,
// then .aiorg/config.toml in the working directory.
func FilePath() string {
	if Override != "" {
		return Override
	}
	if v := os.Getenv("AIORG_CONFIG"); v != "" {
		return v
	}
	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, ".aiorg", "config.toml")
	}
	return ""
}

func explicitPath() bool {
	return Override != "" || os.Getenv("AIORG_CONFIG") != ""
}

// Validate checks the merged configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path must start with /, got %q", c.Server.Path)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %s", c.Backend.Timeout)
	}
	if err := validateHTTPURL("backend.function_url", c.Backend.FunctionURL); err != nil {
		return err
	}
	if c.Server.PublicURL != "" {
		if err := validateHTTPURL("server.public_url", c.Server.PublicURL); err != nil {
			return err
		}
	}
	for i, t := range c.Intent.Triggers {
		if strings.TrimSpace(t.Keyword) == "" || strings.TrimSpace(t.Preposition) == "" {
			return fmt.Errorf("intent.triggers[%d] needs both keyword and preposition", i)
		}
	}
	return nil
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme, got: %q", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", field)
	}
	return nil
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/mcp"
	}
	return p
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// BackendConfigured reports whether the shared infrastructure secret is present.
func (c *Config) BackendConfigured() bool {
	return strings.TrimSpace(c.Backend.AnonKey) != "" && c.Backend.FunctionURL != ""
}

// Redacted returns a copy of the config with secrets masked, for display.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.Backend.AnonKey = mask(c.Backend.AnonKey)
	cp.Auth.IntegrationToken = mask(c.Auth.IntegrationToken)
	return &cp
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// Show renders the effective configuration as TOML with secrets masked.
func (c *Config) Show() (string, error) {
	var b strings.Builder
	b.WriteString("# Effective aiorg configuration (merged from all sources)\n\n")
	if err := toml.NewEncoder(&b).Encode(c.Redacted()); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}

// configSuggestions maps common misspellings to the correct key.
var configSuggestions = map[string]string{
	"url":          "function_url",
	"endpoint":     "function_url",
	"functionurl":  "function_url",
	"function-url": "function_url",
	"anonkey":      "anon_key",
	"anon-key":     "anon_key",
	"api_key":      "anon_key",
	"token":        "integration_token",
	"token_file":   "integration_token_file",
	"publicurl":    "public_url",
	"public-url":   "public_url",
	"trigger":      "triggers",
	"keywords":     "triggers",
}

// warnUnknownKeys prints warnings for unrecognized config keys.
func warnUnknownKeys(meta toml.MetaData, configPath string) {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return
	}

	fname := filepath.Base(configPath)
	for _, key := range undecoded {
		keyStr := key.String()
		lastPart := key[len(key)-1]

		if suggestion, ok := configSuggestions[lastPart]; ok {
			fmt.Fprintf(os.Stderr, "aiorg: WARNING: unknown key %q in %s — did you mean %q?\n",
				keyStr, fname, suggestion)
		} else {
			fmt.Fprintf(os.Stderr, "aiorg: WARNING: unknown key %q in %s (will be ignored)\n",
				keyStr, fname)
		}
	}
}
