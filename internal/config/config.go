// Package config loads the server configuration once at startup: defaults,
// then an optional YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cardsite/backend/pkg/notion"
	"github.com/cardsite/backend/pkg/vcard"
	"gopkg.in/yaml.v3"
)

// Default Notion database IDs of the site.
const (
	DefaultContactDatabaseID   = "263ab9fd5098816a8078e51a25238ed5"
	DefaultAnalyticsDatabaseID = "26fab9fd509880098973f7d9a3595da8"
)

type Config struct {
	Addr        string `yaml:"addr"`
	FrontendURL string `yaml:"frontend_url"`
	// PublicURL is the address of the card itself, used when sharing.
	PublicURL string `yaml:"public_url"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Notion   NotionConfig   `yaml:"notion"`
	Database DatabaseConfig `yaml:"database"`
	Upload   UploadConfig   `yaml:"upload"`

	// ContactRateLimit is the number of contact submissions accepted per
	// client address per minute.
	ContactRateLimit int `yaml:"contact_rate_limit"`
	// TrustedProxies is the number of reverse proxies in front of the server
	// that append to X-Forwarded-For. Zero keys the rate limit on the peer
	// address and ignores the header.
	TrustedProxies int `yaml:"trusted_proxies"`

	Profile vcard.Card `yaml:"profile"`
}

type NotionConfig struct {
	// Token is the integration secret. Empty disables persistence.
	Token               string `yaml:"token"`
	APIURL              string `yaml:"api_url"`
	ContactDatabaseID   string `yaml:"contact_database_id"`
	AnalyticsDatabaseID string `yaml:"analytics_database_id"`
}

// DatabaseConfig configures the optional Postgres analytics mirror.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type UploadConfig struct {
	MaxBytes     int64 `yaml:"max_bytes"`
	MaxDimension int   `yaml:"max_dimension"`
}

// NotionEnabled reports whether a Notion credential is configured.
func (c *Config) NotionEnabled() bool { return c.Notion.Token != "" }

// DatabaseEnabled reports whether the Postgres mirror is configured.
func (c *Config) DatabaseEnabled() bool { return c.Database.URL != "" }

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	return &Config{
		Addr:        ":8080",
		FrontendURL: "http://localhost:3000",
		PublicURL:   "https://nickjanes.com",
		LogLevel:    "INFO",
		LogFormat:   "json",
		Notion: NotionConfig{
			APIURL:              notion.DefaultBaseURL,
			ContactDatabaseID:   DefaultContactDatabaseID,
			AnalyticsDatabaseID: DefaultAnalyticsDatabaseID,
		},
		Database: DatabaseConfig{MaxConns: 4},
		Upload: UploadConfig{
			MaxBytes:     5 << 20,
			MaxDimension: 2048,
		},
		ContactRateLimit: 10,
		Profile: vcard.Card{
			Name:    "Nick Janes",
			Email:   "hello@nickjanes.com",
			Title:   "Ops Expert and Developer",
			Website: "https://nickjanes.com",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty or the file does not exist) and the process environment.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("ADDR", &cfg.Addr)
	str("FRONTEND_URL", &cfg.FrontendURL)
	str("PUBLIC_URL", &cfg.PublicURL)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("NOTION_TOKEN", &cfg.Notion.Token)
	str("NOTION_API_URL", &cfg.Notion.APIURL)
	str("NOTION_CONTACT_DB_ID", &cfg.Notion.ContactDatabaseID)
	str("NOTION_ANALYTICS_DB_ID", &cfg.Notion.AnalyticsDatabaseID)
	str("DATABASE_URL", &cfg.Database.URL)

	if v, ok := lookup("UPLOAD_MAX_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("UPLOAD_MAX_BYTES: %w", err)
		}
		cfg.Upload.MaxBytes = n
	}
	if v, ok := lookup("CONTACT_RATE_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CONTACT_RATE_LIMIT: %w", err)
		}
		cfg.ContactRateLimit = n
	}
	if v, ok := lookup("TRUSTED_PROXIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		cfg.TrustedProxies = n
	}
	return nil
}

// Validate rejects values the server cannot run with. A missing Notion token
// is allowed: the contact endpoint then answers 500 and analytics is
// log-only.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("upload.max_bytes must be positive"))
	}
	if c.Upload.MaxDimension < 0 {
		errs = append(errs, errors.New("upload.max_dimension must not be negative"))
	}
	if c.ContactRateLimit <= 0 {
		errs = append(errs, errors.New("contact_rate_limit must be positive"))
	}
	if c.TrustedProxies < 0 {
		errs = append(errs, errors.New("trusted_proxies must not be negative"))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, errors.New("database.max_conns must be positive"))
	}
	if c.NotionEnabled() && c.Notion.ContactDatabaseID == "" {
		errs = append(errs, errors.New("notion.contact_database_id must be set when a token is configured"))
	}
	if c.Profile.Name == "" {
		errs = append(errs, errors.New("profile.name must not be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
