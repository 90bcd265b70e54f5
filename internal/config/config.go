// Package config loads pagebot settings from defaults, an optional YAML file and PAGEBOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dfryer1193/pagebot/pages/application"
	"github.com/dfryer1193/pagebot/pages/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	configName = "pagebot"
	envPrefix  = "PAGEBOT"
)

// Supported content stores.
const (
	StoreGithub = "github"
	StoreSQLite = "sqlite"
)

type Config struct {
	Store string

	Github GithubConfig
	SQLite SQLiteConfig
	HTTP   HTTPConfig

	Pages            []string
	MarkerAttribute  string
	Attribution      string
	MaxContentLength int

	WebhookSecret string
	LogLevel      string
	LogFormat     string
}

type GithubConfig struct {
	Token  string
	Owner  string
	Repo   string
	Branch string
}

type SQLiteConfig struct {
	Path    string
	BaseURL string
}

type HTTPConfig struct {
	Addr     string
	APIToken string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store", StoreGithub)
	v.SetDefault("github.token", "")
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("github.branch", "")
	v.SetDefault("sqlite.path", "pagebot.db")
	v.SetDefault("sqlite.base_url", "")
	v.SetDefault("pages", pageNames(domain.DefaultPages))
	v.SetDefault("marker_attribute", application.DefaultMarkerAttribute)
	v.SetDefault("attribution", application.DefaultAttribution)
	v.SetDefault("max_content_length", application.DefaultMaxContentLength)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.api_token", "")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("log.level", "info")     // debug, info, warn, error
	v.SetDefault("log.format", "console") // console or json
}

// Load reads configuration. When file is empty, pagebot.yaml is looked up in the working directory
// and a missing file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return &Config{
		Store: strings.ToLower(v.GetString("store")),
		Github: GithubConfig{
			Token:  v.GetString("github.token"),
			Owner:  v.GetString("github.owner"),
			Repo:   v.GetString("github.repo"),
			Branch: v.GetString("github.branch"),
		},
		SQLite: SQLiteConfig{
			Path:    v.GetString("sqlite.path"),
			BaseURL: v.GetString("sqlite.base_url"),
		},
		HTTP: HTTPConfig{
			Addr:     v.GetString("http.addr"),
			APIToken: v.GetString("http.api_token"),
		},
		Pages:            splitList(v.GetStringSlice("pages")),
		MarkerAttribute:  v.GetString("marker_attribute"),
		Attribution:      v.GetString("attribution"),
		MaxContentLength: v.GetInt("max_content_length"),
		WebhookSecret:    v.GetString("webhook.secret"),
		LogLevel:         v.GetString("log.level"),
		LogFormat:        v.GetString("log.format"),
	}, nil
}

// Validate reports every setting that would keep pagebot from starting.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreGithub:
		if c.Github.Owner == "" || c.Github.Repo == "" {
			errs = append(errs, errors.New("github.owner and github.repo are required for the github store"))
		}
	case StoreSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("sqlite.path is required for the sqlite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreGithub, StoreSQLite))
	}

	if len(c.Pages) == 0 {
		errs = append(errs, errors.New("at least one page must be configured"))
	}
	if c.MaxContentLength <= 0 {
		errs = append(errs, fmt.Errorf("max_content_length must be positive, got %d", c.MaxContentLength))
	}
	if strings.ContainsAny(c.MarkerAttribute, " \t\n\"'=<>") || c.MarkerAttribute == "" {
		errs = append(errs, fmt.Errorf("invalid marker_attribute %q", c.MarkerAttribute))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log.level: %w", err))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log.format %q (want console or json)", c.LogFormat))
	}

	return errors.Join(errs...)
}

// ServiceOptions converts the edit settings into application.Options.
func (c *Config) ServiceOptions() application.Options {
	return application.Options{
		Pages:            domain.NewPageAllowList(c.Pages),
		MarkerAttribute:  c.MarkerAttribute,
		Attribution:      c.Attribution,
		MaxContentLength: c.MaxContentLength,
	}
}

// SetupLogger configures the global zerolog logger.
func (c *Config) SetupLogger() {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// splitList accepts both YAML lists and comma separated environment values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func pageNames(pages domain.PageAllowList) []string {
	names := make([]string, len(pages))
	for i, p := range pages {
		names[i] = string(p)
	}
	return names
}
