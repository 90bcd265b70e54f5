package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dfryer1193/pagebot/pages/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StoreGithub, cfg.Store)
	assert.Equal(t, []string{"executive-edge", "90-day", "master-t", "reboot"}, cfg.Pages)
	assert.Equal(t, "data-optimize", cfg.MarkerAttribute)
	assert.Equal(t, "Automated by CLAWDBOT", cfg.Attribution)
	assert.Equal(t, 500, cfg.MaxContentLength)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pagebot.yaml")
	yaml := `store: sqlite
sqlite:
  path: /tmp/pages.db
  base_url: https://pages.example.com
pages:
  - executive-edge
  - reboot
attribution: Automated by test
http:
  addr: 127.0.0.1:9000
`
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "/tmp/pages.db", cfg.SQLite.Path)
	assert.Equal(t, "https://pages.example.com", cfg.SQLite.BaseURL)
	assert.Equal(t, []string{"executive-edge", "reboot"}, cfg.Pages)
	assert.Equal(t, "Automated by test", cfg.Attribution)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
}

func TestLoad_DiscoversFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pagebot.yaml"), []byte("max_content_length: 120\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.MaxContentLength)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PAGEBOT_GITHUB_TOKEN", "ghp_test")
	t.Setenv("PAGEBOT_GITHUB_OWNER", "acme")
	t.Setenv("PAGEBOT_GITHUB_REPO", "landing-pages")
	t.Setenv("PAGEBOT_PAGES", "reboot, master-t")
	t.Setenv("PAGEBOT_MAX_CONTENT_LENGTH", "200")
	t.Setenv("PAGEBOT_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, GithubConfig{Token: "ghp_test", Owner: "acme", Repo: "landing-pages"}, cfg.Github)
	assert.Equal(t, []string{"reboot", "master-t"}, cfg.Pages)
	assert.Equal(t, 200, cfg.MaxContentLength)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.NoError(t, cfg.Validate())
}

func validConfig() *Config {
	return &Config{
		Store:            StoreGithub,
		Github:           GithubConfig{Owner: "acme", Repo: "landing-pages"},
		Pages:            []string{"executive-edge"},
		MarkerAttribute:  "data-optimize",
		MaxContentLength: 500,
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "sqlite store", mutate: func(c *Config) { c.Store = StoreSQLite; c.SQLite.Path = "x.db"; c.Github = GithubConfig{} }},
		{name: "missing repo", mutate: func(c *Config) { c.Github.Repo = "" }, wantErr: "github.owner and github.repo are required"},
		{name: "missing sqlite path", mutate: func(c *Config) { c.Store = StoreSQLite }, wantErr: "sqlite.path is required"},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "s3" }, wantErr: `unknown store "s3"`},
		{name: "no pages", mutate: func(c *Config) { c.Pages = nil }, wantErr: "at least one page"},
		{name: "zero length", mutate: func(c *Config) { c.MaxContentLength = 0 }, wantErr: "max_content_length must be positive"},
		{name: "bad attribute", mutate: func(c *Config) { c.MarkerAttribute = `data-x"` }, wantErr: "invalid marker_attribute"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "invalid log.level"},
		{name: "bad format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "invalid log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ServiceOptions(t *testing.T) {
	cfg := validConfig()
	cfg.Pages = []string{"reboot", "master-t"}
	cfg.Attribution = "Automated by test"

	opts := cfg.ServiceOptions()

	assert.Equal(t, domain.PageAllowList{"reboot", "master-t"}, opts.Pages)
	assert.Equal(t, "data-optimize", opts.MarkerAttribute)
	assert.Equal(t, "Automated by test", opts.Attribution)
	assert.Equal(t, 500, opts.MaxContentLength)
}
