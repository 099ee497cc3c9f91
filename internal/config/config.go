package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the tool configuration loaded from site.yaml.
type Config struct {
	Site         SiteSection        `yaml:"site"`
	Content      ContentConfig      `yaml:"content"`
	Output       OutputConfig       `yaml:"output"`
	Repositories []Repository       `yaml:"repositories,omitempty"`
	Lint         LintConfig         `yaml:"lint,omitempty"`
	LinkVerify   LinkVerifyConfig   `yaml:"link_verify,omitempty"`
	Daemon       DaemonConfig       `yaml:"daemon,omitempty"`
}

// SiteSection carries the declarative inputs for the generated site
// configuration. The published URL is never configured here; it is selected
// from the environment at build time.
type SiteSection struct {
	Name    string            `yaml:"name"`
	Extends []ExtendLayer     `yaml:"extends,omitempty"`
	Modules []string          `yaml:"modules,omitempty"`
	App     map[string]string `yaml:"app,omitempty"`
}

// ContentConfig locates the markdown corpus.
type ContentConfig struct {
	Dir    string   `yaml:"dir"`
	Ignore []string `yaml:"ignore,omitempty"` // filenames skipped during discovery
}

// OutputConfig controls the build output directory.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
}

// Repository is an external repository referenced by code-import directives.
// Name is the prefix directives use; the repository is cloned read-only to
// resolve those paths.
type Repository struct {
	Name   string      `yaml:"name"`
	URL    string      `yaml:"url"`
	Branch string      `yaml:"branch,omitempty"`
	Auth   *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig holds credentials for a private repository.
type AuthConfig struct {
	Type     string `yaml:"type"` // "token" or "basic"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
}

// LintConfig controls lint output.
type LintConfig struct {
	Format string `yaml:"format,omitempty"` // "text" or "json"
}

// LinkVerifyConfig controls link verification after rendering.
type LinkVerifyConfig struct {
	External       bool   `yaml:"external,omitempty"` // also check external links over HTTP
	MaxConcurrent  int    `yaml:"max_concurrent,omitempty"`
	RequestTimeout string `yaml:"request_timeout,omitempty"`
}

// DaemonConfig controls daemon mode.
type DaemonConfig struct {
	Listen        string `yaml:"listen,omitempty"`
	Schedule      string `yaml:"schedule,omitempty"` // rebuild interval, e.g. "1h"
	DataDir       string `yaml:"data_dir,omitempty"`
	NATSURL       string `yaml:"nats_url,omitempty"`
	NATSSubject   string `yaml:"nats_subject,omitempty"`
	DebounceDelay string `yaml:"debounce,omitempty"`
}

// Load reads the tool configuration, expands environment references and
// applies defaults. A .env/.env.local file next to the config is loaded
// first without overriding existing process environment.
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Site.Name == "" {
		cfg.Site.Name = "ZKsync Community Code"
	}
	if len(cfg.Site.Modules) == 0 {
		cfg.Site.Modules = []string{"content", "ui", "seo", "lint"}
	}
	if cfg.Content.Dir == "" {
		cfg.Content.Dir = "content"
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "./site"
		cfg.Output.Clean = true
	}
	for i := range cfg.Repositories {
		if cfg.Repositories[i].Branch == "" {
			cfg.Repositories[i].Branch = "main"
		}
	}
	if cfg.Lint.Format == "" {
		cfg.Lint.Format = "text"
	}
	if cfg.LinkVerify.MaxConcurrent <= 0 {
		cfg.LinkVerify.MaxConcurrent = 10
	}
	if cfg.LinkVerify.RequestTimeout == "" {
		cfg.LinkVerify.RequestTimeout = "10s"
	}
	if cfg.Daemon.Listen == "" {
		cfg.Daemon.Listen = ":8787"
	}
	if cfg.Daemon.DataDir == "" {
		cfg.Daemon.DataDir = "./daemon-data"
	}
	if cfg.Daemon.DebounceDelay == "" {
		cfg.Daemon.DebounceDelay = "2s"
	}
}

// Validate rejects configurations the build cannot act on.
func (c *Config) Validate() error {
	seen := map[string]struct{}{}
	for _, repo := range c.Repositories {
		if repo.Name == "" {
			return fmt.Errorf("repository with URL %q has no name", repo.URL)
		}
		if repo.URL == "" {
			return fmt.Errorf("repository %q has no URL", repo.Name)
		}
		if _, dup := seen[repo.Name]; dup {
			return fmt.Errorf("duplicate repository name %q", repo.Name)
		}
		seen[repo.Name] = struct{}{}
	}
	for _, layer := range c.Site.Extends {
		if layer.Source == "" {
			return fmt.Errorf("extends layer with empty source")
		}
	}
	return nil
}

// Repository returns the configured repository with the given name.
func (c *Config) Repository(name string) (Repository, bool) {
	for _, repo := range c.Repositories {
		if repo.Name == name {
			return repo, true
		}
	}
	return Repository{}, false
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Site: SiteSection{
			Name: "ZKsync Community Code",
			Extends: []ExtendLayer{
				{Source: "github:zksync/docs-theme", Options: map[string]any{"install": true}},
			},
			Modules: []string{"content", "ui", "seo", "lint"},
			App:     map[string]string{"analytics": "disabled"},
		},
		Content: ContentConfig{Dir: "content"},
		Output:  OutputConfig{Directory: "./site", Clean: true},
		Repositories: []Repository{
			{Name: "contracts", URL: "https://github.com/example/paymaster-examples.git", Branch: "main"},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
