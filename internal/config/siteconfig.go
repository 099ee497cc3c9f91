package config

import "os"

// Published site URLs. The staging flag switches between exactly these two
// literals; there is no third value.
const (
	ProductionSiteURL = "https://code.zksync.io"
	StagingSiteURL    = "https://staging-code.zksync.io"
)

// StagingEnvVar selects the staging site URL when set to any non-empty
// value. Presence is what matters; the value itself is never parsed.
const StagingEnvVar = "SITE_STAGING"

// ExtendLayer is one framework layer the site configuration extends, in
// order. Options are passed through to the framework untouched.
type ExtendLayer struct {
	Source  string         `yaml:"source"`
	Options map[string]any `yaml:"options,omitempty"`
}

// SiteMeta holds site-wide metadata.
type SiteMeta struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// PublicRuntime is the runtime configuration exposed to the browser.
type PublicRuntime struct {
	App map[string]string `yaml:"app,omitempty"`
}

// RuntimeConfig wraps public runtime values under the key the framework
// expects.
type RuntimeConfig struct {
	Public PublicRuntime `yaml:"public"`
}

// SiteConfig is the declarative object the external site framework consumes.
type SiteConfig struct {
	Extends       []ExtendLayer `yaml:"extends"`
	Modules       []string      `yaml:"modules"`
	Site          SiteMeta      `yaml:"site"`
	RuntimeConfig RuntimeConfig `yaml:"runtimeConfig"`
}

// BuildSiteConfig assembles the site configuration from the tool config and
// the process environment. The only environment-dependent field is the site
// URL.
func BuildSiteConfig(cfg *Config) SiteConfig {
	return SiteConfig{
		Extends:       cfg.Site.Extends,
		Modules:       cfg.Site.Modules,
		Site:          SiteMeta{Name: cfg.Site.Name, URL: SelectSiteURL()},
		RuntimeConfig: RuntimeConfig{Public: PublicRuntime{App: cfg.Site.App}},
	}
}

// SelectSiteURL returns the published site URL for the current environment.
func SelectSiteURL() string {
	if os.Getenv(StagingEnvVar) != "" {
		return StagingSiteURL
	}
	return ProductionSiteURL
}
