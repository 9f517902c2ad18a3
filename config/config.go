package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spiffcs/ghfeed/internal/constants"
	"github.com/spiffcs/ghfeed/internal/filter"
	"github.com/spiffcs/ghfeed/internal/prefs"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Username string `yaml:"username,omitempty"`
	PerPage  *int   `yaml:"per_page,omitempty"`

	// Preferences. These are also the keys the preference store persists.
	RenderBody  *bool  `yaml:"render_body,omitempty"`
	ActorFilter *bool  `yaml:"actor_filter,omitempty"`
	Placement   string `yaml:"placement,omitempty"`

	// Host page the feed is mounted into, a path or URL. Empty uses the
	// built-in dashboard page.
	HostPage        string `yaml:"host_page,omitempty"`
	SidebarSelector string `yaml:"sidebar_selector,omitempty"`
	MainSelector    string `yaml:"main_selector,omitempty"`

	ReadinessTimeout  *time.Duration `yaml:"readiness_timeout,omitempty"`
	ReadinessInterval *time.Duration `yaml:"readiness_interval,omitempty"`

	// Notification channel: stderr, osc or none.
	Notify string `yaml:"notify,omitempty"`

	// Extra actor logins hidden by the actor filter.
	ExcludeActors []string `yaml:"exclude_actors,omitempty"`
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".ghfeed"
	}
	return filepath.Join(configDir, "ghfeed")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// TokenPath returns the path to the token file
func TokenPath() string {
	return filepath.Join(DefaultConfigDir(), "token")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".ghfeed.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from XDG config directory, then merges
// any local .ghfeed.yaml config on top (local values take precedence).
func Load() (*Config, error) {
	cfg, err := ReadFile(ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load global config file: %w", err)
	}

	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		localCfg, err := ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load local config file: %w", err)
		}
		cfg = mergeConfig(cfg, localCfg)
	}

	return cfg, nil
}

// ReadFile parses the config at path. A missing file is an empty config.
func ReadFile(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := *global

	if local.Username != "" {
		result.Username = local.Username
	}
	if local.PerPage != nil {
		result.PerPage = local.PerPage
	}
	if local.RenderBody != nil {
		result.RenderBody = local.RenderBody
	}
	if local.ActorFilter != nil {
		result.ActorFilter = local.ActorFilter
	}
	if local.Placement != "" {
		result.Placement = local.Placement
	}
	if local.HostPage != "" {
		result.HostPage = local.HostPage
	}
	if local.SidebarSelector != "" {
		result.SidebarSelector = local.SidebarSelector
	}
	if local.MainSelector != "" {
		result.MainSelector = local.MainSelector
	}
	if local.ReadinessTimeout != nil {
		result.ReadinessTimeout = local.ReadinessTimeout
	}
	if local.ReadinessInterval != nil {
		result.ReadinessInterval = local.ReadinessInterval
	}
	if local.Notify != "" {
		result.Notify = local.Notify
	}

	// Arrays: local replaces if non-empty
	if len(local.ExcludeActors) > 0 {
		result.ExcludeActors = local.ExcludeActors
	}

	return &result
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	return c.SaveAs(ConfigPath())
}

// SaveAs writes the configuration to path.
func (c *Config) SaveAs(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return SaveTo(path, string(data))
}

// GetPerPage returns the page size, clamped to the API maximum.
func (c *Config) GetPerPage() int {
	if c.PerPage == nil || *c.PerPage <= 0 {
		return constants.DefaultPerPage
	}
	if *c.PerPage > constants.MaxPerPage {
		return constants.MaxPerPage
	}
	return *c.PerPage
}

// GetReadinessTimeout returns how long startup waits for the host page.
func (c *Config) GetReadinessTimeout() time.Duration {
	if c.ReadinessTimeout == nil || *c.ReadinessTimeout <= 0 {
		return constants.ReadinessTimeout
	}
	return *c.ReadinessTimeout
}

// GetReadinessInterval returns the readiness polling interval.
func (c *Config) GetReadinessInterval() time.Duration {
	if c.ReadinessInterval == nil || *c.ReadinessInterval <= 0 {
		return constants.ReadinessInterval
	}
	return *c.ReadinessInterval
}

// GetSelectors returns the sidebar and main region selectors.
func (c *Config) GetSelectors() (sidebar, main string) {
	sidebar, main = c.SidebarSelector, c.MainSelector
	if sidebar == "" {
		sidebar = constants.DefaultSidebarSelector
	}
	if main == "" {
		main = constants.DefaultMainSelector
	}
	return sidebar, main
}

// GetNotify returns the notification channel kind.
func (c *Config) GetNotify() string {
	if c.Notify == "" {
		return "stderr"
	}
	return c.Notify
}

// ActorRules returns the built-in deny list plus the configured exclusions.
func (c *Config) ActorRules() []filter.Rule {
	return append(filter.DefaultRules(), filter.LoginRules(c.ExcludeActors...)...)
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	p := prefs.Defaults()
	perPage := constants.DefaultPerPage
	timeout := constants.ReadinessTimeout
	interval := constants.ReadinessInterval

	return &Config{
		PerPage:           &perPage,
		RenderBody:        &p.RenderBody,
		ActorFilter:       &p.ActorFilter,
		Placement:         string(p.Placement),
		SidebarSelector:   constants.DefaultSidebarSelector,
		MainSelector:      constants.DefaultMainSelector,
		ReadinessTimeout:  &timeout,
		ReadinessInterval: &interval,
		Notify:            "stderr",
		ExcludeActors:     []string{},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
	TokenPath    string
	TokenExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()
	tokenPath := TokenPath()

	// Get absolute path for local config
	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)
	_, tokenErr := os.Stat(tokenPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
		TokenPath:    tokenPath,
		TokenExists:  tokenErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# ghfeed configuration file
# See: ghfeed config defaults  (for all available options)

# User whose received events are shown (defaults to the token's owner)
# username: octocat

# Events per page (max 100)
per_page: 30

# Feed preferences, also changed with: ghfeed commands run <n>
render_body: true
actor_filter: true
placement: sidebar

# Notification channel: stderr, osc (desktop notification) or none
notify: stderr

# Hide more actors (optional)
# exclude_actors:
#   - some-bot

# The token is kept separately. Configure it with: ghfeed token set
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
