package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// MainService is the service whose records form the base attributes
	// of a reconciled track
	MainService string

	// PageSize is how many recent tracks to fetch per refresh
	PageSize int

	// JournalPath is where the backfill outcome journal lives
	JournalPath string

	// Per-service configuration, keyed by service name
	// (lastfm, listenbrainz, librefm)
	Services map[string]ServiceConfig
}

// ServiceConfig holds per-service credentials and switches
type ServiceConfig struct {
	Enabled    bool
	Username   string
	SessionKey string // Audioscrobbler session key (lastfm, librefm)
	Token      string // User token (listenbrainz)
	APIKey     string
	APISecret  string
	BaseURL    string // Optional API endpoint override
}

// Credential is the read-only per-refresh snapshot of one service's
// configuration handed to the reconciliation engine.
type Credential struct {
	Service     string
	Username    string
	SessionKey  string
	Token       string
	Enabled     bool
	IsPreferred bool
}

// KnownServices lists the services playsync can talk to.
var KnownServices = []string{"lastfm", "listenbrainz", "librefm"}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetDefault("main_service", "")
	v.SetDefault("page_size", 50)
	v.SetDefault("journal_path", filepath.Join(getDataDir(), "backfill.db"))

	// Config file is optional - don't fail if missing
	_ = v.ReadInConfig()

	v.SetEnvPrefix("PLAYSYNC")
	v.AutomaticEnv()

	cfg := &Config{
		MainService: v.GetString("main_service"),
		PageSize:    v.GetInt("page_size"),
		JournalPath: v.GetString("journal_path"),
		Services:    make(map[string]ServiceConfig, len(KnownServices)),
	}

	for _, name := range KnownServices {
		cfg.Services[name] = ServiceConfig{
			Enabled:    v.GetBool("services." + name + ".enabled"),
			Username:   v.GetString("services." + name + ".username"),
			SessionKey: v.GetString("services." + name + ".session_key"),
			Token:      v.GetString("services." + name + ".token"),
			APIKey:     v.GetString("services." + name + ".api_key"),
			APISecret:  v.GetString("services." + name + ".api_secret"),
			BaseURL:    v.GetString("services." + name + ".base_url"),
		}
	}

	return cfg, nil
}

// Snapshot returns the per-refresh credential view of the configuration,
// sorted by service name so refresh passes are deterministic.
func (c *Config) Snapshot() []Credential {
	creds := make([]Credential, 0, len(c.Services))
	for name, sc := range c.Services {
		creds = append(creds, Credential{
			Service:     name,
			Username:    sc.Username,
			SessionKey:  sc.SessionKey,
			Token:       sc.Token,
			Enabled:     sc.Enabled,
			IsPreferred: name == c.MainService,
		})
	}
	sort.Slice(creds, func(i, j int) bool { return creds[i].Service < creds[j].Service })
	return creds
}

// EnabledServices returns the names of all enabled services, sorted.
func (c *Config) EnabledServices() []string {
	var names []string
	for name, sc := range c.Services {
		if sc.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Preferred returns the credential for the main service, or false if no
// main service is configured or it is disabled.
func (c *Config) Preferred() (Credential, bool) {
	for _, cred := range c.Snapshot() {
		if cred.IsPreferred && cred.Enabled {
			return cred, true
		}
	}
	return Credential{}, false
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "playsync")
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// getDataDir returns the data directory path, creating it if needed
func getDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	dataDir := filepath.Join(homeDir, ".local", "share", "playsync")
	_ = os.MkdirAll(dataDir, 0755)

	return dataDir
}

// Save writes configuration to file
func (c *Config) Save() error {
	v := viper.New()

	configDir := getConfigDir()
	configFile := filepath.Join(configDir, "config.yaml")

	v.Set("main_service", c.MainService)
	v.Set("page_size", c.PageSize)
	v.Set("journal_path", c.JournalPath)
	for name, sc := range c.Services {
		v.Set("services."+name+".enabled", sc.Enabled)
		v.Set("services."+name+".username", sc.Username)
		v.Set("services."+name+".session_key", sc.SessionKey)
		v.Set("services."+name+".token", sc.Token)
		v.Set("services."+name+".api_key", sc.APIKey)
		v.Set("services."+name+".api_secret", sc.APISecret)
		v.Set("services."+name+".base_url", sc.BaseURL)
	}

	return v.WriteConfigAs(configFile)
}
