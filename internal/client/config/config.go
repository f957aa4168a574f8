package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the Amanotes terminal client.
//
// Units: OnlineCheckInterval and DemoAPITimeout are time.Duration values.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration

	// Mode is "local" or "cloud". ModeExplicit records that it came from a
	// flag; otherwise the saved preference wins over the default.
	Mode         string
	ModeExplicit bool

	DataDir        string
	DatabaseDSN    string
	DemoAPIURL     string
	DemoAPITimeout time.Duration
	LogLevel       string

	TokenSecret     string
	FederatedSecret string
	GoogleIDToken   string

	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BaseEndpoint string
	S3Bucket       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.Mode = "local"
	c.DataDir = defaultDataDir()
	c.DemoAPIURL = "https://reqres.in/api"
	c.DemoAPITimeout = 10 * time.Second
	c.LogLevel = "info"
	// NOTE: development values, override in production.
	c.TokenSecret = "amanotes-local-secret"
	c.FederatedSecret = "amanotes-federated-secret"
	c.S3Region = "us-east-1"
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".amanotes"
	}
	return filepath.Join(home, ".amanotes")
}

func (c *Config) DatabasePath() string    { return filepath.Join(c.DataDir, "amanotes.db") }
func (c *Config) PreferencesPath() string { return filepath.Join(c.DataDir, "preferences.json") }
func (c *Config) LogPath() string         { return filepath.Join(c.DataDir, "client.log") }

// EffectiveMode returns the flag value when one was given, else the saved
// preference, else the default.
func (c *Config) EffectiveMode(saved string) string {
	if c.ModeExplicit || saved == "" {
		return c.Mode
	}
	return saved
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
