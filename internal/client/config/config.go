// Package config handles configuration for the FileVault CLI,
// including defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the FileVault CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the FileVault server HTTP API.
//   - KeystorePath: path to the passphrase-protected wallet file.
//   - CacheDSN: SQLite DSN of the local metadata cache.
type Config struct {
	ServerEndpointAddr string
	KeystorePath       string
	CacheDSN           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.KeystorePath = "wallet.json"
	c.CacheDSN = "filevault.db"
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
