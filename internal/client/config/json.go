package config

import (
	"encoding/json"
	"os"

	"github.com/sentinelchain/filevault/internal/flagx"
)

// JsonConfig is the JSON counterpart of Config.
type JsonConfig struct {
	ServerEndpointAddr string `json:"server_endpoint_addr"`
	KeystorePath       string `json:"keystore_path"`
	CacheDSN           string `json:"cache_dsn"`
}

// parseJson overlays values from the JSON file named by the -c or -config
// flags. An unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.ServerEndpointAddr = c.ServerEndpointAddr
	config.KeystorePath = c.KeystorePath
	config.CacheDSN = c.CacheDSN
}
