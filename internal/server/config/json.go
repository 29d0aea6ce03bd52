package config

import (
	"encoding/json"
	"os"

	"github.com/sentinelchain/filevault/internal/flagx"
	"github.com/sentinelchain/filevault/internal/timex"
)

// JsonConfig is the JSON-unmarshalling counterpart of Config. Interval
// fields use timex.Duration so files may say either "15m" or integer
// nanoseconds. After unmarshalling, values are copied into Config.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	ChallengeValidityDuration   timex.Duration `json:"challenge_validity_duration"`
	BlobBackend                 string         `json:"blob_backend"`
	BlobDir                     string         `json:"blob_dir"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from a JSON file onto config. The file path
// comes from the -c or -config flags; when neither is set, nothing is
// loaded. An unreadable file or invalid JSON panics, since a broken
// explicit config should never be silently ignored.
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

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.ChallengeValidityDuration = c.ChallengeValidityDuration.Duration
	config.BlobBackend = c.BlobBackend
	config.BlobDir = c.BlobDir
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
