package config

import (
	"flag"
	"os"

	"github.com/sentinelchain/filevault/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   server base URL (e.g., "http://127.0.0.1:8080")
//	-w string   wallet keystore path
//	-m string   metadata cache DSN
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "server base URL")
	fs.StringVar(&config.KeystorePath, "w", config.KeystorePath, "wallet keystore path")
	fs.StringVar(&config.CacheDSN, "m", config.CacheDSN, "metadata cache DSN")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
