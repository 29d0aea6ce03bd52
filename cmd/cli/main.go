package main

import (
	"context"
	"log"
	"os"

	"github.com/sentinelchain/filevault/internal/buildinfo"
	"github.com/sentinelchain/filevault/internal/client/cli"
	"github.com/sentinelchain/filevault/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
