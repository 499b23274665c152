package main

import (
	"context"
	"log"
	"os"

	"github.com/figmints/meetsync/internal/buildinfo"
	"github.com/figmints/meetsync/internal/client/cli"
	"github.com/figmints/meetsync/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
