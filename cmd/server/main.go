package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/pairchat/internal/buildinfo"
	"github.com/dmitrijs2005/pairchat/internal/server"
	"github.com/dmitrijs2005/pairchat/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	if err := run(context.Background(), config.LoadConfig()); err != nil {
		log.Fatalf("%v", err)
	}

}

// run blocks until the server stops. Only startup failures are returned.
func run(ctx context.Context, cfg *config.Config) error {
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		return err
	}

	app.Run(ctx)
	return nil
}
